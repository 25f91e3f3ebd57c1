package soundlaw

import "strings"

const eof = -1

// Parser is the surface the parsing combinators need from a concrete
// recursive-descent parser.
type Parser interface {
	// Peek returns the rune under the cursor without moving it
	Peek() rune

	// Any returns the rune under the cursor and advances it.  It
	// errors at the end of the input.
	Any() (rune, error)

	// Location returns where in the input the cursor currently is
	Location() Location

	// State captures everything Backtrack needs to rewind the parser
	State() ParserState

	// Backtrack rewinds the parser to a previously captured state
	Backtrack(state ParserState)

	// NewError creates an error that the backtracking machinery is
	// allowed to catch and discard
	NewError(expected, msg string, span Span) error

	// ExpectRune returns `r` if it's the rune under the cursor,
	// and errors otherwise
	ExpectRune(r rune) (rune, error)

	// ExpectLiteral consumes `l` if it prefixes the remaining
	// input, and errors otherwise
	ExpectLiteral(l string) (string, error)

	// WithinPredicate returns true while a Not predicate is being
	// evaluated, so thrown errors degrade into backtrackable ones
	WithinPredicate() bool
	EnterPredicate()
	LeavePredicate()
}

// ParserState is the state captured before attempting an alternative,
// restored when the alternative fails.
type ParserState struct {
	Location   Location
	StackTrace []TracerSpan
}

// TracerSpan names the production the parser is currently within.  It
// feeds the Production field of errors.
type TracerSpan struct {
	Name string
}

func (ts TracerSpan) String() string { return ts.Name }

// BaseParser keeps the state necessary to build parsing expressions
// on top of the basic ones available, like Choice, ZeroOrMore,
// OneOrMore, Optional, etc.
type BaseParser struct {
	ffp    int
	cursor int
	line   int
	column int
	input  []rune

	predStkCnt int
	stacktrace []TracerSpan
}

// SetInput associates an input to the parser struct and resets the
// cursor state.
func (p *BaseParser) SetInput(input []byte) {
	p.ffp = 0
	p.cursor = 0
	p.line = 0
	p.column = 0
	p.input = []rune(string(input))
	p.stacktrace = nil
	p.predStkCnt = 0
}

// Location returns in which line/column/cursor the parser's input is currently in
func (p *BaseParser) Location() Location {
	return Location{
		Line:   p.line,
		Column: p.column,
		Cursor: p.cursor,
	}
}

func (p *BaseParser) State() ParserState {
	return ParserState{
		Location:   p.Location(),
		StackTrace: p.stacktrace,
	}
}

// Backtrack resets the internal parser state to a previously captured one
func (p *BaseParser) Backtrack(state ParserState) {
	p.cursor = state.Location.Cursor
	p.line = state.Location.Line
	p.column = state.Location.Column
	p.stacktrace = state.StackTrace
}

// Peek returns the character under the input cursor, or eof if the
// entire input has been consumed
func (p *BaseParser) Peek() rune {
	if p.cursor >= len(p.input) {
		return eof
	}
	return p.input[p.cursor]
}

// Any matches any rune under the input cursor, and will error on EOF
func (p *BaseParser) Any() (rune, error) {
	pos := p.Location()
	c := p.Peek()
	if c == eof {
		return 0, p.NewError(".", "EOF", NewSpan(pos, p.Location()))
	}
	p.cursor++
	p.column++
	if c == '\n' {
		p.column = 0
		p.line++
	}
	if p.cursor > p.ffp {
		p.ffp = p.cursor
	}
	return c, nil
}

func (p *BaseParser) ExpectRune(v rune) (rune, error) {
	start := p.Location()
	c := p.Peek()
	if c == v {
		return p.Any()
	}

	exp := "`" + string(v) + "`"
	msg := "Expected " + exp + " but got `" + string(c) + "`"
	return 0, p.NewError(exp, msg, NewSpan(start, p.Location()))
}

func (p *BaseParser) ExpectRuneFn(v rune) ParserFn[rune] {
	return func(p Parser) (rune, error) { return p.ExpectRune(v) }
}

func (p *BaseParser) ExpectLiteral(literal string) (string, error) {
	state := p.State()

	for _, v := range literal {
		c, err := p.Any()
		if err != nil {
			p.Backtrack(state)
			return "", err
		}
		if c == v {
			continue
		}

		p.Backtrack(state)
		span := NewSpan(state.Location, p.Location())
		return "", p.NewError("`"+literal+"`", "Missing `"+literal+"`", span)
	}
	return literal, nil
}

// NewError creates a type of error that is handled and discarded when
// the parser backtracks the input position
func (p *BaseParser) NewError(exp, msg string, span Span) error {
	name := ""
	if ts := p.PeekTraceSpan(); ts != nil {
		name = ts.Name
	}
	return &backtrackingError{
		Production: name,
		Expected:   exp,
		Message:    msg,
		Span:       span,
	}
}

func (p *BaseParser) PushTraceSpan(ts TracerSpan) {
	p.stacktrace = append(p.stacktrace, ts)
}

func (p *BaseParser) PeekTraceSpan() *TracerSpan {
	idx := len(p.stacktrace) - 1
	if idx < 0 {
		return nil
	}
	return &p.stacktrace[idx]
}

func (p *BaseParser) PopTraceSpan() TracerSpan {
	idx := len(p.stacktrace) - 1
	top := p.stacktrace[idx]
	p.stacktrace = p.stacktrace[:idx]
	return top
}

func (p *BaseParser) WithinPredicate() bool { return p.predStkCnt > 0 }
func (p *BaseParser) EnterPredicate()       { p.predStkCnt++ }
func (p *BaseParser) LeavePredicate()       { p.predStkCnt-- }

// ParserFn is the signature of a parser function.  It unfortunately
// can't be a method because of Go's generics limitations, but a
// closure will fit in just right.  By being generic on its return,
// all matching functions can be generic over this same `T`, which
// allow composing recursive parsers sharing the same tooling despite
// their different return types
type ParserFn[T any] func(p Parser) (T, error)

// ZeroOrMore will call `fn` until it errors out, collecting and
// returning all the successful outputs.  Since we support any set of
// expressions within the closure `fn`, it will backtrack on error.
func ZeroOrMore[T any](p Parser, fn ParserFn[T]) ([]T, error) {
	var output []T
	for {
		state := p.State()
		item, err := fn(p)
		if err != nil {
			p.Backtrack(state)
			if isthrown(err) && !p.WithinPredicate() {
				return nil, err
			}
			break
		}
		output = append(output, item)
	}
	return output, nil
}

// OneOrMore will match `fn` once and then pass fn to ZeroOrMore
func OneOrMore[T any](p Parser, fn ParserFn[T]) ([]T, error) {
	var output []T
	head, err := fn(p)
	if err != nil {
		return nil, err
	}
	output = append(output, head)
	tail, err := ZeroOrMore(p, fn)
	if err != nil {
		return nil, err
	}
	output = append(output, tail...)
	return output, nil
}

// Choice walks through fns and return the first to succeed.  It will
// backtrack the parser cursor before each attempt, and it will fail
// if no alternatives match.
func Choice[T any](p Parser, fns []ParserFn[T]) (T, error) {
	var (
		zero        T
		expected    []string
		expectedMap = map[string]struct{}{}
		state       = p.State()
	)
	for _, fn := range fns {
		item, err := fn(p)
		if err == nil {
			return item, nil
		}
		p.Backtrack(state)
		if isthrown(err) && !p.WithinPredicate() {
			return zero, err
		}
		if berr, ok := err.(*backtrackingError); ok {
			if _, ok := expectedMap[berr.Expected]; !ok {
				expectedMap[berr.Expected] = struct{}{}
				expected = append(expected, berr.Expected)
			}
		}
	}
	exp := strings.Join(expected, ", ")
	msg := "Expected " + exp + " but got `" + string(p.Peek()) + "`"
	return zero, p.NewError(exp, msg, NewSpan(state.Location, p.Location()))
}

// Optional is a syntax sugar for an ordered choice in which the
// second option is nil
func Optional[T any](p Parser, fn ParserFn[T]) (T, error) {
	return Choice(p, []ParserFn[T]{
		fn,
		func(p Parser) (T, error) {
			var zero T
			return zero, nil
		},
	})
}

// Not returns an error if fn succeeds, or succeed if fn doesn't succeed
func Not[T any](p Parser, fn ParserFn[T]) (T, error) {
	var zero T
	p.EnterPredicate()
	state := p.State()
	_, err := fn(p)

	// unconditionally backtrack as the predicate never consumes any input
	p.Backtrack(state)
	p.LeavePredicate()

	if err == nil {
		return zero, p.NewError("!", "Not Error", NewSpan(state.Location, p.Location()))
	}
	return zero, nil
}
