package soundlaw

import (
	"fmt"
	"strconv"
	"strings"
)

// controlCharacters are reserved by the rule grammar; using one
// literally requires a backslash escape.
const controlCharacters = `[]{}<>()@!%^_, *?\+-^/=`

// maxNestingDepth bounds how deep optional groups may nest, keeping
// the recursive pattern grammar safe on adversarial input.
const maxNestingDepth = 64

// RuleParser is the recursive-descent parser for sound-change
// programs: category edits and rewrite rules, one statement per line.
type RuleParser struct {
	BaseParser
	nesting int
}

func NewRuleParser(source []byte) *RuleParser {
	p := &RuleParser{}
	p.SetInput(source)
	return p
}

// ParseProgram parses the whole source, recovering at statement
// boundaries: a malformed statement produces one ParsingError and
// parsing resumes on the next line, so a single bad rule never hides
// the rest of the program.
func (p *RuleParser) ParseProgram() (*Program, []ParsingError) {
	var (
		prog        = &Program{}
		diagnostics []ParsingError
	)
	for {
		p.skipBlank()
		if p.Peek() == eof {
			break
		}
		stmt, err := p.ParseStatement()
		if err == nil {
			p.parseInlineSpacing()
			p.maybeComment()
			if c := p.Peek(); c != eof && c != '\n' {
				loc := p.Location()
				err = p.NewError("newline", fmt.Sprintf("unexpected `%c` after statement", c), NewSpan(loc, loc))
			}
		}
		if err != nil {
			diagnostics = append(diagnostics, intoParsingError(err))
			p.skipToNextLine()
			continue
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, diagnostics
}

// GR: Statement <- Rule / CategoryEdit
func (p *RuleParser) ParseStatement() (Statement, error) {
	p.PushTraceSpan(TracerSpan{Name: "Statement"})
	defer p.PopTraceSpan()

	return Choice(p, []ParserFn[Statement]{
		func(p Parser) (Statement, error) { return p.(*RuleParser).ParseRule() },
		func(p Parser) (Statement, error) { return p.(*RuleParser).ParseCategoryEdit() },
	})
}

// GR: CategoryEdit <- Text ('+=' / '-=' / '=') CatOrEl (',' CatOrEl)*
func (p *RuleParser) ParseCategoryEdit() (Statement, error) {
	p.PushTraceSpan(TracerSpan{Name: "CategoryEdit"})
	defer p.PopTraceSpan()

	start := p.Location()
	name, err := p.parseText()
	if err != nil {
		return nil, err
	}

	p.parseInlineSpacing()
	op, err := Choice(p, []ParserFn[CategoryOp]{
		func(p Parser) (CategoryOp, error) {
			_, err := p.ExpectLiteral("+=")
			return CategoryAdd, err
		},
		func(p Parser) (CategoryOp, error) {
			_, err := p.ExpectLiteral("-=")
			return CategorySubtract, err
		},
		func(p Parser) (CategoryOp, error) {
			_, err := p.ExpectRune('=')
			return CategoryDefine, err
		},
	})
	if err != nil {
		return nil, err
	}

	p.parseInlineSpacing()
	operands, err := p.parseCatOrEls()
	if err != nil {
		return nil, err
	}
	return NewCategoryEdit(name, op, operands, NewSpan(start, p.Location())), nil
}

// GR: Rule <- Target Predicate+
// GR:       / '+' Target SugarPredicate+   (epenthesis)
// GR:       / '-' Target SugarPredicate+   (deletion)
func (p *RuleParser) ParseRule() (Statement, error) {
	p.PushTraceSpan(TracerSpan{Name: "Rule"})
	defer p.PopTraceSpan()

	return Choice(p, []ParserFn[Statement]{
		func(p Parser) (Statement, error) { return p.(*RuleParser).parsePlainRule() },
		func(p Parser) (Statement, error) { return p.(*RuleParser).parseEpenthesis() },
		func(p Parser) (Statement, error) { return p.(*RuleParser).parseDeletion() },
	})
}

func (p *RuleParser) parsePlainRule() (Statement, error) {
	start := p.Location()
	target, err := p.ParseTarget()
	if err != nil {
		return nil, err
	}
	predicates, err := p.parsePredicates(false)
	if err != nil {
		return nil, err
	}
	return NewRule(target, predicates, NewSpan(start, p.Location())), nil
}

// Epenthesis rewrite: the parsed target becomes the change of the
// first predicate and the rule's own target becomes the null
// category, so `+ a / c_` compiles like `[] > a / c_`.
func (p *RuleParser) parseEpenthesis() (Statement, error) {
	start := p.Location()
	if _, err := p.ExpectRune('+'); err != nil {
		return nil, err
	}
	p.parseInlineSpacing()
	target, err := p.ParseTarget()
	if err != nil {
		return nil, err
	}
	predicates, err := p.parsePredicates(true)
	if err != nil {
		return nil, err
	}

	nullTarget := &Target{
		Patterns:  []*Pattern{nullCategoryPattern()},
		Positions: target.Positions,
	}
	predicates[0].Changes = target.Patterns
	return NewRule(nullTarget, predicates, NewSpan(start, p.Location())), nil
}

// Deletion rewrite: every predicate's change becomes the null
// category, so `- a / c_` compiles like `a > [] / c_`.
func (p *RuleParser) parseDeletion() (Statement, error) {
	start := p.Location()
	if _, err := p.ExpectRune('-'); err != nil {
		return nil, err
	}
	p.parseInlineSpacing()
	target, err := p.ParseTarget()
	if err != nil {
		return nil, err
	}
	predicates, err := p.parsePredicates(true)
	if err != nil {
		return nil, err
	}

	for _, pred := range predicates {
		pred.Changes = []*Pattern{nullCategoryPattern()}
	}
	return NewRule(target, predicates, NewSpan(start, p.Location())), nil
}

// GR: Target <- Pattern (',' Pattern)* ('@' SignedInt ('|' SignedInt)*)?
func (p *RuleParser) ParseTarget() (*Target, error) {
	p.PushTraceSpan(TracerSpan{Name: "Target"})
	defer p.PopTraceSpan()

	head, err := p.ParsePattern()
	if err != nil {
		return nil, err
	}
	tail, err := ZeroOrMore(p, func(p Parser) (*Pattern, error) {
		if _, err := p.ExpectRune(','); err != nil {
			return nil, err
		}
		p.(*RuleParser).parseInlineSpacing()
		pattern, err := p.(*RuleParser).ParsePattern()
		if err != nil {
			return nil, err
		}
		if len(pattern.Elements) == 0 {
			return nil, p.NewError("pattern", "empty target alternative", NewSpan(p.Location(), p.Location()))
		}
		return pattern, nil
	})
	if err != nil {
		return nil, err
	}

	positions, err := Optional(p, func(p Parser) ([]int, error) {
		return p.(*RuleParser).parsePositions()
	})
	if err != nil {
		return nil, err
	}
	return &Target{Patterns: append([]*Pattern{head}, tail...), Positions: positions}, nil
}

func (p *RuleParser) parsePositions() ([]int, error) {
	if _, err := p.ExpectRune('@'); err != nil {
		return nil, err
	}
	head, err := p.parseSignedInt()
	if err != nil {
		return nil, err
	}
	tail, err := ZeroOrMore(p, func(p Parser) (int, error) {
		if _, err := p.ExpectRune('|'); err != nil {
			return 0, err
		}
		return p.(*RuleParser).parseSignedInt()
	})
	if err != nil {
		return nil, err
	}
	return append([]int{head}, tail...), nil
}

func (p *RuleParser) parsePredicates(sugar bool) ([]*Predicate, error) {
	return OneOrMore(p, func(p Parser) (*Predicate, error) {
		rp := p.(*RuleParser)
		rp.parseInlineSpacing()
		if sugar {
			return rp.parseSugarPredicate()
		}
		return rp.ParsePredicate()
	})
}

// GR: Predicate <- '>' Change (',' Change)*
// GR:              ('/' EnvironmentGroup (',' EnvironmentGroup)*)?
// GR:              ('!' EnvironmentGroup (',' EnvironmentGroup)*)?
func (p *RuleParser) ParsePredicate() (*Predicate, error) {
	p.PushTraceSpan(TracerSpan{Name: "Predicate"})
	defer p.PopTraceSpan()

	if _, err := p.ExpectRune('>'); err != nil {
		return nil, err
	}
	p.parseInlineSpacing()

	changes, err := p.parsePatternList()
	if err != nil {
		return nil, err
	}

	environment, err := p.parseEnvironmentClause('/')
	if err != nil {
		return nil, err
	}
	exception, err := p.parseEnvironmentClause('!')
	if err != nil {
		return nil, err
	}
	return &Predicate{Changes: changes, Environment: environment, Exception: exception}, nil
}

// The sugar statement forms accept predicates without a change
// clause, e.g. `+ a / c_` carries only an environment.  The rewrite
// in parseEpenthesis/parseDeletion fills the changes in afterwards.
func (p *RuleParser) parseSugarPredicate() (*Predicate, error) {
	p.PushTraceSpan(TracerSpan{Name: "Predicate"})
	defer p.PopTraceSpan()

	return Choice(p, []ParserFn[*Predicate]{
		func(p Parser) (*Predicate, error) { return p.(*RuleParser).ParsePredicate() },
		func(p Parser) (*Predicate, error) {
			rp := p.(*RuleParser)
			environment, err := rp.requireEnvironmentClause('/')
			if err != nil {
				return nil, err
			}
			exception, err := rp.parseEnvironmentClause('!')
			if err != nil {
				return nil, err
			}
			return &Predicate{Environment: environment, Exception: exception}, nil
		},
		func(p Parser) (*Predicate, error) {
			exception, err := p.(*RuleParser).requireEnvironmentClause('!')
			if err != nil {
				return nil, err
			}
			return &Predicate{Exception: exception}, nil
		},
	})
}

func (p *RuleParser) parseEnvironmentClause(marker rune) ([]*EnvironmentGroup, error) {
	p.parseInlineSpacing()
	groups, err := Optional(p, func(p Parser) ([]*EnvironmentGroup, error) {
		return p.(*RuleParser).requireEnvironmentClause(marker)
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (p *RuleParser) requireEnvironmentClause(marker rune) ([]*EnvironmentGroup, error) {
	p.parseInlineSpacing()
	if _, err := p.ExpectRune(marker); err != nil {
		return nil, err
	}
	p.parseInlineSpacing()
	return p.parseEnvironments()
}

func (p *RuleParser) parseEnvironments() ([]*EnvironmentGroup, error) {
	head, err := p.parseEnvironmentGroup()
	if err != nil {
		return nil, err
	}
	tail, err := ZeroOrMore(p, func(p Parser) (*EnvironmentGroup, error) {
		if _, err := p.ExpectRune(','); err != nil {
			return nil, err
		}
		p.(*RuleParser).parseInlineSpacing()
		return p.(*RuleParser).parseEnvironmentGroup()
	})
	if err != nil {
		return nil, err
	}
	return append([]*EnvironmentGroup{head}, tail...), nil
}

// GR: EnvironmentGroup <- Pattern ('&' Pattern)*
func (p *RuleParser) parseEnvironmentGroup() (*EnvironmentGroup, error) {
	head, err := p.ParsePattern()
	if err != nil {
		return nil, err
	}
	tail, err := ZeroOrMore(p, func(p Parser) (*Pattern, error) {
		rp := p.(*RuleParser)
		rp.parseInlineSpacing()
		if _, err := p.ExpectRune('&'); err != nil {
			return nil, err
		}
		rp.parseInlineSpacing()
		return rp.ParsePattern()
	})
	if err != nil {
		return nil, err
	}
	return &EnvironmentGroup{Patterns: append([]*Pattern{head}, tail...)}, nil
}

func (p *RuleParser) parsePatternList() ([]*Pattern, error) {
	head, err := p.ParsePattern()
	if err != nil {
		return nil, err
	}
	tail, err := ZeroOrMore(p, func(p Parser) (*Pattern, error) {
		if _, err := p.ExpectRune(','); err != nil {
			return nil, err
		}
		p.(*RuleParser).parseInlineSpacing()
		return p.(*RuleParser).ParsePattern()
	})
	if err != nil {
		return nil, err
	}
	return append([]*Pattern{head}, tail...), nil
}

// GR: Pattern <- PatternElement*
func (p *RuleParser) ParsePattern() (*Pattern, error) {
	elements, err := ZeroOrMore(p, func(p Parser) (PatternElement, error) {
		return p.(*RuleParser).ParsePatternElement()
	})
	if err != nil {
		return nil, err
	}
	return &Pattern{Elements: elements}, nil
}

// GR: PatternElement <- '(' Pattern ')?' / '(' Pattern ')'
// GR:                 / '**?' / '**' / '*?' / '*'
// GR:                 / '{' Wildcard '}' / '{' Digits '}'
// GR:                 / '[]' / '[' Text ']' / '[' CatOrEls ']'
// GR:                 / '%' / '"' / '<' / '_'
// GR:                 / Text
func (p *RuleParser) ParsePatternElement() (PatternElement, error) {
	p.PushTraceSpan(TracerSpan{Name: "PatternElement"})
	defer p.PopTraceSpan()

	return Choice(p, []ParserFn[PatternElement]{
		func(p Parser) (PatternElement, error) { return p.(*RuleParser).parseOptional(true) },
		func(p Parser) (PatternElement, error) { return p.(*RuleParser).parseOptional(false) },
		func(p Parser) (PatternElement, error) {
			kind, err := p.(*RuleParser).parseWildcard()
			if err != nil {
				return nil, err
			}
			return &WildcardElement{Kind: kind}, nil
		},
		func(p Parser) (PatternElement, error) { return p.(*RuleParser).parseRepeatWild() },
		func(p Parser) (PatternElement, error) { return p.(*RuleParser).parseRepeatN() },
		func(p Parser) (PatternElement, error) {
			if _, err := p.ExpectLiteral("[]"); err != nil {
				return nil, err
			}
			return &CategoryElement{}, nil
		},
		func(p Parser) (PatternElement, error) { return p.(*RuleParser).parseCatRef() },
		func(p Parser) (PatternElement, error) { return p.(*RuleParser).parseInlineCategory() },
		func(p Parser) (PatternElement, error) { return p.(*RuleParser).parseSimpleElement() },
		func(p Parser) (PatternElement, error) {
			text, err := p.(*RuleParser).parseText()
			if err != nil {
				return nil, err
			}
			return &TextElement{Value: text}, nil
		},
	})
}

func (p *RuleParser) parseOptional(nonGreedy bool) (PatternElement, error) {
	if p.nesting >= maxNestingDepth {
		loc := p.Location()
		return nil, p.NewError("pattern", "optional groups nested too deeply", NewSpan(loc, loc))
	}

	if _, err := p.ExpectRune('('); err != nil {
		return nil, err
	}

	p.nesting++
	pattern, err := p.ParsePattern()
	p.nesting--
	if err != nil {
		return nil, err
	}

	closer := ")"
	if nonGreedy {
		closer = ")?"
	}
	if _, err := p.ExpectLiteral(closer); err != nil {
		return nil, err
	}
	return &OptionalElement{Pattern: pattern, NonGreedy: nonGreedy}, nil
}

// parseWildcard must try the longest spelling first, since `*`
// prefixes all the others.
func (p *RuleParser) parseWildcard() (WildcardKind, error) {
	for _, s := range wildcardSpellings {
		state := p.State()
		if _, err := p.ExpectLiteral(s.Spelling); err == nil {
			return s.Kind, nil
		}
		p.Backtrack(state)
	}
	loc := p.Location()
	return 0, p.NewError("wildcard", "expected a wildcard", NewSpan(loc, loc))
}

func (p *RuleParser) parseRepeatWild() (PatternElement, error) {
	if _, err := p.ExpectRune('{'); err != nil {
		return nil, err
	}
	kind, err := p.parseWildcard()
	if err != nil {
		return nil, err
	}
	if _, err := p.ExpectRune('}'); err != nil {
		return nil, err
	}
	return &RepeatWildElement{Kind: kind}, nil
}

func (p *RuleParser) parseRepeatN() (PatternElement, error) {
	if _, err := p.ExpectRune('{'); err != nil {
		return nil, err
	}
	count, err := p.parseDigits()
	if err != nil {
		return nil, err
	}
	if _, err := p.ExpectRune('}'); err != nil {
		return nil, err
	}
	return &RepeatNElement{Count: count}, nil
}

func (p *RuleParser) parseCatRef() (PatternElement, error) {
	if _, err := p.ExpectRune('['); err != nil {
		return nil, err
	}
	name, err := p.parseText()
	if err != nil {
		return nil, err
	}
	if _, err := p.ExpectRune(']'); err != nil {
		return nil, err
	}
	return &CatRefElement{Name: name}, nil
}

func (p *RuleParser) parseInlineCategory() (PatternElement, error) {
	if _, err := p.ExpectRune('['); err != nil {
		return nil, err
	}
	alternatives, err := p.parseCatOrEls()
	if err != nil {
		return nil, err
	}
	if _, err := p.ExpectRune(']'); err != nil {
		return nil, err
	}
	return &CategoryElement{Alternatives: alternatives}, nil
}

func (p *RuleParser) parseSimpleElement() (PatternElement, error) {
	start := p.Location()
	c, err := p.Any()
	if err != nil {
		return nil, err
	}
	switch c {
	case '%', '_':
		return &TargetRefElement{}, nil
	case '<':
		return &TargetRefElement{Reversed: true}, nil
	case '"':
		return &DittoElement{}, nil
	}
	msg := fmt.Sprintf("Expected `%%`, `_`, `<`, or `\"` but got `%c`", c)
	return nil, p.NewError("meta", msg, NewSpan(start, p.Location()))
}

// GR: CatOrEl <- '[' Text ']' / Text
func (p *RuleParser) parseCatOrEl() (CatOrEl, error) {
	return Choice(p, []ParserFn[CatOrEl]{
		func(p Parser) (CatOrEl, error) {
			rp := p.(*RuleParser)
			if _, err := p.ExpectRune('['); err != nil {
				return CatOrEl{}, err
			}
			name, err := rp.parseText()
			if err != nil {
				return CatOrEl{}, err
			}
			if _, err := p.ExpectRune(']'); err != nil {
				return CatOrEl{}, err
			}
			return CatOrEl{Value: name, IsCat: true}, nil
		},
		func(p Parser) (CatOrEl, error) {
			text, err := p.(*RuleParser).parseText()
			if err != nil {
				return CatOrEl{}, err
			}
			return CatOrEl{Value: text}, nil
		},
	})
}

func (p *RuleParser) parseCatOrEls() ([]CatOrEl, error) {
	head, err := p.parseCatOrEl()
	if err != nil {
		return nil, err
	}
	tail, err := ZeroOrMore(p, func(p Parser) (CatOrEl, error) {
		if _, err := p.ExpectRune(','); err != nil {
			return CatOrEl{}, err
		}
		p.(*RuleParser).parseInlineSpacing()
		return p.(*RuleParser).parseCatOrEl()
	})
	if err != nil {
		return nil, err
	}
	return append([]CatOrEl{head}, tail...), nil
}

// parseText consumes a maximal run of characters that are neither
// grammar-control characters nor whitespace; a control character can
// be included by escaping it with a backslash.
func (p *RuleParser) parseText() (string, error) {
	start := p.Location()
	var b strings.Builder
	for {
		c := p.Peek()
		if c == '\\' {
			state := p.State()
			p.Any()
			escaped := p.Peek()
			if isControl(escaped) {
				p.Any()
				b.WriteRune(escaped)
				continue
			}
			p.Backtrack(state)
			break
		}
		if c == eof || isControl(c) || isSpacing(c) {
			break
		}
		p.Any()
		b.WriteRune(c)
	}
	if b.Len() == 0 {
		return "", p.NewError("text", "expected text", NewSpan(start, p.Location()))
	}
	return b.String(), nil
}

func (p *RuleParser) parseDigits() (int, error) {
	start := p.Location()
	var b strings.Builder
	for {
		c := p.Peek()
		if c < '0' || c > '9' {
			break
		}
		p.Any()
		b.WriteRune(c)
	}
	if b.Len() == 0 {
		return 0, p.NewError("digit", "expected a digit", NewSpan(start, p.Location()))
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, p.NewError("digit", "number out of range", NewSpan(start, p.Location()))
	}
	return n, nil
}

func (p *RuleParser) parseSignedInt() (int, error) {
	negative := false
	if p.Peek() == '-' {
		p.Any()
		negative = true
	}
	n, err := p.parseDigits()
	if err != nil {
		return 0, err
	}
	if negative {
		return -n, nil
	}
	return n, nil
}

func (p *RuleParser) parseInlineSpacing() {
	for {
		c := p.Peek()
		if c != ' ' && c != '\t' {
			return
		}
		p.Any()
	}
}

func (p *RuleParser) maybeComment() {
	state := p.State()
	if _, err := p.ExpectLiteral("//"); err != nil {
		p.Backtrack(state)
		return
	}
	for {
		c := p.Peek()
		if c == eof || c == '\n' {
			return
		}
		p.Any()
	}
}

// skipBlank consumes whitespace, newlines, and whole-line comments
// between statements.
func (p *RuleParser) skipBlank() {
	for {
		switch c := p.Peek(); {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			p.Any()
		case c == '/':
			state := p.State()
			if _, err := p.ExpectLiteral("//"); err != nil {
				p.Backtrack(state)
				return
			}
			for {
				c := p.Peek()
				if c == eof || c == '\n' {
					break
				}
				p.Any()
			}
		default:
			return
		}
	}
}

func (p *RuleParser) skipToNextLine() {
	for {
		c := p.Peek()
		if c == eof {
			return
		}
		p.Any()
		if c == '\n' {
			return
		}
	}
}

func isControl(c rune) bool {
	return strings.ContainsRune(controlCharacters, c)
}

func isSpacing(c rune) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func intoParsingError(err error) ParsingError {
	switch e := err.(type) {
	case ParsingError:
		return e
	case *backtrackingError:
		return ParsingError{
			Message:    e.Message,
			Production: e.Production,
			Span:       e.Span,
		}
	default:
		return ParsingError{Message: err.Error()}
	}
}
