package soundlaw

// Match is one entry in a MatchTrace: either a single token consumed
// by a pattern element, or a variable-length span carrying the nested
// trace that produced it.  The nesting is what makes a successful
// match replayable for rewriting: every token range stays tied to the
// pattern element that consumed it.
type Match interface {
	Range() Range
	matchNode()
}

// SingleMatch records one pattern element consuming exactly one token.
type SingleMatch struct {
	Tokens Range
}

// MultipleMatch records one pattern element consuming a span of zero
// or more tokens: optional groups, wildcards, categories, and
// repeated elements.
type MultipleMatch struct {
	Tokens Range
	Nested []Match

	// Alt is the index of the category alternative that matched,
	// or -1 for non-category elements.  The interpreter uses it to
	// pair target categories with change categories.
	Alt int
}

func (m *SingleMatch) Range() Range   { return m.Tokens }
func (m *MultipleMatch) Range() Range { return m.Tokens }

func (m *SingleMatch) matchNode()   {}
func (m *MultipleMatch) matchNode() {}

// MatchTrace records how a pattern matched a token range: one or more
// Match entries per pattern element, in pattern order.
type MatchTrace struct {
	Tokens  Range
	Matches []Match
}

// AltIndexes walks the trace in order and collects the category
// alternative index of every category-valued match.
func (t *MatchTrace) AltIndexes() []int {
	var alts []int
	for _, m := range t.Matches {
		if mm, ok := m.(*MultipleMatch); ok && mm.Alt >= 0 {
			alts = append(alts, mm.Alt)
		}
	}
	return alts
}

// MatchAt matches `pattern` against `word`'s phones starting exactly
// at `index`, resolving category references against the live `table`.
// It returns the trace of a successful match, or false: failing to
// match is normal control flow, never an error.
func MatchAt(word *Word, pattern *Pattern, index int, table CategoryTable) (*MatchTrace, bool) {
	ctx := &matchContext{word: word, table: table}
	return ctx.MatchAt(pattern, index)
}

// matchContext carries everything one match attempt needs: the word,
// the live category table, and - when evaluating environments or
// self-references - the tokens the rule's target matched.
type matchContext struct {
	word   *Word
	table  CategoryTable
	target []string
}

func (ctx *matchContext) MatchAt(pattern *Pattern, index int) (*MatchTrace, bool) {
	items, ok := compilePattern(pattern)
	if !ok || index < 0 || index > len(ctx.word.Phones) {
		return nil, false
	}

	var trace *MatchTrace
	matched := ctx.matchSeq(items, index, index, func(ms []Match, end int) bool {
		trace = &MatchTrace{Tokens: NewRange(index, end), Matches: ms}
		return true
	})
	if !matched {
		return nil, false
	}
	return trace, true
}

// matchEndingAt reports whether the pattern can match a span ending
// exactly at `end`.  Environment evaluation uses it to anchor the
// pre-target half of an environment against the matched target.
func (ctx *matchContext) matchEndingAt(pattern *Pattern, end int) bool {
	items, ok := compilePattern(pattern)
	if !ok {
		return false
	}
	if len(items) == 0 {
		return true
	}
	for s := end; s >= 0; s-- {
		anchored := ctx.matchSeq(items, s, s, func(ms []Match, e int) bool {
			return e == end
		})
		if anchored {
			return true
		}
	}
	return false
}

//  ---- compiled patterns ----

// patternItem pairs a pattern element with the postfix quantifier
// that follows it, if any.
type patternItem struct {
	elem    PatternElement
	exactly int // from {N}; -1 when absent
	repeat  WildcardKind
	wild    bool // from {*}, {*?}, {**}, {**?}
}

func (it patternItem) quantified() bool { return it.exactly >= 0 || it.wild }

// compilePattern attaches postfix quantifiers to the element each one
// follows.  A quantifier with nothing to quantify makes the pattern
// unmatchable.
func compilePattern(p *Pattern) ([]patternItem, bool) {
	var items []patternItem
	for _, e := range p.Elements {
		switch q := e.(type) {
		case *RepeatNElement:
			if len(items) == 0 || items[len(items)-1].quantified() {
				return nil, false
			}
			items[len(items)-1].exactly = q.Count
		case *RepeatWildElement:
			if len(items) == 0 || items[len(items)-1].quantified() {
				return nil, false
			}
			items[len(items)-1].repeat = q.Kind
			items[len(items)-1].wild = true
		default:
			items = append(items, patternItem{elem: e, exactly: -1})
		}
	}
	return items, true
}

//  ---- the backtracking engine ----

// contFn receives an item's matches and the position after them;
// returning true commits the overall match and stops the search.
type contFn func(ms []Match, next int) bool

// matchSeq matches a compiled item sequence starting at pos,
// depth-first: every way the head item can match is offered to the
// continuation of the tail, so earlier elements backtrack whenever a
// later element cannot be satisfied.  `start` is where the whole
// pattern began, which the ditto element needs.
func (ctx *matchContext) matchSeq(items []patternItem, pos, start int, cont contFn) bool {
	if len(items) == 0 {
		return cont(nil, pos)
	}
	return ctx.matchItem(items[0], pos, start, func(ms []Match, next int) bool {
		return ctx.matchSeq(items[1:], next, start, func(tail []Match, end int) bool {
			combined := make([]Match, 0, len(ms)+len(tail))
			combined = append(combined, ms...)
			combined = append(combined, tail...)
			return cont(combined, end)
		})
	})
}

func (ctx *matchContext) matchItem(item patternItem, pos, start int, cont contFn) bool {
	switch {
	case item.wild:
		return ctx.matchRepeatWild(item.elem, item.repeat, pos, start, cont)
	case item.exactly >= 0:
		return ctx.matchExactly(item.elem, item.exactly, pos, start, cont)
	default:
		return ctx.matchOnce(item.elem, pos, start, cont)
	}
}

// matchExactly requires the element to recur exactly n times in a
// row, wrapping the occurrences into one MultipleMatch.
func (ctx *matchContext) matchExactly(elem PatternElement, n, pos, start int, cont contFn) bool {
	var rec func(remaining, p int, acc []Match) bool
	rec = func(remaining, p int, acc []Match) bool {
		if remaining == 0 {
			m := &MultipleMatch{Tokens: NewRange(pos, p), Nested: acc, Alt: -1}
			return cont([]Match{m}, p)
		}
		return ctx.matchOnce(elem, p, start, func(ms []Match, next int) bool {
			combined := make([]Match, 0, len(acc)+len(ms))
			combined = append(combined, acc...)
			combined = append(combined, ms...)
			return rec(remaining-1, next, combined)
		})
	}
	return rec(n, pos, nil)
}

// matchRepeatWild repeats the element per the wildcard's semantics:
// zero or more occurrences, longest count first when greedy, shortest
// first otherwise.  Basic kinds refuse occurrences that cover a word
// boundary; extended kinds may cross it.
func (ctx *matchContext) matchRepeatWild(elem PatternElement, kind WildcardKind, pos, start int, cont contFn) bool {
	var rec func(p int, acc []Match) bool
	rec = func(p int, acc []Match) bool {
		stop := func() bool {
			nested := make([]Match, len(acc))
			copy(nested, acc)
			m := &MultipleMatch{Tokens: NewRange(pos, p), Nested: nested, Alt: -1}
			return cont([]Match{m}, p)
		}
		more := func() bool {
			return ctx.matchOnce(elem, p, start, func(ms []Match, next int) bool {
				if next == p {
					// a zero-width occurrence would repeat forever
					return false
				}
				if !kind.Extended() && containsBoundary(ctx.word.Phones[p:next]) {
					return false
				}
				combined := make([]Match, 0, len(acc)+len(ms))
				combined = append(combined, acc...)
				combined = append(combined, ms...)
				return rec(next, combined)
			})
		}
		if kind.Greedy() {
			return more() || stop()
		}
		return stop() || more()
	}
	return rec(pos, nil)
}

// matchOnce matches a single occurrence of one element, offering
// every admissible way to the continuation in preference order.
func (ctx *matchContext) matchOnce(elem PatternElement, pos, start int, cont contFn) bool {
	phones := ctx.word.Phones

	switch e := elem.(type) {
	case *TextElement:
		// literal text is re-tokenized with the word's own
		// inventory, so one element may consume several phones
		tokens := Tokenize(e.Value, ctx.word.Graphs, ctx.word.Separator)
		if pos+len(tokens) > len(phones) {
			return false
		}
		ms := make([]Match, len(tokens))
		for i, tok := range tokens {
			if phones[pos+i] != tok {
				return false
			}
			ms[i] = &SingleMatch{Tokens: NewRange(pos+i, pos+i+1)}
		}
		return cont(ms, pos+len(tokens))

	case *DittoElement:
		if pos == start || pos == 0 || pos >= len(phones) {
			return false
		}
		if phones[pos] != phones[pos-1] {
			return false
		}
		return cont([]Match{&SingleMatch{Tokens: NewRange(pos, pos+1)}}, pos+1)

	case *CatRefElement:
		category, ok := ctx.table[e.Name]
		if !ok {
			return false
		}
		return ctx.matchAlternatives(category.Elements, pos, cont)

	case *CategoryElement:
		if len(e.Alternatives) == 0 {
			// the null category matches the empty span
			m := &MultipleMatch{Tokens: NewRange(pos, pos), Alt: -1}
			return cont([]Match{m}, pos)
		}
		alternatives, _ := ctx.table.Resolve(e.Alternatives, ctx.word.Graphs, ctx.word.Separator)
		return ctx.matchAlternatives(alternatives, pos, cont)

	case *WildcardElement:
		return ctx.matchWildcard(e.Kind, pos, cont)

	case *OptionalElement:
		sub, ok := compilePattern(e.Pattern)
		if !ok {
			return false
		}
		attempt := func() bool {
			return ctx.matchSeq(sub, pos, start, func(ms []Match, next int) bool {
				m := &MultipleMatch{Tokens: NewRange(pos, next), Nested: ms, Alt: -1}
				return cont([]Match{m}, next)
			})
		}
		skip := func() bool {
			m := &MultipleMatch{Tokens: NewRange(pos, pos), Alt: -1}
			return cont([]Match{m}, pos)
		}
		if e.NonGreedy {
			return skip() || attempt()
		}
		return attempt() || skip()

	case *TargetRefElement:
		if ctx.target == nil {
			return false
		}
		tokens := ctx.target
		if e.Reversed {
			tokens = reversedTokens(tokens)
		}
		if pos+len(tokens) > len(phones) {
			return false
		}
		nested := make([]Match, len(tokens))
		for i, tok := range tokens {
			if phones[pos+i] != tok {
				return false
			}
			nested[i] = &SingleMatch{Tokens: NewRange(pos+i, pos+i+1)}
		}
		m := &MultipleMatch{Tokens: NewRange(pos, pos+len(tokens)), Nested: nested, Alt: -1}
		return cont([]Match{m}, pos+len(tokens))
	}

	// orphan quantifiers are rejected by compilePattern
	return false
}

// matchAlternatives tries each category element in order; the first
// alternative that both matches here and satisfies the continuation
// wins, consuming its exact token length.
func (ctx *matchContext) matchAlternatives(alternatives [][]string, pos int, cont contFn) bool {
	phones := ctx.word.Phones
	for alt, seq := range alternatives {
		if pos+len(seq) > len(phones) {
			continue
		}
		matched := true
		for i, tok := range seq {
			if phones[pos+i] != tok {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		nested := make([]Match, len(seq))
		for i := range seq {
			nested[i] = &SingleMatch{Tokens: NewRange(pos+i, pos+i+1)}
		}
		m := &MultipleMatch{Tokens: NewRange(pos, pos+len(seq)), Nested: nested, Alt: alt}
		if cont([]Match{m}, pos+len(seq)) {
			return true
		}
	}
	return false
}

// matchWildcard offers spans of tokens, longest first when greedy.
// Basic wildcards never span a boundary token.
func (ctx *matchContext) matchWildcard(kind WildcardKind, pos int, cont contFn) bool {
	phones := ctx.word.Phones
	max := len(phones) - pos
	if !kind.Extended() {
		max = 0
		for pos+max < len(phones) && phones[pos+max] != Boundary {
			max++
		}
	}

	try := func(n int) bool {
		nested := make([]Match, n)
		for i := 0; i < n; i++ {
			nested[i] = &SingleMatch{Tokens: NewRange(pos+i, pos+i+1)}
		}
		m := &MultipleMatch{Tokens: NewRange(pos, pos+n), Nested: nested, Alt: -1}
		return cont([]Match{m}, pos+n)
	}

	if kind.Greedy() {
		for n := max; n >= 0; n-- {
			if try(n) {
				return true
			}
		}
		return false
	}
	for n := 0; n <= max; n++ {
		if try(n) {
			return true
		}
	}
	return false
}

func containsBoundary(phones []string) bool {
	for _, p := range phones {
		if p == Boundary {
			return true
		}
	}
	return false
}

func reversedTokens(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[len(tokens)-1-i] = t
	}
	return out
}
