package soundlaw

// InterpreterState is the run-local state of one program execution:
// the grapheme inventory in force, the live category table, and any
// warnings raised along the way.  It is created per run and mutated
// only by category-edit statements.
type InterpreterState struct {
	Graphs     []string
	Separator  string
	Categories CategoryTable
	Warnings   []Warning
}

func NewInterpreterState(graphs []string, separator string) *InterpreterState {
	return &InterpreterState{
		Graphs:     SortGraphs(graphs),
		Separator:  separator,
		Categories: CategoryTable{},
	}
}

// Run executes the program statements in order over the word set and
// returns the transformed words.
func (s *InterpreterState) Run(prog *Program, words []*Word) []*Word {
	current := words
	for _, stmt := range prog.Statements {
		current = s.Step(stmt, current)
	}
	return current
}

// Step executes a single statement.  Splitting the fold out this way
// keeps the interpreter testable on statement prefixes: feed a few
// statements, inspect the table.
func (s *InterpreterState) Step(stmt Statement, words []*Word) []*Word {
	switch n := stmt.(type) {
	case *CategoryEdit:
		s.Warnings = append(s.Warnings, s.Categories.Apply(n, s.Graphs, s.Separator)...)
		return words
	case *Rule:
		out := make([]*Word, len(words))
		for i, w := range words {
			out[i] = s.applyRule(n, w)
		}
		return out
	}
	return words
}

// occurrence is one place the rule's target matched, remembering
// which target alternative it was.
type occurrence struct {
	trace      *MatchTrace
	patternIdx int
}

// application is one committed rewrite, ready to splice.
type application struct {
	span        Range
	replacement []string
}

// applyRule rewrites every applicable occurrence of the rule's
// target within one word.  Occurrences are enumerated left to right
// and non-overlapping against the pre-rule phones, numbered for the
// `@` filter, gated by the first applicable predicate, and finally
// spliced right to left into a copy so earlier splice points never
// shift later ranges.
func (s *InterpreterState) applyRule(rule *Rule, word *Word) *Word {
	occurrences := s.findOccurrences(rule, word)
	occurrences = filterPositions(occurrences, rule.Target.Positions)

	var apps []application
	for _, occ := range occurrences {
		pred, ok := s.selectPredicate(rule, word, occ)
		if !ok || len(pred.Changes) == 0 {
			continue
		}
		changeIdx := min(occ.patternIdx, len(pred.Changes)-1)
		apps = append(apps, application{
			span:        occ.trace.Tokens,
			replacement: s.resolveChange(pred.Changes[changeIdx], word, occ),
		})
	}
	if len(apps) == 0 {
		return word
	}

	out := word.Clone()
	for i := len(apps) - 1; i >= 0; i-- {
		out.Phones = splice(out.Phones, apps[i].span, apps[i].replacement)
	}
	return out
}

func (s *InterpreterState) findOccurrences(rule *Rule, word *Word) []occurrence {
	ctx := &matchContext{word: word, table: s.Categories}

	var occurrences []occurrence
	pos := 0
	for pos <= len(word.Phones) {
		matched := false
		for i, pattern := range rule.Target.Patterns {
			trace, ok := ctx.MatchAt(pattern, pos)
			if !ok {
				continue
			}
			// a zero-width match outside the outer boundary tokens
			// would splice text outside the word
			if trace.Tokens.Len() == 0 && (pos == 0 || pos == len(word.Phones)) {
				continue
			}
			occurrences = append(occurrences, occurrence{trace: trace, patternIdx: i})
			if end := trace.Tokens.End; end > pos {
				pos = end
			} else {
				pos++
			}
			matched = true
			break
		}
		if !matched {
			pos++
		}
	}
	return occurrences
}

// filterPositions keeps only the occurrences selected by an `@`
// clause.  Occurrences are numbered from 1; negative positions count
// from the end, so -1 is the last one.  Out-of-range positions
// select nothing.
func filterPositions(occurrences []occurrence, positions []int) []occurrence {
	if len(positions) == 0 {
		return occurrences
	}
	n := len(occurrences)
	keep := make(map[int]bool, len(positions))
	for _, p := range positions {
		idx := p
		if p < 0 {
			idx = n + 1 + p
		}
		if idx >= 1 && idx <= n {
			keep[idx-1] = true
		}
	}
	var out []occurrence
	for i, occ := range occurrences {
		if keep[i] {
			out = append(out, occ)
		}
	}
	return out
}

// selectPredicate returns the first predicate whose environment holds
// and whose exception does not: the first applicable predicate wins.
func (s *InterpreterState) selectPredicate(rule *Rule, word *Word, occ occurrence) (*Predicate, bool) {
	span := occ.trace.Tokens
	target := word.Phones[span.Start:span.End]
	for _, pred := range rule.Predicates {
		if !s.environmentHolds(pred.Environment, word, span, target) {
			continue
		}
		if len(pred.Exception) > 0 && s.environmentHolds(pred.Exception, word, span, target) {
			continue
		}
		return pred, true
	}
	return nil, false
}

// environmentHolds implements the clause's OR-of-AND shape: an empty
// clause holds vacuously; otherwise some group must have all its
// patterns hold around the matched target.
func (s *InterpreterState) environmentHolds(groups []*EnvironmentGroup, word *Word, span Range, target []string) bool {
	if len(groups) == 0 {
		return true
	}
	for _, group := range groups {
		all := true
		for _, pattern := range group.Patterns {
			if !s.patternHoldsAround(pattern, word, span, target) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// patternHoldsAround evaluates one environment pattern against a
// matched target.  The first non-reversed target-reference element
// (`_` or `%`) is the slot: everything before it must match ending
// exactly at the target's start, everything after it must match
// starting at the target's end.  A pattern with no slot holds if it
// matches anywhere in the word.  Further target references match the
// target's token sequence by value.
func (s *InterpreterState) patternHoldsAround(pattern *Pattern, word *Word, span Range, target []string) bool {
	ctx := &matchContext{word: word, table: s.Categories, target: target}

	slot := -1
	for i, e := range pattern.Elements {
		if ref, ok := e.(*TargetRefElement); ok && !ref.Reversed {
			slot = i
			break
		}
	}
	if slot < 0 {
		for i := 0; i <= len(word.Phones); i++ {
			if _, ok := ctx.MatchAt(pattern, i); ok {
				return true
			}
		}
		return false
	}

	pre := &Pattern{Elements: pattern.Elements[:slot]}
	post := &Pattern{Elements: pattern.Elements[slot+1:]}
	if !ctx.matchEndingAt(pre, span.Start) {
		return false
	}
	_, ok := ctx.MatchAt(post, span.End)
	return ok
}

// resolveChange produces the replacement tokens for one applied
// occurrence.  Category-valued change elements pair positionally with
// the category alternatives the target matched, clamped to the last
// element when the change category is shorter.
func (s *InterpreterState) resolveChange(change *Pattern, word *Word, occ occurrence) []string {
	var (
		out    []string
		alts   = occ.trace.AltIndexes()
		altIdx = 0
		span   = occ.trace.Tokens
		target = word.Phones[span.Start:span.End]
	)
	nextAlt := func() int {
		if altIdx < len(alts) {
			a := alts[altIdx]
			altIdx++
			return a
		}
		return 0
	}

	for _, e := range change.Elements {
		switch n := e.(type) {
		case *TextElement:
			out = append(out, Tokenize(n.Value, s.Graphs, s.Separator)...)

		case *CatRefElement:
			category, ok := s.Categories[n.Name]
			if !ok {
				s.Warnings = append(s.Warnings, warnf("change references undefined category %q", n.Name))
				nextAlt()
				continue
			}
			out = append(out, pickElement(category.Elements, nextAlt())...)

		case *CategoryElement:
			if len(n.Alternatives) == 0 {
				// the null category emits nothing
				continue
			}
			elements, missing := s.Categories.Resolve(n.Alternatives, s.Graphs, s.Separator)
			for _, name := range missing {
				s.Warnings = append(s.Warnings, warnf("change references undefined category %q", name))
			}
			out = append(out, pickElement(elements, nextAlt())...)

		case *TargetRefElement:
			if n.Reversed {
				out = append(out, reversedTokens(target)...)
			} else {
				out = append(out, target...)
			}

		case *DittoElement:
			switch {
			case len(out) > 0:
				out = append(out, out[len(out)-1])
			case span.Start > 0:
				out = append(out, word.Phones[span.Start-1])
			}

		default:
			// wildcards, optionals, and repeat markers have no
			// defined emission in a change
		}
	}
	return out
}

func pickElement(elements [][]string, idx int) []string {
	if len(elements) == 0 {
		return nil
	}
	if idx >= len(elements) {
		idx = len(elements) - 1
	}
	return elements[idx]
}

func splice(phones []string, span Range, replacement []string) []string {
	out := make([]string, 0, len(phones)-span.Len()+len(replacement))
	out = append(out, phones[:span.Start]...)
	out = append(out, replacement...)
	out = append(out, phones[span.End:]...)
	return out
}
