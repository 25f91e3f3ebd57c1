package soundlaw

import (
	"fmt"
	"strconv"
	"strings"
)

//  ---- Wildcards ----

// WildcardKind distinguishes the four wildcard spellings.  Greedy
// forms prefer the longest span that still lets the rest of the
// pattern match; extended forms are allowed to cross word-boundary
// tokens.
type WildcardKind int

const (
	WildcardGreedy WildcardKind = iota
	WildcardNonGreedy
	WildcardGreedyExtended
	WildcardNonGreedyExtended
)

// wildcardSpellings must be tried longest first when parsing, since
// `*` prefixes every other spelling.
var wildcardSpellings = []struct {
	Spelling string
	Kind     WildcardKind
}{
	{"**?", WildcardNonGreedyExtended},
	{"**", WildcardGreedyExtended},
	{"*?", WildcardNonGreedy},
	{"*", WildcardGreedy},
}

func (k WildcardKind) Spelling() string {
	for _, s := range wildcardSpellings {
		if s.Kind == k {
			return s.Spelling
		}
	}
	return "*"
}

func (k WildcardKind) Greedy() bool {
	return k == WildcardGreedy || k == WildcardGreedyExtended
}

func (k WildcardKind) Extended() bool {
	return k == WildcardGreedyExtended || k == WildcardNonGreedyExtended
}

//  ---- Category operands ----

// CatOrEl is one operand of a category edit or one alternative of an
// inline category: either a reference to a named category or a
// literal element, to be tokenized with the active inventory.
type CatOrEl struct {
	Value string
	IsCat bool
}

func (c CatOrEl) Text() string {
	if c.IsCat {
		return "[" + c.Value + "]"
	}
	return c.Value
}

//  ---- Pattern elements ----

// PatternElement is one element of a pattern.  The concrete types
// form a closed set; the matcher switches over them.
type PatternElement interface {
	// Text is a source-shaped rendering of the element
	Text() string

	elementNode()
}

// TextElement is a literal text fragment.  It is re-tokenized with
// the word's grapheme inventory at match time, so one element may
// consume several phones.
type TextElement struct {
	Value string
}

// OptionalElement matches its nested pattern zero or one times.  The
// greedy form tries to match it first; the non-greedy form tries to
// skip it first.
type OptionalElement struct {
	Pattern   *Pattern
	NonGreedy bool
}

// WildcardElement matches a variable-length span of tokens.
type WildcardElement struct {
	Kind WildcardKind
}

// RepeatNElement is a postfix quantifier requiring the preceding
// element to match exactly N times.
type RepeatNElement struct {
	Count int
}

// RepeatWildElement is a postfix quantifier repeating the preceding
// element per the named wildcard's semantics.
type RepeatWildElement struct {
	Kind WildcardKind
}

// CatRefElement matches any element of the named category, resolved
// against the live category table at match time.
type CatRefElement struct {
	Name string
}

// CategoryElement is an inline anonymous category.  An empty
// alternative list is the null category, the zero-width placeholder
// used by the epenthesis and deletion sugar.
type CategoryElement struct {
	Alternatives []CatOrEl
}

// DittoElement requires the current token to equal the token matched
// immediately before it.
type DittoElement struct{}

// TargetRefElement substitutes the token sequence most recently
// matched by the rule's own target (reversed for `<`).  In an
// environment pattern its first occurrence marks the target slot.
type TargetRefElement struct {
	Reversed bool
}

func (e *TextElement) elementNode()       {}
func (e *OptionalElement) elementNode()   {}
func (e *WildcardElement) elementNode()   {}
func (e *RepeatNElement) elementNode()    {}
func (e *RepeatWildElement) elementNode() {}
func (e *CatRefElement) elementNode()     {}
func (e *CategoryElement) elementNode()   {}
func (e *DittoElement) elementNode()      {}
func (e *TargetRefElement) elementNode()  {}

func (e *TextElement) Text() string { return e.Value }

func (e *OptionalElement) Text() string {
	if e.NonGreedy {
		return "(" + e.Pattern.Text() + ")?"
	}
	return "(" + e.Pattern.Text() + ")"
}

func (e *WildcardElement) Text() string   { return e.Kind.Spelling() }
func (e *RepeatNElement) Text() string    { return "{" + strconv.Itoa(e.Count) + "}" }
func (e *RepeatWildElement) Text() string { return "{" + e.Kind.Spelling() + "}" }
func (e *CatRefElement) Text() string     { return "[" + e.Name + "]" }

func (e *CategoryElement) Text() string {
	parts := make([]string, len(e.Alternatives))
	for i, a := range e.Alternatives {
		parts[i] = a.Text()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (e *DittoElement) Text() string { return `"` }

func (e *TargetRefElement) Text() string {
	if e.Reversed {
		return "<"
	}
	return "%"
}

//  ---- Pattern ----

// Pattern is an ordered sequence of pattern elements.
type Pattern struct {
	Elements []PatternElement
}

func (p *Pattern) Text() string {
	var b strings.Builder
	for _, e := range p.Elements {
		b.WriteString(e.Text())
	}
	return b.String()
}

// nullCategoryPattern is the `[]` placeholder pattern the epenthesis
// and deletion sugar rewrite into.
func nullCategoryPattern() *Pattern {
	return &Pattern{Elements: []PatternElement{&CategoryElement{}}}
}

//  ---- Rules ----

// Target is what a rule looks for: one or more alternative patterns
// (comma-separated in source, paired positionally with the change
// alternatives) plus an optional occurrence filter from an `@`
// clause, where negative positions count from the end of the word.
type Target struct {
	Patterns  []*Pattern
	Positions []int
}

// EnvironmentGroup joins environment patterns that must hold
// simultaneously (`&` in source).
type EnvironmentGroup struct {
	Patterns []*Pattern
}

// Predicate is one `> change / environment ! exception` clause.
// Environment groups are OR-ed; a matching exception group vetoes the
// predicate.
type Predicate struct {
	Changes     []*Pattern
	Environment []*EnvironmentGroup
	Exception   []*EnvironmentGroup
}

// Rule is a target plus one or more predicates.  Predicates are tried
// in order and the first applicable one wins.
type Rule struct {
	span       Span
	Target     *Target
	Predicates []*Predicate
}

func NewRule(target *Target, predicates []*Predicate, span Span) *Rule {
	return &Rule{span: span, Target: target, Predicates: predicates}
}

func (r *Rule) Span() Span { return r.span }

//  ---- Category edits ----

// CategoryOp selects which category edit operator a statement uses.
type CategoryOp int

const (
	CategoryDefine   CategoryOp = iota // =
	CategoryAdd                        // +=
	CategorySubtract                   // -=
)

func (op CategoryOp) String() string {
	switch op {
	case CategoryAdd:
		return "+="
	case CategorySubtract:
		return "-="
	default:
		return "="
	}
}

// CategoryEdit defines, extends, or shrinks a named category.
type CategoryEdit struct {
	span     Span
	Name     string
	Op       CategoryOp
	Operands []CatOrEl
}

func NewCategoryEdit(name string, op CategoryOp, operands []CatOrEl, span Span) *CategoryEdit {
	return &CategoryEdit{span: span, Name: name, Op: op, Operands: operands}
}

func (c *CategoryEdit) Span() Span { return c.span }

//  ---- Program ----

// Statement is either a *Rule or a *CategoryEdit, carrying the source
// span it was parsed from.
type Statement interface {
	Span() Span
	statementNode()
}

func (r *Rule) statementNode()         {}
func (c *CategoryEdit) statementNode() {}

// Program is an ordered sequence of statements; the order is the
// execution order.
type Program struct {
	Statements []Statement
}

func (p *Program) String() string {
	return fmt.Sprintf("Program(%d statements)", len(p.Statements))
}
