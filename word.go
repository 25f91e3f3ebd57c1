package soundlaw

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Boundary is the synthetic token that marks word edges and internal
// whitespace.  It matches like any other phone but renders as a space.
const Boundary = "#"

// Word is a tokenized phonetic form.  It owns the grapheme inventory
// and separator that produced it, so it can always re-render itself.
type Word struct {
	Phones    []string
	Graphs    []string
	Separator string
}

// SortGraphs returns a copy of the inventory sorted by descending
// rune length, so the longest grapheme wins at every position during
// tokenization.  The sort is stable: equal-length graphemes keep
// their inventory order, which makes segmentation deterministic.
func SortGraphs(graphs []string) []string {
	sorted := make([]string, len(graphs))
	copy(sorted, graphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) > utf8.RuneCountInString(sorted[j])
	})
	return sorted
}

// ParseWord tokenizes `input` into a Word.  Runs of whitespace become
// a single internal boundary token and the whole word is wrapped in
// boundary tokens, so empty input yields exactly one boundary pair.
func ParseWord(input string, graphs []string, separator string) *Word {
	sorted := SortGraphs(graphs)
	normalized := Boundary + strings.Join(strings.Fields(input), Boundary) + Boundary
	return &Word{
		Phones:    Tokenize(normalized, sorted, separator),
		Graphs:    sorted,
		Separator: separator,
	}
}

// Tokenize segments `input` into phones by longest-match lookup
// against a length-sorted grapheme inventory.  A leading separator
// occurrence is stripped before each lookup, and a position covered
// by no grapheme is consumed as a single-rune token.  The caller is
// expected to pass the inventory through SortGraphs first.
func Tokenize(input string, sortedGraphs []string, separator string) []string {
	var phones []string

	for len(input) > 0 {
		if separator != "" && strings.HasPrefix(input, separator) {
			input = input[len(separator):]
			continue
		}

		matched := ""
		for _, g := range sortedGraphs {
			if g != "" && strings.HasPrefix(input, g) {
				matched = g
				break
			}
		}
		if matched != "" {
			phones = append(phones, matched)
			input = input[len(matched):]
			continue
		}

		_, size := utf8.DecodeRuneInString(input)
		phones = append(phones, input[:size])
		input = input[size:]
	}

	return phones
}

// Render is the inverse of tokenization: phones are emitted back to
// back, boundary tokens become a single space, and the separator is
// re-inserted after any phone that is a strict prefix of a longer
// grapheme in the inventory, keeping the segmentation unambiguous on
// re-parse.  An inventory with no polygraphs never needs separators.
func (w *Word) Render() string {
	var (
		b    strings.Builder
		poly = hasPolygraphs(w.Graphs)
	)
	for _, phone := range w.Phones {
		if phone == Boundary {
			b.WriteString(" ")
			continue
		}
		b.WriteString(phone)
		if poly && w.ambiguousPrefix(phone) {
			b.WriteString(w.Separator)
		}
	}
	return strings.TrimSpace(b.String())
}

// Clone returns a word sharing the inventory but owning a fresh
// phone slice, so rule application never aliases the original.
func (w *Word) Clone() *Word {
	phones := make([]string, len(w.Phones))
	copy(phones, w.Phones)
	return &Word{Phones: phones, Graphs: w.Graphs, Separator: w.Separator}
}

func (w *Word) String() string { return w.Render() }

func (w *Word) ambiguousPrefix(phone string) bool {
	for _, g := range w.Graphs {
		if g != phone && strings.HasPrefix(g, phone) {
			return true
		}
	}
	return false
}

func hasPolygraphs(graphs []string) bool {
	for _, g := range graphs {
		if utf8.RuneCountInString(g) > 1 {
			return true
		}
	}
	return false
}
