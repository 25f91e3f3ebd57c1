package soundlaw

import "slices"

// Category is a named, ordered list of elements, where each element
// is itself a phone sequence, so categories can hold multi-phone
// members like diphthongs.  Elements compare by full sequence
// equality, never by first phone.
type Category struct {
	Elements [][]string
}

func (c *Category) clone() *Category {
	elements := make([][]string, len(c.Elements))
	for i, e := range c.Elements {
		elements[i] = slices.Clone(e)
	}
	return &Category{Elements: elements}
}

// CategoryTable maps category names to their current definitions.
// Edits apply strictly in program order; later statements always see
// the latest state.
type CategoryTable map[string]*Category

// Resolve expands a list of category-edit operands (or inline
// category alternatives) against the current table: named references
// expand to that category's stored element list, literal text is
// tokenized into a phone sequence with the active inventory.  A
// reference to an unknown category expands to nothing; the returned
// names report which ones, so the caller can surface a warning.
func (t CategoryTable) Resolve(operands []CatOrEl, sortedGraphs []string, separator string) ([][]string, []string) {
	var (
		elements [][]string
		missing  []string
	)
	for _, operand := range operands {
		if operand.IsCat {
			category, ok := t[operand.Value]
			if !ok {
				missing = append(missing, operand.Value)
				continue
			}
			elements = append(elements, category.clone().Elements...)
			continue
		}
		elements = append(elements, Tokenize(operand.Value, sortedGraphs, separator))
	}
	return elements, missing
}

// Apply performs one category edit against the table, returning any
// warnings the edit raised.  `+=` and `-=` on a category that does
// not exist are deliberate no-ops: a missing category should never
// crash a run, but the condition is still observable.
func (t CategoryTable) Apply(edit *CategoryEdit, sortedGraphs []string, separator string) []Warning {
	var warnings []Warning

	elements, missing := t.Resolve(edit.Operands, sortedGraphs, separator)
	for _, name := range missing {
		warnings = append(warnings, warnf("category edit %q references undefined category %q", edit.Name, name))
	}

	switch edit.Op {
	case CategoryDefine:
		t[edit.Name] = &Category{Elements: elements}

	case CategoryAdd:
		category, ok := t[edit.Name]
		if !ok {
			return append(warnings, warnf("cannot add to undefined category %q", edit.Name))
		}
		category.Elements = append(category.Elements, elements...)

	case CategorySubtract:
		category, ok := t[edit.Name]
		if !ok {
			return append(warnings, warnf("cannot subtract from undefined category %q", edit.Name))
		}
		category.Elements = without(category.Elements, elements)
	}
	return warnings
}

// without removes every element of `input` equal, by full sequence
// comparison, to any member of `items`.
func without(input [][]string, items [][]string) [][]string {
	kept := make([][]string, 0, len(input))
	for _, element := range input {
		removed := false
		for _, item := range items {
			if slices.Equal(element, item) {
				removed = true
				break
			}
		}
		if !removed {
			kept = append(kept, element)
		}
	}
	return kept
}
