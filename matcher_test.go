package soundlaw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPattern(t *testing.T, source string) *Pattern {
	t.Helper()
	pattern, err := NewRuleParser([]byte(source)).ParsePattern()
	require.NoError(t, err)
	return pattern
}

func TestMatchAt(t *testing.T) {
	table := CategoryTable{
		"T": {Elements: [][]string{{"t"}, {"d"}}},
	}

	for _, tc := range []struct {
		Name    string
		Word    string
		Graphs  []string
		Pattern string
		Index   int
		Matched bool
		Tokens  Range
	}{
		{
			Name:    "literal at the right index",
			Word:    "abc",
			Pattern: "b",
			Index:   2,
			Matched: true,
			Tokens:  NewRange(2, 3),
		},
		{
			Name:    "literal at the wrong index",
			Word:    "abc",
			Pattern: "b",
			Index:   1,
			Matched: false,
		},
		{
			Name:    "literal spanning several phones",
			Word:    "tsa",
			Graphs:  []string{"ts"},
			Pattern: "tsa",
			Index:   1,
			Matched: true,
			Tokens:  NewRange(1, 3),
		},
		{
			Name:    "category alternative",
			Word:    "data",
			Pattern: "[T]",
			Index:   1,
			Matched: true,
			Tokens:  NewRange(1, 2),
		},
		{
			Name:    "missing category never matches",
			Word:    "data",
			Pattern: "[Q]",
			Index:   1,
			Matched: false,
		},
		{
			Name:    "null category is zero width",
			Word:    "abc",
			Pattern: "[]",
			Index:   1,
			Matched: true,
			Tokens:  NewRange(1, 1),
		},
		{
			Name:    "basic wildcard stops at the boundary",
			Word:    "ab cd",
			Pattern: "a*",
			Index:   1,
			Matched: true,
			Tokens:  NewRange(1, 3),
		},
		{
			Name:    "extended wildcard crosses the boundary",
			Word:    "ab cd",
			Pattern: "a**",
			Index:   1,
			Matched: true,
			Tokens:  NewRange(1, 7),
		},
		{
			Name:    "non greedy wildcard takes the shortest span",
			Word:    "ab cd",
			Pattern: "a*?",
			Index:   1,
			Matched: true,
			Tokens:  NewRange(1, 2),
		},
		{
			Name:    "wildcard backtracks for the tail",
			Word:    "abc",
			Pattern: "*b",
			Index:   1,
			Matched: true,
			Tokens:  NewRange(1, 3),
		},
		{
			Name:    "greedy optional consumed",
			Word:    "abc",
			Pattern: "(b)c",
			Index:   2,
			Matched: true,
			Tokens:  NewRange(2, 4),
		},
		{
			Name:    "optional skipped when absent",
			Word:    "abc",
			Pattern: "(x)b",
			Index:   2,
			Matched: true,
			Tokens:  NewRange(2, 3),
		},
		{
			Name:    "non greedy optional skips first",
			Word:    "abc",
			Pattern: "(b)?",
			Index:   2,
			Matched: true,
			Tokens:  NewRange(2, 2),
		},
		{
			Name:    "ditto matches a doubled phone",
			Word:    "aab",
			Pattern: `a"`,
			Index:   1,
			Matched: true,
			Tokens:  NewRange(1, 3),
		},
		{
			Name:    "ditto cannot open a pattern",
			Word:    "aab",
			Pattern: `"`,
			Index:   2,
			Matched: false,
		},
		{
			Name:    "repeat count",
			Word:    "aaab",
			Pattern: "a{2}",
			Index:   1,
			Matched: true,
			Tokens:  NewRange(1, 3),
		},
		{
			Name:    "repeat wildcard is greedy",
			Word:    "aaab",
			Pattern: "a{*}",
			Index:   1,
			Matched: true,
			Tokens:  NewRange(1, 4),
		},
		{
			Name:    "repeat wildcard non greedy takes zero",
			Word:    "aaab",
			Pattern: "a{*?}",
			Index:   1,
			Matched: true,
			Tokens:  NewRange(1, 1),
		},
		{
			Name:    "orphan quantifier never matches",
			Word:    "aaab",
			Pattern: "{2}a",
			Index:   1,
			Matched: false,
		},
		{
			Name:    "target reference without a target",
			Word:    "abc",
			Pattern: "_x",
			Index:   1,
			Matched: false,
		},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			word := ParseWord(tc.Word, tc.Graphs, "'")
			trace, ok := MatchAt(word, mustPattern(t, tc.Pattern), tc.Index, table)
			require.Equal(t, tc.Matched, ok)
			if tc.Matched {
				assert.Equal(t, tc.Tokens, trace.Tokens)
			}
		})
	}
}

func TestMatchTraceAltIndexes(t *testing.T) {
	table := CategoryTable{
		"T": {Elements: [][]string{{"t"}, {"d"}}},
		"V": {Elements: [][]string{{"a"}, {"i"}}},
	}

	word := ParseWord("di", nil, "'")
	trace, ok := MatchAt(word, mustPattern(t, "[T][V]"), 1, table)
	require.True(t, ok)
	assert.Equal(t, []int{1, 1}, trace.AltIndexes())
}

func TestMatchLiteralYieldsSingleMatches(t *testing.T) {
	word := ParseWord("abc", nil, "'")
	trace, ok := MatchAt(word, mustPattern(t, "abc"), 1, nil)
	require.True(t, ok)
	require.Len(t, trace.Matches, 3)
	for i, m := range trace.Matches {
		_, single := m.(*SingleMatch)
		assert.True(t, single)
		assert.Equal(t, NewRange(1+i, 2+i), m.Range())
	}
}

// a multi-phone category element must match by full sequence, and its
// token length comes from the element, not from the input.
func TestMatchMultiPhoneCategoryElement(t *testing.T) {
	table := CategoryTable{
		"D": {Elements: [][]string{{"a", "i"}, {"a", "u"}}},
	}

	word := ParseWord("kau", nil, "'")
	trace, ok := MatchAt(word, mustPattern(t, "[D]"), 2, table)
	require.True(t, ok)
	assert.Equal(t, NewRange(2, 4), trace.Tokens)
	assert.Equal(t, []int{1}, trace.AltIndexes())
}
