package soundlaw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWord(t *testing.T) {
	graphs := []string{"ts", "sh", "tsh"}

	for _, tc := range []struct {
		Name     string
		Input    string
		Graphs   []string
		Expected []string
	}{
		{
			Name:     "longest grapheme wins",
			Input:    "atshu",
			Graphs:   graphs,
			Expected: []string{"#", "a", "tsh", "u", "#"},
		},
		{
			Name:     "separator breaks a grapheme run",
			Input:    "ats'hu",
			Graphs:   graphs,
			Expected: []string{"#", "a", "ts", "h", "u", "#"},
		},
		{
			Name:     "whitespace runs collapse to one boundary",
			Input:    "a  b",
			Graphs:   nil,
			Expected: []string{"#", "a", "#", "b", "#"},
		},
		{
			Name:     "empty input is a boundary pair",
			Input:    "",
			Graphs:   nil,
			Expected: []string{"#", "#"},
		},
		{
			Name:     "uncovered characters become single runes",
			Input:    "paz",
			Graphs:   graphs,
			Expected: []string{"#", "p", "a", "z", "#"},
		},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			word := ParseWord(tc.Input, tc.Graphs, "'")
			assert.Equal(t, tc.Expected, word.Phones)
		})
	}
}

func TestSortGraphs(t *testing.T) {
	sorted := SortGraphs([]string{"a", "tsh", "ts", "sh"})
	assert.Equal(t, []string{"tsh", "ts", "sh", "a"}, sorted)

	// equal lengths keep their inventory order
	sorted = SortGraphs([]string{"sh", "ts"})
	assert.Equal(t, []string{"sh", "ts"}, sorted)
}

func TestRenderRoundTrip(t *testing.T) {
	graphs := []string{"ts", "sh", "tsh"}

	for _, tc := range []struct {
		Name  string
		Input string
	}{
		{"plain", "atshu"},
		{"separated", "ats'hu"},
		{"multiple words", "a b"},
		{"empty", ""},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			word := ParseWord(tc.Input, graphs, "'")
			rendered := word.Render()
			assert.Equal(t, tc.Input, rendered)

			// re-parsing the rendering reproduces the phones
			again := ParseWord(rendered, graphs, "'")
			assert.Equal(t, word.Phones, again.Phones)
		})
	}
}

func TestRenderDropsSeparatorWithoutPolygraphs(t *testing.T) {
	word := ParseWord("a'b", []string{"a", "b"}, "'")
	require.Equal(t, []string{"#", "a", "b", "#"}, word.Phones)
	assert.Equal(t, "ab", word.Render())
}

func TestWordClone(t *testing.T) {
	word := ParseWord("ab", nil, "'")
	clone := word.Clone()
	clone.Phones[1] = "x"
	assert.Equal(t, "a", word.Phones[1])
}
