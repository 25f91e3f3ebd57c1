package soundlaw

import "fmt"

// Compile parses rule source into a Program.  Parsing recovers at
// statement boundaries, so the returned diagnostics cover every
// malformed statement while the rest of the program still compiles.
func Compile(source []byte) (*Program, []ParsingError) {
	return NewRuleParser(source).ParseProgram()
}

// Apply runs a compiled program over a lexicon.  Each input word is
// tokenized with the given grapheme inventory and separator, every
// statement is executed in program order, and the transformed words
// are rendered back to text in input order.  The returned state
// exposes the final category table and any warnings for inspection.
func Apply(prog *Program, words []string, graphs []string, separator string) ([]string, *InterpreterState, error) {
	for _, g := range graphs {
		if g == "" {
			return nil, nil, fmt.Errorf("apply: grapheme inventory contains an empty entry")
		}
	}

	state := NewInterpreterState(graphs, separator)
	parsed := make([]*Word, len(words))
	for i, w := range words {
		parsed[i] = ParseWord(w, graphs, separator)
	}

	out := state.Run(prog, parsed)
	rendered := make([]string, len(out))
	for i, w := range out {
		rendered[i] = w.Render()
	}
	return rendered, state, nil
}
