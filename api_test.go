package soundlaw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileCollectsDiagnostics(t *testing.T) {
	prog, diagnostics := Compile([]byte("a > b\nq ] junk\ni, u > e, o\n"))
	require.Len(t, diagnostics, 1)
	require.Len(t, prog.Statements, 2)

	// the surviving statements still run
	out, _, err := Apply(prog, []string{"piku"}, nil, "'")
	require.NoError(t, err)
	assert.Equal(t, []string{"peko"}, out)
}

func TestApplyRejectsEmptyGrapheme(t *testing.T) {
	prog, diagnostics := Compile([]byte("a > b"))
	require.Empty(t, diagnostics)

	_, _, err := Apply(prog, []string{"ta"}, []string{"a", ""}, "'")
	require.Error(t, err)
}

func TestApplyPreservesOrderAndEmptyWords(t *testing.T) {
	prog, diagnostics := Compile([]byte("a > b"))
	require.Empty(t, diagnostics)

	out, _, err := Apply(prog, []string{"ta", "", "aa"}, nil, "'")
	require.NoError(t, err)
	assert.Equal(t, []string{"tb", "", "bb"}, out)
}
