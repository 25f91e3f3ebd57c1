package soundlaw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleParser(t *testing.T) {
	for _, tc := range []struct {
		Name     string
		Source   string
		Expected string
	}{
		{
			Name:   "category definition",
			Source: "V = a,e,i,o,u",
			Expected: `Program
└── CategoryEdit[V =]
    ├── a
    ├── e
    ├── i
    ├── o
    └── u`,
		},
		{
			Name:   "category extension with reference",
			Source: "C += [P],m,n",
			Expected: `Program
└── CategoryEdit[C +=]
    ├── [P]
    ├── m
    └── n`,
		},
		{
			Name:   "category subtraction",
			Source: "V -= i",
			Expected: `Program
└── CategoryEdit[V -=]
    └── i`,
		},
		{
			Name:   "rule with environment",
			Source: "a > b / c_",
			Expected: `Program
└── Rule
    ├── Target
    │   └── Pattern
    │       └── Text[a]
    └── Predicate
        ├── Change
        │   └── Pattern
        │       └── Text[b]
        └── Environment
            └── Group
                └── Pattern
                    ├── Text[c]
                    └── TargetRef`,
		},
		{
			Name:   "rule with exception",
			Source: "[T] > [D] / [V]_[V] ! _#",
			Expected: `Program
└── Rule
    ├── Target
    │   └── Pattern
    │       └── CatRef[T]
    └── Predicate
        ├── Change
        │   └── Pattern
        │       └── CatRef[D]
        ├── Environment
        │   └── Group
        │       └── Pattern
        │           ├── CatRef[V]
        │           ├── TargetRef
        │           └── CatRef[V]
        └── Exception
            └── Group
                └── Pattern
                    ├── TargetRef
                    └── Text[#]`,
		},
		{
			Name:   "environment groups joined with and or",
			Source: "a > b / c_ & _d, #_",
			Expected: `Program
└── Rule
    ├── Target
    │   └── Pattern
    │       └── Text[a]
    └── Predicate
        ├── Change
        │   └── Pattern
        │       └── Text[b]
        └── Environment
            ├── Group
            │   ├── Pattern
            │   │   ├── Text[c]
            │   │   └── TargetRef
            │   └── Pattern
            │       ├── TargetRef
            │       └── Text[d]
            └── Group
                └── Pattern
                    ├── Text[#]
                    └── TargetRef`,
		},
		{
			Name:   "target alternatives",
			Source: "i, u > e, o",
			Expected: `Program
└── Rule
    ├── Target
    │   ├── Pattern
    │   │   └── Text[i]
    │   └── Pattern
    │       └── Text[u]
    └── Predicate
        └── Change
            ├── Pattern
            │   └── Text[e]
            └── Pattern
                └── Text[o]`,
		},
		{
			Name:   "wildcards",
			Source: "a*? > x / **_",
			Expected: `Program
└── Rule
    ├── Target
    │   └── Pattern
    │       ├── Text[a]
    │       └── Wildcard[*?]
    └── Predicate
        ├── Change
        │   └── Pattern
        │       └── Text[x]
        └── Environment
            └── Group
                └── Pattern
                    ├── Wildcard[**]
                    └── TargetRef`,
		},
		{
			Name:   "repeat count",
			Source: "[C]{2} > [V]",
			Expected: `Program
└── Rule
    ├── Target
    │   └── Pattern
    │       ├── CatRef[C]
    │       └── Repeat[2]
    └── Predicate
        └── Change
            └── Pattern
                └── CatRef[V]`,
		},
		{
			Name:   "repeat wildcard",
			Source: "x{*?} > y",
			Expected: `Program
└── Rule
    ├── Target
    │   └── Pattern
    │       ├── Text[x]
    │       └── RepeatWild[*?]
    └── Predicate
        └── Change
            └── Pattern
                └── Text[y]`,
		},
		{
			Name:   "optional group and positions",
			Source: "[a,b](x)@1|-1 > d",
			Expected: `Program
└── Rule
    ├── Target
    │   ├── Pattern
    │   │   ├── Category[a,b]
    │   │   └── Optional
    │   │       └── Pattern
    │   │           └── Text[x]
    │   └── Positions[1|-1]
    └── Predicate
        └── Change
            └── Pattern
                └── Text[d]`,
		},
		{
			Name:   "reversal and ditto in the change",
			Source: `an > <"`,
			Expected: `Program
└── Rule
    ├── Target
    │   └── Pattern
    │       └── Text[an]
    └── Predicate
        └── Change
            └── Pattern
                ├── TargetRefReversed
                └── Ditto`,
		},
		{
			Name:   "escaped control characters",
			Source: `\+ > \*`,
			Expected: `Program
└── Rule
    ├── Target
    │   └── Pattern
    │       └── Text[+]
    └── Predicate
        └── Change
            └── Pattern
                └── Text[*]`,
		},
		{
			Name:   "multiple predicates",
			Source: "a > i / _# > e",
			Expected: `Program
└── Rule
    ├── Target
    │   └── Pattern
    │       └── Text[a]
    ├── Predicate
    │   ├── Change
    │   │   └── Pattern
    │   │       └── Text[i]
    │   └── Environment
    │       └── Group
    │           └── Pattern
    │               ├── TargetRef
    │               └── Text[#]
    └── Predicate
        └── Change
            └── Pattern
                └── Text[e]`,
		},
		{
			Name:   "epenthesis statement",
			Source: "+ e / #_",
			Expected: `Program
└── Rule
    ├── Target
    │   └── Pattern
    │       └── Category[]
    └── Predicate
        ├── Change
        │   └── Pattern
        │       └── Text[e]
        └── Environment
            └── Group
                └── Pattern
                    ├── Text[#]
                    └── TargetRef`,
		},
		{
			Name:   "deletion statement",
			Source: "- n / _#",
			Expected: `Program
└── Rule
    ├── Target
    │   └── Pattern
    │       └── Text[n]
    └── Predicate
        ├── Change
        │   └── Pattern
        │       └── Category[]
        └── Environment
            └── Group
                └── Pattern
                    ├── TargetRef
                    └── Text[#]`,
		},
		{
			Name: "comments and blank lines",
			Source: `// vowels
V = a,e

a > b // raising
`,
			Expected: `Program
├── CategoryEdit[V =]
│   ├── a
│   └── e
└── Rule
    ├── Target
    │   └── Pattern
    │       └── Text[a]
    └── Predicate
        └── Change
            └── Pattern
                └── Text[b]`,
		},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			prog, diagnostics := Compile([]byte(tc.Source))
			require.Empty(t, diagnostics)
			assert.Equal(t, tc.Expected, prog.PrettyString())
		})
	}
}

// The sugar statement forms must compile to the same tree as their
// desugared spellings.
func TestSugarEquivalence(t *testing.T) {
	for _, tc := range []struct {
		Name    string
		Sugar   string
		Desugar string
	}{
		{"epenthesis", "+ a / c_", "[] > a / c_"},
		{"deletion", "- a / c_", "a > [] / c_"},
		{"deletion keeps positions", "- a@1 / c_", "a@1 > [] / c_"},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, parseStatement(t, tc.Desugar), parseStatement(t, tc.Sugar))
		})
	}
}

func parseStatement(t *testing.T, source string) string {
	t.Helper()
	prog, diagnostics := Compile([]byte(source))
	require.Empty(t, diagnostics)
	require.Len(t, prog.Statements, 1)
	return PrettyStatement(prog.Statements[0])
}

// A malformed statement yields one diagnostic and the rest of the
// program still compiles.
func TestCompileRecovery(t *testing.T) {
	prog, diagnostics := Compile([]byte("a > b\nq ] junk\nc > d\n"))
	require.Len(t, diagnostics, 1)
	assert.Len(t, prog.Statements, 2)
	assert.Equal(t, 1, diagnostics[0].Span.Start.Line)
}

func TestCompileTrailingJunk(t *testing.T) {
	prog, diagnostics := Compile([]byte("a > b ]"))
	require.Len(t, diagnostics, 1)
	assert.Contains(t, diagnostics[0].Message, "]")
	assert.Empty(t, prog.Statements)
}
