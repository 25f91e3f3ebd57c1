package soundlaw

import (
	"fmt"
	"strings"
)

// PrettyString renders the program as an indented tree, one branch
// per statement.  Tests compare against this output and the CLI's
// ast subcommand prints it.
func (p *Program) PrettyString() string {
	kids := make([][]string, len(p.Statements))
	for i, s := range p.Statements {
		kids[i] = statementLines(s)
	}
	return strings.Join(branch("Program", kids...), "\n")
}

// PrettyStatement renders a single statement as an indented tree.
func PrettyStatement(s Statement) string {
	return strings.Join(statementLines(s), "\n")
}

// branch glues a node label onto its children's line blocks using the
// usual box-drawing connectors.
func branch(label string, kids ...[]string) []string {
	lines := []string{label}
	for i, kid := range kids {
		last := i == len(kids)-1
		for j, l := range kid {
			switch {
			case j == 0 && last:
				lines = append(lines, "└── "+l)
			case j == 0:
				lines = append(lines, "├── "+l)
			case last:
				lines = append(lines, "    "+l)
			default:
				lines = append(lines, "│   "+l)
			}
		}
	}
	return lines
}

func statementLines(s Statement) []string {
	switch n := s.(type) {
	case *CategoryEdit:
		kids := make([][]string, len(n.Operands))
		for i, o := range n.Operands {
			kids[i] = []string{operandLabel(o)}
		}
		return branch(fmt.Sprintf("CategoryEdit[%s %s]", n.Name, n.Op), kids...)
	case *Rule:
		kids := [][]string{targetLines(n.Target)}
		for _, pred := range n.Predicates {
			kids = append(kids, predicateLines(pred))
		}
		return branch("Rule", kids...)
	default:
		return []string{fmt.Sprintf("Unknown(%T)", s)}
	}
}

func targetLines(t *Target) []string {
	kids := make([][]string, 0, len(t.Patterns)+1)
	for _, p := range t.Patterns {
		kids = append(kids, patternLines(p))
	}
	if len(t.Positions) > 0 {
		parts := make([]string, len(t.Positions))
		for i, pos := range t.Positions {
			parts[i] = fmt.Sprintf("%d", pos)
		}
		kids = append(kids, []string{"Positions[" + strings.Join(parts, "|") + "]"})
	}
	return branch("Target", kids...)
}

func predicateLines(pred *Predicate) []string {
	var kids [][]string

	changeKids := make([][]string, len(pred.Changes))
	for i, c := range pred.Changes {
		changeKids[i] = patternLines(c)
	}
	kids = append(kids, branch("Change", changeKids...))

	if len(pred.Environment) > 0 {
		kids = append(kids, groupsLines("Environment", pred.Environment))
	}
	if len(pred.Exception) > 0 {
		kids = append(kids, groupsLines("Exception", pred.Exception))
	}
	return branch("Predicate", kids...)
}

func groupsLines(label string, groups []*EnvironmentGroup) []string {
	kids := make([][]string, len(groups))
	for i, g := range groups {
		groupKids := make([][]string, len(g.Patterns))
		for j, p := range g.Patterns {
			groupKids[j] = patternLines(p)
		}
		kids[i] = branch("Group", groupKids...)
	}
	return branch(label, kids...)
}

func patternLines(p *Pattern) []string {
	kids := make([][]string, len(p.Elements))
	for i, e := range p.Elements {
		kids[i] = elementLines(e)
	}
	return branch("Pattern", kids...)
}

func elementLines(e PatternElement) []string {
	switch n := e.(type) {
	case *TextElement:
		return []string{fmt.Sprintf("Text[%s]", n.Value)}
	case *OptionalElement:
		label := "Optional"
		if n.NonGreedy {
			label = "OptionalNonGreedy"
		}
		return branch(label, patternLines(n.Pattern))
	case *WildcardElement:
		return []string{fmt.Sprintf("Wildcard[%s]", n.Kind.Spelling())}
	case *RepeatNElement:
		return []string{fmt.Sprintf("Repeat[%d]", n.Count)}
	case *RepeatWildElement:
		return []string{fmt.Sprintf("RepeatWild[%s]", n.Kind.Spelling())}
	case *CatRefElement:
		return []string{fmt.Sprintf("CatRef[%s]", n.Name)}
	case *CategoryElement:
		parts := make([]string, len(n.Alternatives))
		for i, a := range n.Alternatives {
			parts[i] = operandLabel(a)
		}
		return []string{fmt.Sprintf("Category[%s]", strings.Join(parts, ","))}
	case *DittoElement:
		return []string{"Ditto"}
	case *TargetRefElement:
		if n.Reversed {
			return []string{"TargetRefReversed"}
		}
		return []string{"TargetRef"}
	default:
		return []string{fmt.Sprintf("Unknown(%T)", e)}
	}
}

func operandLabel(o CatOrEl) string {
	if o.IsCat {
		return "[" + o.Value + "]"
	}
	return o.Value
}
