// Package graph draws the wizard's transition table as a Mermaid flowchart.
package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/helpcar/quotechat/internal/runtime"
	"github.com/helpcar/quotechat/pkg/domain"
)

// Overlay marks the progress of one session on the graph.
type Overlay struct {
	Visited []domain.Step
	Current domain.Step
}

// OverlayFor returns the overlay of a session that chose problem p and is now on current.
func OverlayFor(p domain.Problem, current domain.Step) *Overlay {
	steps := runtime.FlowFor(p).Steps()
	i := slices.Index(steps, current)
	if i < 0 {
		i = 0
	}
	return &Overlay{Visited: steps[:i], Current: current}
}

type edge struct{ from, to domain.Step }

// GenerateMermaid produces the flowchart of every branch. Shapes:
// - Problem choice: ((Circle))
// - Free-text questions: [/Parallelogram/]
// - Timed reveal: [[Subroutine]]
// - Other questions: [Rectangle]
// Edges taken by only some problems are labelled with those problems.
func GenerateMermaid(overlay *Overlay) string {
	var order []edge
	takenBy := make(map[edge][]string)
	var steps []domain.Step
	for _, p := range domain.Problems {
		flow := runtime.FlowFor(p).Steps()
		for i, s := range flow {
			if !slices.Contains(steps, s) {
				steps = append(steps, s)
			}
			if i == 0 {
				continue
			}
			e := edge{flow[i-1], s}
			if _, ok := takenBy[e]; !ok {
				order = append(order, e)
			}
			takenBy[e] = append(takenBy[e], string(p))
		}
	}
	slices.Sort(steps)

	var sb strings.Builder
	sb.WriteString("graph TD\n")
	for _, s := range steps {
		sb.WriteString("    " + node(s) + "\n")
	}
	for _, e := range order {
		problems := takenBy[e]
		if len(problems) == len(domain.Problems) {
			fmt.Fprintf(&sb, "    %s --> %s\n", e.from, e.to)
			continue
		}
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", e.from, strings.Join(problems, ", "), e.to)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		seen := make(map[domain.Step]bool)
		for _, s := range overlay.Visited {
			if !seen[s] && s != overlay.Current {
				seen[s] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", s)
			}
		}
		fmt.Fprintf(&sb, "    class %s current;\n", overlay.Current)
	}
	return sb.String()
}

func node(s domain.Step) string {
	id := s.String()
	switch {
	case s == domain.StepProblem:
		return fmt.Sprintf("%s((\"%s\"))", id, id)
	case s == domain.StepSummaryReveal:
		return fmt.Sprintf("%s[[\"%s <br/> ⏱️ delayed\"]]", id, id)
	default:
		if _, ok := s.WreckField(); ok {
			return fmt.Sprintf("%s[/\"%s\"/]", id, id)
		}
		return fmt.Sprintf("%s[\"%s\"]", id, id)
	}
}
