package runtime

import (
	"slices"

	"github.com/helpcar/quotechat/pkg/domain"
)

// branchTable is the transition table: the legal step sequence of each branch.
// The destination step is spliced in after the location step for problems that need it.
var branchTable = map[domain.Branch][]domain.Step{
	domain.BranchStandard: {
		domain.StepProblem,
		domain.StepVehicle,
		domain.StepTransmission,
		domain.StepFourWheelDrive,
		domain.StepLocation,
		domain.StepFinal,
		domain.StepSummaryReveal,
	},
	domain.BranchFlat: {
		domain.StepProblem,
		domain.StepVehicle,
		domain.StepFlatWheelPosition,
		domain.StepTransmission,
		domain.StepFourWheelDrive,
		domain.StepLocation,
		domain.StepFinal,
		domain.StepSummaryReveal,
	},
	domain.BranchWreck: {
		domain.StepProblem,
		domain.StepWreckBrand,
		domain.StepWreckModel,
		domain.StepWreckYear,
		domain.StepLocation,
		domain.StepFinal,
		domain.StepSummaryReveal,
	},
}

// halfSteps sit between two whole steps instead of advancing to the next one.
var halfSteps = []domain.Step{domain.StepFlatWheelPosition, domain.StepSummaryReveal}

// Flow is the resolved step sequence of one session.
type Flow struct {
	Problem  domain.Problem
	steps    []domain.Step
	ordinals map[domain.Step]domain.Ordinal
}

// FlowFor returns the sequence for a problem. Before a problem is chosen the flow
// only contains the problem step.
func FlowFor(p domain.Problem) Flow {
	var steps []domain.Step
	if p == "" {
		steps = []domain.Step{domain.StepProblem}
	} else {
		base := branchTable[p.Branch()]
		steps = make([]domain.Step, 0, len(base)+1)
		for _, s := range base {
			steps = append(steps, s)
			if s == domain.StepLocation && p.NeedsDestination() {
				steps = append(steps, domain.StepDestination)
			}
		}
	}

	ordinals := make(map[domain.Step]domain.Ordinal, len(steps))
	var prev domain.Ordinal
	for i, s := range steps {
		var o domain.Ordinal
		switch {
		case i == 0:
			o = 0
		case slices.Contains(halfSteps, s):
			o = prev + 1
		default:
			o = prev - prev%2 + 2
		}
		ordinals[s] = o
		prev = o
	}
	return Flow{Problem: p, steps: steps, ordinals: ordinals}
}

// Steps returns the sequence in order.
func (f Flow) Steps() []domain.Step { return slices.Clone(f.steps) }

// Contains reports whether s is legal in this flow.
func (f Flow) Contains(s domain.Step) bool {
	_, ok := f.ordinals[s]
	return ok
}

// Next returns the step following s.
func (f Flow) Next(s domain.Step) (domain.Step, bool) {
	i := slices.Index(f.steps, s)
	if i < 0 || i+1 >= len(f.steps) {
		return s, false
	}
	return f.steps[i+1], true
}

// Ordinal returns the ordered position of s within the branch.
func (f Flow) Ordinal(s domain.Step) (domain.Ordinal, bool) {
	o, ok := f.ordinals[s]
	return o, ok
}

// Label renders the position of s for progress display. The destination step is
// labelled "4b" although it occupies position 5.
func (f Flow) Label(s domain.Step) string {
	if s == domain.StepDestination && f.Contains(s) {
		loc := f.ordinals[domain.StepLocation]
		return loc.String() + "b"
	}
	if o, ok := f.ordinals[s]; ok {
		return o.String()
	}
	return s.String()
}

// Index is the zero-based position of s in the sequence, or -1.
func (f Flow) Index(s domain.Step) int { return slices.Index(f.steps, s) }

// Total is the number of question steps before the final step. Before a problem is
// chosen it is the length of the standard branch.
func (f Flow) Total() int {
	steps := f.steps
	if f.Problem == "" {
		steps = branchTable[domain.BranchStandard]
	}
	if i := slices.Index(steps, domain.StepFinal); i >= 0 {
		return i
	}
	return len(steps)
}
