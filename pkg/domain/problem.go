package domain

import "slices"

// Problem is the incident category declared on the first step.
type Problem string

const (
	ProblemBattery Problem = "battery"
	ProblemNoStart Problem = "nostart"
	ProblemFlat    Problem = "flat"
	ProblemTowing  Problem = "towing"
	ProblemWreck   Problem = "wreck"
	ProblemLocked  Problem = "locked"
	ProblemOther   Problem = "other"
)

// Problems lists every problem in display order.
var Problems = []Problem{
	ProblemBattery,
	ProblemNoStart,
	ProblemFlat,
	ProblemTowing,
	ProblemWreck,
	ProblemLocked,
	ProblemOther,
}

// Valid reports whether p is a known problem.
func (p Problem) Valid() bool { return slices.Contains(Problems, p) }

// NeedsDestination reports whether the branch also collects a drop-off location.
func (p Problem) NeedsDestination() bool { return p == ProblemTowing }

// Branch returns the question sequence selected by the problem.
func (p Problem) Branch() Branch {
	switch p {
	case ProblemFlat:
		return BranchFlat
	case ProblemWreck:
		return BranchWreck
	default:
		return BranchStandard
	}
}

// ParseProblem converts an option value into a Problem.
func ParseProblem(s string) (Problem, error) {
	return parseEnum("problem", s, Problems)
}

// Branch is one of the mutually exclusive question sequences.
type Branch int

const (
	BranchStandard Branch = iota
	BranchFlat
	BranchWreck
)

// Branches lists every branch.
var Branches = []Branch{BranchStandard, BranchFlat, BranchWreck}

func (b Branch) String() string {
	switch b {
	case BranchStandard:
		return "standard"
	case BranchFlat:
		return "flat"
	case BranchWreck:
		return "wreck"
	default:
		return "unknown"
	}
}

func parseEnum[T ~string](kind, s string, valid []T) (T, error) {
	v := T(s)
	if !slices.Contains(valid, v) {
		var zero T
		return zero, invalidAnswer("unknown %s %q", kind, s)
	}
	return v, nil
}
