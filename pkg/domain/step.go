package domain

import (
	"fmt"
	"strconv"
)

// Step is an explicit position in a branch. The legal order of steps for each branch is
// defined by the transition table in the runtime package.
type Step int

const (
	StepProblem Step = iota
	StepVehicle
	StepFlatWheelPosition
	StepTransmission
	StepFourWheelDrive
	StepWreckBrand
	StepWreckModel
	StepWreckYear
	StepLocation
	StepDestination
	StepFinal
	// StepSummaryReveal follows StepFinal after a delay and needs no answer.
	StepSummaryReveal
)

var stepNames = map[Step]string{
	StepProblem:           "problem",
	StepVehicle:           "vehicle",
	StepFlatWheelPosition: "flat_wheel_position",
	StepTransmission:      "transmission",
	StepFourWheelDrive:    "four_wheel_drive",
	StepWreckBrand:        "wreck_brand",
	StepWreckModel:        "wreck_model",
	StepWreckYear:         "wreck_year",
	StepLocation:          "location",
	StepDestination:       "destination",
	StepFinal:             "final",
	StepSummaryReveal:     "summary_reveal",
}

func (s Step) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return "step(" + strconv.Itoa(int(s)) + ")"
}

// ParseStep is the inverse of String.
func ParseStep(name string) (Step, error) {
	for s, n := range stepNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown step %q", name)
}

func (s Step) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Step) UnmarshalText(b []byte) error {
	v, err := ParseStep(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// WreckField returns the free-text field collected by a wreck step.
func (s Step) WreckField() (WreckField, bool) {
	switch s {
	case StepWreckBrand:
		return WreckBrand, true
	case StepWreckModel:
		return WreckModel, true
	case StepWreckYear:
		return WreckYear, true
	}
	return "", false
}

// Ordinal is the totally ordered position of a step within its branch, counted in
// half steps so that 1.5 and 5.5 stay exact.
type Ordinal int

// WholeOrdinal converts a whole step number into an Ordinal.
func WholeOrdinal(n int) Ordinal { return Ordinal(n * 2) }

// IsHalf reports whether the ordinal sits between two whole steps.
func (o Ordinal) IsHalf() bool { return o%2 != 0 }

func (o Ordinal) String() string {
	if o.IsHalf() {
		return strconv.Itoa(int(o/2)) + ".5"
	}
	return strconv.Itoa(int(o / 2))
}
