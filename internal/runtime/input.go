package runtime

import (
	"fmt"
	"strings"

	"github.com/helpcar/quotechat/pkg/domain"
)

// Values a front end sends for the non-answer controls of the location and destination steps.
const (
	InputUseGPS             = "gps"
	InputEnterAddress       = "address"
	InputBack               = "back"
	InputUnknownDestination = "unknown"
)

var (
	yesWords = []string{"yes", "y", "true", "1", "oui", "ja"}
	noWords  = []string{"no", "n", "false", "0", "non", "nee"}
)

// ParseInput converts a raw visitor input (an option value or free text) into the answer
// expected at step. GPS coordinates cannot be typed; they come from a Locator.
func ParseInput(step domain.Step, raw string) (domain.Answer, error) {
	v, err := SanitizeInput(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidAnswer, err)
	}
	option := strings.ToLower(v)

	switch step {
	case domain.StepProblem:
		p, err := domain.ParseProblem(option)
		if err != nil {
			return nil, err
		}
		return domain.ProblemAnswer{Problem: p}, nil
	case domain.StepVehicle:
		c, err := domain.ParseVehicleCategory(option)
		if err != nil {
			return nil, err
		}
		return domain.VehicleAnswer{Category: c}, nil
	case domain.StepFlatWheelPosition:
		w, err := domain.ParseWheelPosition(option)
		if err != nil {
			return nil, err
		}
		return domain.WheelPositionAnswer{Position: w}, nil
	case domain.StepTransmission:
		t, err := domain.ParseTransmission(option)
		if err != nil {
			return nil, err
		}
		return domain.TransmissionAnswer{Transmission: t}, nil
	case domain.StepFourWheelDrive:
		for _, w := range yesWords {
			if option == w {
				return domain.FourWheelDriveAnswer{Enabled: true}, nil
			}
		}
		for _, w := range noWords {
			if option == w {
				return domain.FourWheelDriveAnswer{Enabled: false}, nil
			}
		}
		return nil, fmt.Errorf("%w: expected yes or no, got %q", domain.ErrInvalidAnswer, v)
	case domain.StepWreckBrand, domain.StepWreckModel, domain.StepWreckYear:
		field, _ := step.WreckField()
		if v == "" {
			return nil, fmt.Errorf("%w: empty wreck %s", domain.ErrInvalidAnswer, field)
		}
		return domain.WreckAnswer{Field: field, Value: v}, nil
	case domain.StepLocation:
		if v == "" {
			return nil, fmt.Errorf("%w: empty address", domain.ErrInvalidAnswer)
		}
		return domain.LocationAddressAnswer{Address: v}, nil
	case domain.StepDestination:
		if option == InputUnknownDestination {
			return domain.DestinationUnknownAnswer{}, nil
		}
		if v == "" {
			return nil, fmt.Errorf("%w: empty destination", domain.ErrInvalidAnswer)
		}
		return domain.DestinationAddressAnswer{Address: v}, nil
	}
	return nil, fmt.Errorf("%w: %s takes no input", domain.ErrUnexpectedAnswerForStep, step)
}
