package runtime_test

import (
	"testing"

	"github.com/helpcar/quotechat/internal/runtime"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		name string
		step domain.Step
		raw  string
		want domain.Answer
	}{
		{"problem", domain.StepProblem, "flat", domain.ProblemAnswer{Problem: domain.ProblemFlat}},
		{"problem case-insensitive", domain.StepProblem, " Towing ", domain.ProblemAnswer{Problem: domain.ProblemTowing}},
		{"vehicle", domain.StepVehicle, "van", domain.VehicleAnswer{Category: domain.VehicleVan}},
		{"wheel", domain.StepFlatWheelPosition, "rear", domain.WheelPositionAnswer{Position: domain.WheelRear}},
		{"transmission", domain.StepTransmission, "automatic", domain.TransmissionAnswer{Transmission: domain.TransmissionAutomatic}},
		{"drive yes", domain.StepFourWheelDrive, "yes", domain.FourWheelDriveAnswer{Enabled: true}},
		{"drive oui", domain.StepFourWheelDrive, "Oui", domain.FourWheelDriveAnswer{Enabled: true}},
		{"drive nee", domain.StepFourWheelDrive, "nee", domain.FourWheelDriveAnswer{Enabled: false}},
		{"wreck brand keeps case", domain.StepWreckBrand, "Peugeot", domain.WreckAnswer{Field: domain.WreckBrand, Value: "Peugeot"}},
		{"wreck year", domain.StepWreckYear, "2004", domain.WreckAnswer{Field: domain.WreckYear, Value: "2004"}},
		{"location address", domain.StepLocation, "Rue Neuve 10,\nBrussels", domain.LocationAddressAnswer{Address: "Rue Neuve 10, Brussels"}},
		{"destination address", domain.StepDestination, "Garage X", domain.DestinationAddressAnswer{Address: "Garage X"}},
		{"destination unknown", domain.StepDestination, runtime.InputUnknownDestination, domain.DestinationUnknownAnswer{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runtime.ParseInput(tt.step, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInput_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		step    domain.Step
		raw     string
		wantErr error
	}{
		{"unknown problem", domain.StepProblem, "engine-fire", domain.ErrInvalidAnswer},
		{"unknown vehicle", domain.StepVehicle, "truck", domain.ErrInvalidAnswer},
		{"drive maybe", domain.StepFourWheelDrive, "maybe", domain.ErrInvalidAnswer},
		{"empty wreck model", domain.StepWreckModel, "   ", domain.ErrInvalidAnswer},
		{"empty address", domain.StepLocation, "\n", domain.ErrInvalidAnswer},
		{"final takes no input", domain.StepFinal, "hello", domain.ErrUnexpectedAnswerForStep},
		{"invalid utf8", domain.StepLocation, "\xff", domain.ErrInvalidAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runtime.ParseInput(tt.step, tt.raw)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
