package runtime_test

import (
	"testing"

	"github.com/helpcar/quotechat/internal/runtime"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// answersFor returns one valid answer per answer-bearing step of the problem's branch.
func answersFor(p domain.Problem) map[domain.Step]domain.Answer {
	return map[domain.Step]domain.Answer{
		domain.StepProblem:           domain.ProblemAnswer{Problem: p},
		domain.StepVehicle:           domain.VehicleAnswer{Category: domain.VehicleSedan},
		domain.StepFlatWheelPosition: domain.WheelPositionAnswer{Position: domain.WheelFront},
		domain.StepTransmission:      domain.TransmissionAnswer{Transmission: domain.TransmissionManual},
		domain.StepFourWheelDrive:    domain.FourWheelDriveAnswer{Enabled: false},
		domain.StepWreckBrand:        domain.WreckAnswer{Field: domain.WreckBrand, Value: "Peugeot"},
		domain.StepWreckModel:        domain.WreckAnswer{Field: domain.WreckModel, Value: "206"},
		domain.StepWreckYear:         domain.WreckAnswer{Field: domain.WreckYear, Value: "2004"},
		domain.StepLocation:          domain.LocationAddressAnswer{Address: "Rue Neuve 10, Brussels"},
		domain.StepDestination:       domain.DestinationUnknownAnswer{},
	}
}

func drive(t *testing.T, p domain.Problem) []domain.Step {
	t.Helper()
	c := runtime.NewController()
	store := domain.NewAnswerStore()
	answers := answersFor(p)

	step := domain.StepProblem
	visited := []domain.Step{step}
	for step != domain.StepFinal {
		next, err := c.Submit(step, store, answers[step])
		require.NoError(t, err, "submit at %s", step)
		step = next
		visited = append(visited, step)
	}
	next, err := c.Reveal(step)
	require.NoError(t, err)
	return append(visited, next)
}

func TestController_DrivesEveryBranch(t *testing.T) {
	for _, p := range domain.Problems {
		t.Run(string(p), func(t *testing.T) {
			assert.Equal(t, runtime.FlowFor(p).Steps(), drive(t, p))
		})
	}
}

func TestController_FlatInsertsWheelPosition(t *testing.T) {
	c := runtime.NewController()
	store := domain.NewAnswerStore()

	step, err := c.Submit(domain.StepProblem, store, domain.ProblemAnswer{Problem: domain.ProblemFlat})
	require.NoError(t, err)
	require.Equal(t, domain.StepVehicle, step)

	step, err = c.Submit(step, store, domain.VehicleAnswer{Category: domain.VehicleCity})
	require.NoError(t, err)
	assert.Equal(t, domain.StepFlatWheelPosition, step, "vehicle advances to 1.5, not 2")
	assert.Equal(t, "1.5", runtime.FlowFor(domain.ProblemFlat).Label(step))

	step, err = c.Submit(step, store, domain.WheelPositionAnswer{Position: domain.WheelRear})
	require.NoError(t, err)
	assert.Equal(t, domain.StepTransmission, step)
}

func TestController_TransmissionAtVehicleStepFails(t *testing.T) {
	c := runtime.NewController()
	store := domain.NewAnswerStore()
	step, err := c.Submit(domain.StepProblem, store, domain.ProblemAnswer{Problem: domain.ProblemBattery})
	require.NoError(t, err)

	before := store.Snapshot()
	got, err := c.Submit(step, store, domain.TransmissionAnswer{Transmission: domain.TransmissionManual})
	assert.ErrorIs(t, err, domain.ErrUnexpectedAnswerForStep)
	assert.Equal(t, domain.StepVehicle, got)
	assert.Equal(t, before, store.Snapshot(), "store untouched")
}

func TestController_WreckFieldMustMatchStep(t *testing.T) {
	c := runtime.NewController()
	store := domain.NewAnswerStore()
	step, err := c.Submit(domain.StepProblem, store, domain.ProblemAnswer{Problem: domain.ProblemWreck})
	require.NoError(t, err)
	require.Equal(t, domain.StepWreckBrand, step)

	_, err = c.Submit(step, store, domain.WreckAnswer{Field: domain.WreckModel, Value: "206"})
	assert.ErrorIs(t, err, domain.ErrUnexpectedAnswerForStep)

	_, err = c.Submit(step, store, domain.VehicleAnswer{Category: domain.VehicleVan})
	assert.ErrorIs(t, err, domain.ErrUnexpectedAnswerForStep)
}

func TestController_StepOutsideBranch(t *testing.T) {
	c := runtime.NewController()
	store := domain.NewAnswerStore()
	_, err := c.Submit(domain.StepProblem, store, domain.ProblemAnswer{Problem: domain.ProblemTowing})
	require.NoError(t, err)

	_, err = c.Submit(domain.StepFlatWheelPosition, store, domain.WheelPositionAnswer{Position: domain.WheelFront})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestController_ProblemReassignmentFails(t *testing.T) {
	c := runtime.NewController()
	store := domain.NewAnswerStore()
	_, err := c.Submit(domain.StepProblem, store, domain.ProblemAnswer{Problem: domain.ProblemFlat})
	require.NoError(t, err)
	_, err = c.Submit(domain.StepVehicle, store, domain.VehicleAnswer{Category: domain.VehicleCity})
	require.NoError(t, err)

	_, err = c.Submit(domain.StepProblem, store, domain.ProblemAnswer{Problem: domain.ProblemBattery})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	snap := store.Snapshot()
	assert.Equal(t, domain.ProblemFlat, snap.Problem)
	assert.Equal(t, domain.VehicleCity, snap.VehicleCategory, "downstream answers are not reset")
}

func TestController_TerminalStepsTakeNoAnswer(t *testing.T) {
	c := runtime.NewController()
	store := domain.NewAnswerStore()
	for step := domain.StepProblem; step != domain.StepFinal; {
		next, err := c.Submit(step, store, answersFor(domain.ProblemOther)[step])
		require.NoError(t, err)
		step = next
	}

	_, err := c.Submit(domain.StepFinal, store, domain.DestinationUnknownAnswer{})
	assert.ErrorIs(t, err, domain.ErrUnexpectedAnswerForStep)

	_, err = c.Reveal(domain.StepLocation)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestController_NilAnswer(t *testing.T) {
	_, err := runtime.NewController().Submit(domain.StepProblem, domain.NewAnswerStore(), nil)
	assert.ErrorIs(t, err, domain.ErrUnexpectedAnswerForStep)
}

func TestController_BackOnlyOnLocation(t *testing.T) {
	c := runtime.NewController()

	entry, err := c.EnterAddress(domain.StepLocation)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryAddress, entry)

	entry, err = c.Back(domain.StepLocation)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryChoose, entry)

	_, err = c.Back(domain.StepDestination)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = c.EnterAddress(domain.StepVehicle)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestController_ValidateDoesNotRecord(t *testing.T) {
	c := runtime.NewController()
	store := domain.NewAnswerStore()
	_, err := c.Submit(domain.StepProblem, store, domain.ProblemAnswer{Problem: domain.ProblemTowing})
	require.NoError(t, err)
	answers := store.Snapshot()

	require.NoError(t, c.Validate(domain.StepVehicle, answers, domain.VehicleAnswer{Category: domain.VehicleVan}))
	assert.Empty(t, store.Snapshot().VehicleCategory)
	assert.Empty(t, answers.VehicleCategory)

	err = c.Validate(domain.StepVehicle, answers, domain.DestinationAddressAnswer{Address: "Garage X"})
	assert.ErrorIs(t, err, domain.ErrUnexpectedAnswerForStep)
	err = c.Validate(domain.StepProblem, answers, domain.ProblemAnswer{Problem: domain.ProblemBattery})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
