package runtime

import (
	"fmt"
	"log/slog"

	"github.com/helpcar/quotechat/internal/logging"
	"github.com/helpcar/quotechat/pkg/domain"
)

// Controller validates answers against the current step, records them in the answer
// store and decides the next step from the transition table.
type Controller struct {
	logger *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// NewController creates a Controller.
func NewController(opts ...Option) *Controller {
	c := &Controller{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit applies answer at step and returns the next step. A mismatching answer shape
// fails with domain.ErrUnexpectedAnswerForStep and leaves the store untouched.
func (c *Controller) Submit(step domain.Step, store *domain.AnswerStore, answer domain.Answer) (domain.Step, error) {
	next, err := advance(step, store, answer)
	if err != nil {
		return step, err
	}
	c.logger.Debug("Answer accepted", "step", step, "answer", answer.Kind(), "next", next)
	return next, nil
}

// Validate reports whether Submit would accept answer at step, without touching the
// recorded answers.
func (c *Controller) Validate(step domain.Step, answers domain.Answers, answer domain.Answer) error {
	_, err := advance(step, domain.RestoreAnswerStore(answers), answer)
	return err
}

func advance(step domain.Step, store *domain.AnswerStore, answer domain.Answer) (domain.Step, error) {
	if answer == nil {
		return step, fmt.Errorf("%w: %s received no answer", domain.ErrUnexpectedAnswerForStep, step)
	}
	if flow := FlowFor(store.Snapshot().Problem); !flow.Contains(step) {
		return step, fmt.Errorf("%w: step %s is not part of the %q flow", domain.ErrInvalidTransition, step, flow.Problem)
	}
	if err := apply(step, store, answer); err != nil {
		return step, err
	}

	next, ok := FlowFor(store.Snapshot().Problem).Next(step)
	if !ok {
		return step, fmt.Errorf("%w: no step after %s", domain.ErrInvalidTransition, step)
	}
	return next, nil
}

// Reveal performs the presentational transition from the final step to the summary.
func (c *Controller) Reveal(step domain.Step) (domain.Step, error) {
	if step != domain.StepFinal {
		return step, fmt.Errorf("%w: summary can only be revealed from %s, not %s", domain.ErrInvalidTransition, domain.StepFinal, step)
	}
	return domain.StepSummaryReveal, nil
}

// Back returns the location step to the "choose method" presentation. It never changes
// the step or the answers.
func (c *Controller) Back(step domain.Step) (domain.LocationEntry, error) {
	if step != domain.StepLocation {
		return "", fmt.Errorf("%w: back is only available on the location step, not %s", domain.ErrInvalidTransition, step)
	}
	return domain.EntryChoose, nil
}

// EnterAddress switches the location step to manual address entry.
func (c *Controller) EnterAddress(step domain.Step) (domain.LocationEntry, error) {
	if step != domain.StepLocation {
		return "", fmt.Errorf("%w: address entry is only available on the location step, not %s", domain.ErrInvalidTransition, step)
	}
	return domain.EntryAddress, nil
}

func apply(step domain.Step, store *domain.AnswerStore, answer domain.Answer) error {
	switch step {
	case domain.StepProblem:
		if a, ok := answer.(domain.ProblemAnswer); ok {
			return store.SetProblem(a.Problem)
		}
	case domain.StepVehicle:
		if a, ok := answer.(domain.VehicleAnswer); ok {
			return store.SetVehicleCategory(a.Category)
		}
	case domain.StepFlatWheelPosition:
		if a, ok := answer.(domain.WheelPositionAnswer); ok {
			return store.SetWheelPosition(a.Position)
		}
	case domain.StepTransmission:
		if a, ok := answer.(domain.TransmissionAnswer); ok {
			return store.SetTransmission(a.Transmission)
		}
	case domain.StepFourWheelDrive:
		if a, ok := answer.(domain.FourWheelDriveAnswer); ok {
			return store.SetFourWheelDrive(a.Enabled)
		}
	case domain.StepWreckBrand, domain.StepWreckModel, domain.StepWreckYear:
		field, _ := step.WreckField()
		if a, ok := answer.(domain.WreckAnswer); ok && a.Field == field {
			return store.SetWreckField(a.Field, a.Value)
		}
	case domain.StepLocation:
		switch a := answer.(type) {
		case domain.LocationGPSAnswer:
			return store.SetLocationGPS(a.Coordinates)
		case domain.LocationAddressAnswer:
			return store.SetLocationManual(a.Address)
		}
	case domain.StepDestination:
		switch a := answer.(type) {
		case domain.DestinationAddressAnswer:
			return store.SetDestinationAddress(a.Address)
		case domain.DestinationUnknownAnswer:
			return store.SetDestinationUnknown()
		}
	}
	return fmt.Errorf("%w: %s does not accept %s", domain.ErrUnexpectedAnswerForStep, step, answer.Kind())
}
