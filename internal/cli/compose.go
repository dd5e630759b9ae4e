package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/helpcar/quotechat/internal/config"
	"github.com/helpcar/quotechat/internal/runtime"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/helpcar/quotechat/pkg/locale"
)

// ErrIncomplete is returned by Compose, after printing, when answers are missing.
var ErrIncomplete = errors.New("answers are incomplete")

// ComposeOptions are answers given on the command line instead of through the wizard.
type ComposeOptions struct {
	Language     string
	Problem      string
	Vehicle      string
	Wheel        string
	Transmission string
	// FourWheelDrive is "yes", "no" or empty.
	FourWheelDrive string
	Brand          string
	Model          string
	Year           string
	Address        string
	Position       *domain.Coordinates
	Destination    string
}

// Answers validates the options and assembles them into an answer snapshot.
func (o ComposeOptions) Answers() (domain.Answers, error) {
	var a domain.Answers
	var err error
	if a.Problem, err = domain.ParseProblem(o.Problem); err != nil {
		return a, err
	}
	if o.Vehicle != "" {
		if a.VehicleCategory, err = domain.ParseVehicleCategory(o.Vehicle); err != nil {
			return a, err
		}
	}
	if o.Wheel != "" {
		if a.WheelPosition, err = domain.ParseWheelPosition(o.Wheel); err != nil {
			return a, err
		}
	}
	if o.Transmission != "" {
		if a.Transmission, err = domain.ParseTransmission(o.Transmission); err != nil {
			return a, err
		}
	}
	switch strings.ToLower(o.FourWheelDrive) {
	case "":
	case "yes", "true":
		v := true
		a.FourWheelDrive = &v
	case "no", "false":
		v := false
		a.FourWheelDrive = &v
	default:
		return a, fmt.Errorf("%w: 4x4 must be yes or no, got %q", domain.ErrInvalidAnswer, o.FourWheelDrive)
	}
	a.WreckBrand, a.WreckModel, a.WreckYear = o.Brand, o.Model, o.Year

	switch {
	case o.Position != nil:
		if !o.Position.Valid() {
			return a, fmt.Errorf("%w: coordinates out of range: %s", domain.ErrInvalidAnswer, o.Position)
		}
		c := *o.Position
		a.Location = domain.Location{Kind: domain.LocationGPS, Coordinates: &c}
	case strings.TrimSpace(o.Address) != "":
		a.Location = domain.Location{Kind: domain.LocationManual, Address: strings.TrimSpace(o.Address)}
	}

	if a.Problem.NeedsDestination() {
		if d := strings.TrimSpace(o.Destination); d != "" {
			a.Destination = &domain.Destination{Address: d}
		} else {
			a.Destination = &domain.Destination{Unknown: true}
		}
	}
	return a, nil
}

// Compose prints the outgoing message and its deep link for answers given as options.
// Incomplete answers are composed anyway; the missing lines are simply left out.
func Compose(ctx context.Context, cfg *config.Config, opts ComposeOptions, out io.Writer) error {
	a, err := opts.Answers()
	if err != nil {
		return err
	}
	bundle, err := locale.NewBundle(locale.WithFallback(cfg.Language))
	if err != nil {
		return err
	}
	if cfg.LocalesDir != "" {
		src, err := locale.OpenDir(cfg.LocalesDir)
		if err != nil {
			return err
		}
		locale.Load(ctx, bundle, src, nil)
	}

	lang := opts.Language
	if lang == "" {
		lang = cfg.Language
	}
	msg := runtime.Compose(a, bundle.Translator(bundle.Match(lang)))
	link := runtime.Link{Base: cfg.LinkBase, Phone: cfg.Phone}.For(msg)

	fmt.Fprintln(out, msg)
	fmt.Fprintln(out)
	fmt.Fprintln(out, link)
	if !a.Complete() {
		return ErrIncomplete
	}
	return nil
}
