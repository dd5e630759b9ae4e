package locale

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// ErrInvalidCatalog is returned when a catalog does not match the locale schema.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog is the typed locale schema. Resource files (YAML or JSON) are nested trees
// that decode into it; unknown keys are rejected.
type Catalog struct {
	Language      string                 `mapstructure:"language"`
	Header        HeaderText             `mapstructure:"header"`
	Steps         StepTexts              `mapstructure:"steps"`
	Problems      map[string]ProblemText `mapstructure:"problems"`
	Vehicles      map[string]VehicleText `mapstructure:"vehicles"`
	WheelPosition map[string]string      `mapstructure:"wheel_positions"`
	Transmissions map[string]string      `mapstructure:"transmissions"`
	Drive         DriveText              `mapstructure:"drive"`
	Location      LocationText           `mapstructure:"location"`
	Destination   DestinationText        `mapstructure:"destination"`
	Summary       SummaryText            `mapstructure:"summary"`
	Message       MessageText            `mapstructure:"message"`
	Footer        FooterText             `mapstructure:"footer"`
}

type HeaderText struct {
	Title  string `mapstructure:"title"`
	Status string `mapstructure:"status"`
}

type Prompt struct {
	Question    string `mapstructure:"question"`
	Placeholder string `mapstructure:"placeholder"`
}

type StepTexts struct {
	Problem struct {
		Greeting string `mapstructure:"greeting"`
		Question string `mapstructure:"question"`
	} `mapstructure:"problem"`
	Vehicle      Prompt `mapstructure:"vehicle"`
	Wheel        Prompt `mapstructure:"wheel"`
	Transmission Prompt `mapstructure:"transmission"`
	Drive        Prompt `mapstructure:"drive"`
	WreckBrand   Prompt `mapstructure:"wreck_brand"`
	WreckModel   Prompt `mapstructure:"wreck_model"`
	WreckYear    Prompt `mapstructure:"wreck_year"`
	Location     struct {
		Question           string `mapstructure:"question"`
		GPSButton          string `mapstructure:"gps_button"`
		AddressButton      string `mapstructure:"address_button"`
		Separator          string `mapstructure:"separator"`
		AddressPlaceholder string `mapstructure:"address_placeholder"`
		BackButton         string `mapstructure:"back_button"`
		Privacy            string `mapstructure:"privacy"`
		Searching          string `mapstructure:"searching"`
	} `mapstructure:"location"`
	Destination struct {
		Question      string `mapstructure:"question"`
		Placeholder   string `mapstructure:"placeholder"`
		UnknownButton string `mapstructure:"unknown_button"`
		Hint          string `mapstructure:"hint"`
	} `mapstructure:"destination"`
	Final struct {
		Message string `mapstructure:"message"`
	} `mapstructure:"final"`
}

type ProblemText struct {
	Label    string `mapstructure:"label"`
	Response string `mapstructure:"response"`
}

type VehicleText struct {
	Label    string `mapstructure:"label"`
	Examples string `mapstructure:"examples"`
}

type DriveText struct {
	Yes      string `mapstructure:"yes"`
	No       string `mapstructure:"no"`
	LabelYes string `mapstructure:"label_yes"`
	LabelNo  string `mapstructure:"label_no"`
}

type LocationText struct {
	GPS     string            `mapstructure:"gps"`
	Address string            `mapstructure:"address"`
	Errors  map[string]string `mapstructure:"errors"`
}

type DestinationText struct {
	Unknown       string `mapstructure:"unknown"`
	DistanceLabel string `mapstructure:"distance_label"`
	DurationLabel string `mapstructure:"duration_label"`
}

type SummaryText struct {
	Title        string `mapstructure:"title"`
	Company      string `mapstructure:"company"`
	Problem      string `mapstructure:"problem"`
	Vehicle      string `mapstructure:"vehicle"`
	Transmission string `mapstructure:"transmission"`
	Location     string `mapstructure:"location"`
	Destination  string `mapstructure:"destination"`
	CTA          string `mapstructure:"cta"`
	TrustTitle   string `mapstructure:"trust_title"`
	TrustMessage string `mapstructure:"trust_message"`
}

type MessageText struct {
	Greeting     string `mapstructure:"greeting"`
	Intro        string `mapstructure:"intro"`
	Problem      string `mapstructure:"problem"`
	Vehicle      string `mapstructure:"vehicle"`
	Transmission string `mapstructure:"transmission"`
	Location     string `mapstructure:"location"`
	Destination  string `mapstructure:"destination"`
	Distance     string `mapstructure:"distance"`
	Closing      string `mapstructure:"closing"`
}

type FooterText struct {
	Privacy string `mapstructure:"privacy"`
}

var locationErrorKinds = []domain.LocationErrorKind{
	domain.LocationPermissionDenied,
	domain.LocationUnavailable,
	domain.LocationTimeout,
	domain.LocationUnknown,
}

// Decode converts a nested resource tree into a Catalog. Keys outside the schema fail.
func Decode(raw map[string]any) (*Catalog, error) {
	var c Catalog
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &c,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return &c, nil
}

// Entries flattens the catalog into the fixed key set. Every key is present in the result,
// with an empty string when the catalog does not provide it.
func (c *Catalog) Entries() map[string]string {
	s := &c.Steps
	e := map[string]string{
		KeyHeaderTitle:            c.Header.Title,
		KeyHeaderStatus:           c.Header.Status,
		KeyProblemGreeting:        s.Problem.Greeting,
		KeyProblemQuestion:        s.Problem.Question,
		KeyVehicleQuestion:        s.Vehicle.Question,
		KeyWheelQuestion:          s.Wheel.Question,
		KeyTransmissionQuestion:   s.Transmission.Question,
		KeyDriveQuestion:          s.Drive.Question,
		KeyWreckBrandQuestion:     s.WreckBrand.Question,
		KeyWreckBrandPlaceholder:  s.WreckBrand.Placeholder,
		KeyWreckModelQuestion:     s.WreckModel.Question,
		KeyWreckModelPlaceholder:  s.WreckModel.Placeholder,
		KeyWreckYearQuestion:      s.WreckYear.Question,
		KeyWreckYearPlaceholder:   s.WreckYear.Placeholder,
		KeyLocationQuestion:       s.Location.Question,
		KeyLocationGPSButton:      s.Location.GPSButton,
		KeyLocationAddressButton:  s.Location.AddressButton,
		KeyLocationSeparator:      s.Location.Separator,
		KeyLocationPlaceholder:    s.Location.AddressPlaceholder,
		KeyLocationBackButton:     s.Location.BackButton,
		KeyLocationPrivacy:        s.Location.Privacy,
		KeyLocationSearching:      s.Location.Searching,
		KeyDestinationQuestion:    s.Destination.Question,
		KeyDestinationPlaceholder: s.Destination.Placeholder,
		KeyDestinationUnknownBtn:  s.Destination.UnknownButton,
		KeyDestinationHint:        s.Destination.Hint,
		KeyFinalMessage:           s.Final.Message,
		KeyDriveYes:               c.Drive.Yes,
		KeyDriveNo:                c.Drive.No,
		KeyDriveLabelYes:          c.Drive.LabelYes,
		KeyDriveLabelNo:           c.Drive.LabelNo,
		KeyLocationGPS:            c.Location.GPS,
		KeyLocationAddress:        c.Location.Address,
		KeyDestinationUnknown:     c.Destination.Unknown,
		KeyDistanceLabel:          c.Destination.DistanceLabel,
		KeyDurationLabel:          c.Destination.DurationLabel,
		KeySummaryTitle:           c.Summary.Title,
		KeySummaryCompany:         c.Summary.Company,
		KeySummaryProblem:         c.Summary.Problem,
		KeySummaryVehicle:         c.Summary.Vehicle,
		KeySummaryTransmission:    c.Summary.Transmission,
		KeySummaryLocation:        c.Summary.Location,
		KeySummaryDestination:     c.Summary.Destination,
		KeySummaryCTA:             c.Summary.CTA,
		KeySummaryTrustTitle:      c.Summary.TrustTitle,
		KeySummaryTrustMessage:    c.Summary.TrustMessage,
		KeyMsgGreeting:            c.Message.Greeting,
		KeyMsgIntro:               c.Message.Intro,
		KeyMsgProblem:             c.Message.Problem,
		KeyMsgVehicle:             c.Message.Vehicle,
		KeyMsgTransmission:        c.Message.Transmission,
		KeyMsgLocation:            c.Message.Location,
		KeyMsgDestination:         c.Message.Destination,
		KeyMsgDistance:            c.Message.Distance,
		KeyMsgClosing:             c.Message.Closing,
		KeyFooterPrivacy:          c.Footer.Privacy,
	}
	for _, p := range domain.Problems {
		e[ProblemLabelKey(p)] = c.Problems[string(p)].Label
		e[ProblemResponseKey(p)] = c.Problems[string(p)].Response
	}
	for _, v := range domain.VehicleCategories {
		e[VehicleLabelKey(v)] = c.Vehicles[string(v)].Label
		e[VehicleExamplesKey(v)] = c.Vehicles[string(v)].Examples
	}
	for _, w := range domain.WheelPositions {
		e[WheelPositionKey(w)] = c.WheelPosition[string(w)]
	}
	for _, t := range domain.Transmissions {
		e[TransmissionKey(t)] = c.Transmissions[string(t)]
	}
	for _, k := range locationErrorKinds {
		e[LocationErrorKey(k)] = c.Location.Errors[string(k)]
	}
	return e
}

// Keys returns the fixed key set, sorted.
func Keys() []string {
	var empty Catalog
	return sortedKeys(empty.Entries())
}

// ValidationError lists the problems found in a catalog.
type ValidationError struct {
	Language string
	Missing  []string
	Unknown  []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown "+strings.Join(e.Unknown, ", "))
	}
	return fmt.Sprintf("catalog %q: %s", e.Language, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidCatalog }

// Validate checks the catalog against the fixed key set. It returns nil or a *ValidationError.
func (c *Catalog) Validate() error {
	verr := &ValidationError{Language: c.Language}
	for k, v := range c.Entries() {
		if strings.TrimSpace(v) == "" {
			verr.Missing = append(verr.Missing, k)
		}
	}
	verr.Unknown = append(verr.Unknown, unknownIDs("problems", c.Problems, domain.Problems)...)
	verr.Unknown = append(verr.Unknown, unknownIDs("vehicles", c.Vehicles, domain.VehicleCategories)...)
	verr.Unknown = append(verr.Unknown, unknownIDs("wheel_positions", c.WheelPosition, domain.WheelPositions)...)
	verr.Unknown = append(verr.Unknown, unknownIDs("transmissions", c.Transmissions, domain.Transmissions)...)
	verr.Unknown = append(verr.Unknown, unknownIDs("location.errors", c.Location.Errors, locationErrorKinds)...)
	if c.Language == "" {
		verr.Missing = append(verr.Missing, "language")
	}
	if len(verr.Missing) == 0 && len(verr.Unknown) == 0 {
		return nil
	}
	sort.Strings(verr.Missing)
	sort.Strings(verr.Unknown)
	return verr
}

func unknownIDs[V any, T ~string](section string, m map[string]V, known []T) []string {
	var out []string
	for id := range m {
		if !slices.Contains(known, T(id)) {
			out = append(out, section+"."+id)
		}
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
