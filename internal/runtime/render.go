package runtime

import (
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/helpcar/quotechat/pkg/locale"
	"github.com/helpcar/quotechat/pkg/ports"
)

// ViewState is the input of Resolve.
type ViewState struct {
	Step          domain.Step
	Answers       domain.Answers
	Pending       bool
	LocationEntry domain.LocationEntry
	Locating      bool
	Notice        string
}

// StateOf extracts the view state of a session record.
func StateOf(r *domain.SessionRecord) ViewState {
	return ViewState{
		Step:          r.Step,
		Answers:       r.Answers,
		Pending:       r.Pending,
		LocationEntry: r.LocationEntry,
		Locating:      r.Locating,
		Notice:        r.Notice,
	}
}

// Resolve derives the conversation for a state. Prior answers become user turns, the
// current step contributes its bot turns and affordance, or a single typing turn while
// pending. Resolve has no side effects.
func Resolve(st ViewState, tr ports.Translator) domain.ConversationView {
	flow := FlowFor(st.Answers.Problem)
	view := domain.ConversationView{
		Step:     st.Step,
		Position: flow.Label(st.Step),
		Index:    flow.Index(st.Step),
		Total:    flow.Total(),
		Pending:  st.Pending,
		Turns:    []domain.Turn{},
	}

	target := st.Step
	if target == domain.StepSummaryReveal {
		target = domain.StepFinal
	}

	for _, s := range flow.Steps() {
		if s == target && st.Pending {
			view.Turns = append(view.Turns, domain.Turn{Speaker: domain.SpeakerBot, Step: s, Typing: true})
			break
		}
		for _, text := range botTexts(s, st.Answers, tr) {
			view.Turns = append(view.Turns, domain.Turn{Speaker: domain.SpeakerBot, Text: text, Step: s})
		}
		if s == target {
			view.Turns = append(view.Turns, statusTurns(st, tr)...)
			view.Affordance = affordance(st, tr)
			break
		}
		if text, ok := userText(s, st.Answers, tr); ok {
			view.Turns = append(view.Turns, domain.Turn{Speaker: domain.SpeakerUser, Text: text, Step: s})
		}
	}
	return view
}

func botTexts(s domain.Step, a domain.Answers, tr ports.Translator) []string {
	t := tr.Translate
	switch s {
	case domain.StepProblem:
		return []string{t(locale.KeyProblemGreeting), t(locale.KeyProblemQuestion)}
	case domain.StepVehicle:
		return []string{t(locale.ProblemResponseKey(a.Problem)), t(locale.KeyVehicleQuestion)}
	case domain.StepFlatWheelPosition:
		return []string{t(locale.KeyWheelQuestion)}
	case domain.StepTransmission:
		return []string{t(locale.KeyTransmissionQuestion)}
	case domain.StepFourWheelDrive:
		return []string{t(locale.KeyDriveQuestion)}
	case domain.StepWreckBrand:
		return []string{t(locale.ProblemResponseKey(a.Problem)), t(locale.KeyWreckBrandQuestion)}
	case domain.StepWreckModel:
		return []string{t(locale.KeyWreckModelQuestion)}
	case domain.StepWreckYear:
		return []string{t(locale.KeyWreckYearQuestion)}
	case domain.StepLocation:
		return []string{t(locale.KeyLocationQuestion)}
	case domain.StepDestination:
		return []string{t(locale.KeyDestinationQuestion)}
	case domain.StepFinal:
		return []string{t(locale.KeyFinalMessage)}
	}
	return nil
}

func userText(s domain.Step, a domain.Answers, tr ports.Translator) (string, bool) {
	t := tr.Translate
	switch s {
	case domain.StepProblem:
		return t(locale.ProblemLabelKey(a.Problem)), a.Problem != ""
	case domain.StepVehicle:
		return t(locale.VehicleLabelKey(a.VehicleCategory)), a.VehicleCategory != ""
	case domain.StepFlatWheelPosition:
		return t(locale.WheelPositionKey(a.WheelPosition)), a.WheelPosition != ""
	case domain.StepTransmission:
		return t(locale.TransmissionKey(a.Transmission)), a.Transmission != ""
	case domain.StepFourWheelDrive:
		if a.FourWheelDrive == nil {
			return "", false
		}
		return t(locale.DriveAnswerKey(*a.FourWheelDrive)), true
	case domain.StepWreckBrand, domain.StepWreckModel, domain.StepWreckYear:
		f, _ := s.WreckField()
		v := a.WreckValue(f)
		return v, v != ""
	case domain.StepLocation:
		switch a.Location.Kind {
		case domain.LocationGPS:
			return t(locale.KeyLocationGPS), true
		case domain.LocationManual:
			return a.Location.Address, true
		}
	case domain.StepDestination:
		if a.Destination == nil {
			return "", false
		}
		if a.Destination.Unknown {
			return t(locale.KeyDestinationUnknown), true
		}
		return a.Destination.Address, a.Destination.Address != ""
	}
	return "", false
}

func statusTurns(st ViewState, tr ports.Translator) []domain.Turn {
	var out []domain.Turn
	if st.Notice != "" {
		out = append(out, domain.Turn{Speaker: domain.SpeakerBot, Text: tr.Translate(st.Notice), Step: st.Step})
	}
	if st.Locating {
		out = append(out, domain.Turn{Speaker: domain.SpeakerBot, Text: tr.Translate(locale.KeyLocationSearching), Step: st.Step})
	}
	return out
}

func affordance(st ViewState, tr ports.Translator) *domain.Affordance {
	t := tr.Translate
	a := st.Answers
	switch st.Step {
	case domain.StepProblem:
		opts := make([]domain.Option, 0, len(domain.Problems))
		for _, p := range domain.Problems {
			opts = append(opts, domain.Option{Value: string(p), Label: t(locale.ProblemLabelKey(p))})
		}
		return &domain.Affordance{Kind: domain.AffordanceOptions, Options: opts}
	case domain.StepVehicle:
		opts := make([]domain.Option, 0, len(domain.VehicleCategories))
		for _, v := range domain.VehicleCategories {
			opts = append(opts, domain.Option{
				Value: string(v),
				Label: t(locale.VehicleLabelKey(v)),
				Hint:  t(locale.VehicleExamplesKey(v)),
			})
		}
		return &domain.Affordance{Kind: domain.AffordanceOptions, Options: opts}
	case domain.StepFlatWheelPosition:
		opts := make([]domain.Option, 0, len(domain.WheelPositions))
		for _, w := range domain.WheelPositions {
			opts = append(opts, domain.Option{Value: string(w), Label: t(locale.WheelPositionKey(w))})
		}
		return &domain.Affordance{Kind: domain.AffordanceChoice, Options: opts}
	case domain.StepTransmission:
		opts := make([]domain.Option, 0, len(domain.Transmissions))
		for _, tm := range domain.Transmissions {
			opts = append(opts, domain.Option{Value: string(tm), Label: t(locale.TransmissionKey(tm))})
		}
		return &domain.Affordance{Kind: domain.AffordanceChoice, Options: opts}
	case domain.StepFourWheelDrive:
		return &domain.Affordance{Kind: domain.AffordanceChoice, Options: []domain.Option{
			{Value: "yes", Label: t(locale.KeyDriveYes)},
			{Value: "no", Label: t(locale.KeyDriveNo)},
		}}
	case domain.StepWreckBrand:
		return &domain.Affordance{Kind: domain.AffordanceText, Placeholder: t(locale.KeyWreckBrandPlaceholder)}
	case domain.StepWreckModel:
		return &domain.Affordance{Kind: domain.AffordanceText, Placeholder: t(locale.KeyWreckModelPlaceholder)}
	case domain.StepWreckYear:
		return &domain.Affordance{Kind: domain.AffordanceText, Placeholder: t(locale.KeyWreckYearPlaceholder)}
	case domain.StepLocation:
		if st.Locating {
			return nil
		}
		if st.LocationEntry == domain.EntryAddress {
			return &domain.Affordance{
				Kind:        domain.AffordanceAddressEntry,
				Placeholder: t(locale.KeyLocationPlaceholder),
				BackLabel:   t(locale.KeyLocationBackButton),
				Options:     []domain.Option{{Value: InputBack, Label: t(locale.KeyLocationBackButton)}},
			}
		}
		return &domain.Affordance{
			Kind:         domain.AffordanceLocationChooser,
			GPSLabel:     t(locale.KeyLocationGPSButton),
			AddressLabel: t(locale.KeyLocationAddressButton),
			Separator:    t(locale.KeyLocationSeparator),
			Privacy:      t(locale.KeyLocationPrivacy),
			Options: []domain.Option{
				{Value: InputUseGPS, Label: t(locale.KeyLocationGPSButton)},
				{Value: InputEnterAddress, Label: t(locale.KeyLocationAddressButton)},
			},
		}
	case domain.StepDestination:
		return &domain.Affordance{
			Kind:         domain.AffordanceDestinationChooser,
			Placeholder:  t(locale.KeyDestinationPlaceholder),
			Separator:    t(locale.KeyLocationSeparator),
			UnknownLabel: t(locale.KeyDestinationUnknownBtn),
			Hint:         t(locale.KeyDestinationHint),
			Options:      []domain.Option{{Value: InputUnknownDestination, Label: t(locale.KeyDestinationUnknownBtn)}},
		}
	case domain.StepSummaryReveal:
		return &domain.Affordance{Kind: domain.AffordanceSummary, Summary: BuildSummary(a, tr)}
	}
	return nil
}

// BuildSummary assembles the summary card. Link is left empty; the session fills it in.
func BuildSummary(a domain.Answers, tr ports.Translator) *domain.Summary {
	t := tr.Translate
	s := &domain.Summary{
		Title:        t(locale.KeySummaryTitle),
		Company:      t(locale.KeySummaryCompany),
		CTA:          t(locale.KeySummaryCTA),
		TrustTitle:   t(locale.KeySummaryTrustTitle),
		TrustMessage: t(locale.KeySummaryTrustMessage),
		Message:      Compose(a, tr),
	}
	row := func(labelKey, value string) {
		s.Rows = append(s.Rows, domain.SummaryRow{Label: t(labelKey), Value: value})
	}

	row(locale.KeySummaryProblem, t(locale.ProblemLabelKey(a.Problem)))
	if a.Problem == domain.ProblemWreck {
		row(locale.KeySummaryVehicle, WreckVehicle(a))
	} else {
		row(locale.KeySummaryVehicle, t(locale.VehicleLabelKey(a.VehicleCategory)))
		row(locale.KeySummaryTransmission, TransmissionSummary(a, tr))
	}
	if a.Location.Kind == domain.LocationGPS {
		row(locale.KeySummaryLocation, t(locale.KeyLocationGPS))
	} else {
		row(locale.KeySummaryLocation, t(locale.KeyLocationAddress))
	}
	if a.Problem.NeedsDestination() && a.Destination != nil {
		if a.Destination.Unknown {
			row(locale.KeySummaryDestination, t(locale.KeyDestinationUnknown))
		} else {
			row(locale.KeySummaryDestination, a.Destination.Address)
		}
		if a.Destination.HasMetrics() {
			s.Metrics = append(s.Metrics,
				domain.SummaryRow{Label: t(locale.KeyDistanceLabel), Value: a.Destination.Distance},
				domain.SummaryRow{Label: t(locale.KeyDurationLabel), Value: "~" + a.Destination.Duration},
			)
		}
	}
	return s
}
