package domain

// Speaker identifies who a turn belongs to.
type Speaker string

const (
	SpeakerBot  Speaker = "bot"
	SpeakerUser Speaker = "user"
)

// Turn is one rendered conversation line. A typing turn is the placeholder shown while
// the next prompt is pending.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text,omitempty"`
	Step    Step    `json:"step"`
	Typing  bool    `json:"typing,omitempty"`
}

// AffordanceKind is the input control offered for the current step.
type AffordanceKind string

const (
	AffordanceOptions            AffordanceKind = "options"
	AffordanceChoice             AffordanceKind = "choice"
	AffordanceText               AffordanceKind = "text"
	AffordanceLocationChooser    AffordanceKind = "location_chooser"
	AffordanceAddressEntry       AffordanceKind = "address_entry"
	AffordanceDestinationChooser AffordanceKind = "destination_chooser"
	AffordanceSummary            AffordanceKind = "summary"
)

// Option is a selectable answer; Value is what a front end submits back.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Hint  string `json:"hint,omitempty"`
}

// Affordance describes the active input control. Only the fields relevant to Kind are set.
type Affordance struct {
	Kind         AffordanceKind `json:"kind"`
	Options      []Option       `json:"options,omitempty"`
	Placeholder  string         `json:"placeholder,omitempty"`
	GPSLabel     string         `json:"gps_label,omitempty"`
	AddressLabel string         `json:"address_label,omitempty"`
	Separator    string         `json:"separator,omitempty"`
	Privacy      string         `json:"privacy,omitempty"`
	BackLabel    string         `json:"back_label,omitempty"`
	UnknownLabel string         `json:"unknown_label,omitempty"`
	Hint         string         `json:"hint,omitempty"`
	Summary      *Summary       `json:"summary,omitempty"`
}

// SummaryRow is one labelled line of the summary card.
type SummaryRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Summary is the completed-lead card revealed after the final step.
type Summary struct {
	Title        string       `json:"title"`
	Company      string       `json:"company"`
	Rows         []SummaryRow `json:"rows"`
	Metrics      []SummaryRow `json:"metrics,omitempty"`
	CTA          string       `json:"cta"`
	TrustTitle   string       `json:"trust_title,omitempty"`
	TrustMessage string       `json:"trust_message,omitempty"`
	Message      string       `json:"message"`
	Link         string       `json:"link,omitempty"`
}

// ConversationView is everything a front end needs to draw the wizard.
type ConversationView struct {
	SessionID string        `json:"session_id,omitempty"`
	Language  string        `json:"language,omitempty"`
	Status    SessionStatus `json:"status,omitempty"`
	Step      Step          `json:"step"`
	// Position is the printable ordinal of Step within its branch ("1.5", "4b", "5.5").
	Position   string      `json:"position"`
	Index      int         `json:"index"`
	Total      int         `json:"total"`
	Pending    bool        `json:"pending"`
	Turns      []Turn      `json:"turns"`
	Affordance *Affordance `json:"affordance,omitempty"`
}

// BotTexts returns the text of every non-typing bot turn, in order.
func (v ConversationView) BotTexts() []string {
	var out []string
	for _, t := range v.Turns {
		if t.Speaker == SpeakerBot && !t.Typing {
			out = append(out, t.Text)
		}
	}
	return out
}

// UserTexts returns the text of every user turn, in order.
func (v ConversationView) UserTexts() []string {
	var out []string
	for _, t := range v.Turns {
		if t.Speaker == SpeakerUser {
			out = append(out, t.Text)
		}
	}
	return out
}
