package domain

import "time"

// SessionStatus is the lifecycle state of a wizard session.
type SessionStatus string

const (
	StatusClosed    SessionStatus = "closed"
	StatusOpen      SessionStatus = "open"
	StatusRunning   SessionStatus = "running"
	StatusCompleted SessionStatus = "completed"
)

// LocationEntry is the presentation mode of the location step.
type LocationEntry string

const (
	EntryChoose  LocationEntry = "choose"
	EntryAddress LocationEntry = "address"
)

// SessionRecord is the serialisable state of one wizard session.
// Generation changes on every open and close; timers scheduled under an older
// generation must not touch the record.
type SessionRecord struct {
	ID            string        `json:"id"`
	Language      string        `json:"language"`
	Status        SessionStatus `json:"status"`
	Step          Step          `json:"step"`
	Pending       bool          `json:"pending"`
	LocationEntry LocationEntry `json:"location_entry"`
	Locating      bool          `json:"locating,omitempty"`
	// Notice is a translation key shown as an extra bot turn on the current step.
	Notice     string    `json:"notice,omitempty"`
	Answers    Answers   `json:"answers"`
	Generation uint64    `json:"generation"`
	UpdatedAt  time.Time `json:"updated_at"`
	// Sealed holds the encrypted record when the store encrypts at rest. The other
	// fields of such an envelope are limited to ID, Status and UpdatedAt.
	Sealed string `json:"sealed,omitempty"`
}

// NewSessionRecord creates a closed session record.
func NewSessionRecord(id, language string) *SessionRecord {
	return &SessionRecord{
		ID:            id,
		Language:      language,
		Status:        StatusClosed,
		Step:          StepProblem,
		LocationEntry: EntryChoose,
	}
}

// Clone returns a deep copy.
func (r *SessionRecord) Clone() *SessionRecord {
	out := *r
	out.Answers = r.Answers.Clone()
	return &out
}
