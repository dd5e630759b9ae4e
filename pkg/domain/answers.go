package domain

import "strings"

// Answers is a read-only snapshot of everything a visitor supplied so far.
type Answers struct {
	Problem         Problem         `json:"problem,omitempty"`
	VehicleCategory VehicleCategory `json:"vehicle_category,omitempty"`
	WheelPosition   WheelPosition   `json:"wheel_position,omitempty"`
	Transmission    Transmission    `json:"transmission,omitempty"`
	FourWheelDrive  *bool           `json:"four_wheel_drive,omitempty"`
	WreckBrand      string          `json:"wreck_brand,omitempty"`
	WreckModel      string          `json:"wreck_model,omitempty"`
	WreckYear       string          `json:"wreck_year,omitempty"`
	Location        Location        `json:"location"`
	Destination     *Destination    `json:"destination,omitempty"`
}

// Clone returns a deep copy.
func (a Answers) Clone() Answers {
	out := a
	if a.FourWheelDrive != nil {
		v := *a.FourWheelDrive
		out.FourWheelDrive = &v
	}
	if a.Location.Coordinates != nil {
		c := *a.Location.Coordinates
		out.Location.Coordinates = &c
	}
	if a.Destination != nil {
		d := *a.Destination
		out.Destination = &d
	}
	return out
}

// WreckValue returns the recorded value of a wreck field.
func (a Answers) WreckValue(f WreckField) string {
	switch f {
	case WreckBrand:
		return a.WreckBrand
	case WreckModel:
		return a.WreckModel
	case WreckYear:
		return a.WreckYear
	}
	return ""
}

// VehicleComplete reports whether every vehicle question of the branch is answered,
// which is the precondition for collecting a location.
func (a Answers) VehicleComplete() bool {
	switch a.Problem.Branch() {
	case BranchWreck:
		return a.Problem != "" && a.WreckYear != ""
	case BranchFlat:
		return a.WheelPosition != "" && a.FourWheelDrive != nil
	default:
		return a.Problem != "" && a.FourWheelDrive != nil
	}
}

// Complete reports whether the answers are sufficient to compose the outgoing message.
func (a Answers) Complete() bool {
	if !a.VehicleComplete() || !a.Location.IsSet() {
		return false
	}
	if a.Problem.NeedsDestination() {
		return a.Destination != nil && a.Destination.Decided()
	}
	return true
}

// AnswerStore is the mutable answer record of one session. Each mutator enforces the
// invariant it touches and fails with ErrInvalidTransition when its precondition does
// not hold. An AnswerStore is not safe for concurrent use; the owning session serialises access.
type AnswerStore struct {
	a Answers
}

// NewAnswerStore returns an empty store.
func NewAnswerStore() *AnswerStore { return &AnswerStore{} }

// RestoreAnswerStore rebuilds a store from a persisted snapshot.
func RestoreAnswerStore(a Answers) *AnswerStore { return &AnswerStore{a: a.Clone()} }

// Snapshot returns a copy of the current answers.
func (s *AnswerStore) Snapshot() Answers { return s.a.Clone() }

func (s *AnswerStore) SetProblem(p Problem) error {
	if s.a.Problem != "" {
		return invalidTransition("problem already set to %q", s.a.Problem)
	}
	if !p.Valid() {
		return invalidAnswer("unknown problem %q", p)
	}
	s.a.Problem = p
	return nil
}

func (s *AnswerStore) SetVehicleCategory(c VehicleCategory) error {
	if err := s.requireVehicleBranch("vehicle category"); err != nil {
		return err
	}
	if s.a.VehicleCategory != "" {
		return invalidTransition("vehicle category already set")
	}
	if !c.Valid() {
		return invalidAnswer("unknown vehicle category %q", c)
	}
	s.a.VehicleCategory = c
	return nil
}

func (s *AnswerStore) SetWheelPosition(w WheelPosition) error {
	if s.a.Problem != ProblemFlat {
		return invalidTransition("wheel position requires a flat tire, problem is %q", s.a.Problem)
	}
	if s.a.VehicleCategory == "" {
		return invalidTransition("wheel position before vehicle category")
	}
	if s.a.WheelPosition != "" {
		return invalidTransition("wheel position already set")
	}
	if !w.Valid() {
		return invalidAnswer("unknown wheel position %q", w)
	}
	s.a.WheelPosition = w
	return nil
}

func (s *AnswerStore) SetTransmission(t Transmission) error {
	if err := s.requireVehicleBranch("transmission"); err != nil {
		return err
	}
	if s.a.VehicleCategory == "" || (s.a.Problem == ProblemFlat && s.a.WheelPosition == "") {
		return invalidTransition("transmission before vehicle details")
	}
	if s.a.Transmission != "" {
		return invalidTransition("transmission already set")
	}
	if !t.Valid() {
		return invalidAnswer("unknown transmission %q", t)
	}
	s.a.Transmission = t
	return nil
}

func (s *AnswerStore) SetFourWheelDrive(enabled bool) error {
	if err := s.requireVehicleBranch("four-wheel drive"); err != nil {
		return err
	}
	if s.a.Transmission == "" {
		return invalidTransition("four-wheel drive before transmission")
	}
	if s.a.FourWheelDrive != nil {
		return invalidTransition("four-wheel drive already set")
	}
	s.a.FourWheelDrive = &enabled
	return nil
}

// SetWreckField records one wreck field; fields must be filled as brand, model, year.
func (s *AnswerStore) SetWreckField(f WreckField, value string) error {
	if s.a.Problem != ProblemWreck {
		return invalidTransition("wreck %s requires wreck removal, problem is %q", f, s.a.Problem)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return invalidAnswer("empty wreck %s", f)
	}
	switch f {
	case WreckBrand:
		if s.a.WreckBrand != "" {
			return invalidTransition("wreck brand already set")
		}
		s.a.WreckBrand = value
	case WreckModel:
		if s.a.WreckBrand == "" || s.a.WreckModel != "" {
			return invalidTransition("wreck model out of order")
		}
		s.a.WreckModel = value
	case WreckYear:
		if s.a.WreckModel == "" || s.a.WreckYear != "" {
			return invalidTransition("wreck year out of order")
		}
		s.a.WreckYear = value
	default:
		return invalidAnswer("unknown wreck field %q", f)
	}
	return nil
}

func (s *AnswerStore) SetLocationGPS(c Coordinates) error {
	if err := s.requireLocationSlot(); err != nil {
		return err
	}
	if !c.Valid() {
		return invalidAnswer("coordinates %s out of range", c)
	}
	s.a.Location = Location{Kind: LocationGPS, Coordinates: &c}
	return nil
}

func (s *AnswerStore) SetLocationManual(address string) error {
	if err := s.requireLocationSlot(); err != nil {
		return err
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return invalidAnswer("empty address")
	}
	s.a.Location = Location{Kind: LocationManual, Address: address}
	return nil
}

func (s *AnswerStore) SetDestinationAddress(address string) error {
	if err := s.requireDestinationSlot(); err != nil {
		return err
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return invalidAnswer("empty destination")
	}
	s.a.Destination = &Destination{Address: address}
	return nil
}

func (s *AnswerStore) SetDestinationUnknown() error {
	if err := s.requireDestinationSlot(); err != nil {
		return err
	}
	s.a.Destination = &Destination{Unknown: true}
	return nil
}

// SetRouteMetrics attaches distance and duration to a known destination address.
func (s *AnswerStore) SetRouteMetrics(distance, duration string) error {
	if !s.a.Problem.NeedsDestination() {
		return invalidTransition("route metrics without destination branch")
	}
	d := s.a.Destination
	if d == nil || d.Unknown || d.Address == "" {
		return invalidTransition("route metrics require a destination address")
	}
	if distance == "" {
		return invalidAnswer("empty distance")
	}
	d.Distance = distance
	d.Duration = duration
	return nil
}

func (s *AnswerStore) requireVehicleBranch(field string) error {
	if s.a.Problem == "" {
		return invalidTransition("%s before problem", field)
	}
	if s.a.Problem == ProblemWreck {
		return invalidTransition("%s is not collected for wreck removal", field)
	}
	return nil
}

func (s *AnswerStore) requireLocationSlot() error {
	if !s.a.VehicleComplete() {
		return invalidTransition("location before vehicle details")
	}
	if s.a.Location.IsSet() {
		return invalidTransition("location already set")
	}
	return nil
}

func (s *AnswerStore) requireDestinationSlot() error {
	if !s.a.Problem.NeedsDestination() {
		return invalidTransition("problem %q does not need a destination", s.a.Problem)
	}
	if !s.a.Location.IsSet() {
		return invalidTransition("destination before location")
	}
	if s.a.Destination != nil {
		return invalidTransition("destination already set")
	}
	return nil
}
