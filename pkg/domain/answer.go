package domain

// AnswerKind identifies the shape of an Answer.
type AnswerKind string

const (
	AnswerProblem            AnswerKind = "problem"
	AnswerVehicle            AnswerKind = "vehicle"
	AnswerWheelPosition      AnswerKind = "wheel_position"
	AnswerTransmission       AnswerKind = "transmission"
	AnswerFourWheelDrive     AnswerKind = "four_wheel_drive"
	AnswerWreck              AnswerKind = "wreck"
	AnswerLocationGPS        AnswerKind = "location_gps"
	AnswerLocationAddress    AnswerKind = "location_address"
	AnswerDestinationAddress AnswerKind = "destination_address"
	AnswerDestinationUnknown AnswerKind = "destination_unknown"
)

// Answer is a visitor answer submitted for the current step.
type Answer interface {
	Kind() AnswerKind
}

type ProblemAnswer struct{ Problem Problem }

type VehicleAnswer struct{ Category VehicleCategory }

type WheelPositionAnswer struct{ Position WheelPosition }

type TransmissionAnswer struct{ Transmission Transmission }

type FourWheelDriveAnswer struct{ Enabled bool }

// WreckAnswer carries one free-text wreck field. Field must match the current step.
type WreckAnswer struct {
	Field WreckField
	Value string
}

type LocationGPSAnswer struct{ Coordinates Coordinates }

type LocationAddressAnswer struct{ Address string }

type DestinationAddressAnswer struct{ Address string }

type DestinationUnknownAnswer struct{}

func (ProblemAnswer) Kind() AnswerKind            { return AnswerProblem }
func (VehicleAnswer) Kind() AnswerKind            { return AnswerVehicle }
func (WheelPositionAnswer) Kind() AnswerKind      { return AnswerWheelPosition }
func (TransmissionAnswer) Kind() AnswerKind       { return AnswerTransmission }
func (FourWheelDriveAnswer) Kind() AnswerKind     { return AnswerFourWheelDrive }
func (WreckAnswer) Kind() AnswerKind              { return AnswerWreck }
func (LocationGPSAnswer) Kind() AnswerKind        { return AnswerLocationGPS }
func (LocationAddressAnswer) Kind() AnswerKind    { return AnswerLocationAddress }
func (DestinationAddressAnswer) Kind() AnswerKind { return AnswerDestinationAddress }
func (DestinationUnknownAnswer) Kind() AnswerKind { return AnswerDestinationUnknown }
