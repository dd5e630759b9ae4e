package domain

import "slices"

// VehicleCategory is the coarse vehicle class used for pricing.
type VehicleCategory string

const (
	VehicleCity    VehicleCategory = "city"
	VehicleSedan   VehicleCategory = "sedan"
	VehicleVan     VehicleCategory = "van"
	VehiclePremium VehicleCategory = "premium"
)

var VehicleCategories = []VehicleCategory{VehicleCity, VehicleSedan, VehicleVan, VehiclePremium}

func (v VehicleCategory) Valid() bool { return slices.Contains(VehicleCategories, v) }

func ParseVehicleCategory(s string) (VehicleCategory, error) {
	return parseEnum("vehicle category", s, VehicleCategories)
}

// WheelPosition tells the crew which axle carries the flat tire.
type WheelPosition string

const (
	WheelFront WheelPosition = "front"
	WheelRear  WheelPosition = "rear"
)

var WheelPositions = []WheelPosition{WheelFront, WheelRear}

func (w WheelPosition) Valid() bool { return slices.Contains(WheelPositions, w) }

func ParseWheelPosition(s string) (WheelPosition, error) {
	return parseEnum("wheel position", s, WheelPositions)
}

type Transmission string

const (
	TransmissionManual    Transmission = "manual"
	TransmissionAutomatic Transmission = "automatic"
)

var Transmissions = []Transmission{TransmissionManual, TransmissionAutomatic}

func (t Transmission) Valid() bool { return slices.Contains(Transmissions, t) }

func ParseTransmission(s string) (Transmission, error) {
	return parseEnum("transmission", s, Transmissions)
}

// WreckField names one of the free-text vehicle fields of the wreck branch.
type WreckField string

const (
	WreckBrand WreckField = "brand"
	WreckModel WreckField = "model"
	WreckYear  WreckField = "year"
)

// WreckFields lists the wreck fields in the order they must be filled.
var WreckFields = []WreckField{WreckBrand, WreckModel, WreckYear}
