package domain

import "strconv"

// Coordinates is a WGS84 position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinates fall inside WGS84 bounds.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// String renders "lat,lng" with the shortest exact decimal form.
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

// LocationKind tells how the pickup location was obtained.
type LocationKind string

const (
	LocationUnset  LocationKind = ""
	LocationGPS    LocationKind = "gps"
	LocationManual LocationKind = "manual"
)

// Location is the pickup location.
type Location struct {
	Kind        LocationKind `json:"kind,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Address     string       `json:"address,omitempty"`
}

// IsSet reports whether a pickup location has been recorded.
func (l Location) IsSet() bool { return l.Kind != LocationUnset }

// Destination is the drop-off location collected when the problem needs one.
type Destination struct {
	Address  string `json:"address,omitempty"`
	Unknown  bool   `json:"unknown,omitempty"`
	Distance string `json:"distance,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// Decided reports whether the visitor answered the destination question.
func (d Destination) Decided() bool { return d.Unknown || d.Address != "" }

// HasMetrics reports whether route metrics were resolved.
func (d Destination) HasMetrics() bool { return d.Distance != "" }

// RouteMetrics is the human-readable distance and duration between pickup and destination.
type RouteMetrics struct {
	Distance string `json:"distance"`
	Duration string `json:"duration"`
}
