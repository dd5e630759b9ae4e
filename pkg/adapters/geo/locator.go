// Package geo provides Locators for front ends that learn the visitor's position
// themselves: a browser reporting navigator.geolocation results, a chat location
// message, or fixed coordinates from the command line.
package geo

import (
	"context"
	"fmt"

	"github.com/helpcar/quotechat/pkg/domain"
)

// Static always returns the same position.
type Static struct {
	Coordinates domain.Coordinates
}

func (s Static) CurrentPosition(ctx context.Context) (domain.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, domain.NewLocationError(domain.LocationTimeout, err)
	}
	if !s.Coordinates.Valid() {
		return domain.Coordinates{}, domain.NewLocationError(domain.LocationUnavailable,
			fmt.Errorf("coordinates out of range: %s", s.Coordinates))
	}
	return s.Coordinates, nil
}

// Report is the outcome of a position request made by a client: either coordinates
// or the kind of failure the client observed.
type Report struct {
	Lat   *float64 `json:"lat,omitempty" mapstructure:"lat"`
	Lng   *float64 `json:"lng,omitempty" mapstructure:"lng"`
	Error string   `json:"error,omitempty" mapstructure:"error"`
}

// CurrentPosition replays the report.
func (r Report) CurrentPosition(ctx context.Context) (domain.Coordinates, error) {
	if r.Error != "" {
		return domain.Coordinates{}, domain.NewLocationError(domain.LocationErrorKind(r.Error), nil)
	}
	if r.Lat == nil || r.Lng == nil {
		return domain.Coordinates{}, domain.NewLocationError(domain.LocationUnknown, fmt.Errorf("report carries no coordinates"))
	}
	return Static{Coordinates: domain.Coordinates{Lat: *r.Lat, Lng: *r.Lng}}.CurrentPosition(ctx)
}

// Failed always fails with the given kind, e.g. for clients that cannot share a position.
type Failed struct {
	Kind domain.LocationErrorKind
}

func (f Failed) CurrentPosition(context.Context) (domain.Coordinates, error) {
	return domain.Coordinates{}, domain.NewLocationError(f.Kind, nil)
}
