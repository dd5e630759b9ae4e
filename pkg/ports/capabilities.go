package ports

import (
	"context"
	"time"

	"github.com/helpcar/quotechat/pkg/domain"
)

// Locator provides the visitor's current position. Failures are *domain.LocationError.
// It is called once per "use my location" action and never polled.
type Locator interface {
	CurrentPosition(ctx context.Context) (domain.Coordinates, error)
}

// AddressResolver turns free text into a formatted address.
type AddressResolver interface {
	// Resolve returns the best formatted address for text. ok is false when nothing matched.
	Resolve(ctx context.Context, text string) (address string, ok bool, err error)

	// Suggest returns candidate addresses for autocomplete.
	Suggest(ctx context.Context, text string) ([]string, error)
}

// RouteEstimator computes the distance and duration between the pickup location and
// a destination address.
type RouteEstimator interface {
	Estimate(ctx context.Context, origin domain.Location, destination string) (domain.RouteMetrics, error)
}

// Translator resolves a translation key for one language. Unknown keys return the key itself.
type Translator interface {
	Translate(key string) string
	Language() string
}

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock schedules pacing callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}
