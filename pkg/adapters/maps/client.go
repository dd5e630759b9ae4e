// Package maps implements address resolution, autocomplete and route metrics on the
// Google Maps web services.
package maps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/helpcar/quotechat/internal/logging"
	"github.com/helpcar/quotechat/pkg/domain"
	gmaps "googlemaps.github.io/maps"
)

var (
	// ErrNotReady is returned when the client did not become ready within the bounded wait.
	ErrNotReady = errors.New("maps client not ready")
	// ErrUnavailable is returned once client initialisation has failed; it never recovers.
	ErrUnavailable = errors.New("maps client unavailable")
	// ErrNoRoute is returned when directions yield no route.
	ErrNoRoute = errors.New("no route found")
)

const (
	DefaultRegion       = "be"
	DefaultReadyTimeout = 5 * time.Second

	warmupTimeout = 10 * time.Second
)

// Config configures the client.
type Config struct {
	APIKey       string        `mapstructure:"api_key"`
	Region       string        `mapstructure:"region"`
	Language     string        `mapstructure:"language"`
	ReadyTimeout time.Duration `mapstructure:"ready_timeout"`
	// BaseURL overrides the Google endpoint, for tests and proxies.
	BaseURL string `mapstructure:"base_url"`
	// Warmup is geocoded once during initialisation to validate the credentials.
	Warmup string `mapstructure:"warmup"`
}

// Client implements ports.AddressResolver and ports.RouteEstimator.
type Client struct {
	cfg    Config
	ready  *readiness[*gmaps.Client]
	logger *slog.Logger
}

type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New starts initialising the client in the background and returns immediately.
// Calls made before initialisation completes wait up to cfg.ReadyTimeout.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = DefaultReadyTimeout
	}
	c := &Client{cfg: cfg, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	c.ready = startReadiness(c.connect)
	return c
}

func (c *Client) connect() (*gmaps.Client, error) {
	opts := []gmaps.ClientOption{gmaps.WithAPIKey(c.cfg.APIKey)}
	if c.cfg.BaseURL != "" {
		opts = append(opts, gmaps.WithBaseURL(c.cfg.BaseURL))
	}
	client, err := gmaps.NewClient(opts...)
	if err != nil {
		c.logger.Warn("Maps client disabled", "err", err)
		return nil, err
	}

	if c.cfg.Warmup != "" {
		ctx, cancel := context.WithTimeout(context.Background(), warmupTimeout)
		defer cancel()
		if _, err := client.Geocode(ctx, &gmaps.GeocodingRequest{Address: c.cfg.Warmup, Region: c.cfg.Region}); err != nil {
			c.logger.Warn("Maps warmup failed", "err", err)
			return nil, fmt.Errorf("warmup: %w", err)
		}
	}
	c.logger.Debug("Maps client ready", "region", c.cfg.Region)
	return client, nil
}

// Ready reports whether initialisation has finished.
func (c *Client) Ready() bool { return c.ready.resolved() }

// Resolve geocodes text and returns the best formatted address.
func (c *Client) Resolve(ctx context.Context, text string) (string, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false, nil
	}
	client, err := c.ready.wait(ctx, c.cfg.ReadyTimeout)
	if err != nil {
		return "", false, err
	}

	results, err := client.Geocode(ctx, &gmaps.GeocodingRequest{
		Address:  text,
		Region:   c.cfg.Region,
		Language: c.cfg.Language,
	})
	if err != nil {
		return "", false, fmt.Errorf("geocode: %w", err)
	}
	if len(results) == 0 || results[0].FormattedAddress == "" {
		return "", false, nil
	}
	return results[0].FormattedAddress, true, nil
}

// Suggest returns autocomplete predictions restricted to the configured country.
func (c *Client) Suggest(ctx context.Context, text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	client, err := c.ready.wait(ctx, c.cfg.ReadyTimeout)
	if err != nil {
		return nil, err
	}

	resp, err := client.PlaceAutocomplete(ctx, &gmaps.PlaceAutocompleteRequest{
		Input:      text,
		Language:   c.cfg.Language,
		Components: map[gmaps.Component][]string{gmaps.ComponentCountry: {c.cfg.Region}},
	})
	if err != nil {
		return nil, fmt.Errorf("autocomplete: %w", err)
	}
	out := make([]string, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		out = append(out, p.Description)
	}
	return out, nil
}

// Estimate returns driving distance and duration from the pickup location to dest.
func (c *Client) Estimate(ctx context.Context, origin domain.Location, dest string) (domain.RouteMetrics, error) {
	from := originParam(origin)
	if from == "" || strings.TrimSpace(dest) == "" {
		return domain.RouteMetrics{}, fmt.Errorf("%w: incomplete route", ErrNoRoute)
	}
	client, err := c.ready.wait(ctx, c.cfg.ReadyTimeout)
	if err != nil {
		return domain.RouteMetrics{}, err
	}

	routes, _, err := client.Directions(ctx, &gmaps.DirectionsRequest{
		Origin:      from,
		Destination: dest,
		Mode:        gmaps.TravelModeDriving,
		Region:      c.cfg.Region,
		Language:    c.cfg.Language,
	})
	if err != nil {
		return domain.RouteMetrics{}, fmt.Errorf("directions: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return domain.RouteMetrics{}, ErrNoRoute
	}
	leg := routes[0].Legs[0]
	return domain.RouteMetrics{
		Distance: leg.Distance.HumanReadable,
		Duration: FormatDuration(leg.Duration),
	}, nil
}

func originParam(l domain.Location) string {
	switch l.Kind {
	case domain.LocationGPS:
		if l.Coordinates != nil {
			return l.Coordinates.String()
		}
	case domain.LocationManual:
		return strings.TrimSpace(l.Address)
	}
	return ""
}

// FormatDuration renders a travel time as "18 min" or "1 h 05 min".
func FormatDuration(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%d h %02d min", minutes/60, minutes%60)
}
