package quotechat

import (
	"context"
	"log/slog"
	"time"

	"github.com/helpcar/quotechat/internal/logging"
	"github.com/helpcar/quotechat/internal/runtime"
	"github.com/helpcar/quotechat/pkg/adapters/maps"
	"github.com/helpcar/quotechat/pkg/adapters/memory"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/helpcar/quotechat/pkg/locale"
	"github.com/helpcar/quotechat/pkg/observability"
	"github.com/helpcar/quotechat/pkg/ports"
	"github.com/helpcar/quotechat/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// Version is set at build time with -ldflags "-X github.com/helpcar/quotechat.Version=...".
var Version = "0.1.0-dev"

// Engine wires the locale bundle, the session manager and the optional maps client.
type Engine struct {
	Bundle   *locale.Bundle
	Sessions *session.Manager
	// Maps is nil when no API key is configured.
	Maps    *maps.Client
	Metrics *observability.Metrics

	locales *locale.DirSource
	logger  *slog.Logger
}

type settings struct {
	store       ports.SessionStore
	locker      ports.DistributedLocker
	logger      *slog.Logger
	language    string
	localesDir  string
	link        runtime.Link
	pacing      *session.Pacing
	geoTimeout  time.Duration
	maps        *maps.Config
	registerer  prometheus.Registerer
	hooks       []domain.LifecycleHooks
	sessionOpts []session.Option
}

// Option configures an Engine.
type Option func(*settings)

// WithStore persists session records. Defaults to an in-memory store.
func WithStore(store ports.SessionStore) Option {
	return func(s *settings) { s.store = store }
}

// WithLocker serializes access to a session across processes.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *settings) { s.locker = locker }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithLanguage sets the fallback language.
func WithLanguage(lang string) Option {
	return func(s *settings) { s.language = lang }
}

// WithLocalesDir overlays the embedded catalogs with the files of dir.
func WithLocalesDir(dir string) Option {
	return func(s *settings) { s.localesDir = dir }
}

// WithPhone sets the number the composed message is sent to.
func WithPhone(phone string) Option {
	return func(s *settings) { s.link.Phone = phone }
}

// WithLinkBase overrides the messaging deep-link base.
func WithLinkBase(base string) Option {
	return func(s *settings) { s.link.Base = base }
}

func WithPacing(p session.Pacing) Option {
	return func(s *settings) { s.pacing = &p }
}

func WithGeolocationTimeout(d time.Duration) Option {
	return func(s *settings) { s.geoTimeout = d }
}

// WithMaps enables address resolution and route metrics. An empty API key leaves them off.
func WithMaps(cfg maps.Config) Option {
	return func(s *settings) { s.maps = &cfg }
}

// WithMetrics registers the session collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *settings) { s.registerer = reg }
}

// WithLifecycleHooks adds hooks called for every session event.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(s *settings) { s.hooks = append(s.hooks, h) }
}

// WithSessionOptions passes extra options to every session (clock, locator...).
func WithSessionOptions(opts ...session.Option) Option {
	return func(s *settings) { s.sessionOpts = append(s.sessionOpts, opts...) }
}

// New builds an Engine. Locale directory problems are logged and never fatal: the
// embedded catalogs stay in use.
func New(opts ...Option) (*Engine, error) {
	cfg := settings{
		logger:   logging.NewNop(),
		language: locale.DefaultLanguage,
		link:     runtime.Link{Base: runtime.DefaultLinkBase, Phone: runtime.DefaultPhone},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.store == nil {
		cfg.store = memory.NewStore()
	}

	bundle, err := locale.NewBundle(locale.WithLogger(cfg.logger), locale.WithFallback(cfg.language))
	if err != nil {
		return nil, err
	}
	e := &Engine{Bundle: bundle, logger: cfg.logger}

	if cfg.localesDir != "" {
		src, err := locale.OpenDir(cfg.localesDir)
		if err != nil {
			cfg.logger.Warn("Locale directory unavailable, using embedded defaults", "dir", cfg.localesDir, "error", err)
		} else {
			e.locales = src
			locale.Load(context.Background(), bundle, src, cfg.logger)
		}
	}

	hooks := []domain.LifecycleHooks{observability.Logging(cfg.logger)}
	if cfg.registerer != nil {
		e.Metrics = observability.NewMetrics(cfg.registerer)
		hooks = append(hooks, e.Metrics.Hooks())
	}
	hooks = append(hooks, cfg.hooks...)

	sessionOpts := []session.Option{
		session.WithLink(cfg.link),
		session.WithLogger(cfg.logger),
		session.WithLifecycleHooks(observability.Combine(hooks...)),
	}
	if cfg.pacing != nil {
		sessionOpts = append(sessionOpts, session.WithPacing(*cfg.pacing))
	}
	if cfg.geoTimeout > 0 {
		sessionOpts = append(sessionOpts, session.WithGeolocationTimeout(cfg.geoTimeout))
	}
	if cfg.maps != nil && cfg.maps.APIKey != "" {
		e.Maps = maps.New(*cfg.maps, maps.WithLogger(cfg.logger))
		sessionOpts = append(sessionOpts,
			session.WithAddressResolver(e.Maps),
			session.WithRouteEstimator(e.Maps),
		)
	}
	sessionOpts = append(sessionOpts, cfg.sessionOpts...)

	managerOpts := []session.ManagerOption{
		session.WithManagerLogger(cfg.logger),
		session.WithSessionOptions(sessionOpts...),
	}
	if cfg.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(cfg.locker))
	}
	e.Sessions = session.NewManager(cfg.store, e.translator, managerOpts...)
	return e, nil
}

func (e *Engine) translator(lang string) ports.Translator {
	return e.Bundle.Translator(lang)
}

// AddressResolver returns the maps client as a resolver, or nil when maps are off.
func (e *Engine) AddressResolver() ports.AddressResolver {
	if e.Maps == nil {
		return nil
	}
	return e.Maps
}

// WatchLocales reloads catalogs when files in the locales directory change, until ctx
// is done. It is a no-op without a locales directory.
func (e *Engine) WatchLocales(ctx context.Context) error {
	if e.locales == nil {
		return nil
	}
	return locale.Reload(ctx, e.Bundle, e.locales, e.logger)
}

// Close stops every pacing timer. Session records stay in the store.
func (e *Engine) Close() {
	e.Sessions.Shutdown()
}
