package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/helpcar/quotechat"
	"github.com/helpcar/quotechat/internal/config"
	"github.com/helpcar/quotechat/pkg/adapters/memory"
	redisstore "github.com/helpcar/quotechat/pkg/adapters/redis"
	"github.com/helpcar/quotechat/pkg/persistence/middleware"
	"github.com/helpcar/quotechat/pkg/ports"
	"github.com/helpcar/quotechat/pkg/session"
)

// NewEngine builds an engine from cfg. With redis.addr set, sessions are stored in
// redis and serialized with a redis lock; with store.encryption_key set, records are
// sealed before they reach the store. The returned cleanup stops every session timer
// and closes the redis connection.
func NewEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger, extra ...quotechat.Option) (*quotechat.Engine, func(), error) {
	opts := []quotechat.Option{
		quotechat.WithLogger(logger),
		quotechat.WithLanguage(cfg.Language),
		quotechat.WithLocalesDir(cfg.LocalesDir),
		quotechat.WithPhone(cfg.Phone),
		quotechat.WithLinkBase(cfg.LinkBase),
		quotechat.WithPacing(cfg.Pacing),
		quotechat.WithGeolocationTimeout(cfg.GeolocationTimeout),
		quotechat.WithMaps(cfg.Maps),
	}

	var sessions ports.SessionStore = memory.NewStore(memory.WithTTL(cfg.Store.TTL))
	var store *redisstore.Store
	if cfg.Redis.Addr != "" {
		store = redisstore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisstore.WithTTL(cfg.Redis.TTL),
			redisstore.WithPrefix(cfg.Redis.Prefix),
		)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("redis unavailable at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("Using redis session store", "addr", cfg.Redis.Addr, "prefix", store.Prefix())
		sessions = store
		opts = append(opts, quotechat.WithLocker(redisstore.NewLocker(store.Client(), store.Prefix())))
	}

	enc, encrypted, err := cfg.Store.Encryption()
	if err == nil && encrypted {
		var seal middleware.Middleware
		if seal, err = middleware.NewEncryptionMiddleware(enc); err == nil {
			sessions = seal(sessions)
			logger.Debug("Session records encrypted at rest", "fallback_keys", len(enc.FallbackKeys))
		}
	}
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, nil, fmt.Errorf("invalid store encryption: %w", err)
	}
	opts = append(opts, quotechat.WithStore(sessions))

	engine, err := quotechat.New(append(opts, extra...)...)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, nil, fmt.Errorf("error initializing engine: %w", err)
	}
	if engine.Maps != nil {
		logger.Debug("Maps enabled", "region", cfg.Maps.Region)
	}

	cleanup := func() {
		engine.Close()
		if store != nil {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close redis store", "err", err)
			}
		}
	}
	return engine, cleanup, nil
}

// Reconfigure pushes reloaded pacing and geolocation settings to sessions created or
// restored from now on.
func Reconfigure(engine *quotechat.Engine, cfg *config.Config) {
	engine.Sessions.Reconfigure(
		session.WithPacing(cfg.Pacing),
		session.WithGeolocationTimeout(cfg.GeolocationTimeout),
	)
}
