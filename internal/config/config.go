// Package config loads quotechat settings from defaults, an optional YAML file and
// QUOTECHAT_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/helpcar/quotechat/internal/logging"
	"github.com/helpcar/quotechat/internal/runtime"
	"github.com/helpcar/quotechat/pkg/adapters/maps"
	redisstore "github.com/helpcar/quotechat/pkg/adapters/redis"
	"github.com/helpcar/quotechat/pkg/locale"
	"github.com/helpcar/quotechat/pkg/persistence/middleware"
	"github.com/helpcar/quotechat/pkg/session"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable; nested keys use underscores
// (QUOTECHAT_PACING_ANSWER, QUOTECHAT_MAPS_API_KEY).
const EnvPrefix = "QUOTECHAT"

// FileName is the config file looked up in the working directory when no path is given.
const FileName = "quotechat"

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type RedisConfig struct {
	// Addr enables the redis store and locker when set.
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	Prefix   string        `mapstructure:"prefix"`
}

type StoreConfig struct {
	// TTL expires in-memory records after their last save; zero keeps them.
	TTL time.Duration `mapstructure:"ttl"`
	// EncryptionKey is a base64 AES-256 key. When set, records are sealed at rest.
	EncryptionKey string `mapstructure:"encryption_key"`
	// FallbackKeys still decrypt records sealed before a key rotation.
	FallbackKeys []string `mapstructure:"fallback_keys"`
}

// Encryption parses the keys. ok is false when encryption is off.
func (s StoreConfig) Encryption() (cfg middleware.EncryptionConfig, ok bool, err error) {
	if s.EncryptionKey == "" {
		return cfg, false, nil
	}
	cfg, err = middleware.ParseKeys(s.EncryptionKey, s.FallbackKeys...)
	return cfg, err == nil, err
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type MCPConfig struct {
	// Port serves MCP over SSE when non-zero; stdio otherwise.
	Port   int           `mapstructure:"port"`
	Settle time.Duration `mapstructure:"settle"`
}

// Config is the full application configuration.
type Config struct {
	Phone              string         `mapstructure:"phone"`
	LinkBase           string         `mapstructure:"link_base"`
	Language           string         `mapstructure:"language"`
	LocalesDir         string         `mapstructure:"locales_dir"`
	LogLevel           string         `mapstructure:"log_level"`
	LogJSON            bool           `mapstructure:"log_json"`
	Pacing             session.Pacing `mapstructure:"pacing"`
	GeolocationTimeout time.Duration  `mapstructure:"geolocation_timeout"`
	Maps               maps.Config    `mapstructure:"maps"`
	HTTP               HTTPConfig     `mapstructure:"http"`
	Redis              RedisConfig    `mapstructure:"redis"`
	Store              StoreConfig    `mapstructure:"store"`
	Telegram           TelegramConfig `mapstructure:"telegram"`
	MCP                MCPConfig      `mapstructure:"mcp"`
}

// Level returns the parsed log level.
func (c *Config) Level() slog.Level {
	return logging.ParseLevel(c.LogLevel)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	for name, d := range map[string]time.Duration{
		"pacing.initial": c.Pacing.Initial,
		"pacing.answer":  c.Pacing.Answer,
		"pacing.summary": c.Pacing.Summary,
		"redis.ttl":      c.Redis.TTL,
		"store.ttl":      c.Store.TTL,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s: must not be negative, got %s", name, d))
		}
	}
	if c.GeolocationTimeout <= 0 {
		errs = append(errs, fmt.Errorf("geolocation_timeout: must be positive, got %s", c.GeolocationTimeout))
	}
	if c.Redis.DB < 0 {
		errs = append(errs, fmt.Errorf("redis.db: must not be negative, got %d", c.Redis.DB))
	}
	if c.Language == "" {
		errs = append(errs, errors.New("language: must not be empty"))
	}
	if _, _, err := c.Store.Encryption(); err != nil {
		errs = append(errs, fmt.Errorf("store.encryption_key: %w", err))
	}
	return errors.Join(errs...)
}

// Loader owns the viper instance behind a Config.
type Loader struct {
	v      *viper.Viper
	logger *slog.Logger
}

type Option func(*Loader)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// Load reads path, or ./quotechat.{yaml,yml,json} when path is empty. A missing file is
// only an error when path was given explicitly.
func Load(path string, opts ...Option) (*Loader, error) {
	l := &Loader{v: viper.New(), logger: logging.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	setDefaults(l.v)
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if path != "" {
		l.v.SetConfigFile(path)
	} else {
		l.v.SetConfigName(FileName)
		l.v.AddConfigPath(".")
	}
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	if used := l.v.ConfigFileUsed(); used != "" {
		l.logger.Debug("Config file loaded", "path", used)
	}
	return l, nil
}

func setDefaults(v *viper.Viper) {
	pacing := session.DefaultPacing()
	v.SetDefault("phone", runtime.DefaultPhone)
	v.SetDefault("link_base", runtime.DefaultLinkBase)
	v.SetDefault("language", locale.DefaultLanguage)
	v.SetDefault("locales_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("pacing.initial", pacing.Initial)
	v.SetDefault("pacing.answer", pacing.Answer)
	v.SetDefault("pacing.summary", pacing.Summary)
	v.SetDefault("geolocation_timeout", session.DefaultGeolocationTimeout)
	v.SetDefault("maps.api_key", "")
	v.SetDefault("maps.region", maps.DefaultRegion)
	v.SetDefault("maps.language", "")
	v.SetDefault("maps.ready_timeout", maps.DefaultReadyTimeout)
	v.SetDefault("maps.base_url", "")
	v.SetDefault("maps.warmup", "")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)
	v.SetDefault("redis.prefix", redisstore.DefaultPrefix)
	v.SetDefault("store.ttl", 2*time.Hour)
	v.SetDefault("store.encryption_key", "")
	v.SetDefault("store.fallback_keys", []string{})
	v.SetDefault("telegram.token", "")
	v.SetDefault("mcp.port", 0)
	v.SetDefault("mcp.settle", 10*time.Second)
}

// UseLogger replaces the logger, typically with the one built from the loaded settings.
// Call it before Watch.
func (l *Loader) UseLogger(logger *slog.Logger) {
	l.logger = logger
}

// BindFlag lets a command line flag override key when the flag was set.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("config: no flag for %q", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Config decodes and validates the current settings.
func (l *Loader) Config() (*Config, error) {
	var c Config
	if err := l.v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}

// File returns the config file in use, or "" when running on defaults and env.
func (l *Loader) File() string {
	return l.v.ConfigFileUsed()
}

// Watch calls onChange with the new settings whenever the config file changes.
// Invalid edits are logged and skipped. It is a no-op without a config file.
func (l *Loader) Watch(onChange func(*Config)) {
	if l.File() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		c, err := l.Config()
		if err != nil {
			l.logger.Warn("Ignoring config change", "path", e.Name, "err", err)
			return
		}
		l.logger.Info("Config reloaded", "path", e.Name, "op", e.Op.String())
		onChange(c)
	})
	l.v.WatchConfig()
}
