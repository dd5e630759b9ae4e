package locale

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/helpcar/quotechat/internal/logging"
	"github.com/helpcar/quotechat/pkg/ports"
)

// ErrUnknownLanguage is returned when a language has no catalog.
var ErrUnknownLanguage = errors.New("unknown language")

// Bundle holds the flattened catalogs of every language. It starts from the embedded
// defaults; external catalogs are overlaid with Apply and fall back key by key.
type Bundle struct {
	mu       sync.RWMutex
	defaults map[string]map[string]string
	entries  map[string]map[string]string
	fallback string
	logger   *slog.Logger
}

// Option configures a Bundle.
type Option func(*Bundle)

// WithLogger sets the logger used to report degraded catalogs.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bundle) { b.logger = logger }
}

// WithFallback sets the language used for unknown languages and missing keys.
func WithFallback(lang string) Option {
	return func(b *Bundle) { b.fallback = lang }
}

// NewBundle creates a bundle preloaded with the embedded catalogs.
func NewBundle(opts ...Option) (*Bundle, error) {
	b := &Bundle{
		defaults: make(map[string]map[string]string),
		entries:  make(map[string]map[string]string),
		fallback: DefaultLanguage,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	cats, err := DefaultCatalogs()
	if err != nil {
		return nil, err
	}
	for lang, cat := range cats {
		if err := cat.Validate(); err != nil {
			return nil, fmt.Errorf("embedded catalog: %w", err)
		}
		b.defaults[lang] = cat.Entries()
		b.entries[lang] = cat.Entries()
	}
	if _, ok := b.entries[b.fallback]; !ok {
		return nil, fmt.Errorf("%w: fallback %q", ErrUnknownLanguage, b.fallback)
	}
	return b, nil
}

// Apply overlays an external catalog. Missing keys keep the embedded text for that
// language (or the fallback language); the validation problems are returned so callers
// can log them, but the catalog is applied regardless.
func (b *Bundle) Apply(cat *Catalog) error {
	if cat.Language == "" {
		return fmt.Errorf("%w: catalog without language", ErrInvalidCatalog)
	}
	verr := cat.Validate()

	b.mu.Lock()
	defer b.mu.Unlock()

	base, ok := b.defaults[cat.Language]
	if !ok {
		base = b.defaults[b.fallback]
	}
	merged := make(map[string]string, len(base))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range cat.Entries() {
		if v != "" {
			merged[k] = v
		}
	}
	b.entries[cat.Language] = merged

	if verr != nil {
		b.logger.Warn("Locale catalog incomplete, using defaults for missing keys", "lang", cat.Language, "error", verr)
	}
	return verr
}

// Reset drops every applied catalog and returns to the embedded defaults.
func (b *Bundle) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = make(map[string]map[string]string, len(b.defaults))
	for lang, e := range b.defaults {
		b.entries[lang] = e
	}
}

// Languages returns the available languages, sorted.
func (b *Bundle) Languages() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.entries))
	for lang := range b.entries {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Has reports whether lang has a catalog.
func (b *Bundle) Has(lang string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.entries[lang]
	return ok
}

// Fallback returns the fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// Translator returns a translator for lang; unknown languages use the fallback.
func (b *Bundle) Translator(lang string) *Translator {
	if !b.Has(lang) {
		lang = b.fallback
	}
	return &Translator{bundle: b, lang: lang}
}

func (b *Bundle) lookup(lang, key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if v, ok := b.entries[lang][key]; ok && v != "" {
		return v
	}
	if v, ok := b.entries[b.fallback][key]; ok && v != "" {
		return v
	}
	return key
}

// Translator resolves keys for one language. Catalog reloads are visible immediately.
type Translator struct {
	bundle *Bundle
	lang   string
}

var _ ports.Translator = (*Translator)(nil)

func (t *Translator) Translate(key string) string { return t.bundle.lookup(t.lang, key) }

func (t *Translator) Language() string { return t.lang }

// MapTranslator is a fixed key->text table, handy for tests and previews.
type MapTranslator struct {
	Lang    string
	Entries map[string]string
}

func (m MapTranslator) Translate(key string) string {
	if v, ok := m.Entries[key]; ok {
		return v
	}
	return key
}

func (m MapTranslator) Language() string { return m.Lang }
