package locale

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/helpcar/quotechat/internal/logging"
)

// Source provides external catalogs.
type Source interface {
	Load(ctx context.Context) ([]*Catalog, error)
}

// DirSource reads catalogs from a directory of YAML or JSON files, one file per language
// (fr.yaml, en.json...). The language is taken from the "language" key, or the file name.
type DirSource struct {
	Repo *loam.TypedRepository[Catalog]
}

// OpenDir opens a read-only catalog directory.
func OpenDir(dir string) (*DirSource, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve locale dir: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open locale dir %s: %w", absPath, err)
	}
	return &DirSource{Repo: loam.NewTypedRepository[Catalog](repo)}, nil
}

// Load returns every catalog found in the directory.
func (s *DirSource) Load(ctx context.Context) ([]*Catalog, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}
	out := make([]*Catalog, 0, len(docs))
	for _, doc := range docs {
		cat := doc.Data
		if cat.Language == "" {
			cat.Language = trimExtension(doc.ID)
		}
		out = append(out, &cat)
	}
	return out, nil
}

// Watch emits the ID of every changed catalog file until ctx is done.
func (s *DirSource) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func trimExtension(id string) string {
	base := filepath.Base(filepath.ToSlash(id))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load applies every catalog of src to the bundle. A source failure leaves the embedded
// defaults in place and is only logged; it is never fatal.
func Load(ctx context.Context, b *Bundle, src Source, logger *slog.Logger) int {
	if logger == nil {
		logger = logging.NewNop()
	}
	cats, err := src.Load(ctx)
	if err != nil {
		logger.Warn("Locale resources unavailable, using embedded defaults", "error", err)
		return 0
	}
	applied := 0
	for _, cat := range cats {
		err := b.Apply(cat)
		var verr *ValidationError
		if err != nil && !errors.As(err, &verr) {
			logger.Warn("Locale catalog rejected", "lang", cat.Language, "error", err)
			continue
		}
		applied++
	}
	logger.Debug("Locale catalogs loaded", "count", applied)
	return applied
}

// Watcher is a Source that can report changes.
type Watcher interface {
	Source
	Watch(ctx context.Context) (<-chan string, error)
}

// Reload keeps the bundle in sync with a watched source until ctx is done.
func Reload(ctx context.Context, b *Bundle, src Watcher, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	changes, err := src.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for id := range changes {
			logger.Info("Locale resource changed, reloading", "file", id)
			Load(ctx, b, src, logger)
		}
	}()
	return nil
}
