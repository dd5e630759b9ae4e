package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/helpcar/quotechat/pkg/locale"
	"github.com/stretchr/testify/require"
)

// WriteFiles seeds dir with the given name->content files.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// SetupLocaleRepo initializes a writable loam repository in a temp dir, seeds it with
// catalog files and returns the dir and a catalog source reading from it.
func SetupLocaleRepo(t *testing.T, catalogs map[string]string, opts ...loam.Option) (string, *locale.DirSource) {
	t.Helper()

	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err)

	repo, err := loam.Init(dir, opts...)
	require.NoError(t, err, "Failed to init loam repo")
	WriteFiles(t, dir, catalogs)

	return dir, &locale.DirSource{Repo: loam.NewTypedRepository[locale.Catalog](repo)}
}
