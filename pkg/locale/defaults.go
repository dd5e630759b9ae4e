package locale

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLanguage is used when nothing better can be negotiated.
const DefaultLanguage = "fr"

//go:embed defaults/*.yaml
var defaultFS embed.FS

// DefaultCatalogs decodes the embedded catalogs, keyed by language.
func DefaultCatalogs() (map[string]*Catalog, error) {
	entries, err := defaultFS.ReadDir("defaults")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Catalog, len(entries))
	for _, e := range entries {
		data, err := defaultFS.ReadFile(path.Join("defaults", e.Name()))
		if err != nil {
			return nil, err
		}
		cat, err := ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("embedded catalog %s: %w", e.Name(), err)
		}
		if cat.Language == "" {
			cat.Language = strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		}
		out[cat.Language] = cat
	}
	return out, nil
}

// ParseYAML decodes a YAML (or JSON, which is valid YAML) resource into a Catalog.
func ParseYAML(data []byte) (*Catalog, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return Decode(raw)
}
