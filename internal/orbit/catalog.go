package orbit

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Catalog is an ordered list of precomputed parameter sets.
type Catalog []Params

// DefaultCatalog returns the embedded catalog. It panics only if the embedded
// file is malformed, which is a build defect.
func DefaultCatalog() Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("orbit: embedded catalog: %v", err))
	}
	return c
}

// ParseCatalog decodes a YAML list of parameter records.
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("orbit: parse catalog: %w", err)
	}
	if len(c) == 0 {
		return nil, ErrEmptyCatalog
	}
	return c, nil
}

// LoadCatalog reads a catalog file from disk.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

func (c Catalog) Len() int { return len(c) }
