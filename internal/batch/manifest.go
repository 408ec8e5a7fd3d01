// Package batch runs the comparisons listed in a YAML manifest concurrently.
package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/cmpds-cli/internal/dataset"
)

// Comparison is one manifest entry.
type Comparison struct {
	Name     string `yaml:"name"`
	Dataset1 string `yaml:"dataset1"`
	// Dataset2 defaults to Dataset1, comparing two columns of one file.
	Dataset2 string `yaml:"dataset2,omitempty"`
	// Cols holds the 1-based columns of each dataset; one entry applies to both.
	Cols       []int   `yaml:"cols,omitempty"`
	Confidence float64 `yaml:"confidence,omitempty"`
	Sheet      string  `yaml:"sheet,omitempty"`
}

// Columns returns the column of dataset-1 and dataset-2.
func (c Comparison) Columns() (int, int) {
	switch len(c.Cols) {
	case 0:
		return 1, 1
	case 1:
		return c.Cols[0], c.Cols[0]
	default:
		return c.Cols[0], c.Cols[1]
	}
}

// Manifest lists comparisons in the order their results are reported.
type Manifest struct {
	Comparisons []Comparison `yaml:"comparisons"`
}

// LoadManifest reads a manifest file. Relative dataset paths are resolved
// against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(b, filepath.Dir(path))
}

// ParseManifest decodes and validates a manifest. Unnamed entries are named
// after their position.
func ParseManifest(b []byte, baseDir string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Comparisons) == 0 {
		return nil, fmt.Errorf("manifest has no comparisons")
	}
	seen := make(map[string]struct{}, len(m.Comparisons))
	for i := range m.Comparisons {
		c := &m.Comparisons[i]
		if c.Name == "" {
			c.Name = fmt.Sprintf("comparison-%d", i+1)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("duplicate comparison name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
		if c.Dataset1 == "" {
			return nil, fmt.Errorf("%s: dataset1 is required", c.Name)
		}
		if c.Dataset2 == "" {
			c.Dataset2 = c.Dataset1
		}
		if len(c.Cols) > 2 {
			return nil, fmt.Errorf("%s: cols takes at most two columns, got %d", c.Name, len(c.Cols))
		}
		for _, col := range c.Cols {
			if col < 1 {
				return nil, fmt.Errorf("%s: %w (got %d)", c.Name, dataset.ErrBadColumn, col)
			}
		}
		if c.Confidence != 0 && !(c.Confidence > 0 && c.Confidence < 1) {
			return nil, fmt.Errorf("%s: confidence %v must be strictly between 0 and 1", c.Name, c.Confidence)
		}
		c.Dataset1 = resolve(baseDir, c.Dataset1)
		c.Dataset2 = resolve(baseDir, c.Dataset2)
	}
	return &m, nil
}

func resolve(base, p string) string {
	if p == dataset.Stdin || filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}
