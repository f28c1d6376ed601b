package questionset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source is one allow-listed question file.
type Source struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	Path  string `yaml:"path" json:"-"`
}

// Catalog is the fixed allow-list of sources a session may pick from.
type Catalog struct {
	sources []Source
}

// DefaultSourceIDs are the two question sets shipped with the exam.
var DefaultSourceIDs = []string{"q1.csv", "q2.csv"}

// NewCatalog builds a catalog. Sources without a Path resolve to dir/ID.
func NewCatalog(dir string, sources []Source) (*Catalog, error) {
	seen := map[string]bool{}
	out := make([]Source, 0, len(sources))
	for _, s := range sources {
		s.ID = strings.TrimSpace(s.ID)
		if s.ID == "" {
			return nil, fmt.Errorf("catalog: source id is required")
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("catalog: duplicate source id %s", s.ID)
		}
		seen[s.ID] = true
		if s.Path == "" {
			s.Path = s.ID
		}
		if !filepath.IsAbs(s.Path) {
			s.Path = filepath.Join(dir, s.Path)
		}
		if s.Title == "" {
			s.Title = s.ID
		}
		out = append(out, s)
	}
	return &Catalog{sources: out}, nil
}

// DefaultCatalog allow-lists q1.csv and q2.csv under dir.
func DefaultCatalog(dir string) *Catalog {
	srcs := make([]Source, 0, len(DefaultSourceIDs))
	for _, id := range DefaultSourceIDs {
		srcs = append(srcs, Source{ID: id})
	}
	c, _ := NewCatalog(dir, srcs)
	return c
}

type catalogFile struct {
	Sources []Source `yaml:"sources"`
}

// ReadCatalog parses a YAML catalog:
//
//	sources:
//	  - id: q1.csv
//	    title: Specific tables
//	    path: data/q1.csv
//
// Relative paths resolve against dir.
func ReadCatalog(dir string, r io.Reader) (*Catalog, error) {
	var cf catalogFile
	if err := yaml.NewDecoder(r).Decode(&cf); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if len(cf.Sources) == 0 {
		return nil, fmt.Errorf("catalog: no sources listed")
	}
	return NewCatalog(dir, cf.Sources)
}

// OpenCatalog reads a YAML catalog file; relative paths resolve against the file's directory.
func OpenCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	defer f.Close()
	return ReadCatalog(filepath.Dir(path), f)
}

// Lookup returns the allow-listed source with the given id.
func (c *Catalog) Lookup(id string) (Source, bool) {
	for _, s := range c.sources {
		if s.ID == id {
			return s, true
		}
	}
	return Source{}, false
}

// Available returns the allow-listed sources whose files exist, in catalog order.
func (c *Catalog) Available() ([]Source, error) {
	out := make([]Source, 0, len(c.sources))
	for _, s := range c.sources {
		if fi, err := os.Stat(s.Path); err == nil && !fi.IsDir() {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoSources
	}
	return out, nil
}
