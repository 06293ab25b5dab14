package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultCatalog []byte

// Source describes one configured feed endpoint.
type Source struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // rss, atom or empty
	URL  string `yaml:"url"`
}

// Fetchable reports whether the source type is one the feed fetcher handles.
func (s Source) Fetchable() bool {
	switch strings.ToLower(strings.TrimSpace(s.Type)) {
	case "", "rss", "atom":
		return true
	default:
		return false
	}
}

// Category maps a label to its trigger terms.
type Category struct {
	Label string   `yaml:"label"`
	Terms []string `yaml:"terms"`
}

// Prompt holds the LLM instructions. User is a text/template with
// {{.Items}} and {{.Categories}} placeholders.
type Prompt struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// Notability configures both classifier tiers.
type Notability struct {
	StrongTerms []string `yaml:"strong_terms"`
	FirstParty  []string `yaml:"first_party"`
	Prompt      Prompt   `yaml:"prompt"`
}

// Catalog is the externally supplied configuration data of the pipeline:
// feeds, relevance terms, category table and notability rules.
type Catalog struct {
	Sources    []Source   `yaml:"sources"`
	Keywords   []string   `yaml:"keywords"`
	Exclude    []string   `yaml:"exclude"`
	Categories []Category `yaml:"categories"`
	Notability Notability `yaml:"notability"`
}

// Default returns the catalog embedded in the binary.
func Default() (Catalog, error) {
	return Parse(defaultCatalog)
}

// DefaultYAML returns the raw embedded catalog.
func DefaultYAML() []byte {
	return bytes.Clone(defaultCatalog)
}

// Load reads a catalog file. An empty path yields the embedded default.
func Load(path string) (Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(raw)
	if err != nil {
		return Catalog{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a catalog document. Unknown keys are rejected.
func Parse(raw []byte) (Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate checks the structural requirements of a catalog.
func (c Catalog) Validate() error {
	var errs []error
	seen := map[string]struct{}{}
	for i, s := range c.Sources {
		if strings.TrimSpace(s.Name) == "" {
			errs = append(errs, fmt.Errorf("sources[%d]: name is required", i))
		}
		if strings.TrimSpace(s.URL) == "" {
			errs = append(errs, fmt.Errorf("sources[%d]: url is required", i))
		}
		if _, ok := seen[s.Name]; ok {
			errs = append(errs, fmt.Errorf("sources[%d]: duplicate name %q", i, s.Name))
		}
		seen[s.Name] = struct{}{}
	}
	if len(c.Keywords) == 0 {
		errs = append(errs, errors.New("keywords: at least one term is required"))
	}
	for i, cat := range c.Categories {
		if strings.TrimSpace(cat.Label) == "" {
			errs = append(errs, fmt.Errorf("categories[%d]: label is required", i))
		}
	}
	return errors.Join(errs...)
}

// Labels returns the configured category labels in order.
func (c Catalog) Labels() []string {
	out := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		out = append(out, cat.Label)
	}
	return out
}

// YAML renders the catalog back to YAML.
func (c Catalog) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
