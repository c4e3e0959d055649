// Package catalog provides read-only lookups over the magazine catalog
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/justyntemme/brahmand-t/pkg/models"
)

//go:embed default.yaml
var defaultCatalog []byte

// FallbackID is used when the catalog file names no default issue
const FallbackID = "1"

// Catalog is an immutable snapshot of the magazine records
type Catalog struct {
	magazines []models.Magazine
	byID      map[string]int
	defaultID string
}

// Default returns the catalog compiled into the binary
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads and validates a catalog file. An empty path loads the built-in
// catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog. Every invalid record is reported, not only
// the first one.
func Parse(data []byte) (*Catalog, error) {
	var file models.CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(file.Magazines, file.DefaultID)
}

// New builds a catalog from records
func New(magazines []models.Magazine, defaultID string) (*Catalog, error) {
	c := &Catalog{
		magazines: make([]models.Magazine, 0, len(magazines)),
		byID:      make(map[string]int, len(magazines)),
	}

	var errs error
	for i := range magazines {
		m := magazines[i]
		m.ID = strings.TrimSpace(m.ID)
		if err := m.Validate(); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if _, dup := c.byID[m.ID]; dup {
			errs = multierr.Append(errs, &models.ValidationError{ID: m.ID, Field: "id", Message: "duplicate id"})
			continue
		}
		c.byID[m.ID] = len(c.magazines)
		c.magazines = append(c.magazines, m)
	}
	if errs != nil {
		return nil, errs
	}
	if len(c.magazines) == 0 {
		return nil, fmt.Errorf("catalog has no magazines")
	}

	switch {
	case defaultID != "":
		if _, ok := c.byID[defaultID]; !ok {
			return nil, fmt.Errorf("default issue %q is not in the catalog", defaultID)
		}
		c.defaultID = defaultID
	case c.IsValidID(FallbackID):
		c.defaultID = FallbackID
	default:
		c.defaultID = c.magazines[0].ID
	}
	return c, nil
}

// GetByID returns the magazine with id
func (c *Catalog) GetByID(id string) (models.Magazine, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Magazine{}, false
	}
	return c.magazines[i], true
}

// IsValidID reports whether id names a magazine
func (c *Catalog) IsValidID(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Resolve returns the magazine with id, falling back to the default issue for
// unknown ids. The second result is false when the fallback was used.
func (c *Catalog) Resolve(id string) (models.Magazine, bool) {
	if m, ok := c.GetByID(id); ok {
		return m, true
	}
	m, _ := c.GetByID(c.defaultID)
	return m, false
}

// AllIDs returns the ids in natural order ("2" before "10")
func (c *Catalog) AllIDs() []string {
	ids := make([]string, 0, len(c.magazines))
	for _, m := range c.magazines {
		ids = append(ids, m.ID)
	}
	sort.Sort(natural.StringSlice(ids))
	return ids
}

// All returns the magazines in catalog order
func (c *Catalog) All() []models.Magazine {
	out := make([]models.Magazine, len(c.magazines))
	copy(out, c.magazines)
	return out
}

// Newest returns the magazines latest issue first
func (c *Catalog) Newest() []models.Magazine {
	ids := c.AllIDs()
	out := make([]models.Magazine, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, c.magazines[c.byID[ids[i]]])
	}
	return out
}

// Featured returns the magazines flagged as featured
func (c *Catalog) Featured() []models.Magazine {
	var out []models.Magazine
	for _, m := range c.magazines {
		if m.Featured {
			out = append(out, m)
		}
	}
	return out
}

// Latest returns the issue with the highest id
func (c *Catalog) Latest() models.Magazine {
	ids := c.AllIDs()
	return c.magazines[c.byID[ids[len(ids)-1]]]
}

// Count returns the number of magazines
func (c *Catalog) Count() int { return len(c.magazines) }

// DefaultID returns the issue shown for unknown ids
func (c *Catalog) DefaultID() string { return c.defaultID }

// Categories returns the distinct categories in catalog order
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range c.magazines {
		if m.Category == "" || seen[m.Category] {
			continue
		}
		seen[m.Category] = true
		out = append(out, m.Category)
	}
	return out
}

// Filter selects magazines for the home list
type Filter struct {
	Query        string
	Category     string
	FeaturedOnly bool
}

// Search returns the magazines matching f, latest issue first. The query is
// matched case-insensitively against title, subtitle, description and topics.
func (c *Catalog) Search(f Filter) []models.Magazine {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	var out []models.Magazine
	for _, m := range c.Newest() {
		if f.FeaturedOnly && !m.Featured {
			continue
		}
		if f.Category != "" && m.Category != f.Category {
			continue
		}
		if q != "" && !matches(m, q) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func matches(m models.Magazine, q string) bool {
	fields := []string{m.Title, m.Subtitle, m.Description, m.Category}
	fields = append(fields, m.Topics...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
