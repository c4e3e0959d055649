package models

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Reading modes a magazine can be opened in
const (
	ModeFlipbook = "flipbook"
	ModePDF      = "pdf"
)

// PageCount is the number of pages of an issue. Catalog files may carry it
// either as a number or as a label such as "40 pages".
type PageCount int

// UnmarshalYAML accepts both forms
func (p *PageCount) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: pages must be a scalar", value.Line)
	}
	n, err := ParsePageCount(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*p = PageCount(n)
	return nil
}

// String renders the count the way the catalog labels it
func (p PageCount) String() string {
	if p == 1 {
		return "1 page"
	}
	return fmt.Sprintf("%d pages", int(p))
}

// ParsePageCount parses "40" or "40 pages"
func ParsePageCount(s string) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimSuffix(s, "pages")
	s = strings.TrimSuffix(s, "page")
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid page count %q", s)
	}
	return n, nil
}

// TeamMember is a member of the editorial team of an issue
type TeamMember struct {
	ID     int    `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Role   string `yaml:"role" json:"role"`
	Avatar string `yaml:"avatar,omitempty" json:"avatar,omitempty"`
}

// Visionary is a featured faculty coordinator or guest
type Visionary struct {
	Name   string `yaml:"name" json:"name"`
	Title  string `yaml:"title" json:"title"`
	Avatar string `yaml:"avatar,omitempty" json:"avatar,omitempty"`
}

// KeyArticle is a highlighted article of an issue
type KeyArticle struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

// Magazine represents a single issue in the catalog
type Magazine struct {
	ID           string    `yaml:"id" json:"id"`
	Title        string    `yaml:"title" json:"title"`
	Subtitle     string    `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Description  string    `yaml:"description,omitempty" json:"description,omitempty"`
	File         string    `yaml:"file" json:"file"`
	PagesDir     string    `yaml:"pages_dir,omitempty" json:"pages_dir,omitempty"`
	Cover        string    `yaml:"cover,omitempty" json:"cover,omitempty"`
	Pages        PageCount `yaml:"pages" json:"pages"`
	ReleaseDate  string    `yaml:"release_date,omitempty" json:"release_date,omitempty"`
	Featured     bool      `yaml:"featured,omitempty" json:"featured,omitempty"`
	Category     string    `yaml:"category,omitempty" json:"category,omitempty"`
	Language     string    `yaml:"language,omitempty" json:"language,omitempty"`
	Publisher    string    `yaml:"publisher,omitempty" json:"publisher,omitempty"`
	ISSN         string    `yaml:"issn,omitempty" json:"issn,omitempty"`
	ReadTime     string    `yaml:"read_time,omitempty" json:"read_time,omitempty"`
	DownloadSize string    `yaml:"download_size,omitempty" json:"download_size,omitempty"`

	TableOfContents     []string     `yaml:"table_of_contents,omitempty" json:"table_of_contents,omitempty"`
	Topics              []string     `yaml:"topics,omitempty" json:"topics,omitempty"`
	Highlights          []string     `yaml:"highlights,omitempty" json:"highlights,omitempty"`
	KeyArticles         []KeyArticle `yaml:"key_articles,omitempty" json:"key_articles,omitempty"`
	FeaturedVisionaries []Visionary  `yaml:"featured_visionaries,omitempty" json:"featured_visionaries,omitempty"`
	Team                []TeamMember `yaml:"team,omitempty" json:"team,omitempty"`
}

// TotalPages returns the page count as a plain int
func (m *Magazine) TotalPages() int {
	return int(m.Pages)
}

// HasPageImages returns true if the issue ships pre-rendered page images
func (m *Magazine) HasPageImages() bool {
	return m.PagesDir != ""
}

// Validate checks the fields every view relies on
func (m *Magazine) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return &ValidationError{Field: "id", Message: "id is required"}
	}
	if strings.TrimSpace(m.Title) == "" {
		return &ValidationError{ID: m.ID, Field: "title", Message: "title is required"}
	}
	if m.Pages <= 0 {
		return &ValidationError{ID: m.ID, Field: "pages", Message: "page count must be positive"}
	}
	if m.File == "" && m.PagesDir == "" {
		return &ValidationError{ID: m.ID, Field: "file", Message: "either file or pages_dir is required"}
	}
	for i, member := range m.Team {
		if strings.TrimSpace(member.Name) == "" {
			return &ValidationError{ID: m.ID, Field: fmt.Sprintf("team[%d].name", i), Message: "name is required"}
		}
	}
	for i, v := range m.FeaturedVisionaries {
		if strings.TrimSpace(v.Name) == "" {
			return &ValidationError{ID: m.ID, Field: fmt.Sprintf("featured_visionaries[%d].name", i), Message: "name is required"}
		}
	}
	return nil
}

// ValidationError describes an invalid catalog record
type ValidationError struct {
	ID      string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("magazine %s: %s: %s", e.ID, e.Field, e.Message)
}

// CatalogFile is the on-disk layout of a catalog
type CatalogFile struct {
	DefaultID string     `yaml:"default_id,omitempty"`
	Magazines []Magazine `yaml:"magazines"`
}

// PageManifest describes a remote directory of page images
type PageManifest struct {
	PageCount int    `json:"page_count"`
	Extension string `json:"extension,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

// ErrorResponse is the body an asset host may send with an error status
type ErrorResponse struct {
	Error string `json:"error"`
}
