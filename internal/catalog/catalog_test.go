package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/multierr"

	"github.com/justyntemme/brahmand-t/pkg/models"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	if c.Count() != 2 {
		t.Fatalf("got %d magazines, want 2", c.Count())
	}
	if got := c.DefaultID(); got != "1" {
		t.Errorf("default id %q, want 1", got)
	}
	m, ok := c.GetByID("1")
	if !ok {
		t.Fatal("issue 1 missing")
	}
	if m.TotalPages() != 40 {
		t.Errorf("issue 1 has %d pages, want 40", m.TotalPages())
	}
	if len(m.Team) != 3 || m.Team[0].Name != "Samridhi Saini" {
		t.Errorf("unexpected team %+v", m.Team)
	}
	if latest := c.Latest(); latest.ID != "2" || latest.TotalPages() != 66 {
		t.Errorf("latest %s with %d pages, want 2 with 66", latest.ID, latest.TotalPages())
	}
	featured := c.Featured()
	if len(featured) != 1 || featured[0].ID != "2" {
		t.Errorf("featured %v", featured)
	}
}

func TestLookups(t *testing.T) {
	c := Default()

	if !c.IsValidID("2") || c.IsValidID("3") || c.IsValidID("") {
		t.Error("IsValidID disagrees with catalog contents")
	}
	if _, ok := c.GetByID("missing"); ok {
		t.Error("GetByID found a missing id")
	}
	m, ok := c.Resolve("missing")
	if ok || m.ID != "1" {
		t.Errorf("Resolve(missing) = %s, %v; want default issue 1", m.ID, ok)
	}
	if m, ok := c.Resolve("2"); !ok || m.ID != "2" {
		t.Errorf("Resolve(2) = %s, %v", m.ID, ok)
	}
}

func TestAllIDsNaturalOrder(t *testing.T) {
	var mags []models.Magazine
	for _, id := range []string{"10", "2", "1"} {
		mags = append(mags, models.Magazine{ID: id, Title: "Issue " + id, Pages: 4, File: "/x.pdf"})
	}
	c, err := New(mags, "")
	if err != nil {
		t.Fatal(err)
	}
	if got := c.AllIDs(); !reflect.DeepEqual(got, []string{"1", "2", "10"}) {
		t.Errorf("got %v", got)
	}
	if got := c.Latest().ID; got != "10" {
		t.Errorf("latest %q, want 10", got)
	}
	if got := c.Newest()[0].ID; got != "10" {
		t.Errorf("newest first %q, want 10", got)
	}
}

func TestParseAcceptsNumericPages(t *testing.T) {
	c, err := Parse([]byte(`
magazines:
  - id: "7"
    title: Numeric
    file: /seven.pdf
    pages: 12
`))
	if err != nil {
		t.Fatal(err)
	}
	m, _ := c.GetByID("7")
	if m.TotalPages() != 12 {
		t.Errorf("got %d pages, want 12", m.TotalPages())
	}
	if c.DefaultID() != "7" {
		t.Errorf("default %q, want first issue", c.DefaultID())
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty id", `
magazines:
  - {id: "", title: A, file: /a.pdf, pages: 2}
`, "id is required"},
		{"duplicate id", `
magazines:
  - {id: "1", title: A, file: /a.pdf, pages: 2}
  - {id: "1", title: B, file: /b.pdf, pages: 2}
`, "duplicate id"},
		{"zero pages", `
magazines:
  - {id: "1", title: A, file: /a.pdf, pages: 0}
`, "page count must be positive"},
		{"bad pages label", `
magazines:
  - {id: "1", title: A, file: /a.pdf, pages: "many pages"}
`, "invalid page count"},
		{"team member without name", `
magazines:
  - id: "1"
    title: A
    file: /a.pdf
    pages: 2
    team:
      - {id: 1, name: "", role: Editor}
`, "team[0].name"},
		{"unknown default", `
default_id: "9"
magazines:
  - {id: "1", title: A, file: /a.pdf, pages: 2}
`, "default issue"},
		{"no magazines", `magazines: []`, "no magazines"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestParseReportsEveryInvalidRecord(t *testing.T) {
	_, err := Parse([]byte(`
magazines:
  - {id: "1", title: "", file: /a.pdf, pages: 2}
  - {id: "2", title: B, file: /b.pdf, pages: -1}
`))
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("got %d errors, want 2: %v", got, err)
	}
	var verr *models.ValidationError
	if !errors.As(multierr.Errors(err)[0], &verr) || verr.Field != "title" {
		t.Errorf("first error %v", multierr.Errors(err)[0])
	}
}

func TestSearch(t *testing.T) {
	c := Default()
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all newest first", Filter{}, []string{"2", "1"}},
		{"title", Filter{Query: "issue 1"}, []string{"1"}},
		{"topic", Filter{Query: "astrophysics"}, []string{"2"}},
		{"category", Filter{Category: "Space History & Technology"}, []string{"1"}},
		{"featured", Filter{FeaturedOnly: true}, []string{"2"}},
		{"no match", Filter{Query: "mars colony"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, m := range c.Search(tt.filter) {
				got = append(got, m.ID)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
	if cats := c.Categories(); len(cats) != 2 {
		t.Errorf("got categories %v", cats)
	}
}

const watchCatalog = `
magazines:
  - {id: "1", title: First, file: /a.pdf, pages: 2}
`

func TestStoreReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(watchCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewStore(path, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("magazines: [{id: \"1\", title: \"\"}]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(); err == nil {
		t.Fatal("expected reload of invalid catalog to fail")
	}
	if m, _ := s.Get().GetByID("1"); m.Title != "First" {
		t.Errorf("snapshot replaced by invalid catalog: %q", m.Title)
	}
}

func TestStoreWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(watchCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewStore(path, nil)
	if err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	s.OnChange(func(*Catalog) { calls.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Watch(ctx); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)

	updated := strings.Replace(watchCatalog, "First", "Updated", 1)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && calls.Load() == 0 {
		time.Sleep(50 * time.Millisecond)
	}
	if calls.Load() == 0 {
		t.Fatal("callback was not invoked after catalog change")
	}
	if m, _ := s.Get().GetByID("1"); m.Title != "Updated" {
		t.Errorf("got title %q, want Updated", m.Title)
	}
}

func TestBuiltinStoreDoesNotWatch(t *testing.T) {
	s, err := NewStore("", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Watch(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(); err != nil {
		t.Fatal(err)
	}
	if s.Get().Count() != 2 {
		t.Errorf("got %d magazines", s.Get().Count())
	}
}
