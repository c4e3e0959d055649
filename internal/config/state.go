package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const (
	stateFileName   = "state.json"
	MaxRecentlyRead = 10 // Maximum number of recently read issues to track
)

// RecentlyReadEntry represents a recently opened issue
type RecentlyReadEntry struct {
	MagazineID string    `json:"magazine_id"`
	Title      string    `json:"title"`
	Mode       string    `json:"mode"`
	LastPage   int       `json:"last_page,omitempty"`
	OpenedAt   time.Time `json:"opened_at"`
}

// State is what the reader remembers between sessions
type State struct {
	Theme        string              `json:"theme,omitempty"`
	RecentlyRead []RecentlyReadEntry `json:"recently_read,omitempty"`

	// Path to state file (not persisted)
	path string `json:"-"`
}

// LoadState loads the state file from the user config directory
func LoadState() (*State, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadStateFrom(filepath.Join(dir, stateFileName))
}

// LoadStateFrom loads state from path. A missing file yields empty state.
func LoadStateFrom(path string) (*State, error) {
	st := &State{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// State doesn't exist yet, return defaults
		return st, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, st); err != nil {
		return nil, err
	}

	st.path = path
	return st, nil
}

// Path returns the state file location
func (s *State) Path() string { return s.path }

// Save persists the state to disk
func (s *State) Save() error {
	// Ensure directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0600)
}

// SetTheme records the chosen theme and saves
func (s *State) SetTheme(name string) error {
	s.Theme = name
	return s.Save()
}

// AddRecentlyRead moves an issue to the front of the recently read list
func (s *State) AddRecentlyRead(id, title, mode string, page int) error {
	// Remove existing entry for this issue if present
	newList := make([]RecentlyReadEntry, 0, MaxRecentlyRead)
	for _, entry := range s.RecentlyRead {
		if entry.MagazineID != id {
			newList = append(newList, entry)
		}
	}

	// Add new entry at the front
	entry := RecentlyReadEntry{
		MagazineID: id,
		Title:      title,
		Mode:       mode,
		LastPage:   page,
		OpenedAt:   time.Now(),
	}
	s.RecentlyRead = append([]RecentlyReadEntry{entry}, newList...)

	// Trim to max size
	if len(s.RecentlyRead) > MaxRecentlyRead {
		s.RecentlyRead = s.RecentlyRead[:MaxRecentlyRead]
	}

	return s.Save()
}

// UpdateLastPage records the page an issue was left at without reordering
func (s *State) UpdateLastPage(id string, page int) error {
	for i := range s.RecentlyRead {
		if s.RecentlyRead[i].MagazineID == id {
			s.RecentlyRead[i].LastPage = page
			return s.Save()
		}
	}
	return nil
}

// LastPage returns the page an issue was left at, 0 if unknown
func (s *State) LastPage(id string) int {
	for _, entry := range s.RecentlyRead {
		if entry.MagazineID == id {
			return entry.LastPage
		}
	}
	return 0
}

// RecentlyReadIDs returns the list of recently read issue IDs
func (s *State) RecentlyReadIDs() []string {
	ids := make([]string, len(s.RecentlyRead))
	for i, entry := range s.RecentlyRead {
		ids[i] = entry.MagazineID
	}
	return ids
}
