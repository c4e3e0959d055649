// Package bookmarks keeps the bookmarked pages of a reading session
package bookmarks

import "sort"

// Store is an ascending, duplicate-free set of page numbers. It is owned by
// the view that created it and is not safe for concurrent use.
type Store struct {
	pages []int
}

// New creates an empty store
func New() *Store {
	return &Store{}
}

// Add inserts page, keeping the set sorted. It returns false if the page was
// already present.
func (s *Store) Add(page int) bool {
	i, found := s.search(page)
	if found {
		return false
	}
	s.pages = append(s.pages, 0)
	copy(s.pages[i+1:], s.pages[i:])
	s.pages[i] = page
	return true
}

// Remove deletes page. It returns false if the page was not present.
func (s *Store) Remove(page int) bool {
	i, found := s.search(page)
	if !found {
		return false
	}
	s.pages = append(s.pages[:i], s.pages[i+1:]...)
	return true
}

// Toggle adds page if absent and removes it otherwise. It reports whether
// the page is bookmarked afterwards.
func (s *Store) Toggle(page int) bool {
	if s.Remove(page) {
		return false
	}
	s.Add(page)
	return true
}

// Contains reports whether page is bookmarked
func (s *Store) Contains(page int) bool {
	_, found := s.search(page)
	return found
}

// List returns a copy of the bookmarked pages in ascending order
func (s *Store) List() []int {
	out := make([]int, len(s.pages))
	copy(out, s.pages)
	return out
}

// Len returns the number of bookmarks
func (s *Store) Len() int { return len(s.pages) }

// Clear removes every bookmark
func (s *Store) Clear() { s.pages = s.pages[:0] }

// Next returns the first bookmark after page
func (s *Store) Next(page int) (int, bool) {
	i := sort.SearchInts(s.pages, page+1)
	if i >= len(s.pages) {
		return 0, false
	}
	return s.pages[i], true
}

// Prev returns the last bookmark before page
func (s *Store) Prev(page int) (int, bool) {
	i := sort.SearchInts(s.pages, page)
	if i == 0 {
		return 0, false
	}
	return s.pages[i-1], true
}

func (s *Store) search(page int) (int, bool) {
	i := sort.SearchInts(s.pages, page)
	return i, i < len(s.pages) && s.pages[i] == page
}
