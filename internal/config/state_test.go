package config

import (
	"path/filepath"
	"reflect"
	"strconv"
	"testing"
)

func TestLoadStateMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	st, err := LoadStateFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(st.RecentlyRead) != 0 || st.Theme != "" {
		t.Errorf("expected empty state, got %+v", st)
	}
	if st.Path() != path {
		t.Errorf("got path %q", st.Path())
	}
}

func TestStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "state.json")
	st, _ := LoadStateFrom(path)

	if err := st.SetTheme("nord"); err != nil {
		t.Fatal(err)
	}
	if err := st.AddRecentlyRead("1", "Brahmand Issue 1", "flipbook", 12); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadStateFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Theme != "nord" {
		t.Errorf("got theme %q, want nord", loaded.Theme)
	}
	if got := loaded.LastPage("1"); got != 12 {
		t.Errorf("got last page %d, want 12", got)
	}
	if got := loaded.LastPage("2"); got != 0 {
		t.Errorf("got last page %d for unread issue", got)
	}
}

func TestAddRecentlyReadOrdering(t *testing.T) {
	st, _ := LoadStateFrom(filepath.Join(t.TempDir(), "state.json"))

	for _, id := range []string{"1", "2", "1"} {
		if err := st.AddRecentlyRead(id, "Issue "+id, "pdf", 0); err != nil {
			t.Fatal(err)
		}
	}
	if got := st.RecentlyReadIDs(); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Errorf("got %v, want [1 2]", got)
	}

	for i := 0; i < MaxRecentlyRead+5; i++ {
		_ = st.AddRecentlyRead(strconv.Itoa(100+i), "x", "pdf", 0)
	}
	if len(st.RecentlyRead) != MaxRecentlyRead {
		t.Errorf("got %d entries, want %d", len(st.RecentlyRead), MaxRecentlyRead)
	}
}

func TestUpdateLastPage(t *testing.T) {
	st, _ := LoadStateFrom(filepath.Join(t.TempDir(), "state.json"))
	_ = st.AddRecentlyRead("1", "Issue 1", "flipbook", 1)
	_ = st.AddRecentlyRead("2", "Issue 2", "flipbook", 1)

	if err := st.UpdateLastPage("1", 20); err != nil {
		t.Fatal(err)
	}
	if st.LastPage("1") != 20 {
		t.Errorf("got %d, want 20", st.LastPage("1"))
	}
	if got := st.RecentlyReadIDs(); !reflect.DeepEqual(got, []string{"2", "1"}) {
		t.Errorf("UpdateLastPage reordered the list: %v", got)
	}
	if err := st.UpdateLastPage("9", 3); err != nil {
		t.Errorf("unknown id: %v", err)
	}
}
