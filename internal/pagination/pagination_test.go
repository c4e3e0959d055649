package pagination

import (
	"errors"
	"reflect"
	"testing"
)

func TestCurrentPagesBounds(t *testing.T) {
	for _, layout := range []Layout{Single, Spread} {
		for total := 1; total <= 64; total++ {
			prevFirst := 0
			for s := 0; s <= LastSpread(total, layout); s++ {
				pages := CurrentPages(s, total, layout)
				if len(pages) < 1 || len(pages) > 2 {
					t.Fatalf("%s total=%d spread=%d: got %d pages", layout, total, s, len(pages))
				}
				for _, p := range pages {
					if p < 1 || p > total {
						t.Fatalf("%s total=%d spread=%d: page %d out of range", layout, total, s, p)
					}
				}
				if pages[0] <= prevFirst {
					t.Fatalf("%s total=%d spread=%d: first page %d not after %d", layout, total, s, pages[0], prevFirst)
				}
				prevFirst = pages[0]
			}
		}
	}
}

func TestCurrentPagesInvalid(t *testing.T) {
	if got := CurrentPages(-1, 10, Spread); got != nil {
		t.Errorf("negative spread: got %v, want nil", got)
	}
	if got := CurrentPages(0, 0, Spread); got != nil {
		t.Errorf("empty document: got %v, want nil", got)
	}
	if got := CurrentPages(6, 10, Spread); got != nil {
		t.Errorf("past the end: got %v, want nil", got)
	}
	if got := CurrentPages(10, 10, Single); got != nil {
		t.Errorf("single past the end: got %v, want nil", got)
	}
}

func TestAdvanceReachesLastExactlyOnce(t *testing.T) {
	for _, layout := range []Layout{Single, Spread} {
		for total := 1; total <= 64; total++ {
			s := 0
			lastSeen := 0
			for step := 0; step < total+5; step++ {
				last := IsLastSpread(CurrentPages(s, total, layout), total)
				if last {
					lastSeen++
				}
				next := Advance(s, +1, last)
				if last && next != s {
					t.Fatalf("%s total=%d: advance past last spread %d -> %d", layout, total, s, next)
				}
				if next == s {
					break
				}
				s = next
			}
			if lastSeen != 1 {
				t.Errorf("%s total=%d: last spread seen %d times, want 1", layout, total, lastSeen)
			}
			if s != LastSpread(total, layout) {
				t.Errorf("%s total=%d: stopped at %d, want %d", layout, total, s, LastSpread(total, layout))
			}
		}
	}
}

func TestAdvanceBackwardStopsAtCover(t *testing.T) {
	if got := Advance(0, -1, false); got != 0 {
		t.Errorf("Advance(0, -1) = %d, want 0", got)
	}
	if got := Advance(3, -1, true); got != 2 {
		t.Errorf("Advance(3, -1) = %d, want 2", got)
	}
	if got := Advance(3, 0, false); got != 3 {
		t.Errorf("Advance(3, 0) = %d, want 3", got)
	}
}

func TestGoToPage(t *testing.T) {
	for total := 1; total <= 64; total++ {
		s, err := GoToPage(1, total, Spread)
		if err != nil || s != 0 {
			t.Fatalf("GoToPage(1, %d) = %d, %v; want 0", total, s, err)
		}
		for p := 3; p <= total; p += 2 {
			s, err := GoToPage(p, total, Spread)
			if err != nil {
				t.Fatalf("GoToPage(%d, %d): %v", p, total, err)
			}
			if s != (p-1)/2 {
				t.Errorf("GoToPage(%d, %d) = %d, want %d", p, total, s, (p-1)/2)
			}
		}
	}
}

func TestGoToPageShowsRequestedPage(t *testing.T) {
	for _, layout := range []Layout{Single, Spread} {
		for total := 1; total <= 64; total++ {
			for p := 1; p <= total; p++ {
				s, err := GoToPage(p, total, layout)
				if err != nil {
					t.Fatalf("%s GoToPage(%d, %d): %v", layout, p, total, err)
				}
				found := false
				for _, v := range CurrentPages(s, total, layout) {
					if v == p {
						found = true
					}
				}
				if !found {
					t.Errorf("%s total=%d: page %d not visible at spread %d", layout, total, p, s)
				}
			}
		}
	}
}

func TestGoToPageRejectsOutOfRange(t *testing.T) {
	for _, p := range []int{0, -3, 42} {
		_, err := GoToPage(p, 41, Spread)
		if !errors.Is(err, ErrPageOutOfRange) {
			t.Errorf("GoToPage(%d): got %v, want ErrPageOutOfRange", p, err)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, layout := range []Layout{Single, Spread} {
		for total := 1; total <= 64; total++ {
			for s := 0; s <= LastSpread(total, layout); s++ {
				first := CurrentPages(s, total, layout)[0]
				got, err := GoToPage(first, total, layout)
				if err != nil {
					t.Fatalf("%s total=%d spread=%d: %v", layout, total, s, err)
				}
				if got != s {
					t.Errorf("%s total=%d: GoToPage(%d) = %d, want %d", layout, total, first, got, s)
				}
			}
		}
	}
}

func TestExampleFortyOnePages(t *testing.T) {
	const total = 41
	s := 0
	if got := CurrentPages(s, total, Spread); !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("cover: got %v, want [1]", got)
	}

	s = Advance(s, +1, IsLastSpread(CurrentPages(s, total, Spread), total))
	if s != 1 {
		t.Fatalf("after one advance: spread %d, want 1", s)
	}
	if got := CurrentPages(s, total, Spread); !reflect.DeepEqual(got, []int{2, 3}) {
		t.Fatalf("spread 1: got %v, want [2 3]", got)
	}

	for s < 20 {
		s = Advance(s, +1, IsLastSpread(CurrentPages(s, total, Spread), total))
	}
	pages := CurrentPages(s, total, Spread)
	if !reflect.DeepEqual(pages, []int{40, 41}) {
		t.Fatalf("spread 20: got %v, want [40 41]", pages)
	}
	if !IsLastSpread(pages, total) {
		t.Fatal("spread 20 should be last")
	}
	if got := Advance(s, +1, true); got != 20 {
		t.Errorf("advance at last spread: got %d, want 20", got)
	}
}

func TestTrailingSinglePage(t *testing.T) {
	tests := []struct {
		total int
		want  []int
	}{
		{40, []int{40}},
		{39, []int{38, 39}},
		{2, []int{2}},
		{1, []int{1}},
	}
	for _, tt := range tests {
		got := CurrentPages(LastSpread(tt.total, Spread), tt.total, Spread)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("total=%d: final spread %v, want %v", tt.total, got, tt.want)
		}
	}
}

func TestRelayoutKeepsPageVisible(t *testing.T) {
	const total = 41
	for s := 0; s <= LastSpread(total, Spread); s++ {
		first := CurrentPages(s, total, Spread)[0]
		single := Relayout(s, total, Spread, Single)
		if got := CurrentPages(single, total, Single); got[0] != first {
			t.Errorf("spread %d -> single %d shows %v, want page %d", s, single, got, first)
		}
	}
	for s := 0; s < total; s++ {
		page := s + 1
		spread := Relayout(s, total, Single, Spread)
		visible := CurrentPages(spread, total, Spread)
		if visible[0] != page && visible[len(visible)-1] != page {
			t.Errorf("single %d -> spread %d shows %v, want page %d", s, spread, visible, page)
		}
	}
}

func TestLayoutForWidth(t *testing.T) {
	if got := LayoutForWidth(80, 96); got != Single {
		t.Errorf("80 cols: got %s, want single", got)
	}
	if got := LayoutForWidth(96, 96); got != Spread {
		t.Errorf("96 cols: got %s, want spread", got)
	}
}

func TestParseLayout(t *testing.T) {
	if l, err := ParseLayout("Spread"); err != nil || l != Spread {
		t.Errorf("ParseLayout(Spread) = %v, %v", l, err)
	}
	if l, err := ParseLayout("single"); err != nil || l != Single {
		t.Errorf("ParseLayout(single) = %v, %v", l, err)
	}
	if _, err := ParseLayout("triple"); err == nil {
		t.Error("expected error for unknown layout")
	}
}

func TestThumbnailGroups(t *testing.T) {
	groups := ThumbnailGroups(39, 6)
	if len(groups) != 7 {
		t.Fatalf("got %d groups, want 7", len(groups))
	}
	if groups[0].Label != "Pages 1-6" {
		t.Errorf("first label %q", groups[0].Label)
	}
	last := groups[len(groups)-1]
	if last.Label != "Pages 37-39" || !reflect.DeepEqual(last.Pages, []int{37, 38, 39}) {
		t.Errorf("last group %q %v", last.Label, last.Pages)
	}
	if ThumbnailGroups(0, 6) != nil {
		t.Error("expected no groups for an empty document")
	}
}

func TestFilterPages(t *testing.T) {
	got := FilterPages(41, "1")
	want := []int{1, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 21, 31, 41}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterPages(41, 1) = %v, want %v", got, want)
	}
	if got := FilterPages(5, ""); len(got) != 5 {
		t.Errorf("empty query: got %v", got)
	}
	if got := FilterPages(5, "9"); got != nil {
		t.Errorf("no match: got %v", got)
	}
}
