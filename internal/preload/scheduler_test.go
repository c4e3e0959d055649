package preload

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/justyntemme/brahmand-t/internal/pagination"
)

func newTestScheduler(radius int) *Scheduler {
	return New(Options{Radius: radius, Attempts: 3, Delay: time.Millisecond, Layout: pagination.Spread})
}

func TestWindowFor(t *testing.T) {
	tests := []struct {
		name   string
		spread int
		total  int
		radius int
		want   []int
	}{
		{"cover", 0, 41, 1, []int{1, 2, 3}},
		{"middle", 5, 41, 1, []int{8, 9, 10, 11, 12, 13}},
		{"last", 20, 41, 1, []int{38, 39, 40, 41}},
		{"radius two", 1, 41, 2, []int{1, 2, 3, 4, 5, 6, 7}},
		{"short document", 0, 1, 3, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WindowFor(tt.spread, tt.total, tt.radius, pagination.Spread, nil)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWindowForStaysInRange(t *testing.T) {
	for total := 1; total <= 40; total++ {
		for s := 0; s <= pagination.LastSpread(total, pagination.Spread); s++ {
			got := WindowFor(s, total, 2, pagination.Spread, nil)
			for i, p := range got {
				if p < 1 || p > total {
					t.Fatalf("total=%d spread=%d: page %d out of range", total, s, p)
				}
				if i > 0 && got[i-1] >= p {
					t.Fatalf("total=%d spread=%d: window %v not strictly ascending", total, s, got)
				}
			}
		}
	}
}

func TestWindowExcludesLoaded(t *testing.T) {
	s := newTestScheduler(1)
	session := s.Reset("1", 41)
	for _, p := range []int{8, 9} {
		if err := s.MarkLoaded(session, p); err != nil {
			t.Fatal(err)
		}
	}
	got := s.WindowFor(5)
	want := []int{10, 11, 12, 13}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMarkLoadedIdempotent(t *testing.T) {
	s := newTestScheduler(1)
	session := s.Reset("1", 10)
	for i := 0; i < 3; i++ {
		if err := s.MarkLoaded(session, 4); err != nil {
			t.Fatal(err)
		}
	}
	if got := s.Loaded(); !reflect.DeepEqual(got, []int{4}) {
		t.Errorf("got %v, want [4]", got)
	}
}

func TestMarkLoadedConcurrent(t *testing.T) {
	s := newTestScheduler(1)
	session := s.Reset("1", 50)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := 1; p <= 50; p++ {
				_ = s.MarkLoaded(session, p)
			}
		}()
	}
	wg.Wait()
	if got := len(s.Loaded()); got != 50 {
		t.Errorf("got %d loaded pages, want 50", got)
	}
}

func TestStaleCompletionIgnored(t *testing.T) {
	s := newTestScheduler(1)
	old := s.Reset("1", 40)
	current := s.Reset("2", 66)

	if err := s.MarkLoaded(old, 3); !errors.Is(err, ErrStale) {
		t.Fatalf("got %v, want ErrStale", err)
	}
	if s.IsLoaded(3) {
		t.Error("stale completion marked page 3 loaded")
	}
	if err := s.MarkLoaded(current, 3); err != nil {
		t.Fatal(err)
	}
	if !s.IsCurrent(current) || s.IsCurrent(old) {
		t.Error("IsCurrent disagrees with the latest Reset")
	}
	if got := s.DocumentID(); got != "2" {
		t.Errorf("document %q, want 2", got)
	}
}

func TestResetClearsState(t *testing.T) {
	s := newTestScheduler(1)
	session := s.Reset("1", 40)
	_ = s.MarkLoaded(session, 1)
	_, planned := s.Plan(3)
	if len(planned) == 0 {
		t.Fatal("expected planned pages")
	}
	s.Reset("2", 66)
	if len(s.Loaded()) != 0 {
		t.Error("loaded set survived reset")
	}
	for _, p := range planned {
		if s.IsPending(p) {
			t.Errorf("page %d still pending after reset", p)
		}
	}
}

func TestPlanSkipsPending(t *testing.T) {
	s := newTestScheduler(1)
	s.Reset("1", 41)

	_, first := s.Plan(5)
	if want := []int{8, 9, 10, 11, 12, 13}; !reflect.DeepEqual(first, want) {
		t.Fatalf("first plan %v, want %v", first, want)
	}
	_, second := s.Plan(6)
	if want := []int{14, 15}; !reflect.DeepEqual(second, want) {
		t.Errorf("second plan %v, want %v", second, want)
	}
}

func TestFailAllowsRetry(t *testing.T) {
	s := newTestScheduler(1)
	session, planned := s.Plan(0)
	if len(planned) != 0 {
		t.Fatalf("empty document planned %v", planned)
	}
	session = s.Reset("1", 10)
	_, planned = s.Plan(0)
	if err := s.Fail(session, planned[0], errors.New("boom")); err != nil {
		t.Fatal(err)
	}
	_, again := s.Plan(0)
	if !reflect.DeepEqual(again, []int{planned[0]}) {
		t.Errorf("got %v, want [%d]", again, planned[0])
	}
}

func TestFetchBoundedAttempts(t *testing.T) {
	s := newTestScheduler(1)
	calls := 0
	err := s.Fetch(context.Background(), 1, func(context.Context) error {
		calls++
		return errors.New("unreachable")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Errorf("got %d attempts, want 3", calls)
	}
}

func TestFetchSucceedsAfterRetry(t *testing.T) {
	s := newTestScheduler(1)
	calls := 0
	err := s.Fetch(context.Background(), 1, func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("flaky")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("got %d attempts, want 2", calls)
	}
}
