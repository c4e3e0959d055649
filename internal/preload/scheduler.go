// Package preload decides which pages around the current spread should be
// fetched ahead of time and records which ones have arrived.
package preload

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justyntemme/brahmand-t/internal/pagination"
)

// ErrStale is returned for completions that belong to a previous document
var ErrStale = errors.New("stale preload completion")

// Defaults used when Options leaves a field unset
const (
	DefaultRadius   = 1
	DefaultAttempts = 2
	DefaultDelay    = 200 * time.Millisecond
)

// Options configures a Scheduler
type Options struct {
	Radius   int
	Attempts uint
	Delay    time.Duration
	Layout   pagination.Layout
	Logger   *zap.Logger
}

// Scheduler tracks the loaded and in-flight pages of one document session.
// Completions carry the session token they were issued under; a token from an
// earlier document is rejected.
type Scheduler struct {
	mu sync.Mutex

	docID   string
	session uuid.UUID
	total   int
	layout  pagination.Layout

	radius   int
	attempts uint
	delay    time.Duration

	loaded  map[int]struct{}
	pending map[int]struct{}

	log *zap.Logger
}

// New creates a scheduler with no document
func New(opts Options) *Scheduler {
	if opts.Radius < 0 {
		opts.Radius = 0
	}
	if opts.Radius == 0 {
		opts.Radius = DefaultRadius
	}
	if opts.Attempts == 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		session:  uuid.New(),
		layout:   opts.Layout,
		radius:   opts.Radius,
		attempts: opts.Attempts,
		delay:    opts.Delay,
		loaded:   make(map[int]struct{}),
		pending:  make(map[int]struct{}),
		log:      log.Named("preload"),
	}
}

// WindowFor returns the pages of the spreads within radius of spreadIndex
// that are not yet loaded, in ascending order
func WindowFor(spreadIndex, totalPages, radius int, layout pagination.Layout, loaded func(int) bool) []int {
	seen := make(map[int]struct{})
	var out []int
	for i := -radius; i <= radius; i++ {
		s := spreadIndex + i
		if s < 0 {
			continue
		}
		for _, p := range pagination.CurrentPages(s, totalPages, layout) {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			if loaded != nil && loaded(p) {
				continue
			}
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out
}

// Reset switches to a new document. The loaded and pending sets are cleared
// and a fresh session token is returned.
func (s *Scheduler) Reset(docID string, totalPages int) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docID = docID
	s.total = totalPages
	s.session = uuid.New()
	clear(s.loaded)
	clear(s.pending)
	s.log.Debug("session reset",
		zap.String("magazine", docID),
		zap.Int("pages", totalPages),
		zap.Stringer("session", s.session))
	return s.session
}

// SetLayout changes the layout used to compute windows
func (s *Scheduler) SetLayout(layout pagination.Layout) {
	s.mu.Lock()
	s.layout = layout
	s.mu.Unlock()
}

// Session returns the current session token
func (s *Scheduler) Session() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// DocumentID returns the identity the scheduler is tracking
func (s *Scheduler) DocumentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docID
}

// IsCurrent reports whether session belongs to the current document
func (s *Scheduler) IsCurrent(session uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return session == s.session
}

// WindowFor returns the unloaded pages around spreadIndex
func (s *Scheduler) WindowFor(spreadIndex int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return WindowFor(spreadIndex, s.total, s.radius, s.layout, s.isLoaded)
}

// Plan returns the pages around spreadIndex that are neither loaded nor
// already in flight, marks them pending and returns the session they belong to
func (s *Scheduler) Plan(spreadIndex int) (uuid.UUID, []int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := WindowFor(spreadIndex, s.total, s.radius, s.layout, s.isLoaded)
	var out []int
	for _, p := range window {
		if _, ok := s.pending[p]; ok {
			continue
		}
		s.pending[p] = struct{}{}
		out = append(out, p)
	}
	return s.session, out
}

// MarkLoaded records a finished load. It returns ErrStale when session is not
// the current one, in which case nothing changes.
func (s *Scheduler) MarkLoaded(session uuid.UUID, page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session != s.session {
		return ErrStale
	}
	delete(s.pending, page)
	s.loaded[page] = struct{}{}
	return nil
}

// Fail records a failed load. The page leaves the pending set so the next
// window recomputation asks for it again.
func (s *Scheduler) Fail(session uuid.UUID, page int, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session != s.session {
		return ErrStale
	}
	delete(s.pending, page)
	s.log.Warn("preload failed",
		zap.String("magazine", s.docID),
		zap.Int("page", page),
		zap.Error(cause))
	return nil
}

// IsLoaded reports whether page has finished loading in this session
func (s *Scheduler) IsLoaded(page int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoaded(page)
}

// IsPending reports whether page is in flight
func (s *Scheduler) IsPending(page int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[page]
	return ok
}

// Loaded returns the loaded pages in ascending order
func (s *Scheduler) Loaded() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.loaded))
	for p := range s.loaded {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// Fetch runs fn with a bounded number of attempts. It never retries past
// the configured attempt count and gives up early when ctx is done.
func (s *Scheduler) Fetch(ctx context.Context, page int, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	attempts, delay := s.attempts, s.delay
	s.mu.Unlock()

	return retry.Do(
		func() error {
			return fn(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.log.Debug("retrying page", zap.Int("page", page), zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
}

func (s *Scheduler) isLoaded(page int) bool {
	_, ok := s.loaded[page]
	return ok
}
