package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/justyntemme/brahmand-t/internal/api"
)

// RemoteSource serves page images from the asset host, laid out as
// <dir>/<n>.<ext>. The page count comes from <dir>/manifest.json when the
// host provides one, otherwise from the catalog.
type RemoteSource struct {
	client   *api.Client
	dir      string
	fallback int

	mu     sync.Mutex
	count  int
	ext    string
	probed bool
}

// NewRemoteSource creates a source for a remote page directory
func NewRemoteSource(client *api.Client, dir string, catalogPages int) *RemoteSource {
	return &RemoteSource{
		client:   client,
		dir:      strings.TrimRight(dir, "/"),
		fallback: catalogPages,
		ext:      "png",
	}
}

// PageCount implements Source
func (s *RemoteSource) PageCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.probe(ctx); err != nil {
		return 0, err
	}
	return s.count, nil
}

// Page implements Source
func (s *RemoteSource) Page(ctx context.Context, n int) ([]byte, error) {
	s.mu.Lock()
	if err := s.probe(ctx); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	count, ext := s.count, s.ext
	s.mu.Unlock()

	if err := checkPage(n, count); err != nil {
		return nil, err
	}
	return s.client.Fetch(ctx, fmt.Sprintf("%s/%d.%s", s.dir, n, ext))
}

// probe reads the manifest once; callers hold mu
func (s *RemoteSource) probe(ctx context.Context) error {
	if s.probed {
		return nil
	}
	m, err := s.client.Manifest(ctx, s.dir)
	switch {
	case errors.Is(err, api.ErrNotFound):
		s.count = s.fallback
	case err != nil:
		return fmt.Errorf("failed to read page manifest: %w", err)
	default:
		s.count = m.PageCount
		if m.Extension != "" {
			s.ext = strings.TrimPrefix(m.Extension, ".")
		}
	}
	if s.count < 1 {
		return fmt.Errorf("remote pages %s: unknown page count", s.dir)
	}
	s.probed = true
	return nil
}
