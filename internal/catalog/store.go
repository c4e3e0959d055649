package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Store holds the current catalog snapshot and swaps it when the catalog
// file changes on disk.
type Store struct {
	mu        sync.RWMutex
	path      string
	current   *Catalog
	callbacks []func(*Catalog)
	log       *zap.Logger
}

// NewStore loads the catalog at path. An empty path uses the built-in
// catalog and disables watching.
func NewStore(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, current: c, log: log.Named("catalog")}, nil
}

// Get returns the current snapshot
func (s *Store) Get() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Path returns the watched file, empty for the built-in catalog
func (s *Store) Path() string { return s.path }

// OnChange registers a callback invoked after a successful reload
func (s *Store) OnChange(fn func(*Catalog)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

// Reload re-reads the catalog file. A file that fails to load or validate
// leaves the current snapshot in place.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	c, err := Load(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = c
	callbacks := make([]func(*Catalog), len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.mu.Unlock()

	s.log.Info("catalog reloaded", zap.String("path", s.path), zap.Int("magazines", c.Count()))
	for _, fn := range callbacks {
		fn(c)
	}
	return nil
}

// Watch reloads the catalog whenever its file is written or replaced, until
// ctx is done. It returns immediately for the built-in catalog.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Editors often replace the file, so watch the directory
	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(s.path)
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if err := s.Reload(); err != nil {
					s.log.Warn("ignoring invalid catalog", zap.String("path", s.path), zap.Error(err))
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.Warn("catalog watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
