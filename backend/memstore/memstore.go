// Package memstore provides an in-memory backend. Containers live for the
// lifetime of the Backend value and are copied on open and close, so a
// reopened container sees exactly what was saved.
package memstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/internal/engine"
)

// Backend is an in-memory backend.Backend. It counts calls per method and
// can be told to fail a method, which makes it suitable as a test double.
type Backend struct {
	*engine.Engine
	store *Store
}

// New creates an empty in-memory backend.
func New(opts ...engine.Option) *Backend {
	store := &Store{files: make(map[string]*engine.Container)}
	return &Backend{
		Engine: engine.New(store, opts...),
		store:  store,
	}
}

// Paths returns the names of all saved containers.
func (b *Backend) Paths() []string {
	return b.store.Paths()
}

// Store is a map of container snapshots keyed by path.
type Store struct {
	mu    sync.Mutex
	files map[string]*engine.Container
}

func (s *Store) Load(path string) (*engine.Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("%q: %w", path, backend.ErrNotFound)
	}
	return c.Clone(), nil
}

func (s *Store) Save(path string, c *engine.Container) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.files[path] = c.Clone()
	return nil
}

// Paths returns the saved paths in sorted order.
func (s *Store) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
