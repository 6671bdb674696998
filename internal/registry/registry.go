// Package registry tracks the object ids materialised in one session.
package registry

import (
	"sync"

	"github.com/robert-malhotra/go-hdf4/backend"
)

// Registry is an append-only set of seen object ids.
// It is safe for concurrent use.
type Registry struct {
	mu   sync.Mutex
	seen map[backend.ObjectID]struct{}
	// order keeps first-registration order for diagnostics.
	order []backend.ObjectID
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{seen: make(map[backend.ObjectID]struct{})}
}

// Register inserts id and reports whether it was already present.
func (r *Registry) Register(id backend.ObjectID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	r.order = append(r.order, id)
	return false
}

// Seen reports whether id has been registered.
func (r *Registry) Seen(id backend.ObjectID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.seen[id]
	return ok
}

// Len returns the number of distinct ids.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

// IDs returns the registered ids in first-registration order.
func (r *Registry) IDs() []backend.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]backend.ObjectID(nil), r.order...)
}

// Reset clears the registry.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.seen)
	r.order = nil
}
