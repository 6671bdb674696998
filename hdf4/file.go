package hdf4

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/internal/registry"
)

// File is an open container and its materialised object tree.
type File struct {
	b    backend.Backend
	h    backend.Handle
	path string
	mode backend.Mode
	opts LoadOptions
	log  *zap.Logger

	reg  *registry.Registry
	root *Group

	mu       sync.Mutex
	degraded []error
	closed   bool
}

// Open opens the container at path through engine b and loads its tree.
//
// Objects that cannot be attached or described are skipped; the failures
// are available from Degraded.
func Open(b backend.Backend, path string, opts ...Option) (*File, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	h, err := b.OpenContainer(path, o.mode)
	if err != nil {
		return nil, Error.Wrap(fmt.Errorf("opening %q: %w", path, err))
	}

	f := &File{
		b:    b,
		h:    h,
		path: path,
		mode: o.mode,
		opts: o.load,
		log:  o.log.With(zap.String("file", path)),
		reg:  registry.New(),
	}
	f.load()
	return f, nil
}

// Create creates a new, empty container at path.
func Create(b backend.Backend, path string, opts ...Option) (*File, error) {
	return Open(b, path, append(opts, WithMode(backend.Create))...)
}

// Close releases the container session. The file is unusable afterwards.
func (f *File) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	f.reg.Reset()
	if err := f.b.CloseContainer(f.h); err != nil {
		return Error.Wrap(fmt.Errorf("closing %q: %w", f.path, err))
	}
	return nil
}

// Path returns the container path.
func (f *File) Path() string { return f.path }

// Mode returns the access mode the file was opened with.
func (f *File) Mode() backend.Mode { return f.mode }

// Root returns the root group.
func (f *File) Root() *Group { return f.root }

// LoadOptions returns the discovery options.
func (f *File) LoadOptions() LoadOptions { return f.opts }

// Registry returns the ids of every materialised object in discovery order.
func (f *File) Registry() []backend.ObjectID { return f.reg.IDs() }

// Degraded returns the failures encountered while loading the tree or
// fetching metadata.
func (f *File) Degraded() []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.degraded)
}

// Get returns the node at an absolute path. Link groups are followed.
func (f *File) Get(path string) (Node, bool) {
	var cur Node = f.root
	for _, name := range SplitPath(path) {
		g, ok := cur.(*Group)
		if !ok {
			return nil, false
		}
		next, ok := g.Resolve().Member(name)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Find returns the first node with the given id.
func (f *File) Find(id backend.ObjectID) (Node, bool) {
	var found Node
	err := Walk(f.root, func(_ string, n Node, _ error) error {
		if n.ID() == id {
			found = n
			return errStop
		}
		return nil
	})
	return found, err == errStop && found != nil
}

var errStop = errors.New("stop")

func (f *File) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *File) checkWritable() error {
	if f.isClosed() {
		return ErrClosed
	}
	if f.mode == backend.ReadOnly {
		return ValidationError.Wrap(ErrReadOnly)
	}
	return nil
}

// withObject attaches id for the duration of fn.
func (f *File) withObject(id backend.ObjectID, mode backend.Mode, fn func(oh backend.ObjectHandle) error) error {
	if f.isClosed() {
		return ErrClosed
	}
	oh, err := f.b.Attach(f.h, id, mode)
	if err != nil {
		return err
	}
	defer f.detach(oh)
	return fn(oh)
}

func (f *File) detach(oh backend.ObjectHandle) {
	if err := f.b.Detach(oh); err != nil {
		f.log.Debug("detach failed", zap.Int64("handle", int64(oh)), zap.Error(err))
	}
}

// degrade records a non-fatal failure. A missing subsystem is expected in
// many containers and is only logged.
func (f *File) degrade(op string, id backend.ObjectID, err error) {
	if errors.Is(err, backend.ErrNoSubsystem) {
		f.log.Debug(op+": subsystem not present", zap.Stringer("id", id))
		return
	}
	f.log.Warn(op+" failed", zap.Stringer("id", id), zap.Error(err))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.degraded = append(f.degraded, Error.Wrap(fmt.Errorf("%s %s: %w", op, id, err)))
}
