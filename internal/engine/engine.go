// Package engine implements backend.Backend over an in-memory container
// model. Persistence is delegated to a Store, so the same engine serves the
// in-memory and the on-disk backends.
package engine

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/internal/alloc"
)

// Error is the error class for engine failures.
var Error = errs.Class("engine")

// Engine is a backend.Backend over a Store. It is safe for concurrent use.
type Engine struct {
	store Store
	log   *zap.Logger

	mu       sync.Mutex
	next     int64
	sessions map[backend.Handle]*session
	attached map[backend.ObjectHandle]*attachment

	calls  map[string]int
	faults map[string]error
}

type session struct {
	path    string
	mode    backend.Mode
	c       *Container
	index   map[backend.ObjectID]*Object
	refs    *alloc.Allocator
	dirty   bool
	handles int
}

type attachment struct {
	h    backend.Handle
	s    *session
	obj  *Object
	mode backend.Mode
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New creates an engine persisting through store.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		log:      zap.NewNop(),
		sessions: make(map[backend.Handle]*session),
		attached: make(map[backend.ObjectHandle]*attachment),
		calls:    make(map[string]int),
		faults:   make(map[string]error),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ backend.Backend = (*Engine)(nil)
var _ backend.AttrRemover = (*Engine)(nil)

// Calls returns how many times the named backend method has been called.
func (e *Engine) Calls(method string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[method]
}

// ResetCalls zeroes every call counter.
func (e *Engine) ResetCalls() {
	e.mu.Lock()
	defer e.mu.Unlock()
	clear(e.calls)
}

// Fail makes every later call to the named method return err. A nil err
// clears the fault.
func (e *Engine) Fail(method string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err == nil {
		delete(e.faults, method)
		return
	}
	e.faults[method] = err
}

// Attached returns the number of object handles not yet detached.
func (e *Engine) Attached() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.attached)
}

// enter counts a call and returns an injected fault. Callers hold mu.
func (e *Engine) enter(method string) error {
	e.calls[method]++
	return e.faults[method]
}

func (e *Engine) handle() int64 {
	e.next++
	return e.next
}

func (e *Engine) OpenContainer(path string, mode backend.Mode) (backend.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("OpenContainer"); err != nil {
		return 0, err
	}

	var c *Container
	if mode == backend.Create {
		c = NewContainer()
	} else {
		loaded, err := e.store.Load(path)
		if err != nil {
			return 0, errorf("open %q: %w", path, err)
		}
		c = loaded
	}

	s := &session{
		path:  path,
		mode:  mode,
		c:     c,
		index: make(map[backend.ObjectID]*Object, len(c.Objects)),
		refs:  alloc.New(),
		dirty: mode == backend.Create,
	}
	for _, o := range c.Objects {
		s.index[o.ID] = o
		s.refs.Reserve(o.ID.Tag, o.ID.Ref)
	}

	h := backend.Handle(e.handle())
	e.sessions[h] = s
	e.log.Debug("container opened",
		zap.String("path", path),
		zap.Stringer("mode", mode),
		zap.Int("objects", len(c.Objects)))
	return h, nil
}

func (e *Engine) CloseContainer(h backend.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("CloseContainer"); err != nil {
		return err
	}

	s, ok := e.sessions[h]
	if !ok {
		return Error.Wrap(backend.ErrBadHandle)
	}
	delete(e.sessions, h)

	for oh, a := range e.attached {
		if a.h == h {
			delete(e.attached, oh)
		}
	}
	if s.handles > 0 {
		e.log.Warn("container closed with attached objects",
			zap.String("path", s.path), zap.Int("handles", s.handles))
	}

	if !s.dirty {
		return nil
	}
	if err := e.store.Save(s.path, s.c); err != nil {
		return errorf("save %q: %w", s.path, err)
	}
	e.log.Debug("container saved", zap.String("path", s.path))
	return nil
}

func (e *Engine) session(h backend.Handle) (*session, error) {
	s, ok := e.sessions[h]
	if !ok {
		return nil, Error.Wrap(backend.ErrBadHandle)
	}
	return s, nil
}

func (e *Engine) attachment(oh backend.ObjectHandle) (*attachment, error) {
	a, ok := e.attached[oh]
	if !ok {
		return nil, Error.Wrap(backend.ErrBadHandle)
	}
	return a, nil
}

func (e *Engine) writable(a *attachment) error {
	if a.s.mode == backend.ReadOnly || a.mode == backend.ReadOnly {
		return Error.Wrap(backend.ErrReadOnly)
	}
	return nil
}

func (e *Engine) EnumerateTopLevel(h backend.Handle, kind backend.Kind, w backend.Window) ([]backend.ObjectID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("EnumerateTopLevel"); err != nil {
		return nil, err
	}

	s, err := e.session(h)
	if err != nil {
		return nil, err
	}
	if sub, ok := subsystemOf(kind); ok {
		if _, present := s.c.Global[sub]; !present {
			return nil, Error.Wrap(backend.ErrNoSubsystem)
		}
	}

	parented := make(map[backend.ObjectID]bool)
	for _, o := range s.c.Objects {
		if o.Kind == backend.KindGroup {
			for _, child := range o.Children {
				parented[child] = true
			}
		}
	}

	var ids []backend.ObjectID
	for _, o := range s.c.Objects {
		if o.Kind == kind && !parented[o.ID] {
			ids = append(ids, o.ID)
		}
	}
	slices.SortFunc(ids, func(a, b backend.ObjectID) int {
		if a.Ref != b.Ref {
			return int(a.Ref - b.Ref)
		}
		return int(a.Tag - b.Tag)
	})
	return slices.Clone(w.Apply(ids)), nil
}

// subsystemOf returns the attribute subsystem that must be present for
// objects of kind to be enumerated.
func subsystemOf(kind backend.Kind) (backend.Subsystem, bool) {
	switch kind {
	case backend.KindArray:
		return backend.SubsystemArray, true
	case backend.KindImage:
		return backend.SubsystemImage, true
	default:
		return 0, false
	}
}

func (e *Engine) Attach(h backend.Handle, id backend.ObjectID, mode backend.Mode) (backend.ObjectHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("Attach"); err != nil {
		return 0, err
	}

	s, err := e.session(h)
	if err != nil {
		return 0, err
	}
	obj, ok := lookup(s, id)
	if !ok {
		return 0, errorf("attach %s: %w", id, backend.ErrNotFound)
	}
	return e.attachLocked(h, s, obj, mode), nil
}

// lookup resolves id, accepting the alternate tags of each kind.
func lookup(s *session, id backend.ObjectID) (*Object, bool) {
	if obj, ok := s.index[id]; ok {
		return obj, true
	}
	kind, ok := backend.KindOf(id.Tag)
	if !ok {
		return nil, false
	}
	obj, ok := s.index[backend.ObjectID{Tag: backend.TagOf(kind), Ref: id.Ref}]
	return obj, ok
}

func (e *Engine) attachLocked(h backend.Handle, s *session, obj *Object, mode backend.Mode) backend.ObjectHandle {
	oh := backend.ObjectHandle(e.handle())
	e.attached[oh] = &attachment{h: h, s: s, obj: obj, mode: mode}
	s.handles++
	return oh
}

func (e *Engine) Detach(oh backend.ObjectHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls["Detach"]++

	a, err := e.attachment(oh)
	if err != nil {
		return err
	}
	delete(e.attached, oh)
	a.s.handles--
	return nil
}

func (e *Engine) ObjectID(oh backend.ObjectHandle) (backend.ObjectID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("ObjectID"); err != nil {
		return backend.ObjectID{}, err
	}

	a, err := e.attachment(oh)
	if err != nil {
		return backend.ObjectID{}, err
	}
	return a.obj.ID, nil
}

func (e *Engine) Info(oh backend.ObjectHandle) (backend.Info, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("Info"); err != nil {
		return backend.Info{}, err
	}

	a, err := e.attachment(oh)
	if err != nil {
		return backend.Info{}, err
	}
	o := a.obj
	return backend.Info{
		ID:       o.ID,
		Kind:     o.Kind,
		Name:     o.Name,
		Class:    o.Class,
		CoordVar: o.CoordVar,
	}, nil
}

func (e *Engine) ListChildren(oh backend.ObjectHandle) ([]backend.ObjectID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("ListChildren"); err != nil {
		return nil, err
	}

	a, err := e.attachment(oh)
	if err != nil {
		return nil, err
	}
	if a.obj.Kind != backend.KindGroup {
		return nil, errorf("%s is a %s, not a group", a.obj.ID, a.obj.Kind)
	}
	return slices.Clone(a.obj.Children), nil
}

func (e *Engine) InsertChild(parent backend.ObjectHandle, child backend.ObjectID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("InsertChild"); err != nil {
		return err
	}

	a, err := e.attachment(parent)
	if err != nil {
		return err
	}
	if err := e.writable(a); err != nil {
		return err
	}
	if a.obj.Kind != backend.KindGroup {
		return errorf("%s is a %s, not a group", a.obj.ID, a.obj.Kind)
	}
	if _, ok := lookup(a.s, child); !ok {
		return errorf("insert %s: %w", child, backend.ErrNotFound)
	}

	a.obj.Children = append(a.obj.Children, child)
	a.s.dirty = true
	return nil
}

func (e *Engine) ShapeInfo(oh backend.ObjectHandle) (backend.Shape, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("ShapeInfo"); err != nil {
		return backend.Shape{}, err
	}

	a, err := e.attachment(oh)
	if err != nil {
		return backend.Shape{}, err
	}
	o := a.obj
	shape := backend.Shape{
		Rank:      len(o.Dims),
		Dims:      slices.Clone(o.Dims),
		MaxDims:   slices.Clone(o.MaxDims),
		Type:      o.Type,
		AttrCount: len(o.Attrs),
		NComp:     o.NComp,
		Interlace: o.Interlace,
		Fields:    slices.Clone(o.Fields),
		Chunks:    slices.Clone(o.Chunks),
	}
	if o.Kind == backend.KindTable {
		shape.RecordSize = RecordSize(o.Fields)
	}
	shape.Compression = "none"
	if o.Deflate > 0 {
		shape.Compression = "deflate"
	}
	return shape, nil
}

// Snapshot returns a deep copy of the open container behind h.
func (e *Engine) Snapshot(h backend.Handle) (*Container, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.session(h)
	if err != nil {
		return nil, err
	}
	return s.c.Clone(), nil
}

// IsNotFound reports whether err means a missing container or object.
func IsNotFound(err error) bool {
	return errors.Is(err, backend.ErrNotFound)
}

func errorf(format string, args ...any) error {
	return Error.Wrap(fmt.Errorf(format, args...))
}
