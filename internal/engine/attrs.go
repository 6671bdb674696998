package engine

import (
	"slices"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/dtype"
)

func (e *Engine) AttrInfo(oh backend.ObjectHandle, index int) (backend.AttrInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("AttrInfo"); err != nil {
		return backend.AttrInfo{}, err
	}

	attr, err := e.attrAt(oh, index)
	if err != nil {
		return backend.AttrInfo{}, err
	}
	return backend.AttrInfo{Name: attr.Name, Type: attr.Type, Count: attr.Count}, nil
}

func (e *Engine) ReadAttr(oh backend.ObjectHandle, index int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("ReadAttr"); err != nil {
		return nil, err
	}

	attr, err := e.attrAt(oh, index)
	if err != nil {
		return nil, err
	}
	return slices.Clone(attr.Data), nil
}

func (e *Engine) attrAt(oh backend.ObjectHandle, index int) (backend.RawAttr, error) {
	a, err := e.attachment(oh)
	if err != nil {
		return backend.RawAttr{}, err
	}
	if index < 0 || index >= len(a.obj.Attrs) {
		return backend.RawAttr{}, errorf("%s attribute %d: %w", a.obj.ID, index, backend.ErrNotFound)
	}
	return a.obj.Attrs[index], nil
}

func (e *Engine) WriteAttr(oh backend.ObjectHandle, attr backend.RawAttr) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("WriteAttr"); err != nil {
		return err
	}

	a, err := e.attachment(oh)
	if err != nil {
		return err
	}
	if err := e.writable(a); err != nil {
		return err
	}
	if err := checkAttr(attr); err != nil {
		return err
	}

	a.obj.Attrs = putAttr(a.obj.Attrs, attr)
	a.s.dirty = true
	return nil
}

// RemoveAttr deletes the named attribute.
func (e *Engine) RemoveAttr(oh backend.ObjectHandle, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("RemoveAttr"); err != nil {
		return err
	}

	a, err := e.attachment(oh)
	if err != nil {
		return err
	}
	if err := e.writable(a); err != nil {
		return err
	}

	i := slices.IndexFunc(a.obj.Attrs, func(r backend.RawAttr) bool { return r.Name == name })
	if i < 0 {
		return errorf("%s attribute %q: %w", a.obj.ID, name, backend.ErrNotFound)
	}
	a.obj.Attrs = slices.Delete(a.obj.Attrs, i, i+1)
	a.s.dirty = true
	return nil
}

func checkAttr(attr backend.RawAttr) error {
	if attr.Name == "" {
		return errorf("attribute without a name: %w", backend.ErrShapeMismatch)
	}
	size := dtype.Size(attr.Type)
	if size == 0 {
		return errorf("attribute %q: %w: %d", attr.Name, dtype.ErrUnknownType, attr.Type)
	}
	if attr.Count*size != len(attr.Data) {
		return errorf("attribute %q: %d bytes for %d values: %w",
			attr.Name, len(attr.Data), attr.Count, backend.ErrShapeMismatch)
	}
	return nil
}

// putAttr replaces the attribute of the same name or appends it.
func putAttr(attrs []backend.RawAttr, attr backend.RawAttr) []backend.RawAttr {
	attr.Data = slices.Clone(attr.Data)
	for i := range attrs {
		if attrs[i].Name == attr.Name {
			attrs[i] = attr
			return attrs
		}
	}
	return append(attrs, attr)
}

func (e *Engine) Annotations(h backend.Handle) ([]backend.Annotation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("Annotations"); err != nil {
		return nil, err
	}

	s, err := e.session(h)
	if err != nil {
		return nil, err
	}
	return slices.Clone(s.c.Annotations), nil
}

// AddAnnotation appends a container label or description.
func (e *Engine) AddAnnotation(h backend.Handle, ann backend.Annotation) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("AddAnnotation"); err != nil {
		return err
	}

	s, err := e.session(h)
	if err != nil {
		return err
	}
	if s.mode == backend.ReadOnly {
		return Error.Wrap(backend.ErrReadOnly)
	}
	s.c.Annotations = append(s.c.Annotations, ann)
	s.dirty = true
	return nil
}

func (e *Engine) GlobalAttrs(h backend.Handle, sub backend.Subsystem) ([]backend.RawAttr, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("GlobalAttrs"); err != nil {
		return nil, err
	}

	s, err := e.session(h)
	if err != nil {
		return nil, err
	}
	attrs, ok := s.c.Global[sub]
	if !ok {
		return nil, errorf("%s attributes: %w", sub, backend.ErrNoSubsystem)
	}
	return cloneAttrs(attrs), nil
}

func (e *Engine) WriteGlobalAttr(h backend.Handle, sub backend.Subsystem, attr backend.RawAttr) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("WriteGlobalAttr"); err != nil {
		return err
	}

	s, err := e.session(h)
	if err != nil {
		return err
	}
	if s.mode == backend.ReadOnly {
		return Error.Wrap(backend.ErrReadOnly)
	}
	if err := checkAttr(attr); err != nil {
		return err
	}

	if s.c.Global == nil {
		s.c.Global = make(map[backend.Subsystem][]backend.RawAttr)
	}
	s.c.Global[sub] = putAttr(s.c.Global[sub], attr)
	s.dirty = true
	return nil
}
