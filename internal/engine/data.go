package engine

import (
	"slices"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/dtype"
	"github.com/robert-malhotra/go-hdf4/internal/layout"
)

// storageSlab maps a selection in object axes onto the storage array.
// Image selections are (width, height); storage is [height][width][ncomp].
func storageSlab(o *Object, start, stride, count []int64) (layout.Slab, error) {
	if start == nil && count == nil {
		return layout.Full(o.StorageDims()), nil
	}

	rank := len(o.Dims)
	if len(start) != rank || len(count) != rank || (stride != nil && len(stride) != rank) {
		return layout.Slab{}, errorf("%s: selection rank %d/%d/%d, object rank %d: %w",
			o.ID, len(start), len(stride), len(count), rank, layout.ErrRank)
	}
	if stride == nil {
		stride = slices.Repeat([]int64{1}, rank)
	}

	if o.Kind == backend.KindImage && rank == 2 {
		return layout.Slab{
			Start:  []int64{start[1], start[0], 0},
			Stride: []int64{stride[1], stride[0], 1},
			Count:  []int64{count[1], count[0], int64(max(o.NComp, 1))},
		}, nil
	}
	return layout.Slab{
		Start:  slices.Clone(start),
		Stride: slices.Clone(stride),
		Count:  slices.Clone(count),
	}, nil
}

func (e *Engine) ReadRaw(oh backend.ObjectHandle, start, stride, count []int64) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("ReadRaw"); err != nil {
		return nil, err
	}

	a, err := e.attachment(oh)
	if err != nil {
		return nil, err
	}
	o := a.obj
	if o.Kind == backend.KindGroup {
		return nil, errorf("read %s: groups hold no data: %w", o.ID, backend.ErrUnsupported)
	}

	slab, err := storageSlab(o, start, stride, count)
	if err != nil {
		return nil, err
	}
	data, err := layout.Extract(o.Data, o.StorageDims(), slab, o.ElemSize())
	if err != nil {
		return nil, errorf("read %s: %w", o.ID, err)
	}
	return data, nil
}

func (e *Engine) WriteRaw(oh backend.ObjectHandle, start, stride, count []int64, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("WriteRaw"); err != nil {
		return err
	}

	a, err := e.attachment(oh)
	if err != nil {
		return err
	}
	if err := e.writable(a); err != nil {
		return err
	}
	o := a.obj
	if o.Kind == backend.KindGroup {
		return errorf("write %s: groups hold no data: %w", o.ID, backend.ErrUnsupported)
	}

	slab, err := storageSlab(o, start, stride, count)
	if err != nil {
		return err
	}
	if want := slab.NumElements() * int64(o.ElemSize()); int64(len(data)) != want {
		return errorf("write %s: %d bytes for %d: %w", o.ID, len(data), want, backend.ErrShapeMismatch)
	}
	if err := e.grow(o, slab); err != nil {
		return err
	}
	if err := layout.Insert(o.Data, o.StorageDims(), slab, o.ElemSize(), data); err != nil {
		return errorf("write %s: %w", o.ID, err)
	}
	a.s.dirty = true
	return nil
}

// grow extends an unlimited first axis to cover slab.
func (e *Engine) grow(o *Object, slab layout.Slab) error {
	if o.Kind == backend.KindImage || len(o.Dims) == 0 || len(o.MaxDims) == 0 {
		return nil
	}
	if o.MaxDims[0] != backend.Unlimited || slab.Count[0] == 0 {
		return nil
	}

	stride := int64(1)
	if slab.Stride != nil {
		stride = slab.Stride[0]
	}
	last := slab.Start[0] + (slab.Count[0]-1)*stride
	if last < o.Dims[0] {
		return nil
	}

	oldDims := o.StorageDims()
	newDims := slices.Clone(oldDims)
	newDims[0] = last + 1

	grown, err := layout.Resize(o.Data, oldDims, newDims, o.ElemSize(), nil)
	if err != nil {
		return errorf("extend %s: %w", o.ID, err)
	}
	o.Data = grown
	o.Dims[0] = last + 1
	e.log.Debug("extended unlimited dimension",
		zap.Stringer("id", o.ID), zap.Int64("size", o.Dims[0]))
	return nil
}

func (e *Engine) ReadPalette(oh backend.ObjectHandle, index int) (backend.Palette, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("ReadPalette"); err != nil {
		return backend.Palette{}, err
	}

	a, err := e.attachment(oh)
	if err != nil {
		return backend.Palette{}, err
	}
	if index < 0 || index >= len(a.obj.Palettes) {
		return backend.Palette{}, errorf("%s palette %d: %w", a.obj.ID, index, backend.ErrNoPalette)
	}
	p := a.obj.Palettes[index]
	p.Data = slices.Clone(p.Data)
	return p, nil
}

func (e *Engine) WritePalette(oh backend.ObjectHandle, index int, p backend.Palette) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("WritePalette"); err != nil {
		return err
	}

	a, err := e.attachment(oh)
	if err != nil {
		return err
	}
	if err := e.writable(a); err != nil {
		return err
	}
	if a.obj.Kind != backend.KindImage {
		return errorf("%s is a %s: %w", a.obj.ID, a.obj.Kind, backend.ErrUnsupported)
	}
	want := p.Entries * max(p.NComp, 1) * dtype.Size(p.Type)
	if len(p.Data) != want {
		return errorf("palette of %d bytes, want %d: %w", len(p.Data), want, backend.ErrShapeMismatch)
	}
	if index < 0 || index > len(a.obj.Palettes) {
		return errorf("%s palette index %d: %w", a.obj.ID, index, backend.ErrNotFound)
	}

	p.Data = slices.Clone(p.Data)
	if index == len(a.obj.Palettes) {
		a.obj.Palettes = append(a.obj.Palettes, p)
	} else {
		a.obj.Palettes[index] = p
	}
	a.s.dirty = true
	return nil
}

func (e *Engine) CreateObject(h backend.Handle, spec backend.CreateSpec) (backend.ObjectHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enter("CreateObject"); err != nil {
		return 0, err
	}

	s, err := e.session(h)
	if err != nil {
		return 0, err
	}
	if s.mode == backend.ReadOnly {
		return 0, Error.Wrap(backend.ErrReadOnly)
	}

	obj, err := newObject(spec)
	if err != nil {
		return 0, err
	}
	ref, err := s.refs.Alloc(backend.TagOf(spec.Kind))
	if err != nil {
		return 0, Error.Wrap(err)
	}
	obj.ID = backend.ObjectID{Tag: backend.TagOf(spec.Kind), Ref: ref}

	s.c.Objects = append(s.c.Objects, obj)
	s.index[obj.ID] = obj
	s.dirty = true

	e.log.Debug("object created",
		zap.Stringer("id", obj.ID),
		zap.Stringer("kind", obj.Kind),
		zap.String("name", obj.Name))
	return e.attachLocked(h, s, obj, backend.ReadWrite), nil
}

func newObject(spec backend.CreateSpec) (*Object, error) {
	o := &Object{
		Kind:      spec.Kind,
		Name:      spec.Name,
		Class:     spec.Class,
		CoordVar:  spec.CoordVar,
		Dims:      slices.Clone(spec.Dims),
		MaxDims:   slices.Clone(spec.MaxDims),
		Type:      spec.Type,
		NComp:     spec.NComp,
		Interlace: spec.Interlace,
		Fields:    slices.Clone(spec.Fields),
		Chunks:    slices.Clone(spec.Chunks),
		Deflate:   spec.Deflate,
	}

	switch spec.Kind {
	case backend.KindGroup:
		o.Dims, o.MaxDims, o.Type = nil, nil, backend.TypeNone
		return o, nil
	case backend.KindTable:
		if len(o.Fields) == 0 || RecordSize(o.Fields) == 0 {
			return nil, errorf("table %q needs typed fields: %w", spec.Name, backend.ErrShapeMismatch)
		}
		if len(o.Dims) != 1 {
			o.Dims = []int64{0}
		}
		o.MaxDims = []int64{backend.Unlimited}
		o.Type = backend.TypeNone
	case backend.KindImage:
		if len(o.Dims) != 2 {
			return nil, errorf("image %q has rank %d, want 2: %w", spec.Name, len(o.Dims), backend.ErrShapeMismatch)
		}
		o.NComp = max(o.NComp, 1)
		o.MaxDims = slices.Clone(o.Dims)
	case backend.KindArray:
		if len(o.Dims) == 0 {
			return nil, errorf("array %q has rank 0: %w", spec.Name, backend.ErrShapeMismatch)
		}
		if len(o.MaxDims) != len(o.Dims) {
			o.MaxDims = slices.Clone(o.Dims)
		}
	default:
		return nil, errorf("create %s: %w", spec.Kind, backend.ErrUnsupported)
	}

	if o.Kind != backend.KindTable && dtype.Size(o.Type) == 0 {
		return nil, errorf("%q: %w: %d", spec.Name, dtype.ErrUnknownType, o.Type)
	}
	for d, n := range o.Dims {
		if n < 0 || (n == 0 && !(d == 0 && len(o.MaxDims) > 0 && o.MaxDims[0] == backend.Unlimited)) {
			return nil, errorf("%q axis %d has size %d: %w", spec.Name, d, n, backend.ErrShapeMismatch)
		}
	}

	o.Data = make([]byte, layout.Product(o.StorageDims())*int64(o.ElemSize()))
	return o, nil
}
