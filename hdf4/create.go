package hdf4

import (
	"bytes"
	"fmt"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/dtype"
)

// CreateGroup creates an empty group under parent. A nil parent is the
// root group.
func (f *File) CreateGroup(name string, parent *Group, opts ...CreateOption) (*Group, error) {
	o := &createOptions{}
	for _, opt := range opts {
		opt(o)
	}
	parent, err := f.createParent(name, parent)
	if err != nil {
		return nil, err
	}

	spec := backend.CreateSpec{Kind: backend.KindGroup, Name: name, Class: o.class}
	id, err := f.create(spec, parent, func(oh backend.ObjectHandle) error {
		return f.writeAttrs(oh, o.attrs)
	})
	if err != nil {
		return nil, err
	}

	g := newGroup(f, id, name, o.class, parent)
	parent.addMember(g)
	return g, nil
}

// CreateArray creates an array of type t with the given dimensions.
func (f *File) CreateArray(name string, parent *Group, t backend.NativeType, dims []int64, opts ...CreateOption) (*ArrayDataset, error) {
	o := &createOptions{}
	for _, opt := range opts {
		opt(o)
	}
	parent, err := f.createParent(name, parent)
	if err != nil {
		return nil, err
	}
	if len(dims) == 0 {
		return nil, ValidationError.New("array %q has no dimensions", name)
	}
	if dtype.Size(t) == 0 {
		return nil, ValidationError.New("array %q: unknown type %d", name, t)
	}

	attrs := o.attrs
	var fillRaw []byte
	if o.fill != nil {
		fa, err := NewAttribute("_FillValue", t, o.fill)
		if err != nil {
			return nil, err
		}
		fillRaw = fa.Raw
		attrs = append(attrs, fa)
	}

	var raw []byte
	n := product(dims)
	switch {
	case o.data != nil:
		if int64(o.data.Len()) != n {
			return nil, ValidationError.New("array %q: %d elements for %d", name, o.data.Len(), n)
		}
		if raw, err = dtype.Encode(dtype.Buffer{Type: t, Data: o.data.Data}); err != nil {
			return nil, ValidationError.Wrap(err)
		}
	case fillRaw != nil:
		raw = bytes.Repeat(fillRaw, int(n))
	}

	spec := backend.CreateSpec{
		Kind:    backend.KindArray,
		Name:    name,
		Dims:    dims,
		MaxDims: o.maxDims,
		Type:    t,
		Chunks:  o.chunks,
		Deflate: o.deflate,
	}
	id, err := f.create(spec, parent, func(oh backend.ObjectHandle) error {
		if len(raw) > 0 {
			if err := f.b.WriteRaw(oh, nil, nil, nil, raw); err != nil {
				return err
			}
		}
		return f.writeAttrs(oh, attrs)
	})
	if err != nil {
		return nil, err
	}

	a := newArrayDataset(f, id, name, false, parent)
	parent.addMember(a)
	return a, nil
}

// CreateImage creates a width x height image of type t.
func (f *File) CreateImage(name string, parent *Group, t backend.NativeType, width, height int64, opts ...CreateOption) (*ImageDataset, error) {
	o := &createOptions{ncomp: 1}
	for _, opt := range opts {
		opt(o)
	}
	parent, err := f.createParent(name, parent)
	if err != nil {
		return nil, err
	}
	if width < 1 || height < 1 {
		return nil, ValidationError.New("image %q has size %dx%d", name, width, height)
	}
	if dtype.Size(t) == 0 {
		return nil, ValidationError.New("image %q: unknown type %d", name, t)
	}

	var raw []byte
	if o.data != nil {
		if want := width * height * int64(o.ncomp); int64(o.data.Len()) != want {
			return nil, ValidationError.New("image %q: %d elements for %d", name, o.data.Len(), want)
		}
		if raw, err = dtype.Encode(dtype.Buffer{Type: t, Data: o.data.Data}); err != nil {
			return nil, ValidationError.Wrap(err)
		}
	}
	if o.palette != nil {
		if err := checkPalette(*o.palette); err != nil {
			return nil, err
		}
	}

	spec := backend.CreateSpec{
		Kind:      backend.KindImage,
		Name:      name,
		Dims:      []int64{width, height},
		Type:      t,
		NComp:     o.ncomp,
		Interlace: o.interlace,
		Chunks:    o.chunks,
		Deflate:   o.deflate,
	}
	id, err := f.create(spec, parent, func(oh backend.ObjectHandle) error {
		if raw != nil {
			if err := f.b.WriteRaw(oh, nil, nil, nil, raw); err != nil {
				return err
			}
		}
		if o.palette != nil {
			if err := f.b.WritePalette(oh, 0, *o.palette); err != nil {
				return err
			}
		}
		return f.writeAttrs(oh, o.attrs)
	})
	if err != nil {
		return nil, err
	}

	img := newImageDataset(f, id, name, parent)
	parent.addMember(img)
	return img, nil
}

// CreateTable creates an empty table with the given record layout.
// WithData supplies initial records as raw bytes.
func (f *File) CreateTable(name string, parent *Group, fields []backend.Field, opts ...CreateOption) (*TableDataset, error) {
	o := &createOptions{}
	for _, opt := range opts {
		opt(o)
	}
	parent, err := f.createParent(name, parent)
	if err != nil {
		return nil, err
	}
	size := 0
	for _, fd := range fields {
		if dtype.Size(fd.Type) == 0 {
			return nil, ValidationError.New("table %q field %q: unknown type %d", name, fd.Name, fd.Type)
		}
		size += dtype.Size(fd.Type) * max(fd.Order, 1)
	}
	if size == 0 {
		return nil, ValidationError.New("table %q has no fields", name)
	}

	var records []byte
	if o.data != nil {
		raw, ok := o.data.Data.([]byte)
		if !ok || len(raw)%size != 0 {
			return nil, ValidationError.New("table %q: initial records must be whole %d-byte records", name, size)
		}
		records = raw
	}

	spec := backend.CreateSpec{
		Kind:   backend.KindTable,
		Name:   name,
		Class:  o.class,
		Fields: fields,
	}
	id, err := f.create(spec, parent, func(oh backend.ObjectHandle) error {
		if n := int64(len(records) / size); n > 0 {
			if err := f.b.WriteRaw(oh, []int64{0}, nil, []int64{n}, records); err != nil {
				return err
			}
		}
		return f.writeAttrs(oh, o.attrs)
	})
	if err != nil {
		return nil, err
	}

	t := newTableDataset(f, id, name, o.class, parent)
	parent.addMember(t)
	return t, nil
}

// CreateNamedDatatype is not supported by tag/reference containers.
func (f *File) CreateNamedDatatype(name string, dt dtype.Datatype) error {
	return ErrUnsupported
}

// Delete is not supported by tag/reference containers.
func (f *File) Delete(n Node) error {
	return ErrUnsupported
}

// createParent validates a create request and resolves its parent.
func (f *File) createParent(name string, parent *Group) (*Group, error) {
	if err := f.checkWritable(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, ValidationError.New("object name is empty")
	}
	if parent == nil {
		return f.root, nil
	}
	if parent.file != f {
		return nil, ValidationError.New("parent group %s belongs to another file", parent.id)
	}
	return parent.Resolve(), nil
}

// checkPalette rejects a palette whose data does not hold Entries entries
// of NComp components.
func checkPalette(p backend.Palette) error {
	size := dtype.Size(p.Type)
	if size == 0 {
		return ValidationError.New("palette: unknown type %d", p.Type)
	}
	if want := p.Entries * max(p.NComp, 1) * size; p.Entries < 1 || len(p.Data) != want {
		return ValidationError.New("palette: %d bytes for %d entries of %d components", len(p.Data), p.Entries, max(p.NComp, 1))
	}
	return nil
}

// create makes a new object, links it into parent and calls fill while the
// new object is attached. Requests are validated by the caller; fill only
// performs backend writes.
func (f *File) create(spec backend.CreateSpec, parent *Group, fill func(oh backend.ObjectHandle) error) (backend.ObjectID, error) {
	oh, err := f.b.CreateObject(f.h, spec)
	if err != nil {
		return backend.ObjectID{}, Error.Wrap(fmt.Errorf("creating %s %q: %w", spec.Kind, spec.Name, err))
	}
	defer f.detach(oh)

	id, err := f.b.ObjectID(oh)
	if err != nil {
		return backend.ObjectID{}, Error.Wrap(fmt.Errorf("creating %s %q: %w", spec.Kind, spec.Name, err))
	}

	if !parent.IsRoot() {
		err := f.withObject(parent.id, backend.ReadWrite, func(poh backend.ObjectHandle) error {
			return f.b.InsertChild(poh, id)
		})
		if err != nil {
			return id, Error.Wrap(fmt.Errorf("linking %s into %s: %w", id, parent.id, err))
		}
	}

	if fill != nil {
		if err := fill(oh); err != nil {
			return id, Error.Wrap(fmt.Errorf("initialising %s: %w", id, err))
		}
	}
	f.reg.Register(id)
	return id, nil
}

func (f *File) writeAttrs(oh backend.ObjectHandle, attrs []*Attribute) error {
	for _, a := range attrs {
		if err := f.b.WriteAttr(oh, a.rawAttr()); err != nil {
			return fmt.Errorf("attribute %q: %w", a.Name, err)
		}
	}
	return nil
}
