package engine

import (
	"slices"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/dtype"
	"github.com/robert-malhotra/go-hdf4/internal/filter"
	"github.com/robert-malhotra/go-hdf4/internal/layout"
)

// Store persists containers between sessions.
type Store interface {
	// Load returns the container stored at path, or an error wrapping
	// backend.ErrNotFound.
	Load(path string) (*Container, error)
	// Save replaces the container stored at path.
	Save(path string, c *Container) error
}

// Container is the complete content of one container.
type Container struct {
	Objects     []*Object                               `cbor:"1,keyasint,omitempty"`
	Annotations []backend.Annotation                    `cbor:"2,keyasint,omitempty"`
	Global      map[backend.Subsystem][]backend.RawAttr `cbor:"3,keyasint,omitempty"`
}

// NewContainer returns an empty container with both attribute subsystems.
func NewContainer() *Container {
	return &Container{
		Global: map[backend.Subsystem][]backend.RawAttr{
			backend.SubsystemArray: {},
			backend.SubsystemImage: {},
		},
	}
}

// Object is one stored object.
type Object struct {
	ID       backend.ObjectID   `cbor:"1,keyasint"`
	Kind     backend.Kind       `cbor:"2,keyasint"`
	Name     string             `cbor:"3,keyasint,omitempty"`
	Class    string             `cbor:"4,keyasint,omitempty"`
	CoordVar bool               `cbor:"5,keyasint,omitempty"`
	Dims     []int64            `cbor:"6,keyasint,omitempty"`
	MaxDims  []int64            `cbor:"7,keyasint,omitempty"`
	Type     backend.NativeType `cbor:"8,keyasint"`

	NComp     int             `cbor:"9,keyasint,omitempty"`
	Interlace int             `cbor:"10,keyasint,omitempty"`
	Fields    []backend.Field `cbor:"11,keyasint,omitempty"`

	Chunks  []int64 `cbor:"12,keyasint,omitempty"`
	Deflate int     `cbor:"13,keyasint,omitempty"`

	Attrs    []backend.RawAttr  `cbor:"14,keyasint,omitempty"`
	Children []backend.ObjectID `cbor:"15,keyasint,omitempty"`
	Palettes []backend.Palette  `cbor:"16,keyasint,omitempty"`

	// Data is the dense row-major content. Images are stored as
	// [height][width][ncomp].
	Data []byte `cbor:"-"`
}

// ElemSize returns the size in bytes of one element of the object's data
// array: a record for tables, one component value otherwise.
func (o *Object) ElemSize() int {
	if o.Kind == backend.KindTable {
		return RecordSize(o.Fields)
	}
	return dtype.Size(o.Type)
}

// StorageDims returns the dimensions of the dense data array.
func (o *Object) StorageDims() []int64 {
	if o.Kind == backend.KindImage && len(o.Dims) == 2 {
		return []int64{o.Dims[1], o.Dims[0], int64(max(o.NComp, 1))}
	}
	return o.Dims
}

// Filters returns the filter pipeline used to store the object's data.
func (o *Object) Filters() []filter.Spec {
	var specs []filter.Spec
	if o.Deflate > 0 {
		if size := o.ElemSize(); size > 1 {
			specs = append(specs, filter.Spec{ID: filter.IDShuffle, ClientData: []uint32{uint32(size)}})
		}
		specs = append(specs, filter.Spec{ID: filter.IDDeflate, ClientData: []uint32{uint32(o.Deflate)}})
	}
	return append(specs, filter.Spec{ID: filter.IDFletcher32})
}

// ChunkGrid tiles the object's storage array. Objects created without
// chunking are a single chunk.
func (o *Object) ChunkGrid() []layout.Slab {
	dims := o.StorageDims()
	chunks := o.Chunks
	if o.Kind == backend.KindImage && len(chunks) == 2 {
		chunks = []int64{chunks[1], chunks[0], int64(max(o.NComp, 1))}
	}
	return layout.Grid(dims, chunks)
}

// RecordSize returns the packed size of one record of fields.
func RecordSize(fields []backend.Field) int {
	n := 0
	for _, f := range fields {
		n += dtype.Size(f.Type) * max(f.Order, 1)
	}
	return n
}

// Clone returns a deep copy of c.
func (c *Container) Clone() *Container {
	out := &Container{
		Objects:     make([]*Object, len(c.Objects)),
		Annotations: slices.Clone(c.Annotations),
	}
	for i, o := range c.Objects {
		out.Objects[i] = o.Clone()
	}
	if c.Global != nil {
		out.Global = make(map[backend.Subsystem][]backend.RawAttr, len(c.Global))
		for s, attrs := range c.Global {
			out.Global[s] = cloneAttrs(attrs)
		}
	}
	return out
}

// Clone returns a deep copy of o.
func (o *Object) Clone() *Object {
	out := *o
	out.Dims = slices.Clone(o.Dims)
	out.MaxDims = slices.Clone(o.MaxDims)
	out.Fields = slices.Clone(o.Fields)
	out.Chunks = slices.Clone(o.Chunks)
	out.Attrs = cloneAttrs(o.Attrs)
	out.Children = slices.Clone(o.Children)
	out.Data = slices.Clone(o.Data)
	if o.Palettes != nil {
		out.Palettes = make([]backend.Palette, len(o.Palettes))
		for i, p := range o.Palettes {
			p.Data = slices.Clone(p.Data)
			out.Palettes[i] = p
		}
	}
	return &out
}

func cloneAttrs(attrs []backend.RawAttr) []backend.RawAttr {
	if attrs == nil {
		return nil
	}
	out := make([]backend.RawAttr, len(attrs))
	for i, a := range attrs {
		a.Data = slices.Clone(a.Data)
		out[i] = a
	}
	return out
}
