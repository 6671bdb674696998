package hdf4

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/dtype"
)

// Dataset is implemented by *ArrayDataset, *ImageDataset and
// *TableDataset.
//
// Shape information is fetched from the engine on first use. Init does so
// explicitly; every accessor calls it.
type Dataset interface {
	Node

	Init() error
	Rank() int
	Dims() []int64
	MaxDims() []int64
	Datatype() dtype.Datatype
	NativeType() backend.NativeType

	// Selection returns a copy of the current selection.
	Selection() Selection
	SetSelection(s Selection) error

	Read() (dtype.Buffer, error)
	ReadSelection(s Selection) (dtype.Buffer, error)
	Write(buf dtype.Buffer) error
	WriteSelection(s Selection, buf dtype.Buffer) error
}

// dataset holds the shape state shared by the dataset kinds.
type dataset struct {
	object

	mu          sync.Mutex
	inited      bool
	rank        int
	dims        []int64
	maxDims     []int64
	native      backend.NativeType
	dt          dtype.Datatype
	sel         Selection
	chunks      []int64
	compression string
	fill        any

	// configure derives kind-specific state and the default selection.
	configure func(shape backend.Shape)
}

// Init fetches the shape information and sets the default selection. It is
// a no-op once it has succeeded.
func (d *dataset) Init() error {
	d.mu.Lock()
	inited := d.inited
	d.mu.Unlock()
	if inited {
		return nil
	}

	shape, err := d.shape()
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inited {
		return nil
	}
	d.apply(shape)
	d.configure(shape)
	d.inited = true
	return nil
}

func (d *dataset) shape() (backend.Shape, error) {
	var shape backend.Shape
	err := d.file.withObject(d.id, backend.ReadOnly, func(oh backend.ObjectHandle) error {
		var err error
		shape, err = d.file.b.ShapeInfo(oh)
		return err
	})
	if err != nil {
		return shape, Error.Wrap(fmt.Errorf("shape of %s: %w", d.id, err))
	}
	return shape, nil
}

func (d *dataset) apply(shape backend.Shape) {
	d.rank = shape.Rank
	d.dims = slices.Clone(shape.Dims)
	d.maxDims = slices.Clone(shape.MaxDims)
	d.native = shape.Type
	d.dt = dtype.FromNative(shape.Type)
	d.chunks = slices.Clone(shape.Chunks)
	d.compression = shape.Compression
}

// refresh reloads the extents after a write, keeping the selection.
func (d *dataset) refresh() error {
	shape, err := d.shape()
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dims = slices.Clone(shape.Dims)
	d.maxDims = slices.Clone(shape.MaxDims)
	return nil
}

// Rank returns the number of dimensions, or 0 if the shape is unavailable.
func (d *dataset) Rank() int {
	if d.Init() != nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rank
}

// Dims returns the current extents.
func (d *dataset) Dims() []int64 {
	if d.Init() != nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.dims)
}

// MaxDims returns the maximum extents. backend.Unlimited marks an
// extendable axis.
func (d *dataset) MaxDims() []int64 {
	if d.Init() != nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.maxDims)
}

// Datatype returns the element datatype.
func (d *dataset) Datatype() dtype.Datatype {
	if d.Init() != nil {
		return dtype.Datatype{}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dt
}

// NativeType returns the engine type code of the elements.
func (d *dataset) NativeType() backend.NativeType {
	if d.Init() != nil {
		return backend.TypeNone
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.native
}

// Chunks returns the chunk dimensions, or nil for contiguous storage.
func (d *dataset) Chunks() []int64 {
	if d.Init() != nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.chunks)
}

// Compression describes the storage filters, "none" when uncompressed.
func (d *dataset) Compression() string {
	if d.Init() != nil {
		return ""
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.compression
}

// Selection returns a copy of the current selection.
func (d *dataset) Selection() Selection {
	if d.Init() != nil {
		return Selection{}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sel.Clone()
}

// SetSelection replaces the current selection after validating it.
func (d *dataset) SetSelection(s Selection) error {
	if err := d.Init(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := s.Validate(d.dims); err != nil {
		return err
	}
	d.sel = s.Clone()
	return nil
}

// growable reports whether writes may extend the first axis.
func (d *dataset) growable() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.maxDims) > 0 && d.maxDims[0] == backend.Unlimited
}

// readRaw reads the bytes selected by s.
func (d *dataset) readRaw(s Selection) ([]byte, error) {
	if err := d.Init(); err != nil {
		return nil, err
	}
	dims := d.Dims()
	if product(dims) == 0 {
		return []byte{}, nil
	}
	if err := s.Validate(dims); err != nil {
		return nil, err
	}

	var raw []byte
	err := d.file.withObject(d.id, backend.ReadOnly, func(oh backend.ObjectHandle) error {
		var err error
		raw, err = d.file.b.ReadRaw(oh, s.Start, s.Stride, s.Count)
		return err
	})
	if err != nil {
		return nil, Error.Wrap(fmt.Errorf("reading %s: %w", d.id, err))
	}
	return raw, nil
}

// writeRaw writes raw into the region selected by s, then reloads the
// extents when the dataset may have grown.
func (d *dataset) writeRaw(s Selection, raw []byte) error {
	if err := d.file.checkWritable(); err != nil {
		return err
	}
	if err := d.Init(); err != nil {
		return err
	}
	growable := d.growable()
	if err := s.validate(d.Dims(), growable); err != nil {
		return err
	}

	err := d.file.withObject(d.id, backend.ReadWrite, func(oh backend.ObjectHandle) error {
		return d.file.b.WriteRaw(oh, s.Start, s.Stride, s.Count, raw)
	})
	if err != nil {
		return Error.Wrap(fmt.Errorf("writing %s: %w", d.id, err))
	}
	if growable {
		return d.refresh()
	}
	return nil
}

// encode converts buf to the stored representation of the dataset.
func (d *dataset) encode(buf dtype.Buffer, want int64) ([]byte, error) {
	native := d.NativeType()
	if dtype.Size(buf.Type) != dtype.Size(native) || dtype.IsChar(buf.Type) != dtype.IsChar(native) {
		return nil, ValidationError.New("buffer type %d does not match dataset type %d", buf.Type, native)
	}
	if int64(buf.Len()) != want {
		return nil, ValidationError.New("buffer holds %d elements, selection needs %d", buf.Len(), want)
	}
	raw, err := dtype.Encode(dtype.Buffer{Type: native, Data: buf.Data})
	if err != nil {
		return nil, ValidationError.Wrap(err)
	}
	return raw, nil
}

// FillValue returns the value of the fillValue or _FillValue attribute, or
// nil if there is none.
func (d *dataset) FillValue() any {
	if _, err := d.Metadata(); err != nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fill
}

func (d *dataset) observeFill(attrs []*Attribute) {
	for _, a := range attrs {
		if !strings.EqualFold(a.Name, "fillValue") && !strings.EqualFold(a.Name, "_FillValue") {
			continue
		}
		if v, ok := a.first(); ok {
			d.mu.Lock()
			d.fill = v
			d.mu.Unlock()
		}
	}
}

func product(dims []int64) int64 {
	if len(dims) == 0 {
		return 0
	}
	n := int64(1)
	for _, d := range dims {
		n *= d
	}
	return n
}
