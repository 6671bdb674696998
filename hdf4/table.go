package hdf4

import (
	"slices"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/dtype"
)

// TableDataset is a one-dimensional sequence of fixed-size records.
//
// Read and Write exchange whole records as raw bytes; ReadColumns decodes
// them per field.
type TableDataset struct {
	dataset
	fields     []backend.Field
	recordSize int
}

var _ Dataset = (*TableDataset)(nil)

// Column holds the decoded values of one field. A field of order n has n
// consecutive values per record.
type Column struct {
	Field backend.Field
	Data  dtype.Buffer
}

func newTableDataset(f *File, id backend.ObjectID, name, class string, parent *Group) *TableDataset {
	t := &TableDataset{}
	t.init(f, id, name, class, parent)
	t.configure = t.configureTable
	return t
}

func (*TableDataset) isNode() {}

func (t *TableDataset) configureTable(shape backend.Shape) {
	t.fields = slices.Clone(shape.Fields)
	t.recordSize = shape.RecordSize
	t.rank = 1
	if len(t.dims) != 1 {
		t.dims = []int64{0}
	}
	t.maxDims = []int64{backend.Unlimited}
	t.native = backend.TypeUChar8
	t.dt = dtype.Compound(int32(t.recordSize))
	t.sel = Selection{
		Start: []int64{0},
		Count: []int64{t.dims[0]},
		Index: [3]int{0, 1, 2},
	}
}

// Fields returns the record layout.
func (t *TableDataset) Fields() []backend.Field {
	if t.Init() != nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.fields)
}

// RecordSize returns the size of one record in bytes.
func (t *TableDataset) RecordSize() int {
	if t.Init() != nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recordSize
}

// Records returns the number of records.
func (t *TableDataset) Records() int64 {
	if dims := t.Dims(); len(dims) == 1 {
		return dims[0]
	}
	return 0
}

// Read reads the selected records.
func (t *TableDataset) Read() (dtype.Buffer, error) {
	return t.ReadSelection(t.Selection())
}

// ReadSelection returns the raw bytes of the records selected by s.
func (t *TableDataset) ReadSelection(s Selection) (dtype.Buffer, error) {
	raw, err := t.readRaw(s)
	if err != nil {
		return dtype.Buffer{}, err
	}
	return dtype.Buffer{Type: backend.TypeUChar8, Data: raw}, nil
}

// Write writes raw records into the current selection.
func (t *TableDataset) Write(buf dtype.Buffer) error {
	return t.WriteSelection(t.Selection(), buf)
}

// WriteSelection writes the raw records in buf at the position selected by
// s. Writing past the last record appends.
func (t *TableDataset) WriteSelection(s Selection, buf dtype.Buffer) error {
	if err := t.Init(); err != nil {
		return err
	}
	raw, ok := buf.Data.([]byte)
	if !ok {
		return ValidationError.New("table records must be raw bytes, got %T", buf.Data)
	}
	if want := s.NumElements() * int64(t.RecordSize()); int64(len(raw)) != want {
		return ValidationError.New("buffer holds %d bytes, selection needs %d", len(raw), want)
	}
	return t.writeRaw(s, raw)
}

// Append writes records after the last one.
func (t *TableDataset) Append(records []byte) error {
	size := t.RecordSize()
	if size == 0 || len(records)%size != 0 {
		return ValidationError.New("%d bytes is not a whole number of %d-byte records", len(records), size)
	}
	s := Selection{
		Start: []int64{t.Records()},
		Count: []int64{int64(len(records) / size)},
	}
	return t.WriteSelection(s, dtype.Buffer{Type: backend.TypeUChar8, Data: records})
}

// ReadColumns reads the records selected by s and splits them per field.
func (t *TableDataset) ReadColumns(s Selection) ([]Column, error) {
	buf, err := t.ReadSelection(s)
	if err != nil {
		return nil, err
	}
	raw := buf.Data.([]byte)
	size := t.RecordSize()
	if size == 0 {
		return nil, nil
	}
	n := len(raw) / size

	fields := t.Fields()
	cols := make([]Column, 0, len(fields))
	off := 0
	for _, f := range fields {
		width := dtype.Size(f.Type) * max(f.Order, 1)
		packed := make([]byte, 0, n*width)
		for r := range n {
			rec := raw[r*size : (r+1)*size]
			packed = append(packed, rec[off:off+width]...)
		}
		data, err := dtype.Decode(f.Type, packed)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		cols = append(cols, Column{Field: f, Data: data})
		off += width
	}
	return cols, nil
}
