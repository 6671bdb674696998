package hdf4

import (
	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/dtype"
)

// coordSuffix marks arrays holding dimension scale values.
const coordSuffix = " (dimension)"

// ArrayDataset is an N-dimensional array of numbers or characters.
type ArrayDataset struct {
	dataset
	coordVar bool
}

var _ Dataset = (*ArrayDataset)(nil)

func newArrayDataset(f *File, id backend.ObjectID, name string, coordVar bool, parent *Group) *ArrayDataset {
	if coordVar {
		name += coordSuffix
	}
	a := &ArrayDataset{coordVar: coordVar}
	a.init(f, id, name, "", parent)
	a.configure = a.configureArray
	a.observe = a.observeFill
	return a
}

func (*ArrayDataset) isNode() {}

// IsCoordVar reports whether the array holds dimension scale values.
func (a *ArrayDataset) IsCoordVar() bool { return a.coordVar }

// configureArray selects the whole first axis and, for text arrays, one
// column of the second. Axes beyond the second select a single plane.
func (a *ArrayDataset) configureArray(shape backend.Shape) {
	if a.rank <= 0 || len(a.dims) == 0 {
		a.rank = 1
		a.dims = []int64{1}
	}
	if len(a.maxDims) != a.rank {
		a.maxDims = append([]int64(nil), a.dims...)
	}

	start := make([]int64, a.rank)
	count := make([]int64, a.rank)
	for i := range count {
		count[i] = 1
	}
	count[0] = a.dims[0]
	if a.rank > 1 {
		count[1] = a.dims[1]
		if a.dt.IsText() {
			count[1] = 1
		}
	}
	a.sel = Selection{Start: start, Count: count, Index: [3]int{0, 1, 2}}
}

// Read reads the current selection.
func (a *ArrayDataset) Read() (dtype.Buffer, error) {
	return a.ReadSelection(a.Selection())
}

// ReadSelection reads the elements selected by s in row-major order.
func (a *ArrayDataset) ReadSelection(s Selection) (dtype.Buffer, error) {
	raw, err := a.readRaw(s)
	if err != nil {
		return dtype.Buffer{}, err
	}
	buf, err := dtype.Decode(a.NativeType(), raw)
	if err != nil {
		return dtype.Buffer{}, Error.Wrap(err)
	}
	return buf, nil
}

// Write writes buf into the current selection.
func (a *ArrayDataset) Write(buf dtype.Buffer) error {
	return a.WriteSelection(a.Selection(), buf)
}

// WriteSelection writes buf into the region selected by s. On an array with
// an unlimited first axis the region may lie past the current extent.
func (a *ArrayDataset) WriteSelection(s Selection, buf dtype.Buffer) error {
	if err := a.Init(); err != nil {
		return err
	}
	raw, err := a.encode(buf, s.NumElements())
	if err != nil {
		return err
	}
	return a.writeRaw(s, raw)
}
