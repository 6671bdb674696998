package layout

import (
	"errors"
	"fmt"
)

// Errors returned for invalid selections.
var (
	ErrRank        = errors.New("selection rank does not match dimensions")
	ErrOutOfBounds = errors.New("selection out of bounds")
	ErrSize        = errors.New("buffer size does not match selection")
)

// Slab is a strided rectangular selection.
// A nil Stride means stride 1 on every axis.
type Slab struct {
	Start  []int64
	Stride []int64
	Count  []int64
}

// Full returns the slab covering every element of dims.
func Full(dims []int64) Slab {
	return Slab{
		Start: make([]int64, len(dims)),
		Count: append([]int64(nil), dims...),
	}
}

// NumElements returns the number of elements the slab selects.
func (s Slab) NumElements() int64 {
	return Product(s.Count)
}

func (s Slab) stride(d int) int64 {
	if s.Stride == nil {
		return 1
	}
	return s.Stride[d]
}

// Check validates the slab against dims.
func (s Slab) Check(dims []int64) error {
	n := len(dims)
	if len(s.Start) != n || len(s.Count) != n || (s.Stride != nil && len(s.Stride) != n) {
		return fmt.Errorf("%w: rank %d, start %d, count %d, stride %d",
			ErrRank, n, len(s.Start), len(s.Count), len(s.Stride))
	}

	for d := range n {
		if s.Count[d] == 0 {
			continue
		}
		if s.Start[d] < 0 || s.Count[d] < 0 || s.stride(d) < 1 {
			return fmt.Errorf("%w: axis %d start=%d count=%d stride=%d",
				ErrOutOfBounds, d, s.Start[d], s.Count[d], s.stride(d))
		}
		if last := s.Start[d] + (s.Count[d]-1)*s.stride(d); last >= dims[d] {
			return fmt.Errorf("%w: axis %d last index %d, size %d", ErrOutOfBounds, d, last, dims[d])
		}
	}
	return nil
}

// Product returns the product of dims, 1 for rank 0.
func Product(dims []int64) int64 {
	n := int64(1)
	for _, d := range dims {
		n *= d
	}
	return n
}

// Extract gathers the slab from data, a dense row-major array of dims.
func Extract(data []byte, dims []int64, s Slab, elemSize int) ([]byte, error) {
	if err := s.Check(dims); err != nil {
		return nil, err
	}
	if int64(len(data)) < Product(dims)*int64(elemSize) {
		return nil, fmt.Errorf("%w: have %d bytes for dims %v", ErrSize, len(data), dims)
	}

	result := make([]byte, s.NumElements()*int64(elemSize))
	if len(dims) == 0 {
		copy(result, data[:elemSize])
		return result, nil
	}
	if len(result) == 0 {
		return result, nil
	}

	w := walker{
		dims:     dims,
		slab:     s,
		elemSize: int64(elemSize),
		src:      strides(dims, elemSize),
		dst:      strides(s.Count, elemSize),
	}
	w.walk(0, 0, 0, func(arrayOff, packedOff, n int64) {
		copy(result[packedOff:packedOff+n], data[arrayOff:arrayOff+n])
	}, func(arrayOff, packedOff int64) {
		copy(result[packedOff:packedOff+w.elemSize], data[arrayOff:arrayOff+w.elemSize])
	})
	return result, nil
}

// Insert scatters packed into the slab of data, a dense row-major array of
// dims. packed must hold exactly the slab's elements.
func Insert(data []byte, dims []int64, s Slab, elemSize int, packed []byte) error {
	if err := s.Check(dims); err != nil {
		return err
	}
	if want := s.NumElements() * int64(elemSize); int64(len(packed)) != want {
		return fmt.Errorf("%w: have %d bytes, selection needs %d", ErrSize, len(packed), want)
	}
	if int64(len(data)) < Product(dims)*int64(elemSize) {
		return fmt.Errorf("%w: have %d bytes for dims %v", ErrSize, len(data), dims)
	}
	if len(dims) == 0 {
		copy(data[:elemSize], packed)
		return nil
	}
	if len(packed) == 0 {
		return nil
	}

	w := walker{
		dims:     dims,
		slab:     s,
		elemSize: int64(elemSize),
		src:      strides(dims, elemSize),
		dst:      strides(s.Count, elemSize),
	}
	w.walk(0, 0, 0, func(arrayOff, packedOff, n int64) {
		copy(data[arrayOff:arrayOff+n], packed[packedOff:packedOff+n])
	}, func(arrayOff, packedOff int64) {
		copy(data[arrayOff:arrayOff+w.elemSize], packed[packedOff:packedOff+w.elemSize])
	})
	return nil
}

// strides returns row-major byte strides for dims.
func strides(dims []int64, elemSize int) []int64 {
	n := len(dims)
	out := make([]int64, n)
	if n == 0 {
		return out
	}
	out[n-1] = int64(elemSize)
	for d := n - 2; d >= 0; d-- {
		out[d] = out[d+1] * dims[d+1]
	}
	return out
}

type walker struct {
	dims     []int64
	slab     Slab
	elemSize int64
	src, dst []int64
}

// walk visits the slab axis by axis. On the innermost axis it calls run for
// a contiguous row when the stride is 1, and elem per element otherwise.
func (w *walker) walk(dim int, arrayOff, packedOff int64, run func(arrayOff, packedOff, n int64), elem func(arrayOff, packedOff int64)) {
	start := w.slab.Start[dim]
	stride := w.slab.stride(dim)
	count := w.slab.Count[dim]

	if dim == len(w.dims)-1 {
		base := arrayOff + start*w.src[dim]
		if stride == 1 {
			run(base, packedOff, count*w.elemSize)
			return
		}
		for i := range count {
			elem(base+i*stride*w.src[dim], packedOff+i*w.elemSize)
		}
		return
	}

	for i := range count {
		w.walk(dim+1,
			arrayOff+(start+i*stride)*w.src[dim],
			packedOff+i*w.dst[dim],
			run, elem)
	}
}

// Resize copies a dense array of oldDims into a new array of newDims,
// keeping the overlapping region and filling the rest with fill. fill is one
// element; nil means zero.
func Resize(data []byte, oldDims, newDims []int64, elemSize int, fill []byte) ([]byte, error) {
	if len(oldDims) != len(newDims) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrRank, len(oldDims), len(newDims))
	}

	out := make([]byte, Product(newDims)*int64(elemSize))
	if len(fill) == elemSize && !allZero(fill) {
		for off := 0; off < len(out); off += elemSize {
			copy(out[off:], fill)
		}
	}

	overlap := make([]int64, len(oldDims))
	for d := range oldDims {
		overlap[d] = min(oldDims[d], newDims[d])
	}
	if Product(overlap) == 0 {
		return out, nil
	}

	s := Slab{Start: make([]int64, len(overlap)), Count: overlap}
	block, err := Extract(data, oldDims, s, elemSize)
	if err != nil {
		return nil, err
	}
	if err := Insert(out, newDims, s, elemSize, block); err != nil {
		return nil, err
	}
	return out, nil
}

func allZero(b []byte) bool {
	for _, x := range b {
		if x != 0 {
			return false
		}
	}
	return true
}
