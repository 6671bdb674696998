package layout

import "fmt"

// Grid tiles dims into chunks of chunkDims in row-major chunk order. Edge
// chunks are clipped. A chunk shape of the wrong rank, or with a
// non-positive axis, yields a single chunk covering the whole array.
func Grid(dims, chunkDims []int64) []Slab {
	if Product(dims) == 0 {
		return nil
	}
	if !validChunks(dims, chunkDims) {
		return []Slab{Full(dims)}
	}

	n := len(dims)
	counts := make([]int64, n)
	for d := range n {
		counts[d] = (dims[d] + chunkDims[d] - 1) / chunkDims[d]
	}

	var out []Slab
	idx := make([]int64, n)
	for {
		s := Slab{Start: make([]int64, n), Count: make([]int64, n)}
		for d := range n {
			s.Start[d] = idx[d] * chunkDims[d]
			s.Count[d] = min(chunkDims[d], dims[d]-s.Start[d])
		}
		out = append(out, s)

		d := n - 1
		for ; d >= 0; d-- {
			idx[d]++
			if idx[d] < counts[d] {
				break
			}
			idx[d] = 0
		}
		if d < 0 {
			return out
		}
	}
}

func validChunks(dims, chunkDims []int64) bool {
	if len(dims) == 0 || len(chunkDims) != len(dims) {
		return false
	}
	for _, c := range chunkDims {
		if c <= 0 {
			return false
		}
	}
	return true
}

// Key returns a stable key for the chunk starting at start, e.g. "0,16,32".
func Key(start []int64) string {
	buf := make([]byte, 0, len(start)*4)
	for i, s := range start {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = fmt.Appendf(buf, "%d", s)
	}
	return string(buf)
}
