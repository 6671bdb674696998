// Package layout moves rectangular, strided selections between a dense
// row-major array and a packed buffer, and tiles arrays into chunks.
//
// A [Slab] selects count[d] elements along each axis d, starting at
// start[d] and advancing stride[d] elements at a time. [Extract] gathers a
// slab into a packed buffer; [Insert] scatters a packed buffer back into the
// array. Both recurse through the axes and copy contiguously on the
// innermost axis when its stride is 1.
//
// [Grid] tiles an array of the given dimensions into chunks of fixed
// dimensions. Edge chunks are clipped to the array bounds:
//
//	for _, c := range layout.Grid(dims, chunkDims) {
//		block, err := layout.Extract(data, dims, c, elemSize)
//		...
//	}
package layout
