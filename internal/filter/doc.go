// Package filter implements the reversible data filters applied to stored
// dataset blocks.
//
// Filters are applied in order when encoding and in reverse order when
// decoding. For a pipeline [Shuffle, Deflate, Fletcher32], encoding shuffles
// the bytes, compresses them and appends a checksum; decoding verifies and
// strips the checksum, decompresses and unshuffles.
//
// # Filters
//
//   - Deflate: zlib compression via [Deflate], level 1-9.
//   - Shuffle: byte shuffling via [Shuffle], grouping byte positions of
//     multi-byte elements to improve compression.
//   - Fletcher32: integrity checksum via [Fletcher32], appended
//     little-endian to the data.
//
// # Pipelines
//
// A [Pipeline] is built from a list of [Spec] values, typically persisted
// alongside the data:
//
//	p, err := filter.NewPipeline([]filter.Spec{
//		{ID: filter.IDShuffle, ClientData: []uint32{4}},
//		{ID: filter.IDDeflate, ClientData: []uint32{6}},
//	})
//	stored, err := p.Encode(data)
//	data, err = p.Decode(stored, 0)
//
// Each stored block may carry a mask; if bit i is set, filter i was not
// applied to that block and is skipped in both directions.
package filter
