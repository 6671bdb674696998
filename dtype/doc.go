// Package dtype bridges generic datatype descriptors and native type codes.
//
// A [Datatype] is the generic quad {class, size, byte order, sign}. Engines
// speak in [backend.NativeType] codes. The bridge maps between the two:
//
//	Native code       | Datatype
//	------------------|------------------------------------------
//	CHAR8 / UCHAR8    | Char, 1 byte, Signed / Unsigned
//	INT8 .. INT64     | Integer, 1/2/4/8 bytes, Signed
//	UINT8 .. UINT64   | Integer, 1/2/4/8 bytes, Unsigned
//	FLOAT32 / FLOAT64 | Float, 4/8 bytes, no sign
//	anything else     | NoClass
//
// The order flags carried by a code select the byte order: FlagNative is
// host order, FlagLittleEndian is little-endian and no flag is big-endian.
//
// # Buffers
//
// [Allocate] returns a zeroed [Buffer] of the element type for a code. The
// storage has no unsigned element types, so unsigned codes allocate the
// signed slice of the same width; use [IsUnsigned] and [Buffer.Unsigned] to
// reinterpret. Character codes allocate []byte.
//
// Use [Decode] to turn raw bytes from an engine into a Buffer and [Encode]
// for the reverse:
//
//	buf, err := dtype.Decode(backend.TypeFloat32, raw)
//	raw, err := dtype.Encode(buf)
package dtype
