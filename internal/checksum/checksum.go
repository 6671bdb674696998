// Package checksum implements the checksums guarding stored records and
// data blocks: Jenkins lookup3 for records and Fletcher-32 for data.
package checksum

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMismatch is returned by Open when the trailing checksum is wrong.
var ErrMismatch = errors.New("checksum mismatch")

// Size is the length of a sealed checksum trailer.
const Size = 4

// Lookup3 computes the Jenkins lookup3 (hashlittle) hash with a zero seed.
func Lookup3(data []byte) uint32 {
	initval := uint32(0xdeadbeef) + uint32(len(data))
	a, b, c := initval, initval, initval
	k := data

	// The last 1-12 bytes always go through the final mix, so the loop runs
	// only while more than 12 remain.
	for len(k) > 12 {
		a += binary.LittleEndian.Uint32(k[0:])
		b += binary.LittleEndian.Uint32(k[4:])
		c += binary.LittleEndian.Uint32(k[8:])
		a, b, c = lookup3Mix(a, b, c)
		k = k[12:]
	}

	if len(k) == 0 {
		return c
	}

	var tail [12]byte
	copy(tail[:], k)
	a += binary.LittleEndian.Uint32(tail[0:])
	b += binary.LittleEndian.Uint32(tail[4:])
	c += binary.LittleEndian.Uint32(tail[8:])

	_, _, c = lookup3Final(a, b, c)
	return c
}

func lookup3Mix(a, b, c uint32) (uint32, uint32, uint32) {
	a -= c
	a ^= rotl32(c, 4)
	c += b
	b -= a
	b ^= rotl32(a, 6)
	a += c
	c -= b
	c ^= rotl32(b, 8)
	b += a
	a -= c
	a ^= rotl32(c, 16)
	c += b
	b -= a
	b ^= rotl32(a, 19)
	a += c
	c -= b
	c ^= rotl32(b, 4)
	b += a
	return a, b, c
}

func lookup3Final(a, b, c uint32) (uint32, uint32, uint32) {
	c ^= b
	c -= rotl32(b, 14)
	a ^= c
	a -= rotl32(c, 11)
	b ^= a
	b -= rotl32(a, 25)
	c ^= b
	c -= rotl32(b, 16)
	a ^= c
	a -= rotl32(c, 4)
	b ^= a
	b -= rotl32(a, 14)
	c ^= b
	c -= rotl32(b, 24)
	return a, b, c
}

func rotl32(x uint32, k uint) uint32 {
	return (x << k) | (x >> (32 - k))
}

// Fletcher32 computes the Fletcher-32 checksum over little-endian 16-bit
// words. An odd trailing byte is zero-padded.
func Fletcher32(data []byte) uint32 {
	var sum1, sum2 uint32

	i := 0
	for ; i+1 < len(data); i += 2 {
		sum1 = (sum1 + uint32(binary.LittleEndian.Uint16(data[i:]))) % 65535
		sum2 = (sum2 + sum1) % 65535
	}
	if i < len(data) {
		sum1 = (sum1 + uint32(data[i])) % 65535
		sum2 = (sum2 + sum1) % 65535
	}

	return (sum2 << 16) | sum1
}

// Func is a 32-bit checksum function.
type Func func([]byte) uint32

// Seal returns data with its checksum appended little-endian.
func Seal(sum Func, data []byte) []byte {
	out := make([]byte, len(data)+Size)
	copy(out, data)
	binary.LittleEndian.PutUint32(out[len(data):], sum(data))
	return out
}

// Open verifies the trailing checksum written by Seal and returns the data
// without it.
func Open(sum Func, sealed []byte) ([]byte, error) {
	if len(sealed) < Size {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the trailer", ErrMismatch, len(sealed))
	}

	data := sealed[:len(sealed)-Size]
	stored := binary.LittleEndian.Uint32(sealed[len(data):])
	if computed := sum(data); stored != computed {
		return nil, fmt.Errorf("%w: stored=0x%08x computed=0x%08x", ErrMismatch, stored, computed)
	}
	return data, nil
}
