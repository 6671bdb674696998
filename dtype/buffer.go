package dtype

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/robert-malhotra/go-hdf4/backend"
)

// Buffer errors.
var (
	ErrUnknownType  = errors.New("unknown native type code")
	ErrRaggedBuffer = errors.New("raw data is not a whole number of elements")
	ErrBufferType   = errors.New("buffer element type does not match native type")
)

// Buffer is a typed, flat element buffer.
//
// Data holds []byte for character codes and []int8, []int16, []int32,
// []int64, []float32 or []float64 for numeric codes. Unsigned codes use the
// signed slice of the same width.
type Buffer struct {
	Type backend.NativeType
	Data any
}

// Allocate returns a zeroed buffer of n elements of type t. An unknown code
// or n <= 0 yields an empty buffer.
func Allocate(t backend.NativeType, n int) Buffer {
	if n <= 0 {
		return Buffer{Type: t}
	}

	var data any
	switch t.Base() {
	case backend.TypeChar8, backend.TypeUChar8:
		data = make([]byte, n)
	case backend.TypeInt8, backend.TypeUInt8:
		data = make([]int8, n)
	case backend.TypeInt16, backend.TypeUInt16:
		data = make([]int16, n)
	case backend.TypeInt32, backend.TypeUInt32:
		data = make([]int32, n)
	case backend.TypeInt64, backend.TypeUInt64:
		data = make([]int64, n)
	case backend.TypeFloat32:
		data = make([]float32, n)
	case backend.TypeFloat64:
		data = make([]float64, n)
	default:
		return Buffer{Type: t}
	}
	return Buffer{Type: t, Data: data}
}

// Len returns the number of elements in the buffer.
func (b Buffer) Len() int {
	switch v := b.Data.(type) {
	case []byte:
		return len(v)
	case []int8:
		return len(v)
	case []int16:
		return len(v)
	case []int32:
		return len(v)
	case []int64:
		return len(v)
	case []float32:
		return len(v)
	case []float64:
		return len(v)
	default:
		return 0
	}
}

// IsEmpty reports whether the buffer holds no elements.
func (b Buffer) IsEmpty() bool {
	return b.Len() == 0
}

// Decode converts raw stored bytes into a buffer of type t, honouring the
// byte order flags of t.
func Decode(t backend.NativeType, raw []byte) (Buffer, error) {
	size := Size(t)
	if size == 0 {
		return Buffer{}, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
	if len(raw)%size != 0 {
		return Buffer{}, fmt.Errorf("%w: %d bytes for %d-byte elements", ErrRaggedBuffer, len(raw), size)
	}

	n := len(raw) / size
	buf := Allocate(t, n)
	if n == 0 {
		return buf, nil
	}
	order := ByteOrder(t)

	switch v := buf.Data.(type) {
	case []byte:
		copy(v, raw)
	case []int8:
		for i := range v {
			v[i] = int8(raw[i])
		}
	case []int16:
		for i := range v {
			v[i] = int16(order.Uint16(raw[i*2:]))
		}
	case []int32:
		for i := range v {
			v[i] = int32(order.Uint32(raw[i*4:]))
		}
	case []int64:
		for i := range v {
			v[i] = int64(order.Uint64(raw[i*8:]))
		}
	case []float32:
		for i := range v {
			v[i] = math.Float32frombits(order.Uint32(raw[i*4:]))
		}
	case []float64:
		for i := range v {
			v[i] = math.Float64frombits(order.Uint64(raw[i*8:]))
		}
	}
	return buf, nil
}

// Encode converts a buffer into raw bytes in the byte order of its type.
func Encode(b Buffer) ([]byte, error) {
	size := Size(b.Type)
	if size == 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, b.Type)
	}
	if b.Data == nil {
		return []byte{}, nil
	}
	order := ByteOrder(b.Type)

	switch v := b.Data.(type) {
	case []byte:
		if size != 1 {
			break
		}
		return append([]byte(nil), v...), nil
	case []int8:
		if size != 1 {
			break
		}
		out := make([]byte, len(v))
		for i, x := range v {
			out[i] = byte(x)
		}
		return out, nil
	case []int16:
		if size != 2 {
			break
		}
		out := make([]byte, len(v)*2)
		for i, x := range v {
			order.PutUint16(out[i*2:], uint16(x))
		}
		return out, nil
	case []int32:
		if size != 4 || b.Type.Base() == backend.TypeFloat32 {
			break
		}
		out := make([]byte, len(v)*4)
		for i, x := range v {
			order.PutUint32(out[i*4:], uint32(x))
		}
		return out, nil
	case []int64:
		if size != 8 || b.Type.Base() == backend.TypeFloat64 {
			break
		}
		out := make([]byte, len(v)*8)
		for i, x := range v {
			order.PutUint64(out[i*8:], uint64(x))
		}
		return out, nil
	case []float32:
		if b.Type.Base() != backend.TypeFloat32 {
			break
		}
		out := make([]byte, len(v)*4)
		for i, x := range v {
			order.PutUint32(out[i*4:], math.Float32bits(x))
		}
		return out, nil
	case []float64:
		if b.Type.Base() != backend.TypeFloat64 {
			break
		}
		out := make([]byte, len(v)*8)
		for i, x := range v {
			order.PutUint64(out[i*8:], math.Float64bits(x))
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T for type %d", ErrBufferType, b.Data, b.Type)
}

// NewBuffer wraps a Go slice as a buffer of type t. Unsigned slices are
// reinterpreted into the signed storage of the same width, and a string is
// accepted for character codes.
func NewBuffer(t backend.NativeType, data any) (Buffer, error) {
	var stored any
	switch v := data.(type) {
	case string:
		stored = []byte(v)
	case []uint16:
		s := make([]int16, len(v))
		for i, x := range v {
			s[i] = int16(x)
		}
		stored = s
	case []uint32:
		s := make([]int32, len(v))
		for i, x := range v {
			s[i] = int32(x)
		}
		stored = s
	case []uint64:
		s := make([]int64, len(v))
		for i, x := range v {
			s[i] = int64(x)
		}
		stored = s
	case []int:
		stored, _ = intsFor(t, v)
	default:
		stored = data
	}

	if t.Base() == backend.TypeInt8 || t.Base() == backend.TypeUInt8 {
		if raw, ok := stored.([]byte); ok {
			s := make([]int8, len(raw))
			for i, x := range raw {
				s[i] = int8(x)
			}
			stored = s
		}
	}

	b := Buffer{Type: t, Data: stored}
	if _, err := Encode(b); err != nil {
		return Buffer{}, err
	}
	return b, nil
}

func intsFor(t backend.NativeType, v []int) (any, bool) {
	switch Size(t) {
	case 1:
		if IsChar(t) {
			s := make([]byte, len(v))
			for i, x := range v {
				s[i] = byte(x)
			}
			return s, true
		}
		s := make([]int8, len(v))
		for i, x := range v {
			s[i] = int8(x)
		}
		return s, true
	case 2:
		s := make([]int16, len(v))
		for i, x := range v {
			s[i] = int16(x)
		}
		return s, true
	case 4:
		if t.Base() == backend.TypeFloat32 {
			s := make([]float32, len(v))
			for i, x := range v {
				s[i] = float32(x)
			}
			return s, true
		}
		s := make([]int32, len(v))
		for i, x := range v {
			s[i] = int32(x)
		}
		return s, true
	case 8:
		if t.Base() == backend.TypeFloat64 {
			s := make([]float64, len(v))
			for i, x := range v {
				s[i] = float64(x)
			}
			return s, true
		}
		s := make([]int64, len(v))
		for i, x := range v {
			s[i] = int64(x)
		}
		return s, true
	}
	return v, false
}

// Unsigned returns the data reinterpreted as unsigned values when the
// buffer's type is unsigned, and Data unchanged otherwise.
func (b Buffer) Unsigned() any {
	if !IsUnsigned(b.Type) {
		return b.Data
	}

	switch v := b.Data.(type) {
	case []int8:
		out := make([]uint8, len(v))
		for i, x := range v {
			out[i] = uint8(x)
		}
		return out
	case []int16:
		out := make([]uint16, len(v))
		for i, x := range v {
			out[i] = uint16(x)
		}
		return out
	case []int32:
		out := make([]uint32, len(v))
		for i, x := range v {
			out[i] = uint32(x)
		}
		return out
	case []int64:
		out := make([]uint64, len(v))
		for i, x := range v {
			out[i] = uint64(x)
		}
		return out
	default:
		return b.Data
	}
}

// Strings splits a character buffer into fixed-width strings with trailing
// NULs removed. A width <= 0 returns the whole buffer as one string.
func (b Buffer) Strings(width int) []string {
	raw, ok := b.Data.([]byte)
	if !ok {
		return nil
	}
	if width <= 0 || width >= len(raw) {
		return []string{trimNul(raw)}
	}

	out := make([]string, 0, (len(raw)+width-1)/width)
	for off := 0; off < len(raw); off += width {
		end := min(off+width, len(raw))
		out = append(out, trimNul(raw[off:end]))
	}
	return out
}

// Float64s converts numeric data to float64 values.
func (b Buffer) Float64s() []float64 {
	n := b.Len()
	out := make([]float64, n)
	unsigned := IsUnsigned(b.Type)

	switch v := b.Data.(type) {
	case []byte:
		for i, x := range v {
			out[i] = float64(x)
		}
	case []int8:
		for i, x := range v {
			if unsigned {
				out[i] = float64(uint8(x))
			} else {
				out[i] = float64(x)
			}
		}
	case []int16:
		for i, x := range v {
			if unsigned {
				out[i] = float64(uint16(x))
			} else {
				out[i] = float64(x)
			}
		}
	case []int32:
		for i, x := range v {
			if unsigned {
				out[i] = float64(uint32(x))
			} else {
				out[i] = float64(x)
			}
		}
	case []int64:
		for i, x := range v {
			if unsigned {
				out[i] = float64(uint64(x))
			} else {
				out[i] = float64(x)
			}
		}
	case []float32:
		for i, x := range v {
			out[i] = float64(x)
		}
	case []float64:
		copy(out, v)
	}
	return out
}

// DecodeValue decodes an attribute value. Character data becomes a string
// with trailing NULs removed; everything else becomes the buffer data.
func DecodeValue(t backend.NativeType, raw []byte) (any, error) {
	if IsChar(t) {
		return trimNul(raw), nil
	}
	buf, err := Decode(t, raw)
	if err != nil {
		return nil, err
	}
	if IsUnsigned(t) {
		return buf.Unsigned(), nil
	}
	return buf.Data, nil
}

func trimNul(raw []byte) string {
	return strings.TrimRight(string(raw), "\x00")
}
