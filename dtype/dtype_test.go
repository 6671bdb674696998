package dtype

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-hdf4/backend"
)

func TestNativeRoundTrip(t *testing.T) {
	for _, base := range backend.BaseTypes {
		for _, flag := range []backend.NativeType{0, backend.FlagNative, backend.FlagLittleEndian} {
			code := base | flag
			dt := FromNative(code)
			if dt.Class == ClassNoClass {
				t.Fatalf("FromNative(%d) = NoClass", code)
			}
			if got := ToNative(dt); got != code {
				t.Errorf("ToNative(FromNative(%d)) = %d (datatype %v)", code, got, dt)
			}
		}
	}
}

func TestFromNativeUnknown(t *testing.T) {
	for _, code := range []backend.NativeType{backend.TypeNone, 0, 1, 7, 99, 0x1000 | 99} {
		dt := FromNative(code)
		assert.Equal(t, Datatype{}, dt, "code %d", code)
		assert.Equal(t, ClassNoClass, dt.Class)
	}
}

func TestFromNativeOrder(t *testing.T) {
	tests := []struct {
		code backend.NativeType
		want Order
	}{
		{backend.TypeInt32, OrderBE},
		{backend.TypeInt32 | backend.FlagNative, OrderNative},
		{backend.TypeInt32 | backend.FlagLittleEndian, OrderLE},
	}

	for _, tt := range tests {
		if got := FromNative(tt.code).Order; got != tt.want {
			t.Errorf("FromNative(%d).Order = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestNewRoundTrip(t *testing.T) {
	classes := []Class{ClassInteger, ClassFloat, ClassChar, ClassString}
	sizes := []int32{1, 2, 4, 8}
	orders := []Order{OrderNative, OrderLE, OrderBE}
	signs := []Sign{SignNone, SignSigned, SignUnsigned}

	built := 0
	for _, c := range classes {
		for _, size := range sizes {
			for _, o := range orders {
				for _, s := range signs {
					dt, err := New(c, size, o, s)
					if err != nil {
						continue
					}
					built++
					code := ToNative(dt)
					require.NotEqual(t, backend.TypeNone, code, "datatype %v", dt)
					require.Equal(t, dt, FromNative(code), "round trip of %v", dt)
				}
			}
		}
	}
	assert.Greater(t, built, 0)
}

func TestNewRejects(t *testing.T) {
	tests := []struct {
		name  string
		class Class
		size  int32
		order Order
	}{
		{"vax", ClassInteger, 4, OrderVAX},
		{"int3", ClassInteger, 3, OrderLE},
		{"float2", ClassFloat, 2, OrderLE},
		{"compound", ClassCompound, 8, OrderLE},
		{"noclass", ClassNoClass, 0, OrderNative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.class, tt.size, tt.order, SignNone)
			require.ErrorIs(t, err, ErrNoNativeType)
		})
	}
}

func TestNewCanonical(t *testing.T) {
	dt, err := New(ClassString, 12, OrderLE, SignNone)
	require.NoError(t, err)
	assert.Equal(t, Datatype{Class: ClassChar, Size: 1, Order: OrderLE, Sign: SignSigned}, dt)

	dt, err = New(ClassFloat, 8, OrderBE, SignUnsigned)
	require.NoError(t, err)
	assert.Equal(t, SignNone, dt.Sign)
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		code backend.NativeType
		want any
	}{
		{backend.TypeChar8, []byte{}},
		{backend.TypeUChar8, []byte{}},
		{backend.TypeInt8, []int8{}},
		{backend.TypeUInt8, []int8{}},
		{backend.TypeInt16, []int16{}},
		{backend.TypeUInt16 | backend.FlagNative, []int16{}},
		{backend.TypeInt32, []int32{}},
		{backend.TypeUInt32, []int32{}},
		{backend.TypeInt64, []int64{}},
		{backend.TypeUInt64, []int64{}},
		{backend.TypeFloat32, []float32{}},
		{backend.TypeFloat64 | backend.FlagLittleEndian, []float64{}},
	}

	for _, tt := range tests {
		buf := Allocate(tt.code, 5)
		assert.IsType(t, tt.want, buf.Data, "code %d", tt.code)
		assert.Equal(t, 5, buf.Len())
	}

	assert.True(t, Allocate(backend.TypeInt32, 0).IsEmpty())
	assert.True(t, Allocate(backend.TypeInt32, -3).IsEmpty())
	assert.True(t, Allocate(99, 10).IsEmpty())
}

func TestIsUnsigned(t *testing.T) {
	unsigned := map[backend.NativeType]bool{
		backend.TypeUChar8: true, backend.TypeUInt8: true, backend.TypeUInt16: true,
		backend.TypeUInt32: true, backend.TypeUInt64: true,
	}
	for _, base := range backend.BaseTypes {
		assert.Equal(t, unsigned[base], IsUnsigned(base|backend.FlagNative), "code %d", base)
	}
}

func TestDecodeEncode(t *testing.T) {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint32(raw, 7)
	binary.BigEndian.PutUint32(raw[4:], 0xFFFFFFFF)

	buf, err := Decode(backend.TypeUInt32, raw)
	require.NoError(t, err)
	assert.Equal(t, []int32{7, -1}, buf.Data)
	assert.Equal(t, []uint32{7, 0xFFFFFFFF}, buf.Unsigned())

	back, err := Encode(buf)
	require.NoError(t, err)
	assert.Equal(t, raw, back)

	le, err := Decode(backend.TypeUInt32|backend.FlagLittleEndian, raw)
	require.NoError(t, err)
	assert.Equal(t, []int32{0x07000000, -1}, le.Data)
}

func TestDecodeFloat(t *testing.T) {
	buf, err := NewBuffer(backend.TypeFloat64|backend.FlagLittleEndian, []float64{1.5, -2.25})
	require.NoError(t, err)

	raw, err := Encode(buf)
	require.NoError(t, err)
	require.Len(t, raw, 16)

	got, err := Decode(buf.Type, raw)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2.25}, got.Data)
	assert.Equal(t, []float64{1.5, -2.25}, got.Float64s())
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(backend.TypeInt16, []byte{1, 2, 3})
	require.ErrorIs(t, err, ErrRaggedBuffer)

	_, err = Decode(99, []byte{1})
	require.ErrorIs(t, err, ErrUnknownType)

	_, err = Encode(Buffer{Type: backend.TypeFloat32, Data: []int32{1}})
	require.ErrorIs(t, err, ErrBufferType)
}

func TestNewBuffer(t *testing.T) {
	buf, err := NewBuffer(backend.TypeUInt16, []uint16{1, 65535})
	require.NoError(t, err)
	assert.Equal(t, []int16{1, -1}, buf.Data)

	buf, err = NewBuffer(backend.TypeInt32, []int{3, 4})
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 4}, buf.Data)

	buf, err = NewBuffer(backend.TypeChar8, "abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), buf.Data)

	_, err = NewBuffer(backend.TypeInt64, []float32{1})
	require.ErrorIs(t, err, ErrBufferType)
}

func TestDecodeValue(t *testing.T) {
	v, err := DecodeValue(backend.TypeChar8, []byte("units\x00\x00"))
	require.NoError(t, err)
	assert.Equal(t, "units", v)

	v, err = DecodeValue(backend.TypeUInt8, []byte{200})
	require.NoError(t, err)
	assert.Equal(t, []uint8{200}, v)
}

func TestStrings(t *testing.T) {
	buf := Buffer{Type: backend.TypeChar8, Data: []byte("ab\x00cd\x00ef\x00")}
	assert.Equal(t, []string{"ab", "cd", "ef"}, buf.Strings(3))
	assert.Equal(t, []string{"ab\x00cd\x00ef"}, buf.Strings(0))
}

func TestDescription(t *testing.T) {
	tests := []struct {
		code backend.NativeType
		want string
	}{
		{backend.TypeUInt32, "32-bit unsigned integer"},
		{backend.TypeInt16, "16-bit integer"},
		{backend.TypeFloat64, "64-bit floating-point"},
		{backend.TypeChar8, "8-bit character"},
		{99, "Unknown"},
	}
	for _, tt := range tests {
		if got := FromNative(tt.code).Description(); got != tt.want {
			t.Errorf("Description(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
	assert.Equal(t, "Compound", Compound(16).Description())
}
