package backend

// NativeType is the engine's own element type code.
type NativeType int32

// Native element type codes. Order flags may be OR'ed onto the base codes.
const (
	TypeNone    NativeType = -1
	TypeUChar8  NativeType = 3
	TypeChar8   NativeType = 4
	TypeFloat32 NativeType = 5
	TypeFloat64 NativeType = 6
	TypeInt8    NativeType = 20
	TypeUInt8   NativeType = 21
	TypeInt16   NativeType = 22
	TypeUInt16  NativeType = 23
	TypeInt32   NativeType = 24
	TypeUInt32  NativeType = 25
	TypeInt64   NativeType = 26
	TypeUInt64  NativeType = 27

	// FlagNative marks data stored in host byte order.
	FlagNative NativeType = 0x1000
	// FlagLittleEndian marks data stored little-endian.
	FlagLittleEndian NativeType = 0x4000

	flagMask = FlagNative | FlagLittleEndian
)

// BaseTypes lists every base code an engine may emit.
var BaseTypes = []NativeType{
	TypeUChar8, TypeChar8, TypeFloat32, TypeFloat64,
	TypeInt8, TypeUInt8, TypeInt16, TypeUInt16,
	TypeInt32, TypeUInt32, TypeInt64, TypeUInt64,
}

// Base strips the order flags from t.
func (t NativeType) Base() NativeType {
	if t < 0 {
		return t
	}
	return t &^ flagMask
}

// Flags returns the order flags of t.
func (t NativeType) Flags() NativeType {
	if t < 0 {
		return 0
	}
	return t & flagMask
}
