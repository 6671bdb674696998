package dtype

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-hdf4/backend"
)

// ErrNoNativeType is returned by New for descriptors without a native code.
var ErrNoNativeType = errors.New("datatype has no native type code")

// Class is the datatype class.
type Class int

// Datatype classes. Only Integer, Float and Char have native codes.
const (
	ClassNoClass Class = iota
	ClassInteger
	ClassFloat
	ClassChar
	ClassString
	ClassBitfield
	ClassOpaque
	ClassCompound
	ClassReference
	ClassEnum
	ClassVLen
	ClassArray
	ClassTime
)

var classNames = map[Class]string{
	ClassNoClass:   "no class",
	ClassInteger:   "integer",
	ClassFloat:     "float",
	ClassChar:      "char",
	ClassString:    "string",
	ClassBitfield:  "bitfield",
	ClassOpaque:    "opaque",
	ClassCompound:  "compound",
	ClassReference: "reference",
	ClassEnum:      "enum",
	ClassVLen:      "vlen",
	ClassArray:     "array",
	ClassTime:      "time",
}

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return fmt.Sprintf("class(%d)", int(c))
}

// Order is the byte order of stored values.
type Order int

// Byte orders.
const (
	OrderNative Order = iota
	OrderLE
	OrderBE
	OrderVAX
)

func (o Order) String() string {
	switch o {
	case OrderNative:
		return "native"
	case OrderLE:
		return "LE"
	case OrderBE:
		return "BE"
	case OrderVAX:
		return "VAX"
	default:
		return fmt.Sprintf("order(%d)", int(o))
	}
}

// Sign is the signedness of integer and character types.
type Sign int

// Signedness values.
const (
	SignNone Sign = iota
	SignSigned
	SignUnsigned
)

func (s Sign) String() string {
	switch s {
	case SignSigned:
		return "signed"
	case SignUnsigned:
		return "unsigned"
	default:
		return "none"
	}
}

// Datatype is the generic datatype descriptor.
// The zero value is the NoClass datatype.
type Datatype struct {
	Class Class
	Size  int32
	Order Order
	Sign  Sign
}

// New returns a canonical datatype that maps to exactly one native code.
// String is stored as Char. VAX order and class/size combinations without a
// native code are rejected.
func New(class Class, size int32, order Order, sign Sign) (Datatype, error) {
	if order == OrderVAX || order < OrderNative || order > OrderVAX {
		return Datatype{}, fmt.Errorf("%w: byte order %s", ErrNoNativeType, order)
	}

	dt := Datatype{Class: class, Size: size, Order: order, Sign: sign}
	switch class {
	case ClassString, ClassChar:
		dt.Class = ClassChar
		dt.Size = 1
		if dt.Sign != SignUnsigned {
			dt.Sign = SignSigned
		}
	case ClassInteger:
		if size != 1 && size != 2 && size != 4 && size != 8 {
			return Datatype{}, fmt.Errorf("%w: %d-byte integer", ErrNoNativeType, size)
		}
		if dt.Sign != SignUnsigned {
			dt.Sign = SignSigned
		}
	case ClassFloat:
		if size != 4 && size != 8 {
			return Datatype{}, fmt.Errorf("%w: %d-byte float", ErrNoNativeType, size)
		}
		dt.Sign = SignNone
	default:
		return Datatype{}, fmt.Errorf("%w: class %s", ErrNoNativeType, class)
	}
	return dt, nil
}

// MustNew is like New but panics on error. Intended for package-level values.
func MustNew(class Class, size int32, order Order, sign Sign) Datatype {
	dt, err := New(class, size, order, sign)
	if err != nil {
		panic(err)
	}
	return dt
}

// Compound returns the datatype of a record of size bytes.
func Compound(size int32) Datatype {
	return Datatype{Class: ClassCompound, Size: size}
}

// FromNative converts a native code to a datatype. Unknown codes yield the
// NoClass datatype.
func FromNative(t backend.NativeType) Datatype {
	var dt Datatype
	switch t.Base() {
	case backend.TypeChar8:
		dt = Datatype{Class: ClassChar, Size: 1, Sign: SignSigned}
	case backend.TypeUChar8:
		dt = Datatype{Class: ClassChar, Size: 1, Sign: SignUnsigned}
	case backend.TypeInt8:
		dt = Datatype{Class: ClassInteger, Size: 1, Sign: SignSigned}
	case backend.TypeUInt8:
		dt = Datatype{Class: ClassInteger, Size: 1, Sign: SignUnsigned}
	case backend.TypeInt16:
		dt = Datatype{Class: ClassInteger, Size: 2, Sign: SignSigned}
	case backend.TypeUInt16:
		dt = Datatype{Class: ClassInteger, Size: 2, Sign: SignUnsigned}
	case backend.TypeInt32:
		dt = Datatype{Class: ClassInteger, Size: 4, Sign: SignSigned}
	case backend.TypeUInt32:
		dt = Datatype{Class: ClassInteger, Size: 4, Sign: SignUnsigned}
	case backend.TypeInt64:
		dt = Datatype{Class: ClassInteger, Size: 8, Sign: SignSigned}
	case backend.TypeUInt64:
		dt = Datatype{Class: ClassInteger, Size: 8, Sign: SignUnsigned}
	case backend.TypeFloat32:
		dt = Datatype{Class: ClassFloat, Size: 4}
	case backend.TypeFloat64:
		dt = Datatype{Class: ClassFloat, Size: 8}
	default:
		return Datatype{}
	}

	switch t.Flags() {
	case backend.FlagNative:
		dt.Order = OrderNative
	case backend.FlagLittleEndian:
		dt.Order = OrderLE
	default:
		dt.Order = OrderBE
	}
	return dt
}

// ToNative converts a datatype to its native code, or TypeNone when the
// datatype has no native representation.
func ToNative(dt Datatype) backend.NativeType {
	base := baseCode(dt)
	if base == backend.TypeNone {
		return backend.TypeNone
	}

	switch dt.Order {
	case OrderNative:
		return base | backend.FlagNative
	case OrderLE:
		return base | backend.FlagLittleEndian
	case OrderBE:
		return base
	default:
		return backend.TypeNone
	}
}

func baseCode(dt Datatype) backend.NativeType {
	unsigned := dt.Sign == SignUnsigned

	switch dt.Class {
	case ClassChar, ClassString:
		if unsigned {
			return backend.TypeUChar8
		}
		return backend.TypeChar8
	case ClassInteger:
		switch dt.Size {
		case 1:
			if unsigned {
				return backend.TypeUInt8
			}
			return backend.TypeInt8
		case 2:
			if unsigned {
				return backend.TypeUInt16
			}
			return backend.TypeInt16
		case 4:
			if unsigned {
				return backend.TypeUInt32
			}
			return backend.TypeInt32
		case 8:
			if unsigned {
				return backend.TypeUInt64
			}
			return backend.TypeInt64
		}
	case ClassFloat:
		switch dt.Size {
		case 4:
			return backend.TypeFloat32
		case 8:
			return backend.TypeFloat64
		}
	}
	return backend.TypeNone
}

// IsUnsigned reports whether the native code is an unsigned type.
func IsUnsigned(t backend.NativeType) bool {
	switch t.Base() {
	case backend.TypeUChar8, backend.TypeUInt8, backend.TypeUInt16,
		backend.TypeUInt32, backend.TypeUInt64:
		return true
	default:
		return false
	}
}

// IsChar reports whether the native code is a character type.
func IsChar(t backend.NativeType) bool {
	b := t.Base()
	return b == backend.TypeChar8 || b == backend.TypeUChar8
}

// Size returns the size in bytes of one element of the native code, or 0
// for unknown codes.
func Size(t backend.NativeType) int {
	switch t.Base() {
	case backend.TypeChar8, backend.TypeUChar8, backend.TypeInt8, backend.TypeUInt8:
		return 1
	case backend.TypeInt16, backend.TypeUInt16:
		return 2
	case backend.TypeInt32, backend.TypeUInt32, backend.TypeFloat32:
		return 4
	case backend.TypeInt64, backend.TypeUInt64, backend.TypeFloat64:
		return 8
	default:
		return 0
	}
}

// ByteOrder returns the binary.ByteOrder for values of the native code.
func ByteOrder(t backend.NativeType) binary.ByteOrder {
	switch t.Flags() {
	case backend.FlagNative:
		return binary.NativeEndian
	case backend.FlagLittleEndian:
		return binary.LittleEndian
	default:
		return binary.BigEndian
	}
}

// IsText reports whether the datatype holds character data.
func (dt Datatype) IsText() bool {
	return dt.Class == ClassChar || dt.Class == ClassString
}

// IsUnsigned reports whether the datatype is unsigned.
func (dt Datatype) IsUnsigned() bool {
	return dt.Sign == SignUnsigned
}

// Description returns a short human-readable description.
func (dt Datatype) Description() string {
	unsigned := ""
	if dt.IsUnsigned() {
		unsigned = "unsigned "
	}

	switch dt.Class {
	case ClassChar:
		return "8-bit " + unsigned + "character"
	case ClassInteger:
		return fmt.Sprintf("%d-bit %sinteger", dt.Size*8, unsigned)
	case ClassFloat:
		return fmt.Sprintf("%d-bit floating-point", dt.Size*8)
	case ClassCompound:
		return "Compound"
	default:
		return "Unknown"
	}
}

func (dt Datatype) String() string {
	return fmt.Sprintf("%s (%s)", dt.Description(), dt.Order)
}
