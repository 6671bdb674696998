package hdf4

import (
	"fmt"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/dtype"
)

// Attribute is a named, typed, one-dimensional value attached to a node.
type Attribute struct {
	Name       string
	Datatype   dtype.Datatype
	NativeType backend.NativeType
	Dims       []int64
	// Value is a string for character types and a slice otherwise.
	// Unsigned types decode to unsigned slices.
	Value any
	// Raw holds the stored bytes.
	Raw []byte
}

// NewAttribute builds an attribute of native type t. value may be a string,
// a slice accepted by dtype.NewBuffer, or a single number.
func NewAttribute(name string, t backend.NativeType, value any) (*Attribute, error) {
	if name == "" {
		return nil, ValidationError.New("attribute name is empty")
	}
	buf, err := dtype.NewBuffer(t, scalarSlice(value))
	if err != nil {
		return nil, ValidationError.Wrap(fmt.Errorf("attribute %q: %w", name, err))
	}
	raw, err := dtype.Encode(buf)
	if err != nil {
		return nil, ValidationError.Wrap(fmt.Errorf("attribute %q: %w", name, err))
	}
	return decodeAttribute(backend.AttrInfo{Name: name, Type: t, Count: buf.Len()}, raw)
}

func decodeAttribute(info backend.AttrInfo, raw []byte) (*Attribute, error) {
	v, err := dtype.DecodeValue(info.Type, raw)
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", info.Name, err)
	}
	count := info.Count
	if size := dtype.Size(info.Type); size > 0 && count*size != len(raw) {
		count = len(raw) / size
	}
	return &Attribute{
		Name:       info.Name,
		Datatype:   dtype.FromNative(info.Type),
		NativeType: info.Type,
		Dims:       []int64{int64(count)},
		Value:      v,
		Raw:        raw,
	}, nil
}

func (a *Attribute) rawAttr() backend.RawAttr {
	count := 0
	if size := dtype.Size(a.NativeType); size > 0 {
		count = len(a.Raw) / size
	}
	return backend.RawAttr{
		Name:  a.Name,
		Type:  a.NativeType,
		Count: count,
		Data:  a.Raw,
	}
}

// Len returns the number of elements.
func (a *Attribute) Len() int {
	if len(a.Dims) == 0 {
		return 0
	}
	return int(a.Dims[0])
}

// Buffer returns the value as a typed buffer.
func (a *Attribute) Buffer() (dtype.Buffer, error) {
	return dtype.Decode(a.NativeType, a.Raw)
}

func (a *Attribute) String() string {
	if s, ok := a.Value.(string); ok {
		return s
	}
	return fmt.Sprint(a.Value)
}

// first returns the first element of a numeric attribute.
func (a *Attribute) first() (any, bool) {
	buf, err := a.Buffer()
	if err != nil || buf.IsEmpty() {
		return nil, false
	}
	if dtype.IsChar(a.NativeType) {
		return buf.Data.([]byte)[0], true
	}
	switch v := buf.Unsigned().(type) {
	case []int8:
		return v[0], true
	case []uint8:
		return v[0], true
	case []int16:
		return v[0], true
	case []uint16:
		return v[0], true
	case []int32:
		return v[0], true
	case []uint32:
		return v[0], true
	case []int64:
		return v[0], true
	case []uint64:
		return v[0], true
	case []float32:
		return v[0], true
	case []float64:
		return v[0], true
	}
	return nil, false
}

func scalarSlice(v any) any {
	switch x := v.(type) {
	case int:
		return []int{x}
	case int8:
		return []int8{x}
	case uint8:
		return []byte{x}
	case int16:
		return []int16{x}
	case uint16:
		return []uint16{x}
	case int32:
		return []int32{x}
	case uint32:
		return []uint32{x}
	case int64:
		return []int64{x}
	case uint64:
		return []uint64{x}
	case float32:
		return []float32{x}
	case float64:
		return []float64{x}
	default:
		return v
	}
}
