package filter

import (
	"fmt"

	"github.com/zeebo/errs"
)

// Error is the error class for filter failures.
var Error = errs.Class("filter")

// ID identifies a filter.
type ID uint16

// Filter identifiers.
const (
	IDDeflate    ID = 1
	IDShuffle    ID = 2
	IDFletcher32 ID = 3
)

func (id ID) String() string {
	switch id {
	case IDDeflate:
		return "deflate"
	case IDShuffle:
		return "shuffle"
	case IDFletcher32:
		return "fletcher32"
	default:
		return fmt.Sprintf("filter(%d)", uint16(id))
	}
}

// Filter is a reversible byte transformation.
type Filter interface {
	ID() ID
	Encode(input []byte) ([]byte, error)
	Decode(input []byte) ([]byte, error)
}

// Spec describes one pipeline stage.
type Spec struct {
	ID         ID       `cbor:"1,keyasint"`
	ClientData []uint32 `cbor:"2,keyasint,omitempty"`
}

// Registry maps filter IDs to constructors.
var Registry = map[ID]func([]uint32) Filter{
	IDDeflate:    func(cd []uint32) Filter { return NewDeflate(cd) },
	IDShuffle:    func(cd []uint32) Filter { return NewShuffle(cd) },
	IDFletcher32: func(cd []uint32) Filter { return NewFletcher32(cd) },
}

// New creates a filter from a spec.
func New(spec Spec) (Filter, error) {
	constructor, ok := Registry[spec.ID]
	if !ok {
		return nil, Error.New("unsupported filter ID: %d", uint16(spec.ID))
	}
	return constructor(spec.ClientData), nil
}
