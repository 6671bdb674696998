package filter

import (
	"github.com/robert-malhotra/go-hdf4/internal/checksum"
)

// Fletcher32 appends and verifies a Fletcher-32 checksum.
type Fletcher32 struct{}

// NewFletcher32 creates a Fletcher-32 filter. It takes no client data.
func NewFletcher32([]uint32) *Fletcher32 {
	return &Fletcher32{}
}

func (f *Fletcher32) ID() ID {
	return IDFletcher32
}

func (f *Fletcher32) Encode(input []byte) ([]byte, error) {
	return checksum.Seal(checksum.Fletcher32, input), nil
}

// Decode verifies the trailing checksum and returns the data without it.
func (f *Fletcher32) Decode(input []byte) ([]byte, error) {
	data, err := checksum.Open(checksum.Fletcher32, input)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return data, nil
}
