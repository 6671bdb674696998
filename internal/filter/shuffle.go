package filter

// Shuffle implements the byte shuffle filter.
// Shuffled data is laid out as [all byte 0s][all byte 1s]...[all byte N-1s].
type Shuffle struct {
	elemSize int
}

// NewShuffle creates a shuffle filter.
// Client data: [0] = element size in bytes.
func NewShuffle(clientData []uint32) *Shuffle {
	elemSize := 1
	if len(clientData) > 0 && clientData[0] > 0 {
		elemSize = int(clientData[0])
	}
	return &Shuffle{elemSize: elemSize}
}

func (f *Shuffle) ID() ID {
	return IDShuffle
}

func (f *Shuffle) Encode(input []byte) ([]byte, error) {
	return f.permute(input, true), nil
}

func (f *Shuffle) Decode(input []byte) ([]byte, error) {
	return f.permute(input, false), nil
}

// permute moves whole elements only; a trailing partial element is copied
// through unchanged.
func (f *Shuffle) permute(input []byte, shuffle bool) []byte {
	numElems := len(input) / f.elemSize
	if f.elemSize <= 1 || numElems == 0 {
		return input
	}

	output := make([]byte, len(input))
	for i := 0; i < numElems; i++ {
		for j := 0; j < f.elemSize; j++ {
			grouped := j*numElems + i
			packed := i*f.elemSize + j
			if shuffle {
				output[grouped] = input[packed]
			} else {
				output[packed] = input[grouped]
			}
		}
	}
	tail := numElems * f.elemSize
	copy(output[tail:], input[tail:])
	return output
}
