package filter

import (
	"bytes"
	"compress/zlib"
	"io"
)

// Deflate implements zlib compression.
type Deflate struct {
	level int
}

// NewDeflate creates a deflate filter.
// Client data: [0] = compression level (1-9, default 6).
func NewDeflate(clientData []uint32) *Deflate {
	level := 6
	if len(clientData) > 0 && clientData[0] >= 1 && clientData[0] <= 9 {
		level = int(clientData[0])
	}
	return &Deflate{level: level}
}

func (f *Deflate) ID() ID {
	return IDDeflate
}

// Level returns the compression level.
func (f *Deflate) Level() int {
	return f.level
}

func (f *Deflate) Encode(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, f.level)
	if err != nil {
		return nil, Error.New("zlib writer: %v", err)
	}
	if _, err := w.Write(input); err != nil {
		return nil, Error.New("zlib compress: %v", err)
	}
	if err := w.Close(); err != nil {
		return nil, Error.New("zlib compress: %v", err)
	}
	return buf.Bytes(), nil
}

func (f *Deflate) Decode(input []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(input))
	if err != nil {
		return nil, Error.New("zlib reader: %v", err)
	}
	defer r.Close()

	output, err := io.ReadAll(r)
	if err != nil {
		return nil, Error.New("zlib decompress: %v", err)
	}
	return output, nil
}
