package filter

import (
	"bytes"
	"compress/zlib"
	"errors"
	"testing"

	"github.com/robert-malhotra/go-hdf4/internal/checksum"
)

func TestDeflateDecodeZlib(t *testing.T) {
	original := []byte("Hello, World! This is test data for compression testing.")

	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(original)
	w.Close()

	f := NewDeflate(nil)
	decompressed, err := f.Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(decompressed, original) {
		t.Errorf("Decompressed data mismatch:\ngot:  %q\nwant: %q", decompressed, original)
	}
}

func TestDeflateLevel(t *testing.T) {
	tests := []struct {
		cd   []uint32
		want int
	}{
		{nil, 6},
		{[]uint32{1}, 1},
		{[]uint32{9}, 9},
		{[]uint32{0}, 6},
		{[]uint32{42}, 6},
	}
	for _, tt := range tests {
		if got := NewDeflate(tt.cd).Level(); got != tt.want {
			t.Errorf("NewDeflate(%v).Level() = %d, want %d", tt.cd, got, tt.want)
		}
	}
}

func TestShuffleRoundTrip(t *testing.T) {
	original := []byte{
		0x01, 0x02, 0x03, 0x04,
		0x11, 0x12, 0x13, 0x14,
		0x21, 0x22, 0x23, 0x24,
		0x31, 0x32, 0x33, 0x34,
		0xEE, // partial element
	}
	shuffled := []byte{
		0x01, 0x11, 0x21, 0x31,
		0x02, 0x12, 0x22, 0x32,
		0x03, 0x13, 0x23, 0x33,
		0x04, 0x14, 0x24, 0x34,
		0xEE,
	}

	f := NewShuffle([]uint32{4})
	enc, err := f.Encode(original)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(enc, shuffled) {
		t.Errorf("Encode mismatch:\ngot:  %v\nwant: %v", enc, shuffled)
	}

	dec, err := f.Decode(enc)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(dec, original) {
		t.Errorf("Decode mismatch:\ngot:  %v\nwant: %v", dec, original)
	}
}

func TestShuffleSingleByte(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	result, _ := NewShuffle([]uint32{1}).Encode(data)
	if !bytes.Equal(result, data) {
		t.Errorf("Single-byte shuffle should be identity")
	}
}

func TestFletcher32(t *testing.T) {
	data := []byte("test data for checksum")
	f := NewFletcher32(nil)

	sealed, err := f.Encode(data)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out, err := f.Decode(sealed)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("Output mismatch:\ngot:  %v\nwant: %v", out, data)
	}

	sealed[len(sealed)-1] ^= 0xFF
	_, err = f.Decode(sealed)
	if !errors.Is(err, checksum.ErrMismatch) {
		t.Errorf("expected checksum mismatch, got %v", err)
	}
	if !Error.Has(err) {
		t.Errorf("expected filter error class, got %v", err)
	}
}

func TestPipelineEmpty(t *testing.T) {
	p, err := NewPipeline(nil)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	if !p.Empty() {
		t.Error("Expected empty pipeline")
	}

	data := []byte("unchanged")
	enc, _ := p.Encode(data)
	result, err := p.Decode(enc, 0)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(result, data) {
		t.Error("Empty pipeline should pass data through unchanged")
	}
	if p.Describe() != "none" {
		t.Errorf("Describe() = %q", p.Describe())
	}
}

func TestPipelineRoundTrip(t *testing.T) {
	p, err := NewPipeline([]Spec{
		{ID: IDShuffle, ClientData: []uint32{4}},
		{ID: IDDeflate, ClientData: []uint32{9}},
		{ID: IDFletcher32},
	})
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	if p.Len() != 3 {
		t.Errorf("expected 3 filters, got %d", p.Len())
	}
	if got := p.Describe(); got != "deflate(9)" {
		t.Errorf("Describe() = %q", got)
	}

	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i / 64)
	}

	stored, err := p.Encode(data)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(stored) >= len(data) {
		t.Errorf("expected compression, stored %d bytes for %d", len(stored), len(data))
	}

	got, err := p.Decode(stored, 0)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("pipeline round trip mismatch")
	}
}

func TestPipelineMask(t *testing.T) {
	p, err := NewPipeline([]Spec{{ID: IDShuffle, ClientData: []uint32{2}}})
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	data := []byte{1, 2, 3, 4}
	result, err := p.Decode(data, 0x01)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(result, data) {
		t.Error("Skipped filter should leave data unchanged")
	}
}

func TestPipelineUnknownFilter(t *testing.T) {
	_, err := NewPipeline([]Spec{{ID: 4}})
	if !Error.Has(err) {
		t.Fatalf("expected filter error, got %v", err)
	}
}
