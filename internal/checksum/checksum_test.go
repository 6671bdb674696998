package checksum

import (
	"bytes"
	"errors"
	"testing"
)

func TestLookup3Lengths(t *testing.T) {
	sums := make(map[uint32]int)
	for length := 0; length <= 24; length++ {
		data := make([]byte, length)
		for i := range data {
			data[i] = byte(i)
		}
		sums[Lookup3(data)] = length
	}

	if len(sums) != 25 {
		t.Errorf("expected 25 distinct checksums for lengths 0-24, got %d", len(sums))
	}
}

func TestLookup3Empty(t *testing.T) {
	if got := Lookup3(nil); got != 0xdeadbeef {
		t.Errorf("Lookup3(empty) = 0x%08x, want 0xdeadbeef", got)
	}
}

func TestFletcher32(t *testing.T) {
	if got := Fletcher32(nil); got != 0 {
		t.Errorf("Fletcher32(empty) = 0x%08x, want 0", got)
	}

	// Two words 0x0201 and 0x0403.
	want := uint32((0x0201+0x0201+0x0403)%65535)<<16 | (0x0201+0x0403)%65535
	if got := Fletcher32([]byte{1, 2, 3, 4}); got != want {
		t.Errorf("Fletcher32 = 0x%08x, want 0x%08x", got, want)
	}

	odd := Fletcher32([]byte{1, 2, 3})
	even := Fletcher32([]byte{1, 2, 3, 0})
	if odd != even {
		t.Errorf("odd input not zero padded: 0x%08x != 0x%08x", odd, even)
	}
}

func TestSealOpen(t *testing.T) {
	tests := []struct {
		name string
		sum  Func
	}{
		{"lookup3", Lookup3},
		{"fletcher32", Fletcher32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte("record payload")
			sealed := Seal(tt.sum, data)
			if len(sealed) != len(data)+Size {
				t.Fatalf("sealed length = %d", len(sealed))
			}

			got, err := Open(tt.sum, sealed)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("Open = %q, want %q", got, data)
			}

			sealed[0] ^= 0xFF
			if _, err := Open(tt.sum, sealed); !errors.Is(err, ErrMismatch) {
				t.Errorf("corrupted Open error = %v, want ErrMismatch", err)
			}
		})
	}

	if _, err := Open(Lookup3, []byte{1}); !errors.Is(err, ErrMismatch) {
		t.Errorf("short Open error = %v", err)
	}
}

func BenchmarkLookup3(b *testing.B) {
	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Lookup3(data)
	}
}
