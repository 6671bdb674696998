package layout

import (
	"bytes"
	"errors"
	"testing"
)

// seq returns n one-byte elements 0, 1, 2, ...
func seq(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestExtract(t *testing.T) {
	// 4x5 array, values are row*5+col.
	data := seq(20)
	dims := []int64{4, 5}

	tests := []struct {
		name string
		slab Slab
		want []byte
	}{
		{
			name: "full",
			slab: Full(dims),
			want: seq(20),
		},
		{
			name: "block",
			slab: Slab{Start: []int64{1, 1}, Count: []int64{2, 3}},
			want: []byte{6, 7, 8, 11, 12, 13},
		},
		{
			name: "strided",
			slab: Slab{Start: []int64{0, 0}, Stride: []int64{2, 2}, Count: []int64{2, 3}},
			want: []byte{0, 2, 4, 10, 12, 14},
		},
		{
			name: "column",
			slab: Slab{Start: []int64{0, 4}, Stride: []int64{1, 1}, Count: []int64{4, 1}},
			want: []byte{4, 9, 14, 19},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(data, dims, tt.slab, 1)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Extract = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractMultiByte(t *testing.T) {
	// 3 elements of 2 bytes.
	data := []byte{1, 1, 2, 2, 3, 3}
	got, err := Extract(data, []int64{3}, Slab{Start: []int64{0}, Stride: []int64{2}, Count: []int64{2}}, 2)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if want := []byte{1, 1, 3, 3}; !bytes.Equal(got, want) {
		t.Errorf("Extract = %v, want %v", got, want)
	}
}

func TestExtractErrors(t *testing.T) {
	dims := []int64{4, 5}
	data := seq(20)

	tests := []struct {
		name string
		slab Slab
		want error
	}{
		{"rank", Slab{Start: []int64{0}, Count: []int64{1}}, ErrRank},
		{"past end", Slab{Start: []int64{3, 0}, Count: []int64{2, 1}}, ErrOutOfBounds},
		{"stride past end", Slab{Start: []int64{0, 0}, Stride: []int64{1, 3}, Count: []int64{1, 3}}, ErrOutOfBounds},
		{"negative start", Slab{Start: []int64{-1, 0}, Count: []int64{1, 1}}, ErrOutOfBounds},
		{"zero stride", Slab{Start: []int64{0, 0}, Stride: []int64{0, 1}, Count: []int64{1, 1}}, ErrOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(data, dims, tt.slab, 1)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestInsert(t *testing.T) {
	dims := []int64{3, 4}
	data := make([]byte, 12)

	s := Slab{Start: []int64{0, 1}, Stride: []int64{2, 2}, Count: []int64{2, 2}}
	if err := Insert(data, dims, s, 1, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	want := []byte{
		0, 1, 0, 2,
		0, 0, 0, 0,
		0, 3, 0, 4,
	}
	if !bytes.Equal(data, want) {
		t.Errorf("Insert result = %v, want %v", data, want)
	}

	back, err := Extract(data, dims, s, 1)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !bytes.Equal(back, []byte{1, 2, 3, 4}) {
		t.Errorf("round trip = %v", back)
	}

	if err := Insert(data, dims, s, 1, []byte{1}); !errors.Is(err, ErrSize) {
		t.Errorf("short packed buffer error = %v", err)
	}
}

func TestResize(t *testing.T) {
	data := []byte{1, 2, 3, 4} // 2x2
	got, err := Resize(data, []int64{2, 2}, []int64{3, 2}, 1, []byte{9})
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if want := []byte{1, 2, 3, 4, 9, 9}; !bytes.Equal(got, want) {
		t.Errorf("Resize = %v, want %v", got, want)
	}

	got, err = Resize(data, []int64{2, 2}, []int64{2, 3}, 1, nil)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if want := []byte{1, 2, 0, 3, 4, 0}; !bytes.Equal(got, want) {
		t.Errorf("Resize = %v, want %v", got, want)
	}
}

func TestGrid(t *testing.T) {
	chunks := Grid([]int64{5, 3}, []int64{2, 2})
	if len(chunks) != 6 {
		t.Fatalf("got %d chunks, want 6", len(chunks))
	}

	last := chunks[len(chunks)-1]
	if last.Start[0] != 4 || last.Start[1] != 2 || last.Count[0] != 1 || last.Count[1] != 1 {
		t.Errorf("edge chunk = %+v", last)
	}

	var total int64
	for _, c := range chunks {
		total += c.NumElements()
	}
	if total != 15 {
		t.Errorf("chunks cover %d elements, want 15", total)
	}

	if got := Grid([]int64{4}, nil); len(got) != 1 || got[0].Count[0] != 4 {
		t.Errorf("Grid without chunk dims = %+v", got)
	}
	if got := Grid([]int64{0, 4}, []int64{1, 1}); got != nil {
		t.Errorf("Grid of empty array = %+v", got)
	}
}

func TestGridRoundTrip(t *testing.T) {
	dims := []int64{5, 7}
	data := seq(35)
	out := make([]byte, 35)

	for _, c := range Grid(dims, []int64{3, 3}) {
		block, err := Extract(data, dims, c, 1)
		if err != nil {
			t.Fatalf("Extract %v: %v", c, err)
		}
		if err := Insert(out, dims, c, 1, block); err != nil {
			t.Fatalf("Insert %v: %v", c, err)
		}
	}
	if !bytes.Equal(out, data) {
		t.Error("chunked round trip mismatch")
	}
}

func TestKey(t *testing.T) {
	if got := Key([]int64{0, 16, 32}); got != "0,16,32" {
		t.Errorf("Key = %q", got)
	}
}
