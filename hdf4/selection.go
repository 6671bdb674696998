package hdf4

import (
	"fmt"
	"slices"
)

// Selection is the hyperslab of a dataset read or written by default.
//
// Index names the dataset axes shown as height, width and depth. Arrays use
// {0, 1, 2}. Images are addressed as (width, height) and use {1, 0, 2}.
type Selection struct {
	Start  []int64
	Count  []int64
	Stride []int64 // nil means 1 on every axis
	Index  [3]int
}

// Clone returns a deep copy.
func (s Selection) Clone() Selection {
	return Selection{
		Start:  slices.Clone(s.Start),
		Count:  slices.Clone(s.Count),
		Stride: slices.Clone(s.Stride),
		Index:  s.Index,
	}
}

// NumElements returns the number of selected elements.
func (s Selection) NumElements() int64 {
	if len(s.Count) == 0 {
		return 0
	}
	n := int64(1)
	for _, c := range s.Count {
		n *= c
	}
	return n
}

func (s Selection) stride(i int) int64 {
	if s.Stride == nil {
		return 1
	}
	return s.Stride[i]
}

// Validate checks s against dims.
func (s Selection) Validate(dims []int64) error {
	return s.validate(dims, false)
}

// validate checks s against dims. When growable, the upper bound of the
// first axis is not enforced.
func (s Selection) validate(dims []int64, growable bool) error {
	rank := len(dims)
	if len(s.Start) != rank || len(s.Count) != rank {
		return ValidationError.New("selection rank %d/%d does not match dataset rank %d", len(s.Start), len(s.Count), rank)
	}
	if s.Stride != nil && len(s.Stride) != rank {
		return ValidationError.New("stride rank %d does not match dataset rank %d", len(s.Stride), rank)
	}
	for i := range rank {
		start, count, stride := s.Start[i], s.Count[i], s.stride(i)
		switch {
		case start < 0:
			return ValidationError.New("axis %d: negative start %d", i, start)
		case count < 1:
			return ValidationError.New("axis %d: count %d < 1", i, count)
		case stride < 1:
			return ValidationError.New("axis %d: stride %d < 1", i, stride)
		}
		if i == 0 && growable {
			continue
		}
		if last := start + (count-1)*stride; last >= dims[i] {
			return ValidationError.New("axis %d: selection ends at %d beyond extent %d", i, last, dims[i])
		}
	}
	return nil
}

// IsDefaultOrder reports whether the first two displayed axes keep storage
// order. It is false only for rank > 1 with Index[0] > Index[1].
func (s Selection) IsDefaultOrder() bool {
	return len(s.Count) <= 1 || s.Index[0] <= s.Index[1]
}

func (s Selection) String() string {
	return fmt.Sprintf("start=%v count=%v stride=%v", s.Start, s.Count, s.Stride)
}
