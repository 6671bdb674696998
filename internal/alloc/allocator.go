package alloc

import (
	"errors"
	"fmt"
	"sync"
)

// Reference bounds. Zero is reserved for the root pseudo-group.
const (
	MinRef int32 = 1
	MaxRef int32 = 65535
)

// ErrExhausted is returned when a tag has no references left.
var ErrExhausted = errors.New("reference space exhausted")

// Allocator manages reference numbers per tag.
type Allocator struct {
	mu sync.Mutex

	// next is the next reference to hand out, per tag.
	next map[int32]int32

	// allocations tracks every reference handed out, in order.
	allocations []Allocation

	stats Stats
}

// Allocation records a single allocation.
type Allocation struct {
	Tag int32
	Ref int32
}

// Stats contains allocation statistics.
type Stats struct {
	TotalAllocations uint64 // references handed out by Alloc
	TotalReserved    uint64 // references registered by Reserve
	HighestRef       int32  // highest reference seen across all tags
}

// New creates an empty allocator.
func New() *Allocator {
	return &Allocator{next: make(map[int32]int32)}
}

// Reserve marks ref as in use for tag. Out-of-range references are ignored.
func (a *Allocator) Reserve(tag, ref int32) {
	if ref < MinRef || ref > MaxRef {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if ref >= a.nextLocked(tag) {
		a.next[tag] = ref + 1
	}
	a.stats.TotalReserved++
	a.noteLocked(ref)
}

// Alloc returns a fresh reference for tag.
func (a *Allocator) Alloc(tag int32) (int32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ref := a.nextLocked(tag)
	if ref > MaxRef {
		return 0, fmt.Errorf("%w: tag %d", ErrExhausted, tag)
	}
	a.next[tag] = ref + 1

	a.allocations = append(a.allocations, Allocation{Tag: tag, Ref: ref})
	a.stats.TotalAllocations++
	a.noteLocked(ref)
	return ref, nil
}

// Peek returns the reference the next Alloc for tag would return.
func (a *Allocator) Peek(tag int32) int32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nextLocked(tag)
}

func (a *Allocator) nextLocked(tag int32) int32 {
	if n, ok := a.next[tag]; ok {
		return n
	}
	return MinRef
}

func (a *Allocator) noteLocked(ref int32) {
	if ref > a.stats.HighestRef {
		a.stats.HighestRef = ref
	}
}

// Allocations returns a copy of all allocations made.
func (a *Allocator) Allocations() []Allocation {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := make([]Allocation, len(a.allocations))
	copy(result, a.allocations)
	return result
}

// Stats returns allocation statistics.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Reset forgets every reservation and allocation.
func (a *Allocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	clear(a.next)
	a.allocations = nil
	a.stats = Stats{}
}
