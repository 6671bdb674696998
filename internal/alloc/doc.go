// Package alloc hands out reference numbers for new objects.
//
// Every stored object is addressed by a (tag, ref) pair. References are
// unique per tag and live in the range [MinRef, MaxRef]. The allocator is
// append-only: references are never reused within a container, matching the
// fact that objects cannot be deleted.
//
// When a container is opened, every existing pair is passed to [Allocator.Reserve]
// so that later allocations continue after the highest reference in use:
//
//	a := alloc.New()
//	for _, id := range existing {
//		a.Reserve(id.Tag, id.Ref)
//	}
//	ref, err := a.Alloc(backend.TagNDG)
package alloc
