package backend

import "fmt"

// ObjectID is the two-part identifier of a stored object.
type ObjectID struct {
	Tag int32
	Ref int32
}

// RootID is the sentinel id of the root pseudo-group.
var RootID = ObjectID{}

// IsRoot reports whether id is the root sentinel.
func (id ObjectID) IsRoot() bool {
	return id == RootID
}

func (id ObjectID) String() string {
	return fmt.Sprintf("(%d,%d)", id.Tag, id.Ref)
}

// Tag values understood by the object model.
const (
	TagRI8 int32 = 202  // 8-bit raster image
	TagRI  int32 = 302  // raster image
	TagRIG int32 = 306  // raster image group
	TagSDG int32 = 700  // scientific data group
	TagSD  int32 = 702  // scientific data
	TagNDG int32 = 720  // numeric data group
	TagVH  int32 = 1962 // vdata header
	TagVS  int32 = 1963 // vdata storage
	TagVG  int32 = 1965 // vgroup
)

// Kind is one of the four object kinds.
type Kind int

// Object kinds.
const (
	KindGroup Kind = iota
	KindImage
	KindArray
	KindTable
)

// Kinds lists every kind in top-level discovery order.
var Kinds = []Kind{KindGroup, KindImage, KindArray, KindTable}

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindImage:
		return "image"
	case KindArray:
		return "array"
	case KindTable:
		return "table"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// KindOf resolves a tag to an object kind.
func KindOf(tag int32) (Kind, bool) {
	switch tag {
	case TagVG:
		return KindGroup, true
	case TagRIG, TagRI, TagRI8:
		return KindImage, true
	case TagSD, TagSDG, TagNDG:
		return KindArray, true
	case TagVH, TagVS:
		return KindTable, true
	default:
		return 0, false
	}
}

// TagOf returns the tag assigned to newly created objects of kind.
func TagOf(kind Kind) int32 {
	switch kind {
	case KindGroup:
		return TagVG
	case KindImage:
		return TagRIG
	case KindArray:
		return TagNDG
	case KindTable:
		return TagVH
	default:
		return 0
	}
}

// Window restricts an enumeration to a slice of the full result.
// MaxCount <= 0 means no limit.
type Window struct {
	Start    int
	MaxCount int
}

// Bounds returns the half-open index range [lo, hi) selected from n items.
// A window that covers the whole set selects everything.
func (w Window) Bounds(n int) (lo, hi int) {
	lo = w.Start
	if lo < 0 {
		lo = 0
	}
	max := w.MaxCount
	if max <= 0 || max >= n {
		return 0, n
	}
	hi = lo + max
	if hi > n {
		hi = n
	}
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

// Apply returns the windowed slice of ids.
func (w Window) Apply(ids []ObjectID) []ObjectID {
	lo, hi := w.Bounds(len(ids))
	return ids[lo:hi]
}
