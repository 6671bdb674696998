// Package backend defines the capability interface between the object model
// and a native storage engine for tag/reference-addressed containers.
//
// An engine owns the container bytes. The object model only ever talks to it
// through [Backend]: it opens a container session, enumerates lone objects,
// attaches to individual objects for the duration of one operation and
// detaches again.
package backend

import (
	"errors"
	"fmt"
)

// Common errors returned by engines.
var (
	ErrNotFound      = errors.New("object not found")
	ErrBadHandle     = errors.New("invalid handle")
	ErrReadOnly      = errors.New("container is read-only")
	ErrUnsupported   = errors.New("operation not supported by engine")
	ErrNoSubsystem   = errors.New("subsystem not present in container")
	ErrNoPalette     = errors.New("image has no palette")
	ErrShapeMismatch = errors.New("data size does not match selection")
)

// Mode is the access mode for containers and objects.
type Mode int

// Access modes.
const (
	ReadOnly Mode = iota
	ReadWrite
	Create
)

func (m Mode) String() string {
	switch m {
	case ReadOnly:
		return "r"
	case ReadWrite:
		return "w"
	case Create:
		return "c"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Handle identifies an open container session.
type Handle int64

// ObjectHandle identifies an attached object. It is valid until Detach.
type ObjectHandle int64

// Subsystem selects one of the two global attribute sets of a container.
type Subsystem int

// Global attribute subsystems.
const (
	SubsystemArray Subsystem = iota
	SubsystemImage
)

func (s Subsystem) String() string {
	if s == SubsystemImage {
		return "image"
	}
	return "array"
}

// AnnotationKind distinguishes container labels from descriptions.
type AnnotationKind int

// Annotation kinds.
const (
	FileLabel AnnotationKind = iota
	FileDescription
)

// Annotation is a free-text container annotation.
type Annotation struct {
	Kind AnnotationKind
	Text string
}

// Info describes an attached object.
type Info struct {
	ID    ObjectID
	Kind  Kind
	Name  string
	Class string
	// CoordVar is set for arrays holding dimension scale values.
	CoordVar bool
}

// Field describes one field of a table record.
type Field struct {
	Name  string
	Type  NativeType
	Order int // number of values of Type per record
}

// Shape is the shape information of an attached object.
type Shape struct {
	Rank    int
	Dims    []int64
	MaxDims []int64 // Unlimited marks an extendable axis
	Type    NativeType

	AttrCount int

	// Image only.
	NComp     int
	Interlace int

	// Table only.
	Fields     []Field
	RecordSize int

	Compression string
	Chunks      []int64
}

// Unlimited marks an extendable dimension in Shape.MaxDims.
const Unlimited int64 = -1

// RawAttr is an attribute as stored: a name, a native type, an element count
// and the raw bytes.
type RawAttr struct {
	Name  string
	Type  NativeType
	Count int
	Data  []byte
}

// AttrInfo is the per-index attribute description.
type AttrInfo struct {
	Name  string
	Type  NativeType
	Count int
}

// Palette is a color lookup table attached to an image.
type Palette struct {
	NComp     int
	Type      NativeType
	Interlace int
	Entries   int
	Data      []byte
}

// Interlace modes for images and palettes.
const (
	InterlacePixel = 0
	InterlaceLine  = 1
	InterlaceComp  = 2
)

// CreateSpec describes an object to create.
type CreateSpec struct {
	Kind  Kind
	Name  string
	Class string

	Dims    []int64
	MaxDims []int64
	Type    NativeType

	// Image only.
	NComp     int
	Interlace int

	// Table only.
	Fields []Field

	Chunks   []int64
	Deflate  int // deflate level, 0 disables compression
	CoordVar bool
}

// Backend is the native storage engine capability interface.
//
// Every ObjectHandle returned by Attach or CreateObject must be released with
// Detach, also after a failed operation.
type Backend interface {
	OpenContainer(path string, mode Mode) (Handle, error)
	CloseContainer(h Handle) error

	// EnumerateTopLevel returns the ids of objects of kind that have no
	// parent group, restricted to the window.
	EnumerateTopLevel(h Handle, kind Kind, w Window) ([]ObjectID, error)

	Attach(h Handle, id ObjectID, mode Mode) (ObjectHandle, error)
	Detach(oh ObjectHandle) error
	ObjectID(oh ObjectHandle) (ObjectID, error)
	Info(oh ObjectHandle) (Info, error)

	// ListChildren returns the ordered (tag, ref) pairs inside a group.
	ListChildren(oh ObjectHandle) ([]ObjectID, error)
	InsertChild(parent ObjectHandle, child ObjectID) error

	ShapeInfo(oh ObjectHandle) (Shape, error)
	ReadRaw(oh ObjectHandle, start, stride, count []int64) ([]byte, error)
	WriteRaw(oh ObjectHandle, start, stride, count []int64, data []byte) error

	AttrInfo(oh ObjectHandle, index int) (AttrInfo, error)
	ReadAttr(oh ObjectHandle, index int) ([]byte, error)
	WriteAttr(oh ObjectHandle, attr RawAttr) error

	CreateObject(h Handle, spec CreateSpec) (ObjectHandle, error)

	ReadPalette(oh ObjectHandle, index int) (Palette, error)
	WritePalette(oh ObjectHandle, index int, p Palette) error

	Annotations(h Handle) ([]Annotation, error)
	GlobalAttrs(h Handle, s Subsystem) ([]RawAttr, error)
	WriteGlobalAttr(h Handle, s Subsystem, attr RawAttr) error
}

// AttrRemover is implemented by engines that can delete attributes.
type AttrRemover interface {
	RemoveAttr(oh ObjectHandle, name string) error
}
