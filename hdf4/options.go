package hdf4

import (
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/dtype"
)

// LoadOptions controls tree discovery.
type LoadOptions struct {
	// StartMembers and MaxMembers select the window [start, start+max) of
	// top-level objects per kind and of members per group. A MaxMembers of
	// zero, or one covering the whole set, loads everything.
	StartMembers int
	MaxMembers   int
	// ShowAll disables the class-name deny-list.
	ShowAll bool
}

func (o LoadOptions) window() backend.Window {
	return backend.Window{Start: o.StartMembers, MaxCount: o.MaxMembers}
}

// Option configures Open.
type Option func(*options)

type options struct {
	load LoadOptions
	log  *zap.Logger
	mode backend.Mode
}

func defaultOptions() *options {
	return &options{
		log:  zap.NewNop(),
		mode: backend.ReadOnly,
	}
}

// WithLoadOptions replaces all discovery options.
func WithLoadOptions(lo LoadOptions) Option {
	return func(o *options) {
		o.load = lo
	}
}

// WithWindow restricts discovery to count members starting at start.
func WithWindow(start, count int) Option {
	return func(o *options) {
		o.load.StartMembers = start
		o.load.MaxMembers = count
	}
}

// WithShowAll includes objects normally hidden by their class name.
func WithShowAll(show bool) Option {
	return func(o *options) {
		o.load.ShowAll = show
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithMode sets the access mode. The default is read-only.
func WithMode(mode backend.Mode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// CreateOption configures object creation.
type CreateOption func(*createOptions)

type createOptions struct {
	class     string
	chunks    []int64
	maxDims   []int64
	deflate   int
	fill      any
	data      *dtype.Buffer
	attrs     []*Attribute
	ncomp     int
	interlace int
	palette   *backend.Palette
}

// WithClass sets the class name of a group or table.
func WithClass(class string) CreateOption {
	return func(o *createOptions) {
		o.class = class
	}
}

// WithChunks sets the chunk dimensions.
func WithChunks(dims ...int64) CreateOption {
	return func(o *createOptions) {
		o.chunks = dims
	}
}

// WithMaxDims sets the maximum dimensions of an array. Use
// backend.Unlimited on the first axis for an extendable array.
func WithMaxDims(dims ...int64) CreateOption {
	return func(o *createOptions) {
		o.maxDims = dims
	}
}

// WithCompression sets the deflate level (1-9, 0 = none).
func WithCompression(level int) CreateOption {
	return func(o *createOptions) {
		if level >= 0 && level <= 9 {
			o.deflate = level
		}
	}
}

// WithFillValue sets the fill value of an array. Unwritten elements read
// back as the fill value.
func WithFillValue(v any) CreateOption {
	return func(o *createOptions) {
		o.fill = v
	}
}

// WithData sets the initial content.
func WithData(buf dtype.Buffer) CreateOption {
	return func(o *createOptions) {
		o.data = &buf
	}
}

// WithAttribute adds an attribute. Multiple WithAttribute options can be
// used to add multiple attributes.
func WithAttribute(a *Attribute) CreateOption {
	return func(o *createOptions) {
		o.attrs = append(o.attrs, a)
	}
}

// WithComponents sets the number of components per pixel of an image.
func WithComponents(n int) CreateOption {
	return func(o *createOptions) {
		if n > 0 {
			o.ncomp = n
		}
	}
}

// WithInterlace records the interlace mode of an image.
func WithInterlace(mode int) CreateOption {
	return func(o *createOptions) {
		o.interlace = mode
	}
}

// WithPalette attaches a palette to an image.
func WithPalette(p backend.Palette) CreateOption {
	return func(o *createOptions) {
		o.palette = &p
	}
}
