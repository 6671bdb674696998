package hdf4

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/dtype"
)

// ImageDataset is a raster image of width x height pixels with one or more
// components per pixel.
//
// Dims and selections are (width, height). Buffers are row-major with the
// width axis varying fastest, followed by the components of each pixel.
type ImageDataset struct {
	dataset
	ncomp     int
	interlace int
}

var _ Dataset = (*ImageDataset)(nil)

func newImageDataset(f *File, id backend.ObjectID, name string, parent *Group) *ImageDataset {
	img := &ImageDataset{}
	img.init(f, id, name, "", parent)
	img.configure = img.configureImage
	img.observe = img.observeFill
	return img
}

func (*ImageDataset) isNode() {}

func (img *ImageDataset) configureImage(shape backend.Shape) {
	img.ncomp = max(shape.NComp, 1)
	img.interlace = shape.Interlace
	if img.rank != 2 || len(img.dims) != 2 {
		img.rank = 2
		img.dims = []int64{1, 1}
	}
	img.maxDims = append([]int64(nil), img.dims...)
	img.sel = Selection{
		Start: make([]int64, 2),
		Count: append([]int64(nil), img.dims...),
		Index: [3]int{1, 0, 2},
	}
}

// Width returns the number of pixels per row.
func (img *ImageDataset) Width() int64 {
	if dims := img.Dims(); len(dims) == 2 {
		return dims[0]
	}
	return 0
}

// Height returns the number of rows.
func (img *ImageDataset) Height() int64 {
	if dims := img.Dims(); len(dims) == 2 {
		return dims[1]
	}
	return 0
}

// NComp returns the number of components per pixel.
func (img *ImageDataset) NComp() int {
	if img.Init() != nil {
		return 0
	}
	img.mu.Lock()
	defer img.mu.Unlock()
	return img.ncomp
}

// Interlace returns the interlace mode recorded for the image.
func (img *ImageDataset) Interlace() int {
	if img.Init() != nil {
		return 0
	}
	img.mu.Lock()
	defer img.mu.Unlock()
	return img.interlace
}

// Read reads the current selection.
func (img *ImageDataset) Read() (dtype.Buffer, error) {
	return img.ReadSelection(img.Selection())
}

// ReadSelection reads the pixels selected by s.
func (img *ImageDataset) ReadSelection(s Selection) (dtype.Buffer, error) {
	raw, err := img.readRaw(s)
	if err != nil {
		return dtype.Buffer{}, err
	}
	buf, err := dtype.Decode(img.NativeType(), raw)
	if err != nil {
		return dtype.Buffer{}, Error.Wrap(err)
	}
	return buf, nil
}

// Write writes buf into the current selection.
func (img *ImageDataset) Write(buf dtype.Buffer) error {
	return img.WriteSelection(img.Selection(), buf)
}

// WriteSelection writes the pixels of buf into the region selected by s.
func (img *ImageDataset) WriteSelection(s Selection, buf dtype.Buffer) error {
	if err := img.Init(); err != nil {
		return err
	}
	raw, err := img.encode(buf, s.NumElements()*int64(img.NComp()))
	if err != nil {
		return err
	}
	return img.writeRaw(s, raw)
}

// Palette returns the first palette of the image, or false if it has none.
func (img *ImageDataset) Palette() (backend.Palette, bool, error) {
	var p backend.Palette
	err := img.file.withObject(img.id, backend.ReadOnly, func(oh backend.ObjectHandle) error {
		var err error
		p, err = img.file.b.ReadPalette(oh, 0)
		return err
	})
	if errors.Is(err, backend.ErrNoPalette) {
		return backend.Palette{}, false, nil
	}
	if err != nil {
		return backend.Palette{}, false, Error.Wrap(fmt.Errorf("palette of %s: %w", img.id, err))
	}
	return p, true, nil
}

// SetPalette stores p as the first palette of the image.
func (img *ImageDataset) SetPalette(p backend.Palette) error {
	if err := img.file.checkWritable(); err != nil {
		return err
	}
	if err := checkPalette(p); err != nil {
		return err
	}
	err := img.file.withObject(img.id, backend.ReadWrite, func(oh backend.ObjectHandle) error {
		return img.file.b.WritePalette(oh, 0, p)
	})
	if err != nil {
		return Error.Wrap(fmt.Errorf("palette of %s: %w", img.id, err))
	}
	return nil
}
