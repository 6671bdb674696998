package hdf4

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-hdf4/backend"
)

// Copy duplicates src under dst with the given name, or src's own name when
// name is empty. src may belong to another file. Data, the first palette of
// images and every attribute are copied; groups are copied recursively.
//
// The copy gets a fresh id in f and is appended to dst's members. Tables
// cannot be copied and return ErrNotImplemented. Within a group copy a
// member that fails to copy is logged and skipped.
func (f *File) Copy(src Node, dst *Group, name string) (Node, error) {
	if err := f.checkWritable(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, ValidationError.New("nothing to copy")
	}
	if src.File().isClosed() {
		return nil, ErrClosed
	}
	if dst == nil {
		dst = f.root
	}
	if dst.file != f {
		return nil, ValidationError.New("destination group %s belongs to another file", dst.id)
	}
	dst = dst.Resolve()
	if name == "" {
		name = src.Name()
		if a, ok := src.(*ArrayDataset); ok && a.coordVar {
			name = strings.TrimSuffix(name, coordSuffix)
		}
	}

	switch s := src.(type) {
	case *Group:
		s = s.Resolve()
		if s.IsRoot() {
			return nil, ValidationError.New("cannot copy the root group")
		}
		if s.file == f && s.contains(dst) {
			return nil, ValidationError.New("cannot copy group %s into itself", s.id)
		}
		return f.copyGroup(s, dst, name)
	case *ArrayDataset:
		return f.copyArray(s, dst, name)
	case *ImageDataset:
		return f.copyImage(s, dst, name)
	case *TableDataset:
		return nil, ValidationError.Wrap(fmt.Errorf("copy table %s: %w", s.id, ErrNotImplemented))
	default:
		return nil, ValidationError.Wrap(fmt.Errorf("copy %T: %w", src, ErrUnsupported))
	}
}

func (f *File) copyArray(s *ArrayDataset, dst *Group, name string) (*ArrayDataset, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	raw, err := s.rawAll()
	if err != nil {
		return nil, err
	}

	spec := backend.CreateSpec{
		Kind:     backend.KindArray,
		Name:     name,
		Dims:     s.Dims(),
		MaxDims:  s.MaxDims(),
		Type:     s.NativeType(),
		Chunks:   s.Chunks(),
		Deflate:  deflateLevel(s.Compression()),
		CoordVar: s.coordVar,
	}
	id, err := f.create(spec, dst, func(oh backend.ObjectHandle) error {
		if len(raw) > 0 {
			if err := f.b.WriteRaw(oh, nil, nil, nil, raw); err != nil {
				return err
			}
		}
		f.copyAttrs(oh, s)
		return nil
	})
	if err != nil {
		return nil, err
	}

	a := newArrayDataset(f, id, name, s.coordVar, dst)
	dst.addMember(a)
	return a, nil
}

func (f *File) copyImage(s *ImageDataset, dst *Group, name string) (*ImageDataset, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	raw, err := s.rawAll()
	if err != nil {
		return nil, err
	}
	palette, hasPalette, err := s.Palette()
	if err != nil {
		f.log.Warn("palette not copied", zap.Stringer("id", s.id), zap.Error(err))
	}

	spec := backend.CreateSpec{
		Kind:      backend.KindImage,
		Name:      name,
		Dims:      s.Dims(),
		Type:      s.NativeType(),
		NComp:     s.NComp(),
		Interlace: s.Interlace(),
		Chunks:    s.Chunks(),
		Deflate:   deflateLevel(s.Compression()),
	}
	id, err := f.create(spec, dst, func(oh backend.ObjectHandle) error {
		if len(raw) > 0 {
			if err := f.b.WriteRaw(oh, nil, nil, nil, raw); err != nil {
				return err
			}
		}
		if hasPalette {
			if err := f.b.WritePalette(oh, 0, palette); err != nil {
				f.log.Warn("palette not copied", zap.Stringer("id", s.id), zap.Error(err))
			}
		}
		f.copyAttrs(oh, s)
		return nil
	})
	if err != nil {
		return nil, err
	}

	img := newImageDataset(f, id, name, dst)
	dst.addMember(img)
	return img, nil
}

func (f *File) copyGroup(s *Group, dst *Group, name string) (*Group, error) {
	id, err := f.create(backend.CreateSpec{Kind: backend.KindGroup, Name: name, Class: s.class}, dst,
		func(oh backend.ObjectHandle) error {
			f.copyAttrs(oh, s)
			return nil
		})
	if err != nil {
		return nil, err
	}

	g := newGroup(f, id, name, s.class, dst)
	dst.addMember(g)

	for _, m := range s.Members() {
		if mg, ok := m.(*Group); ok && mg.IsLink() {
			f.log.Debug("not copying link", zap.Stringer("id", mg.id), zap.Stringer("group", s.id))
			continue
		}
		if _, err := f.Copy(m, g, ""); err != nil {
			f.log.Warn("member not copied",
				zap.Stringer("id", m.ID()),
				zap.String("name", m.Name()),
				zap.Stringer("group", s.id),
				zap.Error(err))
		}
	}
	return g, nil
}

// copyAttrs copies the attributes of src byte for byte. Attributes that
// fail to write are logged and skipped.
func (f *File) copyAttrs(oh backend.ObjectHandle, src Node) {
	attrs, err := src.Metadata()
	if err != nil {
		f.log.Warn("attributes not copied", zap.Stringer("id", src.ID()), zap.Error(err))
		return
	}
	for _, a := range attrs {
		if err := f.b.WriteAttr(oh, a.rawAttr()); err != nil {
			f.log.Warn("attribute not copied",
				zap.Stringer("id", src.ID()),
				zap.String("name", a.Name),
				zap.Error(err))
		}
	}
}

// rawAll reads the complete stored content.
func (d *dataset) rawAll() ([]byte, error) {
	if product(d.Dims()) == 0 {
		return nil, nil
	}
	var raw []byte
	err := d.file.withObject(d.id, backend.ReadOnly, func(oh backend.ObjectHandle) error {
		var err error
		raw, err = d.file.b.ReadRaw(oh, nil, nil, nil)
		return err
	})
	if err != nil {
		return nil, Error.Wrap(fmt.Errorf("reading %s: %w", d.id, err))
	}
	return raw, nil
}

// deflateLevel maps a compression description back to a create level.
func deflateLevel(compression string) int {
	if compression == "" || compression == "none" {
		return 0
	}
	return defaultDeflate
}

const defaultDeflate = 6

// IsNotImplemented reports whether err is ErrNotImplemented.
func IsNotImplemented(err error) bool {
	return errors.Is(err, ErrNotImplemented)
}
