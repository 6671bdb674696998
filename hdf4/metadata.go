package hdf4

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/robert-malhotra/go-hdf4/backend"
)

// attrCache is the lazily filled attribute list of one node. Concurrent
// first readers share a single engine fetch. Writes that land while that
// fetch is in flight are queued and applied on top of its result.
type attrCache struct {
	mu       sync.Mutex
	loaded   bool
	fetching bool
	attrs    []*Attribute
	pending  []attrEdit
	flight   singleflight.Group
}

// attrEdit is a write (attr set) or a removal (attr nil) of name.
type attrEdit struct {
	name string
	attr *Attribute
}

// get returns the cached list, calling fetch on the first use. A fetch that
// reports !ok is returned but not cached.
func (c *attrCache) get(fetch func() ([]*Attribute, bool)) []*Attribute {
	if attrs, ok := c.cached(); ok {
		return attrs
	}

	v, _, _ := c.flight.Do("attrs", func() (any, error) {
		c.mu.Lock()
		if c.loaded {
			attrs := slices.Clone(c.attrs)
			c.mu.Unlock()
			return attrs, nil
		}
		c.fetching = true
		c.mu.Unlock()

		attrs, ok := fetch()

		c.mu.Lock()
		defer c.mu.Unlock()
		c.fetching = false
		for _, e := range c.pending {
			attrs = applyEdit(attrs, e)
		}
		c.pending = nil
		if ok {
			c.attrs = attrs
			c.loaded = true
			return slices.Clone(attrs), nil
		}
		return attrs, nil
	})
	return slices.Clone(v.([]*Attribute))
}

func (c *attrCache) cached() ([]*Attribute, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return nil, false
	}
	return slices.Clone(c.attrs), true
}

// put replaces an attribute of the same name or appends. Before the first
// fetch starts nothing is recorded; that fetch will include a.
func (c *attrCache) put(a *Attribute) {
	c.edit(attrEdit{name: a.Name, attr: a})
}

func (c *attrCache) remove(name string) {
	c.edit(attrEdit{name: name})
}

func (c *attrCache) edit(e attrEdit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.loaded:
		c.attrs = applyEdit(c.attrs, e)
	case c.fetching:
		c.pending = append(c.pending, e)
	}
}

func applyEdit(attrs []*Attribute, e attrEdit) []*Attribute {
	if e.attr == nil {
		return slices.DeleteFunc(attrs, func(a *Attribute) bool {
			return a.Name == e.name
		})
	}
	for i, old := range attrs {
		if old.Name == e.name {
			attrs[i] = e.attr
			return attrs
		}
	}
	return append(attrs, e.attr)
}

// Metadata returns the attribute list. A failed fetch is logged, recorded in
// File.Degraded and yields an empty list that is fetched again next time.
func (o *object) Metadata() ([]*Attribute, error) {
	if o.file.isClosed() {
		return nil, ErrClosed
	}
	return o.attrs.get(func() ([]*Attribute, bool) {
		var (
			attrs []*Attribute
			ok    bool
		)
		if o.id.IsRoot() {
			attrs, ok = o.file.rootAttrs()
		} else {
			attrs, ok = o.file.objectAttrs(o.id)
		}
		if ok && o.observe != nil {
			o.observe(attrs)
		}
		return attrs, ok
	}), nil
}

// Attr returns the attribute with the given name.
func (o *object) Attr(name string) (*Attribute, bool) {
	attrs, err := o.Metadata()
	if err != nil {
		return nil, false
	}
	for _, a := range attrs {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// WriteMetadata stores a in the engine and then in the cache. Attributes
// written on the root group go to the array subsystem's global set.
func (o *object) WriteMetadata(a *Attribute) error {
	if a == nil || a.Name == "" {
		return ValidationError.New("attribute name is empty")
	}
	if err := o.file.checkWritable(); err != nil {
		return err
	}

	if o.id.IsRoot() {
		return o.file.WriteGlobalAttr(backend.SubsystemArray, a)
	}

	err := o.file.withObject(o.id, backend.ReadWrite, func(oh backend.ObjectHandle) error {
		return o.file.b.WriteAttr(oh, a.rawAttr())
	})
	if err != nil {
		return Error.Wrap(fmt.Errorf("writing attribute %q on %s: %w", a.Name, o.id, err))
	}

	o.attrs.put(a)
	if o.observe != nil {
		o.observe([]*Attribute{a})
	}
	return nil
}

// RemoveMetadata deletes the named attribute. Engines without attribute
// removal return ErrUnsupported.
func (o *object) RemoveMetadata(name string) error {
	if err := o.file.checkWritable(); err != nil {
		return err
	}
	remover, ok := o.file.b.(backend.AttrRemover)
	if !ok || o.id.IsRoot() {
		return ErrUnsupported
	}

	err := o.file.withObject(o.id, backend.ReadWrite, func(oh backend.ObjectHandle) error {
		return remover.RemoveAttr(oh, name)
	})
	if err != nil {
		return Error.Wrap(fmt.Errorf("removing attribute %q on %s: %w", name, o.id, err))
	}
	o.attrs.remove(name)
	return nil
}

// objectAttrs reads every attribute of id. Individual attributes that fail
// to read are skipped.
func (f *File) objectAttrs(id backend.ObjectID) ([]*Attribute, bool) {
	attrs := []*Attribute{}
	err := f.withObject(id, backend.ReadOnly, func(oh backend.ObjectHandle) error {
		shape, err := f.b.ShapeInfo(oh)
		if err != nil {
			return err
		}
		for i := 0; i < shape.AttrCount; i++ {
			info, err := f.b.AttrInfo(oh, i)
			if err != nil {
				f.log.Debug("skipping attribute", zap.Stringer("id", id), zap.Int("index", i), zap.Error(err))
				continue
			}
			raw, err := f.b.ReadAttr(oh, i)
			if err != nil {
				f.log.Debug("skipping attribute", zap.Stringer("id", id), zap.String("name", info.Name), zap.Error(err))
				continue
			}
			a, err := decodeAttribute(info, raw)
			if err != nil {
				f.log.Debug("skipping attribute", zap.Stringer("id", id), zap.Error(err))
				continue
			}
			attrs = append(attrs, a)
		}
		return nil
	})
	if err != nil {
		f.degrade("metadata", id, err)
		return []*Attribute{}, false
	}
	return attrs, true
}

// rootAttrs collects the container annotations followed by the image and
// array global attributes.
func (f *File) rootAttrs() ([]*Attribute, bool) {
	attrs := []*Attribute{}
	ok := true

	anns, err := f.b.Annotations(f.h)
	if err != nil {
		f.degrade("annotations", backend.RootID, err)
		if !errors.Is(err, backend.ErrNoSubsystem) {
			ok = false
		}
	}
	var labels, descs int
	for _, ann := range anns {
		var name string
		if ann.Kind == backend.FileLabel {
			name = fmt.Sprintf("File Label #%d", labels)
			labels++
		} else {
			name = fmt.Sprintf("File Description #%d", descs)
			descs++
		}
		text := strings.TrimRight(ann.Text, "\x00")
		if text == "" {
			continue
		}
		a, err := NewAttribute(name, backend.TypeChar8, text)
		if err != nil {
			continue
		}
		attrs = append(attrs, a)
	}

	for _, sub := range []backend.Subsystem{backend.SubsystemImage, backend.SubsystemArray} {
		raws, err := f.b.GlobalAttrs(f.h, sub)
		if err != nil {
			f.degrade(sub.String()+" global attributes", backend.RootID, err)
			if !errors.Is(err, backend.ErrNoSubsystem) {
				ok = false
			}
			continue
		}
		for _, raw := range raws {
			a, err := decodeAttribute(backend.AttrInfo{Name: raw.Name, Type: raw.Type, Count: raw.Count}, raw.Data)
			if err != nil {
				f.log.Debug("skipping global attribute", zap.String("name", raw.Name), zap.Error(err))
				continue
			}
			attrs = append(attrs, a)
		}
	}
	return attrs, ok
}

// WriteGlobalAttr writes a container-level attribute into subsystem s and
// adds it to the root group's attributes.
func (f *File) WriteGlobalAttr(s backend.Subsystem, a *Attribute) error {
	if a == nil || a.Name == "" {
		return ValidationError.New("attribute name is empty")
	}
	if err := f.checkWritable(); err != nil {
		return err
	}
	if err := f.b.WriteGlobalAttr(f.h, s, a.rawAttr()); err != nil {
		return Error.Wrap(fmt.Errorf("writing %s global attribute %q: %w", s, a.Name, err))
	}
	f.root.attrs.put(a)
	return nil
}
