package hdf4

import (
	"strings"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-hdf4/backend"
)

// Class names of engine-internal groups and tables hidden unless ShowAll.
var (
	hiddenGroupClasses = []string{
		"RIG0.0", "RI0.0", "RIATTR0.0N", "RIATTR0.0C", "CDF0.0",
	}
	hiddenTableClasses = []string{
		"Attr0.0", "CDF0.0",
	}
	hiddenTablePrefixes = []string{
		"_HDF_CHK_TBL_", "SDSVar", "CoordVar", "DimVal0.0", "DimVal0.1",
		"RIATTR0.0C", "RIATTR0.0N",
	}
)

func hidden(kind backend.Kind, class string) bool {
	switch kind {
	case backend.KindGroup:
		for _, c := range hiddenGroupClasses {
			if strings.EqualFold(class, c) {
				return true
			}
		}
	case backend.KindTable:
		for _, c := range hiddenTableClasses {
			if strings.EqualFold(class, c) {
				return true
			}
		}
		for _, p := range hiddenTablePrefixes {
			if strings.HasPrefix(class, p) {
				return true
			}
		}
	}
	return false
}

// loader builds the object tree of one file.
type loader struct {
	f        *File
	expanded map[backend.ObjectID]*Group
}

// load materialises the root group: lone objects of every kind in
// discovery order, each group expanded depth first, then the container
// annotations and global attributes.
func (f *File) load() {
	f.root = newRoot(f)
	l := &loader{f: f, expanded: make(map[backend.ObjectID]*Group)}
	w := f.opts.window()

	for _, kind := range backend.Kinds {
		ids, err := f.b.EnumerateTopLevel(f.h, kind, w)
		if err != nil {
			f.degrade("enumerate "+kind.String(), backend.RootID, err)
			continue
		}
		for _, id := range ids {
			if f.reg.Register(id) {
				f.log.Debug("already loaded", zap.Stringer("id", id))
				continue
			}
			n := l.materialize(id, f.root)
			if n == nil {
				continue
			}
			f.root.addMember(n)
			if g, ok := n.(*Group); ok {
				l.expand(g)
			}
		}
	}

	// Annotations and global attributes belong to the root group.
	rootAttrs, _ := f.root.Metadata()

	f.log.Debug("loaded",
		zap.Int("objects", f.reg.Len()),
		zap.Int("top-level", f.root.Len()),
		zap.Int("root attributes", len(rootAttrs)))
}

// materialize describes id and builds its node under parent. It returns nil
// for objects that cannot be attached and for hidden classes.
func (l *loader) materialize(id backend.ObjectID, parent *Group) Node {
	f := l.f
	if kind, ok := backend.KindOf(id.Tag); ok && kind == backend.KindGroup && id.Ref <= 0 {
		return nil
	}

	var info backend.Info
	err := f.withObject(id, backend.ReadOnly, func(oh backend.ObjectHandle) error {
		var err error
		info, err = f.b.Info(oh)
		return err
	})
	if err != nil {
		f.degrade("attach", id, err)
		return nil
	}
	if !f.opts.ShowAll && hidden(info.Kind, info.Class) {
		f.log.Debug("hidden", zap.Stringer("id", id), zap.String("class", info.Class))
		return nil
	}

	switch info.Kind {
	case backend.KindGroup:
		return newGroup(f, id, info.Name, info.Class, parent)
	case backend.KindImage:
		return newImageDataset(f, id, info.Name, parent)
	case backend.KindArray:
		return newArrayDataset(f, id, info.Name, info.CoordVar, parent)
	case backend.KindTable:
		return newTableDataset(f, id, info.Name, info.Class, parent)
	default:
		f.log.Debug("unknown kind", zap.Stringer("id", id), zap.Stringer("kind", info.Kind))
		return nil
	}
}

// expand loads the members of g. A member group that is an ancestor of g,
// or that was already expanded elsewhere, is added as a link and not
// descended into.
func (l *loader) expand(g *Group) {
	f := l.f
	l.expanded[g.id] = g

	var children []backend.ObjectID
	err := f.withObject(g.id, backend.ReadOnly, func(oh backend.ObjectHandle) error {
		var err error
		children, err = f.b.ListChildren(oh)
		return err
	})
	if err != nil {
		f.degrade("list members", g.id, err)
		return
	}

	for _, id := range f.opts.window().Apply(children) {
		if _, ok := backend.KindOf(id.Tag); !ok {
			f.log.Debug("skipping unknown tag", zap.Stringer("id", id), zap.Stringer("group", g.id))
			continue
		}

		n := l.materialize(id, g)
		if n == nil {
			continue
		}
		f.reg.Register(id)
		g.addMember(n)

		child, ok := n.(*Group)
		if !ok {
			continue
		}
		if anc := g.ancestor(id); anc != nil {
			f.log.Debug("cycle", zap.Stringer("id", id), zap.Stringer("group", g.id))
			child.target = anc
			continue
		}
		if seen, ok := l.expanded[id]; ok {
			child.target = seen
			continue
		}
		l.expand(child)
	}
}
