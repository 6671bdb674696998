package hdf4

import (
	"errors"
)

// SkipGroup can be returned by a WalkFunc to skip the members of the group
// it was called for.
var SkipGroup = errors.New("skip this group")

// WalkFunc is called for each node during traversal. path is the full path
// of the node. Returning an error other than SkipGroup stops the walk.
type WalkFunc func(path string, n Node, err error) error

// Walk traverses the tree below g depth first, calling fn for g and every
// member. Link groups are reported but not descended into, so a walk always
// terminates.
//
// Example:
//
//	hdf4.Walk(f.Root(), func(path string, n hdf4.Node, err error) error {
//	    switch o := n.(type) {
//	    case *hdf4.Group:
//	        fmt.Println("group:", path)
//	    case hdf4.Dataset:
//	        fmt.Println("dataset:", path, o.Dims())
//	    }
//	    return nil
//	})
func Walk(g *Group, fn WalkFunc) error {
	err := walkGroup(g, fn)
	if errors.Is(err, SkipGroup) {
		return nil
	}
	return err
}

func walkGroup(g *Group, fn WalkFunc) error {
	if err := fn(g.FullPath(), g, nil); err != nil {
		return err
	}
	if g.IsLink() {
		return nil
	}

	for _, m := range g.Members() {
		if sub, ok := m.(*Group); ok {
			if err := walkGroup(sub, fn); err != nil && !errors.Is(err, SkipGroup) {
				return err
			}
			continue
		}
		if err := fn(m.FullPath(), m, nil); err != nil && !errors.Is(err, SkipGroup) {
			return err
		}
	}
	return nil
}

// AttrInfo describes one attribute met by WalkAttrs.
type AttrInfo struct {
	// Path is the full attribute path, e.g. "/group/temp@units".
	Path       string
	ObjectPath string
	Node       Node
	Attr       *Attribute
}

// WalkAttrsFunc is the callback of WalkAttrs.
type WalkAttrsFunc func(info AttrInfo) error

// WalkAttrs calls fn for every attribute of every node in the file,
// fetching attribute lists as needed.
func (f *File) WalkAttrs(fn WalkAttrsFunc) error {
	if f.isClosed() {
		return ErrClosed
	}
	return Walk(f.root, func(path string, n Node, _ error) error {
		attrs, err := n.Metadata()
		if err != nil {
			return err
		}
		for _, a := range attrs {
			info := AttrInfo{
				Path:       JoinAttrPath(path, a.Name),
				ObjectPath: path,
				Node:       n,
				Attr:       a,
			}
			if err := fn(info); err != nil {
				return err
			}
		}
		return nil
	})
}
