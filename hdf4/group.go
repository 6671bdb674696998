package hdf4

import (
	"slices"
	"sync"

	"github.com/robert-malhotra/go-hdf4/backend"
)

// Group is a container of member nodes. The root group is a pseudo-group
// with id (0,0) holding every top-level object.
//
// A group reached a second time during loading, either through a cycle or
// from a second parent, becomes a link: it has no members of its own and
// Target returns the group that was expanded.
type Group struct {
	object

	mu      sync.Mutex
	members []Node
	target  *Group
}

func newGroup(f *File, id backend.ObjectID, name, class string, parent *Group) *Group {
	g := &Group{}
	g.init(f, id, name, class, parent)
	return g
}

func newRoot(f *File) *Group {
	return newGroup(f, backend.RootID, "/", "", nil)
}

func (*Group) isNode() {}

// IsRoot reports whether g is the root group.
func (g *Group) IsRoot() bool {
	return g.parent == nil && g.id.IsRoot()
}

// IsLink reports whether g stands in for a group expanded elsewhere.
func (g *Group) IsLink() bool {
	return g.target != nil
}

// Target returns the expanded group a link refers to, or nil.
func (g *Group) Target() *Group {
	return g.target
}

// Resolve returns the target of a link group and g itself otherwise.
func (g *Group) Resolve() *Group {
	if g.target != nil {
		return g.target
	}
	return g
}

// Members returns a snapshot of the member list in discovery order.
func (g *Group) Members() []Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.members)
}

// Len returns the number of members.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.members)
}

// Member returns the first member named name.
func (g *Group) Member(name string) (Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, n := range g.members {
		if n.Name() == name {
			return n, true
		}
	}
	return nil, false
}

// Group returns the member group named name.
func (g *Group) Group(name string) (*Group, error) {
	n, ok := g.Member(name)
	if !ok {
		return nil, ErrNotFound
	}
	sub, ok := n.(*Group)
	if !ok {
		return nil, ErrNotGroup
	}
	return sub, nil
}

// Dataset returns the member dataset named name.
func (g *Group) Dataset(name string) (Dataset, error) {
	n, ok := g.Member(name)
	if !ok {
		return nil, ErrNotFound
	}
	ds, ok := n.(Dataset)
	if !ok {
		return nil, ErrNotDataset
	}
	return ds, nil
}

func (g *Group) addMember(n Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members = append(g.members, n)
}

// ancestor returns the group with id on the parent chain starting at g,
// g included.
func (g *Group) ancestor(id backend.ObjectID) *Group {
	for p := g; p != nil; p = p.parent {
		if p.id == id {
			return p
		}
	}
	return nil
}

// contains reports whether other is g or lies below it.
func (g *Group) contains(other *Group) bool {
	for p := other; p != nil; p = p.parent {
		if p == g || (!p.id.IsRoot() && p.id == g.id) {
			return true
		}
	}
	return false
}
