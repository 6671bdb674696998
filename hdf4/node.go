package hdf4

import (
	"github.com/robert-malhotra/go-hdf4/backend"
)

// Node is a materialised container object: *Group, *ArrayDataset,
// *ImageDataset or *TableDataset.
type Node interface {
	// ID returns the (tag, ref) identity. The root group has id (0,0).
	ID() backend.ObjectID
	Name() string
	// Path returns the container path of the parent, slash-terminated.
	// Children of the root have path "/".
	Path() string
	FullPath() string
	// Parent returns nil for the root group.
	Parent() *Group
	File() *File
	Class() string

	// Metadata returns the attribute list, fetching it from the engine on
	// first use.
	Metadata() ([]*Attribute, error)
	WriteMetadata(a *Attribute) error
	RemoveMetadata(name string) error

	isNode()
}

// object holds the state shared by every node.
type object struct {
	file   *File
	id     backend.ObjectID
	name   string
	class  string
	path   string
	parent *Group

	attrs attrCache
	// observe sees every freshly fetched attribute list.
	observe func([]*Attribute)
}

func (o *object) init(f *File, id backend.ObjectID, name, class string, parent *Group) {
	o.file = f
	o.id = id
	o.name = name
	o.class = class
	o.parent = parent
	if parent != nil {
		o.path = childPath(parent)
	}
}

func childPath(parent *Group) string {
	if parent.IsRoot() {
		return "/"
	}
	return parent.FullPath() + "/"
}

// ID returns the object id.
func (o *object) ID() backend.ObjectID { return o.id }

// Name returns the object name.
func (o *object) Name() string { return o.name }

// Path returns the parent path.
func (o *object) Path() string { return o.path }

// FullPath returns the path of the object itself.
func (o *object) FullPath() string {
	if o.parent == nil {
		return "/"
	}
	return o.path + o.name
}

// Parent returns the parent group.
func (o *object) Parent() *Group { return o.parent }

// File returns the owning file.
func (o *object) File() *File { return o.file }

// Class returns the class name. Only groups and tables carry one.
func (o *object) Class() string { return o.class }
