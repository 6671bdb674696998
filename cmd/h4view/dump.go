package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/hdf4"
)

// dumpNode is the YAML form of one node.
type dumpNode struct {
	Name     string            `yaml:"name"`
	Kind     string            `yaml:"kind"`
	ID       string            `yaml:"id"`
	Class    string            `yaml:"class,omitempty"`
	Link     string            `yaml:"link,omitempty"`
	Type     string            `yaml:"type,omitempty"`
	Dims     []int64           `yaml:"dims,flow,omitempty"`
	MaxDims  []int64           `yaml:"maxdims,flow,omitempty"`
	Fields   []dumpField       `yaml:"fields,omitempty"`
	Attrs    map[string]string `yaml:"attrs,omitempty"`
	Members  []dumpNode        `yaml:"members,omitempty"`
	Degraded []string          `yaml:"degraded,omitempty"`
}

type dumpField struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Order int    `yaml:"order"`
}

func newDumpCmd(a *app) *cobra.Command {
	var withAttrs bool
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Dump the object tree as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.open(args[0], backend.ReadOnly)
			if err != nil {
				return err
			}
			defer a.closeFile(f)

			doc := dumpGroup(f.Root(), withAttrs)
			for _, d := range f.Degraded() {
				doc.Degraded = append(doc.Degraded, d.Error())
			}

			enc := yaml.NewEncoder(a.out)
			enc.SetIndent(2)
			if err := enc.Encode(doc); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().BoolVarP(&withAttrs, "attrs", "a", false, "include attributes")
	return cmd
}

func dumpGroup(g *hdf4.Group, withAttrs bool) dumpNode {
	d := dumpNode{
		Name:  g.Name(),
		Kind:  backend.KindGroup.String(),
		ID:    g.ID().String(),
		Class: g.Class(),
	}
	if g.IsLink() {
		d.Link = g.Target().FullPath()
		return d
	}
	if withAttrs {
		d.Attrs = dumpAttrs(g)
	}

	for _, m := range g.Members() {
		switch n := m.(type) {
		case *hdf4.Group:
			d.Members = append(d.Members, dumpGroup(n, withAttrs))
		case hdf4.Dataset:
			d.Members = append(d.Members, dumpDataset(n, withAttrs))
		}
	}
	return d
}

func dumpDataset(ds hdf4.Dataset, withAttrs bool) dumpNode {
	d := dumpNode{
		Name:    ds.Name(),
		ID:      ds.ID().String(),
		Class:   ds.Class(),
		Type:    ds.Datatype().Description(),
		Dims:    ds.Dims(),
		MaxDims: ds.MaxDims(),
	}
	switch n := ds.(type) {
	case *hdf4.ArrayDataset:
		d.Kind = backend.KindArray.String()
	case *hdf4.ImageDataset:
		d.Kind = backend.KindImage.String()
	case *hdf4.TableDataset:
		d.Kind = backend.KindTable.String()
		for _, f := range n.Fields() {
			d.Fields = append(d.Fields, dumpField{
				Name:  f.Name,
				Type:  dtypeName(f.Type),
				Order: f.Order,
			})
		}
	}
	if withAttrs {
		d.Attrs = dumpAttrs(ds)
	}
	return d
}

func dumpAttrs(n hdf4.Node) map[string]string {
	attrs, err := n.Metadata()
	if err != nil || len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[a.Name] = a.String()
	}
	return out
}
