package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/hdf4"
)

func newTreeCmd(a *app) *cobra.Command {
	var withAttrs bool
	cmd := &cobra.Command{
		Use:   "tree <file>",
		Short: "Print the object tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.open(args[0], backend.ReadOnly)
			if err != nil {
				return err
			}
			defer a.closeFile(f)

			printGroup(a.out, f.Root(), "", withAttrs)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&withAttrs, "attrs", "a", false, "list attribute names")
	return cmd
}

func printGroup(w io.Writer, g *hdf4.Group, indent string, withAttrs bool) {
	if g.IsLink() {
		fmt.Fprintf(w, "%sGroup %q %s -> %s\n", indent, g.Name(), g.ID(), g.Target().FullPath())
		return
	}
	fmt.Fprintf(w, "%sGroup %q %s\n", indent, g.FullPath(), g.ID())
	if g.Class() != "" {
		fmt.Fprintf(w, "%s  Class: %s\n", indent, g.Class())
	}
	fmt.Fprintf(w, "%s  Members: %d\n", indent, g.Len())
	if withAttrs {
		printAttrNames(w, g, indent+"  ")
	}

	for _, m := range g.Members() {
		switch n := m.(type) {
		case *hdf4.Group:
			printGroup(w, n, indent+"  ", withAttrs)
		case hdf4.Dataset:
			printDataset(w, n, indent+"  ")
			if withAttrs {
				printAttrNames(w, n, indent+"    ")
			}
		}
	}
}

func printDataset(w io.Writer, ds hdf4.Dataset, indent string) {
	kind := "Array"
	switch n := ds.(type) {
	case *hdf4.ImageDataset:
		kind = fmt.Sprintf("Image (%d comp)", n.NComp())
	case *hdf4.TableDataset:
		kind = fmt.Sprintf("Table (%d fields)", len(n.Fields()))
	}
	fmt.Fprintf(w, "%s%s %q %s\n", indent, kind, ds.Name(), ds.ID())
	fmt.Fprintf(w, "%s  Shape: %v\n", indent, ds.Dims())
	fmt.Fprintf(w, "%s  Type: %s\n", indent, ds.Datatype().Description())
}

func printAttrNames(w io.Writer, n hdf4.Node, indent string) {
	attrs, err := n.Metadata()
	if err != nil {
		fmt.Fprintf(w, "%sAttrs: ERROR %v\n", indent, err)
		return
	}
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = a.Name
	}
	fmt.Fprintf(w, "%sAttrs: %q\n", indent, names)
}
