package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/hdf4"
)

func newAttrsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "attrs <file> [path | path@name]",
		Short: "List the attributes of an object",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.open(args[0], backend.ReadOnly)
			if err != nil {
				return err
			}
			defer a.closeFile(f)

			path, name := "/", ""
			if len(args) == 2 {
				path = args[1]
				if strings.Contains(path, "@") {
					path, name, err = hdf4.ParseAttrPath(path)
					if err != nil {
						return err
					}
				}
			}
			n, err := lookup(f, path)
			if err != nil {
				return err
			}

			attrs, err := n.Metadata()
			if err != nil {
				return err
			}
			for _, attr := range attrs {
				if name != "" && attr.Name != name {
					continue
				}
				printAttr(a.out, attr)
				if name != "" {
					return nil
				}
			}
			if name != "" {
				return fmt.Errorf("%s: %w", hdf4.JoinAttrPath(path, name), hdf4.ErrNotFound)
			}
			return nil
		},
	}
}

func printAttr(w io.Writer, attr *hdf4.Attribute) {
	if s, ok := attr.Value.(string); ok {
		fmt.Fprintf(w, "%s (%s) = %q\n", attr.Name, attr.Datatype.Description(), s)
		return
	}
	fmt.Fprintf(w, "%s (%s) %v = %v\n", attr.Name, attr.Datatype.Description(), attr.Dims, attr.Value)
}
