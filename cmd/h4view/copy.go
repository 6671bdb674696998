package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/hdf4"
)

func newCopyCmd(a *app) *cobra.Command {
	var name, into string
	cmd := &cobra.Command{
		Use:   "copy <file> <path> <group>",
		Short: "Copy an object into a group",
		Long: `Copy an array, image or group, with its attributes, into a group.
With --into the copy is written to another container.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := backend.ReadWrite
			if into != "" {
				mode = backend.ReadOnly
			}
			src, err := a.open(args[0], mode)
			if err != nil {
				return err
			}
			defer a.closeFile(src)

			dstFile := src
			if into != "" {
				dstFile, err = a.open(into, backend.ReadWrite)
				if err != nil {
					return err
				}
				defer a.closeFile(dstFile)
			}

			n, err := lookup(src, args[1])
			if err != nil {
				return err
			}
			target, err := lookup(dstFile, args[2])
			if err != nil {
				return err
			}
			g, ok := target.(*hdf4.Group)
			if !ok {
				return fmt.Errorf("%s: %w", args[2], hdf4.ErrNotGroup)
			}

			cp, err := dstFile.Copy(n, g, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "copied %s %s -> %s %s\n", n.FullPath(), n.ID(), cp.FullPath(), cp.ID())
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name of the copy (default: the source name)")
	cmd.Flags().StringVar(&into, "into", "", "destination container (default: the source container)")
	return cmd
}
