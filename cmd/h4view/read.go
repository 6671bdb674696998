package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/dtype"
	"github.com/robert-malhotra/go-hdf4/hdf4"
)

func newReadCmd(a *app) *cobra.Command {
	var start, count, stride []int64
	cmd := &cobra.Command{
		Use:   "read <file> <path>",
		Short: "Print the values of a dataset",
		Long: `Print the values of a dataset. Without --count the default selection
is read. Images are addressed as (width, height); tables are printed per field.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.open(args[0], backend.ReadOnly)
			if err != nil {
				return err
			}
			defer a.closeFile(f)

			n, err := lookup(f, args[1])
			if err != nil {
				return err
			}
			ds, ok := n.(hdf4.Dataset)
			if !ok {
				return fmt.Errorf("%s: %w", args[1], hdf4.ErrNotDataset)
			}
			if err := ds.Init(); err != nil {
				return err
			}

			sel := ds.Selection()
			if len(count) > 0 {
				sel.Count = count
				sel.Start = start
				if len(sel.Start) == 0 {
					sel.Start = make([]int64, len(count))
				}
				sel.Stride = nil
				if len(stride) > 0 {
					sel.Stride = stride
				}
			}

			if tbl, ok := ds.(*hdf4.TableDataset); ok {
				cols, err := tbl.ReadColumns(sel)
				if err != nil {
					return err
				}
				for _, c := range cols {
					fmt.Fprintf(a.out, "%s: ", c.Field.Name)
					printBuffer(a.out, c.Data)
				}
				return nil
			}

			buf, err := ds.ReadSelection(sel)
			if err != nil {
				return err
			}
			printBuffer(a.out, buf)
			return nil
		},
	}
	cmd.Flags().Int64SliceVar(&start, "start", nil, "selection start per axis")
	cmd.Flags().Int64SliceVar(&count, "count", nil, "selection count per axis")
	cmd.Flags().Int64SliceVar(&stride, "stride", nil, "selection stride per axis")
	return cmd
}

func printBuffer(w io.Writer, buf dtype.Buffer) {
	if dtype.IsChar(buf.Type) {
		fmt.Fprintf(w, "%q\n", buf.Strings(0))
		return
	}
	fmt.Fprintln(w, buf.Unsigned())
}
