package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/dtype"
	"github.com/robert-malhotra/go-hdf4/hdf4"
)

func newImportDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import-demo <file>",
		Short: "Create a small sample container",
		Long: `Create a container holding a group with an array, an image with a
palette and a table, plus a file label and global attributes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := hdf4.Create(a.b, args[0], hdf4.WithLogger(a.log))
			if err != nil {
				return err
			}
			if err := buildDemo(f); err != nil {
				f.Close()
				return err
			}
			a.log.Info("demo written", zap.String("file", args[0]), zap.Int("objects", len(f.Registry())))
			fmt.Fprintf(a.out, "wrote %s (%d objects)\n", args[0], len(f.Registry()))
			return f.Close()
		},
	}
}

func buildDemo(f *hdf4.File) error {
	history, err := hdf4.NewAttribute("history", backend.TypeChar8, "created by h4view import-demo")
	if err != nil {
		return err
	}
	if err := f.Root().WriteMetadata(history); err != nil {
		return err
	}

	grid, err := f.CreateGroup("Grid", nil, hdf4.WithClass("Data"))
	if err != nil {
		return err
	}

	temps := make([]float32, 4*5)
	for i := range temps {
		temps[i] = 270 + float32(i)/2
	}
	data, err := dtype.NewBuffer(backend.TypeFloat32, temps)
	if err != nil {
		return err
	}
	units, err := hdf4.NewAttribute("units", backend.TypeChar8, "K")
	if err != nil {
		return err
	}
	if _, err := f.CreateArray("temperature", grid, backend.TypeFloat32, []int64{4, 5},
		hdf4.WithData(data),
		hdf4.WithAttribute(units),
		hdf4.WithFillValue(float32(-999)),
		hdf4.WithCompression(6)); err != nil {
		return err
	}

	const w, h = 8, 4
	pixels := make([]byte, w*h)
	for i := range pixels {
		pixels[i] = byte(i % 4)
	}
	pal := backend.Palette{NComp: 3, Type: backend.TypeUChar8, Entries: 4}
	for i := range pal.Entries {
		pal.Data = append(pal.Data, byte(i*64), byte(255-i*64), 128)
	}
	if _, err := f.CreateImage("mask", grid, backend.TypeUChar8, w, h,
		hdf4.WithData(dtype.Buffer{Type: backend.TypeUChar8, Data: pixels}),
		hdf4.WithPalette(pal)); err != nil {
		return err
	}

	fields := []backend.Field{
		{Name: "id", Type: backend.TypeInt16, Order: 1},
		{Name: "temp", Type: backend.TypeFloat32, Order: 1},
	}
	tbl, err := f.CreateTable("stations", nil, fields, hdf4.WithClass("Stations"))
	if err != nil {
		return err
	}
	var records []byte
	for i, t := range []float32{271.5, 268.25, 280} {
		rec, err := encodeRecord(
			dtype.Buffer{Type: backend.TypeInt16, Data: []int16{int16(i + 1)}},
			dtype.Buffer{Type: backend.TypeFloat32, Data: []float32{t}},
		)
		if err != nil {
			return err
		}
		records = append(records, rec...)
	}
	return tbl.Append(records)
}

func encodeRecord(values ...dtype.Buffer) ([]byte, error) {
	var rec []byte
	for _, v := range values {
		raw, err := dtype.Encode(v)
		if err != nil {
			return nil, err
		}
		rec = append(rec, raw...)
	}
	return rec, nil
}

func dtypeName(t backend.NativeType) string {
	return dtype.FromNative(t).Description()
}
