package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/simonhull/imagemeta"
)

func newInspectCmd() *cobra.Command {
	var showCustom bool

	cmd := &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Print the decoded header metadata",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				img, err := imagemeta.Open(path, imagemeta.WithoutValidation())
				if err != nil {
					return err
				}
				printImage(cmd, img, showCustom)
				if err := img.Close(); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showCustom, "custom", false, "also print ancillary key/value pairs")
	return cmd
}

func printImage(cmd *cobra.Command, img *imagemeta.Image, showCustom bool) {
	out := cmd.OutOrStdout()
	meta := img.Meta

	fmt.Fprintf(out, "%s: %s %dx%d %d-bit\n", img.Path, img.Format,
		meta.Width(), meta.Height(), meta.BitDepth())

	if depths := meta.BitsPerChannel(); len(depths) > 0 {
		fmt.Fprintf(out, "  channels: %v bits\n", depths)
	}
	if blob := meta.ExifBlob(); blob != nil {
		fmt.Fprintf(out, "  exif: %d bytes\n", len(blob))
	}
	if blob := meta.IccProfileBlob(); blob != nil {
		fmt.Fprintf(out, "  icc profile: %d bytes\n", len(blob))
	}
	if xmp := meta.XmpText(); xmp != "" {
		fmt.Fprintf(out, "  xmp: %d characters\n", len(xmp))
	}
	for _, f := range []struct{ name, value string }{
		{"software", meta.Software()},
		{"description", meta.Description()},
		{"copyright", meta.Copyright()},
		{"author", meta.Author()},
	} {
		if f.value != "" {
			fmt.Fprintf(out, "  %s: %s\n", f.name, f.value)
		}
	}
	if t, ok := meta.ModificationTime(); ok {
		fmt.Fprintf(out, "  modified: %s\n", t.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(out, "  estimated footprint: %d bytes\n", meta.EstimatedMemoryUsage())

	if showCustom && meta.CustomLen() > 0 {
		keys := make([]string, 0, meta.CustomLen())
		for k := range meta.AllCustom() {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v, _ := meta.Custom(k)
			fmt.Fprintf(out, "  %s: %s\n", k, v)
		}
	}
}
