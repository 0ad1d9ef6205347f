// Package main implements the imagemeta command-line tool. It provides
// commands for inspecting image header metadata and validating headers
// against their format's structural invariants.
//
// The main CLI commands are:
//   - inspect: Print the decoded header metadata for one or more files
//   - validate: Run the structural validator and report every violation
//
// See the help output for flags.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/simonhull/imagemeta"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "imagemeta",
		Short: "Inspect and validate image header metadata",
		Long: `imagemeta reads only the header region of raster image files (BMP, PNG,
TIFF, WebP) and reports the declared metadata and its structural health.
Pixel data is never read.`,
		Version:       imagemeta.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newInspectCmd())
	root.AddCommand(newValidateCmd())
	return root
}
