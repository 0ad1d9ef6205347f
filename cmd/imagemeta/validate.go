package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/imagemeta"
)

func newValidateCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check headers against their format's structural invariants",
		Long: `Validate decodes each file's header and runs the format's structural
validator, reporting every violation in one pass. Errors mark illegal
headers, warnings mark legal-but-risky ones.

The exit code is non-zero when any file reports an error entry.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			broken := 0

			for _, path := range args {
				img, err := imagemeta.Open(path)
				if err != nil {
					return err
				}

				report := img.Report
				switch {
				case report.IsValid() && len(report.Warnings) == 0:
					if !quiet {
						fmt.Fprintf(out, "%s: ok\n", path)
					}
				case report.IsValid():
					fmt.Fprintf(out, "%s: ok with %d warning(s)\n%s", path, len(report.Warnings), report)
				default:
					broken++
					fmt.Fprintf(out, "%s: %d error(s)\n%s", path, len(report.Errors), report)
				}

				if err := img.Close(); err != nil {
					return err
				}
			}

			if broken > 0 {
				return fmt.Errorf("%d of %d file(s) break structural invariants", broken, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print files with findings")
	return cmd
}
