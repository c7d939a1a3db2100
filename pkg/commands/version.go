package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/quicklog/pkg/buildinfo"
)

func addVersion(topLevel *cobra.Command) {
	short := false
	format := buildinfo.FormatJSON
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the quicklog build.",
		Example: `
quicklog version
quicklog version -s
quicklog version -o yaml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != buildinfo.FormatJSON && format != buildinfo.FormatYAML {
				return fmt.Errorf("unknown output %q, want json or yaml", format)
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), buildinfo.Render(short, format))
			return err
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print just the version number.")
	cmd.Flags().StringVarP(&format, "output", "o", format, "Output format. One of 'yaml' or 'json'.")

	topLevel.AddCommand(cmd)
}
