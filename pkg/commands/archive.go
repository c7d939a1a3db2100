package commands

import (
	"context"
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"tableflip.dev/quicklog/pkg/archive"
	"tableflip.dev/quicklog/pkg/commands/options"
	"tableflip.dev/quicklog/pkg/printers"
)

func addArchive(topLevel *cobra.Command, g *globalOptions) {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Browse exports kept with --archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	fo := &options.FormatOptions{}
	kind := ""
	list := &cobra.Command{
		Use:   "list",
		Short: "List archived exports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := fo.Validate(); err != nil {
				return err
			}
			var want archive.Kind
			if kind != "" {
				k, err := archive.ParseKind(kind)
				if err != nil {
					return err
				}
				want = k
			}
			return g.run(cmd, func(_ context.Context, e *env) error {
				a, err := e.withArchive()
				if err != nil {
					return err
				}
				items, err := a.List()
				if err != nil {
					return err
				}
				if want != "" {
					kept := items[:0]
					for _, it := range items {
						if it.Kind == want {
							kept = append(kept, it)
						}
					}
					items = kept
				}
				if fo.Structured() {
					return fo.Write(cmd.OutOrStdout(), items)
				}
				tbl := uitable.New()
				tbl.Separator = "  "
				tbl.AddRow("KEY", "KIND", "WHEN", "BYTES")
				for _, it := range items {
					tbl.AddRow(it.Key, it.Kind, it.At.Local().Format(printers.TimeLayout), it.Size)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), tbl)
				return nil
			})
		},
	}
	options.AddFormatArg(list, fo)
	list.Flags().StringVar(&kind, "kind", "", "Only list exports of this kind.")

	show := &cobra.Command{
		Use:   "show KEY",
		Short: "Print an archived export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(_ context.Context, e *env) error {
				a, err := e.withArchive()
				if err != nil {
					return err
				}
				body, err := a.Get(args[0])
				if err != nil {
					return err
				}
				return writeOut(cmd, "", body)
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm KEY...",
		Short: "Delete archived exports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(_ context.Context, e *env) error {
				a, err := e.withArchive()
				if err != nil {
					return err
				}
				for _, key := range args {
					if err := a.Delete(key); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.AddCommand(list, show, rm)
	topLevel.AddCommand(cmd)
}
