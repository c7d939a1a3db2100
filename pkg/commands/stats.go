package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/quicklog/pkg/app"
	"tableflip.dev/quicklog/pkg/commands/options"
	"tableflip.dev/quicklog/pkg/timeutil"
)

type statsOptions struct {
	options.WindowOptions
	options.FormatOptions
	Calendar bool
}

func addStats(topLevel *cobra.Command, g *globalOptions) {
	so := &statsOptions{}

	cmd := &cobra.Command{
		Use:     "stats",
		Aliases: []string{"report"},
		Short:   "Summarize entries by tag, location and day",
		Long: `Stats counts entries within the specified time window.

Examples:
  quicklog stats
  quicklog stats --last 3d
  quicklog stats --last 1w2d -o json
  quicklog stats --since 2024-03-01 --calendar`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := so.Validate(); err != nil {
				return err
			}
			now := time.Now()
			r, err := so.Range(now)
			if err != nil {
				return err
			}
			return g.run(cmd, func(ctx context.Context, e *env) error {
				report, err := e.svc.Report(ctx, r.Since, r.Until, time.Local)
				if err != nil {
					return err
				}
				if so.Structured() {
					return so.Write(cmd.OutOrStdout(), report)
				}
				e.pp.Out = cmd.OutOrStdout()
				e.pp.Report(report, so.Label(r))
				if so.Calendar {
					on := now
					if !r.Since.IsZero() {
						on = r.Since
					}
					entries, err := e.svc.Search(ctx, app.Filter{Since: r.Since, Until: r.Until})
					if err != nil {
						return err
					}
					for m := timeutil.StartOfDay(on).AddDate(0, 0, 1-on.Day()); !m.After(now); m = m.AddDate(0, 1, 0) {
						e.pp.Calendar(m, entries)
					}
				}
				return nil
			})
		},
	}

	options.AddWindowArgs(cmd, &so.WindowOptions, timeutil.DefaultWindow)
	options.AddFormatArg(cmd, &so.FormatOptions)
	cmd.Flags().BoolVar(&so.Calendar, "calendar", false, "Also print a month calendar of active days.")
	topLevel.AddCommand(cmd)
}
