package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/quicklog/pkg/app"
	"tableflip.dev/quicklog/pkg/commands/options"
	"tableflip.dev/quicklog/pkg/entry"
	"tableflip.dev/quicklog/pkg/printers"
	"tableflip.dev/quicklog/pkg/stats"
)

type entriesOptions struct {
	options.TagOptions
	options.WindowOptions
	options.FormatOptions
	By    string
	Query string
}

func addEntries(topLevel *cobra.Command, g *globalOptions) {
	eo := &entriesOptions{}

	cmd := &cobra.Command{
		Use:     "entries",
		Aliases: []string{"ls"},
		Short:   "List logged entries",
		Example: `
quicklog entries
quicklog entries --last 3d --by date
quicklog entries --tag work --by location
quicklog entries --by tag --query wo
quicklog entries --since 2024-03-01 --until 2024-03-31 -o yaml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := eo.Validate(); err != nil {
				return err
			}
			return g.run(cmd, func(ctx context.Context, e *env) error {
				entries, err := search(ctx, e, &eo.TagOptions, &eo.WindowOptions)
				if err != nil {
					return err
				}
				return renderEntries(cmd, e, eo, entries)
			})
		},
	}

	options.AddTagArgs(cmd, &eo.TagOptions, "Only entries with any of these tags. Repeatable.")
	options.AddWindowArgs(cmd, &eo.WindowOptions, "")
	options.AddFormatArg(cmd, &eo.FormatOptions)
	cmd.Flags().StringVar(&eo.By, "by", "", "Group by 'date', 'location' or 'tag'.")
	cmd.Flags().StringVar(&eo.Query, "query", "", "With --by tag, only tags whose label contains this.")

	addEntriesRemove(cmd, g)
	addEntriesShare(cmd, g)
	topLevel.AddCommand(cmd)
}

func search(ctx context.Context, e *env, to *options.TagOptions, wo *options.WindowOptions) ([]entry.Entry, error) {
	r, err := wo.Range(time.Now())
	if err != nil {
		return nil, err
	}
	f := app.Filter{Since: r.Since, Until: r.Until}
	if refs := to.Refs(); len(refs) > 0 {
		if f.TagIDs, err = e.svc.ResolveTags(ctx, refs); err != nil {
			return nil, err
		}
	}
	return e.svc.Search(ctx, f)
}

func renderEntries(cmd *cobra.Command, e *env, eo *entriesOptions, entries []entry.Entry) error {
	var grouped any
	switch strings.ToLower(eo.By) {
	case "":
	case "date", "day":
		grouped = stats.Timeline(entries, time.Local)
	case "location", "place":
		grouped = stats.GroupByLocation(entries)
	case "tag":
		grouped = stats.TagGroups(entries, eo.Query)
	default:
		return fmt.Errorf("unsupported --by %q, want date, location or tag", eo.By)
	}

	if eo.Structured() {
		if grouped != nil {
			return eo.Write(cmd.OutOrStdout(), grouped)
		}
		return eo.Write(cmd.OutOrStdout(), entries)
	}

	e.pp.Out = cmd.OutOrStdout()
	switch v := grouped.(type) {
	case []stats.Section:
		e.pp.Sections(v)
	case []stats.TagGroup:
		for _, group := range v {
			e.pp.TitleWithCount(group.TagLabel, len(group.Entries), "entry")
			e.pp.Entries(group.Entries)
		}
		if len(v) == 0 {
			e.pp.Entries(nil)
		}
	default:
		e.pp.TitleWithCount("Entries", len(entries), "entry")
		e.pp.Entries(entries)
	}
	return nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid entry id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func addEntriesRemove(parent *cobra.Command, g *globalOptions) {
	cmd := &cobra.Command{
		Use:     "rm ID...",
		Aliases: []string{"delete"},
		Short:   "Delete entries",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return g.run(cmd, func(ctx context.Context, e *env) error {
				if err := e.svc.DeleteEntries(ctx, ids); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d entries\n", len(ids))
				return nil
			})
		},
	}
	base.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

func addEntriesShare(parent *cobra.Command, g *globalOptions) {
	html := false
	cmd := &cobra.Command{
		Use:   "share ID...",
		Short: "Print entries as text (or HTML) ready to paste",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return g.run(cmd, func(ctx context.Context, e *env) error {
				picked := make([]entry.Entry, 0, len(ids))
				for _, id := range ids {
					en, err := e.svc.Entry(ctx, id)
					if err != nil {
						return err
					}
					picked = append(picked, en)
				}
				text, markup := printers.Share(picked, time.Local)
				if html {
					text = markup
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&html, "html", false, "Print HTML instead of text.")
	parent.AddCommand(cmd)
}
