package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/quicklog/pkg/commands/options"
	"tableflip.dev/quicklog/pkg/entry"
	"tableflip.dev/quicklog/pkg/state"
	"tableflip.dev/quicklog/pkg/tag"
)

type logOptions struct {
	options.TagOptions
	Note     string
	Lat, Lon float64
	Place    string
	Edit     int64
	Create   bool
	Timeout  time.Duration
}

func addLog(topLevel *cobra.Command, g *globalOptions) {
	lo := &logOptions{}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log an entry from a set of tags",
		Example: `
quicklog log -t work -t office
quicklog log -t coffee --note "flat white" --place "Corner Café" --lat 52.52 --lon 13.40
quicklog log --edit 12 -t home
quicklog log -t "Board games" --create
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("lat") != flags.Changed("lon") {
				return errors.New("--lat and --lon must be given together")
			}
			return g.run(cmd, func(ctx context.Context, e *env) error {
				ctx, cancel := context.WithTimeout(ctx, lo.Timeout)
				defer cancel()

				var loc *entry.Location
				switch {
				case flags.Changed("lat"):
					l := entry.At(lo.Lat, lo.Lon, lo.Place)
					loc = &l
				case flags.Changed("place"):
					l := entry.Location{}
					if lo.Place != "" {
						place := lo.Place
						l.Label = &place
					}
					loc = &l
				}
				updated, err := logEntry(ctx, e, lo, flags.Changed("note"), loc)
				if err != nil {
					return err
				}
				if updated {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Entry updated")
				} else {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Entry saved")
				}
				return nil
			})
		},
	}

	options.AddTagArgs(cmd, &lo.TagOptions, "Tag to select, by label or id. Repeatable.")
	cmd.Flags().StringVarP(&lo.Note, "note", "n", "", "Note for the entry.")
	cmd.Flags().Float64Var(&lo.Lat, "lat", 0, "Latitude.")
	cmd.Flags().Float64Var(&lo.Lon, "lon", 0, "Longitude.")
	cmd.Flags().StringVar(&lo.Place, "place", "", "Name of the place.")
	cmd.Flags().Int64Var(&lo.Edit, "edit", 0, "Replace the entry with this id instead of adding one.")
	cmd.Flags().BoolVar(&lo.Create, "create", false, "Create tags that do not exist yet.")
	cmd.Flags().DurationVar(&lo.Timeout, "timeout", 10*time.Second, "How long to wait for the save.")
	base.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}

// logEntry drives a composer through one save: optionally load an entry for
// editing, select tags, set the note and location, save and wait for the
// outcome.
func logEntry(ctx context.Context, e *env, lo *logOptions, noteSet bool, loc *entry.Location) (bool, error) {
	s, ctx := startSession(ctx, e)
	defer func() { _ = s.stop() }()

	snap, err := s.c.WaitLoaded(ctx)
	if err != nil {
		return false, err
	}

	refs := lo.Refs()
	if lo.Edit != 0 {
		if _, err := e.svc.Entry(ctx, lo.Edit); err != nil {
			return false, err
		}
		s.c.BeginEditing(lo.Edit)
		snap, err = s.waitSnapshot(ctx, func(snap state.Snapshot) bool {
			return snap.Draft.EntryID != nil && *snap.Draft.EntryID == lo.Edit
		})
		if err != nil {
			return false, err
		}
		if len(refs) > 0 {
			s.c.ClearTags()
		}
	}

	for _, ref := range refs {
		if t, ok := findTag(snap.AllTags, ref); ok {
			s.c.SelectTag(t)
			continue
		}
		if !lo.Create {
			return false, fmt.Errorf("unknown tag %q, use --create to add it", ref)
		}
		s.c.CreateCustomTag(ref)
		ev, err := s.waitEvent(ctx, func(ev state.Event) bool {
			switch ev.(type) {
			case state.CustomTagCreated, state.Error:
				return true
			}
			return false
		})
		if err != nil {
			return false, err
		}
		if failed, ok := ev.(state.Error); ok {
			return false, errors.New(failed.Message)
		}
	}

	if noteSet {
		s.c.SetNote(lo.Note)
	}
	if loc != nil {
		s.c.UpdateLocation(*loc)
		if lo.Edit != 0 {
			s.c.ApplyCurrentLocation()
		}
	}

	s.c.SaveEntry()
	ev, err := s.waitEvent(ctx, func(ev state.Event) bool {
		switch ev.(type) {
		case state.EntrySaved, state.Error:
			return true
		}
		return false
	})
	if err != nil {
		return false, err
	}
	switch ev := ev.(type) {
	case state.EntrySaved:
		return ev.Updated, nil
	case state.Error:
		return false, errors.New(ev.Message)
	}
	return false, nil
}

func findTag(tags []tag.Tag, ref string) (tag.Tag, bool) {
	for _, t := range tags {
		if t.ID == ref {
			return t, true
		}
	}
	return tag.FindByLabel(tags, ref)
}
