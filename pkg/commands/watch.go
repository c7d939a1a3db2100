package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tableflip.dev/quicklog/pkg/entry"
	"tableflip.dev/quicklog/pkg/state"
)

const watchHelp = `commands:
  t LABEL      toggle a tag
  + LABEL      create a tag and select it
  n NOTE       set the note
  p PLACE      set the place
  e ID         edit an entry
  c            clear selected tags
  new          start a new entry
  s            save
  q            quit`

func addWatch(topLevel *cobra.Command, g *globalOptions) {
	entries := 8
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live view of the logging state, with simple line commands",
		Long: `Watch renders the composed state every time it changes, including
changes made by other quicklog processes on the same database.

` + watchHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(ctx context.Context, e *env) error {
				s, ctx := startSession(ctx, e)
				defer func() { _ = s.stop() }()

				if err := e.db.WatchExternal(ctx); err != nil {
					e.log.Warn("not following external changes", zap.Error(err))
				}

				out := cmd.OutOrStdout()
				tty := isTerminal(out)
				e.pp.Out = out

				snaps, unsubscribe := s.c.Subscribe()
				defer unsubscribe()

				quit := make(chan struct{})
				go readCommands(cmd.InOrStdin(), s.c, quit)

				var notice string
				for {
					select {
					case <-ctx.Done():
						return nil
					case <-quit:
						return nil
					case ev, ok := <-s.events:
						if !ok {
							return nil
						}
						notice = ev.Describe()
						if snap, ok := s.c.Snapshot(); ok {
							render(e, snap, entries, tty, notice)
						}
					case snap, ok := <-snaps:
						if !ok {
							return nil
						}
						render(e, snap, entries, tty, notice)
					}
				}
			})
		},
	}
	cmd.Flags().IntVar(&entries, "entries", entries, "Number of recent entries to show.")
	topLevel.AddCommand(cmd)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func render(e *env, snap state.Snapshot, entries int, tty bool, notice string) {
	if tty {
		_, _ = fmt.Fprint(e.pp.Out, "\033[H\033[2J")
	}
	e.pp.Snapshot(snap, entries)
	if notice != "" {
		_, _ = color.New(color.Italic).Fprintln(e.pp.Out, notice)
	}
	if !tty {
		_, _ = fmt.Fprintln(e.pp.Out, "---")
	}
}

// readCommands turns input lines into composer intents until input ends or
// "q" is read.
func readCommands(in io.Reader, c *state.Composer, quit chan<- struct{}) {
	defer close(quit)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		verb, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)
		switch verb {
		case "":
		case "q", "quit":
			return
		case "t":
			if snap, ok := c.Snapshot(); ok {
				if t, found := findTag(snap.AllTags, arg); found {
					c.ToggleTag(t)
				}
			}
		case "+":
			c.CreateCustomTag(arg)
		case "n":
			c.SetNote(arg)
		case "p":
			var loc entry.Location
			if arg != "" {
				loc.Label = &arg
			}
			c.UpdateLocation(loc)
			c.ApplyCurrentLocation()
		case "e":
			if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
				c.BeginEditing(id)
			}
		case "c":
			c.ClearTags()
		case "new":
			c.StartNewEntry()
		case "s":
			c.SaveEntry()
		}
	}
}
