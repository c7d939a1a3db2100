package printers

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"tableflip.dev/quicklog/pkg/state"
	"tableflip.dev/quicklog/pkg/tag"
)

// Snapshot prints the composed logging state: the draft being built, the
// tag rows offered for it and the most recent entries.
func (pp *PrettyPrint) Snapshot(s state.Snapshot, recentEntries int) {
	w := pp.out()
	if !s.Loaded {
		_, _ = color.New(color.Faint, color.Italic).Fprintln(w, "loading…")
		return
	}

	title := "New entry"
	if !s.Draft.IsNew() {
		title = fmt.Sprintf("Editing entry %d", *s.Draft.EntryID)
	}
	pp.Title(fmt.Sprintf("%s · %s", title, s.Clock.In(pp.loc()).Format(TimeLayout)))

	selected := "-"
	if len(s.Draft.SelectedTags) > 0 {
		selected = strings.Join(tag.Labels(s.Draft.SelectedTags), ", ")
	}
	_, _ = fmt.Fprintf(w, "  %s %s\n", faint("Selected:"), selected)
	if s.Draft.Note != "" {
		_, _ = fmt.Fprintf(w, "  %s %s\n", faint("Note:"), s.Draft.Note)
	}
	if name := s.Draft.Location.Name(); name != "" {
		_, _ = fmt.Fprintf(w, "  %s %s\n", faint("Location:"), name)
	}
	if s.Saving {
		_, _ = color.New(color.FgYellow).Fprintln(w, "  saving…")
	}
	if s.ErrorMessage != "" {
		_, _ = color.New(color.FgRed).Fprintf(w, "  %s\n", s.ErrorMessage)
	}
	pp.NewLine()

	pp.row("Recent", s.RecentTags)
	pp.row("Connected", s.ConnectedTags)
	pp.row("Suggested", s.SuggestedTags)

	entries := s.Entries
	if recentEntries > 0 && len(entries) > recentEntries {
		entries = entries[:recentEntries]
	}
	pp.TitleWithCount("Entries", len(s.Entries), "entry")
	pp.Entries(entries)
}

func (pp *PrettyPrint) row(title string, tags []tag.Tag) {
	pp.TitleWithCount(title, len(tags), "tag")
	pp.TagLine(tags)
}
