package printers

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/quicklog/pkg/entry"
	"tableflip.dev/quicklog/pkg/stats"
	"tableflip.dev/quicklog/pkg/tag"
)

// TimeLayout is how entry times are shown in listings.
const TimeLayout = "2006-01-02 15:04"

// PrettyPrint renders tags, entries and reports for a terminal.
type PrettyPrint struct {
	Out    io.Writer
	ShowID bool
	// NoteWidth truncates notes in tables. Zero means 48 cells.
	NoteWidth int
	// Location is the zone times are shown in. Nil means local.
	Location *time.Location
}

// New returns a PrettyPrint writing to color.Output.
func New() *PrettyPrint {
	return &PrettyPrint{Out: color.Output}
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) loc() *time.Location {
	if pp.Location == nil {
		return time.Local
	}
	return pp.Location
}

func (pp *PrettyPrint) noteWidth() uint {
	if pp.NoteWidth <= 0 {
		return 48
	}
	return uint(pp.NoteWidth)
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

// TitleWithCount prints title followed by a faint "- n noun(s)".
func (pp *PrettyPrint) TitleWithCount(title string, count int, noun string) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d %s\n", count, plural(noun, count))
}

func plural(noun string, n int) string {
	if n == 1 {
		return noun
	}
	if strings.HasSuffix(noun, "y") {
		return strings.TrimSuffix(noun, "y") + "ies"
	}
	return noun + "s"
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(pp.out(), " none\n\n")
}

// Tags prints a table of tags.
func (pp *PrettyPrint) Tags(tags []tag.Tag) {
	if len(tags) == 0 {
		pp.none()
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	header := []interface{}{bold("Label"), bold("Category"), bold("Last used")}
	if pp.ShowID {
		header = append([]interface{}{bold("ID")}, header...)
	}
	tbl.AddRow(header...)
	for _, t := range tags {
		used := "never"
		if t.LastUsedAt != nil {
			used = t.LastUsedAt.In(pp.loc()).Format(TimeLayout)
		}
		row := []interface{}{t.Label, t.Category.Title(), used}
		if pp.ShowID {
			row = append([]interface{}{faint(t.ID)}, row...)
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// TagLine prints labels on one line, comma separated.
func (pp *PrettyPrint) TagLine(tags []tag.Tag) {
	if len(tags) == 0 {
		pp.none()
		return
	}
	_, _ = fmt.Fprintf(pp.out(), " %s\n\n", strings.Join(tag.Labels(tags), ", "))
}

// Relations prints every tag with the labels it is linked to.
func (pp *PrettyPrint) Relations(rels []tag.Relations) {
	if len(rels) == 0 {
		pp.none()
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.Wrap = true
	tbl.MaxColWidth = 60
	tbl.AddRow(bold("Tag"), bold("Related"))
	for _, r := range rels {
		related := "-"
		if len(r.Related) > 0 {
			related = strings.Join(tag.Labels(r.Related), ", ")
		}
		tbl.AddRow(r.Tag.Label, related)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Entries prints a table of entries in the order given.
func (pp *PrettyPrint) Entries(entries []entry.Entry) {
	if len(entries) == 0 {
		pp.none()
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("ID"), bold("Time"), bold("Location"), bold("Tags"), bold("Note"))
	for _, e := range entries {
		tbl.AddRow(
			faint(strconv.FormatInt(e.ID, 10)),
			e.CreatedAt.In(pp.loc()).Format(TimeLayout),
			e.Location.Name(),
			strings.Join(tag.Labels(e.Tags), ", "),
			truncate.StringWithTail(e.NoteText(), pp.noteWidth(), "…"),
		)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Sections prints each section as a titled entry table.
func (pp *PrettyPrint) Sections(sections []stats.Section) {
	if len(sections) == 0 {
		pp.none()
		return
	}
	for _, s := range sections {
		pp.TitleWithCount(s.Title, len(s.Entries), "entry")
		pp.Entries(s.Entries)
	}
}

// Counts prints a two column table of counts under title.
func (pp *PrettyPrint) Counts(title string, counts []stats.Count) {
	pp.Title(title)
	if len(counts) == 0 {
		pp.none()
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, c := range counts {
		tbl.AddRow(c.Key, c.Count)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Summary prints the headline numbers of a report.
func (pp *PrettyPrint) Summary(s stats.Summary) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(faint("Entries"), s.Total)
	tbl.AddRow(faint("Unique tags"), s.UniqueTags)
	if s.TopTagLabel != "" {
		tbl.AddRow(faint("Top tag"), fmt.Sprintf("%s (%d)", s.TopTagLabel, s.TopTagCount))
	}
	tbl.AddRow(faint("Per day"), fmt.Sprintf("%.1f", s.AveragePerDay))
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Report prints a full stats report under a header naming the window.
func (pp *PrettyPrint) Report(r stats.Report, window string) {
	pp.Title("Stats · " + window)
	pp.Summary(r.Summary)
	pp.Counts("By tag", r.ByTag)
	pp.Counts("By location", r.ByLocation)
	pp.Counts("By date", r.ByDate)
}

func bold(s string) string {
	return color.New(color.Bold).Sprint(s)
}

func faint(s string) string {
	return color.New(color.Faint).Sprint(s)
}
