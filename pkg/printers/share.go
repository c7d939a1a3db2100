package printers

import (
	"html"
	"strings"
	"time"

	"tableflip.dev/quicklog/pkg/entry"
	"tableflip.dev/quicklog/pkg/tag"
)

// FormatText renders an entry as a single bullet line for sharing.
func FormatText(e entry.Entry, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("- ")
	b.WriteString(shareTime(e, loc))
	b.WriteString(" • tags: ")
	b.WriteString(strings.Join(tag.Labels(e.Tags), ", "))
	if e.Location.Label != nil {
		b.WriteString(" • location: ")
		b.WriteString(*e.Location.Label)
	}
	if note := strings.TrimSpace(e.NoteText()); note != "" {
		b.WriteString(" • note: ")
		b.WriteString(note)
	}
	return b.String()
}

// FormatHTML renders an entry as an HTML paragraph for sharing.
func FormatHTML(e entry.Entry, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("<p><strong>")
	b.WriteString(shareTime(e, loc))
	b.WriteString("</strong><br/><strong>Tags:</strong> ")
	b.WriteString(html.EscapeString(strings.Join(tag.Labels(e.Tags), ", ")))
	if e.Location.Label != nil {
		b.WriteString("<br/><strong>Location:</strong> ")
		b.WriteString(html.EscapeString(*e.Location.Label))
	}
	if note := strings.TrimSpace(e.NoteText()); note != "" {
		b.WriteString("<br/><strong>Note:</strong> ")
		b.WriteString(html.EscapeString(note))
	}
	b.WriteString("</p>")
	return b.String()
}

// Share renders entries as text lines and as HTML, one entry per line.
func Share(entries []entry.Entry, loc *time.Location) (text, markup string) {
	texts := make([]string, len(entries))
	marks := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = FormatText(e, loc)
		marks[i] = FormatHTML(e, loc)
	}
	return strings.Join(texts, "\n"), strings.Join(marks, "\n")
}

func shareTime(e entry.Entry, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return e.CreatedAt.In(loc).Format(TimeLayout)
}
