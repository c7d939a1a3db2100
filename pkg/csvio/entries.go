package csvio

import (
	"strings"
	"time"

	"tableflip.dev/quicklog/pkg/entry"
	"tableflip.dev/quicklog/pkg/tag"
)

// EntriesHeader is the first line of an entry log export.
const EntriesHeader = "timestamp,location,tags,note"

// EntryRecord is one decoded row of an entry log. Tags are labels.
type EntryRecord struct {
	CreatedAt time.Time
	Location  string
	Tags      []string
	Note      string
}

// EncodeEntries renders entries in the order given, one row each.
func EncodeEntries(entries []entry.Entry) string {
	var b strings.Builder
	b.WriteString(EntriesHeader)
	for _, e := range entries {
		location := ""
		if e.Location.Label != nil {
			location = *e.Location.Label
		}
		b.WriteByte('\n')
		b.WriteString(joinRecord(
			Escape(entry.FormatTime(e.CreatedAt)),
			Escape(flatten(location)),
			Escape(flatten(strings.Join(tag.Labels(e.Tags), "|"))),
			Escape(flatten(e.NoteText())),
		))
	}
	return b.String()
}

// DecodeEntries parses an entry log. Rows with too few fields or a bad
// timestamp are skipped and reported as ParseErrors.
func DecodeEntries(text string) ([]EntryRecord, []error) {
	var (
		out     []EntryRecord
		skipped []error
	)
	for i, line := range lines(text) {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		cols := SplitLine(line)
		if len(cols) < 4 {
			skipped = append(skipped, &ParseError{Line: i + 1, Reason: "expected 4 columns"})
			continue
		}
		ts, err := entry.ParseTime(strings.TrimSpace(cols[0]))
		if err != nil {
			skipped = append(skipped, &ParseError{Line: i + 1, Reason: "bad timestamp " + cols[0]})
			continue
		}
		out = append(out, EntryRecord{
			CreatedAt: ts,
			Location:  strings.TrimSpace(cols[1]),
			Tags:      splitList(cols[2], "|"),
			Note:      cols[3],
		})
	}
	return out, skipped
}
