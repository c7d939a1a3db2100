package csvio

import (
	"sort"
	"strings"

	"tableflip.dev/quicklog/pkg/tag"
)

// TagsHeader is the first line of a tag catalog export.
const TagsHeader = "id,label,category,related_ids"

// TagBatch is a decoded tag catalog. Links hold one row per related id as
// written; storing them creates both directions.
type TagBatch struct {
	Tags  []tag.Tag
	Links []tag.Link
}

// EncodeTags renders every tag with the ids it links to, joined by "|".
func EncodeTags(tags []tag.Tag, links []tag.Link) string {
	related := make(map[string][]string, len(tags))
	for _, l := range links {
		related[l.Parent] = append(related[l.Parent], l.Child)
	}

	var b strings.Builder
	b.WriteString(TagsHeader)
	b.WriteByte('\n')
	for _, t := range tags {
		ids := related[t.ID]
		sort.Strings(ids)
		b.WriteString(joinRecord(
			Escape(t.ID),
			Escape(flatten(t.Label)),
			Escape(string(t.Category)),
			Escape(strings.Join(ids, "|")),
		))
		b.WriteByte('\n')
	}
	return b.String()
}

// DecodeTags parses a tag catalog. The first line is the header. Rows with
// fewer than three fields are skipped; a blank id gets newID(), a blank label
// becomes the id and an unknown category becomes CUSTOM.
func DecodeTags(text string, newID func() string) (TagBatch, []error) {
	if newID == nil {
		newID = tag.ImportID
	}
	var (
		batch   TagBatch
		skipped []error
	)
	for i, line := range lines(text) {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		cols := SplitLine(line)
		if len(cols) < 3 {
			skipped = append(skipped, &ParseError{Line: i + 1, Reason: "expected at least 3 columns"})
			continue
		}
		id := strings.TrimSpace(cols[0])
		if id == "" {
			id = newID()
		}
		label := strings.TrimSpace(cols[1])
		if label == "" {
			label = id
		}
		category, _ := tag.ParseCategory(cols[2])
		batch.Tags = append(batch.Tags, tag.Tag{ID: id, Label: label, Category: category})

		if len(cols) > 3 {
			for _, rel := range splitList(cols[3], "|") {
				if rel == id {
					continue
				}
				batch.Links = append(batch.Links, tag.Link{Parent: id, Child: rel})
			}
		}
	}
	return batch, skipped
}
