package entry

import (
	"sort"
	"strings"
	"time"

	"tableflip.dev/quicklog/pkg/tag"
)

// Draft is the entry currently being composed. EntryID is nil until the draft
// is bound to a saved entry for editing. Drafts are values; every mutator
// returns a new Draft.
type Draft struct {
	EntryID      *int64
	CreatedAt    time.Time
	SelectedTags []tag.Tag
	Note         string
	Location     Location
}

// NewDraft returns an empty draft created at now and placed at loc.
func NewDraft(now time.Time, loc Location) Draft {
	return Draft{CreatedAt: now, Location: loc.Clone()}
}

// FromEntry binds a draft to an existing entry so saving it replaces the entry.
func FromEntry(e Entry) Draft {
	id := e.ID
	return Draft{
		EntryID:      &id,
		CreatedAt:    e.CreatedAt,
		SelectedTags: tag.Clone(e.Tags),
		Note:         e.NoteText(),
		Location:     e.Location.Clone(),
	}
}

// IsNew reports whether the draft has not been saved yet.
func (d Draft) IsNew() bool {
	return d.EntryID == nil
}

// TagIDs returns the selected ids in selection order.
func (d Draft) TagIDs() []string {
	return tag.IDs(d.SelectedTags)
}

// Has reports whether the tag id is selected.
func (d Draft) Has(id string) bool {
	for _, t := range d.SelectedTags {
		if t.ID == id {
			return true
		}
	}
	return false
}

// SelectionKey identifies the selected set independent of order. Two drafts
// with the same tags selected in a different order share a key.
func (d Draft) SelectionKey() string {
	ids := d.TagIDs()
	sort.Strings(ids)
	return strings.Join(ids, "\x00")
}

// Toggle adds t when it is not selected and removes it otherwise.
func (d Draft) Toggle(t tag.Tag) Draft {
	out := d.Clone()
	for i, s := range out.SelectedTags {
		if s.ID == t.ID {
			out.SelectedTags = append(out.SelectedTags[:i], out.SelectedTags[i+1:]...)
			return out
		}
	}
	out.SelectedTags = append(out.SelectedTags, t)
	return out
}

// Select adds t unless it is already selected.
func (d Draft) Select(t tag.Tag) Draft {
	if d.Has(t.ID) {
		return d
	}
	return d.Toggle(t)
}

// WithNote returns a copy with the note replaced.
func (d Draft) WithNote(note string) Draft {
	out := d.Clone()
	out.Note = note
	return out
}

// WithLocation returns a copy placed at loc.
func (d Draft) WithLocation(loc Location) Draft {
	out := d.Clone()
	out.Location = loc.Clone()
	return out
}

// ClearTags returns a copy with nothing selected.
func (d Draft) ClearTags() Draft {
	out := d.Clone()
	out.SelectedTags = nil
	return out
}

// Clone returns a deep copy of d.
func (d Draft) Clone() Draft {
	out := d
	if d.EntryID != nil {
		id := *d.EntryID
		out.EntryID = &id
	}
	out.SelectedTags = tag.Clone(d.SelectedTags)
	out.Location = d.Location.Clone()
	return out
}
