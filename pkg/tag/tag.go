package tag

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

const (
	customPrefix = "user_"
	importPrefix = "import_"
)

// Tag is a short label an entry can carry. LastUsedAt is nil until the tag is
// attached to a saved entry (or created by hand).
type Tag struct {
	ID         string     `json:"id" yaml:"id" validate:"required"`
	Label      string     `json:"label" yaml:"label" validate:"required"`
	Category   Category   `json:"category" yaml:"category" validate:"tag_category"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty" yaml:"lastUsedAt,omitempty"`
}

// Link is one directed row of the tag graph. Links are always stored in
// pairs, see Pair.
type Link struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// Pair returns both directions of the undirected link between a and b.
func Pair(a, b string) [2]Link {
	return [2]Link{{Parent: a, Child: b}, {Parent: b, Child: a}}
}

// Relations is a tag together with every tag it is linked to.
type Relations struct {
	Tag     Tag   `json:"tag"`
	Related []Tag `json:"related"`
}

// RelatedIDs returns the ids of the related tags.
func (r Relations) RelatedIDs() []string {
	ids := make([]string, 0, len(r.Related))
	for _, t := range r.Related {
		ids = append(ids, t.ID)
	}
	return ids
}

// NewCustom builds a user-created tag with a generated id. The label is
// trimmed; callers validate blank labels before calling.
func NewCustom(label string, now time.Time) Tag {
	used := now
	return Tag{
		ID:         customPrefix + uuid.NewString(),
		Label:      strings.TrimSpace(label),
		Category:   CategoryCustom,
		LastUsedAt: &used,
	}
}

// ImportID generates an id for an imported tag row that did not carry one.
func ImportID() string {
	return importPrefix + uuid.NewString()
}

var folder = cases.Fold()

// Fold returns the case-folded form of a label, used for case-insensitive
// comparisons.
func Fold(label string) string {
	return folder.String(strings.TrimSpace(label))
}

// SameLabel reports whether a and b are the same label ignoring case.
func SameLabel(a, b string) bool {
	return Fold(a) == Fold(b)
}

// FindByLabel returns the first tag in tags whose label matches label
// case-insensitively.
func FindByLabel(tags []Tag, label string) (Tag, bool) {
	want := Fold(label)
	if want == "" {
		return Tag{}, false
	}
	for _, t := range tags {
		if Fold(t.Label) == want {
			return t, true
		}
	}
	return Tag{}, false
}

// IDs returns the ids of tags in order.
func IDs(tags []Tag) []string {
	ids := make([]string, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// Labels returns the labels of tags in order.
func Labels(tags []Tag) []string {
	labels := make([]string, 0, len(tags))
	for _, t := range tags {
		labels = append(labels, t.Label)
	}
	return labels
}

// SortByLabel orders tags by label, then id.
func SortByLabel(tags []Tag) {
	sort.SliceStable(tags, func(i, j int) bool {
		if tags[i].Label != tags[j].Label {
			return tags[i].Label < tags[j].Label
		}
		return tags[i].ID < tags[j].ID
	})
}

// SortByRecency orders tags by LastUsedAt descending with never-used tags
// last, then by label.
func SortByRecency(tags []Tag) {
	sort.SliceStable(tags, func(i, j int) bool {
		a, b := tags[i].LastUsedAt, tags[j].LastUsedAt
		switch {
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		}
		return tags[i].Label < tags[j].Label
	})
}

// Clone returns a copy of tags that shares no memory with the input.
func Clone(tags []Tag) []Tag {
	if tags == nil {
		return nil
	}
	out := make([]Tag, len(tags))
	for i, t := range tags {
		if t.LastUsedAt != nil {
			used := *t.LastUsedAt
			t.LastUsedAt = &used
		}
		out[i] = t
	}
	return out
}
