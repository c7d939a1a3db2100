package state

import (
	"time"

	"tableflip.dev/quicklog/pkg/entry"
	"tableflip.dev/quicklog/pkg/tag"
)

// Snapshot is the full composed state at one instant. Snapshots are never
// mutated after they are published.
type Snapshot struct {
	Draft         entry.Draft
	RecentTags    []tag.Tag
	ConnectedTags []tag.Tag
	SuggestedTags []tag.Tag
	AllTags       []tag.Tag
	Entries       []entry.Entry
	Location      entry.Location
	Clock         time.Time
	Saving        bool
	ErrorMessage  string
	// Loaded is true once tags and entries have been read at least once.
	Loaded bool
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Draft = s.Draft.Clone()
	out.RecentTags = tag.Clone(s.RecentTags)
	out.ConnectedTags = tag.Clone(s.ConnectedTags)
	out.SuggestedTags = tag.Clone(s.SuggestedTags)
	out.AllTags = tag.Clone(s.AllTags)
	out.Entries = entry.CloneAll(s.Entries)
	out.Location = s.Location.Clone()
	return out
}
