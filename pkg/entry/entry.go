// Package entry defines log entries and the in-progress draft used to compose
// them.
package entry

import (
	"fmt"
	"strings"
	"time"

	"tableflip.dev/quicklog/pkg/tag"
)

// Location is an optional place attached to an entry. Coordinates are only
// meaningful when both are present.
type Location struct {
	Latitude  *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Label     *string  `json:"label,omitempty" yaml:"label,omitempty"`
}

// At builds a Location from coordinates and an optional label. A blank label
// is dropped.
func At(lat, lon float64, label string) Location {
	l := Location{Latitude: &lat, Longitude: &lon}
	if label = strings.TrimSpace(label); label != "" {
		l.Label = &label
	}
	return l
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// IsZero reports whether no part of the location is set.
func (l Location) IsZero() bool {
	return l.Latitude == nil && l.Longitude == nil && l.Label == nil
}

// Name returns the label when set, otherwise the coordinates, otherwise "".
func (l Location) Name() string {
	if l.Label != nil && *l.Label != "" {
		return *l.Label
	}
	if l.HasCoordinates() {
		return fmt.Sprintf("%.5f, %.5f", *l.Latitude, *l.Longitude)
	}
	return ""
}

// Clone returns a deep copy of l.
func (l Location) Clone() Location {
	var out Location
	if l.Latitude != nil {
		v := *l.Latitude
		out.Latitude = &v
	}
	if l.Longitude != nil {
		v := *l.Longitude
		out.Longitude = &v
	}
	if l.Label != nil {
		v := *l.Label
		out.Label = &v
	}
	return out
}

// Entry is one saved log record.
type Entry struct {
	ID        int64     `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	Note      *string   `json:"note,omitempty" yaml:"note,omitempty"`
	Location  Location  `json:"location" yaml:"location"`
	Tags      []tag.Tag `json:"tags" yaml:"tags"`
}

// NoteText returns the note or "" when there is none.
func (e Entry) NoteText() string {
	if e.Note == nil {
		return ""
	}
	return *e.Note
}

// TagIDs returns the ids of the entry's tags.
func (e Entry) TagIDs() []string {
	return tag.IDs(e.Tags)
}

// HasAnyTag reports whether the entry carries at least one of ids.
func (e Entry) HasAnyTag(ids map[string]struct{}) bool {
	for _, t := range e.Tags {
		if _, ok := ids[t.ID]; ok {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of e.
func (e Entry) Clone() Entry {
	out := e
	if e.Note != nil {
		n := *e.Note
		out.Note = &n
	}
	out.Location = e.Location.Clone()
	out.Tags = tag.Clone(e.Tags)
	return out
}

// CloneAll deep copies entries.
func CloneAll(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	for i := range entries {
		out[i] = entries[i].Clone()
	}
	return out
}

// SanitizeNote trims the note and returns nil when nothing is left.
func SanitizeNote(note string) *string {
	trimmed := strings.TrimSpace(note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
