package csvio

import (
	"encoding/json"
	"time"

	"tableflip.dev/quicklog/pkg/entry"
	"tableflip.dev/quicklog/pkg/tag"
)

// LocationDocument is the JSON form of a location log.
type LocationDocument struct {
	Entries  []LocationJSON `json:"entries"`
	Metadata struct {
		TotalEntries int       `json:"total_entries"`
		ExportedAt   time.Time `json:"exported_at"`
	} `json:"metadata"`
}

// LocationJSON is one entry of a LocationDocument.
type LocationJSON struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Location  string    `json:"location"`
	Tags      []string  `json:"tags"`
}

// EncodeLocationsJSON renders the entries that have both coordinates as an
// indented JSON document. It returns "" when there are none.
func EncodeLocationsJSON(entries []entry.Entry, exportedAt time.Time) (string, error) {
	var doc LocationDocument
	for _, e := range entries {
		if !e.Location.HasCoordinates() {
			continue
		}
		label := ""
		if e.Location.Label != nil {
			label = *e.Location.Label
		}
		labels := tag.Labels(e.Tags)
		doc.Entries = append(doc.Entries, LocationJSON{
			ID:        e.ID,
			Timestamp: e.CreatedAt.UTC(),
			Latitude:  *e.Location.Latitude,
			Longitude: *e.Location.Longitude,
			Location:  label,
			Tags:      labels,
		})
	}
	if len(doc.Entries) == 0 {
		return "", nil
	}
	doc.Metadata.TotalEntries = len(doc.Entries)
	doc.Metadata.ExportedAt = exportedAt.UTC()
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
