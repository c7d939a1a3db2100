package csvio

import (
	"strconv"
	"strings"
	"time"

	"tableflip.dev/quicklog/pkg/entry"
	"tableflip.dev/quicklog/pkg/tag"
)

// LocationsHeader is the first line of a location log export.
const LocationsHeader = "ID,Timestamp,Latitude,Longitude,Location,Tags"

// LocationRecord is one decoded row of a location log.
type LocationRecord struct {
	ID        string
	CreatedAt time.Time
	Latitude  float64
	Longitude float64
	Label     string
	Tags      []string
}

// EncodeLocations renders the entries that have both coordinates. It returns
// "" when there are none.
func EncodeLocations(entries []entry.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		if !e.Location.HasCoordinates() {
			continue
		}
		if b.Len() == 0 {
			b.WriteString(LocationsHeader)
			b.WriteByte('\n')
		}
		label := ""
		if e.Location.Label != nil {
			label = *e.Location.Label
		}
		b.WriteString(joinRecord(
			strconv.FormatInt(e.ID, 10),
			Quote(entry.FormatTime(e.CreatedAt)),
			strconv.FormatFloat(*e.Location.Latitude, 'f', -1, 64),
			strconv.FormatFloat(*e.Location.Longitude, 'f', -1, 64),
			Quote(flatten(label)),
			Quote(flatten(strings.Join(tag.Labels(e.Tags), "; "))),
		))
		b.WriteByte('\n')
	}
	return b.String()
}

// DecodeLocations parses a location log. Lines before the one containing
// "ID,Timestamp" (any case) are ignored. Rows need six fields, numeric
// coordinates and an RFC 3339 timestamp.
func DecodeLocations(text string) ([]LocationRecord, []error) {
	var (
		out     []LocationRecord
		skipped []error
		started bool
	)
	for i, line := range lines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !started {
			started = strings.Contains(strings.ToLower(line), "id,timestamp")
			continue
		}
		cols := SplitLine(line)
		if len(cols) < 6 {
			skipped = append(skipped, &ParseError{Line: i + 1, Reason: "expected 6 columns"})
			continue
		}
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(cols[2]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(cols[3]), 64)
		if latErr != nil || lonErr != nil {
			skipped = append(skipped, &ParseError{Line: i + 1, Reason: "bad coordinates"})
			continue
		}
		ts, err := entry.ParseTime(strings.Trim(strings.TrimSpace(cols[1]), `"`))
		if err != nil {
			skipped = append(skipped, &ParseError{Line: i + 1, Reason: "bad timestamp " + cols[1]})
			continue
		}
		out = append(out, LocationRecord{
			ID:        strings.TrimSpace(cols[0]),
			CreatedAt: ts,
			Latitude:  lat,
			Longitude: lon,
			Label:     strings.TrimSpace(strings.Trim(cols[4], `"`)),
			Tags:      splitList(strings.Trim(cols[5], `"`), ";"),
		})
	}
	return out, skipped
}
