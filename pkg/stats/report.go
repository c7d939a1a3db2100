package stats

import (
	"time"

	"tableflip.dev/quicklog/pkg/entry"
)

// Report bundles every aggregation over the entries of a time window.
type Report struct {
	Since      time.Time `json:"since" yaml:"since"`
	Until      time.Time `json:"until" yaml:"until"`
	Summary    Summary   `json:"summary" yaml:"summary"`
	ByDate     []Count   `json:"byDate" yaml:"byDate"`
	ByLocation []Count   `json:"byLocation" yaml:"byLocation"`
	ByTag      []Count   `json:"byTag" yaml:"byTag"`
	Days       []Section `json:"days" yaml:"days"`
}

// Build filters entries to [since, until] and aggregates them. Bounds given
// in the wrong order are swapped.
func Build(entries []entry.Entry, since, until time.Time, loc *time.Location) Report {
	if !since.IsZero() && !until.IsZero() && since.After(until) {
		since, until = until, since
	}
	in := Filter(entries, since, until)
	return Report{
		Since:      since,
		Until:      until,
		Summary:    Summarize(in),
		ByDate:     CountByDate(in, loc),
		ByLocation: CountByLocation(in),
		ByTag:      CountByTag(in),
		Days:       Timeline(in, loc),
	}
}
