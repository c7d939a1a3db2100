// Package stats aggregates entries for the overview and report views.
package stats

import (
	"sort"
	"strings"
	"time"

	"tableflip.dev/quicklog/pkg/entry"
	"tableflip.dev/quicklog/pkg/tag"
)

// UnknownLocation is the key used for entries without a location label.
const UnknownLocation = "Unknown"

// Count is one bucket of an aggregation.
type Count struct {
	Key   string `json:"key" yaml:"key"`
	Count int    `json:"count" yaml:"count"`
}

// Summary condenses a set of entries.
type Summary struct {
	Total         int     `json:"total" yaml:"total"`
	UniqueTags    int     `json:"uniqueTags" yaml:"uniqueTags"`
	TopTagLabel   string  `json:"topTagLabel,omitempty" yaml:"topTagLabel,omitempty"`
	TopTagCount   int     `json:"topTagCount" yaml:"topTagCount"`
	AveragePerDay float64 `json:"averagePerDay" yaml:"averagePerDay"`
}

// Summarize computes totals, the most used tag and the average number of
// entries per day. The day span is measured between the first and last entry
// and is never less than one day.
func Summarize(entries []entry.Entry) Summary {
	s := Summary{Total: len(entries)}
	if len(entries) == 0 {
		return s
	}

	counts := make(map[string]int)
	var order []tag.Tag
	first, last := entries[0].CreatedAt, entries[0].CreatedAt
	for _, e := range entries {
		if e.CreatedAt.Before(first) {
			first = e.CreatedAt
		}
		if e.CreatedAt.After(last) {
			last = e.CreatedAt
		}
		for _, t := range e.Tags {
			if _, seen := counts[t.ID]; !seen {
				order = append(order, t)
			}
			counts[t.ID]++
		}
	}

	s.UniqueTags = len(counts)
	for _, t := range order {
		if counts[t.ID] > s.TopTagCount {
			s.TopTagCount = counts[t.ID]
			s.TopTagLabel = t.Label
		}
	}

	days := last.Sub(first).Seconds() / 86400
	if days < 1 {
		days = 1
	}
	s.AveragePerDay = float64(s.Total) / days
	return s
}

// CountBy buckets entries by key and orders buckets by count, largest first,
// then by key.
func CountBy(entries []entry.Entry, key func(entry.Entry) string) []Count {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[key(e)]++
	}
	return sortCounts(counts)
}

// CountByDate buckets entries by calendar day in loc ("Tue, Mar 5").
func CountByDate(entries []entry.Entry, loc *time.Location) []Count {
	return CountBy(entries, func(e entry.Entry) string {
		return entry.DayKey(e.CreatedAt, loc)
	})
}

// CountByLocation buckets entries by location label.
func CountByLocation(entries []entry.Entry) []Count {
	return CountBy(entries, locationKey)
}

// CountByTag counts tag labels across entries. An entry adds one to each of
// its tags.
func CountByTag(entries []entry.Entry) []Count {
	counts := make(map[string]int)
	for _, e := range entries {
		for _, t := range e.Tags {
			counts[t.Label]++
		}
	}
	return sortCounts(counts)
}

func locationKey(e entry.Entry) string {
	if e.Location.Label != nil && strings.TrimSpace(*e.Location.Label) != "" {
		return *e.Location.Label
	}
	return UnknownLocation
}

func sortCounts(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for k, v := range counts {
		out = append(out, Count{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Filter keeps entries created within [since, until]. A zero bound is open.
func Filter(entries []entry.Entry, since, until time.Time) []entry.Entry {
	out := make([]entry.Entry, 0, len(entries))
	for _, e := range entries {
		if !since.IsZero() && e.CreatedAt.Before(since) {
			continue
		}
		if !until.IsZero() && e.CreatedAt.After(until) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterByTags keeps entries carrying any of ids. No ids keeps everything.
func FilterByTags(entries []entry.Entry, ids []string) []entry.Entry {
	if len(ids) == 0 {
		return entries
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]entry.Entry, 0, len(entries))
	for _, e := range entries {
		if e.HasAnyTag(want) {
			out = append(out, e)
		}
	}
	return out
}
