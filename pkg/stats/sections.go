package stats

import (
	"sort"
	"strings"
	"time"

	"tableflip.dev/quicklog/pkg/entry"
)

// Section is a titled group of entries, newest first.
type Section struct {
	Title   string        `json:"title" yaml:"title"`
	Entries []entry.Entry `json:"entries" yaml:"entries"`
}

// TagGroup is every entry carrying one tag.
type TagGroup struct {
	TagID    string        `json:"tagId" yaml:"tagId"`
	TagLabel string        `json:"tagLabel" yaml:"tagLabel"`
	Entries  []entry.Entry `json:"entries" yaml:"entries"`
}

// GroupBy builds sections keyed by key, ordered by title.
func GroupBy(entries []entry.Entry, key func(entry.Entry) string) []Section {
	grouped := make(map[string][]entry.Entry)
	for _, e := range entries {
		k := key(e)
		grouped[k] = append(grouped[k], e)
	}
	titles := make([]string, 0, len(grouped))
	for k := range grouped {
		titles = append(titles, k)
	}
	sort.Strings(titles)

	out := make([]Section, 0, len(titles))
	for _, title := range titles {
		list := grouped[title]
		sortNewestFirst(list)
		out = append(out, Section{Title: title, Entries: list})
	}
	return out
}

// GroupByDate builds one section per calendar day in loc.
func GroupByDate(entries []entry.Entry, loc *time.Location) []Section {
	return GroupBy(entries, func(e entry.Entry) string {
		return entry.DayKey(e.CreatedAt, loc)
	})
}

// GroupByLocation builds one section per location label.
func GroupByLocation(entries []entry.Entry) []Section {
	return GroupBy(entries, locationKey)
}

// TagGroups builds one group per tag, largest first. A non-blank query keeps
// only tags whose label contains it, ignoring case.
func TagGroups(entries []entry.Entry, query string) []TagGroup {
	index := make(map[string]int)
	var groups []TagGroup
	for _, e := range entries {
		for _, t := range e.Tags {
			i, ok := index[t.ID]
			if !ok {
				i = len(groups)
				index[t.ID] = i
				groups = append(groups, TagGroup{TagID: t.ID, TagLabel: t.Label})
			}
			groups[i].Entries = append(groups[i].Entries, e)
		}
	}

	q := strings.ToLower(strings.TrimSpace(query))
	out := groups[:0]
	for _, g := range groups {
		if q == "" || strings.Contains(strings.ToLower(g.TagLabel), q) {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Entries) > len(out[j].Entries)
	})
	return out
}

func sortNewestFirst(entries []entry.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

// Timeline builds one section per calendar day in loc, most recent day
// first.
func Timeline(entries []entry.Entry, loc *time.Location) []Section {
	sorted := append([]entry.Entry(nil), entries...)
	sortNewestFirst(sorted)

	var out []Section
	for _, e := range sorted {
		if n := len(out); n > 0 && entry.SameDay(out[n-1].Entries[0].CreatedAt, e.CreatedAt, loc) {
			out[n-1].Entries = append(out[n-1].Entries, e)
			continue
		}
		out = append(out, Section{Title: entry.DayKey(e.CreatedAt, loc), Entries: []entry.Entry{e}})
	}
	return out
}
