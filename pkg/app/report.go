package app

import (
	"context"
	"time"

	"tableflip.dev/quicklog/pkg/stats"
)

// Report aggregates entries created in [since, until]. Zero bounds are open.
// Days and dates are keyed in loc, or the local zone when loc is nil.
func (s *Service) Report(ctx context.Context, since, until time.Time, loc *time.Location) (stats.Report, error) {
	if s.Entries == nil {
		return stats.Report{}, errNoEntries
	}
	all, err := s.Entries.ListAll(ctx)
	if err != nil {
		return stats.Report{}, err
	}
	if loc == nil {
		loc = time.Local
	}
	return stats.Build(all, since, until, loc), nil
}

// TagReport groups entries whose tags match query, each group newest first.
func (s *Service) TagReport(ctx context.Context, query string) ([]stats.TagGroup, error) {
	if s.Entries == nil {
		return nil, errNoEntries
	}
	all, err := s.Entries.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return stats.TagGroups(all, query), nil
}
