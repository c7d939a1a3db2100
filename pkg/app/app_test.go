package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tableflip.dev/quicklog/pkg/archive"
	"tableflip.dev/quicklog/pkg/entry"
	"tableflip.dev/quicklog/pkg/store"
	"tableflip.dev/quicklog/pkg/tag"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) *Service {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "quicklog.db"), store.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &Service{
		Tags:    db.Tags(),
		Entries: db.Entries(),
		Now:     func() time.Time { return fixedNow },
	}
}

func TestGuards(t *testing.T) {
	var s Service
	ctx := context.Background()
	_, err := s.AllTags(ctx)
	require.ErrorIs(t, err, errNoTags)
	_, err = s.Search(ctx, Filter{})
	require.ErrorIs(t, err, errNoEntries)
	_, err = s.ImportEntries(ctx, "")
	require.Error(t, err)
	_, err = s.ArchiveExport(archive.KindTags, "csv", "")
	require.ErrorIs(t, err, errNoArchive)
}

func TestCreateTagReusesLabel(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	first, err := s.CreateTag(ctx, "  Deep Work ", "")
	require.NoError(t, err)
	require.Equal(t, "Deep Work", first.Label)
	require.Equal(t, tag.CategoryCustom, first.Category)

	again, err := s.CreateTag(ctx, "deep work", tag.CategoryActivity)
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)

	_, err = s.CreateTag(ctx, "   ", "")
	require.True(t, store.IsValidation(err))
}

func TestRelationsByReference(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	work, err := s.CreateTag(ctx, "Work", "")
	require.NoError(t, err)
	office, err := s.CreateTag(ctx, "Office", "")
	require.NoError(t, err)
	home, err := s.CreateTag(ctx, "Home", "")
	require.NoError(t, err)

	require.NoError(t, s.Link(ctx, "work", office.ID))
	require.NoError(t, s.UpdateRelations(ctx, "Home", []string{"Work"}))

	rels, err := s.Relations(ctx)
	require.NoError(t, err)
	byID := map[string][]string{}
	for _, r := range rels {
		byID[r.Tag.ID] = r.RelatedIDs()
	}
	require.ElementsMatch(t, []string{office.ID, home.ID}, byID[work.ID])
	require.ElementsMatch(t, []string{work.ID}, byID[home.ID])

	require.NoError(t, s.Unlink(ctx, "Office", "Work"))
	_, err = s.ResolveTag(ctx, "nope")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestImportLocations(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	_, err := s.CreateTag(ctx, "Work", "")
	require.NoError(t, err)

	text := strings.Join([]string{
		"exported by phone",
		"ID,Timestamp,Latitude,Longitude,Location,Tags",
		`1,"2024-03-01T09:00:00Z",52.5,13.4,"Office","work; Coffee"`,
		`2,"2024-03-02T09:00:00Z",48.1,11.5,"",""`,
		`3,"not a time",1,2,"",""`,
		`4,"2024-03-03T09:00:00Z",abc,2,"",""`,
	}, "\n")

	n, err := s.ImportLocations(ctx, text)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	all, err := s.Search(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, []string{"Location"}, tag.Labels(all[0].Tags))
	require.Equal(t, []string{"Coffee", "Work"}, tag.Labels(all[1].Tags))
	require.Equal(t, "Office", all[1].Location.Name())

	tags, err := s.AllTags(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Coffee", "Location", "Work"}, tag.Labels(tags))
}

func TestEntriesRoundTrip(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	text := strings.Join([]string{
		"timestamp,location,tags,note",
		`2024-03-01T09:00:00Z,Office,Work|Focus,"ship it, today"`,
		`2024-03-02T09:00:00Z,,,no tags here`,
		`2024-03-03T09:00:00Z,,focus,`,
	}, "\n")

	n, err := s.ImportEntries(ctx, text)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	focus, err := s.ResolveTag(ctx, "FOCUS")
	require.NoError(t, err)
	found, err := s.Search(ctx, Filter{TagIDs: []string{focus.ID}})
	require.NoError(t, err)
	require.Len(t, found, 2)

	out, err := s.ExportEntries(ctx, Filter{})
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.Equal(t, "timestamp,location,tags,note", lines[0])
	require.Equal(t, `2024-03-01T09:00:00Z,Office,Focus|Work,"ship it, today"`, lines[2])
}

func TestImportTagsAndExport(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	text := "id,label,category,related_ids\n" +
		"t1,Work,ACTIVITY,t2\n" +
		"t2,Office,PLACE,t1|ghost\n" +
		"short\n"

	n, err := s.ImportTags(ctx, text)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	out, err := s.ExportTags(ctx)
	require.NoError(t, err)
	require.Contains(t, out, "t1,Work,ACTIVITY,t2\n")
	require.Contains(t, out, "t2,Office,PLACE,ghost|t1\n")
}

func TestReportAndLocations(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	work, err := s.CreateTag(ctx, "Work", "")
	require.NoError(t, err)

	save := func(at time.Time, loc entry.Location) {
		_, err := s.Entries.Save(ctx, store.SaveRequest{CreatedAt: at, Location: loc, TagIDs: []string{work.ID}})
		require.NoError(t, err)
	}
	save(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), entry.At(1, 2, "Office"))
	save(time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), entry.Location{})

	r, err := s.Report(ctx, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), time.Time{}, time.UTC)
	require.NoError(t, err)
	require.Equal(t, 1, r.Summary.Total)

	csv, err := s.ExportLocations(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(csv, "\n"))

	js, err := s.ExportLocationsJSON(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Contains(t, js, `"total_entries": 1`)

	groups, err := s.TagReport(ctx, "wo")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Entries, 2)
}

func TestArchiveExport(t *testing.T) {
	s := newService(t)
	a, err := archive.Open(t.TempDir())
	require.NoError(t, err)
	s.Archive = a

	key, err := s.ArchiveExport(archive.KindTags, "csv", "id,label,category,related_ids\n")
	require.NoError(t, err)
	body, err := a.Get(key)
	require.NoError(t, err)
	require.Equal(t, "id,label,category,related_ids\n", body)
}
