package store

import (
	"context"
	"testing"
	"time"

	"tableflip.dev/quicklog/pkg/entry"
)

func TestEntriesSaveRejectsEmptyTags(t *testing.T) {
	s := openTestDB(t).Entries()
	_, err := s.Save(context.Background(), SaveRequest{CreatedAt: time.Now()})
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	all, _ := s.ListAll(context.Background())
	if len(all) != 0 {
		t.Fatalf("rejected save wrote %d entries", len(all))
	}
}

func TestEntriesSaveRejectsUnknownTags(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mustUpsert(t, db.Tags(), work)
	s := db.Entries()

	if _, err := s.Save(ctx, SaveRequest{CreatedAt: time.Now(), TagIDs: []string{"nope"}}); !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if all, _ := s.ListAll(ctx); len(all) != 0 {
		t.Fatalf("rejected save wrote %d entries", len(all))
	}

	id, err := s.Save(ctx, SaveRequest{CreatedAt: time.Now(), TagIDs: []string{"nope", "work"}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ := s.Get(ctx, id)
	if got == nil || ids(got.Tags) != "work" {
		t.Fatalf("entry = %+v", got)
	}
}

func TestEntriesSaveTouchesTags(t *testing.T) {
	now := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)
	db := openTestDB(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()
	mustUpsert(t, db.Tags(), work, office)

	id, err := db.Entries().Save(ctx, SaveRequest{
		CreatedAt: now.Add(-time.Hour),
		Note:      "  standup ",
		TagIDs:    []string{"work"},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := db.Entries().Get(ctx, id)
	if err != nil || got == nil {
		t.Fatalf("get = %v, %v", got, err)
	}
	if got.NoteText() != "standup" {
		t.Fatalf("note = %q", got.NoteText())
	}
	if ids(got.Tags) != "work" {
		t.Fatalf("tags = %s", ids(got.Tags))
	}

	tags, _ := db.Tags().GetByIDs(ctx, []string{"work", "office"})
	for _, tg := range tags {
		switch tg.ID {
		case "work":
			if tg.LastUsedAt == nil || !tg.LastUsedAt.Equal(now) {
				t.Fatalf("work lastUsedAt = %v, want %v", tg.LastUsedAt, now)
			}
		case "office":
			if tg.LastUsedAt != nil {
				t.Fatalf("office should be untouched, got %v", tg.LastUsedAt)
			}
		}
	}
	recent, _ := db.Tags().ListRecent(ctx, 1)
	if ids(recent) != "work" {
		t.Fatalf("recent = %s", ids(recent))
	}
}

func TestEntriesSaveReplacesAssociations(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mustUpsert(t, db.Tags(), work, office, focus)
	s := db.Entries()

	created := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	id, err := s.Save(ctx, SaveRequest{CreatedAt: created, TagIDs: []string{"work", "office"}, Note: "first"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	_, err = s.Save(ctx, SaveRequest{ID: &id, CreatedAt: created, TagIDs: []string{"focus"}, Note: " "})
	if err != nil {
		t.Fatalf("resave: %v", err)
	}

	all, _ := s.ListAll(ctx)
	if len(all) != 1 {
		t.Fatalf("expected replace, got %d entries", len(all))
	}
	if ids(all[0].Tags) != "focus" {
		t.Fatalf("tags = %s", ids(all[0].Tags))
	}
	if all[0].Note != nil {
		t.Fatalf("blank note should be stored as nil, got %q", *all[0].Note)
	}
	if !all[0].CreatedAt.Equal(created) {
		t.Fatalf("createdAt = %v", all[0].CreatedAt)
	}
}

func TestEntriesListAllNewestFirstWithLocation(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mustUpsert(t, db.Tags(), work)
	s := db.Entries()
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	_, _ = s.Save(ctx, SaveRequest{CreatedAt: base, TagIDs: []string{"work"}})
	_, _ = s.Save(ctx, SaveRequest{CreatedAt: base.Add(2 * time.Hour), TagIDs: []string{"work"}, Location: entry.At(47.37, 8.54, "Zurich")})
	_, _ = s.Save(ctx, SaveRequest{CreatedAt: base.Add(time.Hour), TagIDs: []string{"work"}})

	all, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.After(all[i-1].CreatedAt) {
			t.Fatalf("entries not newest first: %v then %v", all[i-1].CreatedAt, all[i].CreatedAt)
		}
	}
	if !all[0].Location.HasCoordinates() || all[0].Location.Name() != "Zurich" || *all[0].Location.Latitude != 47.37 {
		t.Fatalf("location = %+v", all[0].Location)
	}
}

func TestEntriesDeleteKeepsTags(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mustUpsert(t, db.Tags(), work)
	s := db.Entries()
	a, _ := s.Save(ctx, SaveRequest{CreatedAt: time.Now(), TagIDs: []string{"work"}})
	b, _ := s.Save(ctx, SaveRequest{CreatedAt: time.Now(), TagIDs: []string{"work"}})

	if err := s.Delete(ctx, a); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := s.Get(ctx, a); got != nil {
		t.Fatalf("entry %d survived delete", a)
	}
	if err := s.DeleteMany(ctx, []int64{b, 999}); err != nil {
		t.Fatalf("delete many: %v", err)
	}
	all, _ := s.ListAll(ctx)
	if len(all) != 0 {
		t.Fatalf("entries left: %d", len(all))
	}
	n, _ := db.Tags().Count(ctx)
	if n != 1 {
		t.Fatalf("tag count = %d", n)
	}
}

func TestEntriesSaveMany(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mustUpsert(t, db.Tags(), work, home)
	s := db.Entries()

	_, err := s.SaveMany(ctx, []SaveRequest{
		{CreatedAt: time.Now(), TagIDs: []string{"work"}},
		{CreatedAt: time.Now()},
	})
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if all, _ := s.ListAll(ctx); len(all) != 0 {
		t.Fatalf("partial batch written: %d", len(all))
	}

	got, err := s.SaveMany(ctx, []SaveRequest{
		{CreatedAt: time.Now(), TagIDs: []string{"work"}},
		{CreatedAt: time.Now(), TagIDs: []string{"home", "work"}},
	})
	if err != nil || len(got) != 2 {
		t.Fatalf("SaveMany = %v, %v", got, err)
	}
}

func TestEntriesDeletingTagDropsAssociation(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mustUpsert(t, db.Tags(), work, office)
	id, _ := db.Entries().Save(ctx, SaveRequest{CreatedAt: time.Now(), TagIDs: []string{"work", "office"}})

	if err := db.Tags().Delete(ctx, []string{"office"}); err != nil {
		t.Fatalf("delete tag: %v", err)
	}
	got, _ := db.Entries().Get(ctx, id)
	if got == nil || ids(got.Tags) != "work" {
		t.Fatalf("entry after tag delete = %+v", got)
	}
}
