package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tableflip.dev/quicklog/pkg/tag"
)

func openTestDB(t *testing.T, opts ...Option) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "quicklog.db"), opts...)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustUpsert(t *testing.T, s *Tags, tags ...tag.Tag) {
	t.Helper()
	for _, tg := range tags {
		if err := s.Upsert(context.Background(), tg); err != nil {
			t.Fatalf("upsert %s: %v", tg.ID, err)
		}
	}
}

func ids(tags []tag.Tag) string {
	return strings.Join(tag.IDs(tags), ",")
}

func at(min int) *time.Time {
	ts := time.Date(2024, 6, 1, 12, min, 0, 0, time.UTC)
	return &ts
}

var (
	work   = tag.Tag{ID: "work", Label: "Work", Category: tag.CategoryActivity}
	office = tag.Tag{ID: "office", Label: "Office", Category: tag.CategoryPlace}
	focus  = tag.Tag{ID: "focus", Label: "Focus", Category: tag.CategoryContext}
	home   = tag.Tag{ID: "home", Label: "Home", Category: tag.CategoryPlace}
)
