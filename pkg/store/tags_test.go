package store

import (
	"context"
	"errors"
	"testing"

	"tableflip.dev/quicklog/pkg/tag"
)

func TestTagsListAllOrderedByLabel(t *testing.T) {
	s := openTestDB(t).Tags()
	mustUpsert(t, s, work, office, focus)

	got, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if ids(got) != "focus,office,work" {
		t.Fatalf("order = %s", ids(got))
	}
}

func TestTagsListRecent(t *testing.T) {
	s := openTestDB(t).Tags()
	a := tag.Tag{ID: "a", Label: "A", Category: tag.CategoryCustom}
	b := tag.Tag{ID: "b", Label: "B", Category: tag.CategoryCustom, LastUsedAt: at(10)}
	c := tag.Tag{ID: "c", Label: "C", Category: tag.CategoryCustom, LastUsedAt: at(5)}
	mustUpsert(t, s, a, b, c)

	got, err := s.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if ids(got) != "b,c,a" {
		t.Fatalf("order = %s", ids(got))
	}

	got, err = s.ListRecent(context.Background(), 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if ids(got) != "b,c" {
		t.Fatalf("limited order = %s", ids(got))
	}
}

func TestTagsUpsertReplacesAndValidates(t *testing.T) {
	s := openTestDB(t).Tags()
	ctx := context.Background()
	mustUpsert(t, s, work)

	renamed := work
	renamed.Label = "Job"
	mustUpsert(t, s, renamed)

	got, err := s.GetByIDs(ctx, []string{"work"})
	if err != nil || len(got) != 1 || got[0].Label != "Job" {
		t.Fatalf("GetByIDs = %v, %v", got, err)
	}

	err = s.Upsert(ctx, tag.Tag{ID: "x", Label: " ", Category: tag.CategoryCustom})
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestTagsLinkIsSymmetricAndIdempotent(t *testing.T) {
	s := openTestDB(t).Tags()
	ctx := context.Background()
	mustUpsert(t, s, work, office)

	for i := 0; i < 2; i++ {
		if err := s.Link(ctx, "work", "office"); err != nil {
			t.Fatalf("link: %v", err)
		}
	}
	links, err := s.Links(ctx)
	if err != nil {
		t.Fatalf("links: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected two rows, got %v", links)
	}

	n, err := s.NeighborsOf(ctx, []string{"office"})
	if err != nil || ids(n) != "work" {
		t.Fatalf("NeighborsOf(office) = %v, %v", n, err)
	}

	if err := s.Unlink(ctx, "office", "work"); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	links, _ = s.Links(ctx)
	if len(links) != 0 {
		t.Fatalf("expected no rows after unlink, got %v", links)
	}
}

func TestTagsLinkRejectsSelf(t *testing.T) {
	s := openTestDB(t).Tags()
	mustUpsert(t, s, work)

	err := s.Link(context.Background(), "work", "work")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	links, _ := s.Links(context.Background())
	if len(links) != 0 {
		t.Fatalf("self link wrote rows: %v", links)
	}
}

func TestTagsNeighborsDedupAndOrder(t *testing.T) {
	s := openTestDB(t).Tags()
	ctx := context.Background()
	f := focus
	f.LastUsedAt = at(30)
	mustUpsert(t, s, work, office, f, home)
	for _, p := range [][2]string{{"work", "office"}, {"work", "focus"}, {"home", "focus"}} {
		if err := s.Link(ctx, p[0], p[1]); err != nil {
			t.Fatalf("link: %v", err)
		}
	}

	got, err := s.NeighborsOf(ctx, []string{"work", "home"})
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}
	if ids(got) != "focus,office" {
		t.Fatalf("neighbors = %s", ids(got))
	}

	got, err = s.NeighborsOf(ctx, nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("NeighborsOf(nil) = %v, %v", got, err)
	}
}

func TestTagsDeleteRemovesLinks(t *testing.T) {
	db := openTestDB(t)
	s := db.Tags()
	ctx := context.Background()
	mustUpsert(t, s, work, office, focus)
	_ = s.Link(ctx, "work", "office")
	_ = s.Link(ctx, "focus", "office")

	if err := s.Delete(ctx, []string{"office", "missing"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	links, _ := s.Links(ctx)
	if len(links) != 0 {
		t.Fatalf("links survived delete: %v", links)
	}
	all, _ := s.ListAll(ctx)
	if ids(all) != "focus,work" {
		t.Fatalf("remaining = %s", ids(all))
	}
}

func TestTagsSetRelations(t *testing.T) {
	s := openTestDB(t).Tags()
	ctx := context.Background()
	mustUpsert(t, s, work, office, focus, home)
	_ = s.Link(ctx, "work", "office")
	_ = s.Link(ctx, "work", "home")

	if err := s.SetRelations(ctx, "work", []string{"office", "focus"}); err != nil {
		t.Fatalf("set relations: %v", err)
	}
	rel, err := s.Relations(ctx)
	if err != nil {
		t.Fatalf("relations: %v", err)
	}
	got := map[string]string{}
	for _, r := range rel {
		got[r.Tag.ID] = ids(r.Related)
	}
	want := map[string]string{"work": "focus,office", "office": "work", "focus": "work", "home": ""}
	for id, w := range want {
		if got[id] != w {
			t.Fatalf("relations[%s] = %q, want %q", id, got[id], w)
		}
	}

	if err := s.SetRelations(ctx, "work", []string{"work"}); !IsValidation(err) {
		t.Fatalf("expected ValidationError for self relation, got %v", err)
	}
}

func TestTagsImportAllowsDanglingLinks(t *testing.T) {
	s := openTestDB(t).Tags()
	ctx := context.Background()
	err := s.Import(ctx, []tag.Tag{work}, []tag.Link{{Parent: "work", Child: "ghost"}})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	links, _ := s.Links(ctx)
	if len(links) != 2 {
		t.Fatalf("expected symmetric pair, got %v", links)
	}
	rel, _ := s.Relations(ctx)
	if len(rel) != 1 || len(rel[0].Related) != 0 {
		t.Fatalf("dangling link should not surface as relation: %+v", rel)
	}
}

func TestTagsSeedDefaultsOnlyWhenEmpty(t *testing.T) {
	s := openTestDB(t).Tags()
	ctx := context.Background()
	seeded, err := s.SeedDefaults(ctx)
	if err != nil || !seeded {
		t.Fatalf("first seed = %v, %v", seeded, err)
	}
	seeded, err = s.SeedDefaults(ctx)
	if err != nil || seeded {
		t.Fatalf("second seed = %v, %v", seeded, err)
	}
	n, _ := s.Count(ctx)
	if n != 15 {
		t.Fatalf("count = %d", n)
	}
	neighbors, _ := s.NeighborsOf(ctx, []string{"tag_work"})
	if ids(neighbors) != "tag_focus,tag_me,tag_meeting,tag_office" {
		t.Fatalf("work neighbors = %s", ids(neighbors))
	}
}
