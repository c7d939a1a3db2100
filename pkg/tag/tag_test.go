package tag

import (
	"strings"
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		raw     string
		want    Category
		wantErr bool
	}{
		{raw: "PERSON", want: CategoryPerson},
		{raw: "mood", want: CategoryMood},
		{raw: "  Place ", want: CategoryPlace},
		{raw: "", want: CategoryCustom},
		{raw: "planet", want: CategoryCustom, wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseCategory(tc.raw)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseCategory(%q) err = %v, wantErr %v", tc.raw, err, tc.wantErr)
		}
		if got != tc.want {
			t.Fatalf("ParseCategory(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestCategoryTitle(t *testing.T) {
	if got := CategoryActivity.Title(); got != "Activity" {
		t.Fatalf("Title() = %q", got)
	}
}

func TestValidate(t *testing.T) {
	ok := Tag{ID: "tag_work", Label: "Work", Category: CategoryActivity}
	if err := Validate(ok); err != nil {
		t.Fatalf("Validate(valid) = %v", err)
	}
	if err := Validate(Tag{ID: "x", Label: "   ", Category: CategoryCustom}); err == nil {
		t.Fatalf("expected blank label to fail")
	}
	if err := Validate(Tag{Label: "Work", Category: CategoryCustom}); err == nil {
		t.Fatalf("expected missing id to fail")
	}
	err := Validate(Tag{ID: "x", Label: "Work", Category: "PLANET"})
	if err == nil || !strings.Contains(err.Error(), "category") {
		t.Fatalf("expected category failure, got %v", err)
	}
}

func TestNewCustom(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	got := NewCustom("  Gardening ", now)
	if !strings.HasPrefix(got.ID, "user_") {
		t.Fatalf("id = %q, want user_ prefix", got.ID)
	}
	if got.Label != "Gardening" || got.Category != CategoryCustom {
		t.Fatalf("unexpected tag %+v", got)
	}
	if got.LastUsedAt == nil || !got.LastUsedAt.Equal(now) {
		t.Fatalf("LastUsedAt = %v, want %v", got.LastUsedAt, now)
	}
}

func TestFindByLabelFoldsCase(t *testing.T) {
	tags := []Tag{{ID: "a", Label: "Work"}, {ID: "b", Label: "Straße"}}
	if got, ok := FindByLabel(tags, "WORK"); !ok || got.ID != "a" {
		t.Fatalf("FindByLabel(WORK) = %v, %v", got, ok)
	}
	if got, ok := FindByLabel(tags, "STRASSE"); !ok || got.ID != "b" {
		t.Fatalf("FindByLabel(STRASSE) = %v, %v", got, ok)
	}
	if _, ok := FindByLabel(tags, " "); ok {
		t.Fatalf("blank label should not match")
	}
}

func TestSortByRecency(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	tags := []Tag{
		{ID: "z", Label: "Zed"},
		{ID: "old", Label: "Old", LastUsedAt: &t1},
		{ID: "a", Label: "Alpha"},
		{ID: "new", Label: "New", LastUsedAt: &t2},
	}
	SortByRecency(tags)
	got := strings.Join(IDs(tags), ",")
	if got != "new,old,a,z" {
		t.Fatalf("order = %s", got)
	}
}

func TestDefaultsAreSymmetric(t *testing.T) {
	tags, links := Defaults()
	if len(tags) != 15 {
		t.Fatalf("len(tags) = %d, want 15", len(tags))
	}
	known := make(map[string]bool, len(tags))
	for _, tg := range tags {
		if err := Validate(tg); err != nil {
			t.Fatalf("seed tag %s invalid: %v", tg.ID, err)
		}
		known[tg.ID] = true
	}
	rows := make(map[Link]bool, len(links))
	for _, l := range links {
		rows[l] = true
	}
	for _, l := range links {
		if !known[l.Parent] || !known[l.Child] {
			t.Fatalf("link %v references unknown tag", l)
		}
		if !rows[Link{Parent: l.Child, Child: l.Parent}] {
			t.Fatalf("link %v has no reverse row", l)
		}
	}
}
