package timeutil

import (
	"testing"
	"time"
)

func TestParseWindowDefault(t *testing.T) {
	dur, label, err := ParseWindow("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dur != 7*24*time.Hour || label != "1w" {
		t.Fatalf("got %v %q", dur, label)
	}
}

func TestParseWindowComposite(t *testing.T) {
	dur, label, err := ParseWindow("1w 2d6h30m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := (7*24+2*24+6)*time.Hour + 30*time.Minute
	if dur != want {
		t.Fatalf("expected %v, got %v", want, dur)
	}
	if label != "1w2d6h30m" {
		t.Fatalf("unexpected label: %s", label)
	}
}

func TestParseWindowNormalizes(t *testing.T) {
	_, label, err := ParseWindow("48h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != "2d" {
		t.Fatalf("label = %q", label)
	}
}

func TestParseWindowErrors(t *testing.T) {
	for _, in := range []string{"abc", "3y", "0d", "5"} {
		if _, _, err := ParseWindow(in); err == nil {
			t.Errorf("ParseWindow(%q) expected error", in)
		}
	}
}

func TestRangeContains(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	r := Last(24*time.Hour, now)
	if !r.Contains(now.Add(-time.Hour)) {
		t.Fatalf("expected inside")
	}
	if r.Contains(now) {
		t.Fatalf("until bound is exclusive")
	}
	if r.Contains(now.Add(-25 * time.Hour)) {
		t.Fatalf("expected outside")
	}
	if !(Range{}).Contains(time.Time{}) {
		t.Fatalf("zero range contains everything")
	}
}

func TestResolve(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	r, err := Resolve("3d", "", "", now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !r.Since.Equal(now.Add(-72*time.Hour)) || !r.Until.Equal(now) {
		t.Fatalf("last range = %+v", r)
	}

	r, err = Resolve("3d", "2020-01-01", "", now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !r.Since.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) || !r.Until.IsZero() {
		t.Fatalf("since range = %+v", r)
	}

	r, err = Resolve("", "2024-03-01", "2024-03-05", now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !r.Since.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) ||
		!r.Until.Equal(time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date range = %+v", r)
	}

	r, err = Resolve("", "", "", now)
	if err != nil || !r.IsZero() {
		t.Fatalf("expected open range, got %+v %v", r, err)
	}

	if _, err := Resolve("", "03/01/2024", "", now); err == nil {
		t.Fatalf("expected date error")
	}
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2024, 3, 10, 17, 45, 3, 9, time.UTC)
	if got := StartOfDay(in); !got.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("got %v", got)
	}
}
