// Package timeutil resolves the time windows used when filtering and
// reporting on entries.
package timeutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultWindow is used by reports when no window is given.
const DefaultWindow = "1w"

// DateLayout is the calendar date format accepted for --since and --until.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

var (
	segment = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	units   = map[string]time.Duration{
		"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
		"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
		"d": day, "day": day, "days": day,
		"w": 7 * day, "wk": 7 * day, "week": 7 * day, "weeks": 7 * day,
	}
)

// ParseWindow reads a compact duration such as "3d", "1w" or "1w2d6h" and
// returns it with its canonical spelling. Empty input means DefaultWindow.
func ParseWindow(input string) (time.Duration, string, error) {
	rest := strings.ToLower(strings.TrimSpace(input))
	if rest == "" {
		rest = DefaultWindow
	}
	var total time.Duration
	for rest != "" {
		m := segment.FindStringSubmatch(rest)
		if m == nil {
			return 0, "", fmt.Errorf("timeutil: invalid window segment %q", strings.TrimSpace(rest))
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, "", fmt.Errorf("timeutil: invalid window value %q: %w", m[1], err)
		}
		unit, ok := units[m[2]]
		if !ok {
			return 0, "", fmt.Errorf("timeutil: unsupported window unit %q", m[2])
		}
		total += time.Duration(n) * unit
		rest = strings.TrimSpace(rest[len(m[0]):])
	}
	if total <= 0 {
		return 0, "", errors.New("timeutil: window must be greater than zero")
	}
	return total, FormatWindow(total), nil
}

// FormatWindow spells d with w/d/h/m tokens. Seconds are dropped.
func FormatWindow(d time.Duration) string {
	var b strings.Builder
	for _, u := range []struct {
		label string
		size  time.Duration
	}{{"w", 7 * day}, {"d", day}, {"h", time.Hour}, {"m", time.Minute}} {
		if d < u.size {
			continue
		}
		n := d / u.size
		d -= n * u.size
		fmt.Fprintf(&b, "%d%s", n, u.label)
	}
	if b.Len() == 0 {
		return "0m"
	}
	return b.String()
}

// Range is a half-open [Since, Until) interval. A zero bound is unbounded.
type Range struct {
	Since time.Time
	Until time.Time
}

// Contains reports whether t falls inside r.
func (r Range) Contains(t time.Time) bool {
	if !r.Since.IsZero() && t.Before(r.Since) {
		return false
	}
	if !r.Until.IsZero() && !t.Before(r.Until) {
		return false
	}
	return true
}

// IsZero reports whether neither bound is set.
func (r Range) IsZero() bool {
	return r.Since.IsZero() && r.Until.IsZero()
}

// String renders the range for report headers.
func (r Range) String() string {
	since, until := "beginning", "now"
	if !r.Since.IsZero() {
		since = r.Since.Format(DateLayout)
	}
	if !r.Until.IsZero() {
		until = r.Until.Format(DateLayout)
	}
	return since + " → " + until
}

// Last returns the range covering the window ending at now.
func Last(window time.Duration, now time.Time) Range {
	return Range{Since: now.Add(-window), Until: now}
}

// StartOfDay truncates t to local midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDate reads a yyyy-mm-dd date as local midnight in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeutil: invalid date %q, want %s", raw, DateLayout)
	}
	return t, nil
}

// Resolve builds a Range from command line style inputs. since wins over
// last; until is inclusive of the whole named day. Empty inputs leave the
// matching bound open.
func Resolve(last, since, until string, now time.Time) (Range, error) {
	var r Range
	loc := now.Location()
	switch {
	case strings.TrimSpace(since) != "":
		t, err := ParseDate(since, loc)
		if err != nil {
			return Range{}, err
		}
		r.Since = t
	case strings.TrimSpace(last) != "":
		window, _, err := ParseWindow(last)
		if err != nil {
			return Range{}, err
		}
		r = Last(window, now)
	}
	if strings.TrimSpace(until) != "" {
		t, err := ParseDate(until, loc)
		if err != nil {
			return Range{}, err
		}
		r.Until = t.AddDate(0, 0, 1)
	}
	if !r.Since.IsZero() && !r.Until.IsZero() && r.Until.Before(r.Since) {
		r.Since, r.Until = r.Until, r.Since
	}
	return r, nil
}
