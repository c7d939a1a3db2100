package entry

import (
	"time"
)

// DayLayout is the key format used when grouping entries by day, for example
// "Tue, Mar 5".
const DayLayout = "Mon, Jan 2"

// ParseTime parses an RFC 3339 instant as written by FormatTime.
func ParseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// FormatTime renders v as an RFC 3339 UTC instant.
func FormatTime(v time.Time) string {
	return v.UTC().Format(time.RFC3339Nano)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// DayKey formats t with DayLayout in loc.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DayLayout)
}

// Millis truncates t to the millisecond precision entries are stored with.
func Millis(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli()).UTC()
}
