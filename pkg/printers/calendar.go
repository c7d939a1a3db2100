package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/quicklog/pkg/entry"
)

const weekWidth = len("11 12 13 14 15 16 17") // an example week

// Calendar prints a month grid for the month containing on. Days with at
// least one entry are bold, days with none are faint.
func (pp *PrettyPrint) Calendar(on time.Time, entries []entry.Entry) {
	on = on.In(pp.loc())
	pp.MonthCount(on, DayCounts(on, entries))
}

// DayCounts returns the number of entries on each day of on's month, in
// on's location.
func DayCounts(on time.Time, entries []entry.Entry) []int {
	count := make([]int, DaysIn(on))
	for _, e := range entries {
		at := e.CreatedAt.In(on.Location())
		if at.Year() == on.Year() && at.Month() == on.Month() {
			count[at.Day()-1]++
		}
	}
	return count
}

// MonthCount prints the grid for then using per-day counts.
func (pp *PrettyPrint) MonthCount(then time.Time, count []int) {
	w := pp.out()
	tf := color.New(color.Italic)

	m := then.Format("January 2006")
	mid := (weekWidth - len(m)) / 2
	if mid < 0 {
		mid = 0
	}
	_, _ = tf.Fprintf(w, "%s%s\n", strings.Repeat(" ", mid), m)

	d := StartDay(then)
	// Pad out the start of the month.
	_, _ = fmt.Fprint(w, strings.Repeat("   ", int(d)))

	l1 := color.New(color.Faint)
	l2 := color.New(color.Bold)
	for i := 0; i < DaysIn(then); i++ {
		printer := l1
		if i < len(count) && count[i] > 0 {
			printer = l2
		}
		_, _ = printer.Fprintf(w, "%2d ", i+1)

		d++
		if d > time.Saturday {
			d = time.Sunday
			_, _ = fmt.Fprint(w, "\n")
		}
	}
	_, _ = fmt.Fprint(w, "\n\n")
}

func DaysIn(then time.Time) int {
	return time.Date(then.Year(), then.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func StartDay(then time.Time) time.Weekday {
	return time.Date(then.Year(), then.Month(), 1, 0, 0, 0, 0, time.UTC).Weekday()
}
