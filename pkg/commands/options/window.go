package options

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/quicklog/pkg/timeutil"
)

// WindowOptions selects a time range with --last or --since/--until.
type WindowOptions struct {
	Last  string
	Since string
	Until string
}

func AddWindowArgs(cmd *cobra.Command, o *WindowOptions, defaultLast string) {
	cmd.Flags().StringVar(&o.Last, "last", defaultLast,
		`Time window ending now, example: --last=3d or --last=1w2d. Ignored with --since.`)
	cmd.Flags().StringVar(&o.Since, "since", "",
		`First day to include, example: --since=2024-03-01.`)
	cmd.Flags().StringVar(&o.Until, "until", "",
		`Last day to include, example: --until=2024-03-31.`)
}

// Range resolves the flags against now.
func (o *WindowOptions) Range(now time.Time) (timeutil.Range, error) {
	return timeutil.Resolve(o.Last, o.Since, o.Until, now)
}

// Label describes the window for headers.
func (o *WindowOptions) Label(r timeutil.Range) string {
	if o.Since == "" && o.Last != "" {
		if _, label, err := timeutil.ParseWindow(o.Last); err == nil {
			return "last " + label
		}
	}
	if r.IsZero() {
		return "all time"
	}
	return r.String()
}
