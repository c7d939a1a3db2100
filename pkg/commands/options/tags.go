package options

import (
	"strings"

	"github.com/spf13/cobra"
)

// TagOptions collects tags named on the command line by label or id.
type TagOptions struct {
	Tags []string
}

func AddTagArgs(cmd *cobra.Command, o *TagOptions, usage string) {
	cmd.Flags().StringSliceVarP(&o.Tags, "tag", "t", nil, usage)
}

// Refs returns the non-blank tag references.
func (o *TagOptions) Refs() []string {
	out := make([]string, 0, len(o.Tags))
	for _, t := range o.Tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
