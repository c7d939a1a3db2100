package commands

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/quicklog/pkg/tag"
)

func addCompletions(topLevel *cobra.Command, g *globalOptions) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(quicklog completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(quicklog completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(os.Stdout)
		},
	}

	registerTagCompletions(topLevel, g)
	topLevel.AddCommand(cmd)
}

// registerTagCompletions completes --tag on every command that has it.
func registerTagCompletions(cmd *cobra.Command, g *globalOptions) {
	if cmd.Flags().Lookup("tag") != nil {
		_ = cmd.RegisterFlagCompletionFunc("tag", func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return tagCompletions(g, toComplete), cobra.ShellCompDirectiveNoFileComp
		})
	}
	for _, sub := range cmd.Commands() {
		registerTagCompletions(sub, g)
	}
}

func tagCompletions(g *globalOptions, toComplete string) []string {
	ctx := context.Background()
	e, err := g.open(ctx)
	if err != nil {
		return nil
	}
	defer e.Close()
	tags, err := e.svc.AllTags(ctx)
	if err != nil {
		return nil
	}
	prefix := tag.Fold(toComplete)
	var out []string
	for _, t := range tags {
		if strings.HasPrefix(tag.Fold(t.Label), prefix) {
			out = append(out, t.Label)
		}
	}
	return out
}
