package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
)

var (
	output = &base.OutputOptions{}
)

// New returns the quicklog root command.
func New() *cobra.Command {
	v := viper.New()
	g := &globalOptions{v: v}

	cmd := &cobra.Command{
		Use:   "quicklog",
		Short: base.Wrap80("Tap a few tags and log what you are doing, where and with whom."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	g.addFlags(cmd)
	AddCommands(cmd, g)
	return cmd
}

func AddCommands(topLevel *cobra.Command, g *globalOptions) {
	addTag(topLevel, g)
	addLog(topLevel, g)
	addEntries(topLevel, g)
	addExport(topLevel, g)
	addImport(topLevel, g)
	addStats(topLevel, g)
	addWatch(topLevel, g)
	addArchive(topLevel, g)
	addCompletions(topLevel, g)
	addVersion(topLevel)
}
