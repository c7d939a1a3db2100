package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/quicklog/pkg/commands/options"
	"tableflip.dev/quicklog/pkg/suggest"
	"tableflip.dev/quicklog/pkg/tag"
	base "github.com/n3wscott/cli-base/pkg/commands/options"
)

func addTag(topLevel *cobra.Command, g *globalOptions) {
	cmd := &cobra.Command{
		Use:     "tag",
		Aliases: []string{"tags"},
		Short:   "Manage tags and the links between them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addTagList(cmd, g)
	addTagRecent(cmd, g)
	addTagAdd(cmd, g)
	addTagLink(cmd, g, true)
	addTagLink(cmd, g, false)
	addTagRemove(cmd, g)
	addTagRelated(cmd, g)
	addTagSuggest(cmd, g)

	topLevel.AddCommand(cmd)
}

func addTagList(parent *cobra.Command, g *globalOptions) {
	ido := &options.IDOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every tag",
		Example: `
quicklog tag list
quicklog tag list --show-id
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(ctx context.Context, e *env) error {
				tags, err := e.svc.AllTags(ctx)
				if err != nil {
					return err
				}
				e.pp.ShowID = ido.ShowID
				e.pp.TitleWithCount("Tags", len(tags), "tag")
				e.pp.Tags(tags)
				return nil
			})
		},
	}
	options.AddShowIDArgs(cmd, ido)
	base.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

func addTagRecent(parent *cobra.Command, g *globalOptions) {
	limit := 0
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recently used tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(ctx context.Context, e *env) error {
				n := limit
				if n <= 0 {
					n = e.cfg.RecentLimit()
				}
				tags, err := e.svc.RecentTags(ctx, n)
				if err != nil {
					return err
				}
				e.pp.Title("Recent")
				e.pp.Tags(tags)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of tags to show (default from config).")
	parent.AddCommand(cmd)
}

func addTagAdd(parent *cobra.Command, g *globalOptions) {
	category := ""
	cmd := &cobra.Command{
		Use:   "add LABEL...",
		Short: "Create custom tags",
		Example: `
quicklog tag add "Deep work"
quicklog tag add Alice Bob --category person
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := tag.Category("")
			if category != "" {
				c, err := tag.ParseCategory(category)
				if err != nil {
					return err
				}
				cat = c
			}
			return g.run(cmd, func(ctx context.Context, e *env) error {
				for _, label := range args {
					t, err := e.svc.CreateTag(ctx, label, cat)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t.ID, t.Label)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "",
		"Category for new tags. One of "+strings.Join(categoryNames(), ", ")+".")
	base.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

func categoryNames() []string {
	var out []string
	for _, c := range tag.AllCategories() {
		out = append(out, strings.ToLower(string(c)))
	}
	return out
}

func addTagLink(parent *cobra.Command, g *globalOptions, link bool) {
	use, short := "link A B", "Link two tags so they suggest each other"
	if !link {
		use, short = "unlink A B", "Remove the link between two tags"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, e *env) error {
				if link {
					return e.svc.Link(ctx, args[0], args[1])
				}
				return e.svc.Unlink(ctx, args[0], args[1])
			})
		},
	}
	base.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

func addTagRemove(parent *cobra.Command, g *globalOptions) {
	cmd := &cobra.Command{
		Use:     "rm TAG...",
		Aliases: []string{"delete"},
		Short:   "Delete tags, their links and their use on entries",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, e *env) error {
				return e.svc.DeleteTags(ctx, args)
			})
		},
	}
	base.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

func addTagRelated(parent *cobra.Command, g *globalOptions) {
	var set []string
	clearAll := false
	cmd := &cobra.Command{
		Use:   "related [TAG]",
		Short: "Show or replace the tags linked to a tag",
		Example: `
quicklog tag related
quicklog tag related Work --set Office,Focus
quicklog tag related Work --clear
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(set) > 0 || clearAll) && len(args) == 0 {
				return errors.New("--set and --clear need a tag")
			}
			return g.run(cmd, func(ctx context.Context, e *env) error {
				if len(args) == 1 && (len(set) > 0 || clearAll) {
					if err := e.svc.UpdateRelations(ctx, args[0], set); err != nil {
						return err
					}
				}
				rels, err := e.svc.Relations(ctx)
				if err != nil {
					return err
				}
				if len(args) == 1 {
					t, err := e.svc.ResolveTag(ctx, args[0])
					if err != nil {
						return err
					}
					for _, r := range rels {
						if r.Tag.ID == t.ID {
							rels = []tag.Relations{r}
							break
						}
					}
				}
				e.pp.Title("Related tags")
				e.pp.Relations(rels)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&set, "set", nil, "Replace the related tags with this list.")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Remove every related tag.")
	parent.AddCommand(cmd)
}

func addTagSuggest(parent *cobra.Command, g *globalOptions) {
	cmd := &cobra.Command{
		Use:   "suggest TAG...",
		Short: "Show the tags suggested for a selection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, e *env) error {
				ids, err := e.svc.ResolveTags(ctx, args)
				if err != nil {
					return err
				}
				engine := suggest.New(e.db.Tags())
				neighbors, err := engine.Neighbors(ctx, ids)
				if err != nil {
					return err
				}
				connected, err := engine.Connected(ctx, ids)
				if err != nil {
					return err
				}
				e.pp.TitleWithCount("Suggested", len(neighbors), "tag")
				e.pp.TagLine(neighbors)
				e.pp.TitleWithCount("Connected", len(connected), "tag")
				e.pp.TagLine(connected)
				return nil
			})
		},
	}
	parent.AddCommand(cmd)
}
