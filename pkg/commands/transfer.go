package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/quicklog/pkg/app"
	"tableflip.dev/quicklog/pkg/archive"
	"tableflip.dev/quicklog/pkg/commands/options"
)

type exportOptions struct {
	options.TagOptions
	options.WindowOptions
	Out     string
	Archive bool
	Format  string
}

func addExport(topLevel *cobra.Command, g *globalOptions) {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export entries, tags or locations as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addExportKind(cmd, g, archive.KindEntries, "Export the entry log", func(ctx context.Context, e *env, eo *exportOptions) (string, error) {
		r, err := eo.Range(time.Now())
		if err != nil {
			return "", err
		}
		f := app.Filter{Since: r.Since, Until: r.Until}
		if refs := eo.Refs(); len(refs) > 0 {
			if f.TagIDs, err = e.svc.ResolveTags(ctx, refs); err != nil {
				return "", err
			}
		}
		return e.svc.ExportEntries(ctx, f)
	})
	addExportKind(cmd, g, archive.KindTags, "Export the tag catalog with links", func(ctx context.Context, e *env, _ *exportOptions) (string, error) {
		return e.svc.ExportTags(ctx)
	})
	addExportKind(cmd, g, archive.KindLocations, "Export entries that have coordinates", func(ctx context.Context, e *env, eo *exportOptions) (string, error) {
		r, err := eo.Range(time.Now())
		if err != nil {
			return "", err
		}
		if eo.Format == "json" {
			return e.svc.ExportLocationsJSON(ctx, r.Since, r.Until)
		}
		return e.svc.ExportLocations(ctx, r.Since, r.Until)
	})

	topLevel.AddCommand(cmd)
}

type exportFunc func(ctx context.Context, e *env, eo *exportOptions) (string, error)

func addExportKind(parent *cobra.Command, g *globalOptions, kind archive.Kind, short string, export exportFunc) {
	eo := &exportOptions{}
	cmd := &cobra.Command{
		Use:   string(kind),
		Short: short,
		Example: fmt.Sprintf(`
quicklog export %[1]s
quicklog export %[1]s --out %[1]s.csv
quicklog export %[1]s --archive
`, kind),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eo.Format = strings.ToLower(eo.Format)
			if eo.Format != "csv" && eo.Format != "json" {
				return fmt.Errorf("unsupported --format %q, want csv or json", eo.Format)
			}
			if eo.Format == "json" && kind != archive.KindLocations {
				return errors.New("--format json is only supported for locations")
			}
			return g.run(cmd, func(ctx context.Context, e *env) error {
				body, err := export(ctx, e, eo)
				if err != nil {
					return err
				}
				if body == "" {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Nothing to export")
					return nil
				}
				if eo.Archive {
					if _, err := e.withArchive(); err != nil {
						return err
					}
					key, err := e.svc.ArchiveExport(kind, eo.Format, body)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Archived as %s\n", key)
				}
				return writeOut(cmd, eo.Out, body)
			})
		},
	}

	if kind != archive.KindTags {
		options.AddWindowArgs(cmd, &eo.WindowOptions, "")
	}
	if kind == archive.KindEntries {
		options.AddTagArgs(cmd, &eo.TagOptions, "Only entries with any of these tags. Repeatable.")
	}
	cmd.Flags().StringVar(&eo.Out, "out", "", "Write to this file instead of stdout.")
	cmd.Flags().BoolVar(&eo.Archive, "archive", false, "Also keep a copy in the export archive.")
	cmd.Flags().StringVar(&eo.Format, "format", "csv", "Document format. 'json' is available for locations.")
	parent.AddCommand(cmd)
}

func writeOut(cmd *cobra.Command, path, body string) error {
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	if path == "" || path == "-" {
		_, err := io.WriteString(cmd.OutOrStdout(), body)
		return err
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readIn(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

func addImport(topLevel *cobra.Command, g *globalOptions) {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import entries, tags or locations from CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	kinds := []struct {
		kind  archive.Kind
		short string
		run   func(*app.Service, context.Context, string) (int, error)
	}{
		{archive.KindEntries, "Import an entry log", (*app.Service).ImportEntries},
		{archive.KindTags, "Import a tag catalog", (*app.Service).ImportTags},
		{archive.KindLocations, "Import a location log", (*app.Service).ImportLocations},
	}
	for _, k := range kinds {
		k := k
		sub := &cobra.Command{
			Use:   string(k.kind) + " FILE",
			Short: k.short,
			Long: base.Wrap80(k.short + `. Use "-" to read from stdin. Tags named by label
are matched ignoring case and created when missing. Rows that cannot be read
are skipped and reported.`),
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return g.run(cmd, func(ctx context.Context, e *env) error {
					text, err := readIn(cmd, args[0])
					if err != nil {
						return err
					}
					n, err := k.run(e.svc, ctx, text)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d %s\n", n, k.kind)
					return nil
				})
			},
		}
		base.AddOutputArg(sub, output)
		cmd.AddCommand(sub)
	}

	topLevel.AddCommand(cmd)
}
