package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"tableflip.dev/quicklog/pkg/app"
	"tableflip.dev/quicklog/pkg/archive"
	"tableflip.dev/quicklog/pkg/config"
	"tableflip.dev/quicklog/pkg/logging"
	"tableflip.dev/quicklog/pkg/printers"
	"tableflip.dev/quicklog/pkg/store"
)

// globalOptions holds the persistent flags every command shares.
type globalOptions struct {
	v          *viper.Viper
	configFile string
	jsonLogs   bool
}

func (g *globalOptions) addFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&g.configFile, "config", "",
		"Config file (default is ./.quicklog.yaml or ~/.quicklog.yaml).")
	flags.String("db", "", "Path to the quicklog database.")
	flags.Bool("debug", false, "Enable debug logging.")
	flags.BoolVar(&g.jsonLogs, "json-logs", false, "Write logs as JSON.")
	_ = g.v.BindPFlag("db", flags.Lookup("db"))
	_ = g.v.BindPFlag("debug", flags.Lookup("debug"))
}

// env is everything a command needs once configuration is resolved.
type env struct {
	cfg config.Config
	log *zap.Logger
	db  *store.DB
	svc *app.Service
	pp  *printers.PrettyPrint
}

func (g *globalOptions) open(ctx context.Context) (*env, error) {
	if g.configFile != "" {
		g.v.SetConfigFile(g.configFile)
	}
	cfg, err := config.Load(g.v)
	if err != nil {
		return nil, err
	}

	newLogger := logging.New
	if g.jsonLogs {
		newLogger = logging.NewProduction
	}
	log, err := newLogger(cfg.Debug())
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	db, err := store.Open(cfg.DatabasePath(), store.WithLogger(log))
	if err != nil {
		_ = logging.Sync(log)
		return nil, err
	}
	if cfg.Seed() {
		seeded, err := db.Tags().SeedDefaults(ctx)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		if seeded {
			log.Info("seeded default tags", zap.String("db", db.Path()))
		}
	}

	return &env{
		cfg: cfg,
		log: log,
		db:  db,
		svc: &app.Service{
			Tags:    db.Tags(),
			Entries: db.Entries(),
			Log:     log,
			Now:     time.Now,
		},
		pp: printers.New(),
	}, nil
}

// withArchive attaches the export archive to the service.
func (e *env) withArchive() (*archive.Archive, error) {
	if e.svc.Archive != nil {
		return e.svc.Archive, nil
	}
	a, err := archive.Open(e.cfg.ArchivePath())
	if err != nil {
		return nil, err
	}
	e.svc.Archive = a
	return a, nil
}

func (e *env) Close() {
	if err := e.db.Close(); err != nil {
		e.log.Warn("close database", zap.Error(err))
	}
	_ = logging.Sync(e.log)
}

// run opens the environment, calls fn and closes it again.
func (g *globalOptions) run(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := g.open(ctx)
	if err != nil {
		return output.HandleError(err)
	}
	defer e.Close()
	e.pp.Out = cmd.OutOrStdout()
	return output.HandleError(fn(ctx, e))
}
