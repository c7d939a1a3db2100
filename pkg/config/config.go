// Package config loads quicklog settings from flags, environment and an
// optional .quicklog.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	keyDB            = "db"
	keyArchive       = "archive"
	keyRecentLimit   = "recent_limit"
	keyClockInterval = "clock_interval"
	keySeed          = "seed"
	keyDebug         = "debug"
)

// Config is what the commands need to open the stores.
type Config interface {
	DatabasePath() string
	ArchivePath() string
	RecentLimit() int
	ClockInterval() time.Duration
	Seed() bool
	Debug() bool
}

// Load reads configuration into v. Values set on v (for example bound
// flags) win over the environment (QUICKLOG_*), which wins over the config
// file, which wins over defaults. A missing config file is not an error.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	v.SetDefault(keyDB, "~/.quicklog/quicklog.db")
	v.SetDefault(keyArchive, "~/.quicklog/exports")
	v.SetDefault(keyRecentLimit, 12)
	v.SetDefault(keyClockInterval, 30*time.Second)
	v.SetDefault(keySeed, true)
	v.SetDefault(keyDebug, false)

	v.SetConfigName(".quicklog") // .yaml is implicit
	v.SetEnvPrefix("QUICKLOG")
	v.AutomaticEnv()

	if override := os.Getenv("QUICKLOG_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	db, err := homedir.Expand(v.GetString(keyDB))
	if err != nil {
		return nil, fmt.Errorf("config: expand db path: %w", err)
	}
	archive, err := homedir.Expand(v.GetString(keyArchive))
	if err != nil {
		return nil, fmt.Errorf("config: expand archive path: %w", err)
	}

	cfg := &fileConfig{
		DB:       db,
		Archive:  archive,
		Recent:   v.GetInt(keyRecentLimit),
		Interval: v.GetDuration(keyClockInterval),
		SeedTags: v.GetBool(keySeed),
		Verbose:  v.GetBool(keyDebug),
	}
	if cfg.Recent <= 0 {
		return nil, fmt.Errorf("config: %s must be positive, got %d", keyRecentLimit, cfg.Recent)
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("config: %s must be positive, got %s", keyClockInterval, cfg.Interval)
	}
	return cfg, nil
}

type fileConfig struct {
	DB       string        `json:"db"`
	Archive  string        `json:"archive"`
	Recent   int           `json:"recent_limit"`
	Interval time.Duration `json:"clock_interval"`
	SeedTags bool          `json:"seed"`
	Verbose  bool          `json:"debug"`
}

func (f *fileConfig) DatabasePath() string         { return f.DB }
func (f *fileConfig) ArchivePath() string          { return f.Archive }
func (f *fileConfig) RecentLimit() int             { return f.Recent }
func (f *fileConfig) ClockInterval() time.Duration { return f.Interval }
func (f *fileConfig) Seed() bool                   { return f.SeedTags }
func (f *fileConfig) Debug() bool                  { return f.Verbose }
