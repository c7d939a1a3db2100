package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS tags (
	id TEXT PRIMARY KEY,
	label TEXT NOT NULL,
	category TEXT NOT NULL,
	last_used_at INTEGER
);

CREATE INDEX IF NOT EXISTS idx_tags_last_used ON tags(last_used_at);

CREATE TABLE IF NOT EXISTS tag_links (
	parent_id TEXT NOT NULL,
	child_id TEXT NOT NULL,
	PRIMARY KEY (parent_id, child_id)
);

CREATE INDEX IF NOT EXISTS idx_tag_links_child ON tag_links(child_id);

CREATE TABLE IF NOT EXISTS entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at INTEGER NOT NULL,
	note TEXT,
	latitude REAL,
	longitude REAL,
	location_label TEXT
);

CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at);

CREATE TABLE IF NOT EXISTS entry_tags (
	entry_id INTEGER NOT NULL,
	tag_id TEXT NOT NULL,
	PRIMARY KEY (entry_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_entry_tags_tag ON entry_tags(tag_id);
`

// DB is an open quicklog database. Tags and Entries share its connection and
// notifier.
type DB struct {
	db       *sql.DB
	path     string
	notifier *Notifier
	log      *zap.Logger
	now      func() time.Time
}

// Option configures Open.
type Option func(*DB)

// WithLogger sets the logger used for transaction failures.
func WithLogger(l *zap.Logger) Option {
	return func(d *DB) {
		if l != nil {
			d.log = l
		}
	}
}

// WithClock overrides the clock used to touch tags on save.
func WithClock(now func() time.Time) Option {
	return func(d *DB) {
		if now != nil {
			d.now = now
		}
	}
}

// Open opens (creating when needed) the database at path and applies the
// schema. Links are kept without foreign keys so an import can reference tags
// that arrive later.
func Open(path string, opts ...Option) (*DB, error) {
	if path == "" {
		return nil, errors.New("store: database path required")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: ensure database dir: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// One connection serializes transactions and keeps pragmas in effect.
	sqlDB.SetMaxOpenConns(1)

	d := &DB{
		db:       sqlDB,
		path:     path,
		notifier: NewNotifier(),
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := d.init(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) init() error {
	if err := d.db.Ping(); err != nil {
		return fmt.Errorf("store: ping: %w", err)
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := d.db.Exec(pragma); err != nil {
			return fmt.Errorf("store: %s: %w", strings.ToLower(pragma), err)
		}
	}
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("store: apply schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// Notifier returns the change notifier fed by every commit.
func (d *DB) Notifier() *Notifier {
	return d.notifier
}

// Tags returns the tag store view of d.
func (d *DB) Tags() *Tags {
	return &Tags{db: d}
}

// Entries returns the entry store view of d.
func (d *DB) Entries() *Entries {
	return &Entries{db: d}
}

// withTx runs fn in a transaction and publishes changed kinds after commit.
func (d *DB) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error, changed ...Kind) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(op, fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		d.log.Warn("transaction failed", zap.String("op", op), zap.Error(err))
		return storageErr(op, err)
	}
	if err := tx.Commit(); err != nil {
		d.log.Warn("commit failed", zap.String("op", op), zap.Error(err))
		return storageErr(op, fmt.Errorf("commit: %w", err))
	}
	for _, k := range changed {
		d.notifier.Publish(Change{Kind: k})
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// placeholders returns "?,?,?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// read runs fn in a transaction that is always rolled back, giving multi
// statement reads a consistent view.
func (d *DB) read(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin read: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck
	return fn(tx)
}
