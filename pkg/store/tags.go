package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/quicklog/pkg/tag"
)

// Tags is the SQLite TagStore.
type Tags struct {
	db *DB
}

const tagColumns = `t.id, t.label, t.category, t.last_used_at`

const recencyOrder = `ORDER BY t.last_used_at IS NULL, t.last_used_at DESC, t.label ASC`

func scanTags(rows *sql.Rows) ([]tag.Tag, error) {
	defer rows.Close()
	var out []tag.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanTag(rows *sql.Rows) (tag.Tag, error) {
	var (
		t        tag.Tag
		category string
		lastUsed sql.NullInt64
	)
	if err := rows.Scan(&t.ID, &t.Label, &category, &lastUsed); err != nil {
		return tag.Tag{}, err
	}
	t.Category, _ = tag.ParseCategory(category)
	if lastUsed.Valid {
		ts := fromMillis(lastUsed.Int64)
		t.LastUsedAt = &ts
	}
	return t, nil
}

func queryTags(ctx context.Context, q queryer, query string, args ...any) ([]tag.Tag, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanTags(rows)
}

// ListAll returns every tag ordered by label.
func (s *Tags) ListAll(ctx context.Context) ([]tag.Tag, error) {
	tags, err := queryTags(ctx, s.db.db, `SELECT `+tagColumns+` FROM tags t ORDER BY t.label ASC, t.id ASC`)
	return tags, storageErr("list tags", err)
}

// ListRecent returns up to limit tags, most recently used first. Tags that
// were never used sort last, ties break on label.
func (s *Tags) ListRecent(ctx context.Context, limit int) ([]tag.Tag, error) {
	if limit <= 0 {
		return nil, nil
	}
	tags, err := queryTags(ctx, s.db.db, `SELECT `+tagColumns+` FROM tags t `+recencyOrder+` LIMIT ?`, limit)
	return tags, storageErr("list recent tags", err)
}

// GetByIDs returns the tags with the given ids ordered by label. Unknown ids
// are ignored.
func (s *Tags) GetByIDs(ctx context.Context, ids []string) ([]tag.Tag, error) {
	ids = unique(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	tags, err := queryTags(ctx, s.db.db,
		`SELECT `+tagColumns+` FROM tags t WHERE t.id IN (`+placeholders(len(ids))+`) ORDER BY t.label ASC`,
		stringArgs(ids)...)
	return tags, storageErr("get tags", err)
}

// FindByLabel returns the tag whose label matches case-insensitively, or nil.
func (s *Tags) FindByLabel(ctx context.Context, label string) (*tag.Tag, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if t, ok := tag.FindByLabel(all, label); ok {
		return &t, nil
	}
	return nil, nil
}

func upsertTag(ctx context.Context, x execer, t tag.Tag) error {
	var lastUsed any
	if t.LastUsedAt != nil {
		lastUsed = millis(*t.LastUsedAt)
	}
	_, err := x.ExecContext(ctx, `
INSERT INTO tags (id, label, category, last_used_at) VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET label = excluded.label, category = excluded.category, last_used_at = excluded.last_used_at`,
		t.ID, strings.TrimSpace(t.Label), string(t.Category), lastUsed)
	return err
}

// Upsert creates t or replaces the stored tag with the same id. Links are
// kept.
func (s *Tags) Upsert(ctx context.Context, t tag.Tag) error {
	if err := tag.Validate(t); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return s.db.withTx(ctx, "upsert tag", func(tx *sql.Tx) error {
		return upsertTag(ctx, tx, t)
	}, KindTags)
}

func touchTags(ctx context.Context, x execer, ids []string, ts time.Time) error {
	ids = unique(ids)
	if len(ids) == 0 {
		return nil
	}
	args := append([]any{millis(ts)}, stringArgs(ids)...)
	_, err := x.ExecContext(ctx, `UPDATE tags SET last_used_at = ? WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	return err
}

// Touch sets last-used time of the given tags to ts.
func (s *Tags) Touch(ctx context.Context, ids []string, ts time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.withTx(ctx, "touch tags", func(tx *sql.Tx) error {
		return touchTags(ctx, tx, ids, ts)
	}, KindTags)
}

// NeighborsOf returns every tag linked to at least one of ids, each once,
// ordered by recency then label. Ids in the input can be part of the result
// when they are linked to each other.
func (s *Tags) NeighborsOf(ctx context.Context, ids []string) ([]tag.Tag, error) {
	ids = unique(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	tags, err := queryTags(ctx, s.db.db, `
SELECT `+tagColumns+` FROM tags t
JOIN tag_links l ON l.child_id = t.id
WHERE l.parent_id IN (`+placeholders(len(ids))+`)
GROUP BY t.id
`+recencyOrder, stringArgs(ids)...)
	return tags, storageErr("neighbors", err)
}

func insertPair(ctx context.Context, x execer, a, b string) error {
	for _, l := range tag.Pair(a, b) {
		if _, err := x.ExecContext(ctx, `INSERT OR IGNORE INTO tag_links (parent_id, child_id) VALUES (?, ?)`, l.Parent, l.Child); err != nil {
			return fmt.Errorf("link %s -> %s: %w", l.Parent, l.Child, err)
		}
	}
	return nil
}

func deletePair(ctx context.Context, x execer, a, b string) error {
	_, err := x.ExecContext(ctx,
		`DELETE FROM tag_links WHERE (parent_id = ? AND child_id = ?) OR (parent_id = ? AND child_id = ?)`,
		a, b, b, a)
	return err
}

// Link relates a and b in both directions. Linking an already linked pair is
// a no-op; linking a tag to itself is rejected.
func (s *Tags) Link(ctx context.Context, a, b string) error {
	if a == b {
		return Invalid("cannot link tag %q to itself", a)
	}
	if a == "" || b == "" {
		return Invalid("tag ids required to link")
	}
	return s.db.withTx(ctx, "link tags", func(tx *sql.Tx) error {
		return insertPair(ctx, tx, a, b)
	}, KindTags)
}

// Unlink removes both directions of the link between a and b.
func (s *Tags) Unlink(ctx context.Context, a, b string) error {
	if a == b {
		return nil
	}
	return s.db.withTx(ctx, "unlink tags", func(tx *sql.Tx) error {
		return deletePair(ctx, tx, a, b)
	}, KindTags)
}

// SetRelations makes related the exact set of tags linked to id, adding and
// removing symmetric pairs as needed.
func (s *Tags) SetRelations(ctx context.Context, id string, related []string) error {
	want := make(map[string]bool, len(related))
	for _, r := range related {
		if r == id {
			return Invalid("cannot link tag %q to itself", id)
		}
		if r != "" {
			want[r] = true
		}
	}
	return s.db.withTx(ctx, "set relations", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT child_id FROM tag_links WHERE parent_id = ?`, id)
		if err != nil {
			return err
		}
		have := make(map[string]bool)
		for rows.Next() {
			var child string
			if err := rows.Scan(&child); err != nil {
				rows.Close()
				return err
			}
			have[child] = true
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for child := range have {
			if !want[child] {
				if err := deletePair(ctx, tx, id, child); err != nil {
					return err
				}
			}
		}
		for child := range want {
			if !have[child] {
				if err := insertPair(ctx, tx, id, child); err != nil {
					return err
				}
			}
		}
		return nil
	}, KindTags)
}

// Delete removes the tags, every link touching them and their entry
// associations. Entries themselves are kept. Unknown ids are ignored.
func (s *Tags) Delete(ctx context.Context, ids []string) error {
	ids = unique(ids)
	if len(ids) == 0 {
		return nil
	}
	in := placeholders(len(ids))
	args := stringArgs(ids)
	return s.db.withTx(ctx, "delete tags", func(tx *sql.Tx) error {
		stmts := []struct {
			query string
			args  []any
		}{
			{`DELETE FROM tag_links WHERE parent_id IN (` + in + `) OR child_id IN (` + in + `)`, append(append([]any{}, args...), args...)},
			{`DELETE FROM entry_tags WHERE tag_id IN (` + in + `)`, args},
			{`DELETE FROM tags WHERE id IN (` + in + `)`, args},
		}
		for _, st := range stmts {
			if _, err := tx.ExecContext(ctx, st.query, st.args...); err != nil {
				return err
			}
		}
		return nil
	}, KindTags, KindEntries)
}

// Links returns every directed link row.
func (s *Tags) Links(ctx context.Context) ([]tag.Link, error) {
	links, err := queryLinks(ctx, s.db.db)
	return links, storageErr("list links", err)
}

func queryLinks(ctx context.Context, q queryer) ([]tag.Link, error) {
	rows, err := q.QueryContext(ctx, `SELECT parent_id, child_id FROM tag_links ORDER BY parent_id, child_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []tag.Link
	for rows.Next() {
		var l tag.Link
		if err := rows.Scan(&l.Parent, &l.Child); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Relations returns every tag, ordered by label, with the tags it is linked
// to. Links to ids with no tag row are left out.
func (s *Tags) Relations(ctx context.Context) ([]tag.Relations, error) {
	tags, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	links, err := s.Links(ctx)
	if err != nil {
		return nil, err
	}
	return buildRelations(tags, links), nil
}

func buildRelations(tags []tag.Tag, links []tag.Link) []tag.Relations {
	byID := make(map[string]tag.Tag, len(tags))
	for _, t := range tags {
		byID[t.ID] = t
	}
	related := make(map[string][]tag.Tag, len(tags))
	for _, l := range links {
		child, ok := byID[l.Child]
		if !ok {
			continue
		}
		related[l.Parent] = append(related[l.Parent], child)
	}
	out := make([]tag.Relations, 0, len(tags))
	for _, t := range tags {
		r := related[t.ID]
		tag.SortByLabel(r)
		out = append(out, tag.Relations{Tag: t, Related: r})
	}
	return out
}

// Import writes every tag and a symmetric pair for every link in one
// transaction. Links may reference ids that have no tag row.
func (s *Tags) Import(ctx context.Context, tags []tag.Tag, links []tag.Link) error {
	for _, t := range tags {
		if err := tag.Validate(t); err != nil {
			return &ValidationError{Message: fmt.Sprintf("%s: %v", t.ID, err)}
		}
	}
	return s.db.withTx(ctx, "import tags", func(tx *sql.Tx) error {
		for _, t := range tags {
			if err := upsertTag(ctx, tx, t); err != nil {
				return fmt.Errorf("tag %s: %w", t.ID, err)
			}
		}
		for _, l := range links {
			if l.Parent == l.Child || l.Parent == "" || l.Child == "" {
				continue
			}
			if err := insertPair(ctx, tx, l.Parent, l.Child); err != nil {
				return err
			}
		}
		return nil
	}, KindTags)
}

// Count returns the number of stored tags.
func (s *Tags) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&n)
	return n, storageErr("count tags", err)
}

// SeedDefaults writes the default catalog when the store has no tags. It
// reports whether anything was written.
func (s *Tags) SeedDefaults(ctx context.Context) (bool, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	tags, links := tag.Defaults()
	if err := s.Import(ctx, tags, links); err != nil {
		return false, err
	}
	return true, nil
}

// ObserveRecent streams ListRecent(limit), re-emitting after every tag change.
func (s *Tags) ObserveRecent(ctx context.Context, limit int) <-chan []tag.Tag {
	return observe(ctx, s.db, "observe recent tags", func(ctx context.Context) ([]tag.Tag, error) {
		return s.ListRecent(ctx, limit)
	}, KindTags)
}

// ObserveRelations streams Relations, re-emitting after every tag change.
func (s *Tags) ObserveRelations(ctx context.Context) <-chan []tag.Relations {
	return observe(ctx, s.db, "observe relations", s.Relations, KindTags)
}
