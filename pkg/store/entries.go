package store

import (
	"context"
	"database/sql"
	"fmt"

	"tableflip.dev/quicklog/pkg/entry"
	"tableflip.dev/quicklog/pkg/tag"
)

// Entries is the SQLite EntryStore.
type Entries struct {
	db *DB
}

// ListAll returns every entry with its tags, newest first.
func (s *Entries) ListAll(ctx context.Context) ([]entry.Entry, error) {
	var out []entry.Entry
	err := s.db.read(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = loadEntries(ctx, tx, `ORDER BY e.created_at DESC, e.id DESC`)
		return err
	})
	return out, storageErr("list entries", err)
}

// Get returns the entry with id, or nil when there is none.
func (s *Entries) Get(ctx context.Context, id int64) (*entry.Entry, error) {
	var out []entry.Entry
	err := s.db.read(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = loadEntries(ctx, tx, `WHERE e.id = ?`, id)
		return err
	})
	if err != nil {
		return nil, storageErr("get entry", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

func loadEntries(ctx context.Context, tx *sql.Tx, clause string, args ...any) ([]entry.Entry, error) {
	rows, err := tx.QueryContext(ctx, `
SELECT e.id, e.created_at, e.note, e.latitude, e.longitude, e.location_label
FROM entries e `+clause, args...)
	if err != nil {
		return nil, err
	}
	var (
		out   []entry.Entry
		index = make(map[int64]int)
	)
	for rows.Next() {
		var (
			e         entry.Entry
			createdAt int64
			note      sql.NullString
			lat, lon  sql.NullFloat64
			label     sql.NullString
		)
		if err := rows.Scan(&e.ID, &createdAt, &note, &lat, &lon, &label); err != nil {
			rows.Close()
			return nil, err
		}
		e.CreatedAt = fromMillis(createdAt)
		if note.Valid {
			n := note.String
			e.Note = &n
		}
		if lat.Valid {
			v := lat.Float64
			e.Location.Latitude = &v
		}
		if lon.Valid {
			v := lon.Float64
			e.Location.Longitude = &v
		}
		if label.Valid {
			v := label.String
			e.Location.Label = &v
		}
		index[e.ID] = len(out)
		out = append(out, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	tagRows, err := tx.QueryContext(ctx, `
SELECT et.entry_id, `+tagColumns+`
FROM entry_tags et JOIN tags t ON t.id = et.tag_id
ORDER BY t.label ASC`)
	if err != nil {
		return nil, err
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var (
			entryID  int64
			t        tag.Tag
			category string
			lastUsed sql.NullInt64
		)
		if err := tagRows.Scan(&entryID, &t.ID, &t.Label, &category, &lastUsed); err != nil {
			return nil, err
		}
		i, ok := index[entryID]
		if !ok {
			continue
		}
		t.Category, _ = tag.ParseCategory(category)
		if lastUsed.Valid {
			ts := fromMillis(lastUsed.Int64)
			t.LastUsedAt = &ts
		}
		out[i].Tags = append(out[i].Tags, t)
	}
	return out, tagRows.Err()
}

func validateSave(req SaveRequest) error {
	if len(unique(nonEmpty(req.TagIDs))) == 0 {
		return Invalid("entry requires at least one tag")
	}
	return nil
}

func nonEmpty(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// knownTags returns the ids that name a stored tag, in input order.
func knownTags(ctx context.Context, q queryer, ids []string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT id FROM tags WHERE id IN (`+placeholders(len(ids))+`)`, stringArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("look up tags: %w", err)
	}
	defer rows.Close()
	found := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tag id: %w", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("look up tags: %w", err)
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if found[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// saveEntry writes one entry. Unknown tag ids are dropped; an entry left with
// no known tag is rejected.
func saveEntry(ctx context.Context, tx *sql.Tx, req SaveRequest, touchedAt int64) (int64, error) {
	tagIDs, err := knownTags(ctx, tx, unique(nonEmpty(req.TagIDs)))
	if err != nil {
		return 0, err
	}
	if len(tagIDs) == 0 {
		return 0, Invalid("entry tags %v do not exist", req.TagIDs)
	}

	var note any
	if n := entry.SanitizeNote(req.Note); n != nil {
		note = *n
	}
	var lat, lon, label any
	if req.Location.Latitude != nil {
		lat = *req.Location.Latitude
	}
	if req.Location.Longitude != nil {
		lon = *req.Location.Longitude
	}
	if req.Location.Label != nil {
		label = *req.Location.Label
	}

	var id int64
	if req.ID == nil {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO entries (created_at, note, latitude, longitude, location_label) VALUES (?, ?, ?, ?, ?)`,
			millis(req.CreatedAt), note, lat, lon, label)
		if err != nil {
			return 0, fmt.Errorf("insert entry: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, fmt.Errorf("insert entry id: %w", err)
		}
	} else {
		id = *req.ID
		_, err := tx.ExecContext(ctx, `
INSERT INTO entries (id, created_at, note, latitude, longitude, location_label) VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET created_at = excluded.created_at, note = excluded.note,
	latitude = excluded.latitude, longitude = excluded.longitude, location_label = excluded.location_label`,
			id, millis(req.CreatedAt), note, lat, lon, label)
		if err != nil {
			return 0, fmt.Errorf("replace entry %d: %w", id, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM entry_tags WHERE entry_id = ?`, id); err != nil {
		return 0, fmt.Errorf("clear entry tags: %w", err)
	}
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO entry_tags (entry_id, tag_id) VALUES (?, ?)`, id, tagID); err != nil {
			return 0, fmt.Errorf("tag entry %d with %s: %w", id, tagID, err)
		}
	}
	args := append([]any{touchedAt}, stringArgs(tagIDs)...)
	if _, err := tx.ExecContext(ctx, `UPDATE tags SET last_used_at = ? WHERE id IN (`+placeholders(len(tagIDs))+`)`, args...); err != nil {
		return 0, fmt.Errorf("touch tags: %w", err)
	}
	return id, nil
}

// Save writes req and returns the entry id. The entry row, its tag
// associations and the last-used time of its tags change together or not at
// all. An empty tag set is rejected without touching the database.
func (s *Entries) Save(ctx context.Context, req SaveRequest) (int64, error) {
	if err := validateSave(req); err != nil {
		return 0, err
	}
	var id int64
	err := s.db.withTx(ctx, "save entry", func(tx *sql.Tx) error {
		var err error
		id, err = saveEntry(ctx, tx, req, millis(s.db.now()))
		return err
	}, KindEntries, KindTags)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SaveMany saves every request in one transaction and returns the ids in
// request order.
func (s *Entries) SaveMany(ctx context.Context, reqs []SaveRequest) ([]int64, error) {
	for i, req := range reqs {
		if err := validateSave(req); err != nil {
			return nil, Invalid("entry %d: %v", i, err)
		}
	}
	if len(reqs) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(reqs))
	err := s.db.withTx(ctx, "save entries", func(tx *sql.Tx) error {
		now := millis(s.db.now())
		for _, req := range reqs {
			id, err := saveEntry(ctx, tx, req, now)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	}, KindEntries, KindTags)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Delete removes the entry and its tag associations. Tags are kept.
func (s *Entries) Delete(ctx context.Context, id int64) error {
	return s.DeleteMany(ctx, []int64{id})
}

// DeleteMany removes every listed entry in one transaction.
func (s *Entries) DeleteMany(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	in := placeholders(len(ids))
	return s.db.withTx(ctx, "delete entries", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entry_tags WHERE entry_id IN (`+in+`)`, args...); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id IN (`+in+`)`, args...)
		return err
	}, KindEntries)
}

// Observe streams ListAll, re-emitting after every change to entries or tags.
func (s *Entries) Observe(ctx context.Context) <-chan []entry.Entry {
	return observe(ctx, s.db, "observe entries", s.ListAll, KindEntries, KindTags)
}
