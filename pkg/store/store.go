// Package store persists tags, the tag link graph and entries in SQLite.
//
// Every mutating operation runs in a single transaction and publishes a
// Change on the DB's Notifier once it has committed, so observers always see
// a state that includes the write that woke them.
package store

import (
	"context"
	"time"

	"tableflip.dev/quicklog/pkg/entry"
	"tableflip.dev/quicklog/pkg/tag"
)

// TagStore defines the persistence contract for tags and their links.
type TagStore interface {
	ListAll(ctx context.Context) ([]tag.Tag, error)
	ListRecent(ctx context.Context, limit int) ([]tag.Tag, error)
	GetByIDs(ctx context.Context, ids []string) ([]tag.Tag, error)
	FindByLabel(ctx context.Context, label string) (*tag.Tag, error)
	Upsert(ctx context.Context, t tag.Tag) error
	Touch(ctx context.Context, ids []string, ts time.Time) error
	NeighborsOf(ctx context.Context, ids []string) ([]tag.Tag, error)
	Link(ctx context.Context, a, b string) error
	Unlink(ctx context.Context, a, b string) error
	SetRelations(ctx context.Context, id string, related []string) error
	Delete(ctx context.Context, ids []string) error
	Relations(ctx context.Context) ([]tag.Relations, error)
	Links(ctx context.Context) ([]tag.Link, error)
	Import(ctx context.Context, tags []tag.Tag, links []tag.Link) error
	ObserveRecent(ctx context.Context, limit int) <-chan []tag.Tag
	ObserveRelations(ctx context.Context) <-chan []tag.Relations
}

// SaveRequest describes an entry to write. A nil ID inserts a new entry; a
// set ID replaces that entry and its tag associations.
type SaveRequest struct {
	ID        *int64
	CreatedAt time.Time
	Note      string
	Location  entry.Location
	TagIDs    []string
}

// FromDraft converts a draft into a SaveRequest.
func FromDraft(d entry.Draft) SaveRequest {
	return SaveRequest{
		ID:        d.EntryID,
		CreatedAt: d.CreatedAt,
		Note:      d.Note,
		Location:  d.Location,
		TagIDs:    d.TagIDs(),
	}
}

// EntryStore defines the persistence contract for entries.
type EntryStore interface {
	ListAll(ctx context.Context) ([]entry.Entry, error)
	Get(ctx context.Context, id int64) (*entry.Entry, error)
	Save(ctx context.Context, req SaveRequest) (int64, error)
	SaveMany(ctx context.Context, reqs []SaveRequest) ([]int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) error
	Observe(ctx context.Context) <-chan []entry.Entry
}

var (
	_ TagStore   = (*Tags)(nil)
	_ EntryStore = (*Entries)(nil)
)
