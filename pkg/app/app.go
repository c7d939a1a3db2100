package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/quicklog/pkg/archive"
	"tableflip.dev/quicklog/pkg/entry"
	"tableflip.dev/quicklog/pkg/stats"
	"tableflip.dev/quicklog/pkg/store"
	"tableflip.dev/quicklog/pkg/tag"
)

// Service provides the operations shared by every front end that does not go
// through the composer: catalog edits, search, import/export and reports.
type Service struct {
	Tags    store.TagStore
	Entries store.EntryStore
	// Archive is optional; exports are only archived when it is set.
	Archive *archive.Archive
	Log     *zap.Logger
	Now     func() time.Time
}

var (
	errNoTags    = errors.New("app: no tag store configured")
	errNoEntries = errors.New("app: no entry store configured")
	errNoArchive = errors.New("app: no archive configured")
)

// ErrNotFound is returned when a tag or entry named by the caller is absent.
var ErrNotFound = errors.New("app: not found")

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) log() *zap.Logger {
	if s.Log != nil {
		return s.Log
	}
	return zap.NewNop()
}

func (s *Service) ready() error {
	if s.Tags == nil {
		return errNoTags
	}
	if s.Entries == nil {
		return errNoEntries
	}
	return nil
}

// AllTags returns the catalog ordered by label.
func (s *Service) AllTags(ctx context.Context) ([]tag.Tag, error) {
	if s.Tags == nil {
		return nil, errNoTags
	}
	return s.Tags.ListAll(ctx)
}

// RecentTags returns up to limit tags, most recently used first.
func (s *Service) RecentTags(ctx context.Context, limit int) ([]tag.Tag, error) {
	if s.Tags == nil {
		return nil, errNoTags
	}
	return s.Tags.ListRecent(ctx, limit)
}

// CreateTag adds a custom tag, or returns the existing tag with the same
// label ignoring case.
func (s *Service) CreateTag(ctx context.Context, label string, category tag.Category) (tag.Tag, error) {
	if s.Tags == nil {
		return tag.Tag{}, errNoTags
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return tag.Tag{}, store.Invalid("Tag name cannot be empty")
	}
	existing, err := s.Tags.FindByLabel(ctx, label)
	if err != nil {
		return tag.Tag{}, err
	}
	if existing != nil {
		return *existing, nil
	}
	t := tag.NewCustom(label, s.now())
	if category != "" {
		t.Category = category
	}
	if err := s.Tags.Upsert(ctx, t); err != nil {
		return tag.Tag{}, err
	}
	s.log().Debug("created tag", zap.String("id", t.ID), zap.String("label", t.Label))
	return t, nil
}

// ResolveTag finds a tag by id, falling back to a case-insensitive label.
func (s *Service) ResolveTag(ctx context.Context, ref string) (tag.Tag, error) {
	if s.Tags == nil {
		return tag.Tag{}, errNoTags
	}
	ref = strings.TrimSpace(ref)
	found, err := s.Tags.GetByIDs(ctx, []string{ref})
	if err != nil {
		return tag.Tag{}, err
	}
	if len(found) == 1 {
		return found[0], nil
	}
	byLabel, err := s.Tags.FindByLabel(ctx, ref)
	if err != nil {
		return tag.Tag{}, err
	}
	if byLabel == nil {
		return tag.Tag{}, fmt.Errorf("%w: tag %q", ErrNotFound, ref)
	}
	return *byLabel, nil
}

// ResolveTags resolves every ref with ResolveTag and returns the ids.
func (s *Service) ResolveTags(ctx context.Context, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		t, err := s.ResolveTag(ctx, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, t.ID)
	}
	return ids, nil
}

// Link connects two tags by reference.
func (s *Service) Link(ctx context.Context, a, b string) error {
	ids, err := s.ResolveTags(ctx, []string{a, b})
	if err != nil {
		return err
	}
	return s.Tags.Link(ctx, ids[0], ids[1])
}

// Unlink disconnects two tags by reference.
func (s *Service) Unlink(ctx context.Context, a, b string) error {
	ids, err := s.ResolveTags(ctx, []string{a, b})
	if err != nil {
		return err
	}
	return s.Tags.Unlink(ctx, ids[0], ids[1])
}

// UpdateRelations makes related the exact neighbor set of ref.
func (s *Service) UpdateRelations(ctx context.Context, ref string, related []string) error {
	t, err := s.ResolveTag(ctx, ref)
	if err != nil {
		return err
	}
	ids, err := s.ResolveTags(ctx, related)
	if err != nil {
		return err
	}
	return s.Tags.SetRelations(ctx, t.ID, ids)
}

// Relations returns every tag with its related tags.
func (s *Service) Relations(ctx context.Context) ([]tag.Relations, error) {
	if s.Tags == nil {
		return nil, errNoTags
	}
	return s.Tags.Relations(ctx)
}

// DeleteTags removes tags by reference along with their links.
func (s *Service) DeleteTags(ctx context.Context, refs []string) error {
	ids, err := s.ResolveTags(ctx, refs)
	if err != nil {
		return err
	}
	return s.Tags.Delete(ctx, ids)
}

// Entry returns the entry with id.
func (s *Service) Entry(ctx context.Context, id int64) (entry.Entry, error) {
	if s.Entries == nil {
		return entry.Entry{}, errNoEntries
	}
	e, err := s.Entries.Get(ctx, id)
	if err != nil {
		return entry.Entry{}, err
	}
	if e == nil {
		return entry.Entry{}, fmt.Errorf("%w: entry %d", ErrNotFound, id)
	}
	return *e, nil
}

// DeleteEntries removes the given entries in one transaction.
func (s *Service) DeleteEntries(ctx context.Context, ids []int64) error {
	if s.Entries == nil {
		return errNoEntries
	}
	return s.Entries.DeleteMany(ctx, ids)
}

// Filter narrows a listing of entries.
type Filter struct {
	// TagIDs keeps entries carrying any of the tags. Empty keeps all.
	TagIDs []string
	Since  time.Time
	Until  time.Time
}

// Search returns entries matching f, newest first.
func (s *Service) Search(ctx context.Context, f Filter) ([]entry.Entry, error) {
	if s.Entries == nil {
		return nil, errNoEntries
	}
	all, err := s.Entries.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return stats.FilterByTags(stats.Filter(all, f.Since, f.Until), f.TagIDs), nil
}
