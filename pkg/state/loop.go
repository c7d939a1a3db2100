package state

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/quicklog/pkg/entry"
	"tableflip.dev/quicklog/pkg/store"
	"tableflip.dev/quicklog/pkg/suggest"
	"tableflip.dev/quicklog/pkg/tag"
)

// loop is the state owned by the Run goroutine. Nothing else touches it.
type loop struct {
	c   *Composer
	ctx context.Context
	g   *errgroup.Group

	snap      Snapshot
	relations []tag.Relations
	dirty     bool

	haveTags    bool
	haveEntries bool

	// suggestKey is the selection the current suggestions belong to and
	// suggestSeq numbers requests so only the newest result is applied.
	suggestKey string
	suggestSeq int
}

func newLoop(c *Composer, ctx context.Context, g *errgroup.Group) *loop {
	now := c.now()
	l := &loop{c: c, ctx: ctx, g: g}
	l.snap.Draft = entry.NewDraft(now, entry.Location{})
	l.snap.Clock = now
	l.suggestKey = l.snap.Draft.SelectionKey()
	l.dirty = true
	return l
}

func (l *loop) flush() {
	if !l.dirty {
		return
	}
	l.dirty = false
	l.c.publish(l.snap.clone())
}

// async runs work off the loop and applies its result back on it.
func (l *loop) async(work func(ctx context.Context) func(*loop)) {
	l.g.Go(func() error {
		apply := work(l.ctx)
		if apply == nil {
			return nil
		}
		select {
		case l.c.msgs <- apply:
		case <-l.ctx.Done():
		}
		return nil
	})
}

func (l *loop) setRecent(tags []tag.Tag) {
	l.snap.RecentTags = tags
	l.dirty = true
}

func (l *loop) setEntries(entries []entry.Entry) {
	l.snap.Entries = entries
	l.haveEntries = true
	l.snap.Loaded = l.haveTags && l.haveEntries
	l.dirty = true
}

// setRelations replaces the graph. The graph changing invalidates both
// suggestion lists even when the selection did not change.
func (l *loop) setRelations(relations []tag.Relations) {
	l.relations = relations
	all := make([]tag.Tag, 0, len(relations))
	for _, r := range relations {
		all = append(all, r.Tag)
	}
	l.snap.AllTags = all
	l.haveTags = true
	l.snap.Loaded = l.haveTags && l.haveEntries
	l.refreshSuggestions()
	l.dirty = true
}

// setDraft installs d and recomputes suggestions only when the selected set
// differs from the one they were computed for.
func (l *loop) setDraft(d entry.Draft) {
	l.snap.Draft = d
	l.dirty = true
	if key := d.SelectionKey(); key != l.suggestKey {
		l.refreshSuggestions()
	}
}

func (l *loop) refreshSuggestions() {
	d := l.snap.Draft
	l.suggestKey = d.SelectionKey()
	l.suggestSeq++
	ids := d.TagIDs()

	l.snap.ConnectedTags = suggest.RankConnected(l.relations, ids, suggest.ConnectedLimit)
	if len(ids) == 0 {
		l.snap.SuggestedTags = nil
		return
	}

	seq := l.suggestSeq
	l.async(func(ctx context.Context) func(*loop) {
		tags, err := l.c.suggest.Neighbors(ctx, ids)
		return func(l *loop) {
			if seq != l.suggestSeq {
				return
			}
			if err != nil {
				l.c.log.Warn("suggestions failed", zap.Error(err))
				return
			}
			l.snap.SuggestedTags = tags
			l.dirty = true
		}
	})
}

func (l *loop) beginEditing(id int64) {
	l.c.log.Debug("begin editing", zap.Int64("entry", id))
	l.async(func(ctx context.Context) func(*loop) {
		e, err := l.c.entries.Get(ctx, id)
		return func(l *loop) {
			if err != nil {
				l.fail(errorMessage(err, "Unable to load entry"))
				return
			}
			if e == nil {
				l.c.log.Debug("entry not found", zap.Int64("entry", id))
				return
			}
			l.snap.ErrorMessage = ""
			l.setDraft(entry.FromEntry(*e))
		}
	})
}

func (l *loop) save() {
	if l.snap.Saving {
		return
	}
	d := l.snap.Draft
	if len(d.SelectedTags) == 0 {
		l.fail(MsgSelectTag)
		return
	}
	l.snap.Saving = true
	l.snap.ErrorMessage = ""
	l.dirty = true

	req := store.FromDraft(d.Clone())
	updated := !d.IsNew()
	l.async(func(ctx context.Context) func(*loop) {
		id, err := l.c.entries.Save(ctx, req)
		return func(l *loop) {
			l.snap.Saving = false
			l.dirty = true
			if err != nil {
				l.c.log.Warn("save failed", zap.Error(err))
				l.fail(errorMessage(err, "Unable to save entry"))
				return
			}
			l.c.log.Debug("entry saved", zap.Int64("entry", id), zap.Bool("updated", updated))
			l.setDraft(entry.NewDraft(l.c.now(), l.snap.Location))
			l.c.emit(EntrySaved{Updated: updated})
		}
	})
}

func (l *loop) createCustomTag(label string) {
	t := tag.NewCustom(label, l.c.now())
	if t.Label == "" {
		l.c.emit(Error{Message: MsgEmptyTagLabel})
		return
	}
	l.async(func(ctx context.Context) func(*loop) {
		err := l.c.tags.Upsert(ctx, t)
		return func(l *loop) {
			if err != nil {
				l.c.log.Warn("create tag failed", zap.Error(err))
				l.c.emit(Error{Message: errorMessage(err, "Unable to create tag")})
				return
			}
			l.snap.ErrorMessage = ""
			if !l.snap.Draft.Has(t.ID) {
				l.setDraft(l.snap.Draft.Select(t))
			}
			l.c.emit(CustomTagCreated{Label: t.Label})
		}
	})
}

// fail records msg on the snapshot and emits it as an Error event. The draft
// is left as it is.
func (l *loop) fail(msg string) {
	l.snap.ErrorMessage = msg
	l.dirty = true
	l.c.emit(Error{Message: msg})
}
