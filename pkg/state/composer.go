// Package state composes the quick-log screen state from the stores, the
// suggestion engine, a clock and user intents.
//
// All state is owned by the goroutine running Composer.Run. Intents, store
// emissions, finished background work and clock ticks are queued as messages
// and applied one at a time, so every published Snapshot is consistent.
package state

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/quicklog/pkg/entry"
	"tableflip.dev/quicklog/pkg/store"
	"tableflip.dev/quicklog/pkg/suggest"
	"tableflip.dev/quicklog/pkg/tag"
)

const (
	// DefaultTickInterval is how often the snapshot clock advances.
	DefaultTickInterval = 30 * time.Second
	// DefaultRecentLimit is the number of recent tags in a snapshot.
	DefaultRecentLimit = 12

	messageBuffer = 64
	eventBuffer   = 16
)

// Messages surfaced to the user.
const (
	MsgSelectTag     = "Select at least one tag before saving."
	MsgEmptyTagLabel = "Tag name cannot be empty"
)

// Suggester produces neighbor suggestions for a selection.
type Suggester interface {
	Neighbors(ctx context.Context, selected []string) ([]tag.Tag, error)
}

var _ Suggester = (*suggest.Engine)(nil)

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) {
		if now != nil {
			c.now = now
		}
	}
}

// WithTickInterval sets how often the snapshot clock is refreshed.
func WithTickInterval(d time.Duration) Option {
	return func(c *Composer) {
		if d > 0 {
			c.tick = d
		}
	}
}

// WithRecentLimit sets the number of recent tags tracked.
func WithRecentLimit(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.recentLimit = n
		}
	}
}

// Composer is the reactive state holder. Create one with New, start it with
// Run, then drive it with the intent methods.
type Composer struct {
	tags    store.TagStore
	entries store.EntryStore
	suggest Suggester

	log         *zap.Logger
	now         func() time.Time
	tick        time.Duration
	recentLimit int

	msgs    chan func(*loop)
	done    chan struct{}
	running atomic.Bool

	mu        sync.Mutex
	latest    *Snapshot
	closed    bool
	nextSub   int
	snapSubs  map[int]chan Snapshot
	eventSubs map[int]chan Event
}

// New returns a Composer reading from tags and entries.
func New(tags store.TagStore, entries store.EntryStore, suggester Suggester, opts ...Option) *Composer {
	c := &Composer{
		tags:        tags,
		entries:     entries,
		suggest:     suggester,
		log:         zap.NewNop(),
		now:         time.Now,
		tick:        DefaultTickInterval,
		recentLimit: DefaultRecentLimit,
		msgs:        make(chan func(*loop), messageBuffer),
		done:        make(chan struct{}),
		snapSubs:    make(map[int]chan Snapshot),
		eventSubs:   make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes messages until ctx is done. It stops the clock, the store
// streams and any in-flight store work before returning, then closes every
// subscriber channel. A Composer runs at most once.
func (c *Composer) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return errors.New("state: composer already running")
	}
	defer c.shutdown()

	g, gctx := errgroup.WithContext(ctx)
	l := newLoop(c, gctx, g)

	recent := c.tags.ObserveRecent(gctx, c.recentLimit)
	relations := c.tags.ObserveRelations(gctx)
	entries := c.entries.Observe(gctx)

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	l.flush()
	for {
		select {
		case <-gctx.Done():
			return g.Wait()
		case fn := <-c.msgs:
			fn(l)
		case v, ok := <-recent:
			if !ok {
				recent = nil
				continue
			}
			l.setRecent(v)
		case v, ok := <-relations:
			if !ok {
				relations = nil
				continue
			}
			l.setRelations(v)
		case v, ok := <-entries:
			if !ok {
				entries = nil
				continue
			}
			l.setEntries(v)
		case <-ticker.C:
			l.snap.Clock = c.now()
			l.dirty = true
		}
		l.flush()
	}
}

func (c *Composer) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, ch := range c.snapSubs {
		close(ch)
		delete(c.snapSubs, id)
	}
	for id, ch := range c.eventSubs {
		close(ch)
		delete(c.eventSubs, id)
	}
	close(c.done)
}

// Done is closed once Run has returned.
func (c *Composer) Done() <-chan struct{} {
	return c.done
}

// Subscribe returns a channel of snapshots. The latest snapshot, if any, is
// delivered immediately; a subscriber that falls behind only sees the newest
// one. Call the returned func to unsubscribe.
func (c *Composer) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	if c.latest != nil {
		ch <- *c.latest
	}
	id := c.nextSub
	c.nextSub++
	c.snapSubs[id] = ch
	return ch, c.unsubscriber(func() {
		if sub, ok := c.snapSubs[id]; ok {
			close(sub)
			delete(c.snapSubs, id)
		}
	})
}

// Events returns a channel of events emitted after the call. When the
// subscriber falls behind the oldest pending event is dropped.
func (c *Composer) Events() (<-chan Event, func()) {
	ch := make(chan Event, eventBuffer)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.eventSubs[id] = ch
	return ch, c.unsubscriber(func() {
		if sub, ok := c.eventSubs[id]; ok {
			close(sub)
			delete(c.eventSubs, id)
		}
	})
}

func (c *Composer) unsubscriber(remove func()) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			remove()
		})
	}
}

// Snapshot returns the latest published snapshot and whether one exists.
func (c *Composer) Snapshot() (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest == nil {
		return Snapshot{}, false
	}
	return *c.latest, true
}

func (c *Composer) publish(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest = &s
	for _, ch := range c.snapSubs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

func (c *Composer) emit(ev Event) {
	c.log.Debug("event", zap.String("event", ev.Describe()))
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.eventSubs {
		select {
		case ch <- ev:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}

// send queues fn for the loop. It gives up once Run has returned.
func (c *Composer) send(fn func(*loop)) {
	select {
	case c.msgs <- fn:
	case <-c.done:
	}
}

// ToggleTag selects t, or deselects it when it is already selected.
func (c *Composer) ToggleTag(t tag.Tag) {
	c.send(func(l *loop) {
		l.snap.ErrorMessage = ""
		l.setDraft(l.snap.Draft.Toggle(t))
	})
}

// SelectTag selects t by id. An already selected tag is left as it is.
func (c *Composer) SelectTag(t tag.Tag) {
	c.send(func(l *loop) {
		if l.snap.Draft.Has(t.ID) {
			return
		}
		l.snap.ErrorMessage = ""
		l.setDraft(l.snap.Draft.Select(t))
	})
}

// SelectTagByLabel selects the tag whose label matches case-insensitively.
// Unknown labels and already selected tags are ignored.
func (c *Composer) SelectTagByLabel(label string) {
	c.send(func(l *loop) {
		t, ok := tag.FindByLabel(l.snap.AllTags, label)
		if !ok || l.snap.Draft.Has(t.ID) {
			return
		}
		l.setDraft(l.snap.Draft.Select(t))
	})
}

// ClearTags deselects every tag.
func (c *Composer) ClearTags() {
	c.send(func(l *loop) {
		l.setDraft(l.snap.Draft.ClearTags())
	})
}

// SetNote replaces the draft note.
func (c *Composer) SetNote(note string) {
	c.send(func(l *loop) {
		l.snap.Draft = l.snap.Draft.WithNote(note)
		l.dirty = true
	})
}

// StartNewEntry discards the draft and starts a fresh one at the last known
// location.
func (c *Composer) StartNewEntry() {
	c.send(func(l *loop) {
		l.snap.ErrorMessage = ""
		l.setDraft(entry.NewDraft(c.now(), l.snap.Location))
	})
}

// UpdateLocation records the current location. A new draft moves with it; a
// draft editing a saved entry keeps its own location.
func (c *Composer) UpdateLocation(loc entry.Location) {
	c.send(func(l *loop) {
		l.snap.Location = loc.Clone()
		if l.snap.Draft.IsNew() {
			l.snap.Draft = l.snap.Draft.WithLocation(loc)
		}
		l.dirty = true
	})
}

// ApplyCurrentLocation moves the draft, new or not, to the last known
// location.
func (c *Composer) ApplyCurrentLocation() {
	c.send(func(l *loop) {
		l.snap.Draft = l.snap.Draft.WithLocation(l.snap.Location)
		l.dirty = true
	})
}

// BeginEditing loads entry id into the draft. Saving then replaces it.
func (c *Composer) BeginEditing(id int64) {
	c.send(func(l *loop) {
		l.beginEditing(id)
	})
}

// SaveEntry writes the draft. On success the draft is reset and EntrySaved
// is emitted; on failure the draft is kept and Error is emitted.
func (c *Composer) SaveEntry() {
	c.send(func(l *loop) {
		l.save()
	})
}

// CreateCustomTag creates a user tag with label and selects it.
func (c *Composer) CreateCustomTag(label string) {
	c.send(func(l *loop) {
		l.createCustomTag(label)
	})
}

// WaitLoaded blocks until a snapshot with Loaded set is published and
// returns it.
func (c *Composer) WaitLoaded(ctx context.Context) (Snapshot, error) {
	snaps, cancel := c.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		case s, ok := <-snaps:
			if !ok {
				return Snapshot{}, errors.New("state: composer stopped")
			}
			if s.Loaded {
				return s, nil
			}
		}
	}
}

func errorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return fallback
	}
	return msg
}
