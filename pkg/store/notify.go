package store

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Kind identifies which table family a Change touched.
type Kind int

const (
	// KindTags covers tags and tag links.
	KindTags Kind = iota
	// KindEntries covers entries and their tag associations.
	KindEntries
)

func (k Kind) String() string {
	switch k {
	case KindTags:
		return "tags"
	case KindEntries:
		return "entries"
	default:
		return "unknown"
	}
}

// Change is published after a transaction commits.
type Change struct {
	Kind Kind
}

// Notifier fans committed changes out to subscribers. Subscriptions conflate:
// a subscriber that has not consumed its last notification gets no second
// one, since a reload picks up every change made so far.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]*subscription
}

type subscription struct {
	kinds map[Kind]bool
	ch    chan Change
}

// NewNotifier returns an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]*subscription)}
}

// Subscribe returns a channel of changes of the given kinds (all kinds when
// none are given). The channel is closed when ctx is done.
func (n *Notifier) Subscribe(ctx context.Context, kinds ...Kind) <-chan Change {
	sub := &subscription{kinds: make(map[Kind]bool, len(kinds)), ch: make(chan Change, 1)}
	for _, k := range kinds {
		sub.kinds[k] = true
	}

	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = sub
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.mu.Lock()
		delete(n.subs, id)
		close(sub.ch)
		n.mu.Unlock()
	}()
	return sub.ch
}

// Publish delivers c to every interested subscriber without blocking.
func (n *Notifier) Publish(c Change) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, sub := range n.subs {
		if len(sub.kinds) > 0 && !sub.kinds[c.Kind] {
			continue
		}
		select {
		case sub.ch <- c:
		default:
		}
	}
}

// observe emits load's result once immediately and again after every change
// of the given kinds. Loads that fail are logged and skipped; the next change
// retries. Only the newest value is kept for a slow reader.
func observe[T any](ctx context.Context, d *DB, op string, load func(context.Context) (T, error), kinds ...Kind) <-chan T {
	out := make(chan T, 1)
	changes := d.notifier.Subscribe(ctx, kinds...)

	go func() {
		defer close(out)
		emit := func() {
			v, err := load(ctx)
			if err != nil {
				if ctx.Err() == nil {
					d.log.Warn("observe reload failed", zap.String("op", op), zap.Error(err))
				}
				return
			}
			// Replace a value the reader has not taken yet.
			select {
			case <-out:
			default:
			}
			select {
			case out <- v:
			case <-ctx.Done():
			}
		}

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				emit()
			}
		}
	}()
	return out
}
