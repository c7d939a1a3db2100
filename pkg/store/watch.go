package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchExternal follows writes to the database file (and its -wal/-shm
// siblings) made by other processes and republishes them on the notifier as
// changes of every kind. It returns once the watcher is installed; watching
// stops when ctx is done. Writes made through d are seen too, which only
// costs an extra reload.
func (d *DB) WatchExternal(ctx context.Context) error {
	if d.path == "" {
		return errors.New("store: database path unknown")
	}
	dir := filepath.Dir(d.path)
	base := filepath.Base(d.path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				d.log.Warn("watcher close", zap.Error(err))
			}
		})
	}

	if err := watcher.Add(dir); err != nil {
		closeWatcher()
		return fmt.Errorf("store: watch %s: %w", dir, err)
	}

	go func() {
		defer closeWatcher()

		throttle := newChangeThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		publish := func(kinds map[Kind]struct{}) {
			for k := range kinds {
				d.notifier.Publish(Change{Kind: k})
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Treat an unclassified failure as "everything changed".
				d.log.Debug("watcher error", zap.Error(err))
				throttle.Enqueue(publish, KindTags, KindEntries)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasPrefix(filepath.Base(evt.Name), base) {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				throttle.Enqueue(publish, KindTags, KindEntries)
			}
		}
	}()
	return nil
}

// changeThrottle coalesces a burst of file events into one publication per
// kind, so a large external transaction triggers one reload.
type changeThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[Kind]struct{}
	delay   time.Duration
}

func newChangeThrottle(delay time.Duration) *changeThrottle {
	return &changeThrottle{
		delay:   delay,
		pending: make(map[Kind]struct{}),
	}
}

func (t *changeThrottle) Enqueue(send func(map[Kind]struct{}), kinds ...Kind) {
	t.mu.Lock()
	for _, k := range kinds {
		t.pending[k] = struct{}{}
	}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *changeThrottle) flush(send func(map[Kind]struct{})) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[Kind]struct{})
	t.timer = nil
	t.mu.Unlock()

	if len(pending) > 0 {
		send(pending)
	}
}

func (t *changeThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
