package store

import (
	"context"
	"testing"
	"time"
)

func TestWatchExternalPublishesForOtherHandle(t *testing.T) {
	db := openTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := db.Notifier().Subscribe(ctx, KindTags)
	if err := db.WatchExternal(ctx); err != nil {
		t.Fatalf("watch: %v", err)
	}

	// A second handle stands in for another process writing the file.
	other, err := Open(db.Path())
	if err != nil {
		t.Fatalf("open second handle: %v", err)
	}
	defer other.Close()

	// Allow the watcher to install before writing.
	time.Sleep(50 * time.Millisecond)
	mustUpsert(t, other.Tags(), work)

	deadline := time.After(2 * time.Second)
	select {
	case c := <-changes:
		if c.Kind != KindTags {
			t.Fatalf("kind = %v", c.Kind)
		}
	case <-deadline:
		t.Fatal("timed out waiting for external change")
	}
}

func TestChangeThrottleCoalesces(t *testing.T) {
	th := newChangeThrottle(20 * time.Millisecond)
	defer th.Stop()

	calls := make(chan map[Kind]struct{}, 4)
	send := func(k map[Kind]struct{}) { calls <- k }
	th.Enqueue(send, KindTags)
	th.Enqueue(send, KindEntries)
	th.Enqueue(send, KindTags)

	select {
	case got := <-calls:
		if len(got) != 2 {
			t.Fatalf("flushed kinds = %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("throttle never flushed")
	}
	select {
	case got := <-calls:
		t.Fatalf("unexpected second flush %v", got)
	case <-time.After(60 * time.Millisecond):
	}
}
