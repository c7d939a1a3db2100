package store

import (
	"context"
	"testing"
	"time"
)

func TestNotifierConflates(t *testing.T) {
	n := NewNotifier()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := n.Subscribe(ctx, KindEntries)
	n.Publish(Change{Kind: KindTags})
	n.Publish(Change{Kind: KindEntries})
	n.Publish(Change{Kind: KindEntries})

	select {
	case c := <-ch:
		if c.Kind != KindEntries {
			t.Fatalf("kind = %v", c.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("no change delivered")
	}
	select {
	case c := <-ch:
		t.Fatalf("unexpected second change %v", c)
	default:
	}

	cancel()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("subscription not closed after cancel")
		}
	}
}

func TestObserveEntriesReflectsSave(t *testing.T) {
	db := openTestDB(t)
	mustUpsert(t, db.Tags(), work)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := db.Entries().Observe(ctx)
	select {
	case first := <-stream:
		if len(first) != 0 {
			t.Fatalf("initial emission = %d entries", len(first))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no initial emission")
	}

	if _, err := db.Entries().Save(ctx, SaveRequest{CreatedAt: time.Now(), TagIDs: []string{"work"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	select {
	case next := <-stream:
		if len(next) != 1 {
			t.Fatalf("emission after save = %d entries", len(next))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no emission after save")
	}
}

func TestObserveRecentReflectsTouch(t *testing.T) {
	db := openTestDB(t)
	mustUpsert(t, db.Tags(), work, office)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := db.Tags().ObserveRecent(ctx, 1)
	<-stream

	if err := db.Tags().Touch(ctx, []string{"work"}, time.Now()); err != nil {
		t.Fatalf("touch: %v", err)
	}
	deadline := time.After(2 * time.Second)
	for {
		select {
		case recent := <-stream:
			if ids(recent) == "work" {
				return
			}
		case <-deadline:
			t.Fatal("recent tags never reflected touch")
		}
	}
}
