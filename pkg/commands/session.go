package commands

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"tableflip.dev/quicklog/pkg/state"
	"tableflip.dev/quicklog/pkg/suggest"
)

// session runs a composer over the environment's store for the life of a
// command.
type session struct {
	c          *state.Composer
	events     <-chan state.Event
	stopEvents func()
	cancel     context.CancelFunc
	g          *errgroup.Group
}

func startSession(ctx context.Context, e *env) (*session, context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	c := state.New(e.db.Tags(), e.db.Entries(), suggest.New(e.db.Tags()),
		state.WithLogger(e.log.Named("composer")),
		state.WithRecentLimit(e.cfg.RecentLimit()),
		state.WithTickInterval(e.cfg.ClockInterval()),
	)
	events, stopEvents := c.Events()
	g.Go(func() error {
		return c.Run(gctx)
	})
	return &session{c: c, events: events, stopEvents: stopEvents, cancel: cancel, g: g}, gctx
}

func (s *session) stop() error {
	s.stopEvents()
	s.cancel()
	if err := s.g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// waitEvent returns the first event for which match is true.
func (s *session) waitEvent(ctx context.Context, match func(state.Event) bool) (state.Event, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case ev, ok := <-s.events:
			if !ok {
				return nil, errors.New("composer stopped")
			}
			if match(ev) {
				return ev, nil
			}
		}
	}
}

// waitSnapshot returns the first published snapshot for which match is true.
func (s *session) waitSnapshot(ctx context.Context, match func(state.Snapshot) bool) (state.Snapshot, error) {
	snaps, cancel := s.c.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return state.Snapshot{}, ctx.Err()
		case snap, ok := <-snaps:
			if !ok {
				return state.Snapshot{}, errors.New("composer stopped")
			}
			if match(snap) {
				return snap, nil
			}
		}
	}
}
