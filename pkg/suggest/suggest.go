// Package suggest ranks tags to offer next, given the tags already selected
// in a draft.
package suggest

import (
	"context"
	"sort"

	"tableflip.dev/quicklog/pkg/store"
	"tableflip.dev/quicklog/pkg/tag"
)

// ConnectedLimit is the number of connectivity-ranked suggestions returned.
const ConnectedLimit = 8

// Source is the slice of the tag store the engine reads.
type Source interface {
	NeighborsOf(ctx context.Context, ids []string) ([]tag.Tag, error)
	Relations(ctx context.Context) ([]tag.Relations, error)
}

var _ Source = (store.TagStore)(nil)

// Engine computes suggestions from the tag graph.
type Engine struct {
	Tags  Source
	Limit int
}

// New returns an Engine reading from tags with the default limit.
func New(tags Source) *Engine {
	return &Engine{Tags: tags, Limit: ConnectedLimit}
}

// Neighbors returns the tags linked to any selected tag, most recently used
// first, with the selected tags removed. An empty selection suggests nothing.
func (e *Engine) Neighbors(ctx context.Context, selected []string) ([]tag.Tag, error) {
	if len(selected) == 0 {
		return nil, nil
	}
	neighbors, err := e.Tags.NeighborsOf(ctx, selected)
	if err != nil {
		return nil, err
	}
	return exclude(neighbors, set(selected)), nil
}

// Connected returns up to Limit neighbors of the selection ranked by how
// connected they are themselves.
func (e *Engine) Connected(ctx context.Context, selected []string) ([]tag.Tag, error) {
	if len(selected) == 0 {
		return nil, nil
	}
	relations, err := e.Tags.Relations(ctx)
	if err != nil {
		return nil, err
	}
	limit := e.Limit
	if limit <= 0 {
		limit = ConnectedLimit
	}
	return RankConnected(relations, selected, limit), nil
}

// RankConnected picks the tags linked to any selected tag and orders them by
// their own number of links, most first, then by label ignoring case. Selected
// tags never appear in the result.
func RankConnected(relations []tag.Relations, selected []string, limit int) []tag.Tag {
	if len(selected) == 0 || limit <= 0 {
		return nil
	}
	chosen := set(selected)
	byID := make(map[string]tag.Relations, len(relations))
	for _, r := range relations {
		byID[r.Tag.ID] = r
	}

	seen := make(map[string]struct{})
	var candidates []tag.Relations
	for _, id := range selected {
		for _, n := range byID[id].Related {
			if _, ok := chosen[n.ID]; ok {
				continue
			}
			if _, ok := seen[n.ID]; ok {
				continue
			}
			seen[n.ID] = struct{}{}
			if r, ok := byID[n.ID]; ok {
				candidates = append(candidates, r)
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if len(a.Related) != len(b.Related) {
			return len(a.Related) > len(b.Related)
		}
		fa, fb := tag.Fold(a.Tag.Label), tag.Fold(b.Tag.Label)
		if fa != fb {
			return fa < fb
		}
		return a.Tag.ID < b.Tag.ID
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]tag.Tag, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Tag)
	}
	return out
}

func set(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func exclude(tags []tag.Tag, ids map[string]struct{}) []tag.Tag {
	out := make([]tag.Tag, 0, len(tags))
	for _, t := range tags {
		if _, ok := ids[t.ID]; ok {
			continue
		}
		out = append(out, t)
	}
	return out
}
