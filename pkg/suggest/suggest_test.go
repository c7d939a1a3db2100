package suggest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tableflip.dev/quicklog/pkg/tag"
)

type graph struct {
	tags  map[string]tag.Tag
	links map[string][]string
	err   error
}

func newGraph(labels ...string) *graph {
	g := &graph{tags: map[string]tag.Tag{}, links: map[string][]string{}}
	for _, l := range labels {
		g.tags[strings.ToLower(l)] = tag.Tag{ID: strings.ToLower(l), Label: l, Category: tag.CategoryCustom}
	}
	return g
}

func (g *graph) link(a, b string) *graph {
	g.links[a] = append(g.links[a], b)
	g.links[b] = append(g.links[b], a)
	return g
}

func (g *graph) NeighborsOf(_ context.Context, ids []string) ([]tag.Tag, error) {
	if g.err != nil {
		return nil, g.err
	}
	seen := map[string]bool{}
	var out []tag.Tag
	for _, id := range ids {
		for _, n := range g.links[id] {
			if !seen[n] {
				seen[n] = true
				out = append(out, g.tags[n])
			}
		}
	}
	tag.SortByRecency(out)
	return out, nil
}

func (g *graph) Relations(_ context.Context) ([]tag.Relations, error) {
	if g.err != nil {
		return nil, g.err
	}
	var out []tag.Relations
	for id, t := range g.tags {
		var related []tag.Tag
		for _, n := range g.links[id] {
			related = append(related, g.tags[n])
		}
		out = append(out, tag.Relations{Tag: t, Related: related})
	}
	return out, nil
}

func labels(tags []tag.Tag) string {
	return strings.Join(tag.Labels(tags), ",")
}

func TestNeighborsExcludesSelected(t *testing.T) {
	g := newGraph("Work", "Office", "Focus").link("work", "office").link("work", "focus").link("office", "focus")
	e := New(g)

	got, err := e.Neighbors(context.Background(), []string{"work", "office"})
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}
	if labels(got) != "Focus" {
		t.Fatalf("neighbors = %s", labels(got))
	}
}

func TestEmptySelectionSuggestsNothing(t *testing.T) {
	g := newGraph("Work", "Office").link("work", "office")
	e := New(g)
	if got, err := e.Neighbors(context.Background(), nil); err != nil || len(got) != 0 {
		t.Fatalf("Neighbors(nil) = %v, %v", got, err)
	}
	if got, err := e.Connected(context.Background(), nil); err != nil || len(got) != 0 {
		t.Fatalf("Connected(nil) = %v, %v", got, err)
	}
}

func TestConnectedRanksByDegreeThenLabel(t *testing.T) {
	// Work-Office, Work-Focus: Office and Focus tie on one link each.
	g := newGraph("Work", "Office", "Focus").link("work", "office").link("work", "focus")
	got, err := New(g).Connected(context.Background(), []string{"work"})
	if err != nil {
		t.Fatalf("connected: %v", err)
	}
	if labels(got) != "Focus,Office" {
		t.Fatalf("connected = %s", labels(got))
	}

	// Give Office a second link so it outranks Focus.
	g.tags["home"] = tag.Tag{ID: "home", Label: "Home", Category: tag.CategoryPlace}
	g.link("office", "home")
	got, _ = New(g).Connected(context.Background(), []string{"work"})
	if labels(got) != "Office,Focus" {
		t.Fatalf("connected after extra link = %s", labels(got))
	}
}

func TestRankConnectedLimitAndCase(t *testing.T) {
	g := newGraph("Hub")
	for _, l := range []string{"alpha", "Bravo", "charlie", "Delta", "echo", "Foxtrot", "golf", "Hotel", "india", "Juliet"} {
		g.tags[strings.ToLower(l)] = tag.Tag{ID: strings.ToLower(l), Label: l, Category: tag.CategoryCustom}
		g.link("hub", strings.ToLower(l))
	}
	rel, _ := g.Relations(context.Background())
	got := RankConnected(rel, []string{"hub"}, ConnectedLimit)
	if len(got) != ConnectedLimit {
		t.Fatalf("len = %d", len(got))
	}
	if labels(got) != "alpha,Bravo,charlie,Delta,echo,Foxtrot,golf,Hotel" {
		t.Fatalf("order = %s", labels(got))
	}
	for _, tg := range got {
		if tg.ID == "hub" {
			t.Fatalf("selected tag suggested")
		}
	}
}

func TestEngineSurfacesStoreErrors(t *testing.T) {
	g := newGraph("Work")
	g.err = errors.New("disk on fire")
	if _, err := New(g).Neighbors(context.Background(), []string{"work"}); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := New(g).Connected(context.Background(), []string{"work"}); err == nil {
		t.Fatalf("expected error")
	}
}
