package watch

import (
	"context"
	"errors"
	"testing"

	"github.com/socialsync-hq/fbgraph/internal/storage"
	"github.com/socialsync-hq/fbgraph/pkg/pages"
	"github.com/socialsync-hq/fbgraph/pkg/publishers"
)

type fakeLikesClient struct {
	likes map[string]int64
	err   error
}

func (f *fakeLikesClient) PageLikes(_ context.Context, pageID, _ string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.likes[pageID], nil
}

type fakeSink struct {
	events []publishers.Event
	err    error
}

func (f *fakeSink) Publish(_ context.Context, evt publishers.Event) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.events = append(f.events, evt)
	return 1, nil
}

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewStore("bbolt", t.TempDir()+"/test.db", storage.Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func watchedPage(id string) pages.Page {
	return pages.Page{ID: id, Name: "Page " + id, RequestDelayMs: 1}
}

func TestServicePublishesFirstObservation(t *testing.T) {
	client := &fakeLikesClient{likes: map[string]int64{"p1": 42}}
	sink := &fakeSink{}
	svc := NewService(client, sink, newTestStore(t), nil)

	if err := svc.Run(context.Background(), "tok", []pages.Page{watchedPage("p1")}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(sink.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(sink.events))
	}
	evt := sink.events[0]
	if evt.PageID != "p1" || evt.Likes != 42 {
		t.Fatalf("unexpected event: %+v", evt)
	}
	if evt.PreviousLikes != nil {
		t.Fatalf("first observation should carry no previous count")
	}
}

func TestServicePublishesOnChangeOnly(t *testing.T) {
	client := &fakeLikesClient{likes: map[string]int64{"p1": 42}}
	sink := &fakeSink{}
	store := newTestStore(t)
	svc := NewService(client, sink, store, nil)
	watched := []pages.Page{watchedPage("p1")}

	// First pass seeds, second pass is unchanged, third sees growth.
	if err := svc.Run(context.Background(), "tok", watched); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := svc.Run(context.Background(), "tok", watched); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(sink.events) != 1 {
		t.Fatalf("unchanged count published an event: %d", len(sink.events))
	}

	client.likes["p1"] = 45
	if err := svc.Run(context.Background(), "tok", watched); err != nil {
		t.Fatalf("third Run: %v", err)
	}
	if len(sink.events) != 2 {
		t.Fatalf("expected change event, got %d events", len(sink.events))
	}
	evt := sink.events[1]
	if evt.Delta != 3 || evt.PreviousLikes == nil || *evt.PreviousLikes != 42 {
		t.Fatalf("change event wrong: %+v", evt)
	}
}

func TestServiceAggregatesPerPageErrors(t *testing.T) {
	client := &fakeLikesClient{err: errors.New("api down")}
	svc := NewService(client, &fakeSink{}, newTestStore(t), nil)

	err := svc.Run(context.Background(), "tok", []pages.Page{watchedPage("p1"), watchedPage("p2")})
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
}

func TestServiceRequiresPages(t *testing.T) {
	svc := NewService(&fakeLikesClient{}, &fakeSink{}, newTestStore(t), nil)
	if err := svc.Run(context.Background(), "tok", nil); err == nil {
		t.Fatalf("expected error for empty page set")
	}
}
