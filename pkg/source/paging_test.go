package source

import (
	"context"
	"errors"
	"testing"
)

func drain(t *testing.T, it ItemIterator) []*RawItem {
	t.Helper()
	var out []*RawItem
	for {
		item, err := it.Next(context.Background())
		if errors.Is(err, ErrDone) {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, item)
	}
}

func TestPagedIteratorWalksAllPages(t *testing.T) {
	pages := map[string]struct {
		items []*RawItem
		next  string
	}{
		"":   {items: []*RawItem{{Id: "a", RecencyMarker: 300}, {Id: "b", RecencyMarker: 200}}, next: "p2"},
		"p2": {items: []*RawItem{{Id: "c", RecencyMarker: 100}}, next: ""},
	}
	fetches := 0
	it := newPagedIterator(func(ctx context.Context, token string) ([]*RawItem, string, error) {
		fetches++
		p := pages[token]
		return p.items, p.next, nil
	}, nil)

	items := drain(t, it)
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	if fetches != 2 {
		t.Errorf("fetches = %d, want 2", fetches)
	}
}

func TestPagedIteratorStopsPaginatingAtCursor(t *testing.T) {
	fetches := 0
	it := newPagedIterator(func(ctx context.Context, token string) ([]*RawItem, string, error) {
		fetches++
		// Every page claims a successor; the cursor must stop the walk.
		return []*RawItem{{Id: "x", RecencyMarker: 50}}, "more", nil
	}, int64Ptr(100))

	items := drain(t, it)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if fetches != 1 {
		t.Errorf("fetches = %d, want 1: cursor should stop pagination", fetches)
	}
}

func TestPagedIteratorEmptyRemote(t *testing.T) {
	it := newPagedIterator(func(ctx context.Context, token string) ([]*RawItem, string, error) {
		return nil, "", nil
	}, nil)

	if items := drain(t, it); len(items) != 0 {
		t.Errorf("items = %d, want 0", len(items))
	}
}

func TestPagedIteratorPropagatesFetchError(t *testing.T) {
	it := newPagedIterator(func(ctx context.Context, token string) ([]*RawItem, string, error) {
		return nil, "", ErrAuthExpired
	}, nil)

	_, err := it.Next(context.Background())
	if !errors.Is(err, ErrAuthExpired) {
		t.Errorf("err = %v, want ErrAuthExpired", err)
	}
}

func int64Ptr(v int64) *int64 { return &v }
