package source

import "context"

// fetchPageFunc gets one page. An empty next token means the last page.
type fetchPageFunc func(ctx context.Context, pageToken string) (items []*RawItem, nextToken string, err error)

// pagedIterator walks a token-paginated listing lazily. When a cursor
// is set, pagination stops after the first page whose oldest item is at
// or before it; the engine handles the item-level cut-off.
type pagedIterator struct {
	fetch     fetchPageFunc
	cursor    *int64
	buffer    []*RawItem
	pos       int
	nextToken string
	done      bool
	started   bool
}

func newPagedIterator(fetch fetchPageFunc, cursor *int64) *pagedIterator {
	return &pagedIterator{
		fetch:  fetch,
		cursor: cursor,
	}
}

func (it *pagedIterator) Next(ctx context.Context) (*RawItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for it.pos >= len(it.buffer) {
		if it.done && it.started {
			return nil, ErrDone
		}
		if err := it.fetchNextPage(ctx); err != nil {
			return nil, err
		}
		if len(it.buffer) == 0 && it.done {
			return nil, ErrDone
		}
	}

	item := it.buffer[it.pos]
	it.pos++
	return item, nil
}

func (it *pagedIterator) fetchNextPage(ctx context.Context) error {
	items, nextToken, err := it.fetch(ctx, it.nextToken)
	if err != nil {
		return err
	}
	it.started = true
	it.buffer = items
	it.pos = 0
	it.nextToken = nextToken

	if nextToken == "" {
		it.done = true
		return nil
	}

	// Items arrive newest-first, so once a page reaches past the cursor
	// there is nothing newer left behind it.
	if it.cursor != nil && len(items) > 0 && items[len(items)-1].RecencyMarker <= *it.cursor {
		it.done = true
	}
	return nil
}
