package source

import (
	"context"
	"unicode/utf8"

	"ai-recall-be/internal/entity"

	"github.com/google/uuid"
)

// Source tags. The set is closed: adding a platform means adding a
// provider implementation and registering it in bootstrap.
const (
	TagTwitter = "twitter"
	TagReddit  = "reddit"
	TagPocket  = "pocket"
)

// RawItem is one saved entry as fetched from a platform, before
// vectorization. Fields a platform does not provide stay empty; the
// provider's ExtractText decides what is salient.
type RawItem struct {
	Id            string
	Title         string
	Text          string
	URL           string
	Author        string
	RecencyMarker int64 // unix milliseconds, drives the delta cut-off
	Extra         map[string]interface{}

	// Malformed carries a reason when the platform returned an entry the
	// provider could not decode fully. The engine skips and counts these
	// instead of aborting the run; the alternative of failing the page
	// would let one bad entry block everything behind it.
	Malformed string
}

// ItemIterator produces items newest-first, fetching pages lazily so
// the sync engine can short-circuit without materializing the full
// remote collection. Next returns ErrDone when the sequence ends.
type ItemIterator interface {
	Next(ctx context.Context) (*RawItem, error)
}

// Provider is the capability set every platform adapter implements.
type Provider interface {
	// Tag returns the source tag this provider serves.
	Tag() string

	// FetchItems starts a newest-first fetch. A nil cursor means
	// unbounded (initial sync and reconciliation); a non-nil cursor lets
	// the provider stop paginating once a page ends at or before it.
	// Transport and auth failures surface from Next as
	// ErrSourceUnavailable or ErrAuthExpired. An empty remote set is not
	// an error: the iterator just returns ErrDone immediately.
	FetchItems(ctx context.Context, conn *entity.Connection, cursor *int64) ItemIterator

	// ExtractText returns the vectorization text for an item, or an
	// empty string when the item carries no textual signal.
	ExtractText(item *RawItem) string

	// StableId returns the identifier that is unique per (owner, source)
	// and stable across fetches of the same logical item.
	StableId(item *RawItem) string

	// ToRecord maps an item plus its embedding to a content record.
	ToRecord(ownerId uuid.UUID, item *RawItem, embedding []float32) *entity.ContentItem
}

// titleMaxChars bounds stored titles. The limit is in characters, not
// bytes, so multibyte titles are never cut mid-rune.
const titleMaxChars = 80

func truncateTitle(title string) string {
	if utf8.RuneCountInString(title) <= titleMaxChars {
		return title
	}
	return string([]rune(title)[:titleMaxChars])
}

// sliceIterator walks a pre-materialized item list. Used by the
// file-upload provider and by provider pages already in memory.
type sliceIterator struct {
	items []*RawItem
	pos   int
}

func NewSliceIterator(items []*RawItem) ItemIterator {
	return &sliceIterator{items: items}
}

func (it *sliceIterator) Next(ctx context.Context) (*RawItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if it.pos >= len(it.items) {
		return nil, ErrDone
	}
	item := it.items[it.pos]
	it.pos++
	return item, nil
}
