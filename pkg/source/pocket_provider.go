package source

import (
	"context"
	"strings"
	"time"

	"ai-recall-be/internal/entity"

	"github.com/google/uuid"
)

// PocketEntry is one row from an uploaded Pocket export file.
type PocketEntry struct {
	ItemId  string
	Title   string
	Excerpt string
	URL     string
	AddedAt int64 // unix milliseconds
	Tags    []string
}

// PocketProvider wraps one uploaded export. Pocket has no API we poll;
// each upload is the complete saved set and syncs as a full replacement.
type PocketProvider struct {
	entries []PocketEntry
}

func NewPocketProvider(entries []PocketEntry) *PocketProvider {
	return &PocketProvider{entries: entries}
}

func (p *PocketProvider) Tag() string {
	return TagPocket
}

func (p *PocketProvider) FetchItems(ctx context.Context, conn *entity.Connection, cursor *int64) ItemIterator {
	items := make([]*RawItem, 0, len(p.entries))
	for _, e := range p.entries {
		items = append(items, &RawItem{
			Id:            e.ItemId,
			Title:         e.Title,
			Text:          e.Excerpt,
			URL:           e.URL,
			RecencyMarker: e.AddedAt,
			Extra: map[string]interface{}{
				"tags": e.Tags,
			},
		})
	}
	return NewSliceIterator(items)
}

func (p *PocketProvider) ExtractText(item *RawItem) string {
	parts := make([]string, 0, 2)
	if item.Title != "" {
		parts = append(parts, item.Title)
	}
	if item.Text != "" {
		parts = append(parts, item.Text)
	}
	return strings.Join(parts, ". ")
}

func (p *PocketProvider) StableId(item *RawItem) string {
	if item.Id != "" {
		return item.Id
	}
	return item.URL
}

func (p *PocketProvider) ToRecord(ownerId uuid.UUID, item *RawItem, embedding []float32) *entity.ContentItem {
	title := item.Title
	if title == "" {
		title = item.URL
	}
	title = truncateTitle(title)
	return &entity.ContentItem{
		Id:             uuid.New(),
		UserId:         ownerId,
		SourceTag:      TagPocket,
		StableId:       p.StableId(item),
		Title:          title,
		URL:            item.URL,
		RecencyMarker:  item.RecencyMarker,
		EmbeddingValue: embedding,
		Metadata:       item.Extra,
		StoredAt:       time.Now(),
	}
}
