package syncengine

import (
	"errors"
	"fmt"

	"ai-recall-be/internal/entity"
	"ai-recall-be/pkg/embedding"
	"ai-recall-be/pkg/source"

	"github.com/google/uuid"
)

var (
	// ErrSkippedEmpty means an item carried no textual signal. Not a
	// failure: the item is simply not stored.
	ErrSkippedEmpty = errors.New("syncengine: no vectorization text")

	// ErrDimensionMismatch means the embedding backend returned a vector
	// of the wrong width. That is a configuration fault shared by every
	// item in the run, so it aborts the run instead of skipping.
	ErrDimensionMismatch = errors.New("syncengine: embedding dimension mismatch")
)

// Pipeline turns one raw item into a stored, embedded content record.
type Pipeline struct {
	embedder embedding.Provider
}

func NewPipeline(embedder embedding.Provider) *Pipeline {
	return &Pipeline{embedder: embedder}
}

// Vectorize extracts, preprocesses and embeds one item. Returns
// ErrSkippedEmpty for items with no text and ErrDimensionMismatch when
// the backend misbehaves; any other error is a transient per-item
// embedding failure.
func (p *Pipeline) Vectorize(ownerId uuid.UUID, provider source.Provider, item *source.RawItem) (*entity.ContentItem, error) {
	text := provider.ExtractText(item)
	doc := Preprocess(text)
	if doc == "" {
		return nil, ErrSkippedEmpty
	}

	values, err := p.embedder.Generate(doc, embedding.TaskDocument)
	if err != nil {
		return nil, fmt.Errorf("embedding %s: %w", provider.StableId(item), err)
	}
	if len(values) != p.embedder.Dimension() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(values), p.embedder.Dimension())
	}

	record := provider.ToRecord(ownerId, item, values)
	record.Document = doc
	return record, nil
}

// EmbedQuery runs query text through the same preprocessing and
// dimension contract as ingestion.
func (p *Pipeline) EmbedQuery(query string) ([]float32, error) {
	doc := Preprocess(query)
	if doc == "" {
		return nil, ErrSkippedEmpty
	}
	values, err := p.embedder.Generate(doc, embedding.TaskQuery)
	if err != nil {
		return nil, err
	}
	if len(values) != p.embedder.Dimension() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(values), p.embedder.Dimension())
	}
	return values, nil
}
