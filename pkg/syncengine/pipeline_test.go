package syncengine

import (
	"errors"
	"testing"

	"ai-recall-be/pkg/source"

	"github.com/google/uuid"
)

func TestVectorizeSkipsEmptyText(t *testing.T) {
	embedder := &fakeEmbedder{}
	pipeline := NewPipeline(embedder)
	provider := &fakeProvider{}

	_, err := pipeline.Vectorize(uuid.New(), provider, &source.RawItem{Id: "x", Text: "   \n  "})
	if !errors.Is(err, ErrSkippedEmpty) {
		t.Fatalf("err = %v, want ErrSkippedEmpty", err)
	}
	if embedder.calls != 0 {
		t.Errorf("embedder called %d times for empty text", embedder.calls)
	}
}

func TestVectorizeSetsDocumentAndEmbedding(t *testing.T) {
	pipeline := NewPipeline(&fakeEmbedder{})
	provider := &fakeProvider{}
	ownerId := uuid.New()

	record, err := pipeline.Vectorize(ownerId, provider, rawItem("I1", 100))
	if err != nil {
		t.Fatal(err)
	}
	if record.Document != "saved content for I1" {
		t.Errorf("Document = %q", record.Document)
	}
	if len(record.EmbeddingValue) != 4 {
		t.Errorf("embedding dim = %d, want 4", len(record.EmbeddingValue))
	}
	if record.UserId != ownerId {
		t.Error("owner not propagated")
	}
}

func TestVectorizeDimensionMismatchIsFatal(t *testing.T) {
	pipeline := NewPipeline(&fakeEmbedder{wrongDim: true})
	_, err := pipeline.Vectorize(uuid.New(), &fakeProvider{}, rawItem("I1", 100))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestEmbedQueryDimensionContract(t *testing.T) {
	pipeline := NewPipeline(&fakeEmbedder{})
	values, err := pipeline.EmbedQuery("what did I save about go?")
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 4 {
		t.Errorf("dim = %d, want 4", len(values))
	}

	pipeline = NewPipeline(&fakeEmbedder{wrongDim: true})
	if _, err := pipeline.EmbedQuery("query"); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("err = %v, want ErrDimensionMismatch", err)
	}
}
