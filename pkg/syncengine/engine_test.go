package syncengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"ai-recall-be/internal/entity"
	"ai-recall-be/pkg/source"

	"github.com/google/uuid"
)

// --- Fakes ---

type fakeContentStore struct {
	items      map[string]*entity.ContentItem // keyed by stable id
	upserts    int
	failUpsert bool
}

func newFakeContentStore() *fakeContentStore {
	return &fakeContentStore{items: map[string]*entity.ContentItem{}}
}

func (s *fakeContentStore) Upsert(ctx context.Context, item *entity.ContentItem) error {
	if s.failUpsert {
		return errors.New("store unavailable")
	}
	s.upserts++
	s.items[item.StableId] = item
	return nil
}

func (s *fakeContentStore) StableIds(ctx context.Context, userId uuid.UUID, sourceTag string) (map[string]int64, error) {
	out := map[string]int64{}
	for id, item := range s.items {
		out[id] = item.RecencyMarker
	}
	return out, nil
}

func (s *fakeContentStore) DeleteByStableIds(ctx context.Context, userId uuid.UUID, sourceTag string, stableIds []string) (int64, error) {
	var n int64
	for _, id := range stableIds {
		if _, ok := s.items[id]; ok {
			delete(s.items, id)
			n++
		}
	}
	return n, nil
}

type fakeStateStore struct {
	state *entity.SyncState
	saves int
}

func (s *fakeStateStore) Get(ctx context.Context, userId uuid.UUID, sourceTag string) (*entity.SyncState, error) {
	if s.state == nil {
		return nil, nil
	}
	cp := *s.state
	return &cp, nil
}

func (s *fakeStateStore) Save(ctx context.Context, state *entity.SyncState) error {
	s.saves++
	if state.CreatedAt.IsZero() {
		state.CreatedAt = time.Now()
	}
	cp := *state
	s.state = &cp
	return nil
}

type fakeEmbedder struct {
	calls    int
	failWith error
	wrongDim bool
}

func (e *fakeEmbedder) Generate(text string, taskType string) ([]float32, error) {
	e.calls++
	if e.failWith != nil {
		return nil, e.failWith
	}
	if e.wrongDim {
		return []float32{1, 2}, nil
	}
	return []float32{0.1, 0.2, 0.3, 0.4}, nil
}

func (e *fakeEmbedder) Dimension() int {
	return 4
}

// fakeProvider serves a fixed newest-first item list.
type fakeProvider struct {
	items    []*source.RawItem
	fetchErr error
}

func (p *fakeProvider) Tag() string { return "twitter" }

func (p *fakeProvider) FetchItems(ctx context.Context, conn *entity.Connection, cursor *int64) source.ItemIterator {
	if p.fetchErr != nil {
		return &erroringIterator{err: p.fetchErr}
	}
	return source.NewSliceIterator(p.items)
}

func (p *fakeProvider) ExtractText(item *source.RawItem) string { return item.Text }

func (p *fakeProvider) StableId(item *source.RawItem) string { return item.Id }

func (p *fakeProvider) ToRecord(ownerId uuid.UUID, item *source.RawItem, embedding []float32) *entity.ContentItem {
	return &entity.ContentItem{
		Id:             uuid.New(),
		UserId:         ownerId,
		SourceTag:      p.Tag(),
		StableId:       item.Id,
		Title:          item.Title,
		URL:            item.URL,
		RecencyMarker:  item.RecencyMarker,
		EmbeddingValue: embedding,
		StoredAt:       time.Now(),
	}
}

type erroringIterator struct{ err error }

func (it *erroringIterator) Next(ctx context.Context) (*source.RawItem, error) {
	return nil, it.err
}

func newTestEngine(content *fakeContentStore, state *fakeStateStore, embedder *fakeEmbedder, nowMilli int64) *Engine {
	e := NewEngine(content, state, NewPipeline(embedder), log.New(io.Discard, "", 0))
	e.now = func() time.Time { return time.UnixMilli(nowMilli) }
	return e
}

func rawItem(id string, marker int64) *source.RawItem {
	return &source.RawItem{
		Id:            id,
		Title:         id,
		Text:          "saved content for " + id,
		RecencyMarker: marker,
	}
}

func testConn() *entity.Connection {
	return &entity.Connection{
		Id:        uuid.New(),
		UserId:    uuid.New(),
		SourceTag: "twitter",
		Status:    entity.ConnectionStatusActive,
	}
}

// --- Tests ---

// Walks the full lifecycle: first run reconciles and stores everything,
// an unchanged second run is a no-op, a new remote item arrives via
// delta, and the next reconciliation deletes an upstream removal.
func TestEngineLifecycle(t *testing.T) {
	ctx := context.Background()
	content := newFakeContentStore()
	state := &fakeStateStore{}
	embedder := &fakeEmbedder{}
	conn := testConn()

	provider := &fakeProvider{items: []*source.RawItem{
		rawItem("I3", 300), rawItem("I2", 200), rawItem("I1", 100),
	}}

	// First run: counter 0, so it reconciles and mirrors all three.
	engine := newTestEngine(content, state, embedder, 350)
	res, err := engine.Run(ctx, conn, provider)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if res.Mode != ModeReconciliation {
		t.Errorf("first run mode = %s, want reconciliation", res.Mode)
	}
	if res.ItemsAdded != 3 || res.ItemsRemoved != 0 {
		t.Errorf("first run added=%d removed=%d, want 3/0", res.ItemsAdded, res.ItemsRemoved)
	}
	if state.state.SyncCounter != 0 {
		t.Errorf("counter after reconciliation = %d, want 0", state.state.SyncCounter)
	}
	if state.state.LastDeltaCursor != 350 {
		t.Errorf("cursor = %d, want 350", state.state.LastDeltaCursor)
	}
	if state.state.LastFullReconciliation == nil {
		t.Error("LastFullReconciliation not set")
	}

	// Second run, remote unchanged: delta, nothing added, store untouched.
	upsertsBefore := content.upserts
	engine = newTestEngine(content, state, embedder, 360)
	res, err = engine.Run(ctx, conn, provider)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Mode != ModeDelta {
		t.Errorf("second run mode = %s, want delta", res.Mode)
	}
	if res.ItemsAdded != 0 || res.ItemsRemoved != 0 {
		t.Errorf("second run added=%d removed=%d, want 0/0", res.ItemsAdded, res.ItemsRemoved)
	}
	if content.upserts != upsertsBefore {
		t.Errorf("idempotence violated: %d extra upserts", content.upserts-upsertsBefore)
	}
	if state.state.SyncCounter != 1 {
		t.Errorf("counter after delta = %d, want 1", state.state.SyncCounter)
	}

	// Remote gains I4: delta stores it and nothing else.
	provider.items = append([]*source.RawItem{rawItem("I4", 400)}, provider.items...)
	engine = newTestEngine(content, state, embedder, 450)
	res, err = engine.Run(ctx, conn, provider)
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if res.Mode != ModeDelta || res.ItemsAdded != 1 {
		t.Errorf("third run mode=%s added=%d, want delta/1", res.Mode, res.ItemsAdded)
	}
	if _, ok := content.items["I4"]; !ok {
		t.Error("I4 not stored")
	}
	if state.state.SyncCounter != 2 {
		t.Errorf("counter = %d, want 2", state.state.SyncCounter)
	}

	// Remote loses I1; force the next run to reconcile.
	provider.items = provider.items[:3] // I4, I3, I2
	state.state.SyncCounter = ReconcileInterval
	engine = newTestEngine(content, state, embedder, 500)
	res, err = engine.Run(ctx, conn, provider)
	if err != nil {
		t.Fatalf("fourth run: %v", err)
	}
	if res.Mode != ModeReconciliation {
		t.Errorf("fourth run mode = %s, want reconciliation", res.Mode)
	}
	if res.ItemsRemoved != 1 {
		t.Errorf("removed = %d, want 1", res.ItemsRemoved)
	}
	if _, ok := content.items["I1"]; ok {
		t.Error("I1 still stored after reconciliation")
	}
	if state.state.SyncCounter != 0 {
		t.Errorf("counter after reconciliation = %d, want 0", state.state.SyncCounter)
	}

	// Convergence: local ids equal remote ids exactly.
	if len(content.items) != 3 {
		t.Errorf("local set size = %d, want 3", len(content.items))
	}
	for _, id := range []string{"I2", "I3", "I4"} {
		if _, ok := content.items[id]; !ok {
			t.Errorf("missing %s after reconciliation", id)
		}
	}
}

func TestCounterCadence(t *testing.T) {
	ctx := context.Background()
	content := newFakeContentStore()
	state := &fakeStateStore{}
	conn := testConn()
	provider := &fakeProvider{items: []*source.RawItem{rawItem("I1", 100)}}

	for run := 1; run <= 12; run++ {
		engine := newTestEngine(content, state, &fakeEmbedder{}, int64(1000+run))
		res, err := engine.Run(ctx, conn, provider)
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		wantReconcile := run == 1 || run == 11
		gotReconcile := res.Mode == ModeReconciliation
		if gotReconcile != wantReconcile {
			t.Errorf("run %d mode = %s", run, res.Mode)
		}
	}
	if state.state.SyncCounter != 1 {
		t.Errorf("counter after 12 runs = %d, want 1", state.state.SyncCounter)
	}
}

func TestReconciliationReembedsChangedMarker(t *testing.T) {
	ctx := context.Background()
	content := newFakeContentStore()
	state := &fakeStateStore{}
	embedder := &fakeEmbedder{}
	conn := testConn()
	provider := &fakeProvider{items: []*source.RawItem{rawItem("I1", 100)}}

	engine := newTestEngine(content, state, embedder, 200)
	if _, err := engine.Run(ctx, conn, provider); err != nil {
		t.Fatal(err)
	}
	callsAfterFirst := embedder.calls

	// Same id, newer marker: upstream edited the item.
	provider.items = []*source.RawItem{rawItem("I1", 150)}
	state.state.SyncCounter = ReconcileInterval
	engine = newTestEngine(content, state, embedder, 300)
	res, err := engine.Run(ctx, conn, provider)
	if err != nil {
		t.Fatal(err)
	}
	if res.ItemsAdded != 1 {
		t.Errorf("added = %d, want 1 re-embed", res.ItemsAdded)
	}
	if embedder.calls != callsAfterFirst+1 {
		t.Errorf("embedder calls = %d, want %d", embedder.calls, callsAfterFirst+1)
	}
	if content.items["I1"].RecencyMarker != 150 {
		t.Errorf("stored marker = %d, want 150", content.items["I1"].RecencyMarker)
	}

	// Unchanged marker: untouched on the next reconciliation.
	state.state.SyncCounter = ReconcileInterval
	engine = newTestEngine(content, state, embedder, 400)
	res, err = engine.Run(ctx, conn, provider)
	if err != nil {
		t.Fatal(err)
	}
	if res.ItemsAdded != 0 {
		t.Errorf("added = %d, want 0 for unchanged item", res.ItemsAdded)
	}
}

func TestRunFailurePreservesState(t *testing.T) {
	ctx := context.Background()
	content := newFakeContentStore()
	state := &fakeStateStore{}
	conn := testConn()

	// Seed a healthy state via one successful run.
	provider := &fakeProvider{items: []*source.RawItem{rawItem("I1", 100)}}
	engine := newTestEngine(content, state, &fakeEmbedder{}, 200)
	if _, err := engine.Run(ctx, conn, provider); err != nil {
		t.Fatal(err)
	}
	cursorBefore := state.state.LastDeltaCursor
	counterBefore := state.state.SyncCounter

	provider.fetchErr = source.ErrSourceUnavailable
	engine = newTestEngine(content, state, &fakeEmbedder{}, 300)
	res, err := engine.Run(ctx, conn, provider)
	if err == nil {
		t.Fatal("expected run error")
	}
	if res.Status != StatusFailed {
		t.Errorf("status = %s, want failed", res.Status)
	}
	if state.state.LastDeltaCursor != cursorBefore {
		t.Errorf("cursor advanced on failure: %d -> %d", cursorBefore, state.state.LastDeltaCursor)
	}
	if state.state.SyncCounter != counterBefore {
		t.Errorf("counter changed on failure: %d -> %d", counterBefore, state.state.SyncCounter)
	}
	if state.state.LastRunStatus != string(StatusFailed) {
		t.Errorf("LastRunStatus = %q, want failed annotation", state.state.LastRunStatus)
	}
	if state.state.LastRunError == nil {
		t.Error("LastRunError not set")
	}
}

func TestFirstRunFailureCreatesNoState(t *testing.T) {
	ctx := context.Background()
	state := &fakeStateStore{}
	provider := &fakeProvider{fetchErr: source.ErrAuthExpired}

	engine := newTestEngine(newFakeContentStore(), state, &fakeEmbedder{}, 100)
	if _, err := engine.Run(ctx, testConn(), provider); err == nil {
		t.Fatal("expected run error")
	}
	if state.state != nil {
		t.Error("failed first run persisted a sync state")
	}
}

func TestDimensionMismatchAbortsRun(t *testing.T) {
	ctx := context.Background()
	content := newFakeContentStore()
	state := &fakeStateStore{}
	provider := &fakeProvider{items: []*source.RawItem{rawItem("I1", 100)}}

	engine := newTestEngine(content, state, &fakeEmbedder{wrongDim: true}, 200)
	_, err := engine.Run(ctx, testConn(), provider)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("err = %v, want dimension mismatch", err)
	}
	if len(content.items) != 0 {
		t.Error("partial write survived a dimension mismatch")
	}
	if state.state != nil {
		t.Error("sync state written despite aborted run")
	}
}

func TestPerItemFailuresSkipAndContinue(t *testing.T) {
	ctx := context.Background()
	content := newFakeContentStore()
	state := &fakeStateStore{}
	conn := testConn()

	provider := &fakeProvider{items: []*source.RawItem{
		rawItem("I3", 300),
		{Id: "I2", Malformed: "missing payload", RecencyMarker: 200},
		{Id: "Iempty", Text: "   ", RecencyMarker: 150},
		rawItem("I1", 100),
	}}

	engine := newTestEngine(content, state, &fakeEmbedder{}, 400)
	res, err := engine.Run(ctx, conn, provider)
	if err != nil {
		t.Fatal(err)
	}
	if res.ItemsAdded != 2 {
		t.Errorf("added = %d, want 2", res.ItemsAdded)
	}
	if res.ItemsSkipped != 2 {
		t.Errorf("skipped = %d, want 2", res.ItemsSkipped)
	}
	if _, ok := content.items["I2"]; ok {
		t.Error("malformed item stored")
	}
}

func TestTransientEmbeddingFailureSkipsItem(t *testing.T) {
	ctx := context.Background()
	content := newFakeContentStore()
	state := &fakeStateStore{}
	provider := &fakeProvider{items: []*source.RawItem{rawItem("I1", 100)}}

	engine := newTestEngine(content, state, &fakeEmbedder{failWith: fmt.Errorf("upstream 503")}, 200)
	res, err := engine.Run(ctx, testConn(), provider)
	if err != nil {
		t.Fatalf("transient embed failure aborted the run: %v", err)
	}
	if res.ItemsAdded != 0 || res.ItemsSkipped != 1 {
		t.Errorf("added=%d skipped=%d, want 0/1", res.ItemsAdded, res.ItemsSkipped)
	}
	// The item is absent from the store, so the next run retries it.
	if _, ok := content.items["I1"]; ok {
		t.Error("failed item stored")
	}
}

func TestFullReplacement(t *testing.T) {
	ctx := context.Background()
	content := newFakeContentStore()
	state := &fakeStateStore{}
	conn := testConn()

	first := &fakeProvider{items: []*source.RawItem{
		rawItem("A", 100), rawItem("B", 200),
	}}
	engine := newTestEngine(content, state, &fakeEmbedder{}, 300)
	if _, err := engine.RunFullReplacement(ctx, conn, first); err != nil {
		t.Fatal(err)
	}

	// A later upload drops B and brings C: the mirror follows exactly.
	second := &fakeProvider{items: []*source.RawItem{
		rawItem("A", 100), rawItem("C", 250),
	}}
	engine = newTestEngine(content, state, &fakeEmbedder{}, 400)
	res, err := engine.RunFullReplacement(ctx, conn, second)
	if err != nil {
		t.Fatal(err)
	}
	if res.Mode != ModeFullReplacement {
		t.Errorf("mode = %s", res.Mode)
	}
	if res.ItemsAdded != 1 || res.ItemsRemoved != 1 {
		t.Errorf("added=%d removed=%d, want 1/1", res.ItemsAdded, res.ItemsRemoved)
	}
	if state.state.SyncCounter != 0 {
		t.Errorf("counter = %d, want 0", state.state.SyncCounter)
	}
	if len(content.items) != 2 {
		t.Errorf("local set size = %d, want 2", len(content.items))
	}
}

func TestDeltaStopsAtCursor(t *testing.T) {
	ctx := context.Background()
	content := newFakeContentStore()
	state := &fakeStateStore{}
	conn := testConn()
	embedder := &fakeEmbedder{}

	provider := &fakeProvider{items: []*source.RawItem{rawItem("I1", 100)}}
	engine := newTestEngine(content, state, embedder, 200)
	if _, err := engine.Run(ctx, conn, provider); err != nil {
		t.Fatal(err)
	}
	callsAfterFirst := embedder.calls

	// New item in front, old items behind: the old ones must not be
	// re-embedded once the cursor is hit.
	provider.items = []*source.RawItem{
		rawItem("I2", 300), rawItem("I1", 100),
	}
	engine = newTestEngine(content, state, embedder, 400)
	res, err := engine.Run(ctx, conn, provider)
	if err != nil {
		t.Fatal(err)
	}
	if res.ItemsAdded != 1 {
		t.Errorf("added = %d, want 1", res.ItemsAdded)
	}
	if embedder.calls != callsAfterFirst+1 {
		t.Errorf("embedder calls = %d, want exactly one more than %d", embedder.calls, callsAfterFirst)
	}
}
