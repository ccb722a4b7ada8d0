package syncengine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ai-recall-be/internal/entity"
	"ai-recall-be/pkg/source"

	"github.com/google/uuid"
)

// ReconcileInterval controls the delta/reconciliation cadence: a pair
// reconciles on its first-ever run and again after every
// ReconcileInterval-1 deltas, so the 1st, 11th, 21st... successful run
// for a pair is always a full reconciliation.
const ReconcileInterval = 10

type RunMode string

const (
	ModeDelta           RunMode = "delta"
	ModeReconciliation  RunMode = "reconciliation"
	ModeFullReplacement RunMode = "full_replacement"
)

type RunStatus string

const (
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Result summarizes one sync run.
type Result struct {
	Status       RunStatus
	Mode         RunMode
	ItemsAdded   int
	ItemsRemoved int
	ItemsSkipped int
	Error        string
}

// Engine drives one (owner, source) pair through a sync run. Per-item
// failures are skipped and counted; run-level failures abort before any
// sync metadata is written, so a failed run never advances the cursor
// or resets the counter. The caller guarantees single-flight per pair.
type Engine struct {
	content  ContentStore
	state    StateStore
	pipeline *Pipeline
	logger   *log.Logger
	now      func() time.Time
}

func NewEngine(content ContentStore, state StateStore, pipeline *Pipeline, logger *log.Logger) *Engine {
	return &Engine{
		content:  content,
		state:    state,
		pipeline: pipeline,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes one delta or reconciliation pass, decided by the counter
// persisted before this run began.
func (e *Engine) Run(ctx context.Context, conn *entity.Connection, provider source.Provider) (*Result, error) {
	st, err := e.state.Get(ctx, conn.UserId, conn.SourceTag)
	if err != nil {
		return failed(modeUnknown, err), err
	}
	firstRun := st == nil
	if firstRun {
		st = &entity.SyncState{
			Id:            uuid.New(),
			UserId:        conn.UserId,
			SourceTag:     conn.SourceTag,
			CredentialRef: conn.Id,
		}
	}

	// The counter holds successful deltas since the last reconciliation;
	// once this run would be the ReconcileInterval-th since then, it
	// reconciles instead of running another delta.
	mode := ModeDelta
	if firstRun || st.SyncCounter+1 >= ReconcileInterval {
		mode = ModeReconciliation
	}
	e.logger.Printf("[SYNC] user=%s source=%s mode=%s counter=%d", conn.UserId, conn.SourceTag, mode, st.SyncCounter)

	var res *Result
	if mode == ModeReconciliation {
		res, err = e.reconcile(ctx, conn, provider)
	} else {
		res, err = e.delta(ctx, conn, provider, st.LastDeltaCursor)
	}
	if err != nil {
		e.annotateFailure(ctx, st, err)
		return failed(mode, err), err
	}

	now := e.now()
	st.LastDeltaCursor = now.UnixMilli()
	if mode == ModeReconciliation {
		st.SyncCounter = 0
		st.LastFullReconciliation = &now
	} else {
		st.SyncCounter++
	}
	st.LastRunStatus = string(StatusCompleted)
	st.LastRunError = nil
	if err := e.state.Save(ctx, st); err != nil {
		return failed(mode, err), fmt.Errorf("saving sync state: %w", err)
	}

	res.Mode = mode
	e.logger.Printf("[SYNC] user=%s source=%s mode=%s added=%d removed=%d skipped=%d",
		conn.UserId, conn.SourceTag, mode, res.ItemsAdded, res.ItemsRemoved, res.ItemsSkipped)
	return res, nil
}

// RunFullReplacement syncs an uploaded snapshot: the provider's item
// set replaces the whole local mirror for this pair in one pass. The
// counter resets exactly as after a reconciliation; there is no cursor
// concept, so the cursor is just stamped with the run time.
func (e *Engine) RunFullReplacement(ctx context.Context, conn *entity.Connection, provider source.Provider) (*Result, error) {
	st, err := e.state.Get(ctx, conn.UserId, conn.SourceTag)
	if err != nil {
		return failed(ModeFullReplacement, err), err
	}
	if st == nil {
		st = &entity.SyncState{
			Id:            uuid.New(),
			UserId:        conn.UserId,
			SourceTag:     conn.SourceTag,
			CredentialRef: conn.Id,
		}
	}

	res, err := e.reconcile(ctx, conn, provider)
	if err != nil {
		e.annotateFailure(ctx, st, err)
		return failed(ModeFullReplacement, err), err
	}

	now := e.now()
	st.LastDeltaCursor = now.UnixMilli()
	st.LastFullReconciliation = &now
	st.SyncCounter = 0
	st.LastRunStatus = string(StatusCompleted)
	st.LastRunError = nil
	if err := e.state.Save(ctx, st); err != nil {
		return failed(ModeFullReplacement, err), fmt.Errorf("saving sync state: %w", err)
	}

	res.Mode = ModeFullReplacement
	return res, nil
}

// delta stores items strictly newer than the cursor. Items arrive
// newest-first, so the first one at or before the cursor ends the run;
// everything older is already mirrored.
func (e *Engine) delta(ctx context.Context, conn *entity.Connection, provider source.Provider, cursor int64) (*Result, error) {
	res := &Result{Status: StatusCompleted}
	it := provider.FetchItems(ctx, conn, &cursor)

	for {
		item, err := it.Next(ctx)
		if errors.Is(err, source.ErrDone) {
			break
		}
		if err != nil {
			return nil, err
		}
		if item.Malformed != "" {
			e.logger.Printf("[SYNC] skipping malformed item id=%q: %s", item.Id, item.Malformed)
			res.ItemsSkipped++
			continue
		}
		if item.RecencyMarker <= cursor {
			break
		}

		stored, err := e.storeItem(ctx, conn.UserId, provider, item)
		if err != nil {
			return nil, err
		}
		if stored {
			res.ItemsAdded++
		} else {
			res.ItemsSkipped++
		}
	}
	return res, nil
}

// reconcile makes the local mirror equal the remote set exactly:
// upstream additions and marker changes are (re)embedded, local
// leftovers are deleted.
func (e *Engine) reconcile(ctx context.Context, conn *entity.Connection, provider source.Provider) (*Result, error) {
	res := &Result{Status: StatusCompleted}

	localIds, err := e.content.StableIds(ctx, conn.UserId, conn.SourceTag)
	if err != nil {
		return nil, fmt.Errorf("reading local id set: %w", err)
	}

	remoteIds := make(map[string]struct{})
	it := provider.FetchItems(ctx, conn, nil)
	for {
		item, err := it.Next(ctx)
		if errors.Is(err, source.ErrDone) {
			break
		}
		if err != nil {
			return nil, err
		}
		if item.Malformed != "" {
			e.logger.Printf("[SYNC] skipping malformed item id=%q: %s", item.Id, item.Malformed)
			res.ItemsSkipped++
			continue
		}

		stableId := provider.StableId(item)
		remoteIds[stableId] = struct{}{}

		// Present on both sides with an unchanged marker: leave it
		// untouched. A changed marker means upstream edited the item, so
		// it goes back through the pipeline and is re-embedded in place.
		if storedMarker, ok := localIds[stableId]; ok && storedMarker == item.RecencyMarker {
			continue
		}

		stored, err := e.storeItem(ctx, conn.UserId, provider, item)
		if err != nil {
			return nil, err
		}
		if stored {
			res.ItemsAdded++
		} else {
			res.ItemsSkipped++
		}
	}

	var toDelete []string
	for id := range localIds {
		if _, ok := remoteIds[id]; !ok {
			toDelete = append(toDelete, id)
		}
	}
	if len(toDelete) > 0 {
		removed, err := e.content.DeleteByStableIds(ctx, conn.UserId, conn.SourceTag, toDelete)
		if err != nil {
			return nil, fmt.Errorf("deleting unreferenced items: %w", err)
		}
		res.ItemsRemoved = int(removed)
	}
	return res, nil
}

// storeItem vectorizes and upserts one item. Returns false when the
// item was skipped; per-item failures come back as (false, nil) so the
// run continues, run-fatal ones as a real error.
func (e *Engine) storeItem(ctx context.Context, userId uuid.UUID, provider source.Provider, item *source.RawItem) (bool, error) {
	record, err := e.pipeline.Vectorize(userId, provider, item)
	if errors.Is(err, ErrSkippedEmpty) {
		return false, nil
	}
	if errors.Is(err, ErrDimensionMismatch) {
		return false, err
	}
	if err != nil {
		e.logger.Printf("[SYNC] skipping item id=%q: %v", provider.StableId(item), err)
		return false, nil
	}

	if err := e.content.Upsert(ctx, record); err != nil {
		return false, fmt.Errorf("storing item %s: %w", record.StableId, err)
	}
	return true, nil
}

// annotateFailure records the failure on the pre-run state without
// touching the cursor or counter. Best effort: a state row that never
// existed is not created by a failed run.
func (e *Engine) annotateFailure(ctx context.Context, st *entity.SyncState, runErr error) {
	if st.CreatedAt.IsZero() {
		return
	}
	msg := runErr.Error()
	st.LastRunStatus = string(StatusFailed)
	st.LastRunError = &msg
	if err := e.state.Save(ctx, st); err != nil {
		e.logger.Printf("[SYNC] failed to annotate sync state: %v", err)
	}
}

const modeUnknown RunMode = ""

func failed(mode RunMode, err error) *Result {
	return &Result{
		Status: StatusFailed,
		Mode:   mode,
		Error:  err.Error(),
	}
}
