package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"canvascore/application/ports"
	"canvascore/application/selection"
	"canvascore/domain/config"
	"canvascore/domain/events"
	"canvascore/domain/core/entities"
	"canvascore/infrastructure/persistence/memory"
	pkgerrors "canvascore/pkg/errors"
	"canvascore/pkg/observability"
)

func newTestManager(t *testing.T) (*Manager, *memory.GraphStore) {
	t.Helper()
	store := memory.NewGraphStore()
	cfg := config.NewStore(config.DefaultDomainConfig())
	metrics := observability.NewCollector("test")
	sel := selection.NewManager(store, cfg, nil, metrics, zap.NewNop())
	t.Cleanup(sel.Close)
	return NewManager(store, sel, cfg, metrics, zap.NewNop()), store
}

// graphStatesEqual compares two full graph snapshots entity by entity
func graphStatesEqual(a, b map[string]*entities.Entity) bool {
	if len(a) != len(b) {
		return false
	}
	for id, ea := range a {
		eb, ok := b[id]
		if !ok || !ea.StateEquals(eb) {
			return false
		}
	}
	return true
}

func TestManager_ExecuteSuccessEntersHistory(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t)
	entity := mustEntity(t, entities.KindShape, "layer-1", 0, 0, nil)

	cmd, err := NewCreateEntityCommand(entity, Metadata{Source: "user"})
	require.NoError(t, err)

	require.NoError(t, mgr.Execute(ctx, cmd))
	assert.True(t, store.Exists(ctx, entity.ID()))
	assert.Equal(t, 1, mgr.HistoryLen())
	assert.True(t, mgr.CanUndo())
}

func TestManager_ExecuteFailureLeavesGraphAndHistoryUntouched(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t)

	entity := mustEntity(t, entities.KindShape, "layer-1", 0, 0, nil)
	require.NoError(t, store.Put(ctx, entity))
	before := store.Snapshot(ctx)

	// Creating an entity whose id is already live is a conflict
	cmd, err := NewCreateEntityCommand(entity, Metadata{Source: "user"})
	require.NoError(t, err)

	err = mgr.Execute(ctx, cmd)
	assert.True(t, pkgerrors.IsExecutionFailed(err))
	assert.True(t, graphStatesEqual(before, store.Snapshot(ctx)))
	assert.Equal(t, 0, mgr.HistoryLen())
}

func TestManager_ExecuteNilCommand(t *testing.T) {
	mgr, _ := newTestManager(t)
	err := mgr.Execute(context.Background(), nil)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestManager_AtomicBatchRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t)

	existing := mustEntity(t, entities.KindShape, "layer-1", 0, 0, nil)
	require.NoError(t, store.Put(ctx, existing))
	before := store.Snapshot(ctx)
	historyBefore := mgr.HistoryLen()

	ok1, err := NewCreateEntityCommand(mustEntity(t, entities.KindShape, "layer-1", 10, 0, nil), Metadata{Source: "user"})
	require.NoError(t, err)
	ok2, err := NewDeleteEntityCommand(existing.ID(), Metadata{Source: "user"}, nil)
	require.NoError(t, err)
	failing := &stubCommand{
		BaseCommand: NewBaseCommand("boom", Metadata{Source: "user"}, nil),
		applyErr:    errors.New("boom"),
	}

	results, err := mgr.ExecuteBatch(ctx, []Command{ok1, ok2, failing}, BatchOptions{Atomic: true})
	assert.True(t, pkgerrors.IsExecutionFailed(err))
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.Error(t, results[2].Err)

	// The graph is exactly as it was before the batch and history is unchanged
	assert.True(t, graphStatesEqual(before, store.Snapshot(ctx)))
	assert.Equal(t, historyBefore, mgr.HistoryLen())
	assert.False(t, mgr.CanUndo())
}

func TestManager_AtomicBatchSuccessPushesAll(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t)

	c1, err := NewCreateEntityCommand(mustEntity(t, entities.KindShape, "layer-1", 0, 0, nil), Metadata{Source: "user"})
	require.NoError(t, err)
	c2, err := NewCreateEntityCommand(mustEntity(t, entities.KindText, "layer-1", 10, 0, nil), Metadata{Source: "user"})
	require.NoError(t, err)

	results, err := mgr.ExecuteBatch(ctx, []Command{c1, c2}, BatchOptions{Atomic: true})
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, 2, store.Count(ctx))
	assert.Equal(t, 2, mgr.HistoryLen())
}

func TestManager_BestEffortBatchContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t)

	c1, err := NewCreateEntityCommand(mustEntity(t, entities.KindShape, "layer-1", 0, 0, nil), Metadata{Source: "user"})
	require.NoError(t, err)
	failing := &stubCommand{
		BaseCommand: NewBaseCommand("boom", Metadata{Source: "user"}, nil),
		applyErr:    errors.New("boom"),
	}
	c3, err := NewCreateEntityCommand(mustEntity(t, entities.KindText, "layer-1", 10, 0, nil), Metadata{Source: "user"})
	require.NoError(t, err)

	results, err := mgr.ExecuteBatch(ctx, []Command{c1, failing, c3}, BatchOptions{ContinueOnError: true})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)

	// Successful commands stay applied and in history
	assert.Equal(t, 2, store.Count(ctx))
	assert.Equal(t, 2, mgr.HistoryLen())
}

func TestManager_EmptyBatchRejected(t *testing.T) {
	mgr, _ := newTestManager(t)
	_, err := mgr.ExecuteBatch(context.Background(), nil, BatchOptions{Atomic: true})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestManager_UndoRedoRoundTrip(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t)
	entity := mustEntity(t, entities.KindShape, "layer-1", 0, 0, nil)

	before := store.Snapshot(ctx)

	cmd, err := NewCreateEntityCommand(entity, Metadata{Source: "user"})
	require.NoError(t, err)
	require.NoError(t, mgr.Execute(ctx, cmd))
	afterApply := store.Snapshot(ctx)

	require.NoError(t, mgr.Undo(ctx))
	assert.True(t, graphStatesEqual(before, store.Snapshot(ctx)))
	assert.False(t, mgr.CanUndo())
	assert.True(t, mgr.CanRedo())

	require.NoError(t, mgr.Redo(ctx))
	assert.True(t, graphStatesEqual(afterApply, store.Snapshot(ctx)))
	assert.True(t, mgr.CanUndo())
	assert.False(t, mgr.CanRedo())
}

func TestManager_UndoWithEmptyHistory(t *testing.T) {
	mgr, _ := newTestManager(t)
	err := mgr.Undo(context.Background())
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestManager_NewCommandTruncatesRedo(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t)

	c1, err := NewCreateEntityCommand(mustEntity(t, entities.KindShape, "layer-1", 0, 0, nil), Metadata{Source: "user"})
	require.NoError(t, err)
	require.NoError(t, mgr.Execute(ctx, c1))
	require.NoError(t, mgr.Undo(ctx))
	require.True(t, mgr.CanRedo())

	c2, err := NewCreateEntityCommand(mustEntity(t, entities.KindText, "layer-1", 10, 0, nil), Metadata{Source: "user"})
	require.NoError(t, err)
	require.NoError(t, mgr.Execute(ctx, c2))

	// The undone command is gone for good
	assert.False(t, mgr.CanRedo())
	err = mgr.Redo(ctx)
	assert.True(t, pkgerrors.IsConflict(err))
	assert.Equal(t, 1, mgr.HistoryLen())
}

func TestManager_ReplacementMappingRecordedAndRolledBack(t *testing.T) {
	ctx := context.Background()
	store := memory.NewGraphStore()
	cfg := config.NewStore(config.DefaultDomainConfig())
	metrics := observability.NewCollector("test")
	sel := selection.NewManager(store, cfg, nil, metrics, zap.NewNop())
	t.Cleanup(sel.Close)
	mgr := NewManager(store, sel, cfg, metrics, zap.NewNop())

	original := mustEntity(t, entities.KindImage, "layer-1", 10, 10, nil)
	require.NoError(t, store.Put(ctx, original))

	snapshot, err := sel.CaptureSnapshot([]*entities.Entity{original})
	require.NoError(t, err)
	wf, err := sel.CreateWorkflow(snapshot)
	require.NoError(t, err)

	replacement := mustEntity(t, entities.KindImage, "layer-1", 10, 10, map[string]string{"filter": "blur"})
	cmd, err := NewReplaceEntityCommand(original.ID(), replacement, Metadata{Source: "user", WorkflowID: wf.ID()}, snapshot)
	require.NoError(t, err)

	require.NoError(t, mgr.Execute(ctx, cmd))

	// The declared old→new mapping makes resolution land on the replacement
	resolved, err := sel.Resolve(ctx, wf.ID())
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, replacement.ID(), resolved[0].ID())

	// Undo restores the original and rolls the mapping back with it
	require.NoError(t, mgr.Undo(ctx))
	resolved, err = sel.Resolve(ctx, wf.ID())
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, original.ID(), resolved[0].ID())
}

func TestManager_ObserverSeesLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t)

	var types []string
	mgr.AddObserver(ports.ObserverFunc(func(event events.DomainEvent) {
		types = append(types, event.GetEventType())
	}))

	cmd, err := NewCreateEntityCommand(mustEntity(t, entities.KindShape, "layer-1", 0, 0, nil), Metadata{Source: "user"})
	require.NoError(t, err)
	require.NoError(t, mgr.Execute(ctx, cmd))
	require.NoError(t, mgr.Undo(ctx))
	require.NoError(t, mgr.Redo(ctx))

	assert.Equal(t, []string{
		events.TypeCommandExecutionStarted,
		events.TypeCommandExecutionCompleted,
		events.TypeCommandUndone,
		events.TypeCommandRedone,
	}, types)
}

func TestManager_ClearHistory(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t)

	cmd, err := NewCreateEntityCommand(mustEntity(t, entities.KindShape, "layer-1", 0, 0, nil), Metadata{Source: "user"})
	require.NoError(t, err)
	require.NoError(t, mgr.Execute(ctx, cmd))

	mgr.ClearHistory()
	assert.Equal(t, 0, mgr.HistoryLen())
	assert.False(t, mgr.CanUndo())
}
