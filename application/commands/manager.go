package commands

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"canvascore/application/ports"
	"canvascore/application/selection"
	"canvascore/domain/config"
	"canvascore/domain/events"
	pkgerrors "canvascore/pkg/errors"
	"canvascore/pkg/observability"
)

// BatchOptions controls how ExecuteBatch treats failures
type BatchOptions struct {
	// Atomic rolls back every applied command of the batch when one fails,
	// leaving the graph exactly as it was pre-batch
	Atomic bool

	// ContinueOnError attempts every command independently and reports
	// per-command results. Ignored when Atomic is set.
	ContinueOnError bool
}

// BatchResult reports the outcome of one command in a best-effort batch
type BatchResult struct {
	CommandID   string
	Description string
	Err         error
}

// Manager executes commands against the object graph, records them in
// history, and drives undo/redo. It owns the coupling between history and
// selection recovery: undoing a selection-affecting command also rolls back
// the mapping changes recorded under it.
type Manager struct {
	mu sync.Mutex

	graph     ports.GraphStore
	history   *History
	selection *selection.Manager
	cfg       *config.Store
	observers []ports.CommandObserver

	metrics *observability.Collector
	logger  *zap.Logger
}

// NewManager creates a command manager. The selection manager may be nil
// when selection recovery is not in play (e.g. isolated tests).
func NewManager(
	graph ports.GraphStore,
	selectionManager *selection.Manager,
	cfg *config.Store,
	metrics *observability.Collector,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		graph:     graph,
		history:   NewHistory(cfg.Current().MaxHistorySize),
		selection: selectionManager,
		cfg:       cfg,
		metrics:   metrics,
		logger:    logger,
	}
}

// AddObserver registers a synchronous observer for command events
func (m *Manager) AddObserver(observer ports.CommandObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, observer)
}

// Execute applies a single command and appends it to history on success.
// A failed command leaves the graph unchanged and is not added to history.
func (m *Manager) Execute(ctx context.Context, cmd Command) error {
	if cmd == nil {
		return pkgerrors.NewValidation("command cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.executeLocked(ctx, cmd, true)
}

// executeLocked runs the Pending → Applying → Applied|Failed transition
func (m *Manager) executeLocked(ctx context.Context, cmd Command, pushHistory bool) error {
	meta := cmd.Metadata()
	start := time.Now()

	m.emit(events.NewCommandExecutionStarted(
		cmd.ID().String(), cmd.Description(), meta.Source, meta.WorkflowID.String()))

	err := cmd.Apply(ctx, m.graph)
	m.metrics.ObserveCommand(meta.Source, time.Since(start), err)

	if err != nil {
		m.emit(events.NewCommandExecutionFailed(cmd.ID().String(), cmd.Description(), err.Error()))
		m.logger.Error("Command execution failed",
			zap.String("command_id", cmd.ID().String()),
			zap.String("description", cmd.Description()),
			zap.Error(err),
		)
		return pkgerrors.NewExecutionFailed("command "+cmd.Description()+" failed", err)
	}

	m.recordReplacementsLocked(cmd)
	m.emitEntityChangesLocked(cmd)

	if pushHistory {
		m.pushLocked(cmd)
	}

	m.emit(events.NewCommandExecutionCompleted(
		cmd.ID().String(), cmd.Description(), meta.WorkflowID.String()))
	m.logger.Debug("Command executed",
		zap.String("command_id", cmd.ID().String()),
		zap.String("description", cmd.Description()),
		zap.Duration("duration", time.Since(start)),
	)

	return nil
}

// recordReplacementsLocked feeds declared entity replacements into the
// selection manager as authoritative mappings.
func (m *Manager) recordReplacementsLocked(cmd Command) {
	meta := cmd.Metadata()
	if m.selection == nil || meta.WorkflowID.IsZero() {
		return
	}
	reporter, ok := cmd.(ReplacementReporter)
	if !ok {
		return
	}
	for oldID, newID := range reporter.Replacements() {
		if err := m.selection.UpdateMapping(meta.WorkflowID, oldID, newID, cmd.ID()); err != nil {
			m.logger.Warn("Failed to record replacement mapping",
				zap.String("command_id", cmd.ID().String()),
				zap.String("old_id", oldID.String()),
				zap.String("new_id", newID.String()),
				zap.Error(err),
			)
		}
	}
}

// emitEntityChangesLocked notifies observers of the entity churn produced
// by commands that can enumerate it.
func (m *Manager) emitEntityChangesLocked(cmd Command) {
	reporter, ok := cmd.(ChangeReporter)
	if !ok {
		return
	}
	changes := reporter.ChangeSet()
	for _, id := range changes.CreatedIDs {
		m.emit(events.NewEntityChanged(events.TypeEntityCreated, id.String()))
	}
	for _, id := range changes.ModifiedIDs {
		m.emit(events.NewEntityChanged(events.TypeEntityModified, id.String()))
	}
	for _, id := range changes.DeletedIDs {
		m.emit(events.NewEntityChanged(events.TypeEntityDeleted, id.String()))
	}
	for oldID, newID := range changes.Replacements {
		m.emit(events.NewEntityChanged(events.TypeEntityDeleted, oldID.String()))
		m.emit(events.NewEntityChanged(events.TypeEntityCreated, newID.String()))
	}
}

// pushLocked appends to history under the live size limit, so a reloaded
// history cap applies from the next command on.
func (m *Manager) pushLocked(cmd Command) {
	m.history.SetLimit(m.cfg.Current().MaxHistorySize)
	m.history.Push(cmd)
}

// ExecuteBatch runs a sequence of commands under the given failure policy.
//
// Atomic batches leave the graph exactly as it was before the batch when
// any command fails: already-applied commands are inverted in reverse order
// and nothing is appended to history. Best-effort batches attempt every
// command independently and return per-command results.
func (m *Manager) ExecuteBatch(ctx context.Context, cmds []Command, opts BatchOptions) ([]BatchResult, error) {
	if len(cmds) == 0 {
		return nil, pkgerrors.NewValidation("batch cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if opts.Atomic {
		return m.executeAtomicLocked(ctx, cmds)
	}
	return m.executeBestEffortLocked(ctx, cmds, opts.ContinueOnError)
}

func (m *Manager) executeAtomicLocked(ctx context.Context, cmds []Command) ([]BatchResult, error) {
	applied := make([]Command, 0, len(cmds))
	results := make([]BatchResult, 0, len(cmds))

	for _, cmd := range cmds {
		err := m.executeLocked(ctx, cmd, false)
		results = append(results, BatchResult{
			CommandID:   cmd.ID().String(),
			Description: cmd.Description(),
			Err:         err,
		})
		if err != nil {
			m.rollbackLocked(ctx, applied)
			return results, pkgerrors.NewExecutionFailed("atomic batch rolled back", err)
		}
		applied = append(applied, cmd)
	}

	// All succeeded; now they enter history in execution order
	for _, cmd := range applied {
		m.pushLocked(cmd)
	}
	return results, nil
}

// rollbackLocked inverts applied commands in reverse order, restoring the
// pre-batch graph state. Inverse failures are logged and skipped so the
// remaining compensations still run.
func (m *Manager) rollbackLocked(ctx context.Context, applied []Command) {
	for i := len(applied) - 1; i >= 0; i-- {
		cmd := applied[i]
		if err := cmd.Invert(ctx, m.graph); err != nil {
			m.logger.Error("Batch rollback step failed",
				zap.String("command_id", cmd.ID().String()),
				zap.String("description", cmd.Description()),
				zap.Error(err),
			)
			continue
		}
		m.rollbackSelectionLocked(cmd)
	}
}

func (m *Manager) executeBestEffortLocked(ctx context.Context, cmds []Command, continueOnError bool) ([]BatchResult, error) {
	results := make([]BatchResult, 0, len(cmds))

	for _, cmd := range cmds {
		err := m.executeLocked(ctx, cmd, true)
		results = append(results, BatchResult{
			CommandID:   cmd.ID().String(),
			Description: cmd.Description(),
			Err:         err,
		})
		if err != nil && !continueOnError {
			return results, err
		}
	}
	return results, nil
}

// Undo inverts the most recently applied command and moves the cursor back.
// Undoing a selection-affecting command also rolls back its mapping changes
// so a later redo does not resolve against a context that has moved on.
func (m *Manager) Undo(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd, ok := m.history.PeekUndo()
	if !ok {
		return pkgerrors.NewConflict("nothing to undo")
	}

	if err := cmd.Invert(ctx, m.graph); err != nil {
		m.logger.Error("Undo failed",
			zap.String("command_id", cmd.ID().String()),
			zap.Error(err),
		)
		return pkgerrors.NewExecutionFailed("undo of "+cmd.Description()+" failed", err)
	}

	m.history.MarkUndone()
	m.rollbackSelectionLocked(cmd)
	m.metrics.UndoOperations.Inc()

	meta := cmd.Metadata()
	m.emit(events.NewCommandUndone(cmd.ID().String(), cmd.Description(), meta.WorkflowID.String()))
	return nil
}

func (m *Manager) rollbackSelectionLocked(cmd Command) {
	meta := cmd.Metadata()
	if m.selection == nil || !meta.AffectsSelection || meta.WorkflowID.IsZero() {
		return
	}
	if err := m.selection.RollbackMappings(meta.WorkflowID, cmd.ID()); err != nil {
		m.logger.Warn("Failed to roll back selection mappings",
			zap.String("command_id", cmd.ID().String()),
			zap.String("workflow_id", meta.WorkflowID.String()),
			zap.Error(err),
		)
	}
}

// Redo re-applies the most recently undone command and moves the cursor
// forward. Fails when a new command has truncated the redo tail.
func (m *Manager) Redo(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd, ok := m.history.PeekRedo()
	if !ok {
		return pkgerrors.NewConflict("nothing to redo")
	}

	if err := cmd.Apply(ctx, m.graph); err != nil {
		m.logger.Error("Redo failed",
			zap.String("command_id", cmd.ID().String()),
			zap.Error(err),
		)
		return pkgerrors.NewExecutionFailed("redo of "+cmd.Description()+" failed", err)
	}

	m.history.MarkRedone()
	m.recordReplacementsLocked(cmd)
	m.emitEntityChangesLocked(cmd)
	m.metrics.RedoOperations.Inc()

	meta := cmd.Metadata()
	m.emit(events.NewCommandRedone(cmd.ID().String(), cmd.Description(), meta.WorkflowID.String()))
	return nil
}

// CanUndo reports whether an undo is currently possible
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.CanUndo()
}

// CanRedo reports whether a redo is currently possible
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.CanRedo()
}

// HistoryLen returns the total number of history entries
func (m *Manager) HistoryLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.Len()
}

// DropRedoTail discards the redoable entries past the cursor. Used when
// undone commands must not be re-applicable, e.g. after an atomic chain
// has been rolled back step by step.
func (m *Manager) DropRedoTail() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history.DropRedoTail()
}

// ClearHistory discards all history entries
func (m *Manager) ClearHistory() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history.Clear()
}

func (m *Manager) emit(event events.DomainEvent) {
	for _, o := range m.observers {
		o.OnCommandEvent(event)
	}
}
