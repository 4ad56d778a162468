package selection

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"canvascore/application/ports"
	"canvascore/domain/config"
	"canvascore/domain/core/entities"
	"canvascore/domain/core/valueobjects"
	"canvascore/domain/events"
	pkgerrors "canvascore/pkg/errors"
	"canvascore/pkg/observability"
)

// Manager owns workflow contexts and turns "the objects the user meant"
// into "the objects that currently exist and still correspond".
//
// Resolution runs an ordered strategy list per snapshot member: direct
// lookup, then the verified remap table, then similarity recovery. Missing
// members degrade the resolved set; they never fail the resolution. Only
// lifecycle problems (unknown or expired workflow) surface as errors.
type Manager struct {
	mu       sync.Mutex
	contexts map[string]*WorkflowContext

	store    ports.GraphStore
	cfg      *config.Store
	logger   *zap.Logger
	metrics  *observability.Collector
	observer ports.CommandObserver

	rec recoverer

	stopCh    chan struct{}
	closeOnce sync.Once
}

// NewManager creates a selection manager and starts its expiry sweep.
// The observer may be nil; pass one to receive selection lifecycle events.
// Tunables are read through the config store on every operation, so a hot
// reload takes effect on the next resolve.
func NewManager(
	store ports.GraphStore,
	cfg *config.Store,
	observer ports.CommandObserver,
	metrics *observability.Collector,
	logger *zap.Logger,
) *Manager {
	m := &Manager{
		contexts: make(map[string]*WorkflowContext),
		store:    store,
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		observer: observer,
		rec:      recoverer{store: store, cfg: cfg},
		stopCh:   make(chan struct{}),
	}

	go m.sweepRoutine()

	return m
}

// Close stops the expiry sweep goroutine
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.stopCh)
	})
}

// CaptureSnapshot builds a snapshot over the given entities using the
// configured signature grid.
func (m *Manager) CaptureSnapshot(targets []*entities.Entity) (*Snapshot, error) {
	return Capture(targets, m.cfg.Current().SignatureGrid)
}

// CreateWorkflow allocates a workflow context bound to the snapshot and
// schedules its expiry.
func (m *Manager) CreateWorkflow(snapshot *Snapshot) (*WorkflowContext, error) {
	if snapshot == nil {
		return nil, pkgerrors.NewValidation("snapshot cannot be nil")
	}

	wf := newWorkflowContext(snapshot, m.cfg.Current().WorkflowTTL)

	m.mu.Lock()
	m.contexts[wf.ID().String()] = wf
	m.mu.Unlock()

	m.metrics.ActiveWorkflows.Inc()
	m.emit(events.NewWorkflowStarted(wf.ID().String(), snapshot.ID().String(), snapshot.Size()))
	m.logger.Debug("Workflow context created",
		zap.String("workflow_id", wf.ID().String()),
		zap.Int("members", snapshot.Size()),
		zap.Time("expires_at", wf.ExpiresAt()),
	)

	return wf, nil
}

// Resolve returns the live entities that currently correspond to the
// workflow's original snapshot members. Result order is unspecified;
// callers needing stable ordering must sort explicitly.
func (m *Manager) Resolve(ctx context.Context, workflowID valueobjects.WorkflowID) ([]*entities.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wf, err := m.lookupLocked(workflowID)
	if err != nil {
		m.metrics.Resolutions.WithLabelValues("error").Inc()
		return nil, err
	}

	resolved := make([]*entities.Entity, 0, wf.snapshot.Size())
	taken := make(map[string]struct{}, wf.snapshot.Size())

	for _, originalID := range wf.snapshot.OriginalIDs() {
		result, ok := m.resolveMemberLocked(ctx, wf, originalID, taken)
		if !ok {
			m.metrics.RecoveryOutcomes.WithLabelValues(StrategyDropped).Inc()
			m.emit(events.NewSelectionMemberDropped(wf.ID().String(), originalID.String()))
			m.logger.Debug("Snapshot member dropped from resolution",
				zap.String("workflow_id", wf.ID().String()),
				zap.String("original_id", originalID.String()),
			)
			continue
		}

		resolved = append(resolved, result.entity)
		taken[result.entity.ID().String()] = struct{}{}
		m.metrics.RecoveryOutcomes.WithLabelValues(result.strategy).Inc()

		if result.strategy == StrategyRecovered {
			m.emit(events.NewSelectionRecovered(
				wf.ID().String(), originalID.String(), result.entity.ID().String(), result.strategy))
		}
		if result.ambiguous {
			m.metrics.AmbiguousRecovery.Inc()
			m.emit(events.NewSelectionRecoveryAmbiguous(
				wf.ID().String(), originalID.String(), result.entity.ID().String(),
				result.candidates, string(result.rule)))
			m.logger.Info("Ambiguous selection recovery",
				zap.String("workflow_id", wf.ID().String()),
				zap.String("original_id", originalID.String()),
				zap.String("chosen_id", result.entity.ID().String()),
				zap.Int("candidates", result.candidates),
				zap.String("tie_break_rule", string(result.rule)),
			)
		}
	}

	if len(resolved) == 0 {
		m.metrics.Resolutions.WithLabelValues("empty").Inc()
	} else if len(resolved) < wf.snapshot.Size() {
		m.metrics.Resolutions.WithLabelValues("partial").Inc()
	} else {
		m.metrics.Resolutions.WithLabelValues("full").Inc()
	}

	return resolved, nil
}

// resolveMemberLocked runs the ordered strategy list for one member:
// direct id → trusted mapping → similarity heuristic.
func (m *Manager) resolveMemberLocked(ctx context.Context, wf *WorkflowContext, originalID valueobjects.EntityID, taken map[string]struct{}) (recoveryResult, bool) {
	// 1. Direct lookup: the common case where the object is untouched.
	if e, err := m.store.Get(ctx, originalID); err == nil {
		return recoveryResult{entity: e, strategy: StrategyDirect}, true
	}

	// 2. Previously-recovered mapping, re-verified against the live graph.
	// A stale mapping is evicted and recovery retried from scratch rather
	// than trusted blindly.
	if entry, ok := wf.currentFor(originalID); ok {
		if e, err := m.store.Get(ctx, entry.currentID); err == nil {
			return recoveryResult{entity: e, strategy: StrategyMapped}, true
		}
		wf.dropMapping(originalID)
	}

	// 3. Similarity recovery.
	meta, ok := wf.snapshot.Metadata(originalID)
	if !ok {
		return recoveryResult{}, false
	}
	result, ok := m.rec.recover(ctx, meta, taken)
	if !ok {
		return recoveryResult{}, false
	}
	wf.setMapping(originalID, result.entity.ID(), valueobjects.CommandID{})
	return result, true
}

// ReportChanges feeds one step's object churn into the workflow context.
// Deleted ids that were mapping values invalidate those mappings; declared
// replacements are recorded as authoritative mappings under the command
// that produced them.
func (m *Manager) ReportChanges(workflowID valueobjects.WorkflowID, changes ports.ChangeSet, commandID valueobjects.CommandID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	wf, err := m.lookupLocked(workflowID)
	if err != nil {
		return err
	}

	wf.trackChanges(changes.CreatedIDs, changes.ModifiedIDs, changes.DeletedIDs)

	for oldID, newID := range changes.Replacements {
		if err := m.updateMappingLocked(wf, oldID, newID, commandID); err != nil {
			m.logger.Warn("Ignoring invalid replacement report",
				zap.String("workflow_id", workflowID.String()),
				zap.String("old_id", oldID.String()),
				zap.String("new_id", newID.String()),
				zap.Error(err),
			)
		}
	}

	return nil
}

// UpdateMapping records an executor-declared replacement of oldID by newID.
// This authoritative path is always preferred over heuristic recovery.
func (m *Manager) UpdateMapping(workflowID valueobjects.WorkflowID, oldID, newID valueobjects.EntityID, commandID valueobjects.CommandID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	wf, err := m.lookupLocked(workflowID)
	if err != nil {
		return err
	}
	return m.updateMappingLocked(wf, oldID, newID, commandID)
}

func (m *Manager) updateMappingLocked(wf *WorkflowContext, oldID, newID valueobjects.EntityID, commandID valueobjects.CommandID) error {
	if !wf.snapshot.ContainsOriginal(oldID) {
		return pkgerrors.NewValidation("mapped id " + oldID.String() + " is not part of the original snapshot")
	}
	if !m.store.Exists(context.Background(), newID) {
		return pkgerrors.NewValidation("mapping target " + newID.String() + " does not exist in the graph")
	}
	wf.setMapping(oldID, newID, commandID)
	return nil
}

// RollbackMappings drops every mapping the given command recorded in the
// workflow. Invoked when a selection-affecting command is undone, so a later
// redo does not resolve against a context that has moved on.
func (m *Manager) RollbackMappings(workflowID valueobjects.WorkflowID, commandID valueobjects.CommandID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	wf, err := m.lookupLocked(workflowID)
	if err != nil {
		// The workflow may legitimately be gone by the time undo happens
		if pkgerrors.IsUnknownWorkflow(err) {
			return nil
		}
		return err
	}

	dropped := wf.rollbackMappingsFor(commandID)
	if dropped > 0 {
		m.logger.Debug("Rolled back selection mappings",
			zap.String("workflow_id", workflowID.String()),
			zap.String("command_id", commandID.String()),
			zap.Int("dropped", dropped),
		)
	}
	return nil
}

// ReleaseWorkflow destroys a workflow context on completion or cancellation
func (m *Manager) ReleaseWorkflow(workflowID valueobjects.WorkflowID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.contexts[workflowID.String()]; !exists {
		return pkgerrors.NewUnknownWorkflow(workflowID.String())
	}
	delete(m.contexts, workflowID.String())
	m.metrics.ActiveWorkflows.Dec()
	m.emit(events.NewWorkflowReleased(events.TypeWorkflowCompleted, workflowID.String()))
	return nil
}

// ActiveWorkflowCount returns the number of in-flight contexts
func (m *Manager) ActiveWorkflowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.contexts)
}

// lookupLocked finds a context and enforces the fail-closed expiry policy:
// an expired context is removed and surfaced as WorkflowExpired, forcing the
// caller to re-snapshot instead of silently resolving against stale state.
func (m *Manager) lookupLocked(workflowID valueobjects.WorkflowID) (*WorkflowContext, error) {
	wf, exists := m.contexts[workflowID.String()]
	if !exists {
		return nil, pkgerrors.NewUnknownWorkflow(workflowID.String())
	}
	if wf.expired(time.Now()) {
		delete(m.contexts, workflowID.String())
		m.metrics.ActiveWorkflows.Dec()
		m.metrics.ExpiredWorkflows.Inc()
		m.emit(events.NewWorkflowReleased(events.TypeWorkflowExpired, workflowID.String()))
		return nil, pkgerrors.NewWorkflowExpired(workflowID.String())
	}
	return wf, nil
}

// sweepRoutine periodically removes contexts past their expiry timestamp
// to bound memory held by abandoned workflows.
func (m *Manager) sweepRoutine() {
	interval := m.cfg.Current().SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.sweepExpired(time.Now())
		}
	}
}

func (m *Manager) sweepExpired(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, wf := range m.contexts {
		if wf.expired(now) {
			delete(m.contexts, id)
			m.metrics.ActiveWorkflows.Dec()
			m.metrics.ExpiredWorkflows.Inc()
			m.emit(events.NewWorkflowReleased(events.TypeWorkflowExpired, id))
			m.logger.Info("Expired workflow context swept",
				zap.String("workflow_id", id),
			)
		}
	}
}

func (m *Manager) emit(event events.DomainEvent) {
	if m.observer != nil {
		m.observer.OnCommandEvent(event)
	}
}
