package selection

import (
	"time"

	"canvascore/domain/core/valueobjects"
)

// mappingEntry records one recovered identity: which current entity stands
// in for an original snapshot member, and which command caused it (zero for
// heuristic recoveries).
type mappingEntry struct {
	currentID valueobjects.EntityID
	commandID valueobjects.CommandID
}

// WorkflowContext is the mutable per-workflow state: the original snapshot
// plus the live id remapping built up as steps churn the graph. All access
// is serialized by the owning Manager.
type WorkflowContext struct {
	id       valueobjects.WorkflowID
	snapshot *Snapshot

	// originalID → current stand-in. Domain is always a subset of the
	// snapshot's original id set.
	mappings map[string]mappingEntry

	createdIDs  map[string]struct{}
	modifiedIDs map[string]struct{}
	deletedIDs  map[string]struct{}

	createdAt time.Time
	expiresAt time.Time
}

func newWorkflowContext(snapshot *Snapshot, ttl time.Duration) *WorkflowContext {
	now := time.Now()
	return &WorkflowContext{
		id:          valueobjects.NewWorkflowID(),
		snapshot:    snapshot,
		mappings:    make(map[string]mappingEntry),
		createdIDs:  make(map[string]struct{}),
		modifiedIDs: make(map[string]struct{}),
		deletedIDs:  make(map[string]struct{}),
		createdAt:   now,
		expiresAt:   now.Add(ttl),
	}
}

// ID returns the workflow's identifier
func (w *WorkflowContext) ID() valueobjects.WorkflowID {
	return w.id
}

// Snapshot returns the original selection snapshot bound to this workflow
func (w *WorkflowContext) Snapshot() *Snapshot {
	return w.snapshot
}

// ExpiresAt returns the context's expiry deadline
func (w *WorkflowContext) ExpiresAt() time.Time {
	return w.expiresAt
}

func (w *WorkflowContext) expired(now time.Time) bool {
	return now.After(w.expiresAt)
}

// currentFor returns the recorded stand-in for an original member, if any
func (w *WorkflowContext) currentFor(originalID valueobjects.EntityID) (mappingEntry, bool) {
	e, ok := w.mappings[originalID.String()]
	return e, ok
}

func (w *WorkflowContext) setMapping(originalID, currentID valueobjects.EntityID, commandID valueobjects.CommandID) {
	w.mappings[originalID.String()] = mappingEntry{currentID: currentID, commandID: commandID}
}

func (w *WorkflowContext) dropMapping(originalID valueobjects.EntityID) {
	delete(w.mappings, originalID.String())
}

// invalidateMappingsTo drops every mapping whose value is the given id.
// Called when a previously-recovered current entity is reported deleted, so
// the next resolve re-attempts recovery instead of pointing at a dead object.
func (w *WorkflowContext) invalidateMappingsTo(currentID valueobjects.EntityID) {
	for orig, entry := range w.mappings {
		if entry.currentID.Equals(currentID) {
			delete(w.mappings, orig)
		}
	}
}

// rollbackMappingsFor drops every mapping recorded under the given command
func (w *WorkflowContext) rollbackMappingsFor(commandID valueobjects.CommandID) int {
	dropped := 0
	for orig, entry := range w.mappings {
		if entry.commandID.Equals(commandID) {
			delete(w.mappings, orig)
			dropped++
		}
	}
	return dropped
}

func (w *WorkflowContext) trackChanges(created, modified, deleted []valueobjects.EntityID) {
	for _, id := range created {
		w.createdIDs[id.String()] = struct{}{}
	}
	for _, id := range modified {
		w.modifiedIDs[id.String()] = struct{}{}
	}
	for _, id := range deleted {
		w.deletedIDs[id.String()] = struct{}{}
		w.invalidateMappingsTo(id)
	}
}

// TrackedCreated reports whether the id was created during this workflow
func (w *WorkflowContext) TrackedCreated(id valueobjects.EntityID) bool {
	_, ok := w.createdIDs[id.String()]
	return ok
}

// TrackedDeleted reports whether the id was deleted during this workflow
func (w *WorkflowContext) TrackedDeleted(id valueobjects.EntityID) bool {
	_, ok := w.deletedIDs[id.String()]
	return ok
}

// MappingCount returns the number of live remapping entries
func (w *WorkflowContext) MappingCount() int {
	return len(w.mappings)
}
