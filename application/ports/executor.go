package ports

import (
	"context"

	"canvascore/domain/core/entities"
	"canvascore/domain/core/valueobjects"
)

// ChangeSet describes the object churn produced by a step's executor.
// Executors must never silently replace an entity's id: a replacement is
// reported either through Replacements (authoritative) or as a delete plus
// create pair, in which case similarity recovery is the safety net.
type ChangeSet struct {
	CreatedIDs  []valueobjects.EntityID
	ModifiedIDs []valueobjects.EntityID
	DeletedIDs  []valueobjects.EntityID

	// Replacements maps old id → new id for executors that know they
	// swapped one entity for another.
	Replacements map[valueobjects.EntityID]valueobjects.EntityID
}

// ExecutionResult is what a tool executor returns to the orchestrator
type ExecutionResult struct {
	Success bool
	Changes ChangeSet
	Err     error
}

// ToolExecutor performs one step's work against a resolved target set.
// Implementations wrap the external collaborators this core excludes
// (filters, brushes, generation services); they may suspend for long
// periods, so the orchestrator re-resolves targets after every call.
//
// Executors must confine their mutations to the targets they are handed
// plus the entities they report in the returned ChangeSet. Undoing a step
// restores captured targets and removes reported creations; churn outside
// the reported set cannot be restored.
type ToolExecutor interface {
	// Name identifies the executor for logging and circuit breaking
	Name() string

	// Execute applies the tool to the resolved targets
	Execute(ctx context.Context, targets []*entities.Entity, params map[string]any) (*ExecutionResult, error)
}
