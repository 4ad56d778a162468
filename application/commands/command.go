package commands

import (
	"context"

	"canvascore/application/ports"
	"canvascore/application/selection"
	"canvascore/domain/core/valueobjects"
)

// State tracks a command through its lifecycle
type State string

const (
	StatePending  State = "PENDING"
	StateApplying State = "APPLYING"
	StateApplied  State = "APPLIED"
	StateFailed   State = "FAILED"
	StateUndoing  State = "UNDOING"
	StateUndone   State = "UNDONE"
	StateRedoing  State = "REDOING"
)

// Metadata carries the bookkeeping attributes of a command
type Metadata struct {
	// Source identifies who issued the command: user, automation, or system
	Source string

	// WorkflowID links the command to a workflow context, if any
	WorkflowID valueobjects.WorkflowID

	// CanMerge marks commands that may be coalesced with a following
	// command of the same shape (e.g. consecutive drags)
	CanMerge bool

	// AffectsSelection marks commands whose undo must also roll back
	// selection mapping changes recorded under them
	AffectsSelection bool
}

// Command is a single undoable unit of graph mutation. Once applied and
// placed in history, Invert must restore the exact pre-apply graph state.
type Command interface {
	// ID returns the command's unique identifier
	ID() valueobjects.CommandID

	// Description returns a human-readable summary
	Description() string

	// Metadata returns the command's bookkeeping attributes
	Metadata() Metadata

	// Snapshot returns the selection snapshot the command is bound to,
	// or nil if it is not selection-bound
	Snapshot() *selection.Snapshot

	// Apply performs the mutation
	Apply(ctx context.Context, graph ports.GraphStore) error

	// Invert restores the pre-apply state
	Invert(ctx context.Context, graph ports.GraphStore) error
}

// ReplacementReporter is implemented by commands that swap one entity for
// another. The command manager records the declared replacements as
// authoritative selection mappings after a successful apply.
type ReplacementReporter interface {
	Replacements() map[valueobjects.EntityID]valueobjects.EntityID
}

// ChangeReporter is implemented by commands that can enumerate the entity
// churn they produced. The command manager turns the set into entity-change
// notifications for the rendering layer.
type ChangeReporter interface {
	ChangeSet() ports.ChangeSet
}

// BaseCommand provides the common fields of a command
type BaseCommand struct {
	id          valueobjects.CommandID
	description string
	metadata    Metadata
	snapshot    *selection.Snapshot
}

// NewBaseCommand creates the shared command core
func NewBaseCommand(description string, metadata Metadata, snapshot *selection.Snapshot) BaseCommand {
	return BaseCommand{
		id:          valueobjects.NewCommandID(),
		description: description,
		metadata:    metadata,
		snapshot:    snapshot,
	}
}

// ID returns the command's unique identifier
func (c *BaseCommand) ID() valueobjects.CommandID {
	return c.id
}

// Description returns a human-readable summary
func (c *BaseCommand) Description() string {
	return c.description
}

// Metadata returns the command's bookkeeping attributes
func (c *BaseCommand) Metadata() Metadata {
	return c.metadata
}

// Snapshot returns the bound selection snapshot, if any
func (c *BaseCommand) Snapshot() *selection.Snapshot {
	return c.snapshot
}
