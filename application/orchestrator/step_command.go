package orchestrator

import (
	"context"

	"canvascore/application/commands"
	"canvascore/application/ports"
	"canvascore/application/selection"
	"canvascore/domain/core/entities"
	"canvascore/domain/core/valueobjects"
	pkgerrors "canvascore/pkg/errors"
)

// stepCommand adapts one tool invocation into an undoable command. The
// executor does the actual graph work; the command's job is capture and
// restore. Before running the tool it clones every resolved target, and on
// invert it removes whatever the tool created and puts the clones back,
// which restores modified, deleted, and replaced targets alike.
type stepCommand struct {
	commands.BaseCommand

	executor ports.ToolExecutor
	targets  []*entities.Entity
	params   map[string]any

	captured []*entities.Entity
	changes  ports.ChangeSet
}

func newStepCommand(
	executor ports.ToolExecutor,
	targets []*entities.Entity,
	params map[string]any,
	metadata commands.Metadata,
	snapshot *selection.Snapshot,
) *stepCommand {
	metadata.AffectsSelection = true
	return &stepCommand{
		BaseCommand: commands.NewBaseCommand("tool "+executor.Name(), metadata, snapshot),
		executor:    executor,
		targets:     targets,
		params:      params,
	}
}

// Apply captures the targets' pre-tool state and runs the executor
func (c *stepCommand) Apply(ctx context.Context, graph ports.GraphStore) error {
	captured := make([]*entities.Entity, 0, len(c.targets))
	for _, target := range c.targets {
		live, err := graph.Get(ctx, target.ID())
		if err != nil {
			return err
		}
		captured = append(captured, live.Clone())
	}

	result, err := c.executor.Execute(ctx, c.targets, c.params)
	if err != nil {
		return err
	}
	if result == nil {
		return pkgerrors.NewInternal("executor "+c.executor.Name()+" returned no result", nil)
	}
	if !result.Success {
		return pkgerrors.NewExecutionFailed("tool "+c.executor.Name()+" failed", result.Err)
	}

	c.captured = captured
	c.changes = result.Changes
	return nil
}

// Invert deletes what the tool created and restores the captured targets
func (c *stepCommand) Invert(ctx context.Context, graph ports.GraphStore) error {
	for _, id := range c.changes.CreatedIDs {
		if graph.Exists(ctx, id) {
			if err := graph.Delete(ctx, id); err != nil {
				return err
			}
		}
	}
	for _, newID := range c.changes.Replacements {
		if graph.Exists(ctx, newID) {
			if err := graph.Delete(ctx, newID); err != nil {
				return err
			}
		}
	}
	for _, captured := range c.captured {
		if err := graph.Put(ctx, captured.Clone()); err != nil {
			return err
		}
	}
	return nil
}

// Replacements declares the executor's reported old→new identity links
func (c *stepCommand) Replacements() map[valueobjects.EntityID]valueobjects.EntityID {
	return c.changes.Replacements
}

// ChangeSet returns the churn the executor reported
func (c *stepCommand) ChangeSet() ports.ChangeSet {
	return c.changes
}

var _ commands.Command = (*stepCommand)(nil)
var _ commands.ReplacementReporter = (*stepCommand)(nil)
var _ commands.ChangeReporter = (*stepCommand)(nil)
