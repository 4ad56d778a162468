package commands

import (
	"context"

	"canvascore/application/ports"
	"canvascore/application/selection"
	"canvascore/domain/core/entities"
	"canvascore/domain/core/valueobjects"
	pkgerrors "canvascore/pkg/errors"
)

// CreateEntityCommand adds a new entity to the graph
type CreateEntityCommand struct {
	BaseCommand
	entity *entities.Entity
}

// NewCreateEntityCommand creates a command that inserts the given entity
func NewCreateEntityCommand(entity *entities.Entity, metadata Metadata) (*CreateEntityCommand, error) {
	if entity == nil {
		return nil, pkgerrors.NewValidation("entity cannot be nil")
	}
	return &CreateEntityCommand{
		BaseCommand: NewBaseCommand("create "+string(entity.Kind()), metadata, nil),
		entity:      entity,
	}, nil
}

// Apply inserts the entity
func (c *CreateEntityCommand) Apply(ctx context.Context, graph ports.GraphStore) error {
	if graph.Exists(ctx, c.entity.ID()) {
		return pkgerrors.NewConflict("entity " + c.entity.ID().String() + " already exists")
	}
	return graph.Put(ctx, c.entity.Clone())
}

// Invert removes the entity
func (c *CreateEntityCommand) Invert(ctx context.Context, graph ports.GraphStore) error {
	return graph.Delete(ctx, c.entity.ID())
}

// EntityID returns the id of the entity this command creates
func (c *CreateEntityCommand) EntityID() valueobjects.EntityID {
	return c.entity.ID()
}

// DeleteEntityCommand removes an entity, capturing its state for undo
type DeleteEntityCommand struct {
	BaseCommand
	entityID valueobjects.EntityID
	captured *entities.Entity
}

// NewDeleteEntityCommand creates a command that deletes the entity with the given id
func NewDeleteEntityCommand(entityID valueobjects.EntityID, metadata Metadata, snapshot *selection.Snapshot) (*DeleteEntityCommand, error) {
	if entityID.IsZero() {
		return nil, pkgerrors.NewValidation("entityID cannot be empty")
	}
	return &DeleteEntityCommand{
		BaseCommand: NewBaseCommand("delete entity", metadata, snapshot),
		entityID:    entityID,
	}, nil
}

// Apply captures the entity's state and removes it
func (c *DeleteEntityCommand) Apply(ctx context.Context, graph ports.GraphStore) error {
	entity, err := graph.Get(ctx, c.entityID)
	if err != nil {
		return err
	}
	c.captured = entity.Clone()
	return graph.Delete(ctx, c.entityID)
}

// Invert restores the captured entity
func (c *DeleteEntityCommand) Invert(ctx context.Context, graph ports.GraphStore) error {
	if c.captured == nil {
		return pkgerrors.NewInternal("delete command has no captured state to restore", nil)
	}
	return graph.Put(ctx, c.captured.Clone())
}

// UpdateTransformCommand moves or resizes an entity
type UpdateTransformCommand struct {
	BaseCommand
	entityID  valueobjects.EntityID
	transform valueobjects.Transform
	previous  *entities.Entity
}

// NewUpdateTransformCommand creates a command that sets the entity's transform
func NewUpdateTransformCommand(entityID valueobjects.EntityID, transform valueobjects.Transform, metadata Metadata, snapshot *selection.Snapshot) (*UpdateTransformCommand, error) {
	if entityID.IsZero() {
		return nil, pkgerrors.NewValidation("entityID cannot be empty")
	}
	metadata.CanMerge = true
	return &UpdateTransformCommand{
		BaseCommand: NewBaseCommand("update transform", metadata, snapshot),
		entityID:    entityID,
		transform:   transform,
	}, nil
}

// Apply replaces the entity with a mutated copy, keeping the original for undo
func (c *UpdateTransformCommand) Apply(ctx context.Context, graph ports.GraphStore) error {
	entity, err := graph.Get(ctx, c.entityID)
	if err != nil {
		return err
	}
	c.previous = entity.Clone()

	next := entity.Clone()
	next.SetTransform(c.transform)
	return graph.Put(ctx, next)
}

// Invert restores the pre-apply entity state
func (c *UpdateTransformCommand) Invert(ctx context.Context, graph ports.GraphStore) error {
	if c.previous == nil {
		return pkgerrors.NewInternal("transform command has no captured state to restore", nil)
	}
	return graph.Put(ctx, c.previous.Clone())
}

// UpdateStyleCommand replaces an entity's style payload
type UpdateStyleCommand struct {
	BaseCommand
	entityID valueobjects.EntityID
	style    map[string]string
	previous *entities.Entity
}

// NewUpdateStyleCommand creates a command that sets the entity's style
func NewUpdateStyleCommand(entityID valueobjects.EntityID, style map[string]string, metadata Metadata, snapshot *selection.Snapshot) (*UpdateStyleCommand, error) {
	if entityID.IsZero() {
		return nil, pkgerrors.NewValidation("entityID cannot be empty")
	}
	return &UpdateStyleCommand{
		BaseCommand: NewBaseCommand("update style", metadata, snapshot),
		entityID:    entityID,
		style:       style,
	}, nil
}

// Apply replaces the entity with a restyled copy
func (c *UpdateStyleCommand) Apply(ctx context.Context, graph ports.GraphStore) error {
	entity, err := graph.Get(ctx, c.entityID)
	if err != nil {
		return err
	}
	c.previous = entity.Clone()

	next := entity.Clone()
	next.SetStyle(c.style)
	return graph.Put(ctx, next)
}

// Invert restores the pre-apply entity state
func (c *UpdateStyleCommand) Invert(ctx context.Context, graph ports.GraphStore) error {
	if c.previous == nil {
		return pkgerrors.NewInternal("style command has no captured state to restore", nil)
	}
	return graph.Put(ctx, c.previous.Clone())
}

// MoveToLayerCommand reassigns an entity to a different layer
type MoveToLayerCommand struct {
	BaseCommand
	entityID valueobjects.EntityID
	layerID  string
	previous *entities.Entity
}

// NewMoveToLayerCommand creates a command that moves the entity to the layer
func NewMoveToLayerCommand(entityID valueobjects.EntityID, layerID string, metadata Metadata, snapshot *selection.Snapshot) (*MoveToLayerCommand, error) {
	if entityID.IsZero() {
		return nil, pkgerrors.NewValidation("entityID cannot be empty")
	}
	if layerID == "" {
		return nil, pkgerrors.NewValidation("layerID cannot be empty")
	}
	return &MoveToLayerCommand{
		BaseCommand: NewBaseCommand("move to layer "+layerID, metadata, snapshot),
		entityID:    entityID,
		layerID:     layerID,
	}, nil
}

// Apply replaces the entity with a copy on the target layer
func (c *MoveToLayerCommand) Apply(ctx context.Context, graph ports.GraphStore) error {
	entity, err := graph.Get(ctx, c.entityID)
	if err != nil {
		return err
	}
	c.previous = entity.Clone()

	next := entity.Clone()
	if err := next.MoveToLayer(c.layerID); err != nil {
		return err
	}
	return graph.Put(ctx, next)
}

// Invert restores the pre-apply entity state
func (c *MoveToLayerCommand) Invert(ctx context.Context, graph ports.GraphStore) error {
	if c.previous == nil {
		return pkgerrors.NewInternal("layer command has no captured state to restore", nil)
	}
	return graph.Put(ctx, c.previous.Clone())
}

// ReplaceEntityCommand deletes one entity and creates another in its place,
// the shape of churn produced by destructive tools ("apply filter" builds a
// new bitmap instead of mutating the old one). The old→new identity link is
// declared so selection recovery never has to guess.
type ReplaceEntityCommand struct {
	BaseCommand
	oldID       valueobjects.EntityID
	replacement *entities.Entity
	captured    *entities.Entity
}

// NewReplaceEntityCommand creates a command that swaps oldID for the replacement entity
func NewReplaceEntityCommand(oldID valueobjects.EntityID, replacement *entities.Entity, metadata Metadata, snapshot *selection.Snapshot) (*ReplaceEntityCommand, error) {
	if oldID.IsZero() {
		return nil, pkgerrors.NewValidation("oldID cannot be empty")
	}
	if replacement == nil {
		return nil, pkgerrors.NewValidation("replacement cannot be nil")
	}
	if oldID.Equals(replacement.ID()) {
		return nil, pkgerrors.NewValidation("replacement must have a new id")
	}
	metadata.AffectsSelection = true
	return &ReplaceEntityCommand{
		BaseCommand: NewBaseCommand("replace entity", metadata, snapshot),
		oldID:       oldID,
		replacement: replacement,
	}, nil
}

// Apply captures the old entity, deletes it, and inserts the replacement.
// Staged so that a failed insert leaves the graph untouched.
func (c *ReplaceEntityCommand) Apply(ctx context.Context, graph ports.GraphStore) error {
	old, err := graph.Get(ctx, c.oldID)
	if err != nil {
		return err
	}
	if graph.Exists(ctx, c.replacement.ID()) {
		return pkgerrors.NewConflict("replacement " + c.replacement.ID().String() + " already exists")
	}
	c.captured = old.Clone()

	if err := graph.Delete(ctx, c.oldID); err != nil {
		return err
	}
	if err := graph.Put(ctx, c.replacement.Clone()); err != nil {
		// Restore the deleted original so a failed apply has no effect
		if restoreErr := graph.Put(ctx, c.captured.Clone()); restoreErr != nil {
			return pkgerrors.NewInternal("failed to restore entity after aborted replace", restoreErr)
		}
		return err
	}
	return nil
}

// Invert removes the replacement and restores the original entity
func (c *ReplaceEntityCommand) Invert(ctx context.Context, graph ports.GraphStore) error {
	if c.captured == nil {
		return pkgerrors.NewInternal("replace command has no captured state to restore", nil)
	}
	if err := graph.Delete(ctx, c.replacement.ID()); err != nil {
		return err
	}
	return graph.Put(ctx, c.captured.Clone())
}

// Replacements declares the old→new identity link for selection mapping
func (c *ReplaceEntityCommand) Replacements() map[valueobjects.EntityID]valueobjects.EntityID {
	return map[valueobjects.EntityID]valueobjects.EntityID{c.oldID: c.replacement.ID()}
}

// ReplacementID returns the id of the entity that stands in for the old one
func (c *ReplaceEntityCommand) ReplacementID() valueobjects.EntityID {
	return c.replacement.ID()
}

var _ ReplacementReporter = (*ReplaceEntityCommand)(nil)
