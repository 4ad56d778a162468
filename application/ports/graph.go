package ports

import (
	"context"

	"canvascore/domain/core/entities"
	"canvascore/domain/core/valueobjects"
)

// GraphStore is the minimal read/write surface of the object graph.
// Writes are serialized by the implementation; reads are never torn by an
// in-progress write. Reads return detached copies: mutating a returned
// entity changes nothing until it is written back with Put. All mutation
// flows through commands — no component bypasses command execution to
// write here directly.
type GraphStore interface {
	// Get returns a detached copy of the entity with the given id
	Get(ctx context.Context, id valueobjects.EntityID) (*entities.Entity, error)

	// Exists reports whether an entity with the given id is live
	Exists(ctx context.Context, id valueobjects.EntityID) bool

	// Put inserts or replaces an entity
	Put(ctx context.Context, entity *entities.Entity) error

	// Delete removes an entity; returns a not found error if absent
	Delete(ctx context.Context, id valueobjects.EntityID) error

	// List returns detached copies of all live entities
	List(ctx context.Context) ([]*entities.Entity, error)

	// FindByKindAndLayer returns detached copies of the live entities
	// matching both kind and layer
	FindByKindAndLayer(ctx context.Context, kind entities.EntityKind, layerID string) ([]*entities.Entity, error)

	// Count returns the number of live entities
	Count(ctx context.Context) int
}
