package memory

import (
	"context"
	"sync"

	"canvascore/application/ports"
	"canvascore/domain/core/entities"
	"canvascore/domain/core/valueobjects"
	pkgerrors "canvascore/pkg/errors"
)

// GraphStore provides an in-memory implementation of ports.GraphStore.
// A single RWMutex enforces the one-writer-at-a-time discipline; readers
// are never exposed to a half-applied write.
type GraphStore struct {
	mu       sync.RWMutex
	entities map[string]*entities.Entity
}

// NewGraphStore creates an empty in-memory graph store
func NewGraphStore() *GraphStore {
	return &GraphStore{
		entities: make(map[string]*entities.Entity),
	}
}

// Get returns a detached copy of the entity with the given id. Callers
// mutate the copy and Put it back; the stored state never aliases out.
func (s *GraphStore) Get(ctx context.Context, id valueobjects.EntityID) (*entities.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, exists := s.entities[id.String()]
	if !exists {
		return nil, pkgerrors.NewNotFound("entity " + id.String())
	}
	return entity.Clone(), nil
}

// Exists reports whether an entity with the given id is live
func (s *GraphStore) Exists(ctx context.Context, id valueobjects.EntityID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.entities[id.String()]
	return exists
}

// Put inserts or replaces an entity
func (s *GraphStore) Put(ctx context.Context, entity *entities.Entity) error {
	if entity == nil || entity.ID().IsZero() {
		return pkgerrors.NewValidation("entity must have an id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entities[entity.ID().String()] = entity
	return nil
}

// Delete removes an entity
func (s *GraphStore) Delete(ctx context.Context, id valueobjects.EntityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entities[id.String()]; !exists {
		return pkgerrors.NewNotFound("entity " + id.String())
	}
	delete(s.entities, id.String())
	return nil
}

// List returns detached copies of all live entities
func (s *GraphStore) List(ctx context.Context) ([]*entities.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.Entity, 0, len(s.entities))
	for _, e := range s.entities {
		out = append(out, e.Clone())
	}
	return out, nil
}

// FindByKindAndLayer returns detached copies of the live entities matching
// both kind and layer
func (s *GraphStore) FindByKindAndLayer(ctx context.Context, kind entities.EntityKind, layerID string) ([]*entities.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*entities.Entity{}
	for _, e := range s.entities {
		if e.Kind() == kind && e.LayerID() == layerID {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

// Count returns the number of live entities
func (s *GraphStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entities)
}

// Snapshot returns a deep copy of the full graph state, used by tests to
// compare pre- and post-batch states.
func (s *GraphStore) Snapshot(ctx context.Context) map[string]*entities.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*entities.Entity, len(s.entities))
	for id, e := range s.entities {
		out[id] = e.Clone()
	}
	return out
}

var _ ports.GraphStore = (*GraphStore)(nil)
