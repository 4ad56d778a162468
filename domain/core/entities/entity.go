package entities

import (
	"time"

	"canvascore/domain/core/valueobjects"
	pkgerrors "canvascore/pkg/errors"
)

// EntityKind tags the broad category of a canvas element
type EntityKind string

const (
	KindImage EntityKind = "image"
	KindText  EntityKind = "text"
	KindShape EntityKind = "shape"
	KindGroup EntityKind = "group"
)

// IsValid reports whether the kind is one of the known categories
func (k EntityKind) IsValid() bool {
	switch k {
	case KindImage, KindText, KindShape, KindGroup:
		return true
	}
	return false
}

// Entity is an addressable element of the object graph. The core treats it
// as mostly opaque: a stable id, a kind tag, a layer reference, a transform,
// and an opaque style payload. All mutation goes through commands.
type Entity struct {
	// Private fields ensure encapsulation
	id        valueobjects.EntityID
	kind      EntityKind
	layerID   string
	transform valueobjects.Transform
	style     map[string]string
	createdAt time.Time
	updatedAt time.Time
	version   int
}

// NewEntity creates a new entity with validation
func NewEntity(kind EntityKind, layerID string, transform valueobjects.Transform, style map[string]string) (*Entity, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.NewValidation("unknown entity kind: " + string(kind))
	}
	if layerID == "" {
		return nil, pkgerrors.NewValidation("layerID cannot be empty")
	}

	now := time.Now()
	return &Entity{
		id:        valueobjects.NewEntityID(),
		kind:      kind,
		layerID:   layerID,
		transform: transform,
		style:     copyStyle(style),
		createdAt: now,
		updatedAt: now,
		version:   1,
	}, nil
}

// ReconstructEntity rebuilds an entity with a known id and preserved
// timestamps, for use by stores and command inverses.
func ReconstructEntity(
	id valueobjects.EntityID,
	kind EntityKind,
	layerID string,
	transform valueobjects.Transform,
	style map[string]string,
	createdAt, updatedAt time.Time,
	version int,
) (*Entity, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidation("entity ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, pkgerrors.NewValidation("unknown entity kind: " + string(kind))
	}
	if layerID == "" {
		return nil, pkgerrors.NewValidation("layerID cannot be empty")
	}

	return &Entity{
		id:        id,
		kind:      kind,
		layerID:   layerID,
		transform: transform,
		style:     copyStyle(style),
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
	}, nil
}

// ID returns the entity's unique identifier
func (e *Entity) ID() valueobjects.EntityID {
	return e.id
}

// Kind returns the entity's kind tag
func (e *Entity) Kind() EntityKind {
	return e.kind
}

// LayerID returns the layer this entity belongs to
func (e *Entity) LayerID() string {
	return e.layerID
}

// Transform returns the entity's placement on the canvas
func (e *Entity) Transform() valueobjects.Transform {
	return e.transform
}

// Version returns the entity's version, bumped on every mutation
func (e *Entity) Version() int {
	return e.version
}

// CreatedAt returns when the entity was created
func (e *Entity) CreatedAt() time.Time {
	return e.createdAt
}

// UpdatedAt returns when the entity was last updated
func (e *Entity) UpdatedAt() time.Time {
	return e.updatedAt
}

// Style returns a copy of the entity's style payload
func (e *Entity) Style() map[string]string {
	return copyStyle(e.style)
}

// StyleValue retrieves a single style attribute
func (e *Entity) StyleValue(key string) (string, bool) {
	v, ok := e.style[key]
	return v, ok
}

// SetTransform moves or resizes the entity
func (e *Entity) SetTransform(transform valueobjects.Transform) {
	if transform.Equals(e.transform) {
		return
	}
	e.transform = transform
	e.touch()
}

// SetStyle replaces the entity's style payload
func (e *Entity) SetStyle(style map[string]string) {
	e.style = copyStyle(style)
	e.touch()
}

// SetStyleValue sets a single style attribute
func (e *Entity) SetStyleValue(key, value string) error {
	if key == "" {
		return pkgerrors.NewValidation("style key cannot be empty")
	}
	if e.style == nil {
		e.style = make(map[string]string)
	}
	e.style[key] = value
	e.touch()
	return nil
}

// MoveToLayer reassigns the entity to a different layer
func (e *Entity) MoveToLayer(layerID string) error {
	if layerID == "" {
		return pkgerrors.NewValidation("layerID cannot be empty")
	}
	if layerID == e.layerID {
		return nil
	}
	e.layerID = layerID
	e.touch()
	return nil
}

// Signature computes the entity's structural fingerprint for recovery matching
func (e *Entity) Signature(grid float64) valueobjects.Signature {
	return valueobjects.ComputeSignature(string(e.kind), e.layerID, e.transform, e.style, grid)
}

// Clone returns a deep copy of the entity. Command inverses capture clones
// so that undo restores the exact pre-apply state.
func (e *Entity) Clone() *Entity {
	return &Entity{
		id:        e.id,
		kind:      e.kind,
		layerID:   e.layerID,
		transform: e.transform,
		style:     copyStyle(e.style),
		createdAt: e.createdAt,
		updatedAt: e.updatedAt,
		version:   e.version,
	}
}

// StateEquals compares the externally observable state of two entities,
// ignoring the updatedAt timestamp.
func (e *Entity) StateEquals(other *Entity) bool {
	if other == nil {
		return false
	}
	if !e.id.Equals(other.id) || e.kind != other.kind || e.layerID != other.layerID {
		return false
	}
	if !e.transform.Equals(other.transform) {
		return false
	}
	if len(e.style) != len(other.style) {
		return false
	}
	for k, v := range e.style {
		if ov, ok := other.style[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// touch bumps the version and update timestamp
func (e *Entity) touch() {
	e.updatedAt = time.Now()
	e.version++
}

// copyStyle returns a defensive copy of a style map
func copyStyle(style map[string]string) map[string]string {
	out := make(map[string]string, len(style))
	for k, v := range style {
		out[k] = v
	}
	return out
}
