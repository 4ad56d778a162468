package selection

import (
	"time"

	"canvascore/domain/core/entities"
	"canvascore/domain/core/valueobjects"
	pkgerrors "canvascore/pkg/errors"
)

// RecoveryMetadata is the per-member information a snapshot carries so a
// member can be re-identified after its original entity is gone.
type RecoveryMetadata struct {
	Signature valueobjects.Signature
	Kind      entities.EntityKind
	LayerID   string
	Transform valueobjects.Transform
}

// Snapshot is an immutable capture of a target set at a point in time.
// The original id set never changes after construction; "current" members
// are always resolved fresh against the live graph by the selection manager.
type Snapshot struct {
	id          valueobjects.SnapshotID
	originalIDs []valueobjects.EntityID
	metadata    map[string]RecoveryMetadata
	capturedAt  time.Time
}

// Capture builds a snapshot over the given entities. The signature grid
// controls position rounding inside recovery signatures.
func Capture(targets []*entities.Entity, signatureGrid float64) (*Snapshot, error) {
	if len(targets) == 0 {
		return nil, pkgerrors.NewValidation("cannot capture a snapshot of an empty target set")
	}

	ids := make([]valueobjects.EntityID, 0, len(targets))
	metadata := make(map[string]RecoveryMetadata, len(targets))

	for _, e := range targets {
		if e == nil {
			return nil, pkgerrors.NewValidation("target set contains a nil entity")
		}
		ids = append(ids, e.ID())
		metadata[e.ID().String()] = RecoveryMetadata{
			Signature: e.Signature(signatureGrid),
			Kind:      e.Kind(),
			LayerID:   e.LayerID(),
			Transform: e.Transform(),
		}
	}

	return &Snapshot{
		id:          valueobjects.NewSnapshotID(),
		originalIDs: ids,
		metadata:    metadata,
		capturedAt:  time.Now(),
	}, nil
}

// ID returns the snapshot's identifier
func (s *Snapshot) ID() valueobjects.SnapshotID {
	return s.id
}

// OriginalIDs returns a copy of the captured id set, in capture order
func (s *Snapshot) OriginalIDs() []valueobjects.EntityID {
	out := make([]valueobjects.EntityID, len(s.originalIDs))
	copy(out, s.originalIDs)
	return out
}

// Metadata returns the recovery metadata for an original member
func (s *Snapshot) Metadata(id valueobjects.EntityID) (RecoveryMetadata, bool) {
	m, ok := s.metadata[id.String()]
	return m, ok
}

// ContainsOriginal reports whether the id is part of the captured set
func (s *Snapshot) ContainsOriginal(id valueobjects.EntityID) bool {
	_, ok := s.metadata[id.String()]
	return ok
}

// Size returns the number of captured members
func (s *Snapshot) Size() int {
	return len(s.originalIDs)
}

// CapturedAt returns when the snapshot was taken
func (s *Snapshot) CapturedAt() time.Time {
	return s.capturedAt
}

// Diff compares the captured set against another id set and returns the ids
// present only here (removed) and only there (added).
func (s *Snapshot) Diff(other []valueobjects.EntityID) (removed, added []valueobjects.EntityID) {
	otherSet := make(map[string]struct{}, len(other))
	for _, id := range other {
		otherSet[id.String()] = struct{}{}
	}

	for _, id := range s.originalIDs {
		if _, ok := otherSet[id.String()]; !ok {
			removed = append(removed, id)
		}
	}
	for _, id := range other {
		if !s.ContainsOriginal(id) {
			added = append(added, id)
		}
	}
	return removed, added
}
