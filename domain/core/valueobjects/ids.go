package valueobjects

import (
	"strings"

	"github.com/google/uuid"

	pkgerrors "canvascore/pkg/errors"
)

// EntityID is a value object that ensures valid entity identifiers
type EntityID struct {
	value string
}

// NewEntityID creates a new random EntityID
func NewEntityID() EntityID {
	return EntityID{value: uuid.New().String()}
}

// NewEntityIDFromString creates an EntityID from a string, validating it's a proper UUID
func NewEntityIDFromString(id string) (EntityID, error) {
	if strings.TrimSpace(id) == "" {
		return EntityID{}, pkgerrors.NewValidation("entity ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return EntityID{}, pkgerrors.NewValidation("entity ID must be a valid UUID")
	}
	return EntityID{value: id}, nil
}

// String returns the string representation of the EntityID
func (id EntityID) String() string {
	return id.value
}

// Equals checks if two EntityIDs are equal
func (id EntityID) Equals(other EntityID) bool {
	return id.value == other.value
}

// IsZero checks if the EntityID is unset
func (id EntityID) IsZero() bool {
	return id.value == ""
}

// SnapshotID identifies a selection snapshot
type SnapshotID struct {
	value string
}

// NewSnapshotID creates a new random SnapshotID
func NewSnapshotID() SnapshotID {
	return SnapshotID{value: uuid.New().String()}
}

// String returns the string representation of the SnapshotID
func (id SnapshotID) String() string {
	return id.value
}

// IsZero checks if the SnapshotID is unset
func (id SnapshotID) IsZero() bool {
	return id.value == ""
}

// WorkflowID identifies a multi-step workflow context
type WorkflowID struct {
	value string
}

// NewWorkflowID creates a new random WorkflowID
func NewWorkflowID() WorkflowID {
	return WorkflowID{value: uuid.New().String()}
}

// NewWorkflowIDFromString creates a WorkflowID from a string, validating it's a proper UUID
func NewWorkflowIDFromString(id string) (WorkflowID, error) {
	if strings.TrimSpace(id) == "" {
		return WorkflowID{}, pkgerrors.NewValidation("workflow ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return WorkflowID{}, pkgerrors.NewValidation("workflow ID must be a valid UUID")
	}
	return WorkflowID{value: id}, nil
}

// String returns the string representation of the WorkflowID
func (id WorkflowID) String() string {
	return id.value
}

// Equals checks if two WorkflowIDs are equal
func (id WorkflowID) Equals(other WorkflowID) bool {
	return id.value == other.value
}

// IsZero checks if the WorkflowID is unset
func (id WorkflowID) IsZero() bool {
	return id.value == ""
}

// CommandID identifies a command in the history log
type CommandID struct {
	value string
}

// NewCommandID creates a new random CommandID
func NewCommandID() CommandID {
	return CommandID{value: uuid.New().String()}
}

// String returns the string representation of the CommandID
func (id CommandID) String() string {
	return id.value
}

// Equals checks if two CommandIDs are equal
func (id CommandID) Equals(other CommandID) bool {
	return id.value == other.value
}

// IsZero checks if the CommandID is unset
func (id CommandID) IsZero() bool {
	return id.value == ""
}
