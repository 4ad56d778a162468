package valueobjects

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewEntityID(t *testing.T) {
	id := NewEntityID()

	assert.NotEmpty(t, id.String())
	assert.False(t, id.IsZero())

	// Should be a valid UUID
	_, err := uuid.Parse(id.String())
	assert.NoError(t, err)
}

func TestNewEntityIDFromString(t *testing.T) {
	validUUID := uuid.New().String()

	tests := []struct {
		name    string
		input   string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid UUID string",
			input:   validUUID,
			wantErr: false,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
			errMsg:  "entity ID cannot be empty",
		},
		{
			name:    "invalid UUID format",
			input:   "not-a-uuid",
			wantErr: true,
			errMsg:  "entity ID must be a valid UUID",
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: true,
			errMsg:  "entity ID must be a valid UUID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewEntityIDFromString(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
				assert.True(t, id.IsZero())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.input, id.String())
				assert.False(t, id.IsZero())
			}
		})
	}
}

func TestEntityID_Equals(t *testing.T) {
	id1 := NewEntityID()
	id2 := NewEntityID()
	id1Copy, err := NewEntityIDFromString(id1.String())
	assert.NoError(t, err)

	assert.True(t, id1.Equals(id1Copy))
	assert.False(t, id1.Equals(id2))
}

func TestWorkflowID(t *testing.T) {
	id := NewWorkflowID()
	assert.False(t, id.IsZero())

	parsed, err := NewWorkflowIDFromString(id.String())
	assert.NoError(t, err)
	assert.True(t, id.Equals(parsed))

	_, err = NewWorkflowIDFromString("")
	assert.Error(t, err)

	_, err = NewWorkflowIDFromString("nope")
	assert.Error(t, err)
}

func TestCommandAndSnapshotIDs(t *testing.T) {
	assert.False(t, NewCommandID().IsZero())
	assert.False(t, NewSnapshotID().IsZero())
	assert.True(t, CommandID{}.IsZero())
	assert.True(t, SnapshotID{}.IsZero())
	assert.NotEqual(t, NewCommandID().String(), NewCommandID().String())
}
