package events

// CommandExecutionStarted is emitted when a command enters the Applying state
type CommandExecutionStarted struct {
	BaseEvent
	CommandID   string `json:"commandId"`
	Description string `json:"description"`
	Source      string `json:"source"`
	WorkflowID  string `json:"workflowId,omitempty"`
}

// NewCommandExecutionStarted creates a new execution started event
func NewCommandExecutionStarted(commandID, description, source, workflowID string) *CommandExecutionStarted {
	return &CommandExecutionStarted{
		BaseEvent:   newBase(TypeCommandExecutionStarted, commandID),
		CommandID:   commandID,
		Description: description,
		Source:      source,
		WorkflowID:  workflowID,
	}
}

// CommandExecutionCompleted is emitted when a command's apply succeeds and
// the command has been appended to history
type CommandExecutionCompleted struct {
	BaseEvent
	CommandID   string `json:"commandId"`
	Description string `json:"description"`
	WorkflowID  string `json:"workflowId,omitempty"`
}

// NewCommandExecutionCompleted creates a new execution completed event
func NewCommandExecutionCompleted(commandID, description, workflowID string) *CommandExecutionCompleted {
	return &CommandExecutionCompleted{
		BaseEvent:   newBase(TypeCommandExecutionCompleted, commandID),
		CommandID:   commandID,
		Description: description,
		WorkflowID:  workflowID,
	}
}

// CommandExecutionFailed is emitted when a command's apply returns an error.
// The graph is guaranteed unchanged and the command is not in history.
type CommandExecutionFailed struct {
	BaseEvent
	CommandID   string `json:"commandId"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// NewCommandExecutionFailed creates a new execution failed event
func NewCommandExecutionFailed(commandID, description, reason string) *CommandExecutionFailed {
	return &CommandExecutionFailed{
		BaseEvent:   newBase(TypeCommandExecutionFailed, commandID),
		CommandID:   commandID,
		Description: description,
		Reason:      reason,
	}
}

// CommandUndone is emitted after a command's inverse has been applied
type CommandUndone struct {
	BaseEvent
	CommandID   string `json:"commandId"`
	Description string `json:"description"`
	WorkflowID  string `json:"workflowId,omitempty"`
}

// NewCommandUndone creates a new command undone event
func NewCommandUndone(commandID, description, workflowID string) *CommandUndone {
	return &CommandUndone{
		BaseEvent:   newBase(TypeCommandUndone, commandID),
		CommandID:   commandID,
		Description: description,
		WorkflowID:  workflowID,
	}
}

// CommandRedone is emitted after a previously undone command has been re-applied
type CommandRedone struct {
	BaseEvent
	CommandID   string `json:"commandId"`
	Description string `json:"description"`
	WorkflowID  string `json:"workflowId,omitempty"`
}

// NewCommandRedone creates a new command redone event
func NewCommandRedone(commandID, description, workflowID string) *CommandRedone {
	return &CommandRedone{
		BaseEvent:   newBase(TypeCommandRedone, commandID),
		CommandID:   commandID,
		Description: description,
		WorkflowID:  workflowID,
	}
}

// EntityChanged notifies the rendering layer that an entity was created,
// modified, or deleted by a command apply or invert
type EntityChanged struct {
	BaseEvent
	EntityID string `json:"entityId"`
}

// NewEntityChanged creates an entity change notification of the given type
func NewEntityChanged(changeType, entityID string) *EntityChanged {
	return &EntityChanged{
		BaseEvent: newBase(changeType, entityID),
		EntityID:  entityID,
	}
}
