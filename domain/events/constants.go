package events

// Event types - These define the types of events in the system
const (
	// Command lifecycle events
	TypeCommandExecutionStarted   = "command.execution.started"
	TypeCommandExecutionCompleted = "command.execution.completed"
	TypeCommandExecutionFailed    = "command.execution.failed"
	TypeCommandUndone             = "command.undone"
	TypeCommandRedone             = "command.redone"

	// Workflow lifecycle events
	TypeWorkflowStarted   = "workflow.started"
	TypeWorkflowCompleted = "workflow.completed"
	TypeWorkflowCancelled = "workflow.cancelled"
	TypeWorkflowExpired   = "workflow.expired"

	// Selection recovery events
	TypeSelectionRecovered         = "selection.recovered"
	TypeSelectionRecoveryAmbiguous = "selection.recovery.ambiguous"
	TypeSelectionMemberDropped     = "selection.member.dropped"

	// Entity change notifications for the rendering layer
	TypeEntityCreated  = "entity.created"
	TypeEntityModified = "entity.modified"
	TypeEntityDeleted  = "entity.deleted"
)

// Command sources - These identify who issued a command
const (
	SourceUser       = "user"
	SourceAutomation = "automation"
	SourceSystem     = "system"
)
