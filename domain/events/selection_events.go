package events

// SelectionRecovered is emitted when similarity recovery re-identified a
// snapshot member after its original entity disappeared
type SelectionRecovered struct {
	BaseEvent
	WorkflowID string `json:"workflowId"`
	OriginalID string `json:"originalId"`
	CurrentID  string `json:"currentId"`
	Strategy   string `json:"strategy"`
}

// NewSelectionRecovered creates a new recovery event
func NewSelectionRecovered(workflowID, originalID, currentID, strategy string) *SelectionRecovered {
	return &SelectionRecovered{
		BaseEvent:  newBase(TypeSelectionRecovered, workflowID),
		WorkflowID: workflowID,
		OriginalID: originalID,
		CurrentID:  currentID,
		Strategy:   strategy,
	}
}

// SelectionRecoveryAmbiguous is emitted when recovery had to break a tie
// between multiple candidates. Informational, never fatal; recorded so the
// tie-break heuristic can be tuned later.
type SelectionRecoveryAmbiguous struct {
	BaseEvent
	WorkflowID     string `json:"workflowId"`
	OriginalID     string `json:"originalId"`
	ChosenID       string `json:"chosenId"`
	CandidateCount int    `json:"candidateCount"`
	TieBreakRule   string `json:"tieBreakRule"`
}

// NewSelectionRecoveryAmbiguous creates a new ambiguous recovery event
func NewSelectionRecoveryAmbiguous(workflowID, originalID, chosenID string, candidateCount int, rule string) *SelectionRecoveryAmbiguous {
	return &SelectionRecoveryAmbiguous{
		BaseEvent:      newBase(TypeSelectionRecoveryAmbiguous, workflowID),
		WorkflowID:     workflowID,
		OriginalID:     originalID,
		ChosenID:       chosenID,
		CandidateCount: candidateCount,
		TieBreakRule:   rule,
	}
}

// SelectionMemberDropped is emitted when a snapshot member could not be
// resolved and was dropped from the resolved set
type SelectionMemberDropped struct {
	BaseEvent
	WorkflowID string `json:"workflowId"`
	OriginalID string `json:"originalId"`
}

// NewSelectionMemberDropped creates a new member dropped event
func NewSelectionMemberDropped(workflowID, originalID string) *SelectionMemberDropped {
	return &SelectionMemberDropped{
		BaseEvent:  newBase(TypeSelectionMemberDropped, workflowID),
		WorkflowID: workflowID,
		OriginalID: originalID,
	}
}

// WorkflowStarted is emitted when a workflow context is created
type WorkflowStarted struct {
	BaseEvent
	WorkflowID string `json:"workflowId"`
	SnapshotID string `json:"snapshotId"`
	Members    int    `json:"members"`
}

// NewWorkflowStarted creates a new workflow started event
func NewWorkflowStarted(workflowID, snapshotID string, members int) *WorkflowStarted {
	return &WorkflowStarted{
		BaseEvent:  newBase(TypeWorkflowStarted, workflowID),
		WorkflowID: workflowID,
		SnapshotID: snapshotID,
		Members:    members,
	}
}

// WorkflowReleased is emitted when a workflow context ends, with the reason
// recorded as the event type (completed, cancelled, or expired)
type WorkflowReleased struct {
	BaseEvent
	WorkflowID string `json:"workflowId"`
}

// NewWorkflowReleased creates a workflow lifecycle event of the given type
func NewWorkflowReleased(eventType, workflowID string) *WorkflowReleased {
	return &WorkflowReleased{
		BaseEvent:  newBase(eventType, workflowID),
		WorkflowID: workflowID,
	}
}
