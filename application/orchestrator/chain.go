package orchestrator

// ChainStep names one tool invocation within a chain
type ChainStep struct {
	// Tool is the registered executor name
	Tool string `json:"tool" validate:"required"`

	// Params is the opaque parameter payload handed to the executor
	Params map[string]any `json:"params"`
}

// ChainRequest describes a multi-step tool run over an initial target set.
// Targets are captured once up front; each step operates on whatever those
// targets have become by the time it runs.
type ChainRequest struct {
	// Name labels the chain for logging and events
	Name string `json:"name" validate:"required"`

	// TargetIDs are the entity ids the chain starts from
	TargetIDs []string `json:"target_ids" validate:"required,min=1,dive,uuid"`

	// Steps run strictly in order
	Steps []ChainStep `json:"steps" validate:"required,min=1,dive"`

	// Atomic undoes every completed step when one fails, restoring the
	// pre-chain graph state
	Atomic bool `json:"atomic"`

	// RetainContext keeps the workflow context alive after the chain so the
	// caller can keep resolving against it
	RetainContext bool `json:"retain_context"`

	// Source identifies who requested the chain; defaults to user
	Source string `json:"source" validate:"omitempty,oneof=user automation system"`
}

// StepResult reports the outcome of one chain step
type StepResult struct {
	Tool      string `json:"tool"`
	CommandID string `json:"command_id,omitempty"`
	Resolved  int    `json:"resolved"`
	Err       error  `json:"-"`
}

// ChainResult reports the outcome of a whole chain run
type ChainResult struct {
	WorkflowID string       `json:"workflow_id"`
	Steps      []StepResult `json:"steps"`
	Completed  bool         `json:"completed"`
	RolledBack bool         `json:"rolled_back"`
}
