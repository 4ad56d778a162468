package orchestrator

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"canvascore/application/commands"
	"canvascore/application/ports"
	"canvascore/application/selection"
	"canvascore/domain/core/entities"
	"canvascore/domain/core/valueobjects"
	"canvascore/domain/events"
	pkgerrors "canvascore/pkg/errors"
	"canvascore/pkg/observability"
)

// Orchestrator runs tool chains: sequences of executor invocations over a
// target set whose identities may churn between steps. It owns the glue the
// two subsystems need to cooperate — every step re-resolves its targets
// through the selection manager, runs as an undoable command through the
// command manager, and reports its churn back for the next step.
type Orchestrator struct {
	mu        sync.RWMutex
	executors map[string]ports.ToolExecutor

	graph      ports.GraphStore
	commandMgr *commands.Manager
	selection  *selection.Manager
	breakerCfg BreakerConfig

	validate *validator.Validate
	metrics  *observability.Collector
	logger   *zap.Logger
}

// NewOrchestrator creates a chain orchestrator
func NewOrchestrator(
	graph ports.GraphStore,
	commandMgr *commands.Manager,
	selectionMgr *selection.Manager,
	metrics *observability.Collector,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		executors:  make(map[string]ports.ToolExecutor),
		graph:      graph,
		commandMgr: commandMgr,
		selection:  selectionMgr,
		breakerCfg: DefaultBreakerConfig(),
		validate:   validator.New(),
		metrics:    metrics,
		logger:     logger,
	}
}

// RegisterExecutor makes a tool available to chains, wrapped in a circuit
// breaker. Registering the same name twice replaces the previous executor.
func (o *Orchestrator) RegisterExecutor(executor ports.ToolExecutor) error {
	if executor == nil || executor.Name() == "" {
		return pkgerrors.NewValidation("executor must have a name")
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.executors[executor.Name()] = WrapWithBreaker(executor, o.breakerCfg, o.logger)
	return nil
}

// RunChain executes the chain's steps strictly in order against the request
// targets. Targets are captured once up front; each step resolves what those
// targets have become before it runs, so identity churn from earlier steps
// never leaves a step holding dead ids.
//
// A step failure aborts the remaining steps. Atomic chains then undo the
// completed steps in reverse, restoring the pre-chain graph state; otherwise
// completed steps stay applied and undoable. Cancellation between steps is
// not a failure: applied steps always stay undoable and the workflow context
// is released. Otherwise the context is released when the chain finishes
// unless RetainContext is set.
func (o *Orchestrator) RunChain(ctx context.Context, req ChainRequest) (*ChainResult, error) {
	if err := o.validate.Struct(req); err != nil {
		return nil, pkgerrors.NewValidation("invalid chain request: " + err.Error())
	}
	if req.Source == "" {
		req.Source = events.SourceUser
	}

	// Reject unknown tools before touching any state
	execs := make([]ports.ToolExecutor, len(req.Steps))
	o.mu.RLock()
	for i, step := range req.Steps {
		exec, ok := o.executors[step.Tool]
		if !ok {
			o.mu.RUnlock()
			return nil, pkgerrors.NewValidation("unknown tool: " + step.Tool)
		}
		execs[i] = exec
	}
	o.mu.RUnlock()

	targets, err := o.loadTargets(ctx, req.TargetIDs)
	if err != nil {
		return nil, err
	}

	snapshot, err := o.selection.CaptureSnapshot(targets)
	if err != nil {
		return nil, err
	}
	wf, err := o.selection.CreateWorkflow(snapshot)
	if err != nil {
		return nil, err
	}

	result := &ChainResult{WorkflowID: wf.ID().String()}
	if !req.RetainContext {
		defer func() {
			if releaseErr := o.selection.ReleaseWorkflow(wf.ID()); releaseErr != nil {
				o.logger.Warn("Failed to release workflow after chain",
					zap.String("workflow_id", wf.ID().String()),
					zap.Error(releaseErr),
				)
			}
		}()
	}

	o.logger.Info("Chain started",
		zap.String("chain", req.Name),
		zap.String("workflow_id", wf.ID().String()),
		zap.Int("targets", len(targets)),
		zap.Int("steps", len(req.Steps)),
	)

	for i, step := range req.Steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return o.cancelChain(req, result, wf.ID(), i,
				pkgerrors.NewExecutionFailed("chain cancelled before step "+step.Tool, ctxErr))
		}

		resolved, err := o.selection.Resolve(ctx, wf.ID())
		if err != nil {
			return o.abortChain(ctx, req, result, i, err)
		}
		if len(resolved) == 0 {
			return o.abortChain(ctx, req, result, i,
				pkgerrors.NewExecutionFailed("chain step "+step.Tool+" has nothing to operate on", nil))
		}

		cmd := newStepCommand(execs[i], resolved, step.Params, commands.Metadata{
			Source:     req.Source,
			WorkflowID: wf.ID(),
		}, snapshot)

		if err := o.commandMgr.Execute(ctx, cmd); err != nil {
			o.metrics.ChainSteps.WithLabelValues("failure").Inc()
			result.Steps = append(result.Steps, StepResult{
				Tool:     step.Tool,
				Resolved: len(resolved),
				Err:      err,
			})
			return o.abortChain(ctx, req, result, i, err)
		}

		if err := o.selection.ReportChanges(wf.ID(), cmd.ChangeSet(), cmd.ID()); err != nil {
			o.logger.Warn("Failed to report step changes",
				zap.String("workflow_id", wf.ID().String()),
				zap.String("tool", step.Tool),
				zap.Error(err),
			)
		}

		o.metrics.ChainSteps.WithLabelValues("success").Inc()
		result.Steps = append(result.Steps, StepResult{
			Tool:      step.Tool,
			CommandID: cmd.ID().String(),
			Resolved:  len(resolved),
		})
	}

	result.Completed = true
	o.logger.Info("Chain completed",
		zap.String("chain", req.Name),
		zap.String("workflow_id", wf.ID().String()),
		zap.Int("steps", len(result.Steps)),
	)
	return result, nil
}

// cancelChain stops the chain between steps. Cancellation is not a failure:
// applied steps stay in history as ordinary undoable commands and no
// rollback runs regardless of the Atomic flag. The workflow context is
// released even when the caller asked to retain it.
func (o *Orchestrator) cancelChain(req ChainRequest, result *ChainResult, workflowID valueobjects.WorkflowID, completedSteps int, cause error) (*ChainResult, error) {
	o.logger.Info("Chain cancelled",
		zap.String("chain", req.Name),
		zap.Int("completed_steps", completedSteps),
	)

	if req.RetainContext {
		if err := o.selection.ReleaseWorkflow(workflowID); err != nil {
			o.logger.Warn("Failed to release workflow after cancellation",
				zap.String("workflow_id", workflowID.String()),
				zap.Error(err),
			)
		}
	}
	return result, cause
}

// abortChain stops the chain at the failed step and, for atomic chains,
// undoes the completed steps in reverse order.
func (o *Orchestrator) abortChain(ctx context.Context, req ChainRequest, result *ChainResult, completedSteps int, cause error) (*ChainResult, error) {
	o.logger.Error("Chain aborted",
		zap.String("chain", req.Name),
		zap.Int("completed_steps", completedSteps),
		zap.Error(cause),
	)

	if req.Atomic && completedSteps > 0 {
		rolledBack := true
		for i := completedSteps - 1; i >= 0; i-- {
			// Rollback must run even when the step failure raced a cancellation
			if err := o.commandMgr.Undo(context.WithoutCancel(ctx)); err != nil {
				o.logger.Error("Chain rollback step failed",
					zap.String("chain", req.Name),
					zap.Int("step", i),
					zap.Error(err),
				)
				rolledBack = false
				break
			}
		}
		if rolledBack {
			// The undone steps must not linger as a redoable tail; the
			// failed chain leaves no observable trace
			o.commandMgr.DropRedoTail()
		}
		result.RolledBack = rolledBack
	}
	return result, cause
}

// loadTargets fetches and validates the chain's initial target entities
func (o *Orchestrator) loadTargets(ctx context.Context, ids []string) ([]*entities.Entity, error) {
	targets := make([]*entities.Entity, 0, len(ids))
	for _, raw := range ids {
		id, err := valueobjects.NewEntityIDFromString(raw)
		if err != nil {
			return nil, err
		}
		entity, err := o.graph.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		targets = append(targets, entity)
	}
	return targets, nil
}
