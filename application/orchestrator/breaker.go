package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"canvascore/application/ports"
	"canvascore/domain/core/entities"
	pkgerrors "canvascore/pkg/errors"
)

// BreakerConfig holds circuit breaker settings for a tool executor
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns settings tuned for flaky external tools:
// trip after a sustained failure rate rather than a single bad call.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// breakerExecutor decorates a ToolExecutor with a circuit breaker. Tool
// executors wrap external collaborators (generation services, filters)
// that can fail in bursts; once the breaker opens, calls fail fast instead
// of piling up behind a dead service.
type breakerExecutor struct {
	inner  ports.ToolExecutor
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// WrapWithBreaker returns the executor guarded by a circuit breaker
func WrapWithBreaker(inner ports.ToolExecutor, cfg BreakerConfig, logger *zap.Logger) ports.ToolExecutor {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Tool executor breaker state changed",
				zap.String("executor", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &breakerExecutor{inner: inner, cb: cb, logger: logger}
}

// Name returns the wrapped executor's name
func (b *breakerExecutor) Name() string {
	return b.inner.Name()
}

// Execute runs the wrapped executor under breaker protection. An open
// breaker surfaces as an execution failure, which aborts the chain the
// same way a failing tool would.
func (b *breakerExecutor) Execute(ctx context.Context, targets []*entities.Entity, params map[string]any) (*ports.ExecutionResult, error) {
	out, err := b.cb.Execute(func() (any, error) {
		result, err := b.inner.Execute(ctx, targets, params)
		if err != nil {
			return nil, err
		}
		if result != nil && !result.Success {
			return result, result.Err
		}
		return result, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, pkgerrors.NewExecutionFailed("tool "+b.inner.Name()+" unavailable", err)
		}
		return nil, err
	}
	result, _ := out.(*ports.ExecutionResult)
	return result, nil
}
