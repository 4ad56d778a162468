package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds all Prometheus metrics for the core. Each collector owns
// its registry; construct one per process and inject it where needed.
type Collector struct {
	registry *prometheus.Registry

	// Command metrics
	CommandsExecuted *prometheus.CounterVec
	CommandDuration  *prometheus.HistogramVec
	UndoOperations   prometheus.Counter
	RedoOperations   prometheus.Counter

	// Selection recovery metrics
	Resolutions       *prometheus.CounterVec
	RecoveryOutcomes  *prometheus.CounterVec
	AmbiguousRecovery prometheus.Counter

	// Workflow metrics
	ActiveWorkflows  prometheus.Gauge
	ExpiredWorkflows prometheus.Counter

	// Chain metrics
	ChainSteps *prometheus.CounterVec
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,

		CommandsExecuted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_executed_total",
				Help:      "Total number of command executions by outcome",
			},
			[]string{"status", "source"},
		),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "command_duration_seconds",
				Help:      "Command apply duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		UndoOperations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "undo_operations_total",
				Help:      "Total number of undo operations",
			},
		),
		RedoOperations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "redo_operations_total",
				Help:      "Total number of redo operations",
			},
		),
		Resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selection_resolutions_total",
				Help:      "Total number of selection resolutions by outcome",
			},
			[]string{"outcome"},
		),
		RecoveryOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selection_recovery_total",
				Help:      "Per-member recovery outcomes (direct, mapped, recovered, dropped)",
			},
			[]string{"strategy"},
		),
		AmbiguousRecovery: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selection_recovery_ambiguous_total",
				Help:      "Recoveries that required a tie-break between candidates",
			},
		),
		ActiveWorkflows: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_workflows",
				Help:      "Number of in-flight workflow contexts",
			},
		),
		ExpiredWorkflows: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "expired_workflows_total",
				Help:      "Workflow contexts removed by the expiry sweep",
			},
		),
		ChainSteps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chain_steps_total",
				Help:      "Tool chain steps by outcome",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		c.CommandsExecuted,
		c.CommandDuration,
		c.UndoOperations,
		c.RedoOperations,
		c.Resolutions,
		c.RecoveryOutcomes,
		c.AmbiguousRecovery,
		c.ActiveWorkflows,
		c.ExpiredWorkflows,
		c.ChainSteps,
	)

	return c
}

// Registry returns the collector's registry for exposing via promhttp
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveCommand records a single command execution
func (c *Collector) ObserveCommand(source string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	c.CommandsExecuted.WithLabelValues(status, source).Inc()
	c.CommandDuration.WithLabelValues(source).Observe(duration.Seconds())
}
