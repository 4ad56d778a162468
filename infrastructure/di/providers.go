// Package di wires the editor core together with google/wire. All
// dependencies flow through explicit constructor injection; nothing in the
// core reaches for a package-level singleton.
package di

import (
	"fmt"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"canvascore/application/commands"
	"canvascore/application/orchestrator"
	"canvascore/application/ports"
	"canvascore/application/selection"
	domaincfg "canvascore/domain/config"
	"canvascore/infrastructure/config"
	"canvascore/infrastructure/persistence/memory"
	"canvascore/interfaces/http/rest"
	"canvascore/pkg/observability"
)

// Container holds the assembled application
type Container struct {
	Config           config.Config
	DomainConfig     *domaincfg.Store
	Logger           *zap.Logger
	Metrics          *observability.Collector
	GraphStore       ports.GraphStore
	SelectionManager *selection.Manager
	CommandManager   *commands.Manager
	Orchestrator     *orchestrator.Orchestrator
	Handler          *rest.Handler
	Router           chi.Router
}

// ProvideLogger builds the zap logger from the logging config
func ProvideLogger(cfg config.Config) (*zap.Logger, func(), error) {
	var zapCfg zap.Config
	if cfg.Environment == config.Development {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Logging.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}
	zapCfg.Level = level
	if cfg.Logging.Format == "console" {
		zapCfg.Encoding = "console"
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	cleanup := func() {
		_ = logger.Sync()
	}
	return logger, cleanup, nil
}

// ProvideMetrics builds the metrics collector with its own registry
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector("canvascore")
}

// ProvideDomainConfig extracts the domain tunables from the runtime config
// into a store the config watcher can update at runtime
func ProvideDomainConfig(cfg config.Config) *domaincfg.Store {
	return domaincfg.NewStore(cfg.ToDomain())
}

// ProvideGraphStore builds the in-memory object graph store
func ProvideGraphStore() *memory.GraphStore {
	return memory.NewGraphStore()
}

// ProvideSelectionManager builds the selection manager and ties its expiry
// sweep to the container's cleanup.
func ProvideSelectionManager(
	store ports.GraphStore,
	dcfg *domaincfg.Store,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*selection.Manager, func()) {
	m := selection.NewManager(store, dcfg, nil, metrics, logger)
	return m, m.Close
}

// ProvideCommandManager builds the command manager
func ProvideCommandManager(
	store ports.GraphStore,
	selectionMgr *selection.Manager,
	dcfg *domaincfg.Store,
	metrics *observability.Collector,
	logger *zap.Logger,
) *commands.Manager {
	return commands.NewManager(store, selectionMgr, dcfg, metrics, logger)
}

// ProvideOrchestrator builds the chain orchestrator
func ProvideOrchestrator(
	store ports.GraphStore,
	commandMgr *commands.Manager,
	selectionMgr *selection.Manager,
	metrics *observability.Collector,
	logger *zap.Logger,
) *orchestrator.Orchestrator {
	return orchestrator.NewOrchestrator(store, commandMgr, selectionMgr, metrics, logger)
}

// ProvideHandler builds the REST handler
func ProvideHandler(
	store ports.GraphStore,
	commandMgr *commands.Manager,
	selectionMgr *selection.Manager,
	orch *orchestrator.Orchestrator,
	logger *zap.Logger,
) *rest.Handler {
	return rest.NewHandler(store, commandMgr, selectionMgr, orch, logger)
}

// ProvideRouter builds the HTTP router
func ProvideRouter(handler *rest.Handler, metrics *observability.Collector) chi.Router {
	return rest.NewRouter(handler, metrics)
}

// newContainer bundles the wired components
func newContainer(
	cfg config.Config,
	dcfg *domaincfg.Store,
	logger *zap.Logger,
	metrics *observability.Collector,
	store ports.GraphStore,
	selectionMgr *selection.Manager,
	commandMgr *commands.Manager,
	orch *orchestrator.Orchestrator,
	handler *rest.Handler,
	router chi.Router,
) *Container {
	return &Container{
		Config:           cfg,
		DomainConfig:     dcfg,
		Logger:           logger,
		Metrics:          metrics,
		GraphStore:       store,
		SelectionManager: selectionMgr,
		CommandManager:   commandMgr,
		Orchestrator:     orch,
		Handler:          handler,
		Router:           router,
	}
}
