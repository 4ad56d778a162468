package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"canvascore/pkg/observability"
)

// NewRouter builds the HTTP router: the v1 API, the health check, and the
// Prometheus endpoint backed by the injected collector's registry.
func NewRouter(handler *Handler, metrics *observability.Collector) chi.Router {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/entities", handler.CreateEntity)
		r.Get("/entities", handler.ListEntities)
		r.Get("/entities/{id}", handler.GetEntity)
		r.Delete("/entities/{id}", handler.DeleteEntity)
		r.Put("/entities/{id}/transform", handler.UpdateTransform)
		r.Put("/entities/{id}/style", handler.UpdateStyle)

		r.Post("/chains", handler.RunChain)

		r.Get("/history", handler.GetHistory)
		r.Post("/history/undo", handler.Undo)
		r.Post("/history/redo", handler.Redo)

		r.Get("/workflows/{id}/resolution", handler.ResolveWorkflow)
		r.Delete("/workflows/{id}", handler.ReleaseWorkflow)

		r.Get("/health", handler.Health)
	})

	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
		metrics.Registry(),
		promhttp.HandlerOpts{},
	))

	return router
}
