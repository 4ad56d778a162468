// Package rest exposes the editor core over HTTP. It is a thin adapter:
// request structs are validated, translated into commands and chain runs,
// and domain errors are mapped onto status codes. No consistency logic
// lives here.
package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"canvascore/application/commands"
	"canvascore/application/orchestrator"
	"canvascore/application/ports"
	"canvascore/application/selection"
	"canvascore/domain/core/entities"
	"canvascore/domain/core/valueobjects"
	"canvascore/domain/events"
	pkgerrors "canvascore/pkg/errors"
)

// Handler serves the editor core's REST endpoints
type Handler struct {
	graph      ports.GraphStore
	commandMgr *commands.Manager
	selection  *selection.Manager
	orch       *orchestrator.Orchestrator
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewHandler creates the REST handler
func NewHandler(
	graph ports.GraphStore,
	commandMgr *commands.Manager,
	selectionMgr *selection.Manager,
	orch *orchestrator.Orchestrator,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		graph:      graph,
		commandMgr: commandMgr,
		selection:  selectionMgr,
		orch:       orch,
		validate:   validator.New(),
		logger:     logger,
	}
}

// transformDTO is the wire form of a transform
type transformDTO struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width" validate:"gte=0"`
	Height   float64 `json:"height" validate:"gte=0"`
	Rotation float64 `json:"rotation"`
}

// entityDTO is the wire form of an entity
type entityDTO struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
	LayerID   string            `json:"layer_id"`
	Transform transformDTO      `json:"transform"`
	Style     map[string]string `json:"style"`
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func toEntityDTO(e *entities.Entity) entityDTO {
	t := e.Transform()
	return entityDTO{
		ID:      e.ID().String(),
		Kind:    string(e.Kind()),
		LayerID: e.LayerID(),
		Transform: transformDTO{
			X:        t.X(),
			Y:        t.Y(),
			Width:    t.Width(),
			Height:   t.Height(),
			Rotation: t.Rotation(),
		},
		Style:     e.Style(),
		Version:   e.Version(),
		CreatedAt: e.CreatedAt(),
		UpdatedAt: e.UpdatedAt(),
	}
}

type createEntityRequest struct {
	Kind      string            `json:"kind" validate:"required,oneof=image text shape group"`
	LayerID   string            `json:"layer_id" validate:"required"`
	Transform transformDTO      `json:"transform"`
	Style     map[string]string `json:"style"`
}

// CreateEntity handles POST /entities
func (h *Handler) CreateEntity(w http.ResponseWriter, r *http.Request) {
	var req createEntityRequest
	if !h.decode(w, r, &req) {
		return
	}

	transform, err := valueobjects.NewTransform(req.Transform.X, req.Transform.Y, req.Transform.Width, req.Transform.Height, req.Transform.Rotation)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	entity, err := entities.NewEntity(entities.EntityKind(req.Kind), req.LayerID, transform, req.Style)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	cmd, err := commands.NewCreateEntityCommand(entity, commands.Metadata{Source: events.SourceUser})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.commandMgr.Execute(r.Context(), cmd); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, toEntityDTO(entity))
}

// GetEntity handles GET /entities/{id}
func (h *Handler) GetEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entityID(w, r)
	if !ok {
		return
	}

	entity, err := h.graph.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toEntityDTO(entity))
}

// ListEntities handles GET /entities
func (h *Handler) ListEntities(w http.ResponseWriter, r *http.Request) {
	list, err := h.graph.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	out := make([]entityDTO, 0, len(list))
	for _, e := range list {
		out = append(out, toEntityDTO(e))
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"entities": out, "count": len(out)})
}

// DeleteEntity handles DELETE /entities/{id}
func (h *Handler) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entityID(w, r)
	if !ok {
		return
	}

	cmd, err := commands.NewDeleteEntityCommand(id, commands.Metadata{Source: events.SourceUser}, nil)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.commandMgr.Execute(r.Context(), cmd); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateTransformRequest struct {
	Transform transformDTO `json:"transform"`
}

// UpdateTransform handles PUT /entities/{id}/transform
func (h *Handler) UpdateTransform(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entityID(w, r)
	if !ok {
		return
	}

	var req updateTransformRequest
	if !h.decode(w, r, &req) {
		return
	}
	transform, err := valueobjects.NewTransform(req.Transform.X, req.Transform.Y, req.Transform.Width, req.Transform.Height, req.Transform.Rotation)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	cmd, err := commands.NewUpdateTransformCommand(id, transform, commands.Metadata{Source: events.SourceUser}, nil)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.commandMgr.Execute(r.Context(), cmd); err != nil {
		h.respondError(w, r, err)
		return
	}

	entity, err := h.graph.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toEntityDTO(entity))
}

type updateStyleRequest struct {
	Style map[string]string `json:"style" validate:"required"`
}

// UpdateStyle handles PUT /entities/{id}/style
func (h *Handler) UpdateStyle(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entityID(w, r)
	if !ok {
		return
	}

	var req updateStyleRequest
	if !h.decode(w, r, &req) {
		return
	}

	cmd, err := commands.NewUpdateStyleCommand(id, req.Style, commands.Metadata{Source: events.SourceUser}, nil)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.commandMgr.Execute(r.Context(), cmd); err != nil {
		h.respondError(w, r, err)
		return
	}

	entity, err := h.graph.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toEntityDTO(entity))
}

// RunChain handles POST /chains
func (h *Handler) RunChain(w http.ResponseWriter, r *http.Request) {
	var req orchestrator.ChainRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.orch.RunChain(r.Context(), req)
	if err != nil {
		// A partial result still tells the caller which steps ran
		if result != nil {
			h.respondJSON(w, statusForError(err), map[string]any{
				"error":  errorBody(err),
				"result": result,
			})
			return
		}
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// Undo handles POST /history/undo
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	if err := h.commandMgr.Undo(r.Context()); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.historyStatus())
}

// Redo handles POST /history/redo
func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	if err := h.commandMgr.Redo(r.Context()); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.historyStatus())
}

// GetHistory handles GET /history
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.historyStatus())
}

func (h *Handler) historyStatus() map[string]any {
	return map[string]any{
		"length":   h.commandMgr.HistoryLen(),
		"can_undo": h.commandMgr.CanUndo(),
		"can_redo": h.commandMgr.CanRedo(),
	}
}

// ResolveWorkflow handles GET /workflows/{id}/resolution
func (h *Handler) ResolveWorkflow(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	workflowID, err := valueobjects.NewWorkflowIDFromString(raw)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	resolved, err := h.selection.Resolve(r.Context(), workflowID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	out := make([]entityDTO, 0, len(resolved))
	for _, e := range resolved {
		out = append(out, toEntityDTO(e))
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"entities": out, "count": len(out)})
}

// ReleaseWorkflow handles DELETE /workflows/{id}
func (h *Handler) ReleaseWorkflow(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	workflowID, err := valueobjects.NewWorkflowIDFromString(raw)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.selection.ReleaseWorkflow(workflowID); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"entities":  h.graph.Count(r.Context()),
		"workflows": h.selection.ActiveWorkflowCount(),
	})
}

func (h *Handler) entityID(w http.ResponseWriter, r *http.Request) (valueobjects.EntityID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := valueobjects.NewEntityIDFromString(raw)
	if err != nil {
		h.respondError(w, r, err)
		return valueobjects.EntityID{}, false
	}
	return id, true
}

// decode parses and validates a JSON request body
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondError(w, r, pkgerrors.NewValidation("invalid request body: "+err.Error()))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.respondError(w, r, pkgerrors.NewValidation("invalid request: "+err.Error()))
		return false
	}
	return true
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= 500 {
		h.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	h.respondJSON(w, status, map[string]any{"error": errorBody(err)})
}

func errorBody(err error) map[string]string {
	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) {
		return map[string]string{
			"type":    string(appErr.Type),
			"message": appErr.Message,
		}
	}
	return map[string]string{"type": "INTERNAL", "message": err.Error()}
}

// statusForError maps domain error types onto HTTP status codes
func statusForError(err error) int {
	switch {
	case pkgerrors.IsValidation(err):
		return http.StatusBadRequest
	case pkgerrors.IsNotFound(err), pkgerrors.IsUnknownWorkflow(err):
		return http.StatusNotFound
	case pkgerrors.IsConflict(err):
		return http.StatusConflict
	case pkgerrors.IsWorkflowExpired(err):
		return http.StatusGone
	case pkgerrors.IsExecutionFailed(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
