package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/syncmesh/internal/models"
	syncengine "github.com/iudanet/syncmesh/internal/sync"
	"github.com/iudanet/syncmesh/pkg/api"
)

// CaptureService определяет интерфейс CDC-захвата локальных мутаций
type CaptureService interface {
	// Capture ставит мутацию в durable offline-очередь
	Capture(ctx context.Context, entityType, entityID, operation string, payload []byte, priority int) (*models.QueuedMutation, error)
}

// CaptureHandler обрабатывает постановку локальных мутаций в очередь
type CaptureHandler struct {
	logger  *slog.Logger
	capture CaptureService
}

// NewCaptureHandler создает handler для CDC-захвата
func NewCaptureHandler(logger *slog.Logger, capture CaptureService) *CaptureHandler {
	return &CaptureHandler{
		logger:  logger,
		capture: capture,
	}
}

// Capture обрабатывает POST /api/v1/capture
// Мутация попадает в durable-очередь и переносится в леджер
// при ближайшем drain
func (h *CaptureHandler) Capture(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode capture request", "error", err)
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	mutation, err := h.capture.Capture(ctx, req.EntityType, req.EntityID, req.Operation, req.Payload, req.Priority)
	if err != nil {
		if errors.Is(err, syncengine.ErrInvalidMutation) {
			sendError(h.logger, w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to capture mutation",
			"error", err,
			"entity_type", req.EntityType,
			"entity_id", req.EntityID)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("mutation captured",
		"mutation_id", mutation.ID,
		"entity_type", mutation.EntityType,
		"entity_id", mutation.EntityID,
		"operation", mutation.Operation,
		"priority", mutation.Priority)

	resp := api.CaptureResponse{
		ID:         mutation.ID,
		Seq:        mutation.Seq,
		EnqueuedAt: mutation.EnqueuedAt.Unix(),
	}

	sendJSON(h.logger, w, resp, http.StatusAccepted)
}
