package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/iudanet/syncmesh/internal/crdt"
	"github.com/iudanet/syncmesh/internal/models"
	"github.com/iudanet/syncmesh/internal/server/storage"
	syncengine "github.com/iudanet/syncmesh/internal/sync"
	"github.com/iudanet/syncmesh/pkg/api"
)

// SyncHandler обрабатывает обмен событиями между узлами mesh
type SyncHandler struct {
	logger   *slog.Logger
	events   storage.EventStorage
	resolver *syncengine.Resolver
}

// NewSyncHandler создает новый handler для синхронизации
func NewSyncHandler(logger *slog.Logger, events storage.EventStorage, resolver *syncengine.Resolver) *SyncHandler {
	return &SyncHandler{
		logger:   logger,
		events:   events,
		resolver: resolver,
	}
}

// HandleSync обрабатывает GET и POST запросы для синхронизации
func (h *SyncHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// node_id инициатора установлен AuthMiddleware
	nodeID, ok := GetNodeID(ctx)
	if !ok {
		h.logger.Error("node ID not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGetSync(w, r, nodeID)
	case http.MethodPost:
		h.handlePostSync(w, r, nodeID)
	default:
		sendError(h.logger, w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetSync обрабатывает GET /api/v1/sync?since=timestamp&compact=true
// Pull-обмен: возвращает события новее указанного watermark,
// исключая события, которые породил сам инициатор.
// С compact=true поток сворачивается до последней выигравшей версии
// каждой сущности - для полного ресинка история не нужна.
func (h *SyncHandler) handleGetSync(w http.ResponseWriter, r *http.Request, nodeID string) {
	ctx := r.Context()

	var since int64
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		var err error
		since, err = strconv.ParseInt(sinceStr, 10, 64)
		if err != nil {
			h.logger.Warn("invalid since parameter", "since", sinceStr, "error", err)
			sendError(h.logger, w, "invalid since parameter", http.StatusBadRequest)
			return
		}
	}

	compact := false
	if compactStr := r.URL.Query().Get("compact"); compactStr != "" {
		var err error
		compact, err = strconv.ParseBool(compactStr)
		if err != nil {
			sendError(h.logger, w, "invalid compact parameter", http.StatusBadRequest)
			return
		}
	}

	h.logger.Info("GET sync request", "node_id", nodeID, "since", since, "compact", compact)

	events, err := h.events.EventsSince(ctx, since, nodeID)
	if err != nil {
		h.logger.Error("failed to get events", "error", err, "node_id", nodeID)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if compact {
		events = compactEvents(events)
	}

	watermark, err := h.events.MaxTimestamp(ctx)
	if err != nil {
		h.logger.Error("failed to get watermark", "error", err)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.SyncResponse{
		Events:    eventsToAPI(events),
		Watermark: watermark,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// handlePostSync обрабатывает POST /api/v1/sync
// Push-pull обмен: применяет события инициатора через resolver
// и возвращает встречные события новее запрошенного watermark
func (h *SyncHandler) handlePostSync(w http.ResponseWriter, r *http.Request, nodeID string) {
	ctx := r.Context()

	var req api.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode sync request", "error", err)
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.logger.Info("POST sync request",
		"node_id", nodeID,
		"session_id", req.SessionID,
		"events", len(req.Events),
		"since", req.Since)

	applied, detected, _, err := h.resolver.ApplyBatch(ctx, eventsFromAPI(req.Events))
	if err != nil {
		h.logger.Error("failed to apply events", "error", err, "node_id", nodeID)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	events, err := h.events.EventsSince(ctx, req.Since, nodeID)
	if err != nil {
		h.logger.Error("failed to get events", "error", err, "node_id", nodeID)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	watermark, err := h.events.MaxTimestamp(ctx)
	if err != nil {
		h.logger.Error("failed to get watermark", "error", err)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("sync exchange completed",
		"node_id", nodeID,
		"applied", applied,
		"conflicts", detected,
		"returned", len(events))

	resp := api.SyncResponse{
		Events:    eventsToAPI(events),
		Watermark: watermark,
		Conflicts: detected,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// compactEvents сворачивает поток событий до последней выигравшей версии
// каждой сущности по правилу LWW
func compactEvents(events []*models.SyncEvent) []*models.SyncEvent {
	set := crdt.NewEventSet()
	for _, event := range events {
		set.Apply(event)
	}

	result := set.Snapshot()
	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		return result[i].EntityKey() < result[j].EntityKey()
	})

	return result
}

// eventToAPI конвертирует модель события в API формат
func eventToAPI(event *models.SyncEvent) api.SyncEvent {
	return api.SyncEvent{
		ID:         event.ID,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		Operation:  event.Operation,
		NodeID:     event.NodeID,
		Payload:    event.Payload,
		Timestamp:  event.Timestamp,
		Version:    event.Version,
		Deleted:    event.Deleted,
		CreatedAt:  event.CreatedAt,
		UpdatedAt:  event.UpdatedAt,
	}
}

// eventFromAPI конвертирует API формат в модель события
func eventFromAPI(event api.SyncEvent) *models.SyncEvent {
	return &models.SyncEvent{
		ID:         event.ID,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		Operation:  event.Operation,
		NodeID:     event.NodeID,
		Payload:    event.Payload,
		Timestamp:  event.Timestamp,
		Version:    event.Version,
		Deleted:    event.Deleted,
		CreatedAt:  event.CreatedAt,
		UpdatedAt:  event.UpdatedAt,
	}
}

func eventsToAPI(events []*models.SyncEvent) []api.SyncEvent {
	result := make([]api.SyncEvent, 0, len(events))
	for _, event := range events {
		result = append(result, eventToAPI(event))
	}
	return result
}

func eventsFromAPI(events []api.SyncEvent) []*models.SyncEvent {
	result := make([]*models.SyncEvent, 0, len(events))
	for _, event := range events {
		result = append(result, eventFromAPI(event))
	}
	return result
}
