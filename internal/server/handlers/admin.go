package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iudanet/syncmesh/internal/models"
	"github.com/iudanet/syncmesh/internal/server/storage"
	"github.com/iudanet/syncmesh/pkg/api"
)

// defaultConflictsLimit ограничивает размер списка конфликтов по умолчанию
const defaultConflictsLimit = 100

// RecoveryService определяет интерфейс запуска partition recovery
type RecoveryService interface {
	// Recover открывает recovery-сессию и запускает ресинк с peer-узлами.
	// Возвращает идентификатор открытой сессии.
	Recover(ctx context.Context, mode string, since int64, peerID, strategy string) (string, error)
}

// AdminHandler обрабатывает административные запросы оператора
type AdminHandler struct {
	logger    *slog.Logger
	events    storage.EventStorage
	sessions  storage.SessionStorage
	conflicts storage.ConflictStorage
	nodes     storage.NodeStorage
	recovery  RecoveryService
}

// NewAdminHandler создает новый handler для административных операций
func NewAdminHandler(
	logger *slog.Logger,
	events storage.EventStorage,
	sessions storage.SessionStorage,
	conflicts storage.ConflictStorage,
	nodes storage.NodeStorage,
	recovery RecoveryService,
) *AdminHandler {
	return &AdminHandler{
		logger:    logger,
		events:    events,
		sessions:  sessions,
		conflicts: conflicts,
		nodes:     nodes,
		recovery:  recovery,
	}
}

// Stats обрабатывает GET /api/v1/admin/sync/stats
// Агрегированное состояние журнала событий, сессий и конфликтов
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventCounts, err := h.events.EventCounts(ctx)
	if err != nil {
		h.logger.Error("failed to count events", "error", err)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sessionCounts, err := h.sessions.SessionCounts(ctx)
	if err != nil {
		h.logger.Error("failed to count sessions", "error", err)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	conflictCounts, err := h.conflicts.ConflictCounts(ctx)
	if err != nil {
		h.logger.Error("failed to count conflicts", "error", err)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	activeNodes, err := h.nodes.ListNodes(ctx, true)
	if err != nil {
		h.logger.Error("failed to list nodes", "error", err)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.SyncStatsResponse{
		Events: api.EventStats{
			Total:     eventCounts.Total,
			Pending:   eventCounts.Pending,
			Processed: eventCounts.Processed,
			Abandoned: eventCounts.Abandoned,
		},
		Sessions: api.SessionStats{
			Total:          sessionCounts.Total,
			Active:         sessionCounts.Active,
			Completed:      sessionCounts.Completed,
			Failed:         sessionCounts.Failed,
			LastFinishedAt: sessionCounts.LastFinishedAt,
		},
		Conflicts: api.ConflictStats{
			Total:         conflictCounts.Total,
			AutoResolved:  conflictCounts.AutoResolved,
			PendingReview: conflictCounts.PendingReview,
		},
		Nodes: len(activeNodes),
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// InitiateRecovery обрабатывает POST /api/v1/admin/sync/initiate-recovery
// Запуск восстановления после сетевого разрыва: открывается recovery-сессия
// и выполняется ресинк с peer-узлами с указанного watermark
func (h *AdminHandler) InitiateRecovery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RecoveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode recovery request", "error", err)
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	switch req.Mode {
	case api.RecoveryModeFull:
		req.Since = 0
	case api.RecoveryModeSince:
		if req.Since <= 0 {
			sendError(h.logger, w, "since must be positive for mode=since", http.StatusBadRequest)
			return
		}
	default:
		sendError(h.logger, w, "mode must be full or since", http.StatusBadRequest)
		return
	}

	if req.Strategy != "" &&
		req.Strategy != models.StrategyLocalWins &&
		req.Strategy != models.StrategyRemoteWins {
		sendError(h.logger, w, "strategy must be local_wins or remote_wins", http.StatusBadRequest)
		return
	}

	sessionID, err := h.recovery.Recover(ctx, req.Mode, req.Since, req.PeerID, req.Strategy)
	if err != nil {
		h.logger.Error("failed to initiate recovery", "error", err, "mode", req.Mode)
		sendError(h.logger, w, "failed to initiate recovery", http.StatusInternalServerError)
		return
	}

	h.logger.Info("recovery initiated",
		"session_id", sessionID,
		"mode", req.Mode,
		"since", req.Since,
		"peer_id", req.PeerID)

	resp := api.RecoveryResponse{
		SessionID: sessionID,
		Message:   "Recovery session started",
	}

	sendJSON(h.logger, w, resp, http.StatusAccepted)
}

// Conflicts обрабатывает GET /api/v1/admin/sync/conflicts?unreviewed=true&limit=N
// Журнал конфликтов для ручного разбора
func (h *AdminHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	onlyUnreviewed := false
	if unreviewedStr := r.URL.Query().Get("unreviewed"); unreviewedStr != "" {
		var err error
		onlyUnreviewed, err = strconv.ParseBool(unreviewedStr)
		if err != nil {
			sendError(h.logger, w, "invalid unreviewed parameter", http.StatusBadRequest)
			return
		}
	}

	limit := defaultConflictsLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			sendError(h.logger, w, "invalid limit parameter", http.StatusBadRequest)
			return
		}
	}

	records, err := h.conflicts.ListConflicts(ctx, onlyUnreviewed, limit)
	if err != nil {
		h.logger.Error("failed to list conflicts", "error", err)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.ConflictsResponse{
		Conflicts: conflictsToAPI(records),
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// ReviewConflict обрабатывает POST /api/v1/admin/sync/conflicts/{id}/review
// Отметка конфликта как разобранного оператором
func (h *AdminHandler) ReviewConflict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conflictID := r.PathValue("id")
	if conflictID == "" {
		sendError(h.logger, w, "conflict id is required", http.StatusBadRequest)
		return
	}

	if err := h.conflicts.MarkReviewed(ctx, conflictID); err != nil {
		if errors.Is(err, storage.ErrConflictNotFound) {
			sendError(h.logger, w, "conflict not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to mark conflict reviewed", "error", err, "conflict_id", conflictID)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("conflict reviewed", "conflict_id", conflictID)

	w.WriteHeader(http.StatusNoContent)
}

func conflictsToAPI(records []*models.ConflictRecord) []api.ConflictInfo {
	result := make([]api.ConflictInfo, 0, len(records))
	for _, record := range records {
		result = append(result, api.ConflictInfo{
			ID:                 record.ID,
			EntityType:         record.EntityType,
			EntityID:           record.EntityID,
			ConflictType:       record.ConflictType,
			ResolutionStrategy: record.ResolutionStrategy,
			WinnerNodeID:       record.WinnerNodeID,
			LocalNodeID:        record.LocalNodeID,
			RemoteNodeID:       record.RemoteNodeID,
			LocalTimestamp:     record.LocalTimestamp,
			RemoteTimestamp:    record.RemoteTimestamp,
			AutoResolved:       record.AutoResolved,
			HumanReviewed:      record.HumanReviewed,
			DetectedAt:         record.DetectedAt,
			ResolvedAt:         record.ResolvedAt,
		})
	}
	return result
}
