package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/iudanet/syncmesh/internal/models"
	"github.com/iudanet/syncmesh/internal/server/storage"
	"github.com/iudanet/syncmesh/pkg/api"
)

// NodesHandler обрабатывает запросы реестра узлов
type NodesHandler struct {
	logger      *slog.Logger
	nodeStorage storage.NodeStorage
}

// NewNodesHandler создает новый handler для реестра узлов
func NewNodesHandler(logger *slog.Logger, nodeStorage storage.NodeStorage) *NodesHandler {
	return &NodesHandler{
		logger:      logger,
		nodeStorage: nodeStorage,
	}
}

// Heartbeat обрабатывает POST /api/v1/nodes/heartbeat
// Периодическое обновление liveness узла; адрес и capabilities
// обновляются, только если переданы
func (h *NodesHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	nodeID, ok := GetNodeID(ctx)
	if !ok {
		h.logger.Error("node ID not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// Тело опционально: пустой heartbeat обновляет только last_seen
	var req api.HeartbeatRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error("failed to decode heartbeat request", "error", err)
			sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	now := time.Now()
	if err := h.nodeStorage.UpdateHeartbeat(ctx, nodeID, now, req.Address, req.Capabilities); err != nil {
		if errors.Is(err, storage.ErrNodeNotFound) {
			sendError(h.logger, w, "node not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update heartbeat", "error", err, "node_id", nodeID)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.HeartbeatResponse{
		LastSeen: now,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// List обрабатывает GET /api/v1/nodes?active=true
// Список узлов mesh
func (h *NodesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	activeOnly := false
	if activeStr := r.URL.Query().Get("active"); activeStr != "" {
		var err error
		activeOnly, err = strconv.ParseBool(activeStr)
		if err != nil {
			sendError(h.logger, w, "invalid active parameter", http.StatusBadRequest)
			return
		}
	}

	nodes, err := h.nodeStorage.ListNodes(ctx, activeOnly)
	if err != nil {
		h.logger.Error("failed to list nodes", "error", err)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.NodesResponse{
		Nodes: nodesToAPI(nodes),
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Deregister обрабатывает DELETE /api/v1/nodes/{node_id}
// Мягкое исключение узла из mesh: история его событий сохраняется
func (h *NodesHandler) Deregister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	nodeID := r.PathValue("node_id")
	if nodeID == "" {
		sendError(h.logger, w, "node_id is required", http.StatusBadRequest)
		return
	}

	if err := h.nodeStorage.DeactivateNode(ctx, nodeID); err != nil {
		if errors.Is(err, storage.ErrNodeNotFound) {
			sendError(h.logger, w, "node not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to deactivate node", "error", err, "node_id", nodeID)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("node deregistered", "node_id", nodeID)

	w.WriteHeader(http.StatusNoContent)
}

func nodesToAPI(nodes []*models.SyncNode) []api.NodeInfo {
	result := make([]api.NodeInfo, 0, len(nodes))
	for _, node := range nodes {
		result = append(result, api.NodeInfo{
			NodeID:       node.NodeID,
			Name:         node.Name,
			Address:      node.Address,
			Capabilities: node.Capabilities,
			IsActive:     node.IsActive,
			LastSeen:     node.LastSeen,
			RegisteredAt: node.RegisteredAt,
		})
	}
	return result
}
