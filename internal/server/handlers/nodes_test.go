package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/syncmesh/pkg/api"
)

func TestNodesHandler_Heartbeat_Success(t *testing.T) {
	nodes := newMockNodeStorage()
	node := registeredNode(nodes, "store-harare-01")
	h := NewNodesHandler(testLogger(), nodes)

	body, err := json.Marshal(api.HeartbeatRequest{
		Address:      "http://new-address:8080",
		Capabilities: []string{"pos"},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/nodes/heartbeat", bytes.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), NodeIDKey, node.NodeID))
	w := httptest.NewRecorder()

	h.Heartbeat(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.HeartbeatResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.WithinDuration(t, time.Now(), resp.LastSeen, time.Minute)

	assert.Equal(t, "http://new-address:8080", node.Address)
	assert.Equal(t, []string{"pos"}, node.Capabilities)
}

func TestNodesHandler_Heartbeat_EmptyBody(t *testing.T) {
	nodes := newMockNodeStorage()
	node := registeredNode(nodes, "store-harare-01")
	node.Address = "http://original:8080"
	h := NewNodesHandler(testLogger(), nodes)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/nodes/heartbeat", nil)
	req = req.WithContext(context.WithValue(req.Context(), NodeIDKey, node.NodeID))
	w := httptest.NewRecorder()

	h.Heartbeat(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://original:8080", node.Address, "empty heartbeat keeps stored address")
}

func TestNodesHandler_Heartbeat_Unauthorized(t *testing.T) {
	h := NewNodesHandler(testLogger(), newMockNodeStorage())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/nodes/heartbeat", nil)
	w := httptest.NewRecorder()

	h.Heartbeat(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNodesHandler_List(t *testing.T) {
	nodes := newMockNodeStorage()
	registeredNode(nodes, "store-a")
	inactive := registeredNode(nodes, "store-b")
	inactive.IsActive = false
	h := NewNodesHandler(testLogger(), nodes)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nodes", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.NodesResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp.Nodes, 2)

	// Только активные
	req = httptest.NewRequest(http.MethodGet, "/api/v1/nodes?active=true", nil)
	w = httptest.NewRecorder()

	h.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp = api.NodesResponse{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Nodes, 1)
	assert.Equal(t, "store-a", resp.Nodes[0].Name)
}

func TestNodesHandler_Deregister(t *testing.T) {
	nodes := newMockNodeStorage()
	node := registeredNode(nodes, "store-a")
	h := NewNodesHandler(testLogger(), nodes)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/nodes/"+node.NodeID, nil)
	req.SetPathValue("node_id", node.NodeID)
	w := httptest.NewRecorder()

	h.Deregister(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, node.IsActive)
}

func TestNodesHandler_Deregister_NotFound(t *testing.T) {
	h := NewNodesHandler(testLogger(), newMockNodeStorage())

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/nodes/missing", nil)
	req.SetPathValue("node_id", "missing")
	w := httptest.NewRecorder()

	h.Deregister(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
