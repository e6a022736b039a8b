package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/syncmesh/internal/models"
	syncengine "github.com/iudanet/syncmesh/internal/sync"
	"github.com/iudanet/syncmesh/pkg/api"
)

type mockCaptureService struct {
	mutation *models.QueuedMutation
	err      error

	gotEntityType string
	gotEntityID   string
	gotOperation  string
	gotPayload    []byte
	gotPriority   int
}

func (m *mockCaptureService) Capture(ctx context.Context, entityType, entityID, operation string, payload []byte, priority int) (*models.QueuedMutation, error) {
	m.gotEntityType = entityType
	m.gotEntityID = entityID
	m.gotOperation = operation
	m.gotPayload = payload
	m.gotPriority = priority

	if m.err != nil {
		return nil, m.err
	}
	return m.mutation, nil
}

func TestCaptureHandler_Capture(t *testing.T) {
	capture := &mockCaptureService{
		mutation: &models.QueuedMutation{
			ID:         "mutation-uuid",
			EntityType: "products",
			EntityID:   "sku-42",
			Operation:  models.OpUpdate,
			Seq:        7,
			Priority:   10,
			EnqueuedAt: time.Now(),
		},
	}
	h := NewCaptureHandler(testLogger(), capture)

	body, err := json.Marshal(api.CaptureRequest{
		EntityType: "products",
		EntityID:   "sku-42",
		Operation:  models.OpUpdate,
		Payload:    []byte(`{"price":100}`),
		Priority:   10,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/capture", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Capture(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp api.CaptureResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "mutation-uuid", resp.ID)
	assert.Equal(t, uint64(7), resp.Seq)

	assert.Equal(t, "products", capture.gotEntityType)
	assert.Equal(t, "sku-42", capture.gotEntityID)
	assert.Equal(t, models.OpUpdate, capture.gotOperation)
	assert.JSONEq(t, `{"price":100}`, string(capture.gotPayload))
	assert.Equal(t, 10, capture.gotPriority)
}

func TestCaptureHandler_Capture_InvalidBody(t *testing.T) {
	h := NewCaptureHandler(testLogger(), &mockCaptureService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/capture", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()

	h.Capture(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCaptureHandler_Capture_ValidationError(t *testing.T) {
	capture := &mockCaptureService{
		err: fmt.Errorf("%w: unknown operation upsert", syncengine.ErrInvalidMutation),
	}
	h := NewCaptureHandler(testLogger(), capture)

	body, err := json.Marshal(api.CaptureRequest{
		EntityType: "products",
		EntityID:   "sku-42",
		Operation:  "upsert",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/capture", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Capture(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown operation")
}

func TestCaptureHandler_Capture_QueueError(t *testing.T) {
	capture := &mockCaptureService{err: errors.New("failed to enqueue mutation: disk I/O error")}
	h := NewCaptureHandler(testLogger(), capture)

	body, err := json.Marshal(api.CaptureRequest{
		EntityType: "products",
		EntityID:   "sku-42",
		Operation:  models.OpUpdate,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/capture", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Capture(w, req)

	// Отказ очереди - не ошибка клиента
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk I/O error")
}
