package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/syncmesh/internal/models"
	"github.com/iudanet/syncmesh/internal/server/storage/sqlite"
	"github.com/iudanet/syncmesh/pkg/api"
)

type mockRecoveryService struct {
	sessionID string
	err       error

	mode     string
	since    int64
	peerID   string
	strategy string
}

func (m *mockRecoveryService) Recover(ctx context.Context, mode string, since int64, peerID, strategy string) (string, error) {
	m.mode = mode
	m.since = since
	m.peerID = peerID
	m.strategy = strategy
	if m.err != nil {
		return "", m.err
	}
	return m.sessionID, nil
}

func newTestAdminHandler(t *testing.T, recovery RecoveryService) (*AdminHandler, *sqlite.Storage) {
	t.Helper()

	s, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return NewAdminHandler(testLogger(), s, s, s, s, recovery), s
}

func TestAdminHandler_Stats(t *testing.T) {
	h, s := newTestAdminHandler(t, &mockRecoveryService{})
	ctx := context.Background()

	_, err := s.SaveEvent(ctx, eventFromAPI(apiEvent("sku-1", "node-a", 5)))
	require.NoError(t, err)

	session := &models.SyncSession{
		ID:               uuid.New().String(),
		InitiatorNodeID:  "node-a",
		ParticipantNodes: []string{"node-a", "hub"},
		Status:           models.SessionActive,
		StartedAt:        time.Now(),
	}
	require.NoError(t, s.CreateSession(ctx, session))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/sync/stats", nil)
	w := httptest.NewRecorder()

	h.Stats(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.SyncStatsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Events.Total)
	assert.Equal(t, 1, resp.Events.Pending)
	assert.Equal(t, 1, resp.Sessions.Total)
	assert.Equal(t, 1, resp.Sessions.Active)
	assert.Equal(t, 0, resp.Conflicts.Total)
}

func TestAdminHandler_InitiateRecovery(t *testing.T) {
	tests := []struct {
		name       string
		req        api.RecoveryRequest
		wantCode   int
		wantSince  int64
	}{
		{
			name:      "full resync resets watermark",
			req:       api.RecoveryRequest{Mode: api.RecoveryModeFull, Since: 99},
			wantCode:  http.StatusAccepted,
			wantSince: 0,
		},
		{
			name:      "since resync keeps watermark",
			req:       api.RecoveryRequest{Mode: api.RecoveryModeSince, Since: 42},
			wantCode:  http.StatusAccepted,
			wantSince: 42,
		},
		{
			name:     "since requires positive watermark",
			req:      api.RecoveryRequest{Mode: api.RecoveryModeSince},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown mode rejected",
			req:      api.RecoveryRequest{Mode: "partial"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown strategy rejected",
			req:      api.RecoveryRequest{Mode: api.RecoveryModeFull, Strategy: "coin_flip"},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recovery := &mockRecoveryService{sessionID: "session-123"}
			h, _ := newTestAdminHandler(t, recovery)

			body, err := json.Marshal(tt.req)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/sync/recovery", bytes.NewReader(body))
			w := httptest.NewRecorder()

			h.InitiateRecovery(w, req)

			assert.Equal(t, tt.wantCode, w.Code)

			if tt.wantCode == http.StatusAccepted {
				var resp api.RecoveryResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "session-123", resp.SessionID)
				assert.Equal(t, tt.wantSince, recovery.since)
			}
		})
	}
}

func TestAdminHandler_InitiateRecovery_ServiceError(t *testing.T) {
	recovery := &mockRecoveryService{err: errors.New("no peers reachable")}
	h, _ := newTestAdminHandler(t, recovery)

	body, err := json.Marshal(api.RecoveryRequest{Mode: api.RecoveryModeFull})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/sync/recovery", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.InitiateRecovery(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAdminHandler_Conflicts(t *testing.T) {
	h, s := newTestAdminHandler(t, &mockRecoveryService{})
	ctx := context.Background()

	record := &models.ConflictRecord{
		ID:                 uuid.New().String(),
		EntityType:         "products",
		EntityID:           "sku-1",
		ConflictType:       models.ConflictUpdateUpdate,
		ResolutionStrategy: models.StrategyLastWriteWins,
		WinnerNodeID:       "node-b",
		LocalNodeID:        "node-a",
		RemoteNodeID:       "node-b",
		LocalTimestamp:     10,
		RemoteTimestamp:    20,
		AutoResolved:       true,
		DetectedAt:         time.Now(),
		ResolvedAt:         time.Now(),
	}
	require.NoError(t, s.RecordConflict(ctx, record))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/sync/conflicts", nil)
	w := httptest.NewRecorder()

	h.Conflicts(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.ConflictsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, record.ID, resp.Conflicts[0].ID)
	assert.Equal(t, "node-b", resp.Conflicts[0].WinnerNodeID)
}

func TestAdminHandler_ReviewConflict(t *testing.T) {
	h, s := newTestAdminHandler(t, &mockRecoveryService{})
	ctx := context.Background()

	record := &models.ConflictRecord{
		ID:                 uuid.New().String(),
		EntityType:         "products",
		EntityID:           "sku-1",
		ConflictType:       models.ConflictUpdateUpdate,
		ResolutionStrategy: models.StrategyManual,
		LocalNodeID:        "node-a",
		RemoteNodeID:       "node-b",
		DetectedAt:         time.Now(),
		ResolvedAt:         time.Now(),
	}
	require.NoError(t, s.RecordConflict(ctx, record))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/sync/conflicts/"+record.ID+"/review", nil)
	req.SetPathValue("id", record.ID)
	w := httptest.NewRecorder()

	h.ReviewConflict(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)

	got, err := s.GetConflict(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, got.HumanReviewed)
}

func TestAdminHandler_ReviewConflict_NotFound(t *testing.T) {
	h, _ := newTestAdminHandler(t, &mockRecoveryService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/sync/conflicts/missing/review", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()

	h.ReviewConflict(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
