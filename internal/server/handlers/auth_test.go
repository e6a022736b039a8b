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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/syncmesh/internal/models"
	"github.com/iudanet/syncmesh/internal/server/storage"
	"github.com/iudanet/syncmesh/pkg/api"
)

// mockNodeStorage is a mock implementation of NodeStorage for testing
type mockNodeStorage struct {
	nodes       map[string]*models.SyncNode // name -> node
	createError error
	getError    error
}

func newMockNodeStorage() *mockNodeStorage {
	return &mockNodeStorage{nodes: make(map[string]*models.SyncNode)}
}

func (m *mockNodeStorage) CreateNode(ctx context.Context, node *models.SyncNode) error {
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.nodes[node.Name]; exists {
		return storage.ErrNodeAlreadyExists
	}
	m.nodes[node.Name] = node
	return nil
}

func (m *mockNodeStorage) GetNodeByName(ctx context.Context, name string) (*models.SyncNode, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	node, ok := m.nodes[name]
	if !ok {
		return nil, storage.ErrNodeNotFound
	}
	return node, nil
}

func (m *mockNodeStorage) GetNodeByID(ctx context.Context, nodeID string) (*models.SyncNode, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	for _, node := range m.nodes {
		if node.NodeID == nodeID {
			return node, nil
		}
	}
	return nil, storage.ErrNodeNotFound
}

func (m *mockNodeStorage) UpdateHeartbeat(ctx context.Context, nodeID string, at time.Time, address string, capabilities []string) error {
	for _, node := range m.nodes {
		if node.NodeID == nodeID {
			node.LastSeen = at
			if address != "" {
				node.Address = address
			}
			if len(capabilities) > 0 {
				node.Capabilities = capabilities
			}
			return nil
		}
	}
	return storage.ErrNodeNotFound
}

func (m *mockNodeStorage) ListNodes(ctx context.Context, activeOnly bool) ([]*models.SyncNode, error) {
	var nodes []*models.SyncNode
	for _, node := range m.nodes {
		if activeOnly && !node.IsActive {
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (m *mockNodeStorage) DeactivateNode(ctx context.Context, nodeID string) error {
	for _, node := range m.nodes {
		if node.NodeID == nodeID {
			node.IsActive = false
			return nil
		}
	}
	return storage.ErrNodeNotFound
}

func (m *mockNodeStorage) MarkStale(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}

// mockTokenStorage is a mock implementation of TokenStorage for testing
type mockTokenStorage struct {
	tokens      map[string]*models.RefreshToken
	saveError   error
	deleteError error
}

func newMockTokenStorage() *mockTokenStorage {
	return &mockTokenStorage{tokens: make(map[string]*models.RefreshToken)}
}

func (m *mockTokenStorage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.tokens[token.Token] = token
	return nil
}

func (m *mockTokenStorage) GetRefreshToken(ctx context.Context, tokenValue string) (*models.RefreshToken, error) {
	token, ok := m.tokens[tokenValue]
	if !ok {
		return nil, storage.ErrTokenNotFound
	}
	return token, nil
}

func (m *mockTokenStorage) DeleteRefreshToken(ctx context.Context, tokenValue string) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	if _, ok := m.tokens[tokenValue]; !ok {
		return storage.ErrTokenNotFound
	}
	delete(m.tokens, tokenValue)
	return nil
}

func (m *mockTokenStorage) DeleteNodeTokens(ctx context.Context, nodeID string) (int, error) {
	if m.deleteError != nil {
		return 0, m.deleteError
	}
	count := 0
	for value, token := range m.tokens {
		if token.NodeID == nodeID {
			delete(m.tokens, value)
			count++
		}
	}
	return count, nil
}

func (m *mockTokenStorage) DeleteExpiredTokens(ctx context.Context) (int, error) {
	return 0, nil
}

func testJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:          []byte("test-secret-key-for-jwt-signing"),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func newTestAuthHandler(nodes *mockNodeStorage, tokens *mockTokenStorage) *AuthHandler {
	return NewAuthHandler(testLogger(), nodes, tokens, testJWTConfig())
}

func registeredNode(nodes *mockNodeStorage, name string) *models.SyncNode {
	node := &models.SyncNode{
		NodeID:      "node-id-" + name,
		Name:        name,
		AuthKeyHash: "valid-auth-key-hash",
		PublicSalt:  "c2FsdC1zYWx0LXNhbHQ=",
		IsActive:    true,
	}
	nodes.nodes[name] = node
	return node
}

func TestAuthHandler_Register_Success(t *testing.T) {
	nodes := newMockNodeStorage()
	h := newTestAuthHandler(nodes, newMockTokenStorage())

	reqBody := api.RegisterRequest{
		NodeName:     "store-harare-01",
		AuthKeyHash:  "abc123hash",
		PublicSalt:   "c2FsdA==",
		Address:      "http://store-harare-01:8080",
		Capabilities: []string{"pos", "inventory"},
	}
	body, err := json.Marshal(reqBody)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp api.RegisterResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.NodeID)

	created, ok := nodes.nodes["store-harare-01"]
	require.True(t, ok)
	assert.Equal(t, resp.NodeID, created.NodeID)
	assert.True(t, created.IsActive)
	assert.Equal(t, []string{"pos", "inventory"}, created.Capabilities)
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	h := newTestAuthHandler(newMockNodeStorage(), newMockTokenStorage())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte("{invalid")))
	w := httptest.NewRecorder()

	h.Register(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Register_InvalidNodeName(t *testing.T) {
	tests := []struct {
		name     string
		nodeName string
	}{
		{name: "too short", nodeName: "ab"},
		{name: "invalid characters", nodeName: "store harare!"},
		{name: "empty", nodeName: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestAuthHandler(newMockNodeStorage(), newMockTokenStorage())

			body, err := json.Marshal(api.RegisterRequest{
				NodeName:    tt.nodeName,
				AuthKeyHash: "hash",
				PublicSalt:  "salt",
			})
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
			w := httptest.NewRecorder()

			h.Register(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAuthHandler_Register_DuplicateName(t *testing.T) {
	nodes := newMockNodeStorage()
	registeredNode(nodes, "store-harare-01")
	h := newTestAuthHandler(nodes, newMockTokenStorage())

	body, err := json.Marshal(api.RegisterRequest{
		NodeName:    "store-harare-01",
		AuthKeyHash: "hash",
		PublicSalt:  "salt",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		req  api.RegisterRequest
	}{
		{
			name: "missing auth_key_hash",
			req:  api.RegisterRequest{NodeName: "store-01", PublicSalt: "salt"},
		},
		{
			name: "missing public_salt",
			req:  api.RegisterRequest{NodeName: "store-01", AuthKeyHash: "hash"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestAuthHandler(newMockNodeStorage(), newMockTokenStorage())

			body, err := json.Marshal(tt.req)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
			w := httptest.NewRecorder()

			h.Register(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAuthHandler_GetSalt_Success(t *testing.T) {
	nodes := newMockNodeStorage()
	registeredNode(nodes, "store-harare-01")
	h := newTestAuthHandler(nodes, newMockTokenStorage())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/salt/store-harare-01", nil)
	req.SetPathValue("node_name", "store-harare-01")
	w := httptest.NewRecorder()

	h.GetSalt(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp api.SaltResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "c2FsdC1zYWx0LXNhbHQ=", resp.PublicSalt)
}

func TestAuthHandler_GetSalt_NodeNotFound(t *testing.T) {
	h := newTestAuthHandler(newMockNodeStorage(), newMockTokenStorage())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/salt/missing-node", nil)
	req.SetPathValue("node_name", "missing-node")
	w := httptest.NewRecorder()

	h.GetSalt(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	nodes := newMockNodeStorage()
	node := registeredNode(nodes, "store-harare-01")
	tokens := newMockTokenStorage()
	h := newTestAuthHandler(nodes, tokens)

	body, err := json.Marshal(api.LoginRequest{
		NodeName:    "store-harare-01",
		AuthKeyHash: "valid-auth-key-hash",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)

	// Access token несет claims узла
	claims, err := ValidateAccessToken(testJWTConfig(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, node.NodeID, claims.NodeID)
	assert.Equal(t, "store-harare-01", claims.NodeName)

	// Refresh token сохранен
	_, ok := tokens.tokens[resp.RefreshToken]
	assert.True(t, ok)
}

func TestAuthHandler_Login_WrongAuthKey(t *testing.T) {
	nodes := newMockNodeStorage()
	registeredNode(nodes, "store-harare-01")
	h := newTestAuthHandler(nodes, newMockTokenStorage())

	body, err := json.Marshal(api.LoginRequest{
		NodeName:    "store-harare-01",
		AuthKeyHash: "wrong-hash",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Login_NodeNotFound(t *testing.T) {
	h := newTestAuthHandler(newMockNodeStorage(), newMockTokenStorage())

	body, err := json.Marshal(api.LoginRequest{
		NodeName:    "missing-node",
		AuthKeyHash: "hash",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Login_DeactivatedNode(t *testing.T) {
	nodes := newMockNodeStorage()
	node := registeredNode(nodes, "store-harare-01")
	node.IsActive = false
	h := newTestAuthHandler(nodes, newMockTokenStorage())

	body, err := json.Marshal(api.LoginRequest{
		NodeName:    "store-harare-01",
		AuthKeyHash: "valid-auth-key-hash",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthHandler_Refresh_Success(t *testing.T) {
	nodes := newMockNodeStorage()
	node := registeredNode(nodes, "store-harare-01")
	tokens := newMockTokenStorage()
	tokens.tokens["old-refresh-token"] = &models.RefreshToken{
		Token:     "old-refresh-token",
		NodeID:    node.NodeID,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	h := newTestAuthHandler(nodes, tokens)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer old-refresh-token")
	w := httptest.NewRecorder()

	h.Refresh(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	// Rotation: старый token отозван, новый сохранен
	_, oldExists := tokens.tokens["old-refresh-token"]
	assert.False(t, oldExists)
	_, newExists := tokens.tokens[resp.RefreshToken]
	assert.True(t, newExists)
}

func TestAuthHandler_Refresh_ExpiredToken(t *testing.T) {
	nodes := newMockNodeStorage()
	node := registeredNode(nodes, "store-harare-01")
	tokens := newMockTokenStorage()
	tokens.tokens["expired-token"] = &models.RefreshToken{
		Token:     "expired-token",
		NodeID:    node.NodeID,
		ExpiresAt: time.Now().Add(-time.Hour),
		CreatedAt: time.Now().Add(-25 * time.Hour),
	}
	h := newTestAuthHandler(nodes, tokens)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	w := httptest.NewRecorder()

	h.Refresh(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Refresh_MissingAuthHeader(t *testing.T) {
	h := newTestAuthHandler(newMockNodeStorage(), newMockTokenStorage())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	w := httptest.NewRecorder()

	h.Refresh(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	nodes := newMockNodeStorage()
	node := registeredNode(nodes, "store-harare-01")
	tokens := newMockTokenStorage()
	tokens.tokens["refresh-1"] = &models.RefreshToken{Token: "refresh-1", NodeID: node.NodeID}
	tokens.tokens["refresh-2"] = &models.RefreshToken{Token: "refresh-2", NodeID: node.NodeID}
	h := newTestAuthHandler(nodes, tokens)

	accessToken, _, err := GenerateAccessToken(testJWTConfig(), node.NodeID, node.Name)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w := httptest.NewRecorder()

	h.Logout(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, tokens.tokens)
}

func TestAuthHandler_Logout_InvalidToken(t *testing.T) {
	h := newTestAuthHandler(newMockNodeStorage(), newMockTokenStorage())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()

	h.Logout(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Register_StorageError(t *testing.T) {
	nodes := newMockNodeStorage()
	nodes.createError = errors.New("db down")
	h := newTestAuthHandler(nodes, newMockTokenStorage())

	body, err := json.Marshal(api.RegisterRequest{
		NodeName:    "store-harare-01",
		AuthKeyHash: "hash",
		PublicSalt:  "salt",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
