package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/syncmesh/internal/server/handlers"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testJWTConfig() handlers.JWTConfig {
	return handlers.JWTConfig{
		Secret:          []byte("test-secret-key-for-jwt-signing"),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func TestAuthMiddleware_Success(t *testing.T) {
	cfg := testJWTConfig()
	token, _, err := handlers.GenerateAccessToken(cfg, "node-id-1", "store-harare-01")
	require.NoError(t, err)

	var gotNodeID, gotNodeName string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotNodeID, _ = handlers.GetNodeID(r.Context())
		gotNodeName, _ = handlers.GetNodeName(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := AuthMiddleware(testLogger(), cfg)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "node-id-1", gotNodeID)
	assert.Equal(t, "store-harare-01", gotNodeName)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	handler := AuthMiddleware(testLogger(), testJWTConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidFormat(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "no bearer prefix", header: "Basic abc123"},
		{name: "only token", header: "sometoken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := AuthMiddleware(testLogger(), testJWTConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("next handler must not be called")
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/sync", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	handler := AuthMiddleware(testLogger(), testJWTConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync", nil)
	req.Header.Set("Authorization", "Bearer not-a-valid-jwt")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	otherCfg := testJWTConfig()
	otherCfg.Secret = []byte("different-secret-entirely-here")
	token, _, err := handlers.GenerateAccessToken(otherCfg, "node-id-1", "store-harare-01")
	require.NoError(t, err)

	handler := AuthMiddleware(testLogger(), testJWTConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
