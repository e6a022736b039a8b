package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientapi "github.com/iudanet/syncmesh/internal/client/api"
	"github.com/iudanet/syncmesh/internal/client/storage/boltdb"
	"github.com/iudanet/syncmesh/pkg/api"
)

const (
	testNodeName = "store-harare-01"
	testSecret   = "cluster-secret-at-least-16-chars"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) (*Service, *Store, *clientapi.ClientAPIMock) {
	t.Helper()

	boltStorage, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "node.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, boltStorage.Close())
	})

	store := NewStore(boltStorage)
	mock := &clientapi.ClientAPIMock{}

	return NewService(testLogger(), mock, store), store, mock
}

// registerFlow выполняет регистрацию и возвращает сгенерированный salt
func registerFlow(t *testing.T, svc *Service, mock *clientapi.ClientAPIMock) string {
	t.Helper()

	var gotSalt string
	mock.RegisterFunc = func(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
		gotSalt = req.PublicSalt
		return &api.RegisterResponse{NodeID: "node-uuid", Message: "registered"}, nil
	}

	result, err := svc.Register(context.Background(), testNodeName, testSecret, "http://store:8080", []string{"pos"})
	require.NoError(t, err)
	require.Equal(t, "node-uuid", result.NodeID)
	require.NotEmpty(t, gotSalt)

	return gotSalt
}

// loginMocks настраивает мок peer для логина с заданным salt
func loginMocks(mock *clientapi.ClientAPIMock, salt string) {
	mock.GetSaltFunc = func(ctx context.Context, nodeName string) (*api.SaltResponse, error) {
		return &api.SaltResponse{PublicSalt: salt}, nil
	}
	mock.LoginFunc = func(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
		return &api.TokenResponse{
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
			ExpiresIn:    900,
		}, nil
	}
	mock.NodesFunc = func(ctx context.Context, accessToken string, activeOnly bool) (*api.NodesResponse, error) {
		return &api.NodesResponse{Nodes: []api.NodeInfo{
			{NodeID: "node-uuid", Name: testNodeName},
		}}, nil
	}
}

func TestService_Register(t *testing.T) {
	svc, _, mock := newTestService(t)
	registerFlow(t, svc, mock)

	calls := mock.RegisterCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, testNodeName, calls[0].Req.NodeName)
	assert.NotEmpty(t, calls[0].Req.AuthKeyHash)
	assert.Equal(t, "http://store:8080", calls[0].Req.Address)
}

func TestService_Register_InvalidName(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), "a!", testSecret, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid node name")
}

func TestService_Register_ShortSecret(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), testNodeName, "short", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cluster secret")
}

func TestService_Login_SavesSealedSession(t *testing.T) {
	svc, store, mock := newTestService(t)
	salt := registerFlow(t, svc, mock)
	loginMocks(mock, salt)
	ctx := context.Background()

	result, err := svc.Login(ctx, testNodeName, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "node-uuid", result.NodeID)
	assert.Equal(t, int64(900), result.ExpiresIn)

	// Сессия распечатывается тем же ключом
	session, err := store.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-token", session.AccessToken)
	assert.Equal(t, "refresh-token", session.RefreshToken)
	assert.Equal(t, "node-uuid", session.NodeID)
	assert.Greater(t, session.ExpiresAt, time.Now().Unix())
}

func TestService_Login_SaltMismatchBreaksUnseal(t *testing.T) {
	svc, store, mock := newTestService(t)
	salt := registerFlow(t, svc, mock)
	loginMocks(mock, salt)
	ctx := context.Background()

	_, err := svc.Login(ctx, testNodeName, testSecret)
	require.NoError(t, err)

	// Unlock с другим secret выводит другой ключ
	require.NoError(t, svc.Unlock(ctx, "another-secret-16-characters-long"))
	_, err = store.Session(ctx)
	require.Error(t, err)
}

func TestService_Unlock_NotAuthenticated(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.Unlock(context.Background(), testSecret)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authenticated")
}

func TestService_Refresh_RotatesTokens(t *testing.T) {
	svc, store, mock := newTestService(t)
	salt := registerFlow(t, svc, mock)
	loginMocks(mock, salt)
	ctx := context.Background()

	_, err := svc.Login(ctx, testNodeName, testSecret)
	require.NoError(t, err)

	mock.RefreshFunc = func(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
		assert.Equal(t, "refresh-token", refreshToken)
		return &api.TokenResponse{
			AccessToken:  "rotated-access",
			RefreshToken: "rotated-refresh",
			ExpiresIn:    900,
		}, nil
	}

	require.NoError(t, svc.Refresh(ctx))

	session, err := store.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rotated-access", session.AccessToken)
	assert.Equal(t, "rotated-refresh", session.RefreshToken)
}

func TestService_AccessToken_RefreshesExpired(t *testing.T) {
	svc, store, mock := newTestService(t)
	salt := registerFlow(t, svc, mock)
	loginMocks(mock, salt)
	ctx := context.Background()

	// Логин с мгновенно истекающим токеном
	mock.LoginFunc = func(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
		return &api.TokenResponse{AccessToken: "stale", RefreshToken: "refresh-token", ExpiresIn: -10}, nil
	}
	_, err := svc.Login(ctx, testNodeName, testSecret)
	require.NoError(t, err)

	mock.RefreshFunc = func(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
		return &api.TokenResponse{AccessToken: "fresh", RefreshToken: "fresh-refresh", ExpiresIn: 900}, nil
	}

	token, err := svc.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)

	session, err := store.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fresh-refresh", session.RefreshToken)
}

func TestService_Logout(t *testing.T) {
	svc, store, mock := newTestService(t)
	salt := registerFlow(t, svc, mock)
	loginMocks(mock, salt)
	ctx := context.Background()

	_, err := svc.Login(ctx, testNodeName, testSecret)
	require.NoError(t, err)

	mock.LogoutFunc = func(ctx context.Context, accessToken string) error {
		assert.Equal(t, "access-token", accessToken)
		return nil
	}

	require.NoError(t, svc.Logout(ctx))

	ok, err := store.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_Logout_PeerUnavailable(t *testing.T) {
	svc, store, mock := newTestService(t)
	salt := registerFlow(t, svc, mock)
	loginMocks(mock, salt)
	ctx := context.Background()

	_, err := svc.Login(ctx, testNodeName, testSecret)
	require.NoError(t, err)

	mock.LogoutFunc = func(ctx context.Context, accessToken string) error {
		return fmt.Errorf("connection refused")
	}

	// Локальный logout выполняется даже при недоступном peer
	require.NoError(t, svc.Logout(ctx))

	ok, err := store.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
