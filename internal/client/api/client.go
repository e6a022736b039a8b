package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/iudanet/syncmesh/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI определяет интерфейс HTTP клиента peer-узла
type ClientAPI interface {
	// Register регистрирует узел на peer
	Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)

	// GetSalt получает public_salt узла
	GetSalt(ctx context.Context, nodeName string) (*api.SaltResponse, error)

	// Login выполняет аутентификацию узла
	Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error)

	// Refresh обменивает refresh token на новую пару токенов
	Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error)

	// Logout отзывает все refresh tokens узла
	Logout(ctx context.Context, accessToken string) error

	// Sync выполняет push-pull обмен событиями с peer
	Sync(ctx context.Context, accessToken string, req api.SyncRequest) (*api.SyncResponse, error)

	// Heartbeat обновляет liveness узла на peer
	Heartbeat(ctx context.Context, accessToken string, req api.HeartbeatRequest) (*api.HeartbeatResponse, error)

	// Nodes возвращает реестр узлов peer
	Nodes(ctx context.Context, accessToken string, activeOnly bool) (*api.NodesResponse, error)

	// Stats возвращает агрегированное состояние sync-подсистемы peer
	Stats(ctx context.Context, accessToken string) (*api.SyncStatsResponse, error)

	// InitiateRecovery запускает partition recovery на peer
	InitiateRecovery(ctx context.Context, accessToken string, req api.RecoveryRequest) (*api.RecoveryResponse, error)

	// Conflicts возвращает журнал конфликтов peer
	Conflicts(ctx context.Context, accessToken string, onlyUnreviewed bool, limit int) (*api.ConflictsResponse, error)

	// ReviewConflict отмечает конфликт как разобранный
	ReviewConflict(ctx context.Context, accessToken, conflictID string) error
}

// Client представляет HTTP клиент для взаимодействия с peer-узлом
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Authorization переносится при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/register", "", req, &resp)
	if err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) GetSalt(ctx context.Context, nodeName string) (*api.SaltResponse, error) {
	var resp api.SaltResponse
	path := "/api/v1/auth/salt/" + url.PathEscape(nodeName)
	err := c.doRequest(ctx, http.MethodGet, path, "", nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("get salt request failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", "", req, &resp)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/refresh", refreshToken, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) Logout(ctx context.Context, accessToken string) error {
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout", accessToken, nil, nil)
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

func (c *Client) Sync(ctx context.Context, accessToken string, req api.SyncRequest) (*api.SyncResponse, error) {
	var resp api.SyncResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/sync", accessToken, req, &resp)
	if err != nil {
		return nil, fmt.Errorf("sync request failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) Heartbeat(ctx context.Context, accessToken string, req api.HeartbeatRequest) (*api.HeartbeatResponse, error) {
	var resp api.HeartbeatResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/nodes/heartbeat", accessToken, req, &resp)
	if err != nil {
		return nil, fmt.Errorf("heartbeat request failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) Nodes(ctx context.Context, accessToken string, activeOnly bool) (*api.NodesResponse, error) {
	var resp api.NodesResponse
	path := "/api/v1/nodes"
	if activeOnly {
		path += "?active=true"
	}
	err := c.doRequest(ctx, http.MethodGet, path, accessToken, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("nodes request failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) Stats(ctx context.Context, accessToken string) (*api.SyncStatsResponse, error) {
	var resp api.SyncStatsResponse
	err := c.doRequest(ctx, http.MethodGet, "/api/v1/admin/sync/stats", accessToken, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("stats request failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) InitiateRecovery(ctx context.Context, accessToken string, req api.RecoveryRequest) (*api.RecoveryResponse, error) {
	var resp api.RecoveryResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/admin/sync/initiate-recovery", accessToken, req, &resp)
	if err != nil {
		return nil, fmt.Errorf("recovery request failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) Conflicts(ctx context.Context, accessToken string, onlyUnreviewed bool, limit int) (*api.ConflictsResponse, error) {
	var resp api.ConflictsResponse
	path := fmt.Sprintf("/api/v1/admin/sync/conflicts?unreviewed=%t&limit=%d", onlyUnreviewed, limit)
	err := c.doRequest(ctx, http.MethodGet, path, accessToken, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("conflicts request failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) ReviewConflict(ctx context.Context, accessToken, conflictID string) error {
	path := "/api/v1/admin/sync/conflicts/" + url.PathEscape(conflictID) + "/review"
	err := c.doRequest(ctx, http.MethodPost, path, accessToken, nil, nil)
	if err != nil {
		return fmt.Errorf("review conflict request failed: %w", err)
	}
	return nil
}

// doRequest выполняет HTTP запрос с опциональным Bearer token
func (c *Client) doRequest(ctx context.Context, method, path, token string, body, result interface{}) error {
	requestURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
