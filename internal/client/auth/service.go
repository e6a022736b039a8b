package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	clientapi "github.com/iudanet/syncmesh/internal/client/api"
	"github.com/iudanet/syncmesh/internal/client/storage"
	"github.com/iudanet/syncmesh/internal/crypto"
	"github.com/iudanet/syncmesh/internal/validation"
	"github.com/iudanet/syncmesh/pkg/api"
)

// Service выполняет auth flow узла против peer: регистрация, логин,
// ротация токенов и logout. Учетные данные хранятся через Store
// с запечатанными токенами.
type Service struct {
	logger    *slog.Logger
	apiClient clientapi.ClientAPI
	store     *Store
}

// NewService создает сервис авторизации узла
func NewService(logger *slog.Logger, apiClient clientapi.ClientAPI, store *Store) *Service {
	return &Service{
		logger:    logger,
		apiClient: apiClient,
		store:     store,
	}
}

// RegisterResult содержит результат регистрации узла
type RegisterResult struct {
	NodeID     string // UUID узла, назначенный peer
	NodeName   string
	PublicSalt string // base64
}

// Register регистрирует узел в mesh.
// Auth key выводится из cluster secret и имени узла; peer получает
// только SHA256 хеш.
func (s *Service) Register(ctx context.Context, nodeName, clusterSecret, address string, capabilities []string) (*RegisterResult, error) {
	if err := validation.ValidateNodeName(nodeName); err != nil {
		return nil, fmt.Errorf("invalid node name: %w", err)
	}
	if err := validation.ValidateClusterSecret(clusterSecret); err != nil {
		return nil, fmt.Errorf("invalid cluster secret: %w", err)
	}

	publicSalt, err := crypto.GenerateSaltBase64()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	keys, err := crypto.DeriveNodeKeysFromBase64Salt(clusterSecret, nodeName, publicSalt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive keys: %w", err)
	}

	authKeyHash, err := crypto.HashAuthKey(keys.AuthKey)
	if err != nil {
		return nil, fmt.Errorf("failed to hash auth key: %w", err)
	}

	resp, err := s.apiClient.Register(ctx, api.RegisterRequest{
		NodeName:     nodeName,
		AuthKeyHash:  authKeyHash,
		PublicSalt:   publicSalt,
		Address:      address,
		Capabilities: capabilities,
	})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	return &RegisterResult{
		NodeID:     resp.NodeID,
		NodeName:   nodeName,
		PublicSalt: publicSalt,
	}, nil
}

// LoginResult содержит результат аутентификации узла
type LoginResult struct {
	NodeID    string
	NodeName  string
	ExpiresIn int64 // время жизни access token в секундах
}

// Login аутентифицирует узел на peer и сохраняет запечатанные токены.
// Salt запрашивается у peer, ключи выводятся заново из cluster secret.
func (s *Service) Login(ctx context.Context, nodeName, clusterSecret string) (*LoginResult, error) {
	if err := validation.ValidateNodeName(nodeName); err != nil {
		return nil, fmt.Errorf("invalid node name: %w", err)
	}
	if err := validation.ValidateClusterSecret(clusterSecret); err != nil {
		return nil, fmt.Errorf("invalid cluster secret: %w", err)
	}

	saltResp, err := s.apiClient.GetSalt(ctx, nodeName)
	if err != nil {
		return nil, fmt.Errorf("failed to get salt: %w", err)
	}

	keys, err := crypto.DeriveNodeKeysFromBase64Salt(clusterSecret, nodeName, saltResp.PublicSalt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive keys: %w", err)
	}

	authKeyHash, err := crypto.HashAuthKey(keys.AuthKey)
	if err != nil {
		return nil, fmt.Errorf("failed to hash auth key: %w", err)
	}

	resp, err := s.apiClient.Login(ctx, api.LoginRequest{
		NodeName:    nodeName,
		AuthKeyHash: authKeyHash,
	})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	nodeID, err := s.nodeIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if nodeID == "" {
		// Первый логин на этом устройстве: NodeID берется из реестра peer
		nodeID, err = s.lookupNodeID(ctx, nodeName, resp.AccessToken)
		if err != nil {
			return nil, err
		}
	}

	s.store.SetSealKey(keys.SealKey)
	if err := s.store.SaveAuth(ctx, &storage.AuthData{
		NodeName:     nodeName,
		NodeID:       nodeID,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		PublicSalt:   saltResp.PublicSalt,
		ExpiresAt:    time.Now().Unix() + resp.ExpiresIn,
	}); err != nil {
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}

	return &LoginResult{
		NodeID:    nodeID,
		NodeName:  nodeName,
		ExpiresIn: resp.ExpiresIn,
	}, nil
}

// Unlock выводит seal key из cluster secret и сохраненного salt.
// Вызывается перед командами, которым нужны распечатанные токены.
func (s *Service) Unlock(ctx context.Context, clusterSecret string) error {
	identity, err := s.store.Identity(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return fmt.Errorf("not authenticated, run login first")
		}
		return fmt.Errorf("failed to load identity: %w", err)
	}

	keys, err := crypto.DeriveNodeKeysFromBase64Salt(clusterSecret, identity.NodeName, identity.PublicSalt)
	if err != nil {
		return fmt.Errorf("failed to derive keys: %w", err)
	}

	s.store.SetSealKey(keys.SealKey)
	return nil
}

// Refresh обменивает refresh token на новую пару и сохраняет ее.
// Требует распечатанного store (Unlock или Login в этой сессии).
func (s *Service) Refresh(ctx context.Context) error {
	session, err := s.store.Session(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	resp, err := s.apiClient.Refresh(ctx, session.RefreshToken)
	if err != nil {
		return fmt.Errorf("token refresh failed: %w", err)
	}

	session.AccessToken = resp.AccessToken
	session.RefreshToken = resp.RefreshToken
	session.ExpiresAt = time.Now().Unix() + resp.ExpiresIn

	if err := s.store.SaveAuth(ctx, session); err != nil {
		return fmt.Errorf("failed to save rotated tokens: %w", err)
	}

	return nil
}

// Logout отзывает токены на peer и удаляет локальные учетные данные.
// Недоступность peer не мешает локальному logout.
func (s *Service) Logout(ctx context.Context) error {
	session, err := s.store.Session(ctx)
	if err != nil {
		s.logger.DebugContext(ctx, "no unsealed session during logout",
			slog.String("error", err.Error()))
	} else {
		if logoutErr := s.apiClient.Logout(ctx, session.AccessToken); logoutErr != nil {
			s.logger.WarnContext(ctx, "failed to logout on peer",
				slog.String("error", logoutErr.Error()))
		}
	}

	if err := s.store.DeleteAuth(ctx); err != nil {
		return fmt.Errorf("failed to delete local credentials: %w", err)
	}

	return nil
}

// AccessToken возвращает действующий access token, обновляя пару
// при истечении срока
func (s *Service) AccessToken(ctx context.Context) (string, error) {
	session, err := s.store.Session(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}

	if time.Now().Unix() >= session.ExpiresAt {
		if err := s.Refresh(ctx); err != nil {
			return "", err
		}
		session, err = s.store.Session(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to reload session: %w", err)
		}
	}

	return session.AccessToken, nil
}

// lookupNodeID находит собственный NodeID в реестре peer по имени узла
func (s *Service) lookupNodeID(ctx context.Context, nodeName, accessToken string) (string, error) {
	nodes, err := s.apiClient.Nodes(ctx, accessToken, false)
	if err != nil {
		return "", fmt.Errorf("failed to query node registry: %w", err)
	}

	for _, node := range nodes.Nodes {
		if node.Name == nodeName {
			return node.NodeID, nil
		}
	}

	return "", fmt.Errorf("node %s is not present in peer registry", nodeName)
}

// nodeIdentity возвращает сохраненный NodeID или пустую строку
// при первом логине на этом устройстве
func (s *Service) nodeIdentity(ctx context.Context) (string, error) {
	identity, err := s.store.Identity(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load identity: %w", err)
	}
	return identity.NodeID, nil
}
