package auth

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/iudanet/syncmesh/internal/client/storage"
	"github.com/iudanet/syncmesh/internal/crypto"
)

// Store оборачивает AuthStorage слоем шифрования: токены запечатываются
// AES-256-GCM перед записью на диск. Имя узла и public salt хранятся
// открыто - они нужны для повторного вывода seal key.
type Store struct {
	storage storage.AuthStorage
	sealKey []byte
}

// NewStore создает store поверх хранилища учетных данных
func NewStore(authStorage storage.AuthStorage) *Store {
	return &Store{storage: authStorage}
}

// SetSealKey устанавливает ключ шифрования токенов.
// Вызывается после вывода ключей из cluster secret.
func (s *Store) SetSealKey(key []byte) {
	s.sealKey = key
}

// SaveAuth запечатывает токены и сохраняет учетные данные
func (s *Store) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	if auth == nil {
		return fmt.Errorf("auth data is nil")
	}
	if len(s.sealKey) == 0 {
		return fmt.Errorf("seal key is not set")
	}

	sealedAccess, err := crypto.Seal([]byte(auth.AccessToken), s.sealKey)
	if err != nil {
		return fmt.Errorf("failed to seal access token: %w", err)
	}

	sealedRefresh, err := crypto.Seal([]byte(auth.RefreshToken), s.sealKey)
	if err != nil {
		return fmt.Errorf("failed to seal refresh token: %w", err)
	}

	// Входная структура не меняется
	sealed := *auth
	sealed.AccessToken = base64.StdEncoding.EncodeToString(sealedAccess)
	sealed.RefreshToken = base64.StdEncoding.EncodeToString(sealedRefresh)

	return s.storage.SaveAuth(ctx, &sealed)
}

// Session возвращает учетные данные с распечатанными токенами
func (s *Store) Session(ctx context.Context) (*storage.AuthData, error) {
	if len(s.sealKey) == 0 {
		return nil, fmt.Errorf("seal key is not set")
	}

	stored, err := s.storage.GetAuth(ctx)
	if err != nil {
		return nil, err
	}

	sealedAccess, err := base64.StdEncoding.DecodeString(stored.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decode access token: %w", err)
	}
	sealedRefresh, err := base64.StdEncoding.DecodeString(stored.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decode refresh token: %w", err)
	}

	accessToken, err := crypto.Open(sealedAccess, s.sealKey)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal access token: %w", err)
	}
	refreshToken, err := crypto.Open(sealedRefresh, s.sealKey)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal refresh token: %w", err)
	}

	auth := *stored
	auth.AccessToken = string(accessToken)
	auth.RefreshToken = string(refreshToken)

	return &auth, nil
}

// Identity возвращает учетные данные как они лежат в хранилище:
// токены запечатаны, но имя узла и salt доступны без seal key
func (s *Store) Identity(ctx context.Context) (*storage.AuthData, error) {
	stored, err := s.storage.GetAuth(ctx)
	if err != nil {
		return nil, err
	}

	auth := *stored
	return &auth, nil
}

// DeleteAuth удаляет сохраненные учетные данные
func (s *Store) DeleteAuth(ctx context.Context) error {
	return s.storage.DeleteAuth(ctx)
}

// IsAuthenticated проверяет наличие непросроченных учетных данных
func (s *Store) IsAuthenticated(ctx context.Context) (bool, error) {
	return s.storage.IsAuthenticated(ctx)
}
