package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/syncmesh/internal/models"
	"github.com/iudanet/syncmesh/internal/server/storage"
)

// SaveRefreshToken stores a new refresh token, replacing any existing
// token with the same value
func (s *Storage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT OR REPLACE INTO refresh_tokens (token, node_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		token.Token,
		token.NodeID,
		token.ExpiresAt.Unix(),
		token.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	return nil
}

// GetRefreshToken retrieves refresh token by value
func (s *Storage) GetRefreshToken(ctx context.Context, tokenValue string) (*models.RefreshToken, error) {
	query := `SELECT token, node_id, expires_at, created_at FROM refresh_tokens WHERE token = ?`

	token := &models.RefreshToken{}
	var expiresAt, createdAt int64

	err := s.db.QueryRowContext(ctx, query, tokenValue).Scan(
		&token.Token,
		&token.NodeID,
		&expiresAt,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	token.ExpiresAt = time.Unix(expiresAt, 0)
	token.CreatedAt = time.Unix(createdAt, 0)

	return token, nil
}

// DeleteRefreshToken deletes refresh token by value
func (s *Storage) DeleteRefreshToken(ctx context.Context, tokenValue string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = ?`, tokenValue)
	if err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrTokenNotFound
	}

	return nil
}

// DeleteNodeTokens deletes all refresh tokens for a node
func (s *Storage) DeleteNodeTokens(ctx context.Context, nodeID string) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE node_id = ?`, nodeID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete node tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}

// DeleteExpiredTokens removes all expired tokens
func (s *Storage) DeleteExpiredTokens(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < ?`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}
