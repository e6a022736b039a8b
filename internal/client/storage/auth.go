package storage

import (
	"context"
)

// AuthStorage defines interface for storing node authentication data.
// This is the lowest storage layer - it works with raw data (already
// sealed tokens) and doesn't perform any encryption itself.
type AuthStorage interface {
	// SaveAuth stores authentication data as-is (tokens should already be sealed)
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth retrieves stored authentication data as-is
	// Returns ErrAuthNotFound if no auth data exists
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes stored authentication data (logout)
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated checks if valid authentication exists (not expired)
	IsAuthenticated(ctx context.Context) (bool, error)
}

// AuthData represents node authentication information in storage.
// Tokens are plaintext in memory and sealed (base64 ciphertext) at rest;
// the auth.Service layer does the sealing.
type AuthData struct {
	NodeName     string `json:"node_name"`
	NodeID       string `json:"node_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	PublicSalt   string `json:"public_salt"`
	ExpiresAt    int64  `json:"expires_at"` // unix seconds
}
