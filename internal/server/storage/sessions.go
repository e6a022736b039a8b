package storage

import (
	"context"
	"time"

	"github.com/iudanet/syncmesh/internal/models"
)

// SessionCounts holds aggregate counters over sync sessions
type SessionCounts struct {
	LastFinishedAt time.Time
	Total          int
	Active         int
	Completed      int
	Failed         int
}

// SessionStorage defines interface for sync session persistence
type SessionStorage interface {
	// CreateSession opens a new session in the active state
	CreateSession(ctx context.Context, session *models.SyncSession) error

	// GetSession retrieves a session by ID
	// Returns ErrSessionNotFound if session doesn't exist
	GetSession(ctx context.Context, id string) (*models.SyncSession, error)

	// CloseSession finishes a session with the given status and counters
	// Returns ErrSessionNotFound if session doesn't exist
	CloseSession(ctx context.Context, id, status string, transferred, detected, resolved int) error

	// ActiveSessions returns sessions still in the active state
	ActiveSessions(ctx context.Context) ([]*models.SyncSession, error)

	// SessionCounts returns aggregate counters for the stats endpoint
	SessionCounts(ctx context.Context) (SessionCounts, error)
}
