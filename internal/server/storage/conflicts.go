package storage

import (
	"context"
	"time"

	"github.com/iudanet/syncmesh/internal/models"
)

// ConflictCounts holds aggregate counters over the conflict log
type ConflictCounts struct {
	Total         int
	AutoResolved  int
	PendingReview int
}

// ConflictStorage defines interface for the conflict log
type ConflictStorage interface {
	// RecordConflict persists a detected conflict and its resolution
	RecordConflict(ctx context.Context, record *models.ConflictRecord) error

	// GetConflict retrieves a conflict record by ID
	// Returns ErrConflictNotFound if record doesn't exist
	GetConflict(ctx context.Context, id string) (*models.ConflictRecord, error)

	// HasConflict reports whether a conflict between the same pair of
	// versions is already journaled. The pair is matched in both
	// directions: a replayed event may arrive with the roles swapped.
	HasConflict(ctx context.Context, record *models.ConflictRecord) (bool, error)

	// ListConflicts returns conflict records ordered by detection time
	// descending. With onlyUnreviewed, returns records pending human review.
	ListConflicts(ctx context.Context, onlyUnreviewed bool, limit int) ([]*models.ConflictRecord, error)

	// MarkReviewed marks a conflict record as reviewed by an operator
	// Returns ErrConflictNotFound if record doesn't exist
	MarkReviewed(ctx context.Context, id string) error

	// ResolveConflict overwrites the recorded outcome with a forced
	// strategy and winner, and marks the record as reviewed
	// Returns ErrConflictNotFound if record doesn't exist
	ResolveConflict(ctx context.Context, id, strategy, winnerNodeID string, resolvedAt time.Time) error

	// ConflictCounts returns aggregate counters for the stats endpoint
	ConflictCounts(ctx context.Context) (ConflictCounts, error)
}
