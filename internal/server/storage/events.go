package storage

import (
	"context"

	"github.com/iudanet/syncmesh/internal/models"
)

// ApplyResult describes the outcome of SaveEvent
type ApplyResult struct {
	// Superseded is the previous winning version of the same entity,
	// nil when the entity was unknown
	Superseded *models.SyncEvent

	// Saved is true when the event became the winning version (LWW)
	Saved bool
}

// EventCounts holds aggregate counters over the event ledger
type EventCounts struct {
	Total     int
	Pending   int
	Processed int
	Abandoned int
}

// EventStorage defines interface for the sync event ledger
type EventStorage interface {
	// SaveEvent appends an event to the ledger using LWW rules:
	// the event is persisted only if it is newer than the current winning
	// version of the same entity. Returns the previous version (if any)
	// so the caller can classify and record a conflict.
	SaveEvent(ctx context.Context, event *models.SyncEvent) (ApplyResult, error)

	// GetEvent retrieves a single event by ID
	// Returns ErrEventNotFound if event doesn't exist
	GetEvent(ctx context.Context, id string) (*models.SyncEvent, error)

	// LatestForEntity returns the current winning version of an entity
	// Returns ErrEventNotFound if the entity has no events
	LatestForEntity(ctx context.Context, entityType, entityID string) (*models.SyncEvent, error)

	// EventsSince returns all events with timestamp greater than since,
	// excluding events originated by excludeNodeID (a peer never needs
	// its own events back). Ordered by timestamp ascending.
	EventsSince(ctx context.Context, since int64, excludeNodeID string) ([]*models.SyncEvent, error)

	// PendingEvents returns unprocessed, non-abandoned events ordered by
	// timestamp ascending, up to limit
	PendingEvents(ctx context.Context, limit int) ([]*models.SyncEvent, error)

	// MarkProcessed marks events as acknowledged by peers
	MarkProcessed(ctx context.Context, ids []string) error

	// IncrementRetry increments the delivery retry counter
	// Returns the new counter value
	IncrementRetry(ctx context.Context, id string) (int, error)

	// AbandonExceeded marks events whose retry counter reached maxRetries
	// as abandoned. Returns the number of abandoned events.
	AbandonExceeded(ctx context.Context, maxRetries int) (int, error)

	// MaxTimestamp returns the largest event timestamp in the ledger,
	// 0 for an empty ledger
	MaxTimestamp(ctx context.Context) (int64, error)

	// EventCounts returns aggregate counters for the stats endpoint
	EventCounts(ctx context.Context) (EventCounts, error)
}
