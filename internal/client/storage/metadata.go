package storage

import "context"

// MetadataStorage defines interface for node sync metadata
type MetadataStorage interface {
	// SaveClockState persists the Lamport clock counter
	SaveClockState(ctx context.Context, counter int64) error

	// GetClockState retrieves the persisted Lamport clock counter.
	// Returns 0 if the clock has never been persisted.
	GetClockState(ctx context.Context) (int64, error)

	// SaveLastSyncTimestamp saves the wall-clock time of the last successful sync
	SaveLastSyncTimestamp(ctx context.Context, timestamp int64) error

	// GetLastSyncTimestamp retrieves the time of the last successful sync.
	// Returns 0 if no sync has been performed yet.
	GetLastSyncTimestamp(ctx context.Context) (int64, error)
}
