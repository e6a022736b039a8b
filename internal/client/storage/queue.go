package storage

import (
	"context"

	"github.com/iudanet/syncmesh/internal/models"
)

// QueueStorage defines interface for the durable offline mutation queue.
// Mutations survive process restarts; delivery order is priority descending,
// FIFO within a priority.
type QueueStorage interface {
	// Enqueue appends a mutation to the queue and assigns its Seq
	Enqueue(ctx context.Context, mutation *models.QueuedMutation) error

	// NextBatch returns up to limit unprocessed mutations in delivery order
	NextBatch(ctx context.Context, limit int) ([]*models.QueuedMutation, error)

	// MarkProcessed removes delivered mutations from the queue
	MarkProcessed(ctx context.Context, seqs []uint64) error

	// Touch increments the attempt counter after a failed delivery.
	// Returns the new attempt count.
	// Returns ErrMutationNotFound if the mutation is not queued.
	Touch(ctx context.Context, seq uint64) (int, error)

	// Abandon moves a mutation to the abandoned set after the retry
	// ceiling is exceeded. Abandoned mutations are kept for inspection.
	Abandon(ctx context.Context, seq uint64) error

	// Depth returns the number of mutations waiting for delivery
	Depth(ctx context.Context) (int, error)

	// AbandonedCount returns the number of abandoned mutations
	AbandonedCount(ctx context.Context) (int, error)
}
