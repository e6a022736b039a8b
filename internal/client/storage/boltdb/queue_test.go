package boltdb

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/syncmesh/internal/client/storage"
	"github.com/iudanet/syncmesh/internal/models"
)

func makeMutation(entityID string, priority int) *models.QueuedMutation {
	return &models.QueuedMutation{
		ID:         uuid.New().String(),
		EntityType: "record",
		EntityID:   entityID,
		Operation:  "update",
		Payload:    []byte(`{"value":1}`),
		Priority:   priority,
	}
}

func TestQueue_EnqueueAssignsSeq(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	first := makeMutation("entity-1", 0)
	second := makeMutation("entity-2", 0)

	require.NoError(t, s.Enqueue(ctx, first))
	require.NoError(t, s.Enqueue(ctx, second))

	assert.NotZero(t, first.Seq)
	assert.Greater(t, second.Seq, first.Seq)
	assert.False(t, first.EnqueuedAt.IsZero())
}

func TestQueue_Enqueue_PriorityOutOfRange(t *testing.T) {
	s := setupTestStorage(t)

	err := s.Enqueue(context.Background(), makeMutation("entity-1", 300))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "priority out of range")
}

func TestQueue_NextBatch_DeliveryOrder(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	// два обычных, один срочный между ними
	require.NoError(t, s.Enqueue(ctx, makeMutation("low-1", 0)))
	require.NoError(t, s.Enqueue(ctx, makeMutation("high", 10)))
	require.NoError(t, s.Enqueue(ctx, makeMutation("low-2", 0)))

	batch, err := s.NextBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	// приоритет по убыванию, внутри приоритета - FIFO
	assert.Equal(t, "high", batch[0].EntityID)
	assert.Equal(t, "low-1", batch[1].EntityID)
	assert.Equal(t, "low-2", batch[2].EntityID)
}

func TestQueue_NextBatch_Limit(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Enqueue(ctx, makeMutation(fmt.Sprintf("entity-%d", i), 0)))
	}

	batch, err := s.NextBatch(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, batch, 3)
}

func TestQueue_NextBatch_Empty(t *testing.T) {
	s := setupTestStorage(t)

	batch, err := s.NextBatch(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestQueue_MarkProcessed(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	first := makeMutation("entity-1", 0)
	second := makeMutation("entity-2", 0)
	require.NoError(t, s.Enqueue(ctx, first))
	require.NoError(t, s.Enqueue(ctx, second))

	require.NoError(t, s.MarkProcessed(ctx, []uint64{first.Seq}))

	batch, err := s.NextBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "entity-2", batch[0].EntityID)

	depth, err := s.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, depth)
}

func TestQueue_MarkProcessed_Empty(t *testing.T) {
	s := setupTestStorage(t)

	require.NoError(t, s.MarkProcessed(context.Background(), nil))
}

func TestQueue_Touch(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	mutation := makeMutation("entity-1", 0)
	require.NoError(t, s.Enqueue(ctx, mutation))

	attempts, err := s.Touch(ctx, mutation.Seq)
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)

	attempts, err = s.Touch(ctx, mutation.Seq)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	batch, err := s.NextBatch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, 2, batch[0].AttemptCount)
	assert.False(t, batch[0].LastAttemptAt.IsZero())
}

func TestQueue_Touch_NotFound(t *testing.T) {
	s := setupTestStorage(t)

	_, err := s.Touch(context.Background(), 999)
	require.ErrorIs(t, err, storage.ErrMutationNotFound)
}

func TestQueue_Abandon(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	mutation := makeMutation("entity-1", 0)
	require.NoError(t, s.Enqueue(ctx, mutation))
	require.NoError(t, s.Abandon(ctx, mutation.Seq))

	depth, err := s.Depth(ctx)
	require.NoError(t, err)
	assert.Zero(t, depth)

	abandoned, err := s.AbandonedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, abandoned)

	// брошенная мутация больше не выдается в batch
	batch, err := s.NextBatch(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestQueue_Abandon_NotFound(t *testing.T) {
	s := setupTestStorage(t)

	err := s.Abandon(context.Background(), 999)
	require.ErrorIs(t, err, storage.ErrMutationNotFound)
}
