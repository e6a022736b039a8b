package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/syncmesh/internal/server/storage"
)

func TestSaveEvent_NewEntity(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	event := makeEvent("sku-1", "node-a", 10, false)

	result, err := s.SaveEvent(ctx, event)
	require.NoError(t, err)
	assert.True(t, result.Saved)
	assert.Nil(t, result.Superseded)

	retrieved, err := s.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, retrieved.ID)
	assert.Equal(t, event.EntityType, retrieved.EntityType)
	assert.Equal(t, event.Payload, retrieved.Payload)
	assert.Equal(t, event.Timestamp, retrieved.Timestamp)
}

func TestSaveEvent_LWW(t *testing.T) {
	tests := []struct {
		name      string
		firstTS   int64
		firstNode string
		secondTS  int64
		secondNode string
		wantSaved bool
	}{
		{
			name:      "newer timestamp wins",
			firstTS:   10, firstNode: "node-a",
			secondTS:  20, secondNode: "node-b",
			wantSaved: true,
		},
		{
			name:      "older timestamp rejected",
			firstTS:   20, firstNode: "node-a",
			secondTS:  10, secondNode: "node-b",
			wantSaved: false,
		},
		{
			name:      "tie broken by node id",
			firstTS:   10, firstNode: "node-a",
			secondTS:  10, secondNode: "node-b",
			wantSaved: true,
		},
		{
			name:      "tie lost by smaller node id",
			firstTS:   10, firstNode: "node-b",
			secondTS:  10, secondNode: "node-a",
			wantSaved: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s, cleanup := setupTestStorage(t)
			defer cleanup()

			first := makeEvent("sku-1", tt.firstNode, tt.firstTS, false)
			result, err := s.SaveEvent(ctx, first)
			require.NoError(t, err)
			require.True(t, result.Saved)

			second := makeEvent("sku-1", tt.secondNode, tt.secondTS, false)
			result, err = s.SaveEvent(ctx, second)
			require.NoError(t, err)

			assert.Equal(t, tt.wantSaved, result.Saved)
			require.NotNil(t, result.Superseded, "previous version must be reported")
			assert.Equal(t, first.ID, result.Superseded.ID)

			// Победившая версия должна быть текущей
			latest, err := s.LatestForEntity(ctx, "products", "sku-1")
			require.NoError(t, err)
			if tt.wantSaved {
				assert.Equal(t, second.ID, latest.ID)
			} else {
				assert.Equal(t, first.ID, latest.ID)
			}
		})
	}
}

func TestLatestForEntity_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.LatestForEntity(ctx, "products", "unknown")
	assert.ErrorIs(t, err, storage.ErrEventNotFound)
}

func TestEventsSince(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	for _, ev := range []struct {
		entity string
		node   string
		ts     int64
	}{
		{"sku-1", "node-a", 5},
		{"sku-2", "node-a", 10},
		{"sku-3", "node-b", 15},
		{"sku-4", "node-b", 20},
	} {
		result, err := s.SaveEvent(ctx, makeEvent(ev.entity, ev.node, ev.ts, false))
		require.NoError(t, err)
		require.True(t, result.Saved)
	}

	// События после ts=5, исключая происхождение node-b
	events, err := s.EventsSince(ctx, 5, "node-b")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "sku-2", events[0].EntityID)

	// Без исключения: все события после ts=5 в порядке возрастания
	events, err = s.EventsSince(ctx, 5, "")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.True(t, events[0].Timestamp < events[1].Timestamp)
	assert.True(t, events[1].Timestamp < events[2].Timestamp)
}

func TestMarkProcessed(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	first := makeEvent("sku-1", "node-a", 10, false)
	second := makeEvent("sku-2", "node-a", 11, false)
	_, err := s.SaveEvent(ctx, first)
	require.NoError(t, err)
	_, err = s.SaveEvent(ctx, second)
	require.NoError(t, err)

	pending, err := s.PendingEvents(ctx, 100)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	require.NoError(t, s.MarkProcessed(ctx, []string{first.ID}))

	pending, err = s.PendingEvents(ctx, 100)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	// Пустой список - no-op
	require.NoError(t, s.MarkProcessed(ctx, nil))
}

func TestIncrementRetry_AbandonExceeded(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	event := makeEvent("sku-1", "node-a", 10, false)
	_, err := s.SaveEvent(ctx, event)
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		count, err := s.IncrementRetry(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}

	// Ceiling=5 еще не достигнут
	abandoned, err := s.AbandonExceeded(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, abandoned)

	// Ceiling=3 достигнут
	abandoned, err = s.AbandonExceeded(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, abandoned)

	// Брошенные события исключаются из pending и из обмена
	pending, err := s.PendingEvents(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, pending)

	events, err := s.EventsSince(ctx, 0, "")
	require.NoError(t, err)
	assert.Empty(t, events)

	counts, err := s.EventCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Total)
	assert.Equal(t, 1, counts.Abandoned)
	assert.Equal(t, 0, counts.Pending)
}

func TestIncrementRetry_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.IncrementRetry(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrEventNotFound)
}

func TestMaxTimestamp(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	ts, err := s.MaxTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts, "empty ledger has zero watermark")

	_, err = s.SaveEvent(ctx, makeEvent("sku-1", "node-a", 42, false))
	require.NoError(t, err)

	ts, err = s.MaxTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), ts)
}

func TestEventCounts(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	first := makeEvent("sku-1", "node-a", 10, false)
	second := makeEvent("sku-2", "node-a", 11, false)
	_, err := s.SaveEvent(ctx, first)
	require.NoError(t, err)
	_, err = s.SaveEvent(ctx, second)
	require.NoError(t, err)

	require.NoError(t, s.MarkProcessed(ctx, []string{first.ID}))

	counts, err := s.EventCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Total)
	assert.Equal(t, 1, counts.Pending)
	assert.Equal(t, 1, counts.Processed)
	assert.Equal(t, 0, counts.Abandoned)
}
