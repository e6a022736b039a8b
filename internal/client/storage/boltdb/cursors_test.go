package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursors_SaveAndGet(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveCursor(ctx, "peer-1", 100))

	watermark, err := s.GetCursor(ctx, "peer-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), watermark)
}

func TestCursors_GetUnknownPeer(t *testing.T) {
	s := setupTestStorage(t)

	watermark, err := s.GetCursor(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Zero(t, watermark)
}

func TestCursors_Overwrite(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveCursor(ctx, "peer-1", 100))
	require.NoError(t, s.SaveCursor(ctx, "peer-1", 250))

	watermark, err := s.GetCursor(ctx, "peer-1")
	require.NoError(t, err)
	assert.Equal(t, int64(250), watermark)
}

func TestCursors_List(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveCursor(ctx, "peer-1", 10))
	require.NoError(t, s.SaveCursor(ctx, "peer-2", 20))

	cursors, err := s.ListCursors(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"peer-1": 10, "peer-2": 20}, cursors)
}

func TestCursors_Reset(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveCursor(ctx, "peer-1", 10))
	require.NoError(t, s.SaveCursor(ctx, "peer-2", 20))

	require.NoError(t, s.ResetCursors(ctx))

	cursors, err := s.ListCursors(ctx)
	require.NoError(t, err)
	assert.Empty(t, cursors)

	// после сброса следующий обмен начинается с нуля
	watermark, err := s.GetCursor(ctx, "peer-1")
	require.NoError(t, err)
	assert.Zero(t, watermark)
}
