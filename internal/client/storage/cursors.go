package storage

import "context"

// CursorStorage defines interface for per-peer sync cursors.
// A cursor is the watermark (Lamport timestamp) up to which the peer's
// events have been pulled and applied locally.
type CursorStorage interface {
	// SaveCursor stores the watermark for a peer
	SaveCursor(ctx context.Context, peerID string, watermark int64) error

	// GetCursor retrieves the watermark for a peer.
	// Returns 0 if the peer has never been synced.
	GetCursor(ctx context.Context, peerID string) (int64, error)

	// ListCursors returns all known peer cursors
	ListCursors(ctx context.Context) (map[string]int64, error)

	// ResetCursors drops all cursors, forcing a full resync
	ResetCursors(ctx context.Context) error
}
