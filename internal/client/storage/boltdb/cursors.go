package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"
)

// SaveCursor stores the watermark for a peer
func (s *Storage) SaveCursor(ctx context.Context, peerID string, watermark int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCursors)
		if bucket == nil {
			return fmt.Errorf("cursors bucket not found")
		}

		value := make([]byte, 8)
		binary.BigEndian.PutUint64(value, uint64(watermark))

		if err := bucket.Put([]byte(peerID), value); err != nil {
			return fmt.Errorf("failed to save cursor: %w", err)
		}

		return nil
	})
}

// GetCursor retrieves the watermark for a peer, 0 if never synced
func (s *Storage) GetCursor(ctx context.Context, peerID string) (int64, error) {
	var watermark int64

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCursors)
		if bucket == nil {
			return fmt.Errorf("cursors bucket not found")
		}

		value := bucket.Get([]byte(peerID))
		if value == nil {
			return nil
		}

		watermark = int64(binary.BigEndian.Uint64(value))
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("failed to get cursor: %w", err)
	}

	return watermark, nil
}

// ListCursors returns all known peer cursors
func (s *Storage) ListCursors(ctx context.Context) (map[string]int64, error) {
	cursors := make(map[string]int64)

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCursors)
		if bucket == nil {
			return fmt.Errorf("cursors bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			cursors[string(k)] = int64(binary.BigEndian.Uint64(v))
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list cursors: %w", err)
	}

	return cursors, nil
}

// ResetCursors drops all cursors, forcing a full resync
func (s *Storage) ResetCursors(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketCursors); err != nil {
			return fmt.Errorf("failed to drop cursors bucket: %w", err)
		}
		if _, err := tx.CreateBucket(bucketCursors); err != nil {
			return fmt.Errorf("failed to recreate cursors bucket: %w", err)
		}
		return nil
	})
}
