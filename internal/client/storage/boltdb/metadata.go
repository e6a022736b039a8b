package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"
)

const (
	keyClockState        = "clock_state"
	keyLastSyncTimestamp = "last_sync_timestamp"
)

// SaveClockState persists the Lamport clock counter
func (s *Storage) SaveClockState(ctx context.Context, counter int64) error {
	return s.putMetaInt64(keyClockState, counter)
}

// GetClockState retrieves the persisted Lamport clock counter
func (s *Storage) GetClockState(ctx context.Context) (int64, error) {
	return s.getMetaInt64(keyClockState)
}

// SaveLastSyncTimestamp saves the wall-clock time of the last successful sync
func (s *Storage) SaveLastSyncTimestamp(ctx context.Context, timestamp int64) error {
	return s.putMetaInt64(keyLastSyncTimestamp, timestamp)
}

// GetLastSyncTimestamp retrieves the time of the last successful sync
func (s *Storage) GetLastSyncTimestamp(ctx context.Context) (int64, error) {
	return s.getMetaInt64(keyLastSyncTimestamp)
}

func (s *Storage) putMetaInt64(key string, value int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMeta)
		if bucket == nil {
			return fmt.Errorf("meta bucket not found")
		}

		data := make([]byte, 8)
		binary.BigEndian.PutUint64(data, uint64(value))

		if err := bucket.Put([]byte(key), data); err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}

		return nil
	})
}

func (s *Storage) getMetaInt64(key string) (int64, error) {
	var value int64

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMeta)
		if bucket == nil {
			return fmt.Errorf("meta bucket not found")
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return nil
		}

		value = int64(binary.BigEndian.Uint64(data))
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("failed to get %s: %w", key, err)
	}

	return value, nil
}
