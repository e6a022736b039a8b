package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/syncmesh/internal/client/storage"
	"github.com/iudanet/syncmesh/internal/models"
)

// maxPriority ограничивает приоритет мутации одним байтом ключа
const maxPriority = 255

// queueKey строит ключ очереди: инвертированный приоритет + seq.
// Лексикографический порядок ключей дает порядок доставки:
// больший приоритет раньше, внутри приоритета - FIFO.
func queueKey(priority int, seq uint64) []byte {
	key := make([]byte, 9)
	key[0] = byte(maxPriority - priority)
	binary.BigEndian.PutUint64(key[1:], seq)
	return key
}

// Enqueue appends a mutation to the queue and assigns its Seq
func (s *Storage) Enqueue(ctx context.Context, mutation *models.QueuedMutation) error {
	if mutation.Priority < 0 || mutation.Priority > maxPriority {
		return fmt.Errorf("priority out of range: %d", mutation.Priority)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return fmt.Errorf("queue bucket not found")
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}
		mutation.Seq = seq
		if mutation.EnqueuedAt.IsZero() {
			mutation.EnqueuedAt = time.Now()
		}

		data, err := json.Marshal(mutation)
		if err != nil {
			return fmt.Errorf("failed to marshal mutation: %w", err)
		}

		if err := bucket.Put(queueKey(mutation.Priority, seq), data); err != nil {
			return fmt.Errorf("failed to enqueue mutation: %w", err)
		}

		return nil
	})
}

// NextBatch returns up to limit unprocessed mutations in delivery order
func (s *Storage) NextBatch(ctx context.Context, limit int) ([]*models.QueuedMutation, error) {
	var batch []*models.QueuedMutation

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return fmt.Errorf("queue bucket not found")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil && len(batch) < limit; k, v = cursor.Next() {
			mutation := &models.QueuedMutation{}
			if err := json.Unmarshal(v, mutation); err != nil {
				return fmt.Errorf("failed to unmarshal mutation: %w", err)
			}
			batch = append(batch, mutation)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return batch, nil
}

// MarkProcessed removes delivered mutations from the queue
func (s *Storage) MarkProcessed(ctx context.Context, seqs []uint64) error {
	if len(seqs) == 0 {
		return nil
	}

	seqSet := make(map[uint64]bool, len(seqs))
	for _, seq := range seqs {
		seqSet[seq] = true
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return fmt.Errorf("queue bucket not found")
		}

		cursor := bucket.Cursor()
		for k, _ := cursor.First(); k != nil; k, _ = cursor.Next() {
			seq := binary.BigEndian.Uint64(k[1:])
			if !seqSet[seq] {
				continue
			}
			if err := cursor.Delete(); err != nil {
				return fmt.Errorf("failed to delete mutation: %w", err)
			}
		}

		return nil
	})
}

// Touch increments the attempt counter after a failed delivery
func (s *Storage) Touch(ctx context.Context, seq uint64) (int, error) {
	var attempts int

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return fmt.Errorf("queue bucket not found")
		}

		key, mutation, err := findBySeq(bucket, seq)
		if err != nil {
			return err
		}

		mutation.AttemptCount++
		mutation.LastAttemptAt = time.Now()
		attempts = mutation.AttemptCount

		data, err := json.Marshal(mutation)
		if err != nil {
			return fmt.Errorf("failed to marshal mutation: %w", err)
		}

		return bucket.Put(key, data)
	})

	if err != nil {
		return 0, err
	}

	return attempts, nil
}

// Abandon moves a mutation to the abandoned set
func (s *Storage) Abandon(ctx context.Context, seq uint64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		queue := tx.Bucket(bucketQueue)
		abandoned := tx.Bucket(bucketAbandoned)
		if queue == nil || abandoned == nil {
			return fmt.Errorf("queue buckets not found")
		}

		key, mutation, err := findBySeq(queue, seq)
		if err != nil {
			return err
		}

		mutation.IsProcessed = true

		data, err := json.Marshal(mutation)
		if err != nil {
			return fmt.Errorf("failed to marshal mutation: %w", err)
		}

		if err := abandoned.Put(key, data); err != nil {
			return fmt.Errorf("failed to store abandoned mutation: %w", err)
		}

		return queue.Delete(key)
	})
}

// Depth returns the number of mutations waiting for delivery
func (s *Storage) Depth(ctx context.Context) (int, error) {
	return s.bucketSize(bucketQueue)
}

// AbandonedCount returns the number of abandoned mutations
func (s *Storage) AbandonedCount(ctx context.Context) (int, error) {
	return s.bucketSize(bucketAbandoned)
}

func (s *Storage) bucketSize(name []byte) (int, error) {
	var count int

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(name)
		if bucket == nil {
			return fmt.Errorf("%s bucket not found", name)
		}
		count = bucket.Stats().KeyN
		return nil
	})

	if err != nil {
		return 0, err
	}

	return count, nil
}

// findBySeq ищет мутацию по seq перебором ключей очереди.
// Очередь короткоживущая, полный проход дешев.
func findBySeq(bucket *bbolt.Bucket, seq uint64) ([]byte, *models.QueuedMutation, error) {
	cursor := bucket.Cursor()
	for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
		if binary.BigEndian.Uint64(k[1:]) != seq {
			continue
		}

		mutation := &models.QueuedMutation{}
		if err := json.Unmarshal(v, mutation); err != nil {
			return nil, nil, fmt.Errorf("failed to unmarshal mutation: %w", err)
		}

		key := make([]byte, len(k))
		copy(key, k)
		return key, mutation, nil
	}

	return nil, nil, storage.ErrMutationNotFound
}
