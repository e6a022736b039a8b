package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/syncmesh/internal/models"
	"github.com/iudanet/syncmesh/internal/server/storage"
)

const eventColumns = `
	id, entity_type, entity_id, operation, node_id, payload,
	timestamp, version, retry_count, processed, abandoned, deleted,
	created_at, updated_at
`

// SaveEvent appends an event to the ledger using LWW rules.
// The event is persisted only if it is newer than the current winning
// version of the same entity (по timestamp, затем node_id).
func (s *Storage) SaveEvent(ctx context.Context, event *models.SyncEvent) (storage.ApplyResult, error) {
	existing, err := s.LatestForEntity(ctx, event.EntityType, event.EntityID)
	if err != nil && !errors.Is(err, storage.ErrEventNotFound) {
		return storage.ApplyResult{}, fmt.Errorf("failed to check existing version: %w", err)
	}

	result := storage.ApplyResult{Superseded: existing}

	// Существующая версия новее - событие отбрасывается
	if existing != nil && !event.IsNewerThan(existing) {
		return result, nil
	}

	query := `
		INSERT INTO sync_events (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		event.ID,
		event.EntityType,
		event.EntityID,
		event.Operation,
		event.NodeID,
		event.Payload,
		event.Timestamp,
		event.Version,
		event.RetryCount,
		boolToInt(event.Processed),
		boolToInt(event.Abandoned),
		boolToInt(event.Deleted),
		event.CreatedAt.Unix(),
		event.UpdatedAt.Unix(),
	)
	if err != nil {
		return storage.ApplyResult{}, fmt.Errorf("failed to insert event: %w", err)
	}

	result.Saved = true
	return result, nil
}

// GetEvent retrieves a single event by ID
func (s *Storage) GetEvent(ctx context.Context, id string) (*models.SyncEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM sync_events WHERE id = ?`

	event, err := s.scanEvent(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

// LatestForEntity returns the current winning version of an entity
func (s *Storage) LatestForEntity(ctx context.Context, entityType, entityID string) (*models.SyncEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM sync_events
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY timestamp DESC, node_id DESC
		LIMIT 1
	`

	event, err := s.scanEvent(s.db.QueryRowContext(ctx, query, entityType, entityID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get latest version: %w", err)
	}

	return event, nil
}

// EventsSince returns all events newer than since, excluding events
// originated by excludeNodeID. Used for synchronization exchanges.
func (s *Storage) EventsSince(ctx context.Context, since int64, excludeNodeID string) ([]*models.SyncEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM sync_events
		WHERE timestamp > ? AND node_id != ? AND abandoned = 0
		ORDER BY timestamp ASC
	`

	rows, err := s.db.QueryContext(ctx, query, since, excludeNodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events since timestamp: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return s.scanEvents(rows)
}

// PendingEvents returns unprocessed, non-abandoned events up to limit
func (s *Storage) PendingEvents(ctx context.Context, limit int) ([]*models.SyncEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM sync_events
		WHERE processed = 0 AND abandoned = 0
		ORDER BY timestamp ASC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending events: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return s.scanEvents(rows)
}

// MarkProcessed marks events as acknowledged by peers
func (s *Storage) MarkProcessed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf(
		`UPDATE sync_events SET processed = 1, updated_at = ? WHERE id IN (%s)`,
		placeholders,
	)

	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, time.Now().Unix())
	for _, id := range ids {
		args = append(args, id)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark events processed: %w", err)
	}

	return nil
}

// IncrementRetry increments the delivery retry counter
func (s *Storage) IncrementRetry(ctx context.Context, id string) (int, error) {
	query := `
		UPDATE sync_events
		SET retry_count = retry_count + 1, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, time.Now().Unix(), id)
	if err != nil {
		return 0, fmt.Errorf("failed to increment retry count: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return 0, storage.ErrEventNotFound
	}

	var count int
	err = s.db.QueryRowContext(ctx, `SELECT retry_count FROM sync_events WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to read retry count: %w", err)
	}

	return count, nil
}

// AbandonExceeded marks events whose retry counter reached maxRetries as abandoned
func (s *Storage) AbandonExceeded(ctx context.Context, maxRetries int) (int, error) {
	query := `
		UPDATE sync_events
		SET abandoned = 1, updated_at = ?
		WHERE processed = 0 AND abandoned = 0 AND retry_count >= ?
	`

	result, err := s.db.ExecContext(ctx, query, time.Now().Unix(), maxRetries)
	if err != nil {
		return 0, fmt.Errorf("failed to abandon events: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}

// MaxTimestamp returns the largest event timestamp in the ledger
func (s *Storage) MaxTimestamp(ctx context.Context) (int64, error) {
	var ts sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(timestamp) FROM sync_events`).Scan(&ts)
	if err != nil {
		return 0, fmt.Errorf("failed to get max timestamp: %w", err)
	}

	return ts.Int64, nil
}

// EventCounts returns aggregate counters for the stats endpoint
func (s *Storage) EventCounts(ctx context.Context) (storage.EventCounts, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN processed = 0 AND abandoned = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN processed = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN abandoned = 1 THEN 1 ELSE 0 END), 0)
		FROM sync_events
	`

	var counts storage.EventCounts
	err := s.db.QueryRowContext(ctx, query).Scan(
		&counts.Total,
		&counts.Pending,
		&counts.Processed,
		&counts.Abandoned,
	)
	if err != nil {
		return storage.EventCounts{}, fmt.Errorf("failed to count events: %w", err)
	}

	return counts, nil
}

// rowScanner абстрагирует *sql.Row и *sql.Rows для scanEvent
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *Storage) scanEvent(row rowScanner) (*models.SyncEvent, error) {
	event := &models.SyncEvent{}
	var processed, abandoned, deleted int
	var createdAt, updatedAt int64

	err := row.Scan(
		&event.ID,
		&event.EntityType,
		&event.EntityID,
		&event.Operation,
		&event.NodeID,
		&event.Payload,
		&event.Timestamp,
		&event.Version,
		&event.RetryCount,
		&processed,
		&abandoned,
		&deleted,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Processed = intToBool(processed)
	event.Abandoned = intToBool(abandoned)
	event.Deleted = intToBool(deleted)
	event.CreatedAt = time.Unix(createdAt, 0)
	event.UpdatedAt = time.Unix(updatedAt, 0)

	return event, nil
}

func (s *Storage) scanEvents(rows *sql.Rows) ([]*models.SyncEvent, error) {
	var events []*models.SyncEvent

	for rows.Next() {
		event, err := s.scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return events, nil
}
