package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/syncmesh/internal/models"
	"github.com/iudanet/syncmesh/internal/server/storage"
)

const conflictColumns = `
	id, entity_type, entity_id, conflict_type, resolution_strategy,
	winner_node_id, local_node_id, remote_node_id,
	local_timestamp, remote_timestamp,
	auto_resolved, human_reviewed, detected_at, resolved_at
`

// RecordConflict persists a detected conflict and its resolution
func (s *Storage) RecordConflict(ctx context.Context, record *models.ConflictRecord) error {
	query := `
		INSERT INTO conflict_log (` + conflictColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.EntityType,
		record.EntityID,
		record.ConflictType,
		record.ResolutionStrategy,
		record.WinnerNodeID,
		record.LocalNodeID,
		record.RemoteNodeID,
		record.LocalTimestamp,
		record.RemoteTimestamp,
		boolToInt(record.AutoResolved),
		boolToInt(record.HumanReviewed),
		record.DetectedAt.Unix(),
		record.ResolvedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert conflict record: %w", err)
	}

	return nil
}

// GetConflict retrieves a conflict record by ID
func (s *Storage) GetConflict(ctx context.Context, id string) (*models.ConflictRecord, error) {
	query := `SELECT ` + conflictColumns + ` FROM conflict_log WHERE id = ?`
	return s.scanConflict(s.db.QueryRowContext(ctx, query, id))
}

// HasConflict reports whether a conflict between the same pair of versions
// is already journaled. Matches the pair in both directions so a replayed
// event does not produce a mirrored duplicate.
func (s *Storage) HasConflict(ctx context.Context, record *models.ConflictRecord) (bool, error) {
	query := `
		SELECT COUNT(*) FROM conflict_log
		WHERE entity_type = ? AND entity_id = ?
		  AND (
			(local_node_id = ? AND remote_node_id = ? AND local_timestamp = ? AND remote_timestamp = ?)
			OR
			(local_node_id = ? AND remote_node_id = ? AND local_timestamp = ? AND remote_timestamp = ?)
		  )
	`

	var count int
	err := s.db.QueryRowContext(ctx, query,
		record.EntityType,
		record.EntityID,
		record.LocalNodeID, record.RemoteNodeID, record.LocalTimestamp, record.RemoteTimestamp,
		record.RemoteNodeID, record.LocalNodeID, record.RemoteTimestamp, record.LocalTimestamp,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check conflict record: %w", err)
	}

	return count > 0, nil
}

// ListConflicts returns conflict records ordered by detection time descending
func (s *Storage) ListConflicts(ctx context.Context, onlyUnreviewed bool, limit int) ([]*models.ConflictRecord, error) {
	query := `
		SELECT ` + conflictColumns + `
		FROM conflict_log
		ORDER BY detected_at DESC
		LIMIT ?
	`
	if onlyUnreviewed {
		query = `
			SELECT ` + conflictColumns + `
			FROM conflict_log
			WHERE human_reviewed = 0
			ORDER BY detected_at DESC
			LIMIT ?
		`
	}

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query conflicts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []*models.ConflictRecord
	for rows.Next() {
		record, err := s.scanConflict(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}

// MarkReviewed marks a conflict record as reviewed by an operator
func (s *Storage) MarkReviewed(ctx context.Context, id string) error {
	query := `UPDATE conflict_log SET human_reviewed = 1 WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark conflict reviewed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrConflictNotFound
	}

	return nil
}

// ResolveConflict persists a forced outcome: strategy, winner and
// resolution time, marking the record as reviewed
func (s *Storage) ResolveConflict(ctx context.Context, id, strategy, winnerNodeID string, resolvedAt time.Time) error {
	query := `
		UPDATE conflict_log
		SET resolution_strategy = ?, winner_node_id = ?, resolved_at = ?, human_reviewed = 1
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, strategy, winnerNodeID, resolvedAt.Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to resolve conflict: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrConflictNotFound
	}

	return nil
}

// ConflictCounts returns aggregate counters for the stats endpoint
func (s *Storage) ConflictCounts(ctx context.Context) (storage.ConflictCounts, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN auto_resolved = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN auto_resolved = 0 AND human_reviewed = 0 THEN 1 ELSE 0 END), 0)
		FROM conflict_log
	`

	var counts storage.ConflictCounts
	err := s.db.QueryRowContext(ctx, query).Scan(
		&counts.Total,
		&counts.AutoResolved,
		&counts.PendingReview,
	)
	if err != nil {
		return storage.ConflictCounts{}, fmt.Errorf("failed to count conflicts: %w", err)
	}

	return counts, nil
}

func (s *Storage) scanConflict(row rowScanner) (*models.ConflictRecord, error) {
	record := &models.ConflictRecord{}
	var autoResolved, humanReviewed int
	var detectedAt, resolvedAt int64

	err := row.Scan(
		&record.ID,
		&record.EntityType,
		&record.EntityID,
		&record.ConflictType,
		&record.ResolutionStrategy,
		&record.WinnerNodeID,
		&record.LocalNodeID,
		&record.RemoteNodeID,
		&record.LocalTimestamp,
		&record.RemoteTimestamp,
		&autoResolved,
		&humanReviewed,
		&detectedAt,
		&resolvedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrConflictNotFound
		}
		return nil, fmt.Errorf("failed to scan conflict record: %w", err)
	}

	record.AutoResolved = intToBool(autoResolved)
	record.HumanReviewed = intToBool(humanReviewed)
	record.DetectedAt = time.Unix(detectedAt, 0)
	record.ResolvedAt = time.Unix(resolvedAt, 0)

	return record, nil
}
