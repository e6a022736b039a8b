package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/syncmesh/internal/models"
	"github.com/iudanet/syncmesh/internal/server/storage"
)

const sessionColumns = `
	id, initiator_node_id, participant_nodes, status,
	events_transferred, conflicts_detected, conflicts_resolved,
	started_at, finished_at
`

// CreateSession opens a new session in the active state
func (s *Storage) CreateSession(ctx context.Context, session *models.SyncSession) error {
	participants, err := json.Marshal(session.ParticipantNodes)
	if err != nil {
		return fmt.Errorf("failed to marshal participants: %w", err)
	}

	query := `
		INSERT INTO sync_sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var finishedAt int64
	if !session.FinishedAt.IsZero() {
		finishedAt = session.FinishedAt.Unix()
	}

	_, err = s.db.ExecContext(ctx, query,
		session.ID,
		session.InitiatorNodeID,
		string(participants),
		session.Status,
		session.EventsTransferred,
		session.ConflictsDetected,
		session.ConflictsResolved,
		session.StartedAt.Unix(),
		finishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID
func (s *Storage) GetSession(ctx context.Context, id string) (*models.SyncSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM sync_sessions WHERE id = ?`
	return s.scanSession(s.db.QueryRowContext(ctx, query, id))
}

// CloseSession finishes a session with the given status and counters
func (s *Storage) CloseSession(ctx context.Context, id, status string, transferred, detected, resolved int) error {
	query := `
		UPDATE sync_sessions
		SET status = ?, events_transferred = ?, conflicts_detected = ?,
		    conflicts_resolved = ?, finished_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		status, transferred, detected, resolved, time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrSessionNotFound
	}

	return nil
}

// ActiveSessions returns sessions still in the active state
func (s *Storage) ActiveSessions(ctx context.Context) ([]*models.SyncSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sync_sessions
		WHERE status = ?
		ORDER BY started_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, models.SessionActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active sessions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var sessions []*models.SyncSession
	for rows.Next() {
		session, err := s.scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return sessions, nil
}

// SessionCounts returns aggregate counters for the stats endpoint
func (s *Storage) SessionCounts(ctx context.Context) (storage.SessionCounts, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
			COALESCE(MAX(finished_at), 0)
		FROM sync_sessions
	`

	var counts storage.SessionCounts
	var lastFinished int64
	err := s.db.QueryRowContext(ctx, query).Scan(
		&counts.Total,
		&counts.Active,
		&counts.Completed,
		&counts.Failed,
		&lastFinished,
	)
	if err != nil {
		return storage.SessionCounts{}, fmt.Errorf("failed to count sessions: %w", err)
	}

	if lastFinished > 0 {
		counts.LastFinishedAt = time.Unix(lastFinished, 0)
	}

	return counts, nil
}

func (s *Storage) scanSession(row rowScanner) (*models.SyncSession, error) {
	session := &models.SyncSession{}
	var participantsJSON string
	var startedAt, finishedAt int64

	err := row.Scan(
		&session.ID,
		&session.InitiatorNodeID,
		&participantsJSON,
		&session.Status,
		&session.EventsTransferred,
		&session.ConflictsDetected,
		&session.ConflictsResolved,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	if err := json.Unmarshal([]byte(participantsJSON), &session.ParticipantNodes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal participants: %w", err)
	}

	session.StartedAt = time.Unix(startedAt, 0)
	if finishedAt > 0 {
		session.FinishedAt = time.Unix(finishedAt, 0)
	}

	return session, nil
}
