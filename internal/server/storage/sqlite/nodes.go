package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/syncmesh/internal/models"
	"github.com/iudanet/syncmesh/internal/server/storage"
)

const nodeColumns = `
	node_id, name, address, auth_key_hash, public_salt, capabilities,
	is_active, last_seen, registered_at, updated_at
`

// CreateNode registers a new node in the mesh
func (s *Storage) CreateNode(ctx context.Context, node *models.SyncNode) error {
	capabilities, err := json.Marshal(node.Capabilities)
	if err != nil {
		return fmt.Errorf("failed to marshal capabilities: %w", err)
	}

	query := `
		INSERT INTO sync_nodes (` + nodeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		node.NodeID,
		node.Name,
		node.Address,
		node.AuthKeyHash,
		node.PublicSalt,
		string(capabilities),
		boolToInt(node.IsActive),
		node.LastSeen.Unix(),
		node.RegisteredAt.Unix(),
		node.UpdatedAt.Unix(),
	)
	if err != nil {
		// UNIQUE constraint на name
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrNodeAlreadyExists
		}
		return fmt.Errorf("failed to insert node: %w", err)
	}

	return nil
}

// GetNodeByName retrieves node by unique name
func (s *Storage) GetNodeByName(ctx context.Context, name string) (*models.SyncNode, error) {
	query := `SELECT ` + nodeColumns + ` FROM sync_nodes WHERE name = ?`
	return s.scanNode(s.db.QueryRowContext(ctx, query, name))
}

// GetNodeByID retrieves node by ID
func (s *Storage) GetNodeByID(ctx context.Context, nodeID string) (*models.SyncNode, error) {
	query := `SELECT ` + nodeColumns + ` FROM sync_nodes WHERE node_id = ?`
	return s.scanNode(s.db.QueryRowContext(ctx, query, nodeID))
}

// UpdateHeartbeat refreshes node liveness
func (s *Storage) UpdateHeartbeat(ctx context.Context, nodeID string, at time.Time, address string, capabilities []string) error {
	query := `
		UPDATE sync_nodes
		SET last_seen = ?,
		    updated_at = ?,
		    address = CASE WHEN ? != '' THEN ? ELSE address END,
		    capabilities = CASE WHEN ? != '' THEN ? ELSE capabilities END
		WHERE node_id = ?
	`

	var capsJSON string
	if len(capabilities) > 0 {
		data, err := json.Marshal(capabilities)
		if err != nil {
			return fmt.Errorf("failed to marshal capabilities: %w", err)
		}
		capsJSON = string(data)
	}

	result, err := s.db.ExecContext(ctx, query,
		at.Unix(), at.Unix(),
		address, address,
		capsJSON, capsJSON,
		nodeID,
	)
	if err != nil {
		return fmt.Errorf("failed to update heartbeat: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrNodeNotFound
	}

	return nil
}

// ListNodes returns registered nodes
func (s *Storage) ListNodes(ctx context.Context, activeOnly bool) ([]*models.SyncNode, error) {
	query := `SELECT ` + nodeColumns + ` FROM sync_nodes ORDER BY name ASC`
	if activeOnly {
		query = `SELECT ` + nodeColumns + ` FROM sync_nodes WHERE is_active = 1 ORDER BY name ASC`
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var nodes []*models.SyncNode
	for rows.Next() {
		node, err := s.scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return nodes, nil
}

// DeactivateNode removes a node from the mesh (soft)
func (s *Storage) DeactivateNode(ctx context.Context, nodeID string) error {
	query := `UPDATE sync_nodes SET is_active = 0, updated_at = ? WHERE node_id = ?`

	result, err := s.db.ExecContext(ctx, query, time.Now().Unix(), nodeID)
	if err != nil {
		return fmt.Errorf("failed to deactivate node: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrNodeNotFound
	}

	return nil
}

// MarkStale deactivates nodes whose last_seen is older than cutoff
func (s *Storage) MarkStale(ctx context.Context, cutoff time.Time) (int, error) {
	query := `
		UPDATE sync_nodes
		SET is_active = 0, updated_at = ?
		WHERE is_active = 1 AND last_seen < ? AND last_seen > 0
	`

	result, err := s.db.ExecContext(ctx, query, time.Now().Unix(), cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to mark stale nodes: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}

func (s *Storage) scanNode(row rowScanner) (*models.SyncNode, error) {
	node := &models.SyncNode{}
	var capsJSON string
	var isActive int
	var lastSeen, registeredAt, updatedAt int64

	err := row.Scan(
		&node.NodeID,
		&node.Name,
		&node.Address,
		&node.AuthKeyHash,
		&node.PublicSalt,
		&capsJSON,
		&isActive,
		&lastSeen,
		&registeredAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNodeNotFound
		}
		return nil, fmt.Errorf("failed to scan node: %w", err)
	}

	if err := json.Unmarshal([]byte(capsJSON), &node.Capabilities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal capabilities: %w", err)
	}

	node.IsActive = intToBool(isActive)
	node.LastSeen = time.Unix(lastSeen, 0)
	node.RegisteredAt = time.Unix(registeredAt, 0)
	node.UpdatedAt = time.Unix(updatedAt, 0)

	return node, nil
}
