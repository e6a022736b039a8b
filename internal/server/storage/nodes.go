package storage

import (
	"context"
	"time"

	"github.com/iudanet/syncmesh/internal/models"
)

// NodeStorage defines interface for the sync node registry
type NodeStorage interface {
	// CreateNode registers a new node
	// Returns ErrNodeAlreadyExists if the name is taken
	CreateNode(ctx context.Context, node *models.SyncNode) error

	// GetNodeByName retrieves node by unique name
	// Returns ErrNodeNotFound if node doesn't exist
	GetNodeByName(ctx context.Context, name string) (*models.SyncNode, error)

	// GetNodeByID retrieves node by ID
	// Returns ErrNodeNotFound if node doesn't exist
	GetNodeByID(ctx context.Context, nodeID string) (*models.SyncNode, error)

	// UpdateHeartbeat refreshes node liveness; empty address/capabilities
	// keep the stored values
	UpdateHeartbeat(ctx context.Context, nodeID string, at time.Time, address string, capabilities []string) error

	// ListNodes returns registered nodes; with activeOnly, only nodes
	// that are active and not stale
	ListNodes(ctx context.Context, activeOnly bool) ([]*models.SyncNode, error)

	// DeactivateNode removes a node from the mesh (soft)
	// Returns ErrNodeNotFound if node doesn't exist
	DeactivateNode(ctx context.Context, nodeID string) error

	// MarkStale deactivates nodes whose last_seen is older than cutoff.
	// Returns the number of deactivated nodes.
	MarkStale(ctx context.Context, cutoff time.Time) (int, error)
}
