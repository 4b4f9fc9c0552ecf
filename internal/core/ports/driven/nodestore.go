package driven

import (
	"context"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

// NodeStore is the graph sink that receives node operations.
// All mutations are idempotent.
type NodeStore interface {
	// CreateNode stores a node, replacing any node with the same id.
	CreateNode(ctx context.Context, node *domain.Node) error

	// DeleteNode removes a node and every node it transitively owns.
	// Deleting a missing node is not an error.
	DeleteNode(ctx context.Context, id string) error

	// TouchNode marks a node as still valid without rewriting it.
	// Touching a missing node is not an error.
	TouchNode(ctx context.Context, id string) error

	// GetNode retrieves a node by id.
	// Returns domain.ErrNotFound if no such node exists.
	GetNode(ctx context.Context, id string) (*domain.Node, error)

	// ListNodes returns nodes matching the filter ordered by type then id.
	ListNodes(ctx context.Context, filter domain.NodeFilter) ([]*domain.Node, error)

	// CountByType returns node counts per type for a source.
	CountByType(ctx context.Context, source string) ([]domain.TypeCount, error)
}
