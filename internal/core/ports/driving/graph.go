package driving

import (
	"context"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

// GraphService provides read-only access to the synced node graph.
type GraphService interface {
	// ListTypes returns node counts per type for a source.
	ListTypes(ctx context.Context, source string) ([]domain.TypeCount, error)

	// ListNodes returns nodes of a source, optionally narrowed to one type.
	ListNodes(ctx context.Context, source, nodeType string, limit int) ([]*domain.Node, error)

	// GetNode retrieves a node by id.
	// Returns domain.ErrNotFound if no such node exists.
	GetNode(ctx context.Context, id string) (*domain.Node, error)

	// Children returns the nodes directly owned by id, in owner order.
	Children(ctx context.Context, id string) ([]*domain.Node, error)
}
