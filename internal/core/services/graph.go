package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
	"github.com/custodia-labs/strapisync/internal/core/ports/driving"
)

// Ensure GraphService implements the interface.
var _ driving.GraphService = (*GraphService)(nil)

// GraphService provides read-only queries over the synced graph.
type GraphService struct {
	nodes driven.NodeStore
}

// NewGraphService creates a new graph service.
func NewGraphService(nodes driven.NodeStore) *GraphService {
	return &GraphService{nodes: nodes}
}

// ListTypes returns node counts per type for a source.
func (s *GraphService) ListTypes(ctx context.Context, source string) ([]domain.TypeCount, error) {
	if source == "" {
		return nil, fmt.Errorf("%w: source is required", domain.ErrInvalidInput)
	}
	return s.nodes.CountByType(ctx, source)
}

// ListNodes returns nodes of a source, optionally narrowed to one type.
func (s *GraphService) ListNodes(ctx context.Context, source, nodeType string, limit int) ([]*domain.Node, error) {
	if source == "" {
		return nil, fmt.Errorf("%w: source is required", domain.ErrInvalidInput)
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
	}
	return s.nodes.ListNodes(ctx, domain.NodeFilter{Source: source, Type: nodeType, Limit: limit})
}

// GetNode retrieves a node by id.
func (s *GraphService) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	return s.nodes.GetNode(ctx, id)
}

// Children returns the nodes owned by id in the order the owner lists them.
// Children that no longer exist are skipped.
func (s *GraphService) Children(ctx context.Context, id string) ([]*domain.Node, error) {
	parent, err := s.GetNode(ctx, id)
	if err != nil {
		return nil, err
	}

	children := make([]*domain.Node, 0, len(parent.Children))
	for _, childID := range parent.Children {
		child, err := s.nodes.GetNode(ctx, childID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get child %s: %w", childID, err)
		}
		children = append(children, child)
	}
	return children, nil
}
