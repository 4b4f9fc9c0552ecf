package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
)

// Ensure NodeStore implements the interface.
var _ driven.NodeStore = (*NodeStore)(nil)

// NodeStore is an in-memory implementation of driven.NodeStore.
type NodeStore struct {
	mu    sync.RWMutex
	nodes map[string]*domain.Node
	now   func() time.Time
}

// NewNodeStore creates a new in-memory node store.
func NewNodeStore() *NodeStore {
	return &NodeStore{
		nodes: make(map[string]*domain.Node),
		now:   time.Now,
	}
}

// CreateNode stores a node, replacing any node with the same id.
func (s *NodeStore) CreateNode(_ context.Context, node *domain.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneNode(node)
	now := s.now()
	if prev, ok := s.nodes[node.ID]; ok {
		stored.CreatedAt = prev.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	stored.TouchedAt = now
	s.nodes[node.ID] = stored
	return nil
}

// DeleteNode removes a node and every node it transitively owns.
func (s *NodeStore) DeleteNode(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := []string{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, ok := s.nodes[current]; !ok {
			continue
		}
		delete(s.nodes, current)
		for childID, n := range s.nodes {
			if n.ParentID == current {
				queue = append(queue, childID)
			}
		}
	}
	return nil
}

// TouchNode marks a node as still valid.
func (s *NodeStore) TouchNode(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[id]; ok {
		n.TouchedAt = s.now()
	}
	return nil
}

// GetNode retrieves a node by id.
func (s *NodeStore) GetNode(_ context.Context, id string) (*domain.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneNode(n), nil
}

// ListNodes returns nodes matching the filter ordered by type then id.
func (s *NodeStore) ListNodes(_ context.Context, filter domain.NodeFilter) ([]*domain.Node, error) {
	s.mu.RLock()
	all := make([]*domain.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		all = append(all, cloneNode(n))
	}
	s.mu.RUnlock()

	return applyFilter(all, filter), nil
}

// CountByType returns node counts per type for a source.
func (s *NodeStore) CountByType(ctx context.Context, source string) ([]domain.TypeCount, error) {
	nodes, err := s.ListNodes(ctx, domain.NodeFilter{Source: source})
	if err != nil {
		return nil, err
	}
	return countByType(nodes), nil
}

// Len returns the number of stored nodes.
func (s *NodeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

func applyFilter(nodes []*domain.Node, filter domain.NodeFilter) []*domain.Node {
	out := make([]*domain.Node, 0, len(nodes))
	for _, n := range nodes {
		if filter.Source != "" && n.Source != filter.Source {
			continue
		}
		if filter.Type != "" && n.Type != filter.Type {
			continue
		}
		if filter.Kind != "" && n.Kind != filter.Kind {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].ID < out[j].ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}

func countByType(nodes []*domain.Node) []domain.TypeCount {
	var counts []domain.TypeCount
	for _, n := range nodes {
		if len(counts) > 0 && counts[len(counts)-1].Type == n.Type {
			counts[len(counts)-1].Count++
			continue
		}
		counts = append(counts, domain.TypeCount{Type: n.Type, Count: 1})
	}
	return counts
}

func cloneNode(n *domain.Node) *domain.Node {
	c := *n
	if n.Content != nil {
		c.Content = make(map[string]any, len(n.Content))
		for k, v := range n.Content {
			c.Content[k] = v
		}
	}
	if n.Children != nil {
		c.Children = append([]string(nil), n.Children...)
	}
	return &c
}
