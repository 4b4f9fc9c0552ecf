package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
)

// Ensure overlays implement the interfaces.
var (
	_ driven.NodeStore  = (*NodeOverlay)(nil)
	_ driven.CacheStore = (*CacheOverlay)(nil)
)

// NodeOverlay reads through to a base store and keeps all writes in memory.
type NodeOverlay struct {
	base  driven.NodeStore
	upper *NodeStore

	mu      sync.RWMutex
	deleted map[string]bool
}

// NewNodeOverlay creates an overlay over base.
func NewNodeOverlay(base driven.NodeStore) *NodeOverlay {
	return &NodeOverlay{
		base:    base,
		upper:   NewNodeStore(),
		deleted: make(map[string]bool),
	}
}

// CreateNode records the node in memory only.
func (o *NodeOverlay) CreateNode(ctx context.Context, node *domain.Node) error {
	o.mu.Lock()
	delete(o.deleted, node.ID)
	o.mu.Unlock()
	return o.upper.CreateNode(ctx, node)
}

// DeleteNode hides the node and its owned descendants.
func (o *NodeOverlay) DeleteNode(ctx context.Context, id string) error {
	n, err := o.GetNode(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := o.DeleteNode(ctx, child); err != nil {
			return err
		}
	}

	o.mu.Lock()
	o.deleted[id] = true
	o.mu.Unlock()
	return o.upper.DeleteNode(ctx, id)
}

// TouchNode is a no-op; touching changes nothing observable in a dry run.
func (o *NodeOverlay) TouchNode(_ context.Context, _ string) error {
	return nil
}

// GetNode returns the in-memory node if written, else the base node.
func (o *NodeOverlay) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	o.mu.RLock()
	hidden := o.deleted[id]
	o.mu.RUnlock()
	if hidden {
		return nil, domain.ErrNotFound
	}
	if n, err := o.upper.GetNode(ctx, id); err == nil {
		return n, nil
	}
	return o.base.GetNode(ctx, id)
}

// ListNodes merges base and in-memory nodes.
func (o *NodeOverlay) ListNodes(ctx context.Context, filter domain.NodeFilter) ([]*domain.Node, error) {
	unlimited := filter
	unlimited.Limit = 0

	baseNodes, err := o.base.ListNodes(ctx, unlimited)
	if err != nil {
		return nil, err
	}
	upperNodes, err := o.upper.ListNodes(ctx, unlimited)
	if err != nil {
		return nil, err
	}

	o.mu.RLock()
	merged := make(map[string]*domain.Node, len(baseNodes)+len(upperNodes))
	for _, n := range baseNodes {
		if !o.deleted[n.ID] {
			merged[n.ID] = n
		}
	}
	o.mu.RUnlock()
	for _, n := range upperNodes {
		merged[n.ID] = n
	}

	all := make([]*domain.Node, 0, len(merged))
	for _, n := range merged {
		all = append(all, n)
	}
	return applyFilter(all, filter), nil
}

// CountByType returns node counts per type across both layers.
func (o *NodeOverlay) CountByType(ctx context.Context, source string) ([]domain.TypeCount, error) {
	nodes, err := o.ListNodes(ctx, domain.NodeFilter{Source: source})
	if err != nil {
		return nil, err
	}
	return countByType(nodes), nil
}

// Written returns the number of nodes written to the overlay.
func (o *NodeOverlay) Written() int {
	return o.upper.Len()
}

// CacheOverlay reads through to a base cache and keeps all writes in memory.
type CacheOverlay struct {
	base  driven.CacheStore
	upper *CacheStore

	mu      sync.RWMutex
	deleted map[string]bool
}

// NewCacheOverlay creates an overlay over base.
func NewCacheOverlay(base driven.CacheStore) *CacheOverlay {
	return &CacheOverlay{
		base:    base,
		upper:   NewCacheStore(),
		deleted: make(map[string]bool),
	}
}

// Get returns the in-memory value if written, else the base value.
func (o *CacheOverlay) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	o.mu.RLock()
	hidden := o.deleted[namespace+"\x00"+key]
	o.mu.RUnlock()
	if hidden {
		return nil, domain.ErrNotFound
	}
	if v, err := o.upper.Get(ctx, namespace, key); err == nil {
		return v, nil
	}
	return o.base.Get(ctx, namespace, key)
}

// Set records value in memory only.
func (o *CacheOverlay) Set(ctx context.Context, namespace, key string, value []byte) error {
	o.mu.Lock()
	delete(o.deleted, namespace+"\x00"+key)
	o.mu.Unlock()
	return o.upper.Set(ctx, namespace, key, value)
}

// Delete hides key.
func (o *CacheOverlay) Delete(ctx context.Context, namespace, key string) error {
	o.mu.Lock()
	o.deleted[namespace+"\x00"+key] = true
	o.mu.Unlock()
	return o.upper.Delete(ctx, namespace, key)
}
