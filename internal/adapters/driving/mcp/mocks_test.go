package mcp

import (
	"context"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

// mockGraphService is a mock implementation of driving.GraphService.
type mockGraphService struct {
	counts   map[string][]domain.TypeCount
	nodes    []*domain.Node
	node     *domain.Node
	children []*domain.Node
	err      error

	lastSource string
	lastType   string
	lastLimit  int
}

func (m *mockGraphService) ListTypes(_ context.Context, source string) ([]domain.TypeCount, error) {
	m.lastSource = source
	return m.counts[source], m.err
}

func (m *mockGraphService) ListNodes(_ context.Context, source, nodeType string, limit int) ([]*domain.Node, error) {
	m.lastSource, m.lastType, m.lastLimit = source, nodeType, limit
	return m.nodes, m.err
}

func (m *mockGraphService) GetNode(_ context.Context, _ string) (*domain.Node, error) {
	if m.node == nil && m.err == nil {
		return nil, domain.ErrNotFound
	}
	return m.node, m.err
}

func (m *mockGraphService) Children(_ context.Context, _ string) ([]*domain.Node, error) {
	return m.children, m.err
}

// mockSourceService is a mock implementation of driving.SourceService.
type mockSourceService struct {
	sources []domain.Source
	err     error
}

func (m *mockSourceService) Get(_ context.Context, _ string) (*domain.Source, error) {
	if len(m.sources) == 0 {
		return nil, domain.ErrNotFound
	}
	return &m.sources[0], m.err
}

func (m *mockSourceService) List(_ context.Context) ([]domain.Source, error) {
	return m.sources, m.err
}

func (m *mockSourceService) Authenticate(_ context.Context, _ string, _ *domain.Login) (bool, error) {
	return false, m.err
}
