package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driving"
)

// mockSyncOrchestrator implements driving.SyncOrchestrator for testing.
type mockSyncOrchestrator struct {
	report  *driving.SyncReport
	reports []*driving.SyncReport
	err     error
	synced  []string
}

func (m *mockSyncOrchestrator) Sync(_ context.Context, name string) (*driving.SyncReport, error) {
	m.synced = append(m.synced, name)
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *mockSyncOrchestrator) SyncAll(_ context.Context) ([]*driving.SyncReport, error) {
	return m.reports, m.err
}

func (m *mockSyncOrchestrator) Status(_ context.Context, name string) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{Source: name}, nil
}

// mockGraphService implements driving.GraphService for testing.
type mockGraphService struct {
	counts   []domain.TypeCount
	nodes    []*domain.Node
	node     *domain.Node
	children []*domain.Node
	err      error
}

func (m *mockGraphService) ListTypes(_ context.Context, _ string) ([]domain.TypeCount, error) {
	return m.counts, m.err
}

func (m *mockGraphService) ListNodes(_ context.Context, _, _ string, _ int) ([]*domain.Node, error) {
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

// mockSourceService implements driving.SourceService for testing.
type mockSourceService struct {
	source    *domain.Source
	ok        bool
	err       error
	lastLogin *domain.Login
}

func (m *mockSourceService) Get(_ context.Context, name string) (*domain.Source, error) {
	if m.source == nil || m.source.Name != name {
		return nil, domain.ErrNotFound
	}
	return m.source, nil
}

func (m *mockSourceService) List(_ context.Context) ([]domain.Source, error) {
	if m.source == nil {
		return nil, nil
	}
	return []domain.Source{*m.source}, nil
}

func (m *mockSourceService) Authenticate(_ context.Context, _ string, login *domain.Login) (bool, error) {
	m.lastLogin = login
	return m.ok, m.err
}

// setupApp points the command tree at app and returns the captured
// bootstrap options. Flags are reset after the test.
func setupApp(t *testing.T, app *App) *[]Options {
	t.Helper()
	var seen []Options
	oldBootstrap := bootstrap
	bootstrap = func(opts Options) (*App, error) {
		seen = append(seen, opts)
		return app, nil
	}
	t.Cleanup(func() {
		bootstrap = oldBootstrap
		syncDryRun, syncWatch, syncInterval = false, false, 0
		nodesType, nodesLimit = "", 50
		authIdentifier = ""
		configPath = ""
	})
	return &seen
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
