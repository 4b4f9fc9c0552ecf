package memory

import (
	"sync"

	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory implementation of driven.ConfigStore for testing.
type ConfigStore struct {
	mu      sync.RWMutex
	sources []domain.Source
	dataDir string
}

// NewConfigStore creates a new in-memory config store holding sources.
func NewConfigStore(sources ...domain.Source) *ConfigStore {
	return &ConfigStore{sources: sources}
}

// Sources returns every configured source.
func (s *ConfigStore) Sources() []domain.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Source(nil), s.sources...)
}

// Source returns the source named name.
func (s *ConfigStore) Source(name string) (*domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.sources {
		if s.sources[i].Name == name {
			src := s.sources[i]
			return &src, nil
		}
	}
	return nil, domain.ErrNotFound
}

// SetSources replaces the configured sources.
func (s *ConfigStore) SetSources(sources ...domain.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = sources
}

// SetDataDir sets the value returned by DataDir.
func (s *ConfigStore) SetDataDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataDir = dir
}

// DataDir returns the configured data directory.
func (s *ConfigStore) DataDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataDir
}

// Path returns an empty path; there is no backing file.
func (s *ConfigStore) Path() string { return "" }

// Reload is a no-op.
func (s *ConfigStore) Reload() error { return nil }
