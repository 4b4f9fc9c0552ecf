package driven

import "github.com/custodia-labs/strapisync/internal/core/domain"

// ConfigStore provides the configured sources.
type ConfigStore interface {
	// Sources returns every configured source in file order.
	Sources() []domain.Source

	// Source returns the source named name.
	// Returns domain.ErrNotFound if it is not configured.
	Source(name string) (*domain.Source, error)

	// DataDir returns the directory for persisted state.
	DataDir() string

	// Path returns the configuration file path.
	Path() string

	// Reload re-reads and re-validates the configuration file.
	Reload() error
}
