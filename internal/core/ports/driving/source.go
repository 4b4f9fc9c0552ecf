package driving

import (
	"context"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

// SourceService exposes the configured sources.
type SourceService interface {
	// Get retrieves a source by name.
	Get(ctx context.Context, name string) (*domain.Source, error)

	// List returns all configured sources.
	List(ctx context.Context) ([]domain.Source, error)

	// Authenticate checks the source credentials against the CMS.
	// A non-nil login overrides the configured one. It returns whether a
	// token was obtained; false with a nil error means no credentials are set.
	Authenticate(ctx context.Context, name string, login *domain.Login) (bool, error)
}
