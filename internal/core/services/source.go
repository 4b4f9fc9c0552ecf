package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
	"github.com/custodia-labs/strapisync/internal/core/ports/driving"
)

// Ensure SourceService implements the interface.
var _ driving.SourceService = (*SourceService)(nil)

// SourceService exposes configured sources.
type SourceService struct {
	config driven.ConfigStore
	auth   driven.Authenticator
}

// NewSourceService creates a new source service.
func NewSourceService(config driven.ConfigStore, auth driven.Authenticator) *SourceService {
	return &SourceService{config: config, auth: auth}
}

// Get retrieves a source by name.
func (s *SourceService) Get(_ context.Context, name string) (*domain.Source, error) {
	return s.config.Source(name)
}

// List returns all configured sources.
func (s *SourceService) List(_ context.Context) ([]domain.Source, error) {
	return s.config.Sources(), nil
}

// Authenticate checks the source credentials against the CMS.
func (s *SourceService) Authenticate(ctx context.Context, name string, login *domain.Login) (bool, error) {
	source, err := s.config.Source(name)
	if err != nil {
		return false, err
	}
	if s.auth == nil {
		return false, fmt.Errorf("authenticate: authenticator not configured")
	}

	candidate := *source
	if login != nil {
		// An explicit login is being tested, so the static token must not win.
		candidate.AccessToken = ""
		candidate.Login = login
	}

	token, err := s.auth.Authenticate(ctx, candidate)
	if err != nil {
		return false, fmt.Errorf("authenticate %s: %w", name, err)
	}
	return token != "", nil
}
