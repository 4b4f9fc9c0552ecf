package strapi

import (
	"context"
	"fmt"

	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.ClientFactory = (*Factory)(nil)

// Factory authenticates sources and builds their clients.
type Factory struct {
	auth driven.Authenticator
	opts []Option
}

// NewFactory creates a Factory. A nil auth uses the default Authenticator.
func NewFactory(auth driven.Authenticator, opts ...Option) *Factory {
	if auth == nil {
		auth = NewAuthenticator()
	}
	return &Factory{auth: auth, opts: opts}
}

// Create authenticates against source and returns a ready client.
func (f *Factory) Create(ctx context.Context, source domain.Source) (driven.Client, error) {
	token, err := f.auth.Authenticate(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("authenticate %s: %w", source.Name, err)
	}
	return NewClient(source, token, f.opts...), nil
}
