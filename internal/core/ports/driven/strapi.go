package driven

import (
	"context"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

// EntityFetcher retrieves the entities served by an endpoint.
type EntityFetcher interface {
	// FetchEntities returns every entity of the endpoint, all pages
	// concatenated in page order. Any failure is fatal for the run.
	FetchEntities(ctx context.Context, endpoint domain.Endpoint) ([]domain.RawEntity, error)
}

// SchemaFetcher retrieves content-type and component schemas.
type SchemaFetcher interface {
	// FetchSchemas returns all content types followed by all components.
	FetchSchemas(ctx context.Context) ([]domain.Schema, error)
}

// MediaLookup finds upload records by URL.
type MediaLookup interface {
	// FindMediaByURL returns the cleaned upload record whose url equals url.
	// Returns domain.ErrNotFound if no upload matches.
	FindMediaByURL(ctx context.Context, url string) (map[string]any, error)
}

// Client is an authenticated connection to one Strapi instance.
type Client interface {
	EntityFetcher
	SchemaFetcher
	MediaLookup
}

// ClientFactory creates clients for configured sources.
type ClientFactory interface {
	// Create authenticates against the source and returns a ready client.
	Create(ctx context.Context, source domain.Source) (Client, error)
}

// Authenticator exchanges source credentials for a bearer token.
type Authenticator interface {
	// Authenticate returns the token to send, or "" to proceed
	// unauthenticated. Rejected credentials return domain.ErrAuthInvalid.
	Authenticate(ctx context.Context, source domain.Source) (string, error)
}
