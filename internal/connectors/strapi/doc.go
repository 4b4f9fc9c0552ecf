// Package strapi implements a connector for the Strapi headless CMS REST API.
//
// # Architecture
//
// The connector implements the driven ports defined in [driven.Client]:
//
//   - Client: schema fetch, paginated entity fetch and upload lookup
//   - Authenticator: exchanges user credentials for a JWT
//   - Factory: authenticates a source and builds its Client
//
// # Authentication
//
// A static API token configured on the source takes precedence. Otherwise,
// when a login is configured, POST /api/auth/local exchanges it for a JWT.
// With neither, requests are sent unauthenticated, which only works when the
// public role can read the configured types.
//
// # Rate Limiting and Retries
//
// Requests pass through an optional token bucket limiter. Network failures,
// 408, 429 and 5xx responses are retried with exponential backoff.
package strapi
