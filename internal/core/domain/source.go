package domain

import "strings"

// Source is one configured CMS instance to sync from.
type Source struct {
	// Name uniquely identifies the source. Node ids and cache keys are scoped by it.
	Name string

	// APIURL is the CMS base URL, e.g. http://localhost:1337.
	APIURL string

	// AccessToken is a static API token. It takes precedence over Login.
	AccessToken string

	// Login holds user credentials exchanged for a JWT when no token is set.
	Login *Login

	// QueryLimit is the default page size for collection types.
	QueryLimit int

	// RateLimit caps requests per second. Zero disables limiting.
	RateLimit float64

	// MaxConcurrency bounds page and media fan-out. Zero uses the default.
	MaxConcurrency int

	// CollectionTypes lists the collection types to sync.
	CollectionTypes []TypeConfig

	// SingleTypes lists the single types to sync.
	SingleTypes []TypeConfig
}

// Login holds CMS user credentials.
type Login struct {
	Identifier string
	Password   string
}

// IsSet reports whether both identifier and password are present.
func (l *Login) IsSet() bool {
	return l != nil && l.Identifier != "" && l.Password != ""
}

// TypeConfig selects one content type and how to query it.
type TypeConfig struct {
	// SingularName is the API singular name of the content type.
	SingularName string

	// QueryLimit overrides the source page size.
	QueryLimit int

	// QueryParams are extra nested query parameters, e.g. populate.
	QueryParams map[string]any
}

// BaseURL returns APIURL without a trailing slash.
func (s *Source) BaseURL() string {
	return strings.TrimRight(s.APIURL, "/")
}

// Types returns collection types followed by single types.
func (s *Source) Types() []TypeConfig {
	out := make([]TypeConfig, 0, len(s.CollectionTypes)+len(s.SingleTypes))
	out = append(out, s.CollectionTypes...)
	out = append(out, s.SingleTypes...)
	return out
}

// PageSize returns the page size for a type config.
func (s *Source) PageSize(tc TypeConfig) int {
	if tc.QueryLimit > 0 {
		return tc.QueryLimit
	}
	if s.QueryLimit > 0 {
		return s.QueryLimit
	}
	return DefaultQueryLimit
}
