package domain

// DefaultQueryLimit is the page size used when neither the type nor the source sets one.
const DefaultQueryLimit = 250

// Endpoint is one REST resource to fetch during a sync.
type Endpoint struct {
	// UID is the content-type uid served by the endpoint.
	UID string

	// Kind is collectionType or singleType.
	Kind SchemaKind

	// SingularName and PluralName are the API names of the content type.
	SingularName string
	PluralName   string

	// TypeName is NodeTypeName of the content type.
	TypeName string

	// Path is the request path, e.g. /api/articles.
	Path string

	// Query holds nested query parameters, serialised qs-style
	// (pagination[pageSize]=250).
	Query map[string]any
}

// IsSingle reports whether the endpoint returns a single entry.
func (e Endpoint) IsSingle() bool {
	return e.Kind == SchemaKindSingle
}

// WithUpdatedSince returns a copy of the endpoint filtered to entries
// updated strictly after since.
func (e Endpoint) WithUpdatedSince(since string) Endpoint {
	q := make(map[string]any, len(e.Query)+1)
	for k, v := range e.Query {
		q[k] = v
	}
	q["filters"] = map[string]any{
		"updatedAt": map[string]any{"$gt": since},
	}
	e.Query = q
	return e
}

// FetchResult pairs an endpoint with the entities fetched from it.
type FetchResult struct {
	Endpoint Endpoint
	Entities []RawEntity
}
