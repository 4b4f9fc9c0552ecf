package services

import (
	"github.com/gobuffalo/flect"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

// BuildEndpoints maps the source's configured types onto REST endpoints.
//
// Collection types are served from /api/<pluralName> with pagination and
// populate defaults; single types from /api/<singularName>. A configured
// singular name with no matching content type is a configuration error.
func BuildEndpoints(source domain.Source, schemas *domain.SchemaRegistry) ([]domain.Endpoint, error) {
	seen := make(map[string]bool)
	var endpoints []domain.Endpoint

	for _, tc := range source.Types() {
		schema, ok := schemas.BySingularName(tc.SingularName)
		if !ok {
			return nil, domain.NewConfigError(tc.SingularName, domain.ErrUnknownSchema, "no content type with this singular name")
		}
		if seen[schema.UID] {
			continue
		}
		seen[schema.UID] = true

		ep := domain.Endpoint{
			UID:          schema.UID,
			Kind:         schema.Kind,
			SingularName: schema.SingularName,
			PluralName:   schema.PluralName,
			TypeName:     domain.NodeTypeName(schema),
		}

		if schema.Kind == domain.SchemaKindSingle {
			ep.Path = "/api/" + schema.SingularName
			ep.Query = copyQuery(tc.QueryParams)
			if len(ep.Query) == 0 {
				ep.Query = map[string]any{"populate": "*"}
			}
		} else {
			plural := schema.PluralName
			if plural == "" {
				plural = flect.Pluralize(schema.SingularName)
				ep.PluralName = plural
			}
			ep.Path = "/api/" + plural
			ep.Query = copyQuery(tc.QueryParams)
			ep.Query["pagination"] = map[string]any{
				"pageSize": source.PageSize(tc),
				"page":     1,
			}
			if _, ok := ep.Query["populate"]; !ok {
				ep.Query["populate"] = "*"
			}
		}

		endpoints = append(endpoints, ep)
	}

	return endpoints, nil
}

func copyQuery(q map[string]any) map[string]any {
	out := make(map[string]any, len(q)+2)
	for k, v := range q {
		out[k] = v
	}
	return out
}
