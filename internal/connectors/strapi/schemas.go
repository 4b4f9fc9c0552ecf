package strapi

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

const (
	contentTypesPath = "/api/content-type-builder/content-types"
	componentsPath   = "/api/content-type-builder/components"
)

// FetchSchemas fetches content types and components concurrently and
// returns the content types followed by the components.
func (c *Client) FetchSchemas(ctx context.Context) ([]domain.Schema, error) {
	var types, components []domain.Schema

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := c.get(gctx, contentTypesPath, nil)
		if err != nil {
			return fmt.Errorf("fetch content types: %w", err)
		}
		types = parseSchemas(body)
		return nil
	})
	g.Go(func() error {
		body, err := c.get(gctx, componentsPath, nil)
		if err != nil {
			return fmt.Errorf("fetch components: %w", err)
		}
		components = parseSchemas(body)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.Schema, 0, len(types)+len(components))
	out = append(out, types...)
	return append(out, components...), nil
}

// parseSchemas reads the data array of a content-type-builder response.
// Entries without a kind are components.
func parseSchemas(body []byte) []domain.Schema {
	var out []domain.Schema
	gjson.GetBytes(body, "data").ForEach(func(_, item gjson.Result) bool {
		schema := item.Get("schema")
		s := domain.Schema{
			UID:          item.Get("uid").String(),
			Kind:         domain.SchemaKind(schema.Get("kind").String()),
			SingularName: schema.Get("singularName").String(),
			PluralName:   schema.Get("pluralName").String(),
			DisplayName:  schema.Get("displayName").String(),
			Attributes:   make(map[string]domain.Attribute),
		}
		if s.Kind == "" {
			s.Kind = domain.SchemaKindComponent
		}
		schema.Get("attributes").ForEach(func(name, attr gjson.Result) bool {
			s.Attributes[name.String()] = parseAttribute(attr)
			return true
		})
		out = append(out, s)
		return true
	})
	return out
}

func parseAttribute(attr gjson.Result) domain.Attribute {
	typ := attr.Get("type").String()
	a := domain.Attribute{
		Type:       typ,
		Kind:       domain.ParseAttributeKind(typ),
		Relation:   attr.Get("relation").String(),
		Target:     attr.Get("target").String(),
		Component:  attr.Get("component").String(),
		Repeatable: attr.Get("repeatable").Bool(),
		Multiple:   attr.Get("multiple").Bool(),
	}
	for _, c := range attr.Get("components").Array() {
		a.Components = append(a.Components, c.String())
	}
	return a
}
