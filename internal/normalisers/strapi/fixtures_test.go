package strapi

import (
	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
)

func attr(typ string) domain.Attribute {
	return domain.Attribute{Type: typ, Kind: domain.ParseAttributeKind(typ)}
}

func testSchemas() *domain.SchemaRegistry {
	return domain.NewSchemaRegistry([]domain.Schema{
		{
			UID:          "api::article.article",
			Kind:         domain.SchemaKindCollection,
			SingularName: "article",
			PluralName:   "articles",
			Attributes: map[string]domain.Attribute{
				"title":    attr("string"),
				"cover":    attr("media"),
				"gallery":  {Type: "media", Kind: domain.AttributeMedia, Multiple: true},
				"body":     attr("richtext"),
				"meta":     attr("json"),
				"author":   {Type: "relation", Kind: domain.AttributeRelation, Relation: "manyToOne", Target: "api::writer.writer"},
				"tags":     {Type: "relation", Kind: domain.AttributeRelation, Relation: "manyToMany", Target: "api::tag.tag"},
				"seo":      {Type: "component", Kind: domain.AttributeComponent, Component: "shared.seo"},
				"links":    {Type: "component", Kind: domain.AttributeComponent, Component: "shared.link", Repeatable: true},
				"blocks":   {Type: "dynamiczone", Kind: domain.AttributeDynamicZone, Components: []string{"blocks.quote", "blocks.hero"}},
				"children": attr("string"),
			},
		},
		{
			UID:          "api::writer.writer",
			Kind:         domain.SchemaKindCollection,
			SingularName: "writer",
			PluralName:   "writers",
			Attributes: map[string]domain.Attribute{
				"name":     attr("string"),
				"articles": {Type: "relation", Kind: domain.AttributeRelation, Relation: "oneToMany", Target: "api::article.article"},
				"avatar":   attr("media"),
			},
		},
		{
			UID:          "api::tag.tag",
			Kind:         domain.SchemaKindCollection,
			SingularName: "tag",
			PluralName:   "tags",
			Attributes:   map[string]domain.Attribute{"label": attr("string")},
		},
		{
			UID:          "api::homepage.homepage",
			Kind:         domain.SchemaKindSingle,
			SingularName: "homepage",
			PluralName:   "homepages",
			Attributes:   map[string]domain.Attribute{"headline": attr("string")},
		},
		{
			UID:  "shared.seo",
			Kind: domain.SchemaKindComponent,
			Attributes: map[string]domain.Attribute{
				"metaTitle": attr("string"),
				"image":     attr("media"),
			},
		},
		{
			UID:        "shared.link",
			Kind:       domain.SchemaKindComponent,
			Attributes: map[string]domain.Attribute{"href": attr("string")},
		},
		{
			UID:  "blocks.quote",
			Kind: domain.SchemaKindComponent,
			Attributes: map[string]domain.Attribute{
				"text":   attr("richtext"),
				"author": {Type: "relation", Kind: domain.AttributeRelation, Relation: "oneToOne", Target: "api::writer.writer"},
			},
		},
		{
			UID:        "blocks.hero",
			Kind:       domain.SchemaKindComponent,
			Attributes: map[string]domain.Attribute{"heading": attr("string")},
		},
	})
}

func newSyncContext() *driven.SyncContext {
	return driven.NewSyncContext(domain.Source{Name: "blog", APIURL: "http://cms.local"}, testSchemas())
}

func envelope(id float64, attrs map[string]any) map[string]any {
	return map[string]any{"data": map[string]any{"id": id, "attributes": attrs}}
}

func envelopeList(items ...map[string]any) map[string]any {
	data := make([]any, 0, len(items))
	for _, it := range items {
		data = append(data, it["data"])
	}
	return map[string]any{"data": data}
}

// richArticle exercises every attribute kind.
func richArticle(id int64) domain.RawEntity {
	return domain.RawEntity{
		ID: id,
		Attributes: map[string]any{
			"title":    "Hello",
			"children": "kept",
			"cover":    envelope(3, map[string]any{"url": "/img.png", "updatedAt": "2024-01-01", "mime": "image/png", "secret": "x"}),
			"body":     "# Title\n\n![alt](/uploads/a.png)",
			"meta":     map[string]any{"k": "v"},
			"author":   envelope(9, map[string]any{"name": "Ada", "articles": map[string]any{"data": []any{}}}),
			"tags": envelopeList(
				envelope(1, map[string]any{"label": "go"}),
				envelope(2, map[string]any{"label": "cms"}),
			),
			"seo":   map[string]any{"id": float64(11), "metaTitle": "SEO", "image": map[string]any{"data": nil}},
			"links": []any{map[string]any{"id": float64(21), "href": "/a"}, map[string]any{"id": float64(22), "href": "/b"}},
			"blocks": []any{
				map[string]any{"id": float64(31), "__component": "blocks.hero", "heading": "Hi"},
				map[string]any{"id": float64(32), "__component": "blocks.quote", "text": "quoted", "author": envelope(9, map[string]any{"name": "Ada"})},
			},
		},
	}
}
