package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNodeTypeName tests the canonical type tagging rule
func TestNodeTypeName(t *testing.T) {
	tests := []struct {
		name   string
		schema *Schema
		want   string
	}{
		{"collection type", &Schema{UID: "api::article.article", Kind: SchemaKindCollection, SingularName: "article"}, "TYPE_ARTICLE"},
		{"single type", &Schema{UID: "api::home-page.home-page", Kind: SchemaKindSingle, SingularName: "home-page"}, "TYPE_HOME_PAGE"},
		{"camel case", &Schema{Kind: SchemaKindCollection, SingularName: "blogPost"}, "TYPE_BLOGPOST"},
		{"component", &Schema{UID: "shared.seo", Kind: SchemaKindComponent}, "COMPONENT_SHARED_SEO"},
		{"component with dashes", &Schema{UID: "blocks.rich-text", Kind: SchemaKindComponent}, "COMPONENT_BLOCKS_RICH_TEXT"},
		{"non-ascii replaced", &Schema{Kind: SchemaKindCollection, SingularName: "café"}, "TYPE_CAF_"},
		{"nil schema", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NodeTypeName(tt.schema))
		})
	}
}

// TestNodeTypeName_IgnoresUIDForContentTypes tests that only the singular name drives content type tags
func TestNodeTypeName_IgnoresUIDForContentTypes(t *testing.T) {
	a := &Schema{UID: "api::article.article", Kind: SchemaKindCollection, SingularName: "article"}
	b := &Schema{UID: "plugin::blog.article", Kind: SchemaKindCollection, SingularName: "article"}
	assert.Equal(t, NodeTypeName(a), NodeTypeName(b))
}

// TestChildNodeTypes tests rich-text and JSON child type tags
func TestChildNodeTypes(t *testing.T) {
	assert.Equal(t, "TYPE_ARTICLE_BODY_TEXT", TextNodeType("TYPE_ARTICLE", "body"))
	assert.Equal(t, "COMPONENT_SHARED_SEO_STRUCTURED_DATA_JSON", JSONNodeType("COMPONENT_SHARED_SEO", "structuredData"))
}

// TestIDSpace_Deterministic tests that ids are pure functions of their parts
func TestIDSpace_Deterministic(t *testing.T) {
	a := NewIDSpace("blog")
	b := NewIDSpace("blog")

	assert.Equal(t, a.Entity("TYPE_ARTICLE", 7), b.Entity("TYPE_ARTICLE", 7))
	assert.Equal(t, a.Child("x", "body", "Text"), b.Child("x", "body", "Text"))
	assert.NotEqual(t, a.Entity("TYPE_ARTICLE", 7), a.Entity("TYPE_ARTICLE", 8))
	assert.NotEqual(t, a.Entity("TYPE_ARTICLE", 7), a.Entity("TYPE_WRITER", 7))
	assert.NotEqual(t, a.Child("x", "body", "Text"), a.Child("x", "body", "JSON"))
}

// TestIDSpace_ScopedBySource tests that sources never share ids
func TestIDSpace_ScopedBySource(t *testing.T) {
	assert.NotEqual(t,
		NewIDSpace("blog").Entity("TYPE_ARTICLE", 1),
		NewIDSpace("docs").Entity("TYPE_ARTICLE", 1),
	)
}

// TestIDSpace_PartsAreDelimited tests that part boundaries affect the id
func TestIDSpace_PartsAreDelimited(t *testing.T) {
	s := NewIDSpace("blog")
	assert.NotEqual(t, s.Derive("ab", "c"), s.Derive("a", "bc"))
}

// TestContentDigest tests fingerprint stability
func TestContentDigest(t *testing.T) {
	a := ContentDigest(map[string]any{"a": 1, "b": "two"})
	b := ContentDigest(map[string]any{"b": "two", "a": 1})
	c := ContentDigest(map[string]any{"a": 2, "b": "two"})

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Empty(t, ContentDigest(func() {}))
}
