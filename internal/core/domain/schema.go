package domain

import "sort"

// SchemaKind identifies what a schema describes.
type SchemaKind string

const (
	// SchemaKindCollection is a content type with many entries.
	SchemaKindCollection SchemaKind = "collectionType"

	// SchemaKindSingle is a content type with exactly one entry.
	SchemaKindSingle SchemaKind = "singleType"

	// SchemaKindComponent is a reusable sub-structure embedded in entries.
	SchemaKindComponent SchemaKind = "component"
)

// AttributeKind is the closed set of attribute shapes the normaliser branches on.
type AttributeKind int

const (
	// AttributeScalar covers strings, numbers, booleans, dates, enums, uids
	// and any type the CMS adds that has no dedicated handling.
	AttributeScalar AttributeKind = iota

	// AttributeRelation references other entries.
	AttributeRelation

	// AttributeComponent embeds one or more instances of a single component.
	AttributeComponent

	// AttributeDynamicZone embeds an ordered list of heterogeneous components.
	AttributeDynamicZone

	// AttributeMedia references uploaded files.
	AttributeMedia

	// AttributeRichText holds markdown.
	AttributeRichText

	// AttributeJSON holds an arbitrary JSON document.
	AttributeJSON
)

// String returns the CMS type name for the kind.
func (k AttributeKind) String() string {
	switch k {
	case AttributeRelation:
		return "relation"
	case AttributeComponent:
		return "component"
	case AttributeDynamicZone:
		return "dynamiczone"
	case AttributeMedia:
		return "media"
	case AttributeRichText:
		return "richtext"
	case AttributeJSON:
		return "json"
	default:
		return "scalar"
	}
}

// ParseAttributeKind maps a CMS attribute type string onto an AttributeKind.
// Unknown types are scalars.
func ParseAttributeKind(typ string) AttributeKind {
	switch typ {
	case "relation":
		return AttributeRelation
	case "component":
		return AttributeComponent
	case "dynamiczone":
		return AttributeDynamicZone
	case "media":
		return AttributeMedia
	case "richtext":
		return AttributeRichText
	case "json":
		return AttributeJSON
	default:
		return AttributeScalar
	}
}

// Attribute describes one field of a schema.
type Attribute struct {
	// Type is the raw CMS type string (e.g. "string", "relation").
	Type string

	// Kind is the classified shape derived from Type.
	Kind AttributeKind

	// Relation is the cardinality for relations (e.g. "oneToMany").
	Relation string

	// Target is the content-type uid a relation points at.
	Target string

	// Component is the component uid for component attributes.
	Component string

	// Repeatable marks a component attribute holding a list.
	Repeatable bool

	// Multiple marks a media attribute holding a list.
	Multiple bool

	// Components lists the uids allowed in a dynamic zone.
	Components []string
}

// IsToMany reports whether a relation attribute can hold several targets.
func (a Attribute) IsToMany() bool {
	switch a.Relation {
	case "oneToMany", "manyToMany", "morphToMany", "manyWay":
		return true
	}
	return false
}

// Schema describes a content type or component.
// Schemas are loaded once per run and never mutated.
type Schema struct {
	// UID is the CMS identifier (e.g. "api::article.article", "shared.seo").
	UID string

	// Kind is collectionType, singleType or component.
	Kind SchemaKind

	// SingularName is the API singular name. Empty for components.
	SingularName string

	// PluralName is the API plural name. Empty for components.
	PluralName string

	// DisplayName is the human-readable name.
	DisplayName string

	// Attributes maps attribute name to its descriptor.
	Attributes map[string]Attribute
}

// Attribute returns the descriptor for name and whether it exists.
func (s *Schema) Attribute(name string) (Attribute, bool) {
	if s == nil || s.Attributes == nil {
		return Attribute{}, false
	}
	a, ok := s.Attributes[name]
	return a, ok
}

// SchemaRegistry is an immutable lookup of schemas by uid.
type SchemaRegistry struct {
	byUID      map[string]*Schema
	bySingular map[string]*Schema
	uids       []string
}

// NewSchemaRegistry builds a registry. Later duplicates of a uid are ignored.
func NewSchemaRegistry(schemas []Schema) *SchemaRegistry {
	r := &SchemaRegistry{
		byUID:      make(map[string]*Schema, len(schemas)),
		bySingular: make(map[string]*Schema),
	}
	for i := range schemas {
		s := schemas[i]
		if _, exists := r.byUID[s.UID]; exists {
			continue
		}
		r.byUID[s.UID] = &s
		r.uids = append(r.uids, s.UID)
		if s.Kind != SchemaKindComponent && s.SingularName != "" {
			r.bySingular[s.SingularName] = &s
		}
	}
	sort.Strings(r.uids)
	return r
}

// Lookup returns the schema for uid, or nil if unknown.
func (r *SchemaRegistry) Lookup(uid string) *Schema {
	if r == nil {
		return nil
	}
	return r.byUID[uid]
}

// Resolve returns the schema for uid or a ConfigError naming it.
func (r *SchemaRegistry) Resolve(uid string) (*Schema, error) {
	s := r.Lookup(uid)
	if s == nil {
		return nil, NewConfigError(uid, ErrUnknownSchema, "not present in schema registry")
	}
	return s, nil
}

// ResolveComponent returns the component schema for uid or a ConfigError naming it.
func (r *SchemaRegistry) ResolveComponent(uid string) (*Schema, error) {
	s := r.Lookup(uid)
	if s == nil || s.Kind != SchemaKindComponent {
		return nil, NewConfigError(uid, ErrUnknownComponent, "not present in schema registry")
	}
	return s, nil
}

// BySingularName returns the content type with the given API singular name.
func (r *SchemaRegistry) BySingularName(name string) (*Schema, bool) {
	if r == nil {
		return nil, false
	}
	s, ok := r.bySingular[name]
	return s, ok
}

// All returns every schema ordered by uid.
func (r *SchemaRegistry) All() []*Schema {
	if r == nil {
		return nil
	}
	out := make([]*Schema, 0, len(r.uids))
	for _, uid := range r.uids {
		out = append(out, r.byUID[uid])
	}
	return out
}

// Len returns the number of schemas.
func (r *SchemaRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.uids)
}
