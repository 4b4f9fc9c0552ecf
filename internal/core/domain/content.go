package domain

import "strings"

// restrictedFields collide with keys the graph store reserves on nodes.
var restrictedFields = map[string]bool{
	"__component": true,
	"children":    true,
	"fields":      true,
	"internal":    true,
	"parent":      true,
}

// ContentKey returns the key an attribute is stored under in node content.
// Reserved names are prefixed with strapi_, so __component becomes
// strapi_component.
func ContentKey(attr string) string {
	if restrictedFields[attr] {
		return "strapi_" + strings.TrimLeft(attr, "_")
	}
	return attr
}

// DynamicZoneTag is the wire key naming the component of a dynamic-zone element.
const DynamicZoneTag = "__component"

// legacyZoneTags are tag keys written by older payload shapes.
var legacyZoneTags = []string{"strapi_component", "strapiComponent"}

// ComponentTag returns the component uid of a dynamic-zone element.
// Legacy reports whether the uid came from a legacy key rather than __component.
func ComponentTag(element map[string]any) (uid string, legacy bool) {
	if v, ok := element[DynamicZoneTag].(string); ok && v != "" {
		return v, false
	}
	for _, k := range legacyZoneTags {
		if v, ok := element[k].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// StripComponentTags returns a copy of element without any tag keys.
func StripComponentTags(element map[string]any) map[string]any {
	out := make(map[string]any, len(element))
	for k, v := range element {
		out[k] = v
	}
	delete(out, DynamicZoneTag)
	for _, k := range legacyZoneTags {
		delete(out, k)
	}
	return out
}
