package strapi

import "github.com/custodia-labs/strapisync/internal/core/domain"

// Classify unwraps a raw attribute value from the CMS envelope according to
// its descriptor. Lists come back as []any of map[string]any, single
// records as map[string]any.
//
// Absent values (nil, false, "", 0) are returned unchanged so the caller
// can preserve them without creating child nodes.
func Classify(attr domain.Attribute, value any) (domain.AttributeKind, any) {
	if isAbsent(value) {
		return attr.Kind, value
	}

	switch attr.Kind {
	case domain.AttributeMedia:
		return attr.Kind, unwrapMedia(attr, value)
	case domain.AttributeRelation:
		return attr.Kind, unwrapRelation(value)
	case domain.AttributeComponent:
		if attr.Repeatable {
			return attr.Kind, recordList(value)
		}
		if rec, ok := value.(map[string]any); ok {
			return attr.Kind, rec
		}
		return attr.Kind, nil
	case domain.AttributeDynamicZone:
		return attr.Kind, recordList(value)
	case domain.AttributeRichText:
		return attr.Kind, map[string]any{"data": value, "medias": []any{}}
	case domain.AttributeJSON, domain.AttributeScalar:
		return attr.Kind, value
	}
	return domain.AttributeScalar, value
}

func unwrapMedia(attr domain.Attribute, value any) any {
	data, ok := envelopeData(value)
	if !ok || data == nil {
		return nil
	}
	switch d := data.(type) {
	case []any:
		out := make([]any, 0, len(d))
		for _, item := range d {
			if rec, ok := item.(map[string]any); ok {
				out = append(out, domain.CleanMedia(rec))
			}
		}
		return out
	case map[string]any:
		if attr.Multiple {
			return []any{domain.CleanMedia(d)}
		}
		return domain.CleanMedia(d)
	}
	return nil
}

func unwrapRelation(value any) any {
	data, ok := envelopeData(value)
	if !ok {
		// Already flat: a populated relation without the data envelope.
		data = value
	}
	switch d := data.(type) {
	case []any:
		out := make([]any, 0, len(d))
		for _, item := range d {
			if rec, ok := item.(map[string]any); ok {
				out = append(out, flattenRecord(rec))
			}
		}
		return out
	case map[string]any:
		return flattenRecord(d)
	}
	return nil
}

// envelopeData returns value.data when value has the {data: ...} shape.
func envelopeData(value any) (any, bool) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}
	data, ok := m["data"]
	return data, ok
}

// flattenRecord turns {id, attributes: {...}} into {id, ...}.
func flattenRecord(rec map[string]any) map[string]any {
	attrs, ok := rec["attributes"].(map[string]any)
	if !ok {
		return rec
	}
	out := make(map[string]any, len(attrs)+1)
	for k, v := range attrs {
		out[k] = v
	}
	out["id"] = rec["id"]
	return out
}

func recordList(value any) any {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		if rec, ok := item.(map[string]any); ok {
			out = append(out, rec)
		}
	}
	return out
}

func isAbsent(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	case float64:
		return x == 0
	case int:
		return x == 0
	case int64:
		return x == 0
	}
	return false
}
