package domain

// RawEntity is one CMS record exactly as the REST API delivered it.
// It is consumed by the normaliser and discarded afterwards.
type RawEntity struct {
	// ID is the upstream numeric identifier.
	ID int64

	// Attributes holds the attribute values in the CMS envelope shape:
	// relations and media as {data: {id, attributes}}, repeatable
	// components as flat arrays.
	Attributes map[string]any
}

// Value returns the raw attribute value for name.
func (e RawEntity) Value(name string) (any, bool) {
	v, ok := e.Attributes[name]
	return v, ok
}
