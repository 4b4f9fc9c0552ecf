// Package strapi normalises Strapi REST entities into graph nodes.
//
// Classify unwraps attribute values from the {data: {id, attributes}}
// envelope. The Normaliser walks an entity against its schema and emits
// one entry node plus relation stubs, component sub-graphs, rich-text and
// JSON children. Node ids come from the sync context's id space so that
// re-running a sync updates nodes instead of duplicating them.
package strapi
