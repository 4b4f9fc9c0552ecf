package strapi

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
	"github.com/custodia-labs/strapisync/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser decomposes Strapi entities into graph nodes.
type Normaliser struct{}

// New creates a new Strapi normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Normalise decomposes entity into an entry node plus its relation stubs,
// component sub-graphs, rich-text and JSON children. The entry is the last
// element of the returned slice. Media attributes are cleaned but left for
// the media post-processor to link.
func (n *Normaliser) Normalise(sc *driven.SyncContext, entity domain.RawEntity, uid string) ([]*domain.Node, error) {
	schema, err := sc.Schemas.Resolve(uid)
	if err != nil {
		return nil, err
	}

	typeName := domain.NodeTypeName(schema)
	entry := &domain.Node{
		ID:        sc.IDs.Entity(typeName, entity.ID),
		Source:    sc.Source,
		SourceID:  entity.ID,
		Type:      typeName,
		Kind:      domain.NodeKindEntry,
		SchemaUID: schema.UID,
	}

	w := &walker{sc: sc}
	nodes, content, err := w.decompose(entry, schema, entity.Attributes)
	if err != nil {
		return nil, fmt.Errorf("normalise %s %d: %w", uid, entity.ID, err)
	}
	entry.Content = content

	return append(nodes, entry), nil
}

// walker carries the sync context through one recursive decomposition.
type walker struct {
	sc *driven.SyncContext
}

// decompose builds owner's content from attrs and returns the child nodes
// created along the way, in attribute order.
func (w *walker) decompose(owner *domain.Node, schema *domain.Schema, attrs map[string]any) ([]*domain.Node, map[string]any, error) {
	var nodes []*domain.Node
	content := make(map[string]any, len(attrs))

	for _, name := range sortedKeys(attrs) {
		value := attrs[name]
		key := domain.ContentKey(name)

		attr, ok := schema.Attribute(name)
		if !ok {
			content[key] = value
			continue
		}

		if isAbsent(value) {
			content[key] = value
			continue
		}
		kind, v := Classify(attr, value)
		if v == nil {
			content[key] = nil
			continue
		}

		var (
			children []*domain.Node
			err      error
		)
		switch kind {
		case domain.AttributeRelation:
			children, err = w.relation(owner, attr, key, v, content)
		case domain.AttributeComponent:
			children, err = w.component(owner, attr, key, v, content)
		case domain.AttributeDynamicZone:
			children, err = w.dynamicZone(owner, key, v, content)
		case domain.AttributeRichText:
			children = []*domain.Node{w.richText(owner, key, v, content)}
		case domain.AttributeJSON:
			children = []*domain.Node{w.json(owner, key, v, content)}
		case domain.AttributeMedia, domain.AttributeScalar:
			content[key] = v
		}
		if err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, children...)
	}

	return nodes, content, nil
}

// relation emits one stub per referenced entry and links them on owner.
// Targets are never decomposed further. Stubs are references, not owned:
// they carry no parent, so deleting one referencer leaves them in place.
func (w *walker) relation(owner *domain.Node, attr domain.Attribute, key string, v any, content map[string]any) ([]*domain.Node, error) {
	target, err := w.sc.Schemas.Resolve(attr.Target)
	if err != nil {
		return nil, err
	}

	var nodes []*domain.Node
	link := func(rec map[string]any) (string, bool) {
		stub, ok := w.stub(target, rec)
		if !ok {
			return "", false
		}
		if w.sc.Claim(stub.ID) {
			nodes = append(nodes, stub)
		}
		return stub.ID, true
	}

	switch val := v.(type) {
	case []any:
		ids := make([]any, 0, len(val))
		for _, item := range val {
			if id, ok := link(item.(map[string]any)); ok {
				ids = append(ids, id)
			}
		}
		content[domain.LinkKey(key)] = ids
	case map[string]any:
		if id, ok := link(val); ok {
			content[domain.LinkKey(key)] = id
		}
	}
	return nodes, nil
}

// stub builds the relation node for rec. Only scalar attributes of the
// target are kept.
func (w *walker) stub(target *domain.Schema, rec map[string]any) (*domain.Node, bool) {
	sourceID, ok := domain.AsInt64(rec["id"])
	if !ok {
		return nil, false
	}
	typeName := domain.NodeTypeName(target)

	content := make(map[string]any, len(rec))
	for name, value := range rec {
		if name == "id" {
			continue
		}
		if attr, ok := target.Attribute(name); ok && attr.Kind != domain.AttributeScalar {
			continue
		}
		content[domain.ContentKey(name)] = value
	}

	return &domain.Node{
		ID:        w.sc.IDs.Entity(typeName, sourceID),
		Source:    w.sc.Source,
		SourceID:  sourceID,
		Type:      typeName,
		Kind:      domain.NodeKindRelation,
		SchemaUID: target.UID,
		Content:   content,
	}, true
}

func (w *walker) component(owner *domain.Node, attr domain.Attribute, key string, v any, content map[string]any) ([]*domain.Node, error) {
	schema, err := w.sc.Schemas.ResolveComponent(attr.Component)
	if err != nil {
		return nil, err
	}

	if !attr.Repeatable {
		rec, _ := v.(map[string]any)
		nodes, id, err := w.instance(owner, schema, rec, key, 0)
		if err != nil {
			return nil, err
		}
		content[domain.LinkKey(key)] = id
		return nodes, nil
	}

	var nodes []*domain.Node
	items, _ := v.([]any)
	ids := make([]any, 0, len(items))
	for i, item := range items {
		sub, id, err := w.instance(owner, schema, item.(map[string]any), key, i)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, sub...)
		ids = append(ids, id)
	}
	content[domain.LinkKey(key)] = ids
	return nodes, nil
}

// dynamicZone resolves each element against the component named by its
// own tag. Link order follows element order.
func (w *walker) dynamicZone(owner *domain.Node, key string, v any, content map[string]any) ([]*domain.Node, error) {
	var nodes []*domain.Node
	items, _ := v.([]any)
	ids := make([]any, 0, len(items))

	for i, item := range items {
		element := item.(map[string]any)
		tag, legacy := domain.ComponentTag(element)
		if tag == "" {
			return nil, domain.NewConfigError(owner.Type+"."+key, domain.ErrUnknownComponent, "dynamic zone element has no component tag")
		}
		if legacy {
			logger.Debug("dynamic zone %s.%s: legacy component tag for %s", owner.Type, key, tag)
		}
		schema, err := w.sc.Schemas.ResolveComponent(tag)
		if err != nil {
			return nil, err
		}

		rec := domain.StripComponentTags(element)
		rec[domain.DynamicZoneTag] = tag

		sub, id, err := w.instance(owner, schema, rec, key, i)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, sub...)
		ids = append(ids, id)
	}
	content[domain.LinkKey(key)] = ids
	return nodes, nil
}

// instance decomposes one component record into its own sub-graph.
// The component node is the last element of the returned nodes.
//
// Records carrying an upstream id keep that id wherever they move in a
// list. The owner/key/index id is a fallback for payloads without ids
// only, and renames the node if such a record is reordered.
func (w *walker) instance(owner *domain.Node, schema *domain.Schema, rec map[string]any, key string, index int) ([]*domain.Node, string, error) {
	typeName := domain.NodeTypeName(schema)
	node := &domain.Node{
		Source:    w.sc.Source,
		ParentID:  owner.ID,
		Type:      typeName,
		Kind:      domain.NodeKindComponent,
		SchemaUID: schema.UID,
	}
	if id, ok := domain.AsInt64(rec["id"]); ok {
		node.SourceID = id
		node.ID = w.sc.IDs.Entity(typeName, id)
	} else {
		node.ID = w.sc.IDs.Derive(owner.ID, key, strconv.Itoa(index))
	}

	attrs := make(map[string]any, len(rec))
	for k, val := range rec {
		if k != "id" {
			attrs[k] = val
		}
	}

	children, content, err := w.decompose(node, schema, attrs)
	if err != nil {
		return nil, "", err
	}
	node.Content = content
	owner.AddChild(node.ID)

	return append(children, node), node.ID, nil
}

func (w *walker) richText(owner *domain.Node, key string, v any, content map[string]any) *domain.Node {
	node := &domain.Node{
		ID:       w.sc.IDs.Child(owner.ID, key, "Text"),
		Source:   w.sc.Source,
		ParentID: owner.ID,
		Type:     domain.TextNodeType(owner.Type, key),
		Kind:     domain.NodeKindRichText,
		Content:  v.(map[string]any),
	}
	owner.AddChild(node.ID)
	content[domain.LinkKey(key)] = node.ID
	return node
}

func (w *walker) json(owner *domain.Node, key string, v any, content map[string]any) *domain.Node {
	node := &domain.Node{
		ID:       w.sc.IDs.Child(owner.ID, key, "JSON"),
		Source:   w.sc.Source,
		ParentID: owner.ID,
		Type:     domain.JSONNodeType(owner.Type, key),
		Kind:     domain.NodeKindJSON,
		Content:  map[string]any{"data": v},
	}
	owner.AddChild(node.ID)
	content[domain.LinkKey(key)] = node.ID
	return node
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
