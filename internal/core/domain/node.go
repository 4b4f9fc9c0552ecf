package domain

import "time"

// NodeKind classifies what a graph node mirrors.
type NodeKind string

const (
	// NodeKindEntry is the parentless node for one fetched content item.
	NodeKindEntry NodeKind = "entry"

	// NodeKindComponent is a component instance owned by an entry or another component.
	NodeKindComponent NodeKind = "component"

	// NodeKindRelation is a stub for a referenced entry. Stubs have no
	// parent; they live while some stored node links to them.
	NodeKindRelation NodeKind = "relation"

	// NodeKindRichText holds a markdown payload moved out of its owner.
	NodeKindRichText NodeKind = "richtext"

	// NodeKindJSON holds a JSON payload moved out of its owner.
	NodeKindJSON NodeKind = "json"

	// NodeKindFile is a downloaded media file.
	NodeKindFile NodeKind = "file"
)

// FileNodeType is the type tag of downloaded file nodes.
const FileNodeType = "File"

// Node is the unit of output pushed into the graph store.
type Node struct {
	// ID is the globally unique, deterministic node identifier.
	ID string

	// Source is the name of the configured source that owns this node.
	Source string

	// SourceID is the upstream numeric id, zero for synthetic nodes.
	SourceID int64

	// ParentID is the owning node id. Empty only for entry nodes and files.
	ParentID string

	// Type is the node type tag (e.g. TYPE_ARTICLE, COMPONENT_SHARED_SEO).
	Type string

	// Kind classifies the node.
	Kind NodeKind

	// SchemaUID is the schema the content was normalised against.
	// Empty for rich-text, JSON and file nodes.
	SchemaUID string

	// Content is the cleaned attribute payload.
	Content map[string]any

	// Children lists ids of nodes owned by this node, in emission order.
	Children []string

	// Digest is the content fingerprint used for change detection.
	Digest string

	// CreatedAt is when the node was first stored.
	CreatedAt time.Time

	// UpdatedAt is when the node was last written.
	UpdatedAt time.Time

	// TouchedAt is when the node was last confirmed as still valid.
	TouchedAt time.Time
}

// IsEntry reports whether the node is a parentless entry.
func (n *Node) IsEntry() bool {
	return n.Kind == NodeKindEntry
}

// AddChild records an owned child id once.
func (n *Node) AddChild(id string) {
	for _, c := range n.Children {
		if c == id {
			return
		}
	}
	n.Children = append(n.Children, id)
}

// NodeRef identifies a previously stored node by upstream id.
type NodeRef struct {
	SourceID int64  `json:"source_id"`
	ID       string `json:"id"`
}

// Snapshot maps node type name to the nodes of that type stored before this run.
type Snapshot map[string][]NodeRef

// BuildSnapshot indexes stored nodes by type. Synthetic nodes with no
// upstream id are skipped since they are never diffed directly.
func BuildSnapshot(nodes []*Node) Snapshot {
	snap := make(Snapshot)
	for _, n := range nodes {
		if n.SourceID == 0 {
			continue
		}
		snap[n.Type] = append(snap[n.Type], NodeRef{SourceID: n.SourceID, ID: n.ID})
	}
	return snap
}

// NodeFilter narrows a node listing.
type NodeFilter struct {
	// Source restricts to one source. Empty means all sources.
	Source string

	// Type restricts to one node type. Empty means all types.
	Type string

	// Kind restricts to one node kind. Empty means all kinds.
	Kind NodeKind

	// Limit caps the result count. Zero means no cap.
	Limit int
}

// NodeBatch is the set of nodes produced for one entity, handed to post-processors.
type NodeBatch struct {
	// Source is the owning source name.
	Source string

	// Nodes in emission order; the entry is last.
	Nodes []*Node
}

// Entry returns the entry node of the batch, or nil.
func (b *NodeBatch) Entry() *Node {
	if len(b.Nodes) == 0 {
		return nil
	}
	last := b.Nodes[len(b.Nodes)-1]
	if last.Kind != NodeKindEntry {
		return nil
	}
	return last
}

// TypeCount is the number of stored nodes of one type.
type TypeCount struct {
	Type  string
	Count int
}

// LinkKey returns the content key that holds node links for attr.
func LinkKey(attr string) string {
	return attr + "_link"
}
