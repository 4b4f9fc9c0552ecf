package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

const defaultListLimit = 50

// ListNodesInput is the input schema for the list_nodes tool.
type ListNodesInput struct {
	Source string `json:"source" jsonschema:"the configured source name"`
	Type   string `json:"type,omitempty" jsonschema:"node type such as TYPE_ARTICLE; omit to count nodes per type"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of nodes to return (default 50)"`
}

// ListNodesOutput is the output schema for the list_nodes tool.
type ListNodesOutput struct {
	Types []TypeCountOutput `json:"types,omitempty"`
	Nodes []NodeOutput      `json:"nodes,omitempty"`
	Count int               `json:"count"`
}

// TypeCountOutput is the number of nodes of one type.
type TypeCountOutput struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// GetNodeInput is the input schema for the get_node tool.
type GetNodeInput struct {
	ID string `json:"id" jsonschema:"the node id"`
}

// GetNodeOutput is the output schema for the get_node tool.
type GetNodeOutput struct {
	Node     NodeOutput   `json:"node"`
	Children []NodeOutput `json:"children,omitempty"`
}

// NodeOutput is the wire form of a graph node.
type NodeOutput struct {
	ID        string         `json:"id"`
	Source    string         `json:"source"`
	SourceID  int64          `json:"source_id,omitempty"`
	ParentID  string         `json:"parent_id,omitempty"`
	Type      string         `json:"type"`
	Kind      string         `json:"kind"`
	SchemaUID string         `json:"schema_uid,omitempty"`
	Content   map[string]any `json:"content,omitempty"`
	Children  []string       `json:"children,omitempty"`
	UpdatedAt string         `json:"updated_at,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_nodes",
		Description: "List synced nodes of a source, or node counts per type when no type is given",
	}, s.handleListNodes)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_node",
		Description: "Get one synced node with its content and direct children",
	}, s.handleGetNode)
}

// handleListNodes handles the list_nodes tool invocation.
func (s *Server) handleListNodes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListNodesInput,
) (*mcp.CallToolResult, ListNodesOutput, error) {
	if input.Type == "" {
		counts, err := s.ports.Graph.ListTypes(ctx, input.Source)
		if err != nil {
			return nil, ListNodesOutput{}, err
		}
		output := ListNodesOutput{Types: make([]TypeCountOutput, len(counts))}
		for i, c := range counts {
			output.Types[i] = TypeCountOutput{Type: c.Type, Count: c.Count}
			output.Count += c.Count
		}
		return nil, output, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	nodes, err := s.ports.Graph.ListNodes(ctx, input.Source, input.Type, limit)
	if err != nil {
		return nil, ListNodesOutput{}, err
	}

	output := ListNodesOutput{
		Nodes: make([]NodeOutput, len(nodes)),
		Count: len(nodes),
	}
	for i, n := range nodes {
		output.Nodes[i] = toNodeOutput(n)
	}
	return nil, output, nil
}

// handleGetNode handles the get_node tool invocation.
func (s *Server) handleGetNode(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetNodeInput,
) (*mcp.CallToolResult, GetNodeOutput, error) {
	node, err := s.ports.Graph.GetNode(ctx, input.ID)
	if err != nil {
		return nil, GetNodeOutput{}, err
	}
	children, err := s.ports.Graph.Children(ctx, input.ID)
	if err != nil {
		return nil, GetNodeOutput{}, err
	}

	output := GetNodeOutput{Node: toNodeOutput(node)}
	for _, c := range children {
		output.Children = append(output.Children, toNodeOutput(c))
	}
	return nil, output, nil
}

func toNodeOutput(n *domain.Node) NodeOutput {
	out := NodeOutput{
		ID:        n.ID,
		Source:    n.Source,
		SourceID:  n.SourceID,
		ParentID:  n.ParentID,
		Type:      n.Type,
		Kind:      string(n.Kind),
		SchemaUID: n.SchemaUID,
		Content:   n.Content,
		Children:  n.Children,
	}
	if !n.UpdatedAt.IsZero() {
		out.UpdatedAt = n.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return out
}
