package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

const (
	// uriScheme is the URI scheme for synced graph resources.
	uriScheme = "strapi://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "Configured Strapi sources with node counts per type",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "nodes/{id}",
		Name:        "node",
		Description: "A synced node with its content",
		MIMEType:    "application/json",
	}, s.handleNodeResource)
}

// handleSourcesResource returns the configured sources.
func (s *Server) handleSourcesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Source == nil {
		return jsonResult(req.Params.URI, []byte("[]")), nil
	}

	sources, err := s.ports.Source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	type sourceInfo struct {
		Name   string            `json:"name"`
		APIURL string            `json:"api_url"`
		Types  []TypeCountOutput `json:"types"`
	}

	infos := make([]sourceInfo, len(sources))
	for i, src := range sources {
		counts, err := s.ports.Graph.ListTypes(ctx, src.Name)
		if err != nil {
			return nil, fmt.Errorf("counting nodes of %s: %w", src.Name, err)
		}
		infos[i] = sourceInfo{
			Name:   src.Name,
			APIURL: src.BaseURL(),
			Types:  make([]TypeCountOutput, len(counts)),
		}
		for j, c := range counts {
			infos[i].Types[j] = TypeCountOutput{Type: c.Type, Count: c.Count}
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sources: %w", err)
	}
	return jsonResult(req.Params.URI, data), nil
}

// handleNodeResource returns one node.
func (s *Server) handleNodeResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractNodeID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	node, err := s.ports.Graph.GetNode(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting node: %w", err)
	}

	data, err := json.MarshalIndent(toNodeOutput(node), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling node: %w", err)
	}
	return jsonResult(req.Params.URI, data), nil
}

func jsonResult(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}

// extractNodeID extracts the node id from a URI like strapi://nodes/{id}.
func extractNodeID(uri string) string {
	const prefix = uriScheme + "nodes/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	return strings.TrimPrefix(uri, prefix)
}
