package mcp

import (
	"github.com/custodia-labs/strapisync/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Graph queries the synced node graph.
	Graph driving.GraphService

	// Source lists the configured sources. Optional.
	Source driving.SourceService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Graph == nil {
		return ErrMissingGraphService
	}
	return nil
}
