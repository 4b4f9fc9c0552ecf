// Package mcp provides an MCP (Model Context Protocol) server adapter that
// exposes the synced content graph read-only to AI assistants.
package mcp

import "errors"

// ErrMissingGraphService is returned when the graph service is not provided.
var ErrMissingGraphService = errors.New("mcp: graph service is required")
