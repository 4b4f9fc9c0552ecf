package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/strapisync/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol server exposing the synced graph read-only.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Tools:      list_nodes, get_node
Resources:  strapi://sources, strapi://nodes/{id}

Examples:
  strapisync mcp serve
  strapisync mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	app, err := openApp(false)
	if err != nil {
		return err
	}
	defer closeApp(app)

	server, err := mcp.NewServer(&mcp.Ports{
		Graph:  app.Graph,
		Source: app.Sources,
	})
	if err != nil {
		return err
	}

	var addr string
	if port > 0 {
		addr = fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
	}
	return server.Serve(cmd.Context(), addr)
}
