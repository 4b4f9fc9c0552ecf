package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes <source>",
	Short: "List synced nodes",
	Long: `Without --type, prints node counts per type for the source.
With --type, lists the nodes of that type.

Examples:
  strapisync nodes blog
  strapisync nodes blog --type TYPE_ARTICLE --limit 20`,
	Args: cobra.ExactArgs(1),
	RunE: runNodes,
}

var nodeCmd = &cobra.Command{
	Use:   "node <id>",
	Short: "Show one synced node",
	Args:  cobra.ExactArgs(1),
	RunE:  runNode,
}

// Flags for nodes.
var (
	nodesType  string
	nodesLimit int
)

func init() {
	nodesCmd.Flags().StringVarP(&nodesType, "type", "t", "", "node type to list")
	nodesCmd.Flags().IntVarP(&nodesLimit, "limit", "n", 50, "maximum nodes to list (0 = all)")
	rootCmd.AddCommand(nodesCmd)
	rootCmd.AddCommand(nodeCmd)
}

func runNodes(cmd *cobra.Command, args []string) error {
	app, err := openApp(false)
	if err != nil {
		return err
	}
	defer closeApp(app)

	ctx := cmd.Context()
	source := args[0]

	if nodesType == "" {
		counts, err := app.Graph.ListTypes(ctx, source)
		if err != nil {
			return fmt.Errorf("listing types: %w", err)
		}
		if len(counts) == 0 {
			cmd.Printf("No nodes synced for %s.\n", source)
			return nil
		}
		rows := make([][]string, len(counts))
		for i, c := range counts {
			rows[i] = []string{c.Type, strconv.Itoa(c.Count)}
		}
		cmd.Println(renderTable([]string{"Type", "Nodes"}, rows))
		return nil
	}

	nodes, err := app.Graph.ListNodes(ctx, source, nodesType, nodesLimit)
	if err != nil {
		return fmt.Errorf("listing nodes: %w", err)
	}
	if len(nodes) == 0 {
		cmd.Printf("No %s nodes synced for %s.\n", nodesType, source)
		return nil
	}
	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		sourceID := ""
		if n.SourceID != 0 {
			sourceID = strconv.FormatInt(n.SourceID, 10)
		}
		rows[i] = []string{n.ID, sourceID, string(n.Kind), formatTime(n.UpdatedAt)}
	}
	cmd.Println(renderTable([]string{"ID", "Strapi ID", "Kind", "Updated"}, rows))
	return nil
}

func runNode(cmd *cobra.Command, args []string) error {
	app, err := openApp(false)
	if err != nil {
		return err
	}
	defer closeApp(app)

	ctx := cmd.Context()
	node, err := app.Graph.GetNode(ctx, args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("node %s not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("getting node: %w", err)
	}

	cmd.Println(titleStyle.Render(node.Type) + " " + mutedStyle.Render(node.ID))
	cmd.Printf("Source:  %s\n", node.Source)
	cmd.Printf("Kind:    %s\n", node.Kind)
	if node.SourceID != 0 {
		cmd.Printf("Strapi:  %d\n", node.SourceID)
	}
	if node.ParentID != "" {
		cmd.Printf("Parent:  %s\n", node.ParentID)
	}
	cmd.Printf("Updated: %s\n", formatTime(node.UpdatedAt))

	content, err := json.MarshalIndent(node.Content, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding content: %w", err)
	}
	cmd.Println(string(content))

	children, err := app.Graph.Children(ctx, node.ID)
	if err != nil {
		return fmt.Errorf("listing children: %w", err)
	}
	if len(children) > 0 {
		rows := make([][]string, len(children))
		for i, c := range children {
			rows[i] = []string{c.ID, c.Type, string(c.Kind)}
		}
		cmd.Println(renderTable([]string{"Child", "Type", "Kind"}, rows))
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
