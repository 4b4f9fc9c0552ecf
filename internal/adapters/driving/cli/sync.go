package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/strapisync/internal/core/ports/driving"
)

var syncCmd = &cobra.Command{
	Use:   "sync [source]",
	Short: "Synchronise content from Strapi sources",
	Long: `Fetches the configured content types of a source, normalises them into
graph nodes and prunes nodes whose entries no longer exist upstream.
If a source name is provided, only that source is synchronised.
Otherwise, all sources are synchronised.

Examples:
  strapisync sync blog
  strapisync sync --dry-run
  strapisync sync --watch --interval 15m`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

// Flags for sync.
var (
	syncDryRun   bool
	syncWatch    bool
	syncInterval time.Duration
)

func init() {
	syncCmd.Flags().BoolVar(
		&syncDryRun, "dry-run", false, "run against in-memory stores; nothing is persisted")
	syncCmd.Flags().BoolVar(
		&syncWatch, "watch", false, "keep running and re-sync when the config file changes")
	syncCmd.Flags().DurationVar(
		&syncInterval, "interval", 0, "with --watch, also re-sync on this interval (0 = config changes only)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	app, err := openApp(syncDryRun)
	if err != nil {
		return err
	}
	defer closeApp(app)

	if syncWatch {
		return runWatch(cmd, app, args)
	}

	ctx := cmd.Context()
	var reports []*driving.SyncReport

	if len(args) > 0 {
		name := args[0]
		cmd.Printf("Synchronising source: %s...\n", name)

		report, err := syncWithProgress(ctx, cmd, app.Sync, name)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		reports = append(reports, report)
	} else {
		cmd.Println("Synchronising all sources...")

		reports, err = app.Sync.SyncAll(ctx)
		if err != nil {
			// Sources that succeeded still get reported.
			if len(reports) > 0 {
				cmd.Println(renderReports(reports))
			}
			return fmt.Errorf("sync failed: %w", err)
		}
	}

	if len(reports) > 0 {
		cmd.Println(renderReports(reports))
	}
	if syncDryRun {
		cmd.Println(mutedStyle.Render("Dry run: nothing was persisted."))
	}
	cmd.Println(successStyle.Render("Sync complete."))
	return nil
}

// syncWithProgress runs sync while displaying progress updates.
func syncWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	syncOrch driving.SyncOrchestrator,
	name string,
) (*driving.SyncReport, error) {
	type outcome struct {
		report *driving.SyncReport
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		report, err := syncOrch.Sync(ctx, name)
		done <- outcome{report, err}
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case res := <-done:
			if lastCount > 0 {
				cmd.Println()
			}
			return res.report, res.err
		case <-ticker.C:
			// Best effort; a status error only skips the update.
			status, err := syncOrch.Status(ctx, name)
			if err == nil && status != nil && status.EntitiesProcessed > lastCount {
				cmd.Printf("\rProcessing... %d entities (%d errors)", status.EntitiesProcessed, status.ErrorCount)
				lastCount = status.EntitiesProcessed
			}
		}
	}
}

// renderReports formats run reports as a table.
func renderReports(reports []*driving.SyncReport) string {
	headers := []string{"Source", "Mode", "Fetched", "Processed", "Created", "Touched", "Deleted", "Media errors", "Took"}
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		if r == nil {
			continue
		}
		mode := "full"
		if r.Incremental {
			mode = "incremental"
		}
		rows = append(rows, []string{
			r.Source,
			mode,
			strconv.Itoa(r.Fetched),
			strconv.Itoa(r.Processed),
			strconv.Itoa(r.NodesCreated),
			strconv.Itoa(r.NodesTouched),
			formatDeleted(r),
			strconv.Itoa(r.MediaFailures),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
		})
	}
	return renderTable(headers, rows)
}

// formatDeleted renders the total with a per-type breakdown.
func formatDeleted(r *driving.SyncReport) string {
	total := r.TotalDeleted()
	if total == 0 {
		return "0"
	}
	types := make([]string, 0, len(r.NodesDeleted))
	for t, n := range r.NodesDeleted {
		if n > 0 {
			types = append(types, fmt.Sprintf("%s=%d", t, n))
		}
	}
	sort.Strings(types)
	return fmt.Sprintf("%d (%s)", total, strings.Join(types, ", "))
}
