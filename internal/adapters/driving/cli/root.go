// Package cli provides the cobra command tree for strapisync.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
	"github.com/custodia-labs/strapisync/internal/core/ports/driving"
	"github.com/custodia-labs/strapisync/internal/logger"
)

// App holds the services commands run against.
type App struct {
	// Config is the loaded configuration.
	Config driven.ConfigStore

	// Sync runs reconciliations.
	Sync driving.SyncOrchestrator

	// Graph queries the synced graph.
	Graph driving.GraphService

	// Sources lists and authenticates sources.
	Sources driving.SourceService

	// Tasks persists watch-mode run history. May be nil.
	Tasks driven.TaskStore

	// Close releases the stores. May be nil.
	Close func() error
}

// Options select how the App is built.
type Options struct {
	// ConfigPath overrides the default configuration file.
	ConfigPath string

	// DryRun builds the App over in-memory overlays so nothing is persisted.
	DryRun bool
}

// Bootstrap builds an App.
type Bootstrap func(opts Options) (*App, error)

var (
	version = "dev"

	configPath string
	verbose    bool

	bootstrap Bootstrap
)

var rootCmd = &cobra.Command{
	Use:   "strapisync",
	Short: "Sync Strapi content into a local graph",
	Long: `strapisync pulls content types, single types, components, relations and
media from a Strapi instance, normalises them into a flat graph of typed
nodes, and prunes nodes whose entries were deleted upstream.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.SetOutput(cmd.ErrOrStderr())
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configPath, "config", "c", "", "config file (default ~/.strapisync/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute(ctx context.Context, ver string, b Bootstrap) error {
	if ver != "" {
		version = ver
	}
	bootstrap = b
	return rootCmd.ExecuteContext(ctx)
}

// openApp builds the App for a command invocation. The caller closes it.
func openApp(dryRun bool) (*App, error) {
	if bootstrap == nil {
		return nil, errors.New("application not configured")
	}
	return bootstrap(Options{ConfigPath: configPath, DryRun: dryRun})
}

func closeApp(a *App) {
	if a == nil || a.Close == nil {
		return
	}
	if err := a.Close(); err != nil {
		logger.Warn("closing stores: %v", err)
	}
}
