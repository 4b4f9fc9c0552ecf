package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driving"
	"github.com/custodia-labs/strapisync/internal/core/services"
	"github.com/custodia-labs/strapisync/internal/logger"
)

// configDebounce collapses the burst of events an editor save produces.
const configDebounce = 500 * time.Millisecond

// runWatch syncs once, then again on every config change and interval
// tick until interrupted.
func runWatch(cmd *cobra.Command, app *App, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	scheduler := services.NewScheduler(
		domain.SchedulerConfig{Interval: syncInterval, Sources: args},
		app.Sync,
		app.Tasks,
		func(result domain.TaskResult, reports []*driving.SyncReport) {
			if len(reports) > 0 {
				fmt.Fprintln(out, renderReports(reports))
			}
			if result.Success {
				fmt.Fprintln(out, successStyle.Render(
					fmt.Sprintf("[%s] sync complete (%s)", result.EndedAt.Format(time.TimeOnly), result.Trigger)))
			} else {
				fmt.Fprintln(out, errorStyle.Render(
					fmt.Sprintf("[%s] sync failed: %s", result.EndedAt.Format(time.TimeOnly), result.Error)))
			}
		},
	)

	path := app.Config.Path()
	if path != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("creating watcher: %w", err)
		}
		defer watcher.Close()

		// Editors replace files on save; watch the directory instead.
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		go watchFile(ctx, watcher, path, configDebounce, func() {
			if err := app.Config.Reload(); err != nil {
				logger.Warn("config reload failed, keeping previous config: %v", err)
				return
			}
			logger.Info("config changed, re-syncing")
			scheduler.Trigger()
		})
		cmd.Println(titleStyle.Render("Watching " + path + " (Ctrl+C to stop)"))
	}

	err := scheduler.Start(ctx)
	_ = scheduler.Stop()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watchFile calls onChange once per burst of write/create/rename events on
// path, after delay has passed without another event.
func watchFile(ctx context.Context, watcher *fsnotify.Watcher, path string, delay time.Duration, onChange func()) {
	target := filepath.Clean(path)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watch %s: %v", path, err)
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(delay, onChange)
			} else {
				timer.Reset(delay)
			}
		}
	}
}
