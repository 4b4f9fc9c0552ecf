package driving

import "context"

// Scheduler re-runs syncs in the background.
type Scheduler interface {
	// Start begins running scheduled syncs.
	// Blocks until context is cancelled or an error occurs.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error
}
