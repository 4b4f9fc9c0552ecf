package driving

import (
	"context"
	"time"
)

// SyncOrchestrator coordinates content synchronisation from Strapi sources.
type SyncOrchestrator interface {
	// Sync runs one full reconciliation of a source.
	Sync(ctx context.Context, source string) (*SyncReport, error)

	// SyncAll runs Sync for every configured source. A failing source does
	// not stop the others; all errors are joined.
	SyncAll(ctx context.Context) ([]*SyncReport, error)

	// Status returns sync status for a source.
	Status(ctx context.Context, source string) (*SyncStatus, error)
}

// SyncStatus represents the current state of a sync operation.
type SyncStatus struct {
	// Source identifies the source.
	Source string

	// Running indicates if sync is currently in progress.
	Running bool

	// EntitiesProcessed is the count of entities normalised so far.
	EntitiesProcessed int

	// ErrorCount is the number of soft failures encountered.
	ErrorCount int
}

// SyncReport summarises a completed sync run.
type SyncReport struct {
	// Source is the synced source name.
	Source string

	// Endpoints is the number of endpoints fetched.
	Endpoints int

	// Fetched is the number of entities returned by the full fetch.
	Fetched int

	// Incremental reports whether nodes were built from a delta fetch.
	Incremental bool

	// Processed is the number of entities normalised.
	Processed int

	// NodesCreated is the number of nodes written.
	NodesCreated int

	// NodesTouched is the number of existing nodes touched at start.
	NodesTouched int

	// NodesDeleted maps node type to the number of entries pruned.
	NodesDeleted map[string]int

	// ChildrenPruned counts owned children dropped because their entry no
	// longer produces them.
	ChildrenPruned int

	// StubsPruned counts relation stubs that nothing links to any more.
	StubsPruned int

	// MediaFailures is the number of assets that could not be downloaded.
	MediaFailures int

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time
}

// TotalDeleted returns the number of pruned entries across types.
func (r *SyncReport) TotalDeleted() int {
	total := 0
	for _, n := range r.NodesDeleted {
		total += n
	}
	return total
}
