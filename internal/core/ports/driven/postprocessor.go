package driven

import (
	"context"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

// PostProcessor mutates a normalised batch before it reaches the NodeStore.
// PostProcessors are chained in a pipeline (e.g. media linking).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process mutates the batch in place. Returning an error aborts the run.
	Process(ctx context.Context, sc *SyncContext, batch *domain.NodeBatch) error
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the batch through all processors in order.
	Process(ctx context.Context, sc *SyncContext, batch *domain.NodeBatch) error
}
