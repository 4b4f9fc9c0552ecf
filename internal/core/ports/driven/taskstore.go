package driven

import (
	"context"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

// TaskStore persists scheduler state and run history.
type TaskStore interface {
	// GetTask retrieves a task by id. Returns domain.ErrNotFound if absent.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	// SaveTask creates or updates a task.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// RecordResult appends a run result to the task history.
	RecordResult(ctx context.Context, result *domain.TaskResult) error

	// TaskHistory returns the most recent results for a task, newest first.
	TaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)

	// PruneHistory keeps only the newest keep results per task.
	PruneHistory(ctx context.Context, keep int) error
}
