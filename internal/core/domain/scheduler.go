package domain

import "time"

// TaskIDContentSync identifies the content sync task.
const TaskIDContentSync = "content-sync"

// ScheduledTask is the persisted state of the watch-mode sync loop.
type ScheduledTask struct {
	ID string

	// Interval between periodic runs. Zero means the task only runs when
	// triggered.
	Interval time.Duration

	LastRun     time.Time
	NextRun     time.Time
	LastSuccess time.Time

	// LastError is empty after a successful run.
	LastError string
}

// Due reports whether the task should run at now.
func (t *ScheduledTask) Due(now time.Time) bool {
	if t.Interval <= 0 {
		return false
	}
	return t.NextRun.IsZero() || !t.NextRun.After(now)
}

// TaskResult is one entry of run history.
type TaskResult struct {
	TaskID string

	// Trigger is what started the run: "startup", "interval" or "trigger".
	Trigger string

	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Error     string

	// ItemsProcessed counts entities normalised across all sources.
	ItemsProcessed int
}

// SchedulerConfig configures the watch-mode loop.
type SchedulerConfig struct {
	// Interval between periodic syncs. Zero disables periodic runs.
	Interval time.Duration

	// Sources limits the sync to these source names. Empty means all.
	Sources []string
}
