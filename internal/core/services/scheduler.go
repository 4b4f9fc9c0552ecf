package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
	"github.com/custodia-labs/strapisync/internal/core/ports/driving"
	"github.com/custodia-labs/strapisync/internal/logger"
)

// historyRetention is how many run results are kept per task.
const historyRetention = 100

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// Scheduler re-runs content syncs on an interval and on demand.
// Runs never overlap; triggers arriving during a run are coalesced
// into one follow-up run.
type Scheduler struct {
	config   domain.SchedulerConfig
	syncOrch driving.SyncOrchestrator
	tasks    driven.TaskStore
	onResult func(domain.TaskResult, []*driving.SyncReport)

	tick    time.Duration
	trigger chan struct{}

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	task    domain.ScheduledTask
}

// NewScheduler creates a scheduler with configuration.
// tasks may be nil, in which case state lives only in memory.
// onResult, if non-nil, is called after every run.
func NewScheduler(
	config domain.SchedulerConfig,
	syncOrch driving.SyncOrchestrator,
	tasks driven.TaskStore,
	onResult func(domain.TaskResult, []*driving.SyncReport),
) *Scheduler {
	return &Scheduler{
		config:   config,
		syncOrch: syncOrch,
		tasks:    tasks,
		onResult: onResult,
		tick:     time.Second,
		trigger:  make(chan struct{}, 1),
		task: domain.ScheduledTask{
			ID:       domain.TaskIDContentSync,
			Interval: config.Interval,
		},
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or the context is cancelled. A first sync runs immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.restoreTask(ctx)

	s.runTask(ctx, "startup")

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-s.trigger:
			s.runTask(ctx, "trigger")
		case <-ticker.C:
			s.mu.Lock()
			due := s.task.Due(time.Now())
			s.mu.Unlock()
			if due {
				s.runTask(ctx, "interval")
			}
		}
	}
}

// Stop ends the loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()

	return nil
}

// Trigger requests a sync as soon as the current one finishes.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Task returns a copy of the task state.
func (s *Scheduler) Task() domain.ScheduledTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task
}

// runTask executes one sync synchronously.
func (s *Scheduler) runTask(ctx context.Context, trigger string) {
	s.wg.Add(1)
	defer s.wg.Done()

	result := domain.TaskResult{
		TaskID:    s.task.ID,
		Trigger:   trigger,
		StartedAt: time.Now(),
	}

	reports, err := s.runContentSync(ctx)
	for _, r := range reports {
		result.ItemsProcessed += r.Processed
	}

	result.EndedAt = time.Now()
	s.mu.Lock()
	if err != nil {
		result.Error = err.Error()
		s.task.LastError = err.Error()
		logger.Warn("scheduler: sync failed: %v", err)
	} else {
		result.Success = true
		s.task.LastError = ""
		s.task.LastSuccess = result.EndedAt
	}
	s.task.LastRun = result.StartedAt
	s.task.NextRun = result.EndedAt.Add(s.task.Interval)
	s.mu.Unlock()

	s.persist(ctx, result)

	if s.onResult != nil {
		s.onResult(result, reports)
	}
}

// restoreTask loads the previous run state so history survives restarts.
// The configured interval always wins over the stored one.
func (s *Scheduler) restoreTask(ctx context.Context) {
	if s.tasks == nil {
		return
	}
	stored, err := s.tasks.GetTask(ctx, s.task.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("scheduler: loading task state: %v", err)
		}
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.task.LastRun = stored.LastRun
	s.task.LastError = stored.LastError
	s.task.LastSuccess = stored.LastSuccess
}

// persist writes task state and the run result. Failures are logged only.
func (s *Scheduler) persist(ctx context.Context, result domain.TaskResult) {
	if s.tasks == nil {
		return
	}
	task := s.Task()
	if err := s.tasks.SaveTask(ctx, &task); err != nil {
		logger.Warn("scheduler: saving task state: %v", err)
	}
	if err := s.tasks.RecordResult(ctx, &result); err != nil {
		logger.Warn("scheduler: recording result: %v", err)
		return
	}
	if err := s.tasks.PruneHistory(ctx, historyRetention); err != nil {
		logger.Warn("scheduler: pruning history: %v", err)
	}
}

// runContentSync syncs the configured sources.
func (s *Scheduler) runContentSync(ctx context.Context) ([]*driving.SyncReport, error) {
	if s.syncOrch == nil {
		return nil, nil
	}
	if len(s.config.Sources) == 0 {
		return s.syncOrch.SyncAll(ctx)
	}

	var (
		reports []*driving.SyncReport
		errs    []error
	)
	for _, name := range s.config.Sources {
		report, err := s.syncOrch.Sync(ctx, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		reports = append(reports, report)
	}
	return reports, errors.Join(errs...)
}
