package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

func TestTaskStore_History(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore()

	_, err := s.GetTask(ctx, domain.TaskIDContentSync)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.SaveTask(ctx, &domain.ScheduledTask{ID: domain.TaskIDContentSync, Interval: time.Minute}))
	task, err := s.GetTask(ctx, domain.TaskIDContentSync)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, task.Interval)

	base := time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, s.RecordResult(ctx, &domain.TaskResult{
			TaskID:         domain.TaskIDContentSync,
			StartedAt:      base.Add(time.Duration(i) * time.Second),
			ItemsProcessed: i,
		}))
	}

	history, err := s.TaskHistory(ctx, domain.TaskIDContentSync, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 3, history[0].ItemsProcessed)

	require.NoError(t, s.PruneHistory(ctx, 1))
	history, err = s.TaskHistory(ctx, domain.TaskIDContentSync, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 3, history[0].ItemsProcessed)
}
