package jobs

import (
	"context"
	"time"

	"github.com/emrgen/relstage/internal/clock"
	"github.com/emrgen/relstage/internal/metrics"
	"github.com/emrgen/relstage/internal/store"
	"github.com/sirupsen/logrus"
)

// TaskCleaner deletes staging tasks older than the retention that no server
// still waits for.
type TaskCleaner struct {
	store     store.Store
	clock     clock.Clock
	schedule  string
	retention time.Duration
}

func NewTaskCleaner(s store.Store, c clock.Clock, schedule string, retention time.Duration) *TaskCleaner {
	if c == nil {
		c = clock.Real()
	}
	return &TaskCleaner{
		store:     s,
		clock:     c,
		schedule:  schedule,
		retention: retention,
	}
}

func (c *TaskCleaner) Name() string {
	return "task_cleaner"
}

func (c *TaskCleaner) Schedule() string {
	return c.schedule
}

func (c *TaskCleaner) Run() {
	if _, err := c.Clean(context.Background()); err != nil {
		logrus.Errorf("task cleaner: %v", err)
	}
}

// Clean deletes the expired tasks and returns how many were removed.
func (c *TaskCleaner) Clean(ctx context.Context) (int, error) {
	before := c.clock.Now().Add(-c.retention)
	tasks, err := c.store.ListTasksWithoutSynchronizations(ctx, before)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, task := range tasks {
		if err := c.store.DeleteTask(ctx, task.ID); err != nil {
			logrus.Errorf("task cleaner: delete task %d: %v", task.ID, err)
			continue
		}
		removed++
	}

	metrics.TasksCleaned.Add(float64(removed))
	if removed > 0 {
		logrus.Infof("task cleaner: removed %d tasks logged before %s", removed, before.Format(time.RFC3339))
	}
	return removed, nil
}
