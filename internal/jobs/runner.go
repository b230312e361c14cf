package jobs

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	cron "github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

type Job interface {
	Name() string
	Run()
}

type CronJob interface {
	Schedule() string
	Job
}

// TaskExecutor runs housekeeping jobs on the cron. A job whose previous run
// has not finished is skipped.
type TaskExecutor struct {
	cron    *cron.Cron
	jobs    []CronJob
	running mapset.Set[string]
	mu      sync.Mutex
}

func NewTaskExecutor(jobs ...CronJob) *TaskExecutor {
	return &TaskExecutor{
		cron:    cron.New(),
		jobs:    jobs,
		running: mapset.NewThreadUnsafeSet[string](),
	}
}

// Run schedules every job and starts the cron in its own goroutine.
func (t *TaskExecutor) Run() error {
	for _, job := range t.jobs {
		job := job
		err := t.cron.AddFunc(job.Schedule(), func() {
			t.runOnce(job)
		})
		if err != nil {
			logrus.Errorf("failed to schedule job %s: %v", job.Name(), err)
			return err
		}
		logrus.Infof("scheduled job %s: %s", job.Name(), job.Schedule())
	}

	t.cron.Start()
	return nil
}

func (t *TaskExecutor) runOnce(job Job) {
	t.mu.Lock()
	if t.running.Contains(job.Name()) {
		t.mu.Unlock()
		logrus.Warnf("job %s is already running", job.Name())
		return
	}
	t.running.Add(job.Name())
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.running.Remove(job.Name())
	}()

	job.Run()
}

func (t *TaskExecutor) Stop() {
	logrus.Infof("stopping all jobs")
	t.cron.Stop()
}
