package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"

	"github.com/emrgen/relstage/internal/config"
	"github.com/emrgen/relstage/internal/jobs"
	"github.com/emrgen/relstage/internal/metrics"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// RunJobs runs the housekeeping jobs, and the metrics endpoint when one is
// configured, until the process is interrupted.
func (a *App) RunJobs(cfg *config.Config) error {
	cleaner := jobs.NewTaskCleaner(a.Store, a.Builder.Clock(), cfg.Jobs.CleanerSchedule, cfg.Jobs.TaskRetention)
	executor := jobs.NewTaskExecutor(cleaner)
	if err := executor.Run(); err != nil {
		return err
	}

	// make sure to wait for the metrics server to stop before exiting
	var wg sync.WaitGroup
	var metricsServer *http.Server
	if cfg.Metrics.Addr != "" {
		metricsServer = metrics.NewServer(cfg.Metrics.Addr)
		wg.Add(1)
		go func() {
			defer wg.Done()
			logrus.Info("serving metrics on: ", cfg.Metrics.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("error serving metrics: %v", err)
			}
			logrus.Infof("metrics server stopped")
		}()
	}

	logrus.Infof("Press Ctrl+C to stop the jobs")

	// listen for interrupt signal to gracefully shut down
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGTERM, unix.SIGINT, unix.SIGTSTP)
	<-sigs
	// clean Ctrl+C output
	fmt.Println()

	executor.Stop()
	if metricsServer != nil {
		if err := metricsServer.Shutdown(context.Background()); err != nil {
			logrus.Errorf("error stopping metrics server: %v", err)
		}
	}

	wg.Wait()
	return nil
}
