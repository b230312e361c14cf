package suppress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emrgen/relstage/internal/clock"
	"github.com/emrgen/relstage/internal/metrics"
	"github.com/emrgen/relstage/internal/model"
	"github.com/emrgen/relstage/internal/store"
	"github.com/sirupsen/logrus"
)

// DefaultWindow is how long after a task is logged it may still be an echo.
const DefaultWindow = 10 * time.Second

// Suppressor discards freshly logged document tasks for owners whose
// bindings were removed in the same operation.
type Suppressor struct {
	store  store.Store
	clock  clock.Clock
	Window time.Duration
}

func NewSuppressor(s store.Store, c clock.Clock) *Suppressor {
	if c == nil {
		c = clock.Real()
	}
	return &Suppressor{store: s, clock: c, Window: DefaultWindow}
}

// ShouldDiscard reports whether task is an echo: the node owning its
// document was marked in the scope of ctx and the task is younger than the
// window.
func (s *Suppressor) ShouldDiscard(ctx context.Context, task *model.StagingTask) (bool, error) {
	if task.DocumentID <= 0 {
		return false, ErrNoDocument
	}

	scope, ok := FromContext(ctx)
	if !ok {
		return false, nil
	}

	node, err := s.store.GetNodeByDocumentID(ctx, task.DocumentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("node of document %d: %w", task.DocumentID, err)
	}

	if _, marked := scope.DeletedAt(node.ID); !marked {
		return false, nil
	}

	return s.clock.Now().Sub(task.Time) < s.Window, nil
}

// HandleLogged deletes task when it is an echo. Failures are logged and the
// task is kept.
func (s *Suppressor) HandleLogged(ctx context.Context, task *model.StagingTask) {
	if task == nil || task.DocumentID <= 0 {
		return
	}

	discard, err := s.ShouldDiscard(ctx, task)
	if err != nil {
		logrus.Errorf("suppress: document %d: %v", task.DocumentID, err)
		return
	}
	if !discard {
		return
	}

	if err := s.store.DeleteTask(ctx, task.ID); err != nil {
		logrus.Errorf("suppress: delete task %d of document %d: %v", task.ID, task.DocumentID, err)
		return
	}

	metrics.TasksSuppressed.Inc()
	logrus.Infof("suppress: discarded task %d of document %d", task.ID, task.DocumentID)
}
