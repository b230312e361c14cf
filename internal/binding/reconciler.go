// Package binding keeps set-valued node bindings in step across servers. On
// the receiving side the full inbound set replaces the local one; on the
// sending side binding rows are attached to document tasks.
package binding

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/relstage/internal/clock"
	"github.com/emrgen/relstage/internal/metrics"
	"github.com/emrgen/relstage/internal/model"
	"github.com/emrgen/relstage/internal/payload"
	"github.com/emrgen/relstage/internal/staging"
	"github.com/emrgen/relstage/internal/store"
	"github.com/emrgen/relstage/internal/suppress"
	"github.com/emrgen/relstage/internal/translate"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const eventSource = "RelationshipsExtended"

// Mutator applies binding changes. Writes made through it raise the host's
// object events, so they must run with logging disabled.
type Mutator interface {
	AddNodeToCategory(ctx context.Context, nodeID, categoryID int) error
	RemoveNodeFromCategory(ctx context.Context, nodeID, categoryID int) error
}

// Forwarder decides whether a reconciled owner must be sent on to servers
// other than the origin.
type Forwarder interface {
	CheckForward(ctx context.Context, ownerGUID uuid.UUID) error
}

// Result lists the changes a reconciliation applied.
type Result struct {
	Owner   *model.Node
	Added   []int
	Removed []int
}

// Changed reports whether the reconciliation touched any binding.
func (r *Result) Changed() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

// Reconciler applies inbound binding sets and prepares outbound ones.
type Reconciler struct {
	config     Config
	store      store.Store
	mutator    Mutator
	translator translate.Translator
	forwarder  Forwarder
	clock      clock.Clock
}

// NewReconciler creates a Reconciler. A nil mutator writes straight to the
// store; a nil forwarder never forwards.
func NewReconciler(config Config, s store.Store, m Mutator, t translate.Translator, f Forwarder, c clock.Clock) *Reconciler {
	if m == nil {
		m = s
	}
	if c == nil {
		c = clock.Real()
	}

	return &Reconciler{
		config:     config,
		store:      s,
		mutator:    m,
		translator: t,
		forwarder:  f,
		clock:      c,
	}
}

// SetForwarder wires the forwarding check.
func (r *Reconciler) SetForwarder(f Forwarder) {
	r.forwarder = f
}

// Reconcile makes the owner's local bindings equal to the set carried by an
// inbound document task. A task without binding rows clears the owner's
// bindings.
func (r *Reconciler) Reconcile(ctx context.Context, task *model.StagingTask, data *payload.DataSet) (*Result, error) {
	primary, err := data.Primary()
	if err != nil || !primary.HasColumn(r.config.OwnerGUIDColumn) {
		r.logEvent(ctx, "No Node Table Found", fmt.Sprintf("First table of task %d does not contain %s, could not process.", task.ID, r.config.OwnerGUIDColumn))
		metrics.ReconcileErrors.Inc()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingOwnerColumn, err)
		}
		return nil, ErrMissingOwnerColumn
	}

	owner, err := r.owner(ctx, primary)
	if err != nil {
		metrics.ReconcileErrors.Inc()
		return nil, err
	}

	incoming, err := r.incoming(ctx, data)
	if err != nil {
		metrics.ReconcileErrors.Inc()
		return nil, err
	}

	current, err := r.store.ListNodeCategoryIDs(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("bindings of node %d: %w", owner.ID, err)
	}
	local := mapset.NewThreadUnsafeSet(current...)

	result := &Result{
		Owner:   owner,
		Removed: sorted(local.Difference(incoming)),
		Added:   sorted(incoming.Difference(local)),
	}

	if len(result.Removed) > 0 {
		suppress.MarkDeleted(ctx, owner.ID, r.clock.Now())
	}

	quiet := staging.WithoutLogging(ctx)
	for _, id := range result.Removed {
		if err := r.mutator.RemoveNodeFromCategory(quiet, owner.ID, id); err != nil {
			return result, fmt.Errorf("remove node %d from category %d: %w", owner.ID, id, err)
		}
		metrics.BindingChanges.WithLabelValues("remove").Inc()
	}
	for _, id := range result.Added {
		if err := r.mutator.AddNodeToCategory(quiet, owner.ID, id); err != nil {
			return result, fmt.Errorf("add node %d to category %d: %w", owner.ID, id, err)
		}
		metrics.BindingChanges.WithLabelValues("add").Inc()
	}

	logrus.WithFields(logrus.Fields{"node": owner.ID, "task": task.ID}).
		Infof("reconciled bindings: %d added, %d removed", len(result.Added), len(result.Removed))

	if result.Changed() && r.forwarder != nil && staging.SiteStagingEnabled(ctx, r.store, owner.SiteID) {
		if err := r.forwarder.CheckForward(ctx, owner.GUID); err != nil {
			logrus.Errorf("binding: forward node %s: %v", owner.GUID, err)
		}
	}

	return result, nil
}

func (r *Reconciler) owner(ctx context.Context, primary *payload.Table) (*model.Node, error) {
	guid, err := primary.GUID(0, r.config.OwnerGUIDColumn)
	if err != nil {
		r.logEvent(ctx, "Invalid Node GUID", err.Error())
		return nil, fmt.Errorf("%w: %v", ErrOwnerNotFound, err)
	}

	owner, err := r.store.GetNodeByGUID(ctx, guid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			r.logEvent(ctx, "Node Not Found", fmt.Sprintf("No local node with GUID %s.", guid))
			return nil, fmt.Errorf("%w: %s", ErrOwnerNotFound, guid)
		}
		return nil, fmt.Errorf("node %s: %w", guid, err)
	}

	return owner, nil
}

func (r *Reconciler) incoming(ctx context.Context, data *payload.DataSet) (mapset.Set[int], error) {
	ids := mapset.NewThreadUnsafeSet[int]()

	table, ok := data.Table(r.config.Table)
	if !ok {
		return ids, nil
	}

	for row := 0; row < table.Len(); row++ {
		origin, err := table.Int(row, r.config.TargetColumn)
		if err != nil {
			r.logEvent(ctx, "Malformed Binding Row", err.Error())
			return nil, err
		}

		id, err := r.translator.TranslateID(ctx, origin, data, r.config.TargetObjectType)
		if err != nil {
			return nil, fmt.Errorf("translate %s %d: %w", r.config.TargetObjectType, origin, err)
		}
		if id <= 0 {
			logrus.Warnf("binding: %s %d has no local copy, skipped", r.config.TargetObjectType, origin)
			continue
		}
		ids.Add(id)
	}

	return ids, nil
}

// ApplyDelete removes the single binding an inbound delete task names.
func (r *Reconciler) ApplyDelete(ctx context.Context, task *model.StagingTask, data *payload.DataSet) error {
	if task.Type != model.TaskTypeDeleteObject || !strings.EqualFold(task.ObjectType, r.config.ObjectType) {
		return nil
	}

	primary, err := data.Primary()
	if err != nil {
		return err
	}

	ownerOrigin, err := primary.Int(0, r.config.OwnerColumn)
	if err != nil {
		return err
	}
	targetOrigin, err := primary.Int(0, r.config.TargetColumn)
	if err != nil {
		return err
	}

	ownerID, err := r.translator.TranslateID(ctx, ownerOrigin, data, r.config.OwnerObjectType)
	if err != nil {
		return err
	}
	targetID, err := r.translator.TranslateID(ctx, targetOrigin, data, r.config.TargetObjectType)
	if err != nil {
		return err
	}
	if ownerID <= 0 || targetID <= 0 {
		return nil
	}

	suppress.MarkDeleted(ctx, ownerID, r.clock.Now())
	if err := r.mutator.RemoveNodeFromCategory(staging.WithoutLogging(ctx), ownerID, targetID); err != nil {
		return fmt.Errorf("remove node %d from category %d: %w", ownerID, targetID, err)
	}
	metrics.BindingChanges.WithLabelValues("remove").Inc()

	return nil
}

func (r *Reconciler) logEvent(ctx context.Context, code, description string) {
	err := r.store.LogEvent(ctx, &model.EventLogEntry{
		Type:        model.EventTypeError,
		Source:      eventSource,
		Code:        code,
		Description: description,
		Time:        r.clock.Now(),
	})
	if err != nil {
		logrus.Errorf("binding: event log: %v", err)
	}
}

func sorted(s mapset.Set[int]) []int {
	ids := s.ToSlice()
	slices.Sort(ids)
	return ids
}
