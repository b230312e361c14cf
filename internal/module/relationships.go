// Package module hooks relationship and binding staging into the platform's
// object and staging task events.
package module

import (
	"context"
	"errors"
	"fmt"

	"github.com/emrgen/relstage/internal/binding"
	"github.com/emrgen/relstage/internal/classify"
	"github.com/emrgen/relstage/internal/events"
	"github.com/emrgen/relstage/internal/model"
	"github.com/emrgen/relstage/internal/staging"
	"github.com/emrgen/relstage/internal/store"
	"github.com/emrgen/relstage/internal/suppress"
	"github.com/sirupsen/logrus"
)

const foreignKeyHint = "Make sure the tree category foreign keys can be created. IGNORE if the module was just installed, this runs before its tables exist on the first start after installation."

// Module wires the staging handlers for one binding mode.
type Module struct {
	mode       Mode
	store      store.Store
	builder    *staging.Builder
	reconciler *binding.Reconciler
	suppressor *suppress.Suppressor
}

func New(mode Mode, s store.Store, builder *staging.Builder, reconciler *binding.Reconciler, suppressor *suppress.Suppressor) *Module {
	return &Module{
		mode:       mode,
		store:      s,
		builder:    builder,
		reconciler: reconciler,
		suppressor: suppressor,
	}
}

func (m *Module) Mode() Mode {
	return m.mode
}

// Init subscribes the module's handlers. The mode is fixed from here on.
func (m *Module) Init(reg events.Registry) {
	reg.Subscribe(events.RelationshipName, events.AfterInsert, m.relationshipName(model.TaskTypeCreateObject))
	reg.Subscribe(events.RelationshipName, events.AfterUpdate, m.relationshipName(model.TaskTypeUpdateObject))
	reg.Subscribe(events.RelationshipName, events.AfterDelete, m.relationshipName(model.TaskTypeDeleteObject))
	reg.Subscribe(events.RelationshipNameSite, events.AfterInsert, m.relationshipNameSite(model.TaskTypeAddToSite))
	reg.Subscribe(events.RelationshipNameSite, events.AfterDelete, m.relationshipNameSite(model.TaskTypeRemoveFromSite))

	// relationship changes are document edits on the left node
	reg.Subscribe(events.Relationship, events.AfterInsert, m.relationship)
	reg.Subscribe(events.Relationship, events.AfterDelete, m.relationship)

	if m.mode == ModeWithDocument {
		reg.Subscribe(events.TreeCategory, events.AfterInsert, m.treeCategory)
		reg.Subscribe(events.TreeCategory, events.AfterDelete, m.treeCategory)
		reg.Subscribe(events.StagingTask, events.BeforeLogTask, func(ctx context.Context, e *events.Event) error {
			return m.reconciler.AttachBindings(ctx, e.Task, e.Data)
		})
		reg.Subscribe(events.StagingTask, events.AfterProcessTask, m.processDocument)
	} else {
		reg.Subscribe(events.StagingTask, events.BeforeLogTask, func(ctx context.Context, e *events.Event) error {
			return m.reconciler.ReadableTitle(ctx, e.Task, e.Data)
		})
		reg.Subscribe(events.StagingTask, events.AfterProcessTask, func(ctx context.Context, e *events.Event) error {
			return m.reconciler.ApplyDelete(ctx, e.Task, e.Data)
		})
	}

	reg.Subscribe(events.StagingTask, events.AfterLogTask, func(ctx context.Context, e *events.Event) error {
		m.suppressor.HandleLogged(ctx, e.Task)
		return nil
	})

	logrus.Infof("relationship staging initialized, node categories: %s", m.mode)
}

// EnsureForeignKeys creates the binding foreign keys. A failure is logged
// and otherwise ignored.
func (m *Module) EnsureForeignKeys(ctx context.Context) {
	if err := m.store.EnsureForeignKeys(ctx); err != nil {
		logrus.Errorf("relationship staging: setting foreign keys: %v. %s", err, foreignKeyHint)
		m.logEvent(ctx, "ErrorSettingForeignKeys", err.Error()+". "+foreignKeyHint)
	}
}

// currentSiteStaged reports whether the acting site logs staging tasks.
func (m *Module) currentSiteStaged(ctx context.Context) bool {
	if !staging.LoggingEnabled(ctx) {
		return false
	}
	actor, ok := staging.ActorFromContext(ctx)
	if !ok {
		return false
	}
	return m.builder.StagingEnabled(ctx, actor.SiteID)
}

func (m *Module) relationshipName(taskType model.TaskType) events.Handler {
	return func(ctx context.Context, e *events.Event) error {
		name, ok := e.Object.(*model.RelationshipName)
		if !ok {
			return fmt.Errorf("%w: %T", ErrUnexpectedObject, e.Object)
		}
		if !m.currentSiteStaged(ctx) {
			return nil
		}

		_, err := m.builder.RelationshipNameTask(ctx, name, taskType)
		return err
	}
}

func (m *Module) relationshipNameSite(taskType model.TaskType) events.Handler {
	return func(ctx context.Context, e *events.Event) error {
		assoc, ok := e.Object.(*model.RelationshipNameSite)
		if !ok {
			return fmt.Errorf("%w: %T", ErrUnexpectedObject, e.Object)
		}
		if !m.currentSiteStaged(ctx) {
			return nil
		}

		_, err := m.builder.RelationshipNameSiteTask(ctx, assoc, taskType)
		return err
	}
}

func (m *Module) relationship(ctx context.Context, e *events.Event) error {
	rel, ok := e.Object.(*model.Relationship)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnexpectedObject, e.Object)
	}
	if !staging.LoggingEnabled(ctx) {
		return nil
	}

	name, err := m.store.GetRelationshipName(ctx, rel.RelationshipNameID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if !classify.IsCustomAdHoc(name) {
		return nil
	}

	return m.touchNode(ctx, rel.LeftNodeID)
}

func (m *Module) treeCategory(ctx context.Context, e *events.Event) error {
	tc, ok := e.Object.(*model.TreeCategory)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnexpectedObject, e.Object)
	}
	if !staging.LoggingEnabled(ctx) {
		return nil
	}

	return m.touchNode(ctx, tc.NodeID)
}

func (m *Module) touchNode(ctx context.Context, nodeID int) error {
	node, err := m.store.GetNode(ctx, nodeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	return m.builder.TouchDocument(ctx, node)
}

func (m *Module) processDocument(ctx context.Context, e *events.Event) error {
	if e.Task.Type != model.TaskTypeUpdateDocument {
		return nil
	}

	_, err := m.reconciler.Reconcile(ctx, e.Task, e.Data)
	return err
}

func (m *Module) logEvent(ctx context.Context, code, description string) {
	err := m.store.LogEvent(ctx, &model.EventLogEntry{
		Type:        model.EventTypeError,
		Source:      "RelationshipsExtended",
		Code:        code,
		Description: description,
		Time:        m.builder.Clock().Now(),
	})
	if err != nil {
		logrus.Errorf("relationship staging: event log: %v", err)
	}
}
