package host

import (
	"context"
	"fmt"

	"github.com/emrgen/relstage/internal/binding"
	"github.com/emrgen/relstage/internal/events"
	"github.com/emrgen/relstage/internal/model"
	"github.com/emrgen/relstage/internal/payload"
	"github.com/emrgen/relstage/internal/staging"
	"github.com/emrgen/relstage/internal/store"
	"github.com/emrgen/relstage/internal/suppress"
	"github.com/google/uuid"
)

// DocumentTable is the primary table of a document task.
const DocumentTable = "CMS_Document"

// Engine is the platform's generic staging engine. It logs document tasks,
// and binding object tasks when bindings are staged on their own, raising
// the staging task events around each one.
type Engine struct {
	store   store.Store
	bus     *events.Bus
	builder *staging.Builder
}

var (
	_ staging.DocumentLogger = (*Engine)(nil)
	_ binding.Forwarder      = (*Engine)(nil)
)

// NewEngine creates an Engine and makes it the builder's document log.
func NewEngine(s store.Store, bus *events.Bus, builder *staging.Builder) *Engine {
	e := &Engine{store: s, bus: bus, builder: builder}
	builder.SetDocumentLogger(e)
	return e
}

// LogBindingObjects logs node-category bindings as objects of their own.
func (e *Engine) LogBindingObjects(reg events.Registry) {
	reg.Subscribe(events.TreeCategory, events.AfterInsert, func(ctx context.Context, ev *events.Event) error {
		return e.logBinding(ctx, ev.Object.(*model.TreeCategory), model.TaskTypeCreateObject)
	})
	reg.Subscribe(events.TreeCategory, events.AfterDelete, func(ctx context.Context, ev *events.Event) error {
		return e.logBinding(ctx, ev.Object.(*model.TreeCategory), model.TaskTypeDeleteObject)
	})
}

func (e *Engine) LogDocumentChange(ctx context.Context, siteName, aliasPath string, taskType model.TaskType) error {
	node, err := e.store.GetNodeByAliasPath(ctx, siteName, aliasPath)
	if err != nil {
		return fmt.Errorf("document %s%s: %w", siteName, aliasPath, err)
	}

	return e.logDocument(ctx, node, taskType)
}

// CheckForward sends a reconciled node on to this server's own targets.
func (e *Engine) CheckForward(ctx context.Context, ownerGUID uuid.UUID) error {
	node, err := e.store.GetNodeByGUID(ctx, ownerGUID)
	if err != nil {
		return fmt.Errorf("node %s: %w", ownerGUID, err)
	}

	return e.logDocument(ctx, node, model.TaskTypeUpdateDocument)
}

func (e *Engine) logDocument(ctx context.Context, node *model.Node, taskType model.TaskType) error {
	table, err := payload.NewTable(DocumentTable, "NodeID", "NodeGUID", "NodeAliasPath", "NodeSiteID", "DocumentID")
	if err != nil {
		return err
	}
	if err := table.AddRow(node.ID, node.GUID.String(), node.AliasPath, node.SiteID, node.DocumentID); err != nil {
		return err
	}
	data, err := payload.NewDataSet(table)
	if err != nil {
		return err
	}

	task := &model.StagingTask{
		Title:      fmt.Sprintf("Update document '%s'", node.AliasPath),
		Type:       taskType,
		ObjectType: model.ObjectTypeDocument,
		ObjectID:   node.DocumentID,
		DocumentID: node.DocumentID,
		NodeID:     node.ID,
	}

	return e.logTask(ctx, task, data, node.SiteID)
}

func (e *Engine) logBinding(ctx context.Context, tc *model.TreeCategory, taskType model.TaskType) error {
	if !staging.LoggingEnabled(ctx) {
		return nil
	}

	node, err := e.store.GetNode(ctx, tc.NodeID)
	if err != nil {
		return fmt.Errorf("node %d: %w", tc.NodeID, err)
	}
	category, err := e.store.GetCategory(ctx, tc.CategoryID)
	if err != nil {
		return fmt.Errorf("category %d: %w", tc.CategoryID, err)
	}

	cfg := binding.NodeCategory
	table, err := payload.NewTable(cfg.Table, cfg.OwnerColumn, cfg.TargetColumn)
	if err != nil {
		return err
	}
	if err := table.AddRow(node.ID, category.ID); err != nil {
		return err
	}
	data, err := payload.NewDataSet(table)
	if err != nil {
		return err
	}
	if err := data.AddTranslation(model.ObjectTypeNode, node.ID, node.GUID); err != nil {
		return err
	}
	if err := data.AddTranslation(model.ObjectTypeCategory, category.ID, category.GUID); err != nil {
		return err
	}

	verb := "Create"
	if taskType == model.TaskTypeDeleteObject {
		verb = "Delete"
	}
	task := &model.StagingTask{
		Title:      fmt.Sprintf("%s Tree category '%s'", verb, binding.RawTitle(node.ID, category.ID)),
		Type:       taskType,
		ObjectType: cfg.ObjectType,
		NodeID:     node.ID,
	}

	return e.logTask(ctx, task, data, node.SiteID)
}

func (e *Engine) logTask(ctx context.Context, task *model.StagingTask, data *payload.DataSet, siteID int) error {
	if !staging.LoggingEnabled(ctx) || !e.builder.StagingEnabled(ctx, siteID) {
		return nil
	}

	e.bus.Publish(ctx, &events.Event{Kind: events.StagingTask, Phase: events.BeforeLogTask, Task: task, Data: data})

	servers, err := e.builder.LogTask(ctx, task, data, siteID)
	if err != nil {
		return err
	}
	if len(servers) == 0 {
		return nil
	}

	e.bus.Publish(ctx, &events.Event{Kind: events.StagingTask, Phase: events.AfterLogTask, Task: task, Data: data})
	return nil
}

// ProcessTask applies an inbound task. The platform applies the object
// itself; the task events let handlers apply what it cannot. Each call is
// one operation with its own suppression scope.
func (e *Engine) ProcessTask(ctx context.Context, task *model.StagingTask) error {
	data, err := staging.Decode(task)
	if err != nil {
		return err
	}

	ctx = suppress.WithScope(ctx)
	if failed := e.bus.Publish(ctx, &events.Event{Kind: events.StagingTask, Phase: events.AfterProcessTask, Task: task, Data: data}); failed > 0 {
		return fmt.Errorf("process task %d: %d handlers failed", task.ID, failed)
	}

	return nil
}
