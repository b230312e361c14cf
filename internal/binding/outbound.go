package binding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/emrgen/relstage/internal/model"
	"github.com/emrgen/relstage/internal/payload"
	"github.com/emrgen/relstage/internal/store"
	"github.com/sirupsen/logrus"
)

// AttachBindings adds the owner's current binding rows, and a translation
// row for every object they reference, to a document task about to be
// logged.
func (r *Reconciler) AttachBindings(ctx context.Context, task *model.StagingTask, data *payload.DataSet) error {
	if task.Type != model.TaskTypeUpdateDocument {
		return nil
	}
	if _, ok := data.Table(r.config.Table); ok {
		return nil
	}

	node, err := r.taskNode(ctx, task)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	ids, err := r.store.ListNodeCategoryIDs(ctx, node.ID)
	if err != nil {
		return fmt.Errorf("bindings of node %d: %w", node.ID, err)
	}

	table, err := payload.NewTable(r.config.Table, r.config.OwnerColumn, r.config.TargetColumn)
	if err != nil {
		return err
	}
	if err := data.AddTranslation(r.config.OwnerObjectType, node.ID, node.GUID); err != nil {
		return err
	}

	for _, id := range ids {
		category, err := r.store.GetCategory(ctx, id)
		if err != nil {
			return fmt.Errorf("category %d: %w", id, err)
		}
		if err := table.AddRow(node.ID, category.ID); err != nil {
			return err
		}
		if err := data.AddTranslation(r.config.TargetObjectType, category.ID, category.GUID); err != nil {
			return err
		}
	}

	return data.Add(table)
}

func (r *Reconciler) taskNode(ctx context.Context, task *model.StagingTask) (*model.Node, error) {
	if task.NodeID > 0 {
		return r.store.GetNode(ctx, task.NodeID)
	}
	return r.store.GetNodeByDocumentID(ctx, task.DocumentID)
}

// RawTitle is the id pair the staging engine puts in a binding task title.
func RawTitle(ownerID, targetID int) string {
	return fmt.Sprintf("%d_%d", ownerID, targetID)
}

// ReadableTitle replaces the id pair in a binding task title with the node
// alias path and category name.
func (r *Reconciler) ReadableTitle(ctx context.Context, task *model.StagingTask, data *payload.DataSet) error {
	if !strings.EqualFold(task.ObjectType, r.config.ObjectType) {
		return nil
	}

	primary, err := data.Primary()
	if err != nil {
		return err
	}
	ownerID, err := primary.Int(0, r.config.OwnerColumn)
	if err != nil {
		return err
	}
	targetID, err := primary.Int(0, r.config.TargetColumn)
	if err != nil {
		return err
	}

	node, err := r.store.GetNode(ctx, ownerID)
	if err != nil {
		logrus.Debugf("binding: title for missing node %d: %v", ownerID, err)
		return nil
	}
	category, err := r.store.GetCategory(ctx, targetID)
	if err != nil {
		logrus.Debugf("binding: title for missing category %d: %v", targetID, err)
		return nil
	}

	name := category.DisplayName
	if name == "" {
		name = category.Name
	}
	readable := fmt.Sprintf("Node %s - Category %s", node.AliasPath, name)
	task.Title = strings.Replace(task.Title, RawTitle(ownerID, targetID), readable, 1)

	return nil
}
