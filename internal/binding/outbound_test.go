package binding_test

import (
	"context"
	"testing"

	"github.com/emrgen/relstage/internal/binding"
	"github.com/emrgen/relstage/internal/model"
	"github.com/emrgen/relstage/internal/payload"
	"github.com/emrgen/relstage/internal/suppress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func documentPayload(t *testing.T, node *model.Node) *payload.DataSet {
	t.Helper()
	document, err := payload.NewTable("CONTENT_Article", "NodeID", "NodeGUID", "DocumentID")
	require.NoError(t, err)
	require.NoError(t, document.AddRow(node.ID, node.GUID.String(), node.DocumentID))
	data, err := payload.NewDataSet(document)
	require.NoError(t, err)
	return data
}

func TestReconciler_AttachBindings(t *testing.T) {
	e := newEnv(t)
	e.bind(t, 1, 3)
	node := e.fixture.Node
	task := &model.StagingTask{Type: model.TaskTypeUpdateDocument, DocumentID: node.DocumentID}
	data := documentPayload(t, node)

	require.NoError(t, e.reconciler.AttachBindings(context.Background(), task, data))

	bindings, ok := data.Table("CMS_TreeCategory")
	require.True(t, ok)
	require.Equal(t, 2, bindings.Len())
	for row, i := range []int{1, 3} {
		owner, err := bindings.Int(row, "NodeID")
		require.NoError(t, err)
		assert.Equal(t, node.ID, owner)
		target, err := bindings.Int(row, "CategoryID")
		require.NoError(t, err)
		assert.Equal(t, e.categories[i].ID, target)

		guid, ok := data.TranslationGUID(model.ObjectTypeCategory, target)
		require.True(t, ok)
		assert.Equal(t, e.categories[i].GUID, guid)
	}

	guid, ok := data.TranslationGUID(model.ObjectTypeNode, node.ID)
	require.True(t, ok)
	assert.Equal(t, node.GUID, guid)

	// attaching twice keeps one binding table
	require.NoError(t, e.reconciler.AttachBindings(context.Background(), task, data))
	assert.Len(t, data.Tables, 3)
}

func TestReconciler_AttachBindings_RoundTrip(t *testing.T) {
	sender := newEnv(t)
	sender.bind(t, 0, 2)
	node := sender.fixture.Node
	task := &model.StagingTask{Type: model.TaskTypeUpdateDocument, DocumentID: node.DocumentID}
	data := documentPayload(t, node)
	require.NoError(t, sender.reconciler.AttachBindings(context.Background(), task, data))

	raw, err := payload.Encode(data)
	require.NoError(t, err)
	decoded, err := payload.Decode(raw)
	require.NoError(t, err)

	// the same store plays the receiver after its bindings drift
	require.NoError(t, sender.store.RemoveNodeFromCategory(context.Background(), node.ID, sender.categories[0].ID))
	sender.bind(t, 1)

	result, err := sender.reconciler.Reconcile(context.Background(), task, decoded)
	require.NoError(t, err)
	assert.Equal(t, sender.ids(0), result.Added)
	assert.Equal(t, sender.ids(1), result.Removed)
}

func TestReconciler_AttachBindings_IgnoresOtherTasks(t *testing.T) {
	e := newEnv(t)
	data := documentPayload(t, e.fixture.Node)

	err := e.reconciler.AttachBindings(context.Background(), &model.StagingTask{Type: model.TaskTypeCreateObject}, data)
	require.NoError(t, err)
	assert.Len(t, data.Tables, 1)
}

func bindingPayload(t *testing.T, nodeID, categoryID int) *payload.DataSet {
	t.Helper()
	table, err := payload.NewTable("CMS_TreeCategory", "NodeID", "CategoryID")
	require.NoError(t, err)
	require.NoError(t, table.AddRow(nodeID, categoryID))
	data, err := payload.NewDataSet(table)
	require.NoError(t, err)
	return data
}

func TestReconciler_ReadableTitle(t *testing.T) {
	e := newEnv(t)
	node, category := e.fixture.Node, e.categories[1]
	task := &model.StagingTask{
		Title:      "Create Tree category '" + binding.RawTitle(node.ID, category.ID) + "'",
		Type:       model.TaskTypeCreateObject,
		ObjectType: model.ObjectTypeTreeCategory,
	}

	require.NoError(t, e.reconciler.ReadableTitle(context.Background(), task, bindingPayload(t, node.ID, category.ID)))
	assert.Equal(t, "Create Tree category 'Node /news/launch - Category Category two'", task.Title)

	other := &model.StagingTask{Title: "Create Relationship name 'x'", ObjectType: model.ObjectTypeRelationshipName}
	require.NoError(t, e.reconciler.ReadableTitle(context.Background(), other, bindingPayload(t, node.ID, category.ID)))
	assert.Equal(t, "Create Relationship name 'x'", other.Title)
}

func TestReconciler_ApplyDelete(t *testing.T) {
	e := newEnv(t)
	e.bind(t, 0, 1)
	node := e.fixture.Node

	data := bindingPayload(t, 900, 101)
	require.NoError(t, data.AddTranslation(model.ObjectTypeNode, 900, node.GUID))
	require.NoError(t, data.AddTranslation(model.ObjectTypeCategory, 101, e.categories[1].GUID))
	task := &model.StagingTask{Type: model.TaskTypeDeleteObject, ObjectType: "CMS.TreeCategory"}

	ctx := suppress.WithScope(context.Background())
	require.NoError(t, e.reconciler.ApplyDelete(ctx, task, data))

	local, err := e.store.ListNodeCategoryIDs(ctx, node.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ids(0), local)

	scope, _ := suppress.FromContext(ctx)
	_, marked := scope.DeletedAt(node.ID)
	assert.True(t, marked)

	// unknown category on this server
	unknown := bindingPayload(t, 900, 555)
	require.NoError(t, unknown.AddTranslation(model.ObjectTypeNode, 900, node.GUID))
	require.NoError(t, e.reconciler.ApplyDelete(ctx, task, unknown))

	local, err = e.store.ListNodeCategoryIDs(ctx, node.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ids(0), local)
}
