package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/emrgen/relstage/internal/app"
	"github.com/emrgen/relstage/internal/clock"
	"github.com/emrgen/relstage/internal/compress"
	"github.com/emrgen/relstage/internal/host"
	"github.com/emrgen/relstage/internal/model"
	"github.com/emrgen/relstage/internal/module"
	"github.com/emrgen/relstage/internal/payload"
	"github.com/emrgen/relstage/internal/staging"
	"github.com/emrgen/relstage/internal/tester"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

type server struct {
	*app.App
	fixture    *tester.Fixture
	categories []*model.Category
	ctx        context.Context
}

// newServer creates a server with two staging targets and the categories
// named in guids, reusing the given GUIDs so servers share identities.
func newServer(t *testing.T, mode module.Mode, guids ...uuid.UUID) *server {
	t.Helper()
	s := tester.TestStore(t)
	f := tester.Seed(t, s, 2)

	a := app.New(s, app.Options{Mode: mode, Codec: compress.NewGZip(), Clock: clock.NewFake(start)})
	srv := &server{
		App:     a,
		fixture: f,
		ctx:     staging.WithActor(context.Background(), staging.Actor{SiteID: f.Site.ID, UserID: 7}),
	}

	for i, guid := range guids {
		category := &model.Category{GUID: guid, Name: "category", DisplayName: []string{"News", "Events", "Sports"}[i]}
		require.NoError(t, s.CreateCategory(context.Background(), category))
		srv.categories = append(srv.categories, category)
	}
	return srv
}

func (s *server) tasks(t *testing.T) []*model.StagingTask {
	t.Helper()
	tasks, err := s.Store.ListTasks(context.Background(), nil)
	require.NoError(t, err)
	return tasks
}

func (s *server) bindings(t *testing.T, nodeID int) []int {
	t.Helper()
	ids, err := s.Store.ListNodeCategoryIDs(context.Background(), nodeID)
	require.NoError(t, err)
	return ids
}

func categoryGUIDs() []uuid.UUID {
	return []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
}

func TestApp_RelatedPages(t *testing.T) {
	srv := newServer(t, module.ModeWithDocument)

	name := &model.RelationshipName{Name: "related_pages", DisplayName: "Related Pages", IsAdHoc: true}
	require.NoError(t, srv.Objects.CreateRelationshipName(srv.ctx, name))

	tasks := srv.tasks(t)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Create Relationship name 'Related Pages'", tasks[0].Title)
	assert.Equal(t, model.TaskTypeCreateObject, tasks[0].Type)

	syncs, err := srv.Store.ListSynchronizations(srv.ctx, tasks[0].ID)
	require.NoError(t, err)
	assert.Len(t, syncs, 2)

	name.DisplayName = "See also"
	require.NoError(t, srv.Objects.UpdateRelationshipName(srv.ctx, name))
	require.NoError(t, srv.Objects.AddRelationshipNameToSite(srv.ctx, &model.RelationshipNameSite{RelationshipNameID: name.ID, SiteID: srv.fixture.Site.ID}))
	require.NoError(t, srv.Objects.DeleteRelationshipName(srv.ctx, name))

	var titles []string
	for _, task := range srv.tasks(t) {
		titles = append(titles, task.Title)
	}
	assert.ElementsMatch(t, []string{
		"Create Relationship name 'Related Pages'",
		"Update Relationship name 'See also'",
		"Add Relationship name 'See also' to site",
		"Delete Relationship name 'See also'",
	}, titles)
}

func TestApp_GeneratedNamesAreNotStaged(t *testing.T) {
	srv := newServer(t, module.ModeWithDocument)

	name := &model.RelationshipName{Name: "Topics_" + uuid.NewString(), DisplayName: "Topics", IsAdHoc: true}
	require.NoError(t, srv.Objects.CreateRelationshipName(srv.ctx, name))

	other := &model.Node{SiteID: srv.fixture.Site.ID, SiteName: "corporate", AliasPath: "/about", DocumentID: 101}
	require.NoError(t, srv.Store.CreateNode(srv.ctx, other))
	require.NoError(t, srv.Objects.CreateRelationship(srv.ctx, &model.Relationship{
		RelationshipNameID: name.ID, LeftNodeID: srv.fixture.Node.ID, RightNodeID: other.ID,
	}))

	assert.Empty(t, srv.tasks(t))
}

func TestApp_SuppressedLogging(t *testing.T) {
	srv := newServer(t, module.ModeWithDocument, categoryGUIDs()...)
	ctx := staging.WithoutLogging(srv.ctx)

	require.NoError(t, srv.Objects.CreateRelationshipName(ctx, &model.RelationshipName{Name: "custom", DisplayName: "Custom", IsAdHoc: true}))
	require.NoError(t, srv.Objects.AddNodeToCategory(ctx, srv.fixture.Node.ID, srv.categories[0].ID))

	assert.Empty(t, srv.tasks(t))
}

func TestApp_StagingDisabledSite(t *testing.T) {
	srv := newServer(t, module.ModeWithDocument)

	site := &model.Site{Name: "intranet"}
	require.NoError(t, srv.Store.CreateSite(context.Background(), site))
	require.NoError(t, srv.Store.CreateServer(context.Background(), &model.Server{Name: "intranet-target", SiteID: site.ID, Enabled: true}))
	ctx := staging.WithActor(context.Background(), staging.Actor{SiteID: site.ID})

	require.NoError(t, srv.Objects.CreateRelationshipName(ctx, &model.RelationshipName{Name: "custom", DisplayName: "Custom", IsAdHoc: true}))
	assert.Empty(t, srv.tasks(t))
}

func TestApp_RelationshipTouchesLeftDocument(t *testing.T) {
	srv := newServer(t, module.ModeWithDocument)

	name := &model.RelationshipName{Name: "custom", DisplayName: "Custom", IsAdHoc: true}
	require.NoError(t, srv.Store.CreateRelationshipName(srv.ctx, name))
	right := &model.Node{SiteID: srv.fixture.Site.ID, SiteName: "corporate", AliasPath: "/about", DocumentID: 101}
	require.NoError(t, srv.Store.CreateNode(srv.ctx, right))

	require.NoError(t, srv.Objects.CreateRelationship(srv.ctx, &model.Relationship{
		RelationshipNameID: name.ID, LeftNodeID: srv.fixture.Node.ID, RightNodeID: right.ID,
	}))

	tasks := srv.tasks(t)
	require.Len(t, tasks, 1)
	assert.Equal(t, model.TaskTypeUpdateDocument, tasks[0].Type)
	assert.Equal(t, srv.fixture.Node.DocumentID, tasks[0].DocumentID)
	assert.Equal(t, "Update document '/news/launch'", tasks[0].Title)
}

func TestApp_WithDocument_BindingsTravelWithDocument(t *testing.T) {
	guids := categoryGUIDs()
	origin := newServer(t, module.ModeWithDocument, guids...)
	target := newServer(t, module.ModeWithDocument, guids...)

	mirror := &model.Node{
		GUID:       origin.fixture.Node.GUID,
		SiteID:     target.fixture.Site.ID,
		SiteName:   "corporate",
		AliasPath:  "/mirror",
		DocumentID: 300,
	}
	require.NoError(t, target.Store.CreateNode(context.Background(), mirror))
	require.NoError(t, target.Store.AddNodeToCategory(context.Background(), mirror.ID, target.categories[2].ID))

	node := origin.fixture.Node
	require.NoError(t, origin.Objects.AddNodeToCategory(origin.ctx, node.ID, origin.categories[0].ID))
	require.NoError(t, origin.Objects.AddNodeToCategory(origin.ctx, node.ID, origin.categories[1].ID))

	tasks := origin.tasks(t)
	require.Len(t, tasks, 2)
	latest := tasks[0]
	assert.Equal(t, model.TaskTypeUpdateDocument, latest.Type)
	assert.Equal(t, compress.GZipName, latest.Compression)

	data, err := staging.Decode(latest)
	require.NoError(t, err)
	primary, err := data.Primary()
	require.NoError(t, err)
	assert.Equal(t, host.DocumentTable, primary.Name)
	bindings, ok := data.Table("CMS_TreeCategory")
	require.True(t, ok)
	assert.Equal(t, 2, bindings.Len())

	// categories 0 and 1 replace category 2 on the target; the removal
	// makes the forwarded task an echo
	require.NoError(t, target.Engine.ProcessTask(context.Background(), latest))
	assert.Equal(t, []int{target.categories[0].ID, target.categories[1].ID}, target.bindings(t, mirror.ID))
	assert.Empty(t, target.tasks(t))

	// replaying changes nothing
	require.NoError(t, target.Engine.ProcessTask(context.Background(), latest))
	assert.Equal(t, []int{target.categories[0].ID, target.categories[1].ID}, target.bindings(t, mirror.ID))
	assert.Empty(t, target.tasks(t))
}

func TestApp_WithDocument_AdditionsAreForwarded(t *testing.T) {
	guids := categoryGUIDs()
	origin := newServer(t, module.ModeWithDocument, guids...)
	target := newServer(t, module.ModeWithDocument, guids...)

	mirror := &model.Node{GUID: origin.fixture.Node.GUID, SiteID: target.fixture.Site.ID, SiteName: "corporate", AliasPath: "/mirror", DocumentID: 300}
	require.NoError(t, target.Store.CreateNode(context.Background(), mirror))

	require.NoError(t, origin.Objects.AddNodeToCategory(origin.ctx, origin.fixture.Node.ID, origin.categories[0].ID))
	tasks := origin.tasks(t)
	require.Len(t, tasks, 1)

	require.NoError(t, target.Engine.ProcessTask(context.Background(), tasks[0]))
	assert.Equal(t, []int{target.categories[0].ID}, target.bindings(t, mirror.ID))

	forwarded := target.tasks(t)
	require.Len(t, forwarded, 1)
	assert.Equal(t, mirror.DocumentID, forwarded[0].DocumentID)

	// replays of an applied task are not forwarded again
	for i := 0; i < 2; i++ {
		require.NoError(t, target.Engine.ProcessTask(context.Background(), tasks[0]))
	}
	assert.Len(t, target.tasks(t), 1)
}

func TestApp_WithDocument_MalformedTask(t *testing.T) {
	srv := newServer(t, module.ModeWithDocument)

	table, err := payload.NewTable("CONTENT_Article", "DocumentID")
	require.NoError(t, err)
	require.NoError(t, table.AddRow(1))
	data, err := payload.NewDataSet(table)
	require.NoError(t, err)

	task := &model.StagingTask{ID: 9, Type: model.TaskTypeUpdateDocument, ObjectType: model.ObjectTypeDocument}
	require.NoError(t, srv.Builder.Encode(task, data))

	assert.Error(t, srv.Engine.ProcessTask(context.Background(), task))

	entries, err := srv.Store.ListEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.EventTypeError, entries[0].Type)
}

func TestApp_Standalone_BindingObjects(t *testing.T) {
	guids := categoryGUIDs()
	origin := newServer(t, module.ModeStandalone, guids...)
	target := newServer(t, module.ModeStandalone, guids...)

	mirror := &model.Node{GUID: origin.fixture.Node.GUID, SiteID: target.fixture.Site.ID, SiteName: "corporate", AliasPath: "/mirror", DocumentID: 300}
	require.NoError(t, target.Store.CreateNode(context.Background(), mirror))
	require.NoError(t, target.Store.AddNodeToCategory(context.Background(), mirror.ID, target.categories[0].ID))
	require.NoError(t, target.Store.AddNodeToCategory(context.Background(), mirror.ID, target.categories[1].ID))

	node := origin.fixture.Node
	require.NoError(t, origin.Objects.AddNodeToCategory(origin.ctx, node.ID, origin.categories[0].ID))
	require.NoError(t, origin.Objects.RemoveNodeFromCategory(origin.ctx, node.ID, origin.categories[0].ID))

	tasks := origin.tasks(t)
	require.Len(t, tasks, 2)
	deleted, created := tasks[0], tasks[1]
	assert.Equal(t, "Create Tree category 'Node /news/launch - Category News'", created.Title)
	assert.Equal(t, "Delete Tree category 'Node /news/launch - Category News'", deleted.Title)
	assert.Equal(t, model.ObjectTypeTreeCategory, deleted.ObjectType)

	require.NoError(t, target.Engine.ProcessTask(context.Background(), deleted))
	assert.Equal(t, []int{target.categories[1].ID}, target.bindings(t, mirror.ID))
	assert.Empty(t, target.tasks(t))
}
