package staging_test

import (
	"context"
	"testing"
	"time"

	"github.com/emrgen/relstage/internal/clock"
	"github.com/emrgen/relstage/internal/compress"
	"github.com/emrgen/relstage/internal/model"
	"github.com/emrgen/relstage/internal/queue"
	"github.com/emrgen/relstage/internal/staging"
	"github.com/emrgen/relstage/internal/store"
	"github.com/emrgen/relstage/internal/tester"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingQueue struct {
	announcements []*queue.TaskAnnouncement
}

func (r *recordingQueue) PublishTask(_ context.Context, a *queue.TaskAnnouncement) error {
	r.announcements = append(r.announcements, a)
	return nil
}

func (r *recordingQueue) Close() error { return nil }

type flakyStore struct {
	store.Store
	failServer int
}

func (f flakyStore) CreateSynchronization(ctx context.Context, sync *model.Synchronization) error {
	if sync.ServerID == f.failServer {
		return assert.AnError
	}
	return f.Store.CreateSynchronization(ctx, sync)
}

type recordingDocuments struct {
	calls []string
}

func (r *recordingDocuments) LogDocumentChange(_ context.Context, siteName, aliasPath string, taskType model.TaskType) error {
	r.calls = append(r.calls, siteName+":"+aliasPath+":"+string(taskType))
	return nil
}

var start = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func newName(t *testing.T, s store.Store, codeName, display string, adHoc bool) *model.RelationshipName {
	t.Helper()
	name := &model.RelationshipName{Name: codeName, DisplayName: display, IsAdHoc: adHoc}
	require.NoError(t, s.CreateRelationshipName(context.Background(), name))
	return name
}

func TestBuilder_RelationshipNameTask_FanOut(t *testing.T) {
	for _, k := range []int{0, 1, 3} {
		s := tester.TestStore(t)
		f := tester.Seed(t, s, k)
		q := &recordingQueue{}
		b := staging.NewBuilder(s, compress.NewGZip(), q, nil, clock.NewFake(start))
		ctx := staging.WithActor(context.Background(), staging.Actor{SiteID: f.Site.ID, UserID: 1})

		name := newName(t, s, "related_pages", "Related Pages", true)
		task, err := b.RelationshipNameTask(ctx, name, model.TaskTypeCreateObject)
		require.NoError(t, err)

		tasks, err := s.ListTasks(ctx, nil)
		require.NoError(t, err)

		if k == 0 {
			assert.Nil(t, task)
			assert.Empty(t, tasks)
			assert.Empty(t, q.announcements)
			continue
		}

		require.NotNil(t, task)
		require.Len(t, tasks, 1)
		syncs, err := s.ListSynchronizations(ctx, task.ID)
		require.NoError(t, err)
		require.Len(t, syncs, k)
		for i, sync := range syncs {
			assert.Equal(t, f.Servers[i].ID, sync.ServerID)
			assert.Equal(t, model.SynchronizationPending, sync.Status)
		}

		require.Len(t, q.announcements, 1)
		assert.Len(t, q.announcements[0].ServerIDs, k)
	}
}

func TestBuilder_RelationshipNameTask_EndToEnd(t *testing.T) {
	s := tester.TestStore(t)
	f := tester.Seed(t, s, 2)
	ctx := context.Background()

	group := &model.TaskGroup{Name: "release", UserID: 42}
	require.NoError(t, s.CreateTaskGroup(ctx, group))

	b := staging.NewBuilder(s, compress.NewNop(), nil, nil, clock.NewFake(start))
	ctx = staging.WithActor(ctx, staging.Actor{SiteID: f.Site.ID, UserID: 42})

	name := newName(t, s, "related_pages", "Related Pages", true)
	task, err := b.RelationshipNameTask(ctx, name, model.TaskTypeCreateObject)
	require.NoError(t, err)
	require.NotNil(t, task)

	assert.Equal(t, "Create Relationship name 'Related Pages'", task.Title)
	assert.Equal(t, model.TaskTypeCreateObject, task.Type)
	assert.Equal(t, model.ObjectTypeRelationshipName, task.ObjectType)
	assert.Equal(t, name.ID, task.ObjectID)
	assert.Nil(t, task.SiteID)
	assert.True(t, start.Equal(task.Time))
	assert.Equal(t, "target-1;target-2", task.Servers)

	syncs, err := s.ListSynchronizations(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, syncs, 2)

	ids, err := s.ListGroupTaskIDs(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{task.ID}, ids)

	stored, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	data, err := staging.Decode(stored)
	require.NoError(t, err)
	primary, err := data.Primary()
	require.NoError(t, err)
	assert.Equal(t, staging.RelationshipNameTable, primary.Name)
	codeName, err := primary.String(0, "RelationshipName")
	require.NoError(t, err)
	assert.Equal(t, "related_pages", codeName)
}

func TestBuilder_RelationshipNameTask_Titles(t *testing.T) {
	s := tester.TestStore(t)
	f := tester.Seed(t, s, 1)
	b := staging.NewBuilder(s, nil, nil, nil, nil)
	ctx := staging.WithActor(context.Background(), staging.Actor{SiteID: f.Site.ID})
	name := newName(t, s, "featured", "Featured", true)

	tests := []struct {
		taskType model.TaskType
		title    string
	}{
		{model.TaskTypeCreateObject, "Create Relationship name 'Featured'"},
		{model.TaskTypeUpdateObject, "Update Relationship name 'Featured'"},
		{model.TaskTypeDeleteObject, "Delete Relationship name 'Featured'"},
	}
	for _, tt := range tests {
		t.Run(string(tt.taskType), func(t *testing.T) {
			task, err := b.RelationshipNameTask(ctx, name, tt.taskType)
			require.NoError(t, err)
			require.NotNil(t, task)
			assert.Equal(t, tt.title, task.Title)
		})
	}

	_, err := b.RelationshipNameTask(ctx, name, model.TaskTypeAddToSite)
	assert.ErrorIs(t, err, staging.ErrUnsupportedTaskType)
}

func TestBuilder_RelationshipNameTask_SkipsGeneratedAndSuppressed(t *testing.T) {
	s := tester.TestStore(t)
	f := tester.Seed(t, s, 2)
	b := staging.NewBuilder(s, nil, nil, nil, nil)
	ctx := staging.WithActor(context.Background(), staging.Actor{SiteID: f.Site.ID})

	generated := newName(t, s, "field_"+uuid.NewString(), "Field", true)
	task, err := b.RelationshipNameTask(ctx, generated, model.TaskTypeCreateObject)
	require.NoError(t, err)
	assert.Nil(t, task)

	notAdHoc := newName(t, s, "isrelatedto", "Is related to", false)
	task, err = b.RelationshipNameTask(ctx, notAdHoc, model.TaskTypeCreateObject)
	require.NoError(t, err)
	assert.Nil(t, task)

	custom := newName(t, s, "custom", "Custom", true)
	task, err = b.RelationshipNameTask(staging.WithoutLogging(ctx), custom, model.TaskTypeCreateObject)
	require.NoError(t, err)
	assert.Nil(t, task)

	tasks, err := s.ListTasks(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestBuilder_PartialFanOut(t *testing.T) {
	s := tester.TestStore(t)
	f := tester.Seed(t, s, 3)
	b := staging.NewBuilder(flakyStore{Store: s, failServer: f.Servers[1].ID}, nil, nil, nil, nil)
	ctx := staging.WithActor(context.Background(), staging.Actor{SiteID: f.Site.ID})

	task, err := b.RelationshipNameTask(ctx, newName(t, s, "custom", "Custom", true), model.TaskTypeUpdateObject)
	require.NoError(t, err)
	require.NotNil(t, task)

	syncs, err := s.ListSynchronizations(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, syncs, 2)
	assert.Equal(t, f.Servers[0].ID, syncs[0].ServerID)
	assert.Equal(t, f.Servers[2].ID, syncs[1].ServerID)
}

func TestBuilder_RelationshipNameSiteTask(t *testing.T) {
	s := tester.TestStore(t)
	f := tester.Seed(t, s, 2)
	b := staging.NewBuilder(s, nil, nil, nil, nil)
	ctx := staging.WithActor(context.Background(), staging.Actor{SiteID: f.Site.ID})
	name := newName(t, s, "custom", "Custom", true)

	task, err := b.RelationshipNameSiteTask(ctx, &model.RelationshipNameSite{RelationshipNameID: name.ID, SiteID: f.Site.ID}, model.TaskTypeAddToSite)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "Add Relationship name 'Custom' to site", task.Title)
	require.NotNil(t, task.SiteID)
	assert.Equal(t, f.Site.ID, *task.SiteID)

	task, err = b.RelationshipNameSiteTask(ctx, &model.RelationshipNameSite{RelationshipNameID: name.ID, SiteID: f.Site.ID}, model.TaskTypeRemoveFromSite)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "Remove Relationship name 'Custom' from site", task.Title)

	// owner already deleted: its own delete task covers the sites
	task, err = b.RelationshipNameSiteTask(ctx, &model.RelationshipNameSite{RelationshipNameID: 999, SiteID: f.Site.ID}, model.TaskTypeRemoveFromSite)
	require.NoError(t, err)
	assert.Nil(t, task)

	_, err = b.RelationshipNameSiteTask(ctx, &model.RelationshipNameSite{RelationshipNameID: name.ID}, model.TaskTypeCreateObject)
	assert.ErrorIs(t, err, staging.ErrUnsupportedTaskType)
}

func TestBuilder_TouchDocument(t *testing.T) {
	s := tester.TestStore(t)
	f := tester.Seed(t, s, 1)
	docs := &recordingDocuments{}
	b := staging.NewBuilder(s, nil, nil, docs, nil)
	ctx := context.Background()

	require.NoError(t, b.TouchDocument(ctx, f.Node))
	require.NoError(t, b.TouchDocument(staging.WithoutLogging(ctx), f.Node))

	offline := &model.Site{Name: "offline"}
	require.NoError(t, s.CreateSite(ctx, offline))
	require.NoError(t, b.TouchDocument(ctx, &model.Node{SiteID: offline.ID, SiteName: "offline", AliasPath: "/x"}))

	assert.Equal(t, []string{"corporate:/news/launch:UPDATEDOC"}, docs.calls)
}
