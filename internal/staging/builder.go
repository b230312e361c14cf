// Package staging builds staging tasks by hand for objects the platform's
// staging engine does not log on its own, and fans each task out to the
// enabled servers of the current site.
package staging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/emrgen/relstage/internal/classify"
	"github.com/emrgen/relstage/internal/clock"
	"github.com/emrgen/relstage/internal/compress"
	"github.com/emrgen/relstage/internal/metrics"
	"github.com/emrgen/relstage/internal/model"
	"github.com/emrgen/relstage/internal/payload"
	"github.com/emrgen/relstage/internal/queue"
	"github.com/emrgen/relstage/internal/store"
	"github.com/sirupsen/logrus"
)

// DocumentLogger is the platform's document change log.
type DocumentLogger interface {
	LogDocumentChange(ctx context.Context, siteName, aliasPath string, taskType model.TaskType) error
}

// Builder creates staging tasks and their synchronizations.
type Builder struct {
	store     store.Store
	compress  compress.Compress
	queue     queue.TaskQueue
	documents DocumentLogger
	clock     clock.Clock
}

// NewBuilder creates a Builder. documents may be nil until the host engine
// is wired with SetDocumentLogger.
func NewBuilder(s store.Store, codec compress.Compress, q queue.TaskQueue, documents DocumentLogger, c clock.Clock) *Builder {
	if codec == nil {
		codec = compress.NewNop()
	}
	if q == nil {
		q = queue.NewNop()
	}
	if c == nil {
		c = clock.Real()
	}

	return &Builder{
		store:     s,
		compress:  codec,
		queue:     q,
		documents: documents,
		clock:     c,
	}
}

// SetDocumentLogger wires the platform document log.
func (b *Builder) SetDocumentLogger(documents DocumentLogger) {
	b.documents = documents
}

// Clock returns the clock tasks are stamped with.
func (b *Builder) Clock() clock.Clock {
	return b.clock
}

// StagingEnabled reports whether changes on the site are logged for staging.
// An unknown site is treated as disabled.
func (b *Builder) StagingEnabled(ctx context.Context, siteID int) bool {
	return SiteStagingEnabled(ctx, b.store, siteID)
}

// SiteStagingEnabled is StagingEnabled for callers without a Builder.
func SiteStagingEnabled(ctx context.Context, sites store.SiteStore, siteID int) bool {
	site, err := sites.GetSite(ctx, siteID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logrus.Warnf("staging: site %d lookup failed: %v", siteID, err)
		}
		return false
	}
	return site.StagingEnabled
}

// RelationshipNameTask logs a create, update, or delete of a custom ad-hoc
// relationship name. It returns the created task, or nil when the name is not
// custom ad-hoc or no server can receive it.
func (b *Builder) RelationshipNameTask(ctx context.Context, name *model.RelationshipName, taskType model.TaskType) (*model.StagingTask, error) {
	verb, ok := objectVerbs[taskType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTaskType, taskType)
	}

	if !LoggingEnabled(ctx) || !classify.IsCustomAdHoc(name) {
		return nil, nil
	}

	actor, ok := ActorFromContext(ctx)
	if !ok {
		return nil, ErrNoActor
	}

	servers := b.enabledServers(ctx, actor.SiteID)
	if len(servers) == 0 {
		return nil, nil
	}

	data, err := RelationshipNameData(name)
	if err != nil {
		return nil, err
	}

	task := &model.StagingTask{
		Title:      fmt.Sprintf("%s Relationship name '%s'", verb, name.DisplayName),
		Type:       taskType,
		ObjectType: model.ObjectTypeRelationshipName,
		ObjectID:   name.ID,
		Time:       b.clock.Now(),
	}

	if err := b.log(ctx, task, data, servers, actor); err != nil {
		return nil, err
	}
	return task, nil
}

// RelationshipNameSiteTask logs adding a custom ad-hoc relationship name to,
// or removing it from, the current site. When the name itself is already
// gone its own delete task covers every site, so nothing is logged.
func (b *Builder) RelationshipNameSiteTask(ctx context.Context, assoc *model.RelationshipNameSite, taskType model.TaskType) (*model.StagingTask, error) {
	words, ok := siteVerbs[taskType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTaskType, taskType)
	}

	if !LoggingEnabled(ctx) {
		return nil, nil
	}

	actor, ok := ActorFromContext(ctx)
	if !ok {
		return nil, ErrNoActor
	}

	servers := b.enabledServers(ctx, actor.SiteID)

	name, err := b.store.GetRelationshipName(ctx, assoc.RelationshipNameID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("relationship name %d: %w", assoc.RelationshipNameID, err)
	}

	if !classify.IsCustomAdHoc(name) || len(servers) == 0 {
		return nil, nil
	}

	data, err := RelationshipNameData(name)
	if err != nil {
		return nil, err
	}

	siteID := actor.SiteID
	task := &model.StagingTask{
		Title:      fmt.Sprintf("%s Relationship name '%s' %s site", words.verb, name.DisplayName, words.preposition),
		Type:       taskType,
		ObjectType: model.ObjectTypeRelationshipName,
		ObjectID:   name.ID,
		SiteID:     &siteID,
		Time:       b.clock.Now(),
	}

	if err := b.log(ctx, task, data, servers, actor); err != nil {
		return nil, err
	}
	return task, nil
}

// TouchDocument logs an update of the document owning node, for changes the
// platform does not count as document edits (relationships, categories).
func (b *Builder) TouchDocument(ctx context.Context, node *model.Node) error {
	if !LoggingEnabled(ctx) || b.documents == nil {
		return nil
	}

	if !b.StagingEnabled(ctx, node.SiteID) {
		return nil
	}

	return b.documents.LogDocumentChange(ctx, node.SiteName, node.AliasPath, model.TaskTypeUpdateDocument)
}

// LogTask encodes data into task and fans it out to the enabled servers of
// siteID. It is the path the host engine uses for its own generic tasks.
func (b *Builder) LogTask(ctx context.Context, task *model.StagingTask, data *payload.DataSet, siteID int) ([]*model.Server, error) {
	actor, _ := ActorFromContext(ctx)
	servers := b.enabledServers(ctx, siteID)
	if len(servers) == 0 {
		return nil, nil
	}

	if task.Time.IsZero() {
		task.Time = b.clock.Now()
	}

	if err := b.log(ctx, task, data, servers, actor); err != nil {
		return nil, err
	}
	return servers, nil
}

// Decode reads the payload of a stored task with the codec it was written with.
func Decode(task *model.StagingTask) (*payload.DataSet, error) {
	codec, err := compress.New(task.Compression)
	if err != nil {
		return nil, err
	}

	raw, err := codec.Decode(task.Data)
	if err != nil {
		return nil, fmt.Errorf("task %d payload: %w", task.ID, err)
	}

	return payload.Decode(raw)
}

// Encode writes data into task with the builder's codec.
func (b *Builder) Encode(task *model.StagingTask, data *payload.DataSet) error {
	raw, err := payload.Encode(data)
	if err != nil {
		return err
	}

	encoded, err := b.compress.Encode(raw)
	if err != nil {
		return err
	}

	task.Data = encoded
	task.Compression = b.compress.Name()
	return nil
}

func (b *Builder) log(ctx context.Context, task *model.StagingTask, data *payload.DataSet, servers []*model.Server, actor Actor) error {
	if err := b.Encode(task, data); err != nil {
		return err
	}

	names := make([]string, 0, len(servers))
	for _, server := range servers {
		names = append(names, server.Name)
	}
	task.Servers = strings.Join(names, ";")

	if err := b.store.CreateTask(ctx, task); err != nil {
		return fmt.Errorf("create staging task: %w", err)
	}
	metrics.TasksLogged.WithLabelValues(string(task.Type)).Inc()

	log := logrus.WithFields(logrus.Fields{"task": task.ID, "type": task.Type, "object": task.ObjectType})

	// each synchronization is retried by the engine on its own, so one
	// failing server does not stop the others
	serverIDs := make([]int, 0, len(servers))
	for _, server := range servers {
		err := b.store.CreateSynchronization(ctx, &model.Synchronization{
			TaskID:   task.ID,
			ServerID: server.ID,
		})
		if err != nil {
			metrics.SynchronizationErrors.Inc()
			log.Errorf("synchronization for server %s: %v", server.Name, err)
			continue
		}
		metrics.SynchronizationsCreated.Inc()
		serverIDs = append(serverIDs, server.ID)
	}

	if actor.UserID > 0 {
		b.addToUserTaskGroup(ctx, task, actor.UserID)
	}

	if err := b.queue.PublishTask(ctx, queue.NewTaskAnnouncement(task, serverIDs)); err != nil {
		log.Warnf("announce task: %v", err)
	}

	log.Infof("logged staging task %q for %d servers", task.Title, len(serverIDs))
	return nil
}

func (b *Builder) addToUserTaskGroup(ctx context.Context, task *model.StagingTask, userID int) {
	group, err := b.store.GetUserTaskGroup(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logrus.Warnf("staging: task group lookup for user %d failed: %v", userID, err)
		}
		return
	}

	if err := b.store.AddTaskToGroup(ctx, group.ID, task.ID); err != nil {
		logrus.Warnf("staging: add task %d to group %d: %v", task.ID, group.ID, err)
	}
}

func (b *Builder) enabledServers(ctx context.Context, siteID int) []*model.Server {
	servers, err := b.store.ListEnabledServers(ctx, siteID)
	if err != nil {
		logrus.Warnf("staging: server lookup for site %d failed: %v", siteID, err)
		return nil
	}
	return servers
}
