package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emrgen/relstage/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (g *GormStore) CreateSite(ctx context.Context, site *model.Site) error {
	return g.db.WithContext(ctx).Create(site).Error
}

func (g *GormStore) GetSite(ctx context.Context, id int) (*model.Site, error) {
	var site model.Site
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&site).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &site, nil
}

func (g *GormStore) CreateNode(ctx context.Context, node *model.Node) error {
	if node.GUID == uuid.Nil {
		node.GUID = uuid.New()
	}
	return g.db.WithContext(ctx).Create(node).Error
}

func (g *GormStore) GetNode(ctx context.Context, id int) (*model.Node, error) {
	var node model.Node
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&node).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &node, nil
}

func (g *GormStore) GetNodeByGUID(ctx context.Context, guid uuid.UUID) (*model.Node, error) {
	var node model.Node
	err := g.db.WithContext(ctx).Where("guid = ?", guid).First(&node).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &node, nil
}

func (g *GormStore) GetNodeByAliasPath(ctx context.Context, siteName, aliasPath string) (*model.Node, error) {
	var node model.Node
	err := g.db.WithContext(ctx).Where("site_name = ? AND alias_path = ?", siteName, aliasPath).First(&node).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &node, nil
}

func (g *GormStore) GetNodeByDocumentID(ctx context.Context, documentID int) (*model.Node, error) {
	var node model.Node
	err := g.db.WithContext(ctx).Where("document_id = ?", documentID).First(&node).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &node, nil
}

func (g *GormStore) CreateCategory(ctx context.Context, category *model.Category) error {
	if category.GUID == uuid.Nil {
		category.GUID = uuid.New()
	}
	return g.db.WithContext(ctx).Create(category).Error
}

func (g *GormStore) GetCategory(ctx context.Context, id int) (*model.Category, error) {
	var category model.Category
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

func (g *GormStore) GetCategoryByGUID(ctx context.Context, guid uuid.UUID) (*model.Category, error) {
	var category model.Category
	err := g.db.WithContext(ctx).Where("guid = ?", guid).First(&category).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

func (g *GormStore) CreateRelationshipName(ctx context.Context, name *model.RelationshipName) error {
	if name.GUID == uuid.Nil {
		name.GUID = uuid.New()
	}
	return g.db.WithContext(ctx).Create(name).Error
}

func (g *GormStore) GetRelationshipName(ctx context.Context, id int) (*model.RelationshipName, error) {
	var name model.RelationshipName
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&name).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &name, nil
}

func (g *GormStore) UpdateRelationshipName(ctx context.Context, name *model.RelationshipName) error {
	return g.db.WithContext(ctx).Save(name).Error
}

// DeleteRelationshipName removes the name together with its site bindings.
// NOTE: should run in a transaction
func (g *GormStore) DeleteRelationshipName(ctx context.Context, id int) error {
	db := g.db.WithContext(ctx)
	if err := db.Where("relationship_name_id = ?", id).Delete(&model.RelationshipNameSite{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.RelationshipName{}).Error
}

func (g *GormStore) AddRelationshipNameToSite(ctx context.Context, assoc *model.RelationshipNameSite) error {
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(assoc).Error
}

func (g *GormStore) RemoveRelationshipNameFromSite(ctx context.Context, assoc *model.RelationshipNameSite) error {
	return g.db.WithContext(ctx).
		Where("relationship_name_id = ? AND site_id = ?", assoc.RelationshipNameID, assoc.SiteID).
		Delete(&model.RelationshipNameSite{}).Error
}

func (g *GormStore) CreateRelationship(ctx context.Context, rel *model.Relationship) error {
	return g.db.WithContext(ctx).Create(rel).Error
}

func (g *GormStore) DeleteRelationship(ctx context.Context, id int) error {
	return g.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Relationship{}).Error
}

func (g *GormStore) ListNodeCategoryIDs(ctx context.Context, nodeID int) ([]int, error) {
	ids := make([]int, 0)
	err := g.db.WithContext(ctx).Model(&model.TreeCategory{}).
		Where("node_id = ?", nodeID).
		Order("category_id").
		Pluck("category_id", &ids).Error
	return ids, err
}

func (g *GormStore) AddNodeToCategory(ctx context.Context, nodeID, categoryID int) error {
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.TreeCategory{NodeID: nodeID, CategoryID: categoryID}).Error
}

func (g *GormStore) RemoveNodeFromCategory(ctx context.Context, nodeID, categoryID int) error {
	return g.db.WithContext(ctx).
		Where("node_id = ? AND category_id = ?", nodeID, categoryID).
		Delete(&model.TreeCategory{}).Error
}

func (g *GormStore) CreateServer(ctx context.Context, server *model.Server) error {
	return g.db.WithContext(ctx).Create(server).Error
}

func (g *GormStore) UpdateServer(ctx context.Context, server *model.Server) error {
	return g.db.WithContext(ctx).Save(server).Error
}

func (g *GormStore) ListEnabledServers(ctx context.Context, siteID int) ([]*model.Server, error) {
	var servers []*model.Server
	err := g.db.WithContext(ctx).
		Where("site_id = ? AND enabled = ?", siteID, true).
		Order("id").
		Find(&servers).Error
	return servers, err
}

func (g *GormStore) CreateTask(ctx context.Context, task *model.StagingTask) error {
	return g.db.WithContext(ctx).Create(task).Error
}

func (g *GormStore) UpdateTask(ctx context.Context, task *model.StagingTask) error {
	return g.db.WithContext(ctx).Save(task).Error
}

func (g *GormStore) GetTask(ctx context.Context, id int) (*model.StagingTask, error) {
	var task model.StagingTask
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

func (g *GormStore) ListTasks(ctx context.Context, siteID *int) ([]*model.StagingTask, error) {
	var tasks []*model.StagingTask
	query := g.db.WithContext(ctx).Order("time desc, id desc")
	if siteID != nil {
		query = query.Where("site_id = ?", *siteID)
	}
	err := query.Find(&tasks).Error
	return tasks, err
}

// DeleteTask removes the task and everything that points at it.
// NOTE: should run in a transaction
func (g *GormStore) DeleteTask(ctx context.Context, id int) error {
	db := g.db.WithContext(ctx)
	if err := db.Where("task_id = ?", id).Delete(&model.Synchronization{}).Error; err != nil {
		return err
	}
	if err := db.Where("task_id = ?", id).Delete(&model.TaskGroupTask{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.StagingTask{}).Error
}

func (g *GormStore) CreateSynchronization(ctx context.Context, sync *model.Synchronization) error {
	if sync.Status == "" {
		sync.Status = model.SynchronizationPending
	}
	return g.db.WithContext(ctx).Create(sync).Error
}

func (g *GormStore) ListSynchronizations(ctx context.Context, taskID int) ([]*model.Synchronization, error) {
	var syncs []*model.Synchronization
	err := g.db.WithContext(ctx).Where("task_id = ?", taskID).Order("server_id").Find(&syncs).Error
	return syncs, err
}

func (g *GormStore) ListTasksWithoutSynchronizations(ctx context.Context, before time.Time) ([]*model.StagingTask, error) {
	var tasks []*model.StagingTask
	pending := g.db.Model(&model.Synchronization{}).Select("task_id")
	err := g.db.WithContext(ctx).
		Where("time < ?", before).
		Where("id NOT IN (?)", pending).
		Find(&tasks).Error
	return tasks, err
}

func (g *GormStore) CreateTaskGroup(ctx context.Context, group *model.TaskGroup) error {
	return g.db.WithContext(ctx).Create(group).Error
}

func (g *GormStore) GetUserTaskGroup(ctx context.Context, userID int) (*model.TaskGroup, error) {
	var group model.TaskGroup
	err := g.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc, id desc").First(&group).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &group, nil
}

func (g *GormStore) AddTaskToGroup(ctx context.Context, groupID, taskID int) error {
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.TaskGroupTask{TaskGroupID: groupID, TaskID: taskID}).Error
}

func (g *GormStore) ListGroupTaskIDs(ctx context.Context, groupID int) ([]int, error) {
	ids := make([]int, 0)
	err := g.db.WithContext(ctx).Model(&model.TaskGroupTask{}).
		Where("task_group_id = ?", groupID).
		Order("task_id").
		Pluck("task_id", &ids).Error
	return ids, err
}

func (g *GormStore) LogEvent(ctx context.Context, entry *model.EventLogEntry) error {
	if entry.Time.IsZero() {
		entry.Time = time.Now()
	}
	return g.db.WithContext(ctx).Create(entry).Error
}

func (g *GormStore) ListEvents(ctx context.Context) ([]*model.EventLogEntry, error) {
	var entries []*model.EventLogEntry
	err := g.db.WithContext(ctx).Order("time desc, id desc").Find(&entries).Error
	return entries, err
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) EnsureForeignKeys(ctx context.Context) error {
	migrator := g.db.WithContext(ctx).Migrator()
	for _, name := range []string{"Node", "Category"} {
		if migrator.HasConstraint(&model.TreeCategory{}, name) {
			continue
		}
		if err := migrator.CreateConstraint(&model.TreeCategory{}, name); err != nil {
			return fmt.Errorf("tree category constraint %s: %w", name, err)
		}
	}
	return nil
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}
