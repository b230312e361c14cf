package store

import (
	"context"
	"time"

	"github.com/emrgen/relstage/internal/model"
	"github.com/google/uuid"
)

type Store interface {
	SiteStore
	NodeStore
	RelationshipStore
	BindingStore
	ServerStore
	TaskStore
	TaskGroupStore
	EventLogStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
	// EnsureForeignKeys creates the binding table foreign keys when they are missing.
	EnsureForeignKeys(ctx context.Context) error
}

type SiteStore interface {
	// CreateSite creates a new site.
	CreateSite(ctx context.Context, site *model.Site) error
	// GetSite retrieves a site by ID.
	GetSite(ctx context.Context, id int) (*model.Site, error)
}

type NodeStore interface {
	// CreateNode creates a new tree node.
	CreateNode(ctx context.Context, node *model.Node) error
	// GetNode retrieves a node by ID.
	GetNode(ctx context.Context, id int) (*model.Node, error)
	// GetNodeByGUID retrieves a node by its global identifier.
	GetNodeByGUID(ctx context.Context, guid uuid.UUID) (*model.Node, error)
	// GetNodeByAliasPath retrieves a node by site name and alias path.
	GetNodeByAliasPath(ctx context.Context, siteName, aliasPath string) (*model.Node, error)
	// GetNodeByDocumentID retrieves the node that owns a document.
	GetNodeByDocumentID(ctx context.Context, documentID int) (*model.Node, error)
	// CreateCategory creates a new category.
	CreateCategory(ctx context.Context, category *model.Category) error
	// GetCategory retrieves a category by ID.
	GetCategory(ctx context.Context, id int) (*model.Category, error)
	// GetCategoryByGUID retrieves a category by its global identifier.
	GetCategoryByGUID(ctx context.Context, guid uuid.UUID) (*model.Category, error)
}

type RelationshipStore interface {
	// CreateRelationshipName creates a new relationship name.
	CreateRelationshipName(ctx context.Context, name *model.RelationshipName) error
	// GetRelationshipName retrieves a relationship name by ID.
	GetRelationshipName(ctx context.Context, id int) (*model.RelationshipName, error)
	// UpdateRelationshipName saves a relationship name.
	UpdateRelationshipName(ctx context.Context, name *model.RelationshipName) error
	// DeleteRelationshipName deletes a relationship name and its site bindings.
	DeleteRelationshipName(ctx context.Context, id int) error
	// AddRelationshipNameToSite binds a relationship name to a site.
	AddRelationshipNameToSite(ctx context.Context, assoc *model.RelationshipNameSite) error
	// RemoveRelationshipNameFromSite removes a relationship name from a site.
	RemoveRelationshipNameFromSite(ctx context.Context, assoc *model.RelationshipNameSite) error
	// CreateRelationship creates a relationship between two nodes.
	CreateRelationship(ctx context.Context, rel *model.Relationship) error
	// DeleteRelationship deletes a relationship by ID.
	DeleteRelationship(ctx context.Context, id int) error
}

type BindingStore interface {
	// ListNodeCategoryIDs lists the category IDs bound to a node.
	ListNodeCategoryIDs(ctx context.Context, nodeID int) ([]int, error)
	// AddNodeToCategory binds a node to a category. Existing bindings are kept.
	AddNodeToCategory(ctx context.Context, nodeID, categoryID int) error
	// RemoveNodeFromCategory removes a node-category binding.
	RemoveNodeFromCategory(ctx context.Context, nodeID, categoryID int) error
}

type ServerStore interface {
	// CreateServer creates a new staging server.
	CreateServer(ctx context.Context, server *model.Server) error
	// UpdateServer saves a staging server.
	UpdateServer(ctx context.Context, server *model.Server) error
	// ListEnabledServers lists the enabled staging servers of a site.
	ListEnabledServers(ctx context.Context, siteID int) ([]*model.Server, error)
}

type TaskStore interface {
	// CreateTask creates a new staging task.
	CreateTask(ctx context.Context, task *model.StagingTask) error
	// UpdateTask saves a staging task.
	UpdateTask(ctx context.Context, task *model.StagingTask) error
	// GetTask retrieves a staging task by ID.
	GetTask(ctx context.Context, id int) (*model.StagingTask, error)
	// ListTasks lists staging tasks, newest first. A nil site lists every task.
	ListTasks(ctx context.Context, siteID *int) ([]*model.StagingTask, error)
	// DeleteTask deletes a task with its synchronizations and task group links.
	DeleteTask(ctx context.Context, id int) error
	// CreateSynchronization creates a task-server synchronization.
	CreateSynchronization(ctx context.Context, sync *model.Synchronization) error
	// ListSynchronizations lists the synchronizations of a task.
	ListSynchronizations(ctx context.Context, taskID int) ([]*model.Synchronization, error)
	// ListTasksWithoutSynchronizations lists tasks logged before a time that no server still waits for.
	ListTasksWithoutSynchronizations(ctx context.Context, before time.Time) ([]*model.StagingTask, error)
}

type TaskGroupStore interface {
	// CreateTaskGroup creates a new task group.
	CreateTaskGroup(ctx context.Context, group *model.TaskGroup) error
	// GetUserTaskGroup retrieves the task group a user is currently working in.
	GetUserTaskGroup(ctx context.Context, userID int) (*model.TaskGroup, error)
	// AddTaskToGroup adds a task to a task group.
	AddTaskToGroup(ctx context.Context, groupID, taskID int) error
	// ListGroupTaskIDs lists the task IDs in a task group.
	ListGroupTaskIDs(ctx context.Context, groupID int) ([]int, error)
}

type EventLogStore interface {
	// LogEvent appends an entry to the event log.
	LogEvent(ctx context.Context, entry *model.EventLogEntry) error
	// ListEvents lists event log entries, newest first.
	ListEvents(ctx context.Context) ([]*model.EventLogEntry, error)
}
