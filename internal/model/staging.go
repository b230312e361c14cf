package model

import (
	"time"
)

// TaskType is the kind of change a staging task carries.
type TaskType string

const (
	TaskTypeCreateObject   TaskType = "CREATEOBJECT"
	TaskTypeUpdateObject   TaskType = "UPDATEOBJECT"
	TaskTypeDeleteObject   TaskType = "DELETEOBJECT"
	TaskTypeAddToSite      TaskType = "ADDTOSITE"
	TaskTypeRemoveFromSite TaskType = "REMOVEFROMSITE"
	TaskTypeUpdateDocument TaskType = "UPDATEDOC"
)

// Object types known to the staging engine.
const (
	ObjectTypeRelationshipName     = "cms.relationshipname"
	ObjectTypeRelationshipNameSite = "cms.relationshipnamesite"
	ObjectTypeRelationship         = "cms.relationship"
	ObjectTypeTreeCategory         = "cms.treecategory"
	ObjectTypeNode                 = "cms.node"
	ObjectTypeCategory             = "cms.category"
	ObjectTypeDocument             = "cms.document"
)

// Server is a staging target.
type Server struct {
	ID      int    `gorm:"primaryKey;autoIncrement"`
	Name    string `gorm:"not null"`
	URL     string
	SiteID  int  `gorm:"index;not null"`
	Enabled bool `gorm:"not null"`
}

func (Server) TableName() string {
	return "staging_servers"
}

// StagingTask is a durable description of one change to apply on remote
// servers. Data holds the encoded exchange payload; Compression names the
// codec it was encoded with.
type StagingTask struct {
	ID          int      `gorm:"primaryKey;autoIncrement"`
	Title       string   `gorm:"not null"`
	Type        TaskType `gorm:"index;not null"`
	ObjectType  string   `gorm:"index;not null"`
	ObjectID    int
	DocumentID  int `gorm:"index"`
	NodeID      int
	SiteID      *int
	Data        []byte
	Compression string
	Time        time.Time `gorm:"index;not null"`
	Servers     string
}

func (StagingTask) TableName() string {
	return "staging_tasks"
}

// SynchronizationStatus tracks one task on one server.
type SynchronizationStatus string

const (
	SynchronizationPending SynchronizationStatus = "pending"
	SynchronizationSynced  SynchronizationStatus = "synced"
	SynchronizationError   SynchronizationStatus = "error"
)

// Synchronization pairs a task with the server it must be shipped to.
type Synchronization struct {
	ID           int                   `gorm:"primaryKey;autoIncrement"`
	TaskID       int                   `gorm:"uniqueIndex:idx_sync_task_server;not null"`
	ServerID     int                   `gorm:"uniqueIndex:idx_sync_task_server;not null"`
	Status       SynchronizationStatus `gorm:"not null;default:pending"`
	ErrorMessage string
	LastRun      *time.Time
}

func (Synchronization) TableName() string {
	return "staging_synchronizations"
}

// TaskGroup collects tasks a user wants to ship or roll back together.
type TaskGroup struct {
	ID        int    `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"not null"`
	UserID    int    `gorm:"index;not null"`
	CreatedAt time.Time
}

func (TaskGroup) TableName() string {
	return "staging_task_groups"
}

// TaskGroupTask is the membership of a task in a task group.
type TaskGroupTask struct {
	TaskGroupID int `gorm:"primaryKey;autoIncrement:false"`
	TaskID      int `gorm:"primaryKey;autoIncrement:false"`
}

func (TaskGroupTask) TableName() string {
	return "staging_task_group_tasks"
}
