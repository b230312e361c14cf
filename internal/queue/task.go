package queue

import (
	"context"
	"time"

	"github.com/emrgen/relstage/internal/model"
)

// TaskAnnouncement tells the transport that a task is ready to ship to the
// listed servers.
type TaskAnnouncement struct {
	TaskID     int            `json:"task_id"`
	Type       model.TaskType `json:"type"`
	ObjectType string         `json:"object_type"`
	ObjectID   int            `json:"object_id"`
	Title      string         `json:"title"`
	ServerIDs  []int          `json:"server_ids"`
	Time       time.Time      `json:"time"`
}

// NewTaskAnnouncement describes task for the given target servers.
func NewTaskAnnouncement(task *model.StagingTask, serverIDs []int) *TaskAnnouncement {
	return &TaskAnnouncement{
		TaskID:     task.ID,
		Type:       task.Type,
		ObjectType: task.ObjectType,
		ObjectID:   task.ObjectID,
		Title:      task.Title,
		ServerIDs:  serverIDs,
		Time:       task.Time,
	}
}

type TaskQueue interface {
	// PublishTask announces a newly logged task.
	PublishTask(ctx context.Context, announcement *TaskAnnouncement) error
	// Close releases the queue connection.
	Close() error
}
