package queue

import "context"

var _ TaskQueue = Nop{}

// Nop drops every announcement. Used when no broker is configured; the
// synchronization rows alone are enough for the engine to ship tasks.
type Nop struct{}

func NewNop() Nop {
	return Nop{}
}

func (Nop) PublishTask(context.Context, *TaskAnnouncement) error {
	return nil
}

func (Nop) Close() error {
	return nil
}
