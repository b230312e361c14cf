package staging

import "errors"

var (
	// ErrUnsupportedTaskType is returned when a builder is asked for a task type it has no title for.
	ErrUnsupportedTaskType = errors.New("unsupported task type")
	// ErrNoActor is returned when a task needs the current site but ctx carries no actor.
	ErrNoActor = errors.New("no acting user in context")
)
