// Package events dispatches object lifecycle and staging task events to
// subscribed handlers.
package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/emrgen/relstage/internal/model"
	"github.com/emrgen/relstage/internal/payload"
	"github.com/sirupsen/logrus"
)

// EntityKind names the kind of object an event is about.
type EntityKind string

const (
	RelationshipName     EntityKind = "RelationshipName"
	RelationshipNameSite EntityKind = "RelationshipNameSite"
	Relationship         EntityKind = "Relationship"
	TreeCategory         EntityKind = "TreeCategory"
	StagingTask          EntityKind = "StagingTask"
)

// Phase is the point in an object's lifecycle an event is raised at.
type Phase string

const (
	AfterInsert      Phase = "AfterInsert"
	AfterUpdate      Phase = "AfterUpdate"
	AfterDelete      Phase = "AfterDelete"
	BeforeLogTask    Phase = "BeforeLogTask"
	AfterLogTask     Phase = "AfterLogTask"
	AfterProcessTask Phase = "AfterProcessTask"
)

// Event carries the object of a lifecycle event, or the task and its
// decoded payload for staging task events. Handlers may modify Task and
// Data during BeforeLogTask.
type Event struct {
	Kind   EntityKind
	Phase  Phase
	Object any
	Task   *model.StagingTask
	Data   *payload.DataSet
}

func (e *Event) String() string {
	return fmt.Sprintf("%s.%s", e.Kind, e.Phase)
}

// Handler reacts to an event.
type Handler func(ctx context.Context, e *Event) error

// Registry accepts subscriptions.
type Registry interface {
	Subscribe(kind EntityKind, phase Phase, h Handler)
}

type key struct {
	kind  EntityKind
	phase Phase
}

// Bus is an in-process Registry. Handlers run synchronously on the
// publishing goroutine in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[key][]Handler
}

var _ Registry = (*Bus)(nil)

func NewBus() *Bus {
	return &Bus{handlers: make(map[key][]Handler)}
}

func (b *Bus) Subscribe(kind EntityKind, phase Phase, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	k := key{kind: kind, phase: phase}
	b.handlers[k] = append(b.handlers[k], h)
}

// Publish runs every handler subscribed to the event's kind and phase. A
// failing handler is logged and the rest still run; the number of failed
// handlers is returned.
func (b *Bus) Publish(ctx context.Context, e *Event) int {
	b.mu.RLock()
	handlers := b.handlers[key{kind: e.Kind, phase: e.Phase}]
	b.mu.RUnlock()

	failed := 0
	for _, h := range handlers {
		if err := h(ctx, e); err != nil {
			failed++
			logrus.Errorf("events: %s handler: %v", e, err)
		}
	}

	return failed
}
