// Package suppress keeps a server from sending back to its origin the
// document updates caused by applying that origin's binding removals.
package suppress

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

// Scope records the owners whose bindings were removed during one operation.
type Scope struct {
	mu      sync.Mutex
	deleted map[int]time.Time
}

// WithScope returns a context carrying a fresh suppression scope.
func WithScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, &Scope{deleted: make(map[int]time.Time)})
}

// FromContext returns the scope of ctx, if any.
func FromContext(ctx context.Context) (*Scope, bool) {
	scope, ok := ctx.Value(ctxKey{}).(*Scope)
	return scope, ok
}

// MarkDeleted records that ownerID had bindings removed at now. Without a
// scope in ctx it does nothing.
func MarkDeleted(ctx context.Context, ownerID int, now time.Time) {
	scope, ok := FromContext(ctx)
	if !ok {
		logrus.Debugf("suppress: no scope for owner %d", ownerID)
		return
	}

	scope.mu.Lock()
	scope.deleted[ownerID] = now
	scope.mu.Unlock()
}

// DeletedAt reports when ownerID was marked in the scope.
func (s *Scope) DeletedAt(ownerID int) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at, ok := s.deleted[ownerID]
	return at, ok
}
