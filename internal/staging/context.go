package staging

import "context"

// Actor is who and where a change is made: the current site and the
// authenticated user.
type Actor struct {
	SiteID int
	UserID int
}

type actorKey struct{}

type noLoggingKey struct{}

// WithActor attaches the acting user and current site to ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored by WithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// WithoutLogging returns a context in which no staging task is logged. Writes
// made while applying an inbound task use it so they are not announced again.
func WithoutLogging(ctx context.Context) context.Context {
	return context.WithValue(ctx, noLoggingKey{}, true)
}

// LoggingEnabled reports whether staging tasks may be logged under ctx.
func LoggingEnabled(ctx context.Context) bool {
	disabled, _ := ctx.Value(noLoggingKey{}).(bool)
	return !disabled
}
