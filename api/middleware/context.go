package middleware

import "context"

type contextKey string

const (
	ctxActorID    contextKey = "actor_id"
	ctxRole       contextKey = "actor_role"
	ctxLocationID contextKey = "location_id"
)

func ActorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxActorID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

func LocationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxLocationID).(string); ok {
		return v
	}
	return ""
}

// WithActor injects actor identity into the context. Used by tests and by
// the auth middleware.
func WithActor(ctx context.Context, actorID, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxActorID, actorID)
	return context.WithValue(ctx, ctxRole, role)
}

func WithLocationID(ctx context.Context, locationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxLocationID, locationID)
}
