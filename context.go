package gatehouse

import "context"

type contextKey int

const ctxKeyActor contextKey = iota

// WithActor returns a context carrying the acting user ID.
// Use this for standalone mode (without Forge).
func WithActor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKeyActor, userID)
}

// ActorFromContext returns the acting user ID, or "" when the context
// carries none.
func ActorFromContext(ctx context.Context) string {
	v, ok := ctx.Value(ctxKeyActor).(string)
	if !ok {
		return ""
	}
	return v
}
