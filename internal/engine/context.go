package engine

import "context"

type ctxKey struct{}

// WithRequestID attaches the caller's request ID so published events can be
// correlated with access logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
