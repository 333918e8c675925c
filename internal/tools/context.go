package tools

import "context"

type requestIDKey struct{}

// WithRequestID returns a context carrying the dispatch request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the dispatch request id, or "" outside a dispatch.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
