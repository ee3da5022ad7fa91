package logging

import (
	"context"

	"go.uber.org/zap"
)

type requestCtxKey struct{}
type userCtxKey struct{}

// WithRequestID stores a request id in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestCtxKey{}, id)
}

// RequestIDFromContext returns the request id, or "" when none was set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestCtxKey{}).(string)
	return id
}

// WithUsername stores the authenticated username in ctx for log correlation.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, userCtxKey{}, username)
}

// UsernameFromContext returns the username, or "" when anonymous.
func UsernameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(userCtxKey{}).(string)
	return name
}

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	fields := make([]zap.Field, 0, 2)
	if id := RequestIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("request.id", id))
	}
	if name := UsernameFromContext(ctx); name != "" {
		fields = append(fields, zap.String("user", name))
	}
	return fields
}
