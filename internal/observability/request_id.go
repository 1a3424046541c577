package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

func NewRequestID() string {
	return uuid.New().String()
}

// requestIDFrom reuses a caller-supplied id when it is a UUID and mints a
// fresh one otherwise.
func requestIDFrom(header string) string {
	if header != "" {
		if id, err := uuid.Parse(header); err == nil {
			return id.String()
		}
	}
	return NewRequestID()
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, ok := ctx.Value(RequestIDKey).(string)
	if !ok {
		return ""
	}
	return id
}
