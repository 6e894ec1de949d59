package context

import "context"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	contextIDKey
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithContextID stores the browser context id resolved from the context token.
func WithContextID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextIDKey, id)
}

func GetContextID(ctx context.Context) string {
	if v, ok := ctx.Value(contextIDKey).(string); ok {
		return v
	}
	return ""
}
