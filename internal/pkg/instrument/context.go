package instrument

import "context"

type contextKey int

const correlationIDKey contextKey = iota

// SetCorrelationID returns a context carrying the request correlation ID.
func SetCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, correlationIDKey, cid)
}

// GetCorrelationID returns the correlation ID from the context, or an empty
// string when none was set.
func GetCorrelationID(ctx context.Context) string {
	cid, _ := ctx.Value(correlationIDKey).(string)

	return cid
}
