package ctxutil

import "context"

type idsKey struct{}

// IDs correlates a request across logs and responses.
type IDs struct {
	TraceID   string
	RequestID string
}

func WithIDs(ctx context.Context, ids IDs) context.Context {
	return context.WithValue(ctx, idsKey{}, ids)
}

// GetIDs returns the ids stored by WithIDs; ok is false when none are set.
func GetIDs(ctx context.Context) (IDs, bool) {
	if ctx == nil {
		return IDs{}, false
	}
	ids, ok := ctx.Value(idsKey{}).(IDs)
	return ids, ok
}

// LogFields returns trace_id/request_id pairs for structured logging.
func LogFields(ctx context.Context) []interface{} {
	ids, ok := GetIDs(ctx)
	if !ok {
		return nil
	}
	var out []interface{}
	if ids.TraceID != "" {
		out = append(out, "trace_id", ids.TraceID)
	}
	if ids.RequestID != "" {
		out = append(out, "request_id", ids.RequestID)
	}
	return out
}
