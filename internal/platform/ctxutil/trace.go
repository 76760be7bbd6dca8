package ctxutil

import "context"

type traceDataKey struct{}

// TraceData correlates one request across log lines and spans.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// LogFields returns the request_id/trace_id/email key-value pairs carried by
// ctx, ready to pass to logger.With or a log call.
func LogFields(ctx context.Context) []interface{} {
	if ctx == nil {
		return nil
	}
	var kv []interface{}
	if td := GetTraceData(ctx); td != nil {
		if td.RequestID != "" {
			kv = append(kv, "request_id", td.RequestID)
		}
		if td.TraceID != "" && td.TraceID != td.RequestID {
			kv = append(kv, "trace_id", td.TraceID)
		}
	}
	if rd := GetRequestData(ctx); rd != nil && rd.Email != "" {
		kv = append(kv, "email", rd.Email)
	}
	return kv
}
