package ctxutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogFields(t *testing.T) {
	assert.Empty(t, LogFields(context.Background()))
	assert.Nil(t, LogFields(nil))

	ctx := WithTraceData(context.Background(), &TraceData{RequestID: "r1", TraceID: "r1"})
	assert.Equal(t, []interface{}{"request_id", "r1"}, LogFields(ctx))

	ctx = WithTraceData(ctx, &TraceData{RequestID: "r1", TraceID: "t1"})
	ctx = WithRequestData(ctx, &RequestData{Email: "op@example.com"})
	assert.Equal(t, []interface{}{"request_id", "r1", "trace_id", "t1", "email", "op@example.com"}, LogFields(ctx))
}

func TestDefault(t *testing.T) {
	assert.NotNil(t, Default(nil))
	ctx := context.WithValue(context.Background(), traceDataKey{}, nil)
	assert.Same(t, ctx, Default(ctx))
}
