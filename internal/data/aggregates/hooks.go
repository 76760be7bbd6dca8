package aggregates

import (
	"strings"
	"time"
)

// Hooks captures write-level observability events.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

// OperationMetrics is the subset of the metrics registry hooks report to.
type OperationMetrics interface {
	ObserveWriteOperation(name, status string, dur time.Duration)
	IncWriteConflict(name string)
	IncWriteRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

type metricsHooks struct {
	metrics OperationMetrics
}

// NewMetricsHooks adapts a metrics registry; nil yields no-op hooks.
func NewMetricsHooks(metrics OperationMetrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return &metricsHooks{metrics: metrics}
}

func (h *metricsHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.metrics.ObserveWriteOperation(strings.TrimSpace(name), strings.TrimSpace(status), dur)
}

func (h *metricsHooks) IncConflict(name string) {
	h.metrics.IncWriteConflict(strings.TrimSpace(name))
}

func (h *metricsHooks) IncRetry(name string) {
	h.metrics.IncWriteRetry(strings.TrimSpace(name))
}
