package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records endpoint check metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCheck records one completed check with its status and response time.
	RecordCheck(ctx context.Context, meta EndpointMeta, status string, responseTime time.Duration)

	// RecordAborted records a check aborted by cancellation.
	RecordAborted(ctx context.Context, meta EndpointMeta)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	totalCount   metric.Int64Counter
	abortedCount metric.Int64Counter
	responseHist metric.Float64Histogram
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"endpoint.check.total",
		metric.WithDescription("Total number of completed endpoint checks"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	abortedCount, err := meter.Int64Counter(
		"endpoint.check.aborted",
		metric.WithDescription("Endpoint checks aborted by cancellation"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	responseHist, err := meter.Float64Histogram(
		"endpoint.check.response_time_ms",
		metric.WithDescription("Endpoint check response time in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		abortedCount: abortedCount,
		responseHist: responseHist,
	}, nil
}

// RecordCheck records metrics for one completed check.
func (m *metricsImpl) RecordCheck(ctx context.Context, meta EndpointMeta, status string, responseTime time.Duration) {
	attrs := append(meta.attributes(), attribute.String("endpoint.status", status))
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	m.responseHist.Record(ctx, float64(responseTime)/float64(time.Millisecond), opt)
}

// RecordAborted records a check that was aborted before producing a status.
func (m *metricsImpl) RecordAborted(ctx context.Context, meta EndpointMeta) {
	m.abortedCount.Add(ctx, 1, metric.WithAttributes(meta.attributes()...))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

// NoopMetrics returns a Metrics that records nothing.
func NoopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) RecordCheck(context.Context, EndpointMeta, string, time.Duration) {}
func (noopMetrics) RecordAborted(context.Context, EndpointMeta)                      {}
