package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// EndpointMeta describes a checked endpoint for telemetry purposes.
type EndpointMeta struct {
	ID          string // Endpoint identifier
	Name        string // Display name
	Group       string // Group (may be empty)
	MonitorType string // Probe name, e.g. "http"
	Address     string // Probe address (optional)
}

// SpanName returns the deterministic span name for a check of this endpoint.
// Format: endpoint.check.<monitorType>
func (m EndpointMeta) SpanName() string {
	if m.MonitorType == "" {
		return "endpoint.check"
	}
	return "endpoint.check." + m.MonitorType
}

func (m EndpointMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("endpoint.id", m.ID),
		attribute.String("endpoint.monitor", m.MonitorType),
	}
	if m.Group != "" {
		attrs = append(attrs, attribute.String("endpoint.group", m.Group))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with endpoint-check span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for one endpoint check.
	StartSpan(ctx context.Context, meta EndpointMeta) (context.Context, trace.Span)

	// EndSpan ends the span with the resulting status name, recording err
	// if the check was aborted.
	EndSpan(span trace.Span, status string, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with endpoint metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta EndpointMeta) (context.Context, trace.Span) {
	attrs := meta.attributes()
	if meta.Name != "" {
		attrs = append(attrs, attribute.String("endpoint.name", meta.Name))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// EndSpan ends the span. A nil err with any status is a completed check;
// the span is only marked as an error when the check itself was aborted.
func (t *tracerImpl) EndSpan(span trace.Span, status string, err error) {
	if status != "" {
		span.SetAttributes(attribute.String("endpoint.status", status))
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// NoopTracer creates a no-op tracer.
func NoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta EndpointMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, _ string, _ error) {
	span.End()
}
