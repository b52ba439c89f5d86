// Package observe provides observability primitives for endpoint checks.
//
// It is a pure instrumentation library: an Observer owns the OpenTelemetry
// tracer and meter providers plus a zap-backed structured Logger, and
// Instruments derives the check-level Tracer and Metrics consumed by the
// sampler.
package observe
