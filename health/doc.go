// Package health defines the endpoint health model.
//
// It contains the status taxonomy (Status), the immutable snapshot of one
// check (EndpointHealth), the probe contract (Probe, ProbeResult) and the
// Endpoint entity with its commit-versus-dispose rule.
//
// # Status Taxonomy
//
// Status is a totally ordered set: NotRun, NotExists, Offline, Healthy,
// Faulty, Unhealthy and TimedOut. Probes report a coarser ProbeStatus which
// the sampler classifies; the mapping between the two is an explicit table.
//
// # Endpoints
//
// An Endpoint owns its last committed snapshot. CheckHealth delegates to a
// Sampler and commits the result only when the endpoint has not been
// disposed in the meantime:
//
//	ep := health.NewEndpoint(uuid.New(), probe, "https://example.com", "web", "prod")
//	if err := ep.CheckHealth(ctx, sampler); err != nil {
//	    return err // ctx was cancelled
//	}
//	fmt.Println(ep.Health().Status())
//
// # HTTP Endpoints
//
// The package provides HTTP handlers exposing the last committed statuses:
//
//	http.Handle("/healthz", health.LivenessHandler())
//	http.Handle("/readyz", health.ReadinessHandler(registry))
//	http.Handle("/status", health.DetailedHandler(registry))
package health
