// Package monitor owns the set of monitored endpoints and checks them on
// a fixed interval.
//
// Registry creates endpoints from configuration, resolving the probe by
// monitor type. Scheduler runs one check per endpoint per pass with bounded
// concurrency and commits results through Endpoint.CheckHealth, so removing
// an endpoint while its check is in flight drops the late result.
package monitor
