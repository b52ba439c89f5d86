// Package cache provides a short-lived HTTP response cache for read-only
// status routes.
//
// Dashboards poll the status API far more often than endpoint health
// changes. Middleware serves repeated GETs from a Cache keyed by path and
// canonical query, with TTLs bounded by a Policy. Mutating routes call
// DeletePrefix so a changed endpoint is never served stale.
package cache
