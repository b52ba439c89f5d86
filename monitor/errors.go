package monitor

import "errors"

var (
	// ErrUnknownMonitor indicates no probe is registered for a monitor type.
	ErrUnknownMonitor = errors.New("monitor: unknown monitor type")

	// ErrDuplicateEndpoint indicates an endpoint id is already registered.
	ErrDuplicateEndpoint = errors.New("monitor: duplicate endpoint")

	// ErrNotFound indicates no endpoint has the requested id.
	ErrNotFound = errors.New("monitor: endpoint not found")

	// ErrInvalidEndpoint indicates an endpoint configuration is incomplete.
	ErrInvalidEndpoint = errors.New("monitor: invalid endpoint")

	// ErrInvalidInterval indicates a non-positive scheduler interval.
	ErrInvalidInterval = errors.New("monitor: interval must be positive")
)
