package health

import "errors"

var (
	// ErrUnknownStatus indicates a status name or value outside the taxonomy.
	ErrUnknownStatus = errors.New("health: unknown status")

	// ErrUnknownProbeStatus indicates a probe returned a status with no mapping.
	ErrUnknownProbeStatus = errors.New("health: unknown probe status")

	// ErrNilProbe indicates an endpoint was built without a probe.
	ErrNilProbe = errors.New("health: probe is nil")
)
