package probes

import "errors"

var (
	// ErrDuplicateProbe indicates a probe with the same name is registered.
	ErrDuplicateProbe = errors.New("probes: duplicate probe")

	// ErrInvalidAddress indicates an address the probe cannot interpret.
	ErrInvalidAddress = errors.New("probes: invalid address")
)
