package sampler

import "errors"

var (
	// ErrInvalidSettings indicates Settings failed validation.
	ErrInvalidSettings = errors.New("sampler: invalid settings")

	// ErrNilSink indicates New was called without a stats sink.
	ErrNilSink = errors.New("sampler: stats sink is nil")
)
