package stats

import (
	"context"

	"github.com/google/uuid"

	"github.com/msusur/healthmonitoring/health"
	"github.com/msusur/healthmonitoring/sampler"
)

// DefaultHistory is the number of snapshots kept per endpoint when no limit
// is configured.
const DefaultHistory = 100

// Store is a sink whose history can be read back.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Ordering: History returns the newest snapshot first.
type Store interface {
	sampler.StatsSink

	// History returns the retained snapshots of id, newest first.
	History(ctx context.Context, id uuid.UUID) ([]*health.EndpointHealth, error)

	// Forget drops everything retained for id.
	Forget(ctx context.Context, id uuid.UUID) error
}

type multi []sampler.StatsSink

// Multi returns a sink that records to every sink in order. Nil sinks are
// skipped.
func Multi(sinks ...sampler.StatsSink) sampler.StatsSink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multi) RecordEndpointStatistics(ctx context.Context, id uuid.UUID, h *health.EndpointHealth) {
	for _, s := range m {
		s.RecordEndpointStatistics(ctx, id, h)
	}
}
