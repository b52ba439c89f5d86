// Package sampler runs one health check of an endpoint against an adaptive
// timeout and classifies the outcome.
//
// A check races the endpoint's probe against a timer. Endpoints that were
// last seen healthy, offline, missing or never checked get the short timeout
// and report StatusTimedOut when it fires. Endpoints already in trouble get
// the longer failure timeout, and report StatusFaulty if even that is
// exceeded, so a slow recovery is not mistaken for a new outage.
//
// Probe errors and panics never escape: they become StatusFaulty snapshots.
// The only error CheckHealth returns is the caller's own cancellation, in
// which case nothing is recorded.
//
//	s, err := sampler.New(sampler.Settings{
//	    ShortTimeout:             2 * time.Second,
//	    FailureTimeout:           20 * time.Second,
//	    HealthyResponseTimeLimit: 3 * time.Second,
//	}, sink, sampler.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	h, err := s.CheckHealth(ctx, endpoint)
package sampler
