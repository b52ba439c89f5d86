// Package resilience provides the concurrency primitives used around probes.
//
// # Patterns
//
//   - Race: runs an operation against a timeout, cancels and drains the
//     loser, and reports which side won and when.
//
//   - Bulkhead: limits concurrent operations to prevent resource exhaustion.
//
//   - Rate Limiter: controls the rate of operations to avoid overwhelming
//     the monitored services.
//
// There is no retry: one health check is one probe attempt,
// and cadence belongs to the scheduler.
//
// # Usage
//
//	res, err := resilience.Race(ctx, 2*time.Second, func(ctx context.Context) (int, error) {
//	    return callExternalService(ctx)
//	})
//	if err != nil {
//	    return err // ctx was cancelled
//	}
//	if res.TimedOut {
//	    log.Printf("timed out after %v", res.Elapsed)
//	}
package resilience
