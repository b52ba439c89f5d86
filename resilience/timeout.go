package resilience

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// RaceResult is the outcome of Race.
type RaceResult[T any] struct {
	// Value is the operation's value. It is the zero value when TimedOut.
	Value T

	// Err is the operation's own error when it settled first.
	Err error

	// TimedOut is true when the timeout fired before the operation settled.
	TimedOut bool

	// Elapsed is the time from start until the race resolved. It does not
	// include the time spent draining the loser.
	Elapsed time.Duration
}

type settled[T any] struct {
	value T
	err   error
}

// Race runs op against a timeout and returns whichever finishes first.
//
// The operation receives a child of ctx. When the timeout or ctx wins, the
// child is cancelled and Race waits for op to return before returning
// itself, so no operation outlives the call. Errors produced by op while it
// is being drained are discarded.
//
// The returned error is non-nil only when ctx ended the race; it is then
// ctx.Err(). Failures of op itself are reported in RaceResult.Err.
func Race[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (RaceResult[T], error) {
	var res RaceResult[T]
	if timeout <= 0 {
		return res, fmt.Errorf("%w: %v", ErrInvalidTimeout, timeout)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	opCtx, cancelOp := context.WithCancel(ctx)
	defer cancelOp()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	done := make(chan settled[T], 1)
	start := time.Now()

	var g errgroup.Group
	g.Go(func() error {
		v, err := runRecovered(opCtx, op)
		done <- settled[T]{value: v, err: err}
		return nil
	})

	select {
	case s := <-done:
		res.Elapsed = time.Since(start)
		_ = g.Wait()
		if s.err != nil && ctx.Err() != nil {
			return res, ctx.Err()
		}
		res.Value = s.value
		res.Err = s.err
		return res, nil

	case <-timer.C:
		res.Elapsed = time.Since(start)
		res.TimedOut = true
		cancelOp()
		_ = g.Wait()
		return res, nil

	case <-ctx.Done():
		res.Elapsed = time.Since(start)
		cancelOp()
		_ = g.Wait()
		return res, ctx.Err()
	}
}

func runRecovered[T any](ctx context.Context, op func(context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return op(ctx)
}
