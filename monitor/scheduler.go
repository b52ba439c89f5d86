package monitor

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/msusur/healthmonitoring/health"
	"github.com/msusur/healthmonitoring/observe"
)

// SchedulerConfig configures the check loop.
type SchedulerConfig struct {
	// Interval is the time between the starts of two passes.
	Interval time.Duration `mapstructure:"interval"`

	// MaxConcurrent bounds the checks running at once; 0 means no bound.
	MaxConcurrent int `mapstructure:"max_concurrent"`
}

// Scheduler checks every endpoint of a source once per interval.
type Scheduler struct {
	source  health.Source
	sampler health.Sampler
	config  SchedulerConfig
	logger  observe.Logger
}

// NewScheduler creates a scheduler.
func NewScheduler(source health.Source, sampler health.Sampler, config SchedulerConfig, logger observe.Logger) (*Scheduler, error) {
	if config.Interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &Scheduler{
		source:  source,
		sampler: sampler,
		config:  config,
		logger:  logger,
	}, nil
}

// RunOnce checks every endpoint once and waits for all checks to finish.
// It returns ctx.Err() if ctx was cancelled during the pass.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	var g errgroup.Group
	if s.config.MaxConcurrent > 0 {
		g.SetLimit(s.config.MaxConcurrent)
	}

	for _, ep := range s.source.Endpoints() {
		if ctx.Err() != nil {
			break
		}
		if ep.IsDisposed() {
			continue
		}
		g.Go(func() error {
			return ep.CheckHealth(ctx, s.sampler)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Run performs a pass immediately and then once per interval until ctx is
// cancelled. A pass that overruns the interval delays the next one.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.logger.Info(ctx, "scheduler started",
		observe.Field{Key: "interval", Value: s.config.Interval.String()},
		observe.Field{Key: "max_concurrent", Value: s.config.MaxConcurrent},
	)

	for {
		s.pass(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info(context.WithoutCancel(ctx), "scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) pass(ctx context.Context) {
	start := time.Now()
	err := s.RunOnce(ctx)
	switch {
	case err == nil:
		s.logger.Debug(ctx, "check pass completed",
			observe.Field{Key: "duration_ms", Value: time.Since(start).Milliseconds()},
		)
	case ctx.Err() == nil:
		s.logger.Error(ctx, "check pass failed", observe.Field{Key: "error", Value: err.Error()})
	}
}
