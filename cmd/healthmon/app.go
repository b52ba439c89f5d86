package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/msusur/healthmonitoring/config"
	"github.com/msusur/healthmonitoring/monitor"
	"github.com/msusur/healthmonitoring/observe"
	"github.com/msusur/healthmonitoring/probes"
	"github.com/msusur/healthmonitoring/sampler"
	"github.com/msusur/healthmonitoring/secret"
	"github.com/msusur/healthmonitoring/stats"
)

// app holds the components shared by the check and serve commands.
type app struct {
	cfg      *config.Config
	observer observe.Observer
	logger   observe.Logger
	resolver *secret.Resolver
	memory   *stats.Memory
	redis    *stats.RedisSink
	registry *monitor.Registry
	sampler  *sampler.Sampler
}

func loadConfig(ctx context.Context, path string) (*config.Config, *secret.Resolver, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	resolver, err := cfg.SecretResolver()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.ResolveSecrets(ctx, resolver); err != nil {
		_ = resolver.Close()
		return nil, nil, err
	}
	return cfg, resolver, nil
}

func newApp(ctx context.Context, path string) (_ *app, err error) {
	cfg, resolver, err := loadConfig(ctx, path)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, resolver: resolver}
	defer func() {
		if err != nil {
			_ = a.Close(context.WithoutCancel(ctx))
		}
	}()

	a.observer, err = observe.NewObserver(ctx, cfg.Observe)
	if err != nil {
		return nil, fmt.Errorf("observer: %w", err)
	}
	a.logger = a.observer.Logger()

	tracer, metrics, err := observe.Instruments(a.observer)
	if err != nil {
		return nil, fmt.Errorf("instruments: %w", err)
	}

	a.memory = stats.NewMemory(cfg.Stats.History)
	var sink sampler.StatsSink = a.memory
	if cfg.Stats.RedisEnabled() {
		a.redis, err = stats.NewRedisSink(ctx, cfg.Stats.Redis, cfg.Stats.History, a.logger)
		if err != nil {
			return nil, err
		}
		sink = stats.Multi(a.memory, a.redis)
	}

	probeRegistry, err := probes.NewDefaultRegistry(cfg.Probes, resolver)
	if err != nil {
		return nil, err
	}
	a.registry = monitor.NewRegistry(probeRegistry)
	for i, ep := range cfg.Endpoints {
		if _, err := a.registry.Add(ep); err != nil {
			return nil, fmt.Errorf("endpoints[%d]: %w", i, err)
		}
	}

	a.sampler, err = sampler.New(cfg.Sampler, sink,
		sampler.WithLogger(a.logger),
		sampler.WithMetrics(metrics),
		sampler.WithTracer(tracer),
	)
	if err != nil {
		return nil, err
	}

	return a, nil
}

// history returns the store backing the stats route. Redis wins when
// enabled since it survives restarts.
func (a *app) history() stats.Store {
	if a.redis != nil {
		return a.redis
	}
	return a.memory
}

func (a *app) scheduler() (*monitor.Scheduler, error) {
	return monitor.NewScheduler(a.registry, a.sampler, a.cfg.Scheduler, a.logger)
}

// Close releases everything newApp acquired.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.resolver != nil {
		errs = append(errs, a.resolver.Close())
	}
	if a.observer != nil {
		errs = append(errs, a.observer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
