package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/msusur/healthmonitoring/api"
	"github.com/msusur/healthmonitoring/auth"
	"github.com/msusur/healthmonitoring/cache"
	"github.com/msusur/healthmonitoring/observe"
)

type serveOptions struct {
	*rootOptions
	addr string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "serve [--addr]",
		Short: "Run the scheduler and the status API until interrupted",
		RunE:  opts.run,
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "Address to bind (overrides server.addr)")
	return cmd
}

func (o *serveOptions) run(cmd *cobra.Command, _ []string) (err error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, o.configPath)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		err = errors.Join(err, a.Close(shutdownCtx))
	}()

	sched, err := a.scheduler()
	if err != nil {
		return err
	}

	apiOpts, err := apiOptions(ctx, a)
	if err != nil {
		return err
	}
	srv, err := api.New(a.registry, a.sampler, apiOpts...)
	if err != nil {
		return err
	}

	addr := a.cfg.Server.Addr
	if o.addr != "" {
		addr = o.addr
	}

	a.logger.Info(ctx, "healthmon starting",
		observe.Field{Key: "version", Value: version},
		observe.Field{Key: "endpoints", Value: a.registry.Len()},
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sched.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx, addr) })
	return g.Wait()
}

func apiOptions(ctx context.Context, a *app) ([]api.Option, error) {
	cfg := a.cfg.Server
	opts := []api.Option{
		api.WithLogger(a.logger),
		api.WithStats(a.history()),
		api.WithCache(cache.NewMemoryCache(), cfg.Cache),
		api.WithCORSOrigins(cfg.CORSOrigins...),
		api.WithOperatorRole(cfg.OperatorRole),
		api.WithTimeouts(cfg.ReadHeaderTimeout, cfg.ShutdownTimeout),
	}

	if cfg.Auth.Secret != "" {
		authn, err := auth.NewJWTAuthenticator(cfg.Auth)
		if err != nil {
			return nil, err
		}
		opts = append(opts, api.WithAuthenticator(authn))
	} else {
		a.logger.Warn(ctx, "server.auth.secret not set, mutating routes disabled")
	}

	if m := a.cfg.Observe.Metrics; m.Enabled && m.Exporter == "prometheus" {
		opts = append(opts, api.WithMetricsHandler(promhttp.Handler()))
	}
	return opts, nil
}
