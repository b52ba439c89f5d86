package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/msusur/healthmonitoring/auth"
	"github.com/msusur/healthmonitoring/cache"
	"github.com/msusur/healthmonitoring/health"
	"github.com/msusur/healthmonitoring/observe"
)

// Registry is the endpoint registry the API reads and mutates.
// *monitor.Registry satisfies it.
type Registry interface {
	health.Source
	Get(id uuid.UUID) (*health.Endpoint, error)
	Update(id uuid.UUID, group, name string) (*health.Endpoint, error)
	Remove(id uuid.UUID) error
}

// HistoryStore returns recorded results, newest first.
type HistoryStore interface {
	History(ctx context.Context, id uuid.UUID) ([]*health.EndpointHealth, error)
}

// Server serves the status API.
type Server struct {
	registry Registry
	sampler  health.Sampler

	authenticator auth.Authenticator
	operatorRole  string
	stats         HistoryStore
	cache         cache.Cache
	cachePolicy   cache.Policy
	corsOrigins   []string
	metrics       http.Handler
	logger        observe.Logger

	readHeaderTimeout time.Duration
	shutdownTimeout   time.Duration

	checks singleflight.Group
	// checkCtx outlives any single request and is cancelled when Run
	// begins shutting down.
	checkCtx     context.Context
	cancelChecks context.CancelFunc
}

// New creates a Server. Manual checks triggered through the API run with
// sampler.
func New(registry Registry, sampler health.Sampler, opts ...Option) (*Server, error) {
	if registry == nil || sampler == nil {
		return nil, fmt.Errorf("%w: registry and sampler are required", ErrMissingDependency)
	}

	checkCtx, cancelChecks := context.WithCancel(context.Background())
	s := &Server{
		registry:          registry,
		sampler:           sampler,
		operatorRole:      DefaultOperatorRole,
		logger:            observe.NopLogger(),
		readHeaderTimeout: DefaultReadHeaderTimeout,
		shutdownTimeout:   DefaultShutdownTimeout,
		checkCtx:          checkCtx,
		cancelChecks:      cancelChecks,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(s.logRequests)
	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(s.corsOptions()))
	}

	r.Get("/healthz", health.LivenessHandler())
	r.Get("/readyz", health.ReadinessHandler(s.registry))
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Group(func(r chi.Router) {
		if s.cache != nil {
			r.Use(cache.Middleware(s.cache, cache.DefaultKeyer{}, s.cachePolicy))
		}
		r.Get("/status", health.DetailedHandler(s.registry))
		r.Get("/endpoints", s.handleListEndpoints)
	})

	r.Get("/endpoints/{id}", s.handleGetEndpoint)
	if s.stats != nil {
		r.Get("/endpoints/{id}/stats", s.handleEndpointStats)
	}

	if s.authenticator != nil {
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(s.authenticator, s.operatorRole))
			r.Put("/endpoints/{id}", s.handleUpdateEndpoint)
			r.Delete("/endpoints/{id}", s.handleDeleteEndpoint)
			r.Post("/endpoints/{id}/check", s.handleCheckEndpoint)
		})
	}

	return r
}

func (s *Server) corsOptions() cors.Options {
	opts := cors.Options{
		AllowedOrigins: make([]string, 0, len(s.corsOrigins)),
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Cache", "X-Request-Id"},
		MaxAge:         300,
	}
	for _, origin := range s.corsOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			opts.AllowedOrigins = []string{"*"}
			opts.AllowCredentials = false
			return opts
		}
		opts.AllowedOrigins = append(opts.AllowedOrigins, origin)
	}
	opts.AllowCredentials = true
	return opts
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// Manual checks still in flight are cancelled before the shutdown waits on
// their requests. It returns nil after a clean shutdown.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: s.readHeaderTimeout,
	}
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "starting api server", observe.Field{Key: "addr", Value: addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		s.logger.Info(ctx, "shutting down api server")
		s.cancelChecks()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api: shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}
