package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/msusur/healthmonitoring/auth"
	"github.com/msusur/healthmonitoring/cache"
	"github.com/msusur/healthmonitoring/observe"
)

// Defaults for server options.
const (
	DefaultOperatorRole      = "operator"
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultShutdownTimeout   = 10 * time.Second
)

// Option configures a Server.
type Option func(*Server)

// WithAuthenticator enables the mutating routes behind auth.RequireRole.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(s *Server) {
		s.authenticator = a
	}
}

// WithOperatorRole sets the role required by mutating routes.
func WithOperatorRole(role string) Option {
	return func(s *Server) {
		if role = strings.TrimSpace(role); role != "" {
			s.operatorRole = role
		}
	}
}

// WithStats enables GET /endpoints/{id}/stats.
func WithStats(store HistoryStore) Option {
	return func(s *Server) {
		s.stats = store
	}
}

// WithCache caches read routes in c under policy.
func WithCache(c cache.Cache, policy cache.Policy) Option {
	return func(s *Server) {
		s.cache = c
		s.cachePolicy = policy
	}
}

// WithCORSOrigins enables CORS for origins. "*" allows any origin without
// credentials.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTimeouts sets the read-header and graceful shutdown timeouts. Zero
// values keep the defaults.
func WithTimeouts(readHeader, shutdown time.Duration) Option {
	return func(s *Server) {
		if readHeader > 0 {
			s.readHeaderTimeout = readHeader
		}
		if shutdown > 0 {
			s.shutdownTimeout = shutdown
		}
	}
}
