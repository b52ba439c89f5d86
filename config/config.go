package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/msusur/healthmonitoring/auth"
	"github.com/msusur/healthmonitoring/cache"
	"github.com/msusur/healthmonitoring/monitor"
	"github.com/msusur/healthmonitoring/observe"
	"github.com/msusur/healthmonitoring/probes"
	"github.com/msusur/healthmonitoring/sampler"
	"github.com/msusur/healthmonitoring/secret"
	"github.com/msusur/healthmonitoring/stats"
)

// EnvPrefix prefixes every environment override, e.g.
// HEALTHMON_SAMPLER_SHORT_TIMEOUT.
const EnvPrefix = "HEALTHMON"

// Config is the complete healthmon configuration.
type Config struct {
	Sampler   sampler.Settings          `mapstructure:"sampler"`
	Scheduler monitor.SchedulerConfig   `mapstructure:"scheduler"`
	Probes    probes.Config             `mapstructure:"probes"`
	Server    ServerConfig              `mapstructure:"server"`
	Stats     StatsConfig               `mapstructure:"stats"`
	Observe   observe.Config            `mapstructure:"observe"`
	Endpoints []monitor.EndpointConfig  `mapstructure:"endpoints"`
	Secrets   map[string]map[string]any `mapstructure:"secrets"`
}

// ServerConfig configures the status API.
type ServerConfig struct {
	Addr              string         `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration  `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration  `mapstructure:"shutdown_timeout"`
	CORSOrigins       []string       `mapstructure:"cors_origins"`
	OperatorRole      string         `mapstructure:"operator_role"`
	Cache             cache.Policy   `mapstructure:"cache"`
	Auth              auth.JWTConfig `mapstructure:"auth"`
}

// StatsConfig configures where check results are recorded.
type StatsConfig struct {
	// History is the number of results kept per endpoint.
	History int `mapstructure:"history"`

	// Redis enables the Redis sink when Addr is set.
	Redis stats.RedisConfig `mapstructure:"redis"`
}

// RedisEnabled reports whether results are also recorded in Redis.
func (c StatsConfig) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

func setDefaults(v *viper.Viper) {
	// sampler
	v.SetDefault("sampler.short_timeout", "2s")
	v.SetDefault("sampler.failure_timeout", "20s")
	v.SetDefault("sampler.healthy_response_time_limit", "3s")

	// scheduler
	v.SetDefault("scheduler.interval", "30s")
	v.SetDefault("scheduler.max_concurrent", 32)

	// probes
	v.SetDefault("probes.user_agent", "healthmon")
	v.SetDefault("probes.max_concurrent", 0)
	v.SetDefault("probes.max_wait", "0s")
	v.SetDefault("probes.rate_per_second", 0)
	v.SetDefault("probes.burst", 0)

	// server
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_header_timeout", "5s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.operator_role", "operator")
	v.SetDefault("server.cache.default_ttl", "2s")
	v.SetDefault("server.cache.max_ttl", "30s")
	v.SetDefault("server.auth.secret", "")
	v.SetDefault("server.auth.issuer", "")
	v.SetDefault("server.auth.audience", "")
	v.SetDefault("server.auth.roles_claim", "roles")
	v.SetDefault("server.auth.leeway", "0s")

	// stats
	v.SetDefault("stats.history", stats.DefaultHistory)
	v.SetDefault("stats.redis.addr", "")
	v.SetDefault("stats.redis.password", "")
	v.SetDefault("stats.redis.db", 0)

	// observe
	v.SetDefault("observe.service_name", "healthmon")
	v.SetDefault("observe.version", "dev")
	v.SetDefault("observe.tracing.enabled", false)
	v.SetDefault("observe.tracing.exporter", "none")
	v.SetDefault("observe.tracing.sample_pct", 1.0)
	v.SetDefault("observe.metrics.enabled", false)
	v.SetDefault("observe.metrics.exporter", "none")
	v.SetDefault("observe.logging.enabled", true)
	v.SetDefault("observe.logging.level", "info")
	v.SetDefault("observe.logging.file", "")
	v.SetDefault("observe.logging.max_size_mb", 100)
	v.SetDefault("observe.logging.max_backups", 3)
	v.SetDefault("observe.logging.max_age_days", 28)
	v.SetDefault("observe.logging.compress", false)
}

// Load reads the configuration from path (optional) and the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrRead, path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := c.Sampler.Validate(); err != nil {
		return fmt.Errorf("%w: sampler: %w", ErrInvalid, err)
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("%w: scheduler: %w", ErrInvalid, monitor.ErrInvalidInterval)
	}
	if err := c.Observe.Validate(); err != nil {
		return fmt.Errorf("%w: observe: %w", ErrInvalid, err)
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalid)
	}
	if c.Stats.History <= 0 {
		return fmt.Errorf("%w: stats.history must be positive", ErrInvalid)
	}

	seen := make(map[string]int, len(c.Endpoints))
	for i, ep := range c.Endpoints {
		if err := ep.Validate(); err != nil {
			return fmt.Errorf("%w: endpoints[%d]: %w", ErrInvalid, i, err)
		}
		if ep.ID == "" {
			continue
		}
		if j, dup := seen[ep.ID]; dup {
			return fmt.Errorf("%w: endpoints[%d] repeats id of endpoints[%d]", ErrInvalid, i, j)
		}
		seen[ep.ID] = i
	}
	return nil
}

// SecretResolver builds the resolver for the configured secret providers.
// The env provider is always available.
func (c *Config) SecretResolver() (*secret.Resolver, error) {
	r, err := secret.NewRegistry().Build(c.Secrets)
	if err != nil {
		return nil, fmt.Errorf("%w: secrets: %w", ErrInvalid, err)
	}
	return r, nil
}

// ResolveSecrets replaces ${ENV} and secretref: references in credentials
// with their values. Endpoint addresses are left alone; probes resolve them
// per call.
func (c *Config) ResolveSecrets(ctx context.Context, r *secret.Resolver) error {
	for _, field := range []*string{&c.Server.Auth.Secret, &c.Stats.Redis.Password} {
		if *field == "" {
			continue
		}
		v, err := r.ResolveValue(ctx, *field)
		if err != nil {
			return err
		}
		*field = v
	}
	return nil
}
