package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/msusur/healthmonitoring/health"
	"github.com/msusur/healthmonitoring/observe"
)

const (
	historyKeyPrefix = "healthmon:stats:"
	latestKey        = "healthmon:latest"
)

// RedisConfig configures the Redis connection.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Options returns the go-redis client options.
func (c RedisConfig) Options() *redis.Options {
	return &redis.Options{
		Addr:            c.Addr,
		Password:        c.Password,
		DB:              c.DB,
		DisableIdentity: true,
	}
}

// RedisSink stores snapshots in Redis: a capped list per endpoint under
// healthmon:stats:<id>, newest first, and the newest snapshot of every
// endpoint in the healthmon:latest hash.
type RedisSink struct {
	client  redis.UniversalClient
	history int64
	logger  observe.Logger
}

// NewRedisSink connects to Redis and verifies the connection.
func NewRedisSink(ctx context.Context, cfg RedisConfig, history int, logger observe.Logger) (*RedisSink, error) {
	client := redis.NewClient(cfg.Options())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("stats: connect to redis %s: %w", cfg.Addr, err)
	}
	return NewRedisSinkWithClient(client, history, logger), nil
}

// NewRedisSinkWithClient wraps an existing client.
func NewRedisSinkWithClient(client redis.UniversalClient, history int, logger observe.Logger) *RedisSink {
	if history <= 0 {
		history = DefaultHistory
	}
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &RedisSink{client: client, history: int64(history), logger: logger}
}

func historyKey(id uuid.UUID) string {
	return historyKeyPrefix + id.String()
}

// RecordEndpointStatistics writes h in one transaction. Failures are logged
// and otherwise ignored.
func (s *RedisSink) RecordEndpointStatistics(ctx context.Context, id uuid.UUID, h *health.EndpointHealth) {
	if h == nil {
		return
	}

	data, err := json.Marshal(h)
	if err != nil {
		s.logger.Error(ctx, "encode endpoint statistics", observe.Field{Key: "error", Value: err.Error()})
		return
	}

	key := historyKey(id)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, s.history-1)
		pipe.HSet(ctx, latestKey, id.String(), data)
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "record endpoint statistics",
			observe.Field{Key: "endpoint.id", Value: id.String()},
			observe.Field{Key: "error", Value: err.Error()},
		)
	}
}

// History returns the stored snapshots of id, newest first.
func (s *RedisSink) History(ctx context.Context, id uuid.UUID) ([]*health.EndpointHealth, error) {
	raw, err := s.client.LRange(ctx, historyKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("stats: read history: %w", err)
	}

	out := make([]*health.EndpointHealth, 0, len(raw))
	for _, item := range raw {
		var h health.EndpointHealth
		if err := json.Unmarshal([]byte(item), &h); err != nil {
			return nil, fmt.Errorf("stats: decode snapshot: %w", err)
		}
		out = append(out, &h)
	}
	return out, nil
}

// Latest returns the newest stored snapshot of id.
func (s *RedisSink) Latest(ctx context.Context, id uuid.UUID) (*health.EndpointHealth, bool, error) {
	raw, err := s.client.HGet(ctx, latestKey, id.String()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("stats: read latest: %w", err)
	}

	var h health.EndpointHealth
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		return nil, false, fmt.Errorf("stats: decode snapshot: %w", err)
	}
	return &h, true, nil
}

// Forget deletes everything stored for id.
func (s *RedisSink) Forget(ctx context.Context, id uuid.UUID) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, historyKey(id))
		pipe.HDel(ctx, latestKey, id.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("stats: forget %s: %w", id, err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisSink) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisSink)(nil)
