package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Krushna2656/agentic-honeypot/internal/config"
	"github.com/Krushna2656/agentic-honeypot/pkg/logger"
)

// Key namespaces
const (
	KeyRateLimitPrefix = "ratelimit:"
	KeyClusterPrefix   = "cluster:"
	KeyDecisionPrefix  = "decision:"
)

// Cluster pins outlive any realistic conversation but not the keyspace
const clusterPinTTL = 7 * 24 * time.Hour

// Cached decisions are a short-lived replica lookup, not a record
const decisionTTL = 24 * time.Hour

// ErrCacheMiss is returned when a looked-up key is absent
var ErrCacheMiss = errors.New("cache miss")

// RedisCache wraps the Redis client with typed operations
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *logger.Logger
}

// NewRedis creates a new Redis client
func NewRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*RedisCache, error) {
	log = log.WithComponent("redis")
	log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("connecting to Redis")

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	log.Info().Msg("connected to Redis successfully")

	return &RedisCache{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		logger:    log,
	}, nil
}

// Ping verifies the connection is alive
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	c.logger.Info().Msg("closing Redis connection")
	return c.client.Close()
}

// key prepends the namespace prefix to a key
func (c *RedisCache) key(k string) string {
	return c.keyPrefix + k
}

// Get retrieves a value from cache
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, c.key(key)).Result()
}

// Set stores a value in cache with optional TTL
func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

// SetJSON marshals and stores a value in cache
func (c *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.Set(ctx, key, string(data), ttl)
}

// GetJSON retrieves and unmarshals a JSON value from cache
func (c *RedisCache) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

// CacheDecision stores one turn's decision keyed by session and turn
// index so replicas and late consumers can look it up
func (c *RedisCache) CacheDecision(ctx context.Context, sessionID string, turn int, decision any) error {
	key := fmt.Sprintf("%s%s:%d", KeyDecisionPrefix, sessionID, turn)
	return c.SetJSON(ctx, key, decision, decisionTTL)
}

// GetDecision loads a cached turn decision into dest. Returns
// ErrCacheMiss when no decision is cached for that turn.
func (c *RedisCache) GetDecision(ctx context.Context, sessionID string, turn int, dest any) error {
	key := fmt.Sprintf("%s%s:%d", KeyDecisionPrefix, sessionID, turn)
	err := c.GetJSON(ctx, key, dest)
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	return err
}

// SetNX sets a value only if the key does not exist
func (c *RedisCache) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, c.key(key), value, ttl).Result()
}

// PinClusterID registers a session's cluster id, first writer wins.
// Returns the value actually pinned, which may differ from clusterID
// when another replica got there first.
func (c *RedisCache) PinClusterID(ctx context.Context, sessionID, clusterID string) (string, error) {
	key := KeyClusterPrefix + sessionID

	ok, err := c.SetNX(ctx, key, clusterID, clusterPinTTL)
	if err != nil {
		return "", fmt.Errorf("failed to pin cluster id: %w", err)
	}
	if ok {
		return clusterID, nil
	}

	pinned, err := c.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return clusterID, nil
		}
		return "", fmt.Errorf("failed to read pinned cluster id: %w", err)
	}
	return pinned, nil
}

// CheckRateLimit checks and increments a fixed-window rate limit
// counter. Returns (allowed, remaining, resetTime, error).
func (c *RedisCache) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, time.Time, error) {
	now := time.Now()
	windowKey := fmt.Sprintf("%s%s:%d", KeyRateLimitPrefix, key, now.Unix()/int64(window.Seconds()))

	pipe := c.client.Pipeline()
	incr := pipe.Incr(ctx, c.key(windowKey))
	pipe.Expire(ctx, c.key(windowKey), window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := incr.Val()
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= limit, remaining, now.Add(window), nil
}
