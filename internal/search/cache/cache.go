// internal/search/cache/cache.go

// Package cache stores enhanced results keyed by the normalized query so
// repeated searches skip the providers.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"people-search/internal/common/config"
	"people-search/internal/common/database"
	"people-search/internal/common/logger"
	"people-search/internal/common/metrics"
	"people-search/internal/models"
)

const keyPrefix = "search:"

// Cache is safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (*models.EnhancedResult, bool, error)
	Set(ctx context.Context, key string, result *models.EnhancedResult) error
	Backend() string
}

// Key derives the cache key of a normalized query. Queries that normalize
// to the same fields share a key.
func Key(q models.Query) string {
	payload, _ := json.Marshal(q.Fields())
	sum := sha256.Sum256(append([]byte(string(q.Type)+"\x00"), payload...))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// New picks the backend named in cfg. redisClient may be nil unless the
// backend is redis.
func New(cfg config.SearchConfig, redisClient *database.RedisClient, log logger.Logger) (Cache, error) {
	ttl := config.GetDuration(cfg.CacheTTL)
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		if redisClient == nil {
			return nil, errors.New("redis cache backend requires a redis client")
		}
		return NewRedis(redisClient, ttl, log), nil
	case config.CacheBackendMemory:
		return NewMemory(cfg.CacheSize, ttl), nil
	case config.CacheBackendNone, "":
		return Noop{}, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
}

func record(backend, result string) {
	metrics.CacheLookups.WithLabelValues(backend, result).Inc()
}

// --- Redis ---

type Redis struct {
	client *database.RedisClient
	ttl    time.Duration
	log    logger.Logger
}

func NewRedis(client *database.RedisClient, ttl time.Duration, log logger.Logger) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
		log:    log.WithFields(map[string]interface{}{"cache": config.CacheBackendRedis}),
	}
}

func (c *Redis) Backend() string { return config.CacheBackendRedis }

func (c *Redis) Get(ctx context.Context, key string) (*models.EnhancedResult, bool, error) {
	data, err := c.client.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		record(c.Backend(), "miss")
		return nil, false, nil
	}
	if err != nil {
		record(c.Backend(), "error")
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var result models.EnhancedResult
	if err := json.Unmarshal(data, &result); err != nil {
		record(c.Backend(), "error")
		c.log.Warn("discarding undecodable cache entry", map[string]interface{}{"key": key, "error": err})
		_ = c.client.Del(ctx, key)
		return nil, false, nil
	}
	record(c.Backend(), "hit")
	return &result, true, nil
}

func (c *Redis) Set(ctx context.Context, key string, result *models.EnhancedResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// --- In-process LRU ---

type Memory struct {
	lru *expirable.LRU[string, models.EnhancedResult]
}

const defaultMemorySize = 1024

func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = defaultMemorySize
	}
	return &Memory{lru: expirable.NewLRU[string, models.EnhancedResult](size, nil, ttl)}
}

func (c *Memory) Backend() string { return config.CacheBackendMemory }

// Get returns a copy; callers may mutate it.
func (c *Memory) Get(_ context.Context, key string) (*models.EnhancedResult, bool, error) {
	result, ok := c.lru.Get(key)
	if !ok {
		record(c.Backend(), "miss")
		return nil, false, nil
	}
	record(c.Backend(), "hit")
	return &result, true, nil
}

func (c *Memory) Set(_ context.Context, key string, result *models.EnhancedResult) error {
	c.lru.Add(key, *result)
	return nil
}

func (c *Memory) Len() int {
	return c.lru.Len()
}

// --- Disabled ---

type Noop struct{}

func (Noop) Backend() string { return config.CacheBackendNone }

func (Noop) Get(context.Context, string) (*models.EnhancedResult, bool, error) {
	return nil, false, nil
}

func (Noop) Set(context.Context, string, *models.EnhancedResult) error {
	return nil
}
