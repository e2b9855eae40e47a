// Package redis caches notebook statistics in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-srs/internal/domain"
	"github.com/phrazzld/hanzi-srs/internal/platform/logger"
	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int

	// StatsTTL bounds how long cached statistics may be served.
	StatsTTL time.Duration

	PoolSize    int
	MaxRetries  int
	DialTimeout time.Duration
}

// DefaultConfig returns the connection settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Host:        "localhost",
		Port:        6379,
		StatsTTL:    DefaultStatsTTL,
		PoolSize:    10,
		MaxRetries:  3,
		DialTimeout: 5 * time.Second,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DefaultStatsTTL is applied when Config.StatsTTL is zero.
const DefaultStatsTTL = 5 * time.Minute

// PrefixStats namespaces statistics keys.
const PrefixStats = "notebook:stats:"

// PrefixStatsGeneration namespaces the per-learner invalidation counters.
const PrefixStatsGeneration = "notebook:stats-gen:"

// generationTTL keeps counters of idle learners from accumulating. It must
// outlive any single statistics query.
const generationTTL = 24 * time.Hour

var (
	// ErrCacheMiss is returned when no statistics are cached for the learner.
	ErrCacheMiss = errors.New("cache: key not found")

	// ErrCacheConnection is returned when Redis cannot be reached at startup.
	ErrCacheConnection = errors.New("cache: connection failed")

	// ErrCacheSerialization is returned when a cached value cannot be encoded or decoded.
	ErrCacheSerialization = errors.New("cache: serialization failed")
)

// StatsCache stores per-learner notebook statistics.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache connects to Redis and verifies the connection.
func NewStatsCache(cfg Config) (*StatsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: cfg.DialTimeout,
	})

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}

	return NewStatsCacheWithClient(client, cfg.StatsTTL), nil
}

// NewStatsCacheWithClient wraps an existing client.
func NewStatsCacheWithClient(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	return &StatsCache{client: client, ttl: ttl}
}

// Close closes the Redis connection.
func (c *StatsCache) Close() error {
	return c.client.Close()
}

// Ping checks if Redis is reachable.
func (c *StatsCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func statsKey(userID uuid.UUID) string {
	return PrefixStats + userID.String()
}

func statsGenerationKey(userID uuid.UUID) string {
	return PrefixStatsGeneration + userID.String()
}

// StatsGeneration returns the learner's invalidation counter. Read it before
// computing statistics and hand it to SetStats.
func (c *StatsCache) StatsGeneration(ctx context.Context, userID uuid.UUID) (int64, error) {
	gen, err := c.client.Get(ctx, statsGenerationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// GetStats returns the cached statistics for a learner or ErrCacheMiss.
func (c *StatsCache) GetStats(ctx context.Context, userID uuid.UUID) (*domain.NotebookStats, error) {
	data, err := c.client.Get(ctx, statsKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var stats domain.NotebookStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}
	return &stats, nil
}

// SetStats caches statistics for a learner until the configured TTL expires.
// The write is skipped when the learner's notebook was invalidated after
// generation was read, so a snapshot taken before a review never outlives it.
func (c *StatsCache) SetStats(
	ctx context.Context,
	userID uuid.UUID,
	generation int64,
	stats *domain.NotebookStats,
) error {
	if stats == nil {
		return fmt.Errorf("%w: nil stats", ErrCacheSerialization)
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}

	genKey := statsGenerationKey(userID)
	stale := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			stale = true
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, statsKey(userID), data, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		stale, err = true, nil
	}
	if stale {
		logger.FromContextOrDefault(ctx, nil).Debug("skipped caching stale notebook stats",
			"user_id", userID,
			"generation", generation)
	}
	return err
}

// InvalidateStats drops the cached statistics for a learner and advances the
// generation so in-flight SetStats calls for the old snapshot are discarded.
func (c *StatsCache) InvalidateStats(ctx context.Context, userID uuid.UUID) error {
	genKey := statsGenerationKey(userID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, statsKey(userID))
		return nil
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, nil).Warn("failed to invalidate notebook stats",
			"user_id", userID,
			"error", err)
		return err
	}
	return nil
}
