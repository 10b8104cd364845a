package app

import (
	"context"
	"time"

	"github.com/guttosm/casebreak-service/config"
	"github.com/guttosm/casebreak-service/internal/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// IdempotencyComponents holds the checkout replay store.
type IdempotencyComponents struct {
	Config middleware.IdempotencyConfig
	// Redis is nil when records are kept in memory.
	Redis *middleware.RedisIdempotencyStore

	client *redis.Client
	memory *middleware.MemoryIdempotencyStore
}

// Close releases the Redis client or stops the memory sweeper.
func (c *IdempotencyComponents) Close(_ context.Context) error {
	if c.memory != nil {
		c.memory.Close()
	}
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// RedisClient returns the shared Redis connection, or nil when records are kept
// in memory. The rate limiters reuse it.
func (c *IdempotencyComponents) RedisClient() redis.UniversalClient {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client
}

// InitializeIdempotency connects to Redis when an address is configured. An
// unreachable Redis at startup falls back to process memory.
func InitializeIdempotency(cfg config.IdempotencyConfig) *IdempotencyComponents {
	mwCfg := middleware.IdempotencyConfig{TTL: cfg.TTL, LockTTL: time.Minute}
	if mwCfg.TTL <= 0 {
		mwCfg.TTL = 24 * time.Hour
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := middleware.NewRedisIdempotencyStore(client)

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := store.Ping(ctx)
		cancel()
		if err == nil {
			log.Info().Str("addr", cfg.RedisAddr).Msg("Idempotency records stored in Redis")
			mwCfg.Store = store
			return &IdempotencyComponents{Config: mwCfg, Redis: store, client: client}
		}

		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unreachable - keeping idempotency records in memory")
		_ = client.Close()
	}

	mem := middleware.NewMemoryIdempotencyStore()
	mwCfg.Store = mem
	return &IdempotencyComponents{Config: mwCfg, memory: mem}
}
