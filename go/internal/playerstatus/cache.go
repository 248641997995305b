package playerstatus

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DefaultCacheTTL = 10 * time.Minute

// RedisConfig holds connection parameters for the status cache.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	PoolSize   int
	TLSEnabled bool
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}

// CachedLookup fronts a Source with a Redis string cache.
//
// Key schema:
//
//	player_status:{player_id} - status tag, expires after ttl
type CachedLookup struct {
	rdb    *redis.Client
	source Source
	ttl    time.Duration
}

// NewCachedLookup creates a CachedLookup. A non-positive ttl uses DefaultCacheTTL.
func NewCachedLookup(rdb *redis.Client, source Source, ttl time.Duration) *CachedLookup {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedLookup{rdb: rdb, source: source, ttl: ttl}
}

func statusKey(playerID uuid.UUID) string { return "player_status:" + playerID.String() }

// LookupPlayerStatus serves from cache when possible. Cache errors fall
// through to the source; source failures are not cached.
func (c *CachedLookup) LookupPlayerStatus(ctx context.Context, playerID uuid.UUID) models.PlayerStatus {
	key := statusKey(playerID)

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil && cached != "":
		return models.PlayerStatus(cached)
	case err != nil && !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("player_id", playerID.String()).Msg("player status cache read failed")
	}

	status, cacheable := resolve(ctx, c.source, playerID)
	if !cacheable {
		return status
	}
	if err := c.rdb.Set(ctx, key, string(status), c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("player_id", playerID.String()).Msg("player status cache write failed")
	}
	return status
}

// Invalidate drops the cached status so the next lookup reads the source.
func (c *CachedLookup) Invalidate(ctx context.Context, playerID uuid.UUID) error {
	if err := c.rdb.Del(ctx, statusKey(playerID)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate player status %s: %w", playerID, err)
	}
	return nil
}
