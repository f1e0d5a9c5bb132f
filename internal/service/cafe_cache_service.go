package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gaming-cafe-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const RedisCafeKeyPrefix = "cafe:inventory:"

// CafeCache keeps read-mostly cafe inventory out of the database on the
// availability path. Booking creation always reads the locked row instead.
type CafeCache interface {
	// Get returns nil, nil on a miss
	Get(ctx context.Context, id uuid.UUID) (*entity.Cafe, error)
	Set(ctx context.Context, cafe *entity.Cafe) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}

type redisCafeCache struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
}

// NewCafeCache returns a Redis-backed cache, or a cache that always misses
// when redisClient is nil.
func NewCafeCache(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) CafeCache {
	if redisClient == nil {
		return noopCafeCache{}
	}
	return &redisCafeCache{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
	}
}

func cafeCacheKey(id uuid.UUID) string {
	return RedisCafeKeyPrefix + id.String()
}

func (c *redisCafeCache) Get(ctx context.Context, id uuid.UUID) (*entity.Cafe, error) {
	raw, err := c.redisClient.Get(ctx, cafeCacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var cafe entity.Cafe
	if err := json.Unmarshal(raw, &cafe); err != nil {
		c.log.Warnf("Dropping unreadable cache entry for cafe %s: %+v", id, err)
		return nil, nil
	}
	return &cafe, nil
}

func (c *redisCafeCache) Set(ctx context.Context, cafe *entity.Cafe) error {
	raw, err := json.Marshal(cafe)
	if err != nil {
		return err
	}
	return c.redisClient.Set(ctx, cafeCacheKey(cafe.ID), raw, c.ttl).Err()
}

func (c *redisCafeCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	return c.redisClient.Del(ctx, cafeCacheKey(id)).Err()
}

type noopCafeCache struct{}

func (noopCafeCache) Get(context.Context, uuid.UUID) (*entity.Cafe, error) { return nil, nil }
func (noopCafeCache) Set(context.Context, *entity.Cafe) error              { return nil }
func (noopCafeCache) Invalidate(context.Context, uuid.UUID) error          { return nil }
