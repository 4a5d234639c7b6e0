package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"interaction-service/model"
)

var ErrCacheMiss = errors.New("cache miss")

const DefaultCounterTTL = time.Hour

type CounterCache interface {
	Get(ctx context.Context, postID uuid.UUID) (*models.Counters, error)
	Put(ctx context.Context, postID uuid.UUID, counters models.Counters) (bool, error)
	Invalidate(ctx context.Context, postID uuid.UUID) error
}

// putIfNewer only overwrites a cached entry with counters that are at least
// as recent. Timestamps are unix microseconds to stay exact as Lua numbers.
var putIfNewer = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'updated_at')
if current and tonumber(current) > tonumber(ARGV[3]) then
	return 0
end
redis.call('HSET', KEYS[1], 'likes', ARGV[1], 'comments', ARGV[2], 'updated_at', ARGV[3])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return 1
`)

type redisCounterCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCounterCache(client *redis.Client, ttl time.Duration) CounterCache {
	if ttl <= 0 {
		ttl = DefaultCounterTTL
	}
	return &redisCounterCache{redis: client, ttl: ttl}
}

func counterKey(postID uuid.UUID) string {
	return fmt.Sprintf("post:counters:%s", postID.String())
}

// Get returns the cached counters of a post or ErrCacheMiss
func (c *redisCounterCache) Get(ctx context.Context, postID uuid.UUID) (*models.Counters, error) {
	fields, err := c.redis.HGetAll(ctx, counterKey(postID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get cached counters: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrCacheMiss
	}

	likes, err := strconv.ParseInt(fields["likes"], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("corrupt cached likes for %s: %w", postID, err)
	}
	comments, err := strconv.ParseInt(fields["comments"], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("corrupt cached comments for %s: %w", postID, err)
	}
	updatedAt, err := strconv.ParseInt(fields["updated_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt cached updated_at for %s: %w", postID, err)
	}

	return &models.Counters{
		LikesCount:    int32(likes),
		CommentsCount: int32(comments),
		UpdatedAt:     time.UnixMicro(updatedAt).UTC(),
	}, nil
}

// Put stores counters unless a newer value is already cached. It reports
// whether the value was written.
func (c *redisCounterCache) Put(ctx context.Context, postID uuid.UUID, counters models.Counters) (bool, error) {
	written, err := putIfNewer.Run(ctx, c.redis,
		[]string{counterKey(postID)},
		counters.LikesCount,
		counters.CommentsCount,
		counters.UpdatedAt.UnixMicro(),
		c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to cache counters: %w", err)
	}
	return written == 1, nil
}

// Invalidate removes cached counters for a post
func (c *redisCounterCache) Invalidate(ctx context.Context, postID uuid.UUID) error {
	if err := c.redis.Del(ctx, counterKey(postID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate counters: %w", err)
	}
	return nil
}
