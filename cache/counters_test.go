package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interaction-service/model"
)

func newTestCache(t *testing.T) (CounterCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCounterCache(client, time.Minute), mr
}

func TestCounterCache_Miss(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCounterCache_PutGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	postID := uuid.New()
	updated := time.Date(2026, 6, 1, 8, 30, 0, 123000, time.UTC)

	written, err := c.Put(ctx, postID, models.Counters{LikesCount: 12, CommentsCount: 4, UpdatedAt: updated})
	require.NoError(t, err)
	assert.True(t, written)

	got, err := c.Get(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, int32(12), got.LikesCount)
	assert.Equal(t, int32(4), got.CommentsCount)
	assert.True(t, got.UpdatedAt.Equal(updated))

	assert.Equal(t, time.Minute, mr.TTL(counterKey(postID)))
}

func TestCounterCache_OlderValueDoesNotOverwrite(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	postID := uuid.New()
	newer := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	_, err := c.Put(ctx, postID, models.Counters{LikesCount: 20, UpdatedAt: newer})
	require.NoError(t, err)

	written, err := c.Put(ctx, postID, models.Counters{LikesCount: 3, UpdatedAt: newer.Add(-time.Second)})
	require.NoError(t, err)
	assert.False(t, written)

	got, err := c.Get(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, int32(20), got.LikesCount)

	written, err = c.Put(ctx, postID, models.Counters{LikesCount: 21, UpdatedAt: newer.Add(time.Second)})
	require.NoError(t, err)
	assert.True(t, written)
}

func TestCounterCache_Invalidate(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	postID := uuid.New()

	_, err := c.Put(ctx, postID, models.Counters{LikesCount: 1, UpdatedAt: time.Now()})
	require.NoError(t, err)
	require.True(t, mr.Exists(counterKey(postID)))

	require.NoError(t, c.Invalidate(ctx, postID))
	assert.False(t, mr.Exists(counterKey(postID)))
}

func TestCounterCache_Corrupt(t *testing.T) {
	c, mr := newTestCache(t)
	postID := uuid.New()

	mr.HSet(counterKey(postID), "likes", "many", "comments", "1", "updated_at", "1")

	_, err := c.Get(context.Background(), postID)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
