package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"auto_trainer/entity"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDetail(id string) *entity.TrainerDetailWithConfigs {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &entity.TrainerDetailWithConfigs{
		TrainerDetail: entity.TrainerDetail{
			ID:          id,
			Name:        "intent",
			Description: "payment intent",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		Configs: []entity.TrainerConfigDetail{},
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	_, found, err := c.Get(ctx, "trn_missing")
	require.NoError(t, err)
	assert.False(t, found)

	stored, err := c.Set(ctx, sampleDetail("trn_a"), 0)
	require.NoError(t, err)
	assert.True(t, stored)
	got, found, err := c.Get(ctx, "trn_a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "intent", got.Name)

	got.Name = "mutated"
	again, _, _ := c.Get(ctx, "trn_a")
	assert.Equal(t, "intent", again.Name)

	require.NoError(t, c.Invalidate(ctx, "trn_a"))
	_, found, _ = c.Get(ctx, "trn_a")
	assert.False(t, found)
	assert.Zero(t, c.ItemCount())
}

func TestMemoryCacheExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(20 * time.Millisecond)

	_, err := c.Set(ctx, sampleDetail("trn_a"), 0)
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)

	_, found, err := c.Get(ctx, "trn_a")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCacheDeepCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	detail := sampleDetail("trn_a")
	active := entity.TrainerConfigDetail{ID: "cfg_a", TaskDescription: "route"}
	detail.Configs = []entity.TrainerConfigDetail{active}
	detail.ActiveConfig = &active
	_, err := c.Set(ctx, detail, 0)
	require.NoError(t, err)

	detail.Configs[0].TaskDescription = "changed by caller"
	got, found, err := c.Get(ctx, "trn_a")
	require.NoError(t, err)
	require.True(t, found)
	got.Configs[0].TaskDescription = "changed by reader"
	got.ActiveConfig.TaskDescription = "changed by reader"

	again, _, _ := c.Get(ctx, "trn_a")
	assert.Equal(t, "route", again.Configs[0].TaskDescription)
	assert.Equal(t, "route", again.ActiveConfig.TaskDescription)
}

func TestMemoryCacheSkipsStaleGeneration(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	generation, err := c.Generation(ctx, "trn_a")
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, "trn_a"))

	stored, err := c.Set(ctx, sampleDetail("trn_a"), generation)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Zero(t, c.ItemCount())

	current, err := c.Generation(ctx, "trn_a")
	require.NoError(t, err)
	assert.Equal(t, generation+1, current)
	stored, err = c.Set(ctx, sampleDetail("trn_a"), current)
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestNew(t *testing.T) {
	c, err := New("", time.Minute, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)

	c, err = New("none", time.Minute, nil)
	require.NoError(t, err)
	assert.IsType(t, NoopCache{}, c)

	_, err = New("redis", time.Minute, nil)
	assert.ErrorIs(t, err, ErrRedisClientNil)

	_, err = New("memcached", time.Minute, nil)
	assert.Error(t, err)
}

func TestNoopCache(t *testing.T) {
	ctx := context.Background()
	var c NoopCache
	stored, err := c.Set(ctx, sampleDetail("trn_a"), 0)
	require.NoError(t, err)
	assert.False(t, stored)
	_, found, err := c.Get(ctx, "trn_a")
	require.NoError(t, err)
	assert.False(t, found)
}

// TestRedisCache runs against a live redis when REDIS_ADDR is set.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	c := NewRedisCache(client, time.Minute)

	require.NoError(t, c.Invalidate(ctx, "trn_redis"))
	generation, err := c.Generation(ctx, "trn_redis")
	require.NoError(t, err)
	stored, err := c.Set(ctx, sampleDetail("trn_redis"), generation)
	require.NoError(t, err)
	require.True(t, stored)
	got, found, err := c.Get(ctx, "trn_redis")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "payment intent", got.Description)
	assert.True(t, got.CreatedAt.Equal(sampleDetail("trn_redis").CreatedAt))

	require.NoError(t, c.Invalidate(ctx, "trn_redis"))
	_, found, err = c.Get(ctx, "trn_redis")
	require.NoError(t, err)
	assert.False(t, found)

	stored, err = c.Set(ctx, sampleDetail("trn_redis"), generation)
	require.NoError(t, err)
	assert.False(t, stored)
}
