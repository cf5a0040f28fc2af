// Package cache stores rendered trainer details so repeated detail reads skip
// the configs join. Entries are invalidated whenever a trainer's configs change.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"auto_trainer/entity"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverNone   = "none"

	keyPrefix        = "auto-trainer:trainer-detail:"
	generationPrefix = "auto-trainer:trainer-detail-gen:"
)

var ErrRedisClientNil = errors.New("redis client is nil")

// DetailCache caches trainer details by trainer id. A miss returns
// (nil, false, nil).
//
// Every Invalidate bumps the trainer's generation. Set stores the detail only
// while the generation still equals the one read before the detail was
// loaded, so a load racing a config mutation never repopulates the entry.
type DetailCache interface {
	Get(ctx context.Context, trainerID string) (*entity.TrainerDetailWithConfigs, bool, error)
	Generation(ctx context.Context, trainerID string) (uint64, error)
	Set(ctx context.Context, detail *entity.TrainerDetailWithConfigs, generation uint64) (bool, error)
	Invalidate(ctx context.Context, trainerID string) error
}

// New builds the cache named by driver.
func New(driver string, ttl time.Duration, client *redis.Client) (DetailCache, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverMemory:
		return NewMemoryCache(ttl), nil
	case DriverRedis:
		if client == nil {
			return nil, ErrRedisClientNil
		}
		return NewRedisCache(client, ttl), nil
	case DriverNone:
		return NoopCache{}, nil
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", driver)
	}
}

func key(trainerID string) string {
	return keyPrefix + trainerID
}

func generationKey(trainerID string) string {
	return generationPrefix + trainerID
}

// cloneDetail deep-copies the configs and the active config so the cached
// value shares no memory with callers.
func cloneDetail(detail entity.TrainerDetailWithConfigs) entity.TrainerDetailWithConfigs {
	out := detail
	if detail.Configs != nil {
		out.Configs = make([]entity.TrainerConfigDetail, len(detail.Configs))
		for i, cfg := range detail.Configs {
			out.Configs[i] = cfg.Clone()
		}
	}
	if detail.ActiveConfig != nil {
		active := detail.ActiveConfig.Clone()
		out.ActiveConfig = &active
	}
	return out
}

type MemoryCache struct {
	mu          sync.Mutex
	store       *gocache.Cache
	generations map[string]uint64
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		store:       gocache.New(ttl, ttl*2),
		generations: make(map[string]uint64),
	}
}

func (c *MemoryCache) Get(_ context.Context, trainerID string) (*entity.TrainerDetailWithConfigs, bool, error) {
	cached, found := c.store.Get(key(trainerID))
	if !found {
		return nil, false, nil
	}
	detail, ok := cached.(entity.TrainerDetailWithConfigs)
	if !ok {
		c.store.Delete(key(trainerID))
		return nil, false, nil
	}
	detail = cloneDetail(detail)
	return &detail, true, nil
}

func (c *MemoryCache) Generation(_ context.Context, trainerID string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[trainerID], nil
}

func (c *MemoryCache) Set(_ context.Context, detail *entity.TrainerDetailWithConfigs, generation uint64) (bool, error) {
	if detail == nil {
		return false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generations[detail.ID] != generation {
		return false, nil
	}
	c.store.Set(key(detail.ID), cloneDetail(*detail), gocache.DefaultExpiration)
	return true, nil
}

func (c *MemoryCache) Invalidate(_ context.Context, trainerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[trainerID]++
	c.store.Delete(key(trainerID))
	return nil
}

func (c *MemoryCache) ItemCount() int {
	return c.store.ItemCount()
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, trainerID string) (*entity.TrainerDetailWithConfigs, bool, error) {
	raw, err := c.client.Get(ctx, key(trainerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s failed: %w", key(trainerID), err)
	}

	var detail entity.TrainerDetailWithConfigs
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, false, fmt.Errorf("parse cached trainer detail failed (id=%s): %w", trainerID, err)
	}
	return &detail, true, nil
}

func (c *RedisCache) Generation(ctx context.Context, trainerID string) (uint64, error) {
	generation, err := c.client.Get(ctx, generationKey(trainerID)).Uint64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get %s failed: %w", generationKey(trainerID), err)
	}
	return generation, nil
}

// Set writes the detail under WATCH on the generation key; a concurrent
// Invalidate aborts the transaction.
func (c *RedisCache) Set(ctx context.Context, detail *entity.TrainerDetailWithConfigs, generation uint64) (bool, error) {
	if detail == nil {
		return false, nil
	}
	payload, err := json.Marshal(detail)
	if err != nil {
		return false, fmt.Errorf("encode trainer detail failed: %w", err)
	}

	stored := false
	genKey := generationKey(detail.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(detail.ID), payload, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis set %s failed: %w", key(detail.ID), err)
	}
	return stored, nil
}

func (c *RedisCache) Invalidate(ctx context.Context, trainerID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(trainerID))
		pipe.Del(ctx, key(trainerID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate %s failed: %w", key(trainerID), err)
	}
	return nil
}

// NoopCache never stores anything.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*entity.TrainerDetailWithConfigs, bool, error) {
	return nil, false, nil
}

func (NoopCache) Generation(context.Context, string) (uint64, error) {
	return 0, nil
}

func (NoopCache) Set(context.Context, *entity.TrainerDetailWithConfigs, uint64) (bool, error) {
	return false, nil
}

func (NoopCache) Invalidate(context.Context, string) error {
	return nil
}
