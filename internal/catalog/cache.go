package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by SnapshotCache.Get when nothing is cached.
var ErrCacheMiss = errors.New("catalog: cache miss")

// SnapshotCache keeps recently read item snapshots close to the cart.
type SnapshotCache interface {
	Get(ctx context.Context, id int64) (*ItemSnapshot, error)
	Set(ctx context.Context, snapshot *ItemSnapshot) error
	Invalidate(ctx context.Context, id int64) error
}

type redisKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CatalogItemKey(itemID int64) string
}

// RedisSnapshotCache stores snapshots as JSON under the catalog key namespace.
type RedisSnapshotCache struct {
	store redisKV
	ttl   time.Duration
}

func NewRedisSnapshotCache(store redisKV, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{store: store, ttl: ttl}
}

func (c *RedisSnapshotCache) Get(ctx context.Context, id int64) (*ItemSnapshot, error) {
	raw, err := c.store.Get(ctx, c.store.CatalogItemKey(id))
	if errors.Is(err, goredis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var snapshot ItemSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *RedisSnapshotCache) Set(ctx context.Context, snapshot *ItemSnapshot) error {
	if snapshot == nil {
		return nil
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.store.CatalogItemKey(snapshot.ID), payload, c.ttl)
}

func (c *RedisSnapshotCache) Invalidate(ctx context.Context, id int64) error {
	return c.store.Del(ctx, c.store.CatalogItemKey(id))
}

// noopCache is used when no redis is wired.
type noopCache struct{}

func (noopCache) Get(context.Context, int64) (*ItemSnapshot, error) { return nil, ErrCacheMiss }
func (noopCache) Set(context.Context, *ItemSnapshot) error          { return nil }
func (noopCache) Invalidate(context.Context, int64) error           { return nil }
