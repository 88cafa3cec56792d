package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"quickrent/model"
)

const (
	itemListKey = "items:list"
	itemListTTL = 60 * time.Second
)

// ItemCache is a read-through cache for the item list. Misses and Redis errors
// fall back to the database; writes just invalidate.
type ItemCache struct {
	rdb *redis.Client
}

func NewItemCache(rdb *redis.Client) *ItemCache { return &ItemCache{rdb: rdb} }

// NewRedisClient builds the client from config values.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (c *ItemCache) GetList(ctx context.Context) ([]model.Item, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, itemListKey).Bytes()
	if err != nil {
		return nil, false
	}
	var items []model.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (c *ItemCache) SetList(ctx context.Context, items []model.Item) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, itemListKey, raw, itemListTTL)
}

func (c *ItemCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, itemListKey)
}
