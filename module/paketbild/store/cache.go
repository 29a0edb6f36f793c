package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"PaketBild/tools/errs"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "paketbild:"

// RedisCache 缓存某个包裹已编码好的 Base64 图片列表
type RedisCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisCache(rdb redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func cacheKey(paketID string) string {
	return cacheKeyPrefix + paketID
}

// Get 未命中时 ok=false 且 err=nil
func (c *RedisCache) Get(ctx context.Context, paketID string) ([]string, bool, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(paketID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.WrapMsg(err, "redis get", "paket_id", paketID)
	}
	var images []string
	if err := json.Unmarshal(raw, &images); err != nil {
		return nil, false, errs.WrapMsg(err, "decode cached images", "paket_id", paketID)
	}
	return images, true, nil
}

func (c *RedisCache) Set(ctx context.Context, paketID string, images []string) error {
	raw, err := json.Marshal(images)
	if err != nil {
		return errs.Wrap(err)
	}
	if err := c.rdb.Set(ctx, cacheKey(paketID), raw, c.ttl).Err(); err != nil {
		return errs.WrapMsg(err, "redis set", "paket_id", paketID)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, paketID string) error {
	if err := c.rdb.Del(ctx, cacheKey(paketID)).Err(); err != nil {
		return errs.WrapMsg(err, "redis del", "paket_id", paketID)
	}
	return nil
}
