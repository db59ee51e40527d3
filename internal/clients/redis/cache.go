package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/twotable/twotable-backend/internal/pkg/logger"
	"github.com/twotable/twotable-backend/internal/utils"
)

// Cache is a namespaced TTL key-value store. Every operation degrades
// to a miss or a no-op on backend failure so callers never have to
// branch on cache health.
type Cache interface {
	Get(ctx context.Context, namespace, key string, dest any) bool
	Set(ctx context.Context, namespace, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, namespace, key string)
	Clear(ctx context.Context, namespace string)
	Close() error
}

type cache struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewCache connects to REDIS_ADDR. On any connection failure it returns
// a noop cache instead of an error, so the server keeps working without
// Redis running.
func NewCache(log *logger.Logger) Cache {
	clientLog := log.With("client", "RedisCache")

	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log))
	if addr == "" {
		clientLog.Warn("REDIS_ADDR not set, caching disabled")
		return NewNoopCache()
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    utils.GetEnv("REDIS_PASSWORD", "", log),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		clientLog.Warn("redis unreachable, caching disabled", "error", err)
		return NewNoopCache()
	}

	clientLog.Info("Connected to redis", "addr", addr)
	return &cache{log: clientLog, rdb: rdb}
}

func cacheKey(namespace, key string) string {
	return fmt.Sprintf("twotable:%s:%s", namespace, key)
}

func (c *cache) Get(ctx context.Context, namespace, key string, dest any) bool {
	raw, err := c.rdb.Get(ctx, cacheKey(namespace, key)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("cache get failed", "namespace", namespace, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn("cache payload corrupt", "namespace", namespace, "error", err)
		return false
	}
	return true
}

func (c *cache) Set(ctx context.Context, namespace, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache marshal failed", "namespace", namespace, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(namespace, key), raw, ttl).Err(); err != nil {
		c.log.Warn("cache set failed", "namespace", namespace, "error", err)
	}
}

func (c *cache) Delete(ctx context.Context, namespace, key string) {
	if err := c.rdb.Del(ctx, cacheKey(namespace, key)).Err(); err != nil {
		c.log.Warn("cache delete failed", "namespace", namespace, "error", err)
	}
}

// Clear removes every key in a namespace via SCAN, never KEYS.
func (c *cache) Clear(ctx context.Context, namespace string) {
	pattern := cacheKey(namespace, "*")
	iter := c.rdb.Scan(ctx, 0, pattern, 200).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			c.log.Warn("cache clear delete failed", "namespace", namespace, "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("cache clear scan failed", "namespace", namespace, "error", err)
	}
}

func (c *cache) Close() error {
	return c.rdb.Close()
}
