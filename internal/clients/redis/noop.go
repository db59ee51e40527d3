package redis

import (
	"context"
	"time"
)

type noopCache struct{}

// NewNoopCache returns a Cache where every get is a miss and every
// write is discarded.
func NewNoopCache() Cache {
	return noopCache{}
}

func (noopCache) Get(ctx context.Context, namespace, key string, dest any) bool { return false }

func (noopCache) Set(ctx context.Context, namespace, key string, value any, ttl time.Duration) {}

func (noopCache) Delete(ctx context.Context, namespace, key string) {}

func (noopCache) Clear(ctx context.Context, namespace string) {}

func (noopCache) Close() error { return nil }
