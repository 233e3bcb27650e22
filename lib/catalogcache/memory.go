package catalogcache

import (
	"context"
	"cookclip/lib/platforms/foodsafety"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type MemoryBackend struct {
	cache *expirable.LRU[string, []foodsafety.Recipe]
}

func NewMemoryBackend(ttl time.Duration) MemoryBackend {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return MemoryBackend{
		cache: expirable.NewLRU[string, []foodsafety.Recipe](16, nil, ttl),
	}
}

func (b MemoryBackend) Get(_ context.Context, key string) ([]foodsafety.Recipe, bool, error) {
	rows, ok := b.cache.Get(key)
	return rows, ok, nil
}

func (b MemoryBackend) Set(_ context.Context, key string, rows []foodsafety.Recipe) error {
	b.cache.Add(key, rows)
	return nil
}

func (b MemoryBackend) Delete(_ context.Context, key string) error {
	b.cache.Remove(key)
	return nil
}
