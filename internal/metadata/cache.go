package metadata

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"mangashelf/pkg/models"
)

const cachePrefix = "isbn:"

// Cache remembers resolved metadata per ISBN. A ttl <= 0 keeps the entry
// until it is evicted.
type Cache interface {
	Load(ctx context.Context, isbn string) (*models.Metadata, bool, error)
	Save(ctx context.Context, md *models.Metadata, ttl time.Duration) error
	Evict(ctx context.Context, isbn string) error
}

type cachedMetadata struct {
	md      models.Metadata
	expires time.Time // zero: never
}

// MemoryCache is a process local Cache; expired entries are dropped on read.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]cachedMetadata
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]cachedMetadata{}, now: time.Now}
}

func (c *MemoryCache) Load(_ context.Context, isbn string) (*models.Metadata, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[isbn]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && c.now().After(e.expires) {
		delete(c.entries, isbn)
		return nil, false, nil
	}
	md := e.md
	return &md, true, nil
}

func (c *MemoryCache) Save(_ context.Context, md *models.Metadata, ttl time.Duration) error {
	e := cachedMetadata{md: *md}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[md.ISBN] = e
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Evict(_ context.Context, isbn string) error {
	c.mu.Lock()
	delete(c.entries, isbn)
	c.mu.Unlock()
	return nil
}

// RedisCache stores metadata as JSON under "isbn:<isbn>" so several API
// servers share lookups.
type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(opt *redis.Options) *RedisCache {
	return &RedisCache{Client: redis.NewClient(opt)}
}

func (c *RedisCache) Load(ctx context.Context, isbn string) (*models.Metadata, bool, error) {
	b, err := c.Client.Get(ctx, cachePrefix+isbn).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var md models.Metadata
	if err := json.Unmarshal(b, &md); err != nil {
		// unreadable entries count as misses and get overwritten
		return nil, false, nil
	}
	return &md, true, nil
}

func (c *RedisCache) Save(ctx context.Context, md *models.Metadata, ttl time.Duration) error {
	b, err := json.Marshal(md)
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	return c.Client.Set(ctx, cachePrefix+md.ISBN, b, ttl).Err()
}

func (c *RedisCache) Evict(ctx context.Context, isbn string) error {
	return c.Client.Del(ctx, cachePrefix+isbn).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}
