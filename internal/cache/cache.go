package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/JustJay7/case-lookup/internal/lookup"
	"github.com/JustJay7/case-lookup/pkg/logger"
)

type Cache interface {
	Get(key string) (*lookup.Result, bool)
	Set(key string, value *lookup.Result)
	Delete(key string)
	Clear()
	Stats() CacheStats
}

type CacheStats struct {
	Hits       int64     `json:"hits"`
	Misses     int64     `json:"misses"`
	Size       int       `json:"size"`
	LastAccess time.Time `json:"last_access"`
}

// ResultCache is a size-bounded TTL cache of lookup results. When full, the
// entry closest to expiry is evicted.
type ResultCache struct {
	cache   *cache.Cache
	mu      sync.Mutex
	stats   CacheStats
	maxSize int
}

func NewCache(maxSize int, ttl time.Duration) *ResultCache {
	return &ResultCache{
		cache:   cache.New(ttl, ttl*2),
		maxSize: maxSize,
	}
}

func (c *ResultCache) Get(key string) (*lookup.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.LastAccess = time.Now()

	if data, found := c.cache.Get(key); found {
		if res, ok := data.(*lookup.Result); ok {
			c.stats.Hits++
			cp := *res
			return &cp, true
		}
	}

	c.stats.Misses++
	return nil, false
}

func (c *ResultCache) Set(key string, value *lookup.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.cache.Get(key); !exists && c.maxSize > 0 && c.cache.ItemCount() >= c.maxSize {
		c.removeOldest()
	}

	cp := *value
	cp.FromCache = false
	c.cache.Set(key, &cp, cache.DefaultExpiration)
}

func (c *ResultCache) Delete(key string) {
	c.cache.Delete(key)
}

func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Flush()
	c.stats = CacheStats{}
}

func (c *ResultCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Size = c.cache.ItemCount()
	return c.stats
}

func (c *ResultCache) removeOldest() {
	var oldestKey string
	var oldest int64

	for key, item := range c.cache.Items() {
		if oldestKey == "" || item.Expiration < oldest {
			oldestKey = key
			oldest = item.Expiration
		}
	}

	if oldestKey != "" {
		c.cache.Delete(oldestKey)
	}
}

func GenerateCacheKey(q lookup.Query) string {
	return fmt.Sprintf("case:%s:%s:%d", q.CaseType, q.CaseNumber, q.FilingYear)
}

// CachedClient serves repeated successful lookups from a Cache. Failures
// are never cached.
type CachedClient struct {
	next   lookup.Client
	cache  Cache
	logger *logger.Logger
}

func NewCachedClient(next lookup.Client, c Cache, logger *logger.Logger) *CachedClient {
	return &CachedClient{next: next, cache: c, logger: logger}
}

func (c *CachedClient) Search(ctx context.Context, q lookup.Query) (*lookup.Result, error) {
	key := GenerateCacheKey(q)
	if res, found := c.cache.Get(key); found {
		c.logger.Info("Cache hit", "key", key)
		res.FromCache = true
		return res, nil
	}

	res, err := c.next.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, res)
	return res, nil
}
