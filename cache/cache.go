package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// Cache is a TTL cache of exchange metadata keyed by symbol.
type Cache struct {
	c   *ristretto.Cache
	ttl time.Duration
}

func New(maxCost int64, ttl time.Duration) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c, ttl: ttl}, nil
}

func (c *Cache) Get(key string) (any, bool) { return c.c.Get(key) }

// Set stores val and waits for the write buffer so the next Get sees it.
func (c *Cache) Set(key string, val any) {
	if c.ttl > 0 {
		c.c.SetWithTTL(key, val, 1, c.ttl)
	} else {
		c.c.Set(key, val, 1)
	}
	c.c.Wait()
}

func (c *Cache) Del(key string) { c.c.Del(key) }

func (c *Cache) Close() { c.c.Close() }
