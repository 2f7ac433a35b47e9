package snapshotcache

import (
	"time"

	"portfolio_scraper/internal/app/port"
	"portfolio_scraper/internal/domain/entity"

	"github.com/patrickmn/go-cache"
)

// goCacheImpl keeps snapshots in memory with a TTL.
type goCacheImpl struct {
	snapshots *cache.Cache
}

// NewGoCache creates a snapshot cache. Entries expire after ttl.
func NewGoCache(ttl, cleanupInterval time.Duration) port.SnapshotCache {
	return &goCacheImpl{snapshots: cache.New(ttl, cleanupInterval)}
}

func (c *goCacheImpl) Get(key string) (*entity.ProfileSnapshot, bool) {
	v, found := c.snapshots.Get(key)
	if !found {
		return nil, false
	}
	snapshot, ok := v.(*entity.ProfileSnapshot)
	return snapshot, ok
}

func (c *goCacheImpl) Set(key string, snapshot *entity.ProfileSnapshot) {
	c.snapshots.Set(key, snapshot, cache.DefaultExpiration)
}
