package cache

import (
	"context"
	"sync"
	"time"

	"github.com/easytalk/easytalk-backend/internal/logger"
	"github.com/easytalk/easytalk-backend/internal/repos"
	"github.com/easytalk/easytalk-backend/internal/types"
)

// CatalogCache keeps a time-bounded snapshot of the achievement
// catalog in memory. The snapshot is immutable: refresh builds a new
// slice and swaps it wholesale, never mutating the published one, so
// concurrent readers need no coordination beyond the swap lock.
type CatalogCache struct {
	repo repos.CatalogRepo
	ttl  time.Duration
	log  *logger.Logger

	mu        sync.RWMutex
	items     []*types.CatalogItem
	fetchedAt time.Time

	// now is swappable for tests.
	now func() time.Time
}

func NewCatalogCache(repo repos.CatalogRepo, ttl time.Duration, baseLog *logger.Logger) *CatalogCache {
	return &CatalogCache{
		repo: repo,
		ttl:  ttl,
		log:  baseLog.With("cache", "CatalogCache"),
		now:  time.Now,
	}
}

// Items returns the cached catalog, refreshing from the store when the
// snapshot is missing or older than the TTL. A failed refresh falls
// back to the stale snapshot when one exists.
func (c *CatalogCache) Items(ctx context.Context) ([]*types.CatalogItem, error) {
	c.mu.RLock()
	items, fetchedAt := c.items, c.fetchedAt
	c.mu.RUnlock()

	if items != nil && c.now().Sub(fetchedAt) < c.ttl {
		return items, nil
	}

	fresh, err := c.repo.List(ctx)
	if err != nil {
		if items != nil {
			c.log.Warn("catalog refresh failed, serving stale snapshot", "error", err)
			return items, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.items = fresh
	c.fetchedAt = c.now()
	c.mu.Unlock()
	c.log.Debug("catalog snapshot refreshed", "items", len(fresh))
	return fresh, nil
}

// Invalidate drops the snapshot so the next read refetches.
func (c *CatalogCache) Invalidate() {
	c.mu.Lock()
	c.items = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}
