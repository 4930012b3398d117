// Package cache provides in-process caches backed by go-cache.
package cache

import (
	"time"

	"github.com/finance-tracker-ledger/internal/config"
	"github.com/finance-tracker-ledger/internal/domain/category"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const categoryKeyPrefix = "categories:"

// CategoryCache stores per-user category lists
type CategoryCache struct {
	store *gocache.Cache
}

// NewCategoryCache creates a cache whose expired entries are swept every cleanupInterval
func NewCategoryCache(cfg *config.CacheConfig) *CategoryCache {
	return &CategoryCache{
		store: gocache.New(cfg.CategoryTTL, cfg.CleanupInterval),
	}
}

func categoryKey(userID uuid.UUID) string {
	return categoryKeyPrefix + userID.String()
}

// Get returns a copy of the cached slice so callers cannot mutate the entry
func (c *CategoryCache) Get(userID uuid.UUID) ([]*category.Category, bool) {
	value, found := c.store.Get(categoryKey(userID))
	if !found {
		return nil, false
	}
	categories, ok := value.([]*category.Category)
	if !ok {
		return nil, false
	}
	out := make([]*category.Category, len(categories))
	copy(out, categories)
	return out, true
}

func (c *CategoryCache) Set(userID uuid.UUID, categories []*category.Category, ttl time.Duration) {
	stored := make([]*category.Category, len(categories))
	copy(stored, categories)
	c.store.Set(categoryKey(userID), stored, ttl)
}

func (c *CategoryCache) Invalidate(userID uuid.UUID) {
	c.store.Delete(categoryKey(userID))
}

var _ category.Cache = (*CategoryCache)(nil)
