package cache

import (
	"testing"
	"time"

	"github.com/finance-tracker-ledger/internal/config"
	"github.com/finance-tracker-ledger/internal/domain/category"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache() *CategoryCache {
	return NewCategoryCache(&config.CacheConfig{
		CategoryTTL:     time.Hour,
		CleanupInterval: time.Minute,
	})
}

func TestCategoryCache_SetAndGet(t *testing.T) {
	c := newTestCache()
	userID := uuid.New()
	cats := []*category.Category{
		{ID: uuid.New(), UserID: userID, Name: "Groceries", Type: category.TypeExpense},
		{ID: uuid.New(), UserID: userID, Name: "Salary", Type: category.TypeIncome},
	}

	_, found := c.Get(userID)
	assert.False(t, found)

	c.Set(userID, cats, time.Hour)

	got, found := c.Get(userID)
	require.True(t, found)
	assert.Equal(t, cats, got)

	got[0] = nil
	again, _ := c.Get(userID)
	assert.NotNil(t, again[0], "returned slice must not alias the cached entry")

	_, found = c.Get(uuid.New())
	assert.False(t, found, "entries are per user")
}

func TestCategoryCache_Invalidate(t *testing.T) {
	c := newTestCache()
	userID := uuid.New()
	c.Set(userID, []*category.Category{}, time.Hour)

	c.Invalidate(userID)

	_, found := c.Get(userID)
	assert.False(t, found)
}

func TestCategoryCache_Expiry(t *testing.T) {
	c := newTestCache()
	userID := uuid.New()
	c.Set(userID, []*category.Category{{Name: "Rent"}}, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		_, found := c.Get(userID)
		return !found
	}, time.Second, 5*time.Millisecond)
}

func TestCategoryCache_EmptyListIsCached(t *testing.T) {
	c := newTestCache()
	userID := uuid.New()
	c.Set(userID, nil, time.Hour)

	got, found := c.Get(userID)
	assert.True(t, found)
	assert.Empty(t, got)
}
