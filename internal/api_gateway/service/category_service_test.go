package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finance-tracker-ledger/internal/domain/category"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testCategoryTTL = time.Minute

func TestCategoryService_ListCategories(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	categories := []*category.Category{{ID: uuid.New(), Name: "Food"}}

	t.Run("CacheHit", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		cache := new(MockCategoryCache)
		svc := NewCategoryService(newTestLogger(), repo, cache, testCategoryTTL)

		cache.On("Get", userID).Return(categories, true).Once()

		result, err := svc.ListCategories(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, categories, result)
		repo.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
		cache.AssertExpectations(t)
	})

	t.Run("CacheMissFillsCache", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		cache := new(MockCategoryCache)
		svc := NewCategoryService(newTestLogger(), repo, cache, testCategoryTTL)

		cache.On("Get", userID).Return(nil, false).Once()
		repo.On("ListByUser", ctx, userID).Return(categories, nil).Once()
		cache.On("Set", userID, categories, testCategoryTTL).Once()

		result, err := svc.ListCategories(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, categories, result)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("RepositoryErrorIsNotCached", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		cache := new(MockCategoryCache)
		svc := NewCategoryService(newTestLogger(), repo, cache, testCategoryTTL)
		dbErr := errors.New("query failed")

		cache.On("Get", userID).Return(nil, false).Once()
		repo.On("ListByUser", ctx, userID).Return(nil, dbErr).Once()

		_, err := svc.ListCategories(ctx, userID)

		assert.ErrorIs(t, err, dbErr)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCategoryService_CreateCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("InvalidatesCache", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		cache := new(MockCategoryCache)
		svc := NewCategoryService(newTestLogger(), repo, cache, testCategoryTTL)
		userID := uuid.New()

		repo.On("Create", ctx, mock.MatchedBy(func(c *category.Category) bool {
			return c.UserID == userID && c.Name == "Salary" && c.Type == category.TypeIncome
		})).Return(nil).Once()
		cache.On("Invalidate", userID).Once()

		cat, err := svc.CreateCategory(ctx, userID, CreateCategoryInput{Name: " Salary ", Type: category.TypeIncome})

		require.NoError(t, err)
		assert.Equal(t, "Salary", cat.Name)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("InvalidType", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		cache := new(MockCategoryCache)
		svc := NewCategoryService(newTestLogger(), repo, cache, testCategoryTTL)

		_, err := svc.CreateCategory(ctx, uuid.New(), CreateCategoryInput{Name: "Misc", Type: "OTHER"})

		assert.ErrorIs(t, err, category.ErrInvalidType)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		cache.AssertNotCalled(t, "Invalidate", mock.Anything)
	})
}

func TestCategoryService_DeleteCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		cache := new(MockCategoryCache)
		svc := NewCategoryService(newTestLogger(), repo, cache, testCategoryTTL)
		userID, id := uuid.New(), uuid.New()

		repo.On("Delete", ctx, id, userID).Return(nil).Once()
		cache.On("Invalidate", userID).Once()

		require.NoError(t, svc.DeleteCategory(ctx, userID, id))
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("InUse", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		cache := new(MockCategoryCache)
		svc := NewCategoryService(newTestLogger(), repo, cache, testCategoryTTL)
		userID, id := uuid.New(), uuid.New()

		repo.On("Delete", ctx, id, userID).Return(category.ErrCategoryInUse{CategoryID: id}).Once()

		err := svc.DeleteCategory(ctx, userID, id)

		var inUse category.ErrCategoryInUse
		assert.ErrorAs(t, err, &inUse)
		cache.AssertNotCalled(t, "Invalidate", mock.Anything)
	})
}
