package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/finance-tracker-ledger/internal/domain/category"
	"github.com/google/uuid"
)

// CategoryServiceImpl implements the CategoryService interface with a read-through cache
type CategoryServiceImpl struct {
	categoryRepo category.Repository
	cache        category.Cache
	ttl          time.Duration
	logger       *slog.Logger
}

// NewCategoryService creates a new category service; cached lists live for ttl
func NewCategoryService(logger *slog.Logger, categoryRepo category.Repository, cache category.Cache, ttl time.Duration) CategoryService {
	return &CategoryServiceImpl{
		categoryRepo: categoryRepo,
		cache:        cache,
		ttl:          ttl,
		logger:       logger,
	}
}

func (s *CategoryServiceImpl) CreateCategory(ctx context.Context, userID uuid.UUID, in CreateCategoryInput) (*category.Category, error) {
	cat, err := category.NewCategory(userID, in.Name, in.Type, in.Icon, in.Color)
	if err != nil {
		s.logger.WarnContext(ctx, "Rejected category", "user_id", userID.String(), "error", err)
		return nil, err
	}

	if err := s.categoryRepo.Create(ctx, cat); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create category", "user_id", userID.String(), "error", err)
		return nil, err
	}
	s.cache.Invalidate(userID)

	s.logger.InfoContext(ctx, "Category created", "category_id", cat.ID.String(), "user_id", userID.String())
	return cat, nil
}

// ListCategories serves from cache when possible and fills it on a miss
func (s *CategoryServiceImpl) ListCategories(ctx context.Context, userID uuid.UUID) ([]*category.Category, error) {
	if cached, ok := s.cache.Get(userID); ok {
		return cached, nil
	}

	categories, err := s.categoryRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list categories", "user_id", userID.String(), "error", err)
		return nil, err
	}

	s.cache.Set(userID, categories, s.ttl)
	return categories, nil
}

func (s *CategoryServiceImpl) DeleteCategory(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id, userID); err != nil {
		var inUse category.ErrCategoryInUse
		if !errors.Is(err, category.ErrCategoryNotFound{}) && !errors.As(err, &inUse) {
			s.logger.ErrorContext(ctx, "Failed to delete category", "category_id", id.String(), "error", err)
		}
		return err
	}
	s.cache.Invalidate(userID)

	s.logger.InfoContext(ctx, "Category deleted", "category_id", id.String(), "user_id", userID.String())
	return nil
}
