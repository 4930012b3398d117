package category

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines category persistence operations, always scoped to a user
type Repository interface {
	Create(ctx context.Context, category *Category) error
	ExistsForUser(ctx context.Context, id uuid.UUID, userID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Category, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
}

// Cache holds per-user category lists for a bounded time
type Cache interface {
	Get(userID uuid.UUID) ([]*Category, bool)
	Set(userID uuid.UUID, categories []*Category, ttl time.Duration)
	Invalidate(userID uuid.UUID)
}

// ErrCategoryNotFound indicates a missing category or one owned by someone else
type ErrCategoryNotFound struct {
	CategoryID uuid.UUID
}

func (e ErrCategoryNotFound) Error() string {
	return "category not found: " + e.CategoryID.String()
}

// Is implements the errors.Is interface for ErrCategoryNotFound
func (e ErrCategoryNotFound) Is(target error) bool {
	t, ok := target.(ErrCategoryNotFound)
	if !ok {
		return false
	}
	if t.CategoryID == uuid.Nil {
		return true
	}
	return e.CategoryID == t.CategoryID
}

// ErrCategoryInUse indicates transactions still reference the category
type ErrCategoryInUse struct {
	CategoryID uuid.UUID
}

func (e ErrCategoryInUse) Error() string {
	return "category is referenced by transactions: " + e.CategoryID.String()
}
