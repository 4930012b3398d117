package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository defines account persistence operations. Every read is scoped to
// the owning user so that foreign accounts look exactly like missing ones.
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetForUser(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*Account, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Account, error)

	// LockForUpdate acquires a row lock for the rest of the surrounding transaction
	LockForUpdate(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*Account, error)

	// UpdateBalance overwrites the stored balance; callers compute it from a locked read
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	WithTx(tx pgx.Tx) Repository
}

// ErrAccountNotFound indicates a missing account or one owned by someone else
type ErrAccountNotFound struct {
	AccountID uuid.UUID
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountID.String()
}

// Is matches any ErrAccountNotFound when the target carries no account ID
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	if t.AccountID == uuid.Nil {
		return true
	}
	return e.AccountID == t.AccountID
}
