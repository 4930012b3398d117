package transaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository is the persistence boundary for transaction rows
type Repository interface {
	Create(ctx context.Context, txn *Transaction) error
	Update(ctx context.Context, txn *Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID loads a transaction with its account and category summaries
	FindByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*Transaction, error)

	// FindLegsForUpdate row-locks a transaction together with its transfer peer,
	// if any, inside the surrounding pgx transaction. Rows come back and are
	// locked in ascending id order.
	FindLegsForUpdate(ctx context.Context, id uuid.UUID, userID uuid.UUID) ([]*Transaction, error)

	FindByFilters(ctx context.Context, criteria Criteria) ([]*Transaction, error)

	// FindBySignedAmount orders by economic direction instead of stored magnitude
	FindBySignedAmount(ctx context.Context, criteria Criteria) ([]*Transaction, error)

	CountByFilters(ctx context.Context, filter Filter) (int64, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrTransactionNotFound indicates a missing transaction or one owned by someone else
type ErrTransactionNotFound struct {
	ID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.ID.String()
}

// Is implements the errors.Is interface for ErrTransactionNotFound
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}

// ErrValidation carries a caller-facing validation message
type ErrValidation struct {
	Message string
}

func (e ErrValidation) Error() string {
	return e.Message
}
