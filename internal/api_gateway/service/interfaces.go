package service

import (
	"context"

	"github.com/finance-tracker-ledger/internal/domain/account"
	"github.com/finance-tracker-ledger/internal/domain/category"
	"github.com/finance-tracker-ledger/internal/domain/journal"
	"github.com/finance-tracker-ledger/internal/domain/transaction"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TransactionService posts, revises and removes transactions while keeping
// account balances consistent. Every method is scoped to userID.
type TransactionService interface {
	// CreateTransaction validates and posts a new transaction.
	// For transfers the outgoing leg is returned.
	CreateTransaction(ctx context.Context, userID uuid.UUID, in transaction.CreateInput) (*transaction.Transaction, error)

	// UpdateTransaction applies a partial patch, re-computing balances when amount or account change
	UpdateTransaction(ctx context.Context, userID uuid.UUID, id uuid.UUID, in transaction.UpdateInput) (*transaction.Transaction, error)

	// DeleteTransaction reverts the transaction's balance effect and removes it
	DeleteTransaction(ctx context.Context, userID uuid.UUID, id uuid.UUID) error

	GetTransaction(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*transaction.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, q transaction.ListQuery) (*TransactionPage, error)
}

// TransactionPage is one page of a transaction listing
type TransactionPage struct {
	Items []*transaction.Transaction
	Page  int
	Limit int
	Total int64
}

// CreateAccountInput carries the fields of a new account
type CreateAccountInput struct {
	Name           string
	Type           account.Type
	Currency       string
	InitialBalance decimal.Decimal
	Description    string
}

// AccountService defines the interface for account operations
type AccountService interface {
	CreateAccount(ctx context.Context, userID uuid.UUID, in CreateAccountInput) (*account.Account, error)

	// GetAccount returns ErrAccountNotFound for missing and foreign accounts alike
	GetAccount(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*account.Account, error)
	ListAccounts(ctx context.Context, userID uuid.UUID) ([]*account.Account, error)

	// GetAccountActivity pages through the projected journal of an owned account
	GetAccountActivity(ctx context.Context, userID uuid.UUID, id uuid.UUID, page, perPage int) ([]*journal.Entry, int64, error)
}

// CreateCategoryInput carries the fields of a new category
type CreateCategoryInput struct {
	Name  string
	Type  category.Type
	Icon  string
	Color string
}

// CategoryService defines the interface for category operations
type CategoryService interface {
	CreateCategory(ctx context.Context, userID uuid.UUID, in CreateCategoryInput) (*category.Category, error)
	ListCategories(ctx context.Context, userID uuid.UUID) ([]*category.Category, error)
	DeleteCategory(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}

// EventRecorder stages journal events in the outbox within the caller's database transaction
type EventRecorder interface {
	Record(ctx context.Context, tx pgx.Tx, entries []*journal.Entry) error
}
