package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finance-tracker-ledger/internal/domain/shared"
	"github.com/finance-tracker-ledger/internal/domain/transaction"
	"github.com/finance-tracker-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const transactionColumns = `t.id, t.user_id, t.account_id, t.category_id, t.type, t.amount::text, t.description, t.date,
		t.balance_before::text, COALESCE(t.transfer_direction, ''), t.transfer_peer_id, t.created_at, t.updated_at`

const relationColumns = `a.id, a.name, a.type, a.currency, a.balance::text, c.id, c.name, c.icon, c.color`

const selectWithRelations = `SELECT ` + transactionColumns + `, ` + relationColumns + `
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		JOIN categories c ON c.id = t.category_id
`

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository whose statements run inside tx
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts a transaction row. Transfer legs reference each other through
// a deferred foreign key, so both legs must be inserted in the same transaction.
func (r *TransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, account_id, category_id, type, amount, description, date,
			balance_before, transfer_direction, transfer_peer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.querier.Exec(ctx, query,
		txn.ID,
		txn.UserID,
		txn.AccountID,
		txn.CategoryID,
		txn.Type,
		txn.Amount.String(),
		txn.Description,
		txn.Date,
		nullableDecimal(txn.BalanceBefore),
		nullableDirection(txn.Direction),
		txn.PeerID,
		txn.CreatedAt,
		txn.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction", "id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// Update rewrites the mutable columns of a transaction row. Type, direction
// and peer never change after creation.
func (r *TransactionRepository) Update(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET account_id = $1, category_id = $2, amount = $3, description = $4, date = $5,
			balance_before = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := r.querier.Exec(ctx, query,
		txn.AccountID,
		txn.CategoryID,
		txn.Amount.String(),
		txn.Description,
		txn.Date,
		nullableDecimal(txn.BalanceBefore),
		txn.UpdatedAt,
		txn.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update transaction", "id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{ID: txn.ID}
	}

	return nil
}

// Delete removes a transaction row
func (r *TransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM transactions WHERE id = $1`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete transaction", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{ID: id}
	}

	return nil
}

// FindByID loads a transaction with its account and category summaries
func (r *TransactionRepository) FindByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*transaction.Transaction, error) {
	query := selectWithRelations + `WHERE t.id = $1 AND t.user_id = $2`

	txn, err := scanTransaction(r.querier.QueryRow(ctx, query, id, userID), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{ID: id}
		}
		r.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return txn, nil
}

// FindLegsForUpdate locks the row and its transfer peer in id order, so
// writers entering a transfer from opposite legs queue instead of deadlocking.
func (r *TransactionRepository) FindLegsForUpdate(ctx context.Context, id uuid.UUID, userID uuid.UUID) ([]*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions t
		WHERE t.user_id = $2 AND (t.id = $1 OR t.transfer_peer_id = $1)
		ORDER BY t.id
		FOR UPDATE
	`

	legs, err := r.queryTransactions(ctx, "FindLegsForUpdate", query, []any{id, userID}, false)
	if err != nil {
		return nil, err
	}

	for _, leg := range legs {
		if leg.ID == id {
			return legs, nil
		}
	}
	return nil, transaction.ErrTransactionNotFound{ID: id}
}

// FindByFilters returns one page of transactions in the requested column order
func (r *TransactionRepository) FindByFilters(ctx context.Context, criteria transaction.Criteria) ([]*transaction.Transaction, error) {
	args := &queryArgs{}
	query := selectWithRelations +
		renderFilter(criteria.Filter, args) + "\n" +
		renderOrder(criteria.Order, false) + "\n" +
		renderPage(criteria, args)

	return r.queryTransactions(ctx, "FindByFilters", query, args.values, true)
}

// FindBySignedAmount returns one page ordered by signed economic impact:
// outgoing money sorts as negative, incoming as positive.
func (r *TransactionRepository) FindBySignedAmount(ctx context.Context, criteria transaction.Criteria) ([]*transaction.Transaction, error) {
	args := &queryArgs{}
	query := selectWithRelations +
		renderFilter(criteria.Filter, args) + "\n" +
		renderOrder(criteria.Order, true) + "\n" +
		renderPage(criteria, args)

	return r.queryTransactions(ctx, "FindBySignedAmount", query, args.values, true)
}

// CountByFilters counts every row matching the filter, ignoring pagination
func (r *TransactionRepository) CountByFilters(ctx context.Context, filter transaction.Filter) (int64, error) {
	args := &queryArgs{}
	query := `SELECT COUNT(*) FROM transactions t ` + renderFilter(filter, args)

	var count int64
	if err := r.querier.QueryRow(ctx, query, args.values...).Scan(&count); err != nil {
		r.logger.Error("Failed to count transactions", "user_id", filter.UserID.String(), "error", err)
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}

func (r *TransactionRepository) queryTransactions(ctx context.Context, op, query string, args []any, withRelations bool) ([]*transaction.Transaction, error) {
	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query transactions", "op", op, "error", err)
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*transaction.Transaction, 0)
	for rows.Next() {
		txn, err := scanTransaction(rows, withRelations)
		if err != nil {
			r.logger.Error("Failed to scan transaction", "op", op, "error", err)
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over transactions", "op", op, "error", err)
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}

	return transactions, nil
}

func scanTransaction(row pgx.Row, withRelations bool) (*transaction.Transaction, error) {
	var (
		txn           transaction.Transaction
		amount        string
		balanceBefore *string
	)
	dest := []any{
		&txn.ID,
		&txn.UserID,
		&txn.AccountID,
		&txn.CategoryID,
		&txn.Type,
		&amount,
		&txn.Description,
		&txn.Date,
		&balanceBefore,
		&txn.Direction,
		&txn.PeerID,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	}

	var (
		acc            transaction.AccountSummary
		cat            transaction.CategorySummary
		accountBalance string
	)
	if withRelations {
		dest = append(dest,
			&acc.ID, &acc.Name, &acc.Type, &acc.Currency, &accountBalance,
			&cat.ID, &cat.Name, &cat.Icon, &cat.Color,
		)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if txn.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if balanceBefore != nil {
		before, err := decimal.NewFromString(*balanceBefore)
		if err != nil {
			return nil, fmt.Errorf("invalid balance_before %q: %w", *balanceBefore, err)
		}
		txn.BalanceBefore = &before
	}

	if withRelations {
		if acc.Balance, err = decimal.NewFromString(accountBalance); err != nil {
			return nil, fmt.Errorf("invalid account balance %q: %w", accountBalance, err)
		}
		txn.Account = &acc
		txn.Category = &cat
	}

	return &txn, nil
}

func nullableDecimal(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func nullableDirection(dir shared.TransferDirection) *string {
	if dir == shared.TransferDirectionNone {
		return nil
	}
	s := string(dir)
	return &s
}
