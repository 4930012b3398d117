package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finance-tracker-ledger/internal/domain/account"
	"github.com/finance-tracker-ledger/internal/domain/category"
	"github.com/finance-tracker-ledger/internal/domain/journal"
	"github.com/finance-tracker-ledger/internal/domain/shared"
	"github.com/finance-tracker-ledger/internal/domain/transaction"
	"github.com/finance-tracker-ledger/internal/platform/metrics"
	"github.com/finance-tracker-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	typeChangeMessage       = "Transaction type cannot be changed; delete and recreate the transaction instead"
	sameTransferAccountsMsg = "Source and destination accounts must be different"
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	uow          persistence.UnitOfWork
	txRepo       transaction.Repository
	accountRepo  account.Repository
	categoryRepo category.Repository
	recorder     EventRecorder
	validator    *transaction.Validator
	logger       *slog.Logger
	now          func() time.Time
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	logger *slog.Logger,
	uow persistence.UnitOfWork,
	txRepo transaction.Repository,
	accountRepo account.Repository,
	categoryRepo category.Repository,
	recorder EventRecorder,
	validator *transaction.Validator,
) TransactionService {
	return &TransactionServiceImpl{
		uow:          uow,
		txRepo:       txRepo,
		accountRepo:  accountRepo,
		categoryRepo: categoryRepo,
		recorder:     recorder,
		validator:    validator,
		logger:       logger,
		now:          time.Now,
	}
}

// txScope binds repositories to one database transaction and collects the
// journal events it produces.
type txScope struct {
	txns     transaction.Repository
	accounts account.Repository
	events   []*journal.Entry
}

func (sc *txScope) record(entry *journal.Entry) {
	sc.events = append(sc.events, entry)
}

// inTx runs fn atomically and stages its events in the outbox before commit
func (s *TransactionServiceImpl) inTx(ctx context.Context, fn func(sc *txScope) error) error {
	return s.uow.ExecuteTx(ctx, func(tx pgx.Tx) error {
		sc := &txScope{
			txns:     s.txRepo.WithTx(tx),
			accounts: s.accountRepo.WithTx(tx),
		}
		if err := fn(sc); err != nil {
			return err
		}
		if len(sc.events) == 0 {
			return nil
		}
		return s.recorder.Record(ctx, tx, sc.events)
	})
}

// CreateTransaction validates the input, checks the category and posts it
func (s *TransactionServiceImpl) CreateTransaction(ctx context.Context, userID uuid.UUID, in transaction.CreateInput) (*transaction.Transaction, error) {
	if res := s.validator.ValidateCreate(in); !res.Valid {
		return nil, s.fail(ctx, metrics.OperationCreate, transaction.ErrValidation{Message: res.Message})
	}

	posting, err := transaction.NewPosting(in)
	if err != nil {
		return nil, s.fail(ctx, metrics.OperationCreate, err)
	}

	if err := s.ensureCategory(ctx, userID, posting.Details().CategoryID); err != nil {
		return nil, s.fail(ctx, metrics.OperationCreate, err)
	}

	var created *transaction.Transaction
	err = s.inTx(ctx, func(sc *txScope) error {
		primary, err := s.post(ctx, sc, userID, posting)
		if err != nil {
			return err
		}
		created, err = sc.txns.FindByID(ctx, primary.ID, userID)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, metrics.OperationCreate, err)
	}

	metrics.TransactionMutations.WithLabelValues(metrics.OperationCreate, string(created.Type)).Inc()
	s.logger.InfoContext(ctx, "Transaction created",
		"transaction_id", created.ID.String(),
		"type", string(created.Type),
		"account_id", created.AccountID.String(),
		"amount", created.Amount.String(),
	)
	return created, nil
}

// post inserts the rows for a posting and applies them to the locked accounts.
// The returned row is the one the caller sees: the outgoing leg for transfers.
func (s *TransactionServiceImpl) post(ctx context.Context, sc *txScope, userID uuid.UUID, posting transaction.Posting) (*transaction.Transaction, error) {
	now := s.now().UTC()
	details := posting.Details()

	switch p := posting.(type) {
	case transaction.StandardPosting:
		return s.postSingle(ctx, sc, userID, p.AccountID, p.Type, details, now)

	case transaction.AdjustmentPosting:
		return s.postSingle(ctx, sc, userID, p.AccountID, shared.TransactionTypeAdjustment, details, now)

	case transaction.TransferPosting:
		accounts, err := lockAccounts(ctx, sc.accounts, userID, p.FromAccountID, p.ToAccountID)
		if err != nil {
			return nil, err
		}
		from, to := accounts[p.FromAccountID], accounts[p.ToAccountID]

		outgoing := transaction.New(userID, from.ID, shared.TransactionTypeTransfer, details, now)
		incoming := transaction.New(userID, to.ID, shared.TransactionTypeTransfer, details, now)
		outgoing.Direction = shared.TransferDirectionOutgoing
		incoming.Direction = shared.TransferDirectionIncoming
		outgoing.PeerID = &incoming.ID
		incoming.PeerID = &outgoing.ID
		outgoing.Description, incoming.Description = transaction.TransferDescriptions(from.Name, to.Name, details.Description)

		if err := s.insertLegs(ctx, sc, accounts, outgoing, incoming); err != nil {
			return nil, err
		}
		return outgoing, nil

	default:
		return nil, fmt.Errorf("unsupported posting %T", posting)
	}
}

func (s *TransactionServiceImpl) postSingle(
	ctx context.Context,
	sc *txScope,
	userID, accountID uuid.UUID,
	txType shared.TransactionType,
	details transaction.PostingDetails,
	now time.Time,
) (*transaction.Transaction, error) {
	accounts, err := lockAccounts(ctx, sc.accounts, userID, accountID)
	if err != nil {
		return nil, err
	}

	txn := transaction.New(userID, accountID, txType, details, now)
	if err := s.insertLegs(ctx, sc, accounts, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *TransactionServiceImpl) insertLegs(ctx context.Context, sc *txScope, accounts map[uuid.UUID]*account.Account, legs ...*transaction.Transaction) error {
	book := newBalanceBook(accounts)
	for _, leg := range legs {
		before, after := book.apply(leg)
		if err := sc.txns.Create(ctx, leg); err != nil {
			return err
		}
		sc.record(s.journalEntry(ctx, shared.JournalEventPosted, leg, leg.AccountID, before, after))
	}
	return book.flush(ctx, sc.accounts)
}

// UpdateTransaction applies a partial patch to an owned transaction
func (s *TransactionServiceImpl) UpdateTransaction(ctx context.Context, userID uuid.UUID, id uuid.UUID, in transaction.UpdateInput) (*transaction.Transaction, error) {
	if res := s.validator.ValidateUpdate(in); !res.Valid {
		return nil, s.fail(ctx, metrics.OperationUpdate, transaction.ErrValidation{Message: res.Message})
	}

	if in.CategoryID != nil {
		if err := s.ensureCategory(ctx, userID, *in.CategoryID); err != nil {
			return nil, s.fail(ctx, metrics.OperationUpdate, err)
		}
	}

	var updated *transaction.Transaction
	err := s.inTx(ctx, func(sc *txScope) error {
		existing, peer, err := lockLegs(ctx, sc.txns, userID, id)
		if err != nil {
			return err
		}
		if in.Type != nil && *in.Type != string(existing.Type) {
			return transaction.ErrValidation{Message: typeChangeMessage}
		}

		rev, err := newRevision(existing, in)
		if err != nil {
			return err
		}

		if peer != nil {
			err = s.reviseTransfer(ctx, sc, userID, existing, peer, rev)
		} else {
			err = s.reviseSingle(ctx, sc, userID, existing, rev)
		}
		if err != nil {
			return err
		}

		updated, err = sc.txns.FindByID(ctx, id, userID)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, metrics.OperationUpdate, err)
	}

	metrics.TransactionMutations.WithLabelValues(metrics.OperationUpdate, string(updated.Type)).Inc()
	s.logger.InfoContext(ctx, "Transaction updated", "transaction_id", id.String(), "type", string(updated.Type))
	return updated, nil
}

func (s *TransactionServiceImpl) reviseSingle(ctx context.Context, sc *txScope, userID uuid.UUID, existing *transaction.Transaction, rev revision) error {
	updated := *existing
	rev.applyTo(&updated, s.now().UTC())

	if !rev.movesMoney(existing) {
		return s.reviseInPlace(ctx, sc, userID, &updated)
	}

	accounts, err := lockAccounts(ctx, sc.accounts, userID, existing.AccountID, updated.AccountID)
	if err != nil {
		return err
	}

	book := newBalanceBook(accounts)
	book.revert(existing)
	book.apply(&updated)

	if err := sc.txns.Update(ctx, &updated); err != nil {
		return err
	}
	if err := book.flush(ctx, sc.accounts); err != nil {
		return err
	}

	if updated.AccountID != existing.AccountID {
		before, after := book.span(existing.AccountID)
		sc.record(s.journalEntry(ctx, shared.JournalEventRevised, existing, existing.AccountID, before, after))
	}
	before, after := book.span(updated.AccountID)
	sc.record(s.journalEntry(ctx, shared.JournalEventRevised, &updated, updated.AccountID, before, after))
	return nil
}

// reviseTransfer keeps both legs in step: amount, date and category follow
// the patched leg, while account and description stay per leg.
func (s *TransactionServiceImpl) reviseTransfer(ctx context.Context, sc *txScope, userID uuid.UUID, existing, peer *transaction.Transaction, rev revision) error {
	if rev.accountID == peer.AccountID {
		return transaction.ErrValidation{Message: sameTransferAccountsMsg}
	}

	now := s.now().UTC()
	updated := *existing
	rev.applyTo(&updated, now)
	updatedPeer := *peer
	rev.applySharedTo(&updatedPeer, now)

	if !rev.movesMoney(existing) {
		return s.reviseInPlace(ctx, sc, userID, &updated, &updatedPeer)
	}

	accounts, err := lockAccounts(ctx, sc.accounts, userID, existing.AccountID, peer.AccountID, updated.AccountID)
	if err != nil {
		return err
	}

	if updated.AccountID != existing.AccountID {
		retitlePeer(&updatedPeer, accounts, existing.AccountID, updated.AccountID)
	}

	book := newBalanceBook(accounts)
	book.revert(existing)
	book.revert(peer)
	book.apply(&updated)
	book.apply(&updatedPeer)

	for _, leg := range []*transaction.Transaction{&updated, &updatedPeer} {
		if err := sc.txns.Update(ctx, leg); err != nil {
			return err
		}
	}
	if err := book.flush(ctx, sc.accounts); err != nil {
		return err
	}

	if updated.AccountID != existing.AccountID {
		before, after := book.span(existing.AccountID)
		sc.record(s.journalEntry(ctx, shared.JournalEventRevised, existing, existing.AccountID, before, after))
	}
	for _, leg := range []*transaction.Transaction{&updated, &updatedPeer} {
		before, after := book.span(leg.AccountID)
		sc.record(s.journalEntry(ctx, shared.JournalEventRevised, leg, leg.AccountID, before, after))
	}
	return nil
}

// reviseInPlace stores rows whose changes do not move money; balances are read, never written
func (s *TransactionServiceImpl) reviseInPlace(ctx context.Context, sc *txScope, userID uuid.UUID, legs ...*transaction.Transaction) error {
	for _, leg := range legs {
		if err := sc.txns.Update(ctx, leg); err != nil {
			return err
		}
		acc, err := sc.accounts.GetForUser(ctx, leg.AccountID, userID)
		if err != nil {
			return err
		}
		sc.record(s.journalEntry(ctx, shared.JournalEventRevised, leg, acc.ID, acc.Balance, acc.Balance))
	}
	return nil
}

// DeleteTransaction reverts and removes an owned transaction; both legs of a transfer go together
func (s *TransactionServiceImpl) DeleteTransaction(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	var removedType shared.TransactionType
	err := s.inTx(ctx, func(sc *txScope) error {
		existing, peer, err := lockLegs(ctx, sc.txns, userID, id)
		if err != nil {
			return err
		}
		removedType = existing.Type

		legs := []*transaction.Transaction{existing}
		if peer != nil {
			legs = append(legs, peer)
		}

		accountIDs := make([]uuid.UUID, 0, len(legs))
		for _, leg := range legs {
			accountIDs = append(accountIDs, leg.AccountID)
		}
		accounts, err := lockAccounts(ctx, sc.accounts, userID, accountIDs...)
		if err != nil {
			return err
		}

		book := newBalanceBook(accounts)
		for _, leg := range legs {
			before, after := book.revert(leg)
			sc.record(s.journalEntry(ctx, shared.JournalEventRemoved, leg, leg.AccountID, before, after))
		}
		for _, leg := range legs {
			if err := sc.txns.Delete(ctx, leg.ID); err != nil {
				return err
			}
		}
		return book.flush(ctx, sc.accounts)
	})
	if err != nil {
		return s.fail(ctx, metrics.OperationDelete, err)
	}

	metrics.TransactionMutations.WithLabelValues(metrics.OperationDelete, string(removedType)).Inc()
	s.logger.InfoContext(ctx, "Transaction deleted", "transaction_id", id.String(), "type", string(removedType))
	return nil
}

// GetTransaction returns an owned transaction with its account and category
func (s *TransactionServiceImpl) GetTransaction(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*transaction.Transaction, error) {
	txn, err := s.txRepo.FindByID(ctx, id, userID)
	if err != nil {
		if !errors.Is(err, transaction.ErrTransactionNotFound{}) {
			s.logger.ErrorContext(ctx, "Failed to get transaction", "transaction_id", id.String(), "error", err)
		}
		return nil, err
	}
	return txn, nil
}

// ListTransactions returns one page of the user's transactions plus the total match count
func (s *TransactionServiceImpl) ListTransactions(ctx context.Context, userID uuid.UUID, q transaction.ListQuery) (*TransactionPage, error) {
	criteria := transaction.BuildCriteria(userID, q)

	find := s.txRepo.FindByFilters
	if criteria.SignedAmountSort {
		find = s.txRepo.FindBySignedAmount
	}

	items, err := find(ctx, criteria)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list transactions", "user_id", userID.String(), "error", err)
		return nil, err
	}

	total, err := s.txRepo.CountByFilters(ctx, criteria.Filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to count transactions", "user_id", userID.String(), "error", err)
		return nil, err
	}

	return &TransactionPage{
		Items: items,
		Page:  criteria.Page,
		Limit: criteria.Limit,
		Total: total,
	}, nil
}

func (s *TransactionServiceImpl) ensureCategory(ctx context.Context, userID, categoryID uuid.UUID) error {
	exists, err := s.categoryRepo.ExistsForUser(ctx, categoryID, userID)
	if err != nil {
		return fmt.Errorf("failed to verify category %s: %w", categoryID.String(), err)
	}
	if !exists {
		return category.ErrCategoryNotFound{CategoryID: categoryID}
	}
	return nil
}

func (s *TransactionServiceImpl) journalEntry(
	ctx context.Context,
	eventType shared.JournalEventType,
	txn *transaction.Transaction,
	accountID uuid.UUID,
	before, after decimal.Decimal,
) *journal.Entry {
	return &journal.Entry{
		EventID:       uuid.New(),
		EventType:     eventType,
		TransactionID: txn.ID,
		AccountID:     accountID,
		UserID:        txn.UserID,
		Type:          txn.Type,
		Direction:     txn.Direction,
		Amount:        txn.Amount.String(),
		BalanceBefore: before.String(),
		BalanceAfter:  after.String(),
		Description:   txn.Description,
		OccurredAt:    s.now().UTC(),
		CorrelationID: shared.CorrelationIDFromContext(ctx),
	}
}

// fail counts and logs a failed mutation and returns err unchanged
func (s *TransactionServiceImpl) fail(ctx context.Context, operation string, err error) error {
	reason := failureReason(err)
	metrics.TransactionFailures.WithLabelValues(operation, reason).Inc()

	if reason == metrics.ReasonInternal {
		s.logger.ErrorContext(ctx, "Transaction operation failed", "operation", operation, "error", err)
	} else {
		s.logger.WarnContext(ctx, "Transaction operation rejected", "operation", operation, "reason", reason, "error", err)
	}
	return err
}

func failureReason(err error) string {
	var validationErr transaction.ErrValidation
	switch {
	case errors.As(err, &validationErr):
		return metrics.ReasonValidation
	case errors.Is(err, transaction.ErrTransactionNotFound{}),
		errors.Is(err, account.ErrAccountNotFound{}),
		errors.Is(err, category.ErrCategoryNotFound{}):
		return metrics.ReasonNotFound
	default:
		return metrics.ReasonInternal
	}
}
