package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/finance-tracker-ledger/internal/domain/account"
	"github.com/finance-tracker-ledger/internal/domain/journal"
	"github.com/google/uuid"
)

const (
	defaultActivityPerPage = 20
	maxActivityPerPage     = 100
)

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	accountRepo account.Repository
	journalRepo journal.Repository
	logger      *slog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(logger *slog.Logger, accountRepo account.Repository, journalRepo journal.Repository) AccountService {
	return &AccountServiceImpl{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		logger:      logger,
	}
}

// CreateAccount creates a new account with the given initial balance
func (s *AccountServiceImpl) CreateAccount(ctx context.Context, userID uuid.UUID, in CreateAccountInput) (*account.Account, error) {
	acc, err := account.NewAccount(userID, in.Name, in.Type, in.Currency, in.InitialBalance, in.Description)
	if err != nil {
		s.logger.WarnContext(ctx, "Rejected account", "user_id", userID.String(), "error", err)
		return nil, err
	}

	if err := s.accountRepo.Create(ctx, acc); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create account", "user_id", userID.String(), "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "Account created",
		"account_id", acc.ID.String(),
		"user_id", userID.String(),
		"type", string(acc.Type),
		"currency", acc.Currency,
	)
	return acc, nil
}

// GetAccount retrieves an account owned by userID
func (s *AccountServiceImpl) GetAccount(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*account.Account, error) {
	acc, err := s.accountRepo.GetForUser(ctx, id, userID)
	if err != nil {
		if !errors.Is(err, account.ErrAccountNotFound{}) {
			s.logger.ErrorContext(ctx, "Failed to get account", "account_id", id.String(), "error", err)
		}
		return nil, err
	}
	return acc, nil
}

func (s *AccountServiceImpl) ListAccounts(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	accounts, err := s.accountRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list accounts", "user_id", userID.String(), "error", err)
		return nil, err
	}
	return accounts, nil
}

// GetAccountActivity checks ownership in Postgres before reading the projected journal
func (s *AccountServiceImpl) GetAccountActivity(ctx context.Context, userID uuid.UUID, id uuid.UUID, page, perPage int) ([]*journal.Entry, int64, error) {
	if _, err := s.GetAccount(ctx, userID, id); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultActivityPerPage
	}
	if perPage > maxActivityPerPage {
		perPage = maxActivityPerPage
	}

	entries, err := s.journalRepo.GetByAccountID(ctx, id, perPage, (page-1)*perPage)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get account activity", "account_id", id.String(), "error", err)
		return nil, 0, err
	}

	total, err := s.journalRepo.CountByAccountID(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to count account activity", "account_id", id.String(), "error", err)
		return nil, 0, err
	}

	return entries, total, nil
}
