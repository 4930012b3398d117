package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/finance-tracker-ledger/internal/domain/account"
	"github.com/finance-tracker-ledger/internal/domain/category"
	"github.com/finance-tracker-ledger/internal/domain/journal"
	"github.com/finance-tracker-ledger/internal/domain/transaction"
)

var errAmountType = errors.New("amount must be a string or a number")

// AmountInput accepts an amount sent either as a JSON string or a JSON number.
// Numbers keep their literal text so no precision is lost to float64.
type AmountInput string

func (a *AmountInput) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AmountInput(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errAmountType
	}
	*a = AmountInput(n.String())
	return nil
}

// CreateTransactionRequest represents a request to create a new transaction.
// Which fields are required depends on type and is checked by the service.
type CreateTransactionRequest struct {
	Type          string      `json:"type"`
	Amount        AmountInput `json:"amount"`
	Description   *string     `json:"description"`
	Date          string      `json:"date"`
	CategoryID    *string     `json:"categoryId"`
	AccountID     *string     `json:"accountId"`
	FromAccountID *string     `json:"fromAccountId"`
	ToAccountID   *string     `json:"toAccountId"`
}

// UpdateTransactionRequest is a partial patch; absent fields stay unchanged
type UpdateTransactionRequest struct {
	Type        *string      `json:"type"`
	Amount      *AmountInput `json:"amount"`
	Description *string      `json:"description"`
	Date        *string      `json:"date"`
	CategoryID  *string      `json:"categoryId"`
	AccountID   *string      `json:"accountId"`
}

// ListTransactionsQuery holds the list filters. accountId and categoryId may
// be repeated or comma separated.
type ListTransactionsQuery struct {
	Search     string   `form:"search"`
	Type       string   `form:"type"`
	AccountID  []string `form:"accountId"`
	CategoryID []string `form:"categoryId"`
	StartDate  string   `form:"startDate"`
	EndDate    string   `form:"endDate"`
	SortBy     string   `form:"sortBy"`
	Order      string   `form:"order"`
	Page       int      `form:"page"`
	Limit      int      `form:"limit"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID                string                   `json:"id"`
	Amount            string                   `json:"amount"`
	Type              string                   `json:"type"`
	Description       string                   `json:"description"`
	Date              string                   `json:"date"`
	CategoryID        string                   `json:"categoryId"`
	AccountID         string                   `json:"accountId"`
	TransferDirection string                   `json:"transferDirection,omitempty"`
	TransferPeerID    string                   `json:"transferPeerId,omitempty"`
	Account           *TransactionAccountView  `json:"account,omitempty"`
	Category          *TransactionCategoryView `json:"category,omitempty"`
	CreatedAt         string                   `json:"createdAt"`
	UpdatedAt         string                   `json:"updatedAt"`
}

type TransactionAccountView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
}

type TransactionCategoryView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// CreateAccountRequest represents a request to create a new account
type CreateAccountRequest struct {
	Name           string      `json:"name" binding:"required"`
	Type           string      `json:"type" binding:"required"`
	Currency       string      `json:"currency" binding:"required,len=3"`
	InitialBalance AmountInput `json:"initialBalance"`
	Description    string      `json:"description"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Currency    string `json:"currency"`
	Balance     string `json:"balance"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
	IsLiability bool   `json:"isLiability"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// CreateCategoryRequest represents a request to create a new category
type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Type  string `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Icon      string `json:"icon"`
	Color     string `json:"color"`
	CreatedAt string `json:"createdAt"`
}

// ActivityResponse is one projected journal entry of an account
type ActivityResponse struct {
	EventID       string `json:"eventId"`
	EventType     string `json:"eventType"`
	TransactionID string `json:"transactionId"`
	Type          string `json:"type"`
	Direction     string `json:"direction,omitempty"`
	Amount        string `json:"amount"`
	BalanceBefore string `json:"balanceBefore"`
	BalanceAfter  string `json:"balanceAfter"`
	Description   string `json:"description,omitempty"`
	OccurredAt    string `json:"occurredAt"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}

func mapTransactionToResponse(t *transaction.Transaction) TransactionResponse {
	response := TransactionResponse{
		ID:                t.ID.String(),
		Amount:            t.Amount.String(),
		Type:              string(t.Type),
		Description:       t.Description,
		Date:              t.Date.UTC().Format(time.RFC3339),
		CategoryID:        t.CategoryID.String(),
		AccountID:         t.AccountID.String(),
		TransferDirection: string(t.Direction),
		CreatedAt:         t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         t.UpdatedAt.UTC().Format(time.RFC3339),
	}

	if t.PeerID != nil {
		response.TransferPeerID = t.PeerID.String()
	}
	if t.Account != nil {
		response.Account = &TransactionAccountView{
			ID:       t.Account.ID.String(),
			Name:     t.Account.Name,
			Type:     t.Account.Type,
			Currency: t.Account.Currency,
			Balance:  t.Account.Balance.String(),
		}
	}
	if t.Category != nil {
		response.Category = &TransactionCategoryView{
			ID:    t.Category.ID.String(),
			Name:  t.Category.Name,
			Icon:  t.Category.Icon,
			Color: t.Category.Color,
		}
	}

	return response
}

func mapAccountToResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		ID:          acc.ID.String(),
		Name:        acc.Name,
		Type:        string(acc.Type),
		Currency:    acc.Currency,
		Balance:     acc.Balance.String(),
		Description: acc.Description,
		IsActive:    acc.IsActive,
		IsLiability: acc.Type.IsLiability(),
		CreatedAt:   acc.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   acc.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapCategoryToResponse(cat *category.Category) CategoryResponse {
	return CategoryResponse{
		ID:        cat.ID.String(),
		Name:      cat.Name,
		Type:      string(cat.Type),
		Icon:      cat.Icon,
		Color:     cat.Color,
		CreatedAt: cat.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapEntryToActivity(entry *journal.Entry) ActivityResponse {
	return ActivityResponse{
		EventID:       entry.EventID.String(),
		EventType:     string(entry.EventType),
		TransactionID: entry.TransactionID.String(),
		Type:          string(entry.Type),
		Direction:     string(entry.Direction),
		Amount:        entry.Amount,
		BalanceBefore: entry.BalanceBefore,
		BalanceAfter:  entry.BalanceAfter,
		Description:   entry.Description,
		OccurredAt:    entry.OccurredAt.UTC().Format(time.RFC3339),
	}
}
