package handler

import (
	"log/slog"
	"time"

	"github.com/finance-tracker-ledger/internal/api_gateway/service"
	"github.com/finance-tracker-ledger/internal/domain/shared"
	"github.com/finance-tracker-ledger/internal/domain/transaction"
	"github.com/gin-gonic/gin"
)

// TransactionHandler handles HTTP requests for transaction operations
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// Create posts a new transaction; for transfers the outgoing leg is returned
func (h *TransactionHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WarnContext(c.Request.Context(), "Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to read transaction request")
		return
	}

	txn, err := h.transactionService.CreateTransaction(c.Request.Context(), userID, in)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to create transaction")
		return
	}

	RespondCreated(c, mapTransactionToResponse(txn))
}

// Update applies a partial patch to a transaction
func (h *TransactionHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "transaction")
	if !ok {
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WarnContext(c.Request.Context(), "Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to read transaction patch")
		return
	}

	txn, err := h.transactionService.UpdateTransaction(c.Request.Context(), userID, id, in)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to update transaction")
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

// Delete removes a transaction and reverts its balance effect
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "transaction")
	if !ok {
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), userID, id); err != nil {
		respondServiceError(c, h.logger, err, "Failed to delete transaction")
		return
	}

	RespondNoContent(c)
}

// GetByID retrieves one transaction with its account and category
func (h *TransactionHandler) GetByID(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "transaction")
	if !ok {
		return
	}

	txn, err := h.transactionService.GetTransaction(c.Request.Context(), userID, id)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to get transaction")
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

// List returns a filtered, sorted page of the caller's transactions
func (h *TransactionHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var query ListTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query parameters")
		return
	}

	q, err := query.toListQuery()
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to read list query")
		return
	}

	page, err := h.transactionService.ListTransactions(c.Request.Context(), userID, q)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to list transactions")
		return
	}

	items := make([]TransactionResponse, 0, len(page.Items))
	for _, txn := range page.Items {
		items = append(items, mapTransactionToResponse(txn))
	}

	RespondWithPage(c, items, PaginationInfo{Page: page.Page, Limit: page.Limit, Total: page.Total})
}

func (r CreateTransactionRequest) toInput() (transaction.CreateInput, error) {
	in := transaction.CreateInput{
		Type:        r.Type,
		Amount:      string(r.Amount),
		Description: r.Description,
		Date:        r.Date,
	}

	var err error
	if in.CategoryID, err = optionalUUID(r.CategoryID, transaction.FieldCategoryID); err != nil {
		return in, err
	}
	if in.AccountID, err = optionalUUID(r.AccountID, transaction.FieldAccountID); err != nil {
		return in, err
	}
	if in.FromAccountID, err = optionalUUID(r.FromAccountID, transaction.FieldFromAccountID); err != nil {
		return in, err
	}
	if in.ToAccountID, err = optionalUUID(r.ToAccountID, transaction.FieldToAccountID); err != nil {
		return in, err
	}
	return in, nil
}

func (r UpdateTransactionRequest) toInput() (transaction.UpdateInput, error) {
	in := transaction.UpdateInput{
		Type:        r.Type,
		Description: r.Description,
		Date:        r.Date,
	}
	if r.Amount != nil {
		amount := string(*r.Amount)
		in.Amount = &amount
	}

	var err error
	if in.CategoryID, err = optionalUUID(r.CategoryID, transaction.FieldCategoryID); err != nil {
		return in, err
	}
	if in.AccountID, err = optionalUUID(r.AccountID, transaction.FieldAccountID); err != nil {
		return in, err
	}
	return in, nil
}

func (q ListTransactionsQuery) toListQuery() (transaction.ListQuery, error) {
	out := transaction.ListQuery{
		Search: q.Search,
		SortBy: q.SortBy,
		Order:  q.Order,
		Page:   q.Page,
		Limit:  q.Limit,
	}

	if q.Type != "" {
		txType, ok := shared.ParseTransactionType(q.Type)
		if !ok {
			return out, transaction.ErrValidation{Message: "Invalid transaction type: " + q.Type + ". Valid types are " + shared.TransactionTypeNames()}
		}
		out.Type = txType
	}

	var err error
	if out.AccountIDs, err = uuidList(q.AccountID, transaction.FieldAccountID); err != nil {
		return out, err
	}
	if out.CategoryIDs, err = uuidList(q.CategoryID, transaction.FieldCategoryID); err != nil {
		return out, err
	}
	if out.StartDate, err = optionalDate(q.StartDate, "startDate"); err != nil {
		return out, err
	}
	if out.EndDate, err = optionalDate(q.EndDate, "endDate"); err != nil {
		return out, err
	}
	return out, nil
}

func optionalDate(raw, field string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	date, err := transaction.ParseDate(raw)
	if err != nil {
		return nil, transaction.ErrValidation{Message: "Invalid " + field}
	}
	return &date, nil
}
