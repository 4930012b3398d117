package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/finance-tracker-ledger/internal/api_gateway/service"
	"github.com/finance-tracker-ledger/internal/domain/account"
	"github.com/finance-tracker-ledger/internal/domain/transaction"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// Create opens a new account for the caller
func (h *AccountHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WarnContext(c.Request.Context(), "Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	initialBalance := decimal.Zero
	if strings.TrimSpace(string(req.InitialBalance)) != "" {
		parsed, err := transaction.ParseAmount(string(req.InitialBalance))
		if err != nil {
			RespondBadRequest(c, "Invalid initialBalance")
			return
		}
		initialBalance = parsed
	}

	acc, err := h.accountService.CreateAccount(c.Request.Context(), userID, service.CreateAccountInput{
		Name:           req.Name,
		Type:           account.Type(strings.ToUpper(req.Type)),
		Currency:       req.Currency,
		InitialBalance: initialBalance,
		Description:    req.Description,
	})
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to create account")
		return
	}

	RespondCreated(c, mapAccountToResponse(acc))
}

// GetByID retrieves an owned account; foreign accounts look missing
func (h *AccountHandler) GetByID(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "account")
	if !ok {
		return
	}

	acc, err := h.accountService.GetAccount(c.Request.Context(), userID, id)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to get account")
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

func (h *AccountHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to list accounts")
		return
	}

	response := make([]AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		response = append(response, mapAccountToResponse(acc))
	}
	RespondOK(c, response)
}

// Activity pages through the projected balance history of an account
func (h *AccountHandler) Activity(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "account")
	if !ok {
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	entries, total, err := h.accountService.GetAccountActivity(c.Request.Context(), userID, id, pagination.Page, pagination.PerPage)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to get account activity")
		return
	}

	activity := make([]ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		activity = append(activity, mapEntryToActivity(entry))
	}

	RespondWithPaginatedData(c, http.StatusOK, activity, pagination.Page, pagination.PerPage, int(total))
}
