package handler

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/finance-tracker-ledger/internal/api_gateway/middleware"
	"github.com/finance-tracker-ledger/internal/domain/account"
	"github.com/finance-tracker-ledger/internal/domain/category"
	"github.com/finance-tracker-ledger/internal/domain/transaction"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const accountNotFoundMessage = "Account not found or you don't have access to it"

// rejectedInputs are domain errors whose message is safe to show the caller
var rejectedInputs = []error{
	account.ErrEmptyName,
	account.ErrInvalidAccountType,
	account.ErrInvalidCurrencyFormat,
	account.ErrInvalidBalanceScale,
	category.ErrEmptyName,
	category.ErrInvalidType,
}

// respondServiceError maps a service error onto the response envelope.
// Anything unrecognised is logged and hidden behind a 500.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, logMessage string) {
	var validationErr transaction.ErrValidation
	var inUseErr category.ErrCategoryInUse

	switch {
	case errors.As(err, &validationErr):
		RespondBadRequest(c, validationErr.Message)
	case errors.Is(err, account.ErrAccountNotFound{}):
		RespondNotFound(c, accountNotFoundMessage)
	case errors.Is(err, transaction.ErrTransactionNotFound{}):
		RespondNotFound(c, "Transaction not found")
	case errors.Is(err, category.ErrCategoryNotFound{}):
		RespondNotFound(c, "Category not found")
	case errors.As(err, &inUseErr):
		RespondConflict(c, "Category is still used by transactions")
	default:
		for _, rejected := range rejectedInputs {
			if errors.Is(err, rejected) {
				RespondBadRequest(c, err.Error())
				return
			}
		}
		logger.ErrorContext(c.Request.Context(), logMessage, "error", err)
		RespondInternalError(c)
	}
}

// requireUser returns the authenticated caller or writes a 401
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return uuid.Nil, false
	}
	return userID, true
}

// pathID parses the :id path parameter or writes a 400 naming what was expected
func pathID(c *gin.Context, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUID parses an optional wire id; field names the JSON field in errors
func optionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, transaction.ErrValidation{Message: "Invalid " + field}
	}
	return &id, nil
}

// uuidList accepts repeated and comma separated values
func uuidList(values []string, field string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				return nil, transaction.ErrValidation{Message: "Invalid " + field}
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
