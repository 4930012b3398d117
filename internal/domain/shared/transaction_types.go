package shared

import "strings"

// MoneyScale is the number of fractional digits amounts and balances are stored with
const MoneyScale = 4

// TransactionType defines the direction a transaction moves money in
type TransactionType string

const (
	TransactionTypeCredit     TransactionType = "CREDIT"
	TransactionTypeDebit      TransactionType = "DEBIT"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
)

// AllTransactionTypes lists the supported types in their canonical order
var AllTransactionTypes = []TransactionType{
	TransactionTypeCredit,
	TransactionTypeDebit,
	TransactionTypeTransfer,
	TransactionTypeAdjustment,
}

// ParseTransactionType returns the matching type and whether it is supported
func ParseTransactionType(value string) (TransactionType, bool) {
	for _, t := range AllTransactionTypes {
		if string(t) == value {
			return t, true
		}
	}
	return "", false
}

// TransactionTypeNames joins the supported type names with ", "
func TransactionTypeNames() string {
	names := make([]string, 0, len(AllTransactionTypes))
	for _, t := range AllTransactionTypes {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

// TransferDirection marks which leg of a transfer a row represents
type TransferDirection string

const (
	TransferDirectionNone     TransferDirection = ""
	TransferDirectionOutgoing TransferDirection = "OUTGOING"
	TransferDirectionIncoming TransferDirection = "INCOMING"
)

// JournalEventType describes what happened to a transaction
type JournalEventType string

const (
	JournalEventPosted  JournalEventType = "TRANSACTION_POSTED"
	JournalEventRevised JournalEventType = "TRANSACTION_REVISED"
	JournalEventRemoved JournalEventType = "TRANSACTION_REMOVED"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
