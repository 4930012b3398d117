package transaction

import (
	"strings"
	"time"

	"github.com/finance-tracker-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// SortField is a client-facing sort key
type SortField string

const (
	SortByCreatedAt    SortField = "createdAt"
	SortByDate         SortField = "date"
	SortByAmount       SortField = "amount"
	SortByDescription  SortField = "description"
	SortByType         SortField = "type"
	SortByAccountName  SortField = "account.name"
	SortByCategoryName SortField = "category.name"
)

var sortFields = map[SortField]struct{}{
	SortByCreatedAt:    {},
	SortByDate:         {},
	SortByAmount:       {},
	SortByDescription:  {},
	SortByType:         {},
	SortByAccountName:  {},
	SortByCategoryName: {},
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListQuery is a list request as received from a caller
type ListQuery struct {
	Search      string
	Type        shared.TransactionType
	AccountIDs  []uuid.UUID
	CategoryIDs []uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
	SortBy      string
	Order       string
	Page        int
	Limit       int
}

// Filter restricts rows to one user plus optional predicates
type Filter struct {
	UserID      uuid.UUID
	Search      string
	Type        shared.TransactionType
	AccountIDs  []uuid.UUID
	CategoryIDs []uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
}

type OrderTerm struct {
	Field      SortField
	Descending bool
}

// Criteria is a fully resolved list request
type Criteria struct {
	Filter Filter
	Order  []OrderTerm

	// SignedAmountSort routes the query through the signed-amount path
	SignedAmountSort bool

	Page  int
	Limit int
}

func (c Criteria) Offset() int {
	return (c.Page - 1) * c.Limit
}

// BuildCriteria resolves defaults and ordering for a list request
func BuildCriteria(userID uuid.UUID, q ListQuery) Criteria {
	c := Criteria{
		Filter: Filter{
			UserID:      userID,
			Search:      strings.TrimSpace(q.Search),
			Type:        q.Type,
			AccountIDs:  q.AccountIDs,
			CategoryIDs: q.CategoryIDs,
			StartDate:   q.StartDate,
			EndDate:     q.EndDate,
		},
		Page:  q.Page,
		Limit: q.Limit,
	}

	if c.Page < 1 {
		c.Page = DefaultPage
	}
	if c.Limit < 1 {
		c.Limit = DefaultLimit
	}
	if c.Limit > MaxLimit {
		c.Limit = MaxLimit
	}

	descending := !strings.EqualFold(q.Order, "asc")
	field := SortField(q.SortBy)
	if _, ok := sortFields[field]; !ok {
		c.Order = []OrderTerm{
			{Field: SortByDate, Descending: true},
			{Field: SortByCreatedAt, Descending: true},
		}
		return c
	}

	c.Order = []OrderTerm{{Field: field, Descending: descending}}
	if field != SortByCreatedAt {
		c.Order = append(c.Order, OrderTerm{Field: SortByCreatedAt, Descending: true})
	}
	c.SignedAmountSort = field == SortByAmount
	return c
}
