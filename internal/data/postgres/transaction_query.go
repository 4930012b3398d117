package postgres

import (
	"strconv"
	"strings"

	"github.com/finance-tracker-ledger/internal/domain/transaction"
)

// signedAmountExpr orders money leaving an account before money entering it
const signedAmountExpr = `CASE WHEN t.type = 'CREDIT' OR t.transfer_direction = 'OUTGOING' THEN -t.amount ELSE t.amount END`

var sortColumns = map[transaction.SortField]string{
	transaction.SortByCreatedAt:    "t.created_at",
	transaction.SortByDate:         "t.date",
	transaction.SortByAmount:       "t.amount",
	transaction.SortByDescription:  "t.description",
	transaction.SortByType:         "t.type",
	transaction.SortByAccountName:  "a.name",
	transaction.SortByCategoryName: "c.name",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// queryArgs collects positional parameters while a statement is rendered
type queryArgs struct {
	values []any
}

func (a *queryArgs) add(v any) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}

// renderFilter turns a filter into a WHERE clause over the "t" alias
func renderFilter(f transaction.Filter, args *queryArgs) string {
	conds := []string{"t.user_id = " + args.add(f.UserID)}

	if f.Search != "" {
		conds = append(conds, "t.description ILIKE "+args.add("%"+likeEscaper.Replace(f.Search)+"%"))
	}
	if f.Type != "" {
		conds = append(conds, "t.type = "+args.add(string(f.Type)))
	}
	if len(f.AccountIDs) > 0 {
		conds = append(conds, "t.account_id = ANY("+args.add(f.AccountIDs)+")")
	}
	if len(f.CategoryIDs) > 0 {
		conds = append(conds, "t.category_id = ANY("+args.add(f.CategoryIDs)+")")
	}
	if f.StartDate != nil {
		conds = append(conds, "t.date >= "+args.add(*f.StartDate))
	}
	if f.EndDate != nil {
		conds = append(conds, "t.date <= "+args.add(*f.EndDate))
	}

	return "WHERE " + strings.Join(conds, " AND ")
}

// renderOrder only emits whitelisted columns; signed swaps the amount column
// for its signed key.
func renderOrder(order []transaction.OrderTerm, signed bool) string {
	terms := make([]string, 0, len(order))
	for _, o := range order {
		col, ok := sortColumns[o.Field]
		if !ok {
			continue
		}
		if signed && o.Field == transaction.SortByAmount {
			col = signedAmountExpr
		}
		dir := "ASC"
		if o.Descending {
			dir = "DESC"
		}
		terms = append(terms, col+" "+dir)
	}
	if len(terms) == 0 {
		terms = append(terms, "t.date DESC", "t.created_at DESC")
	}
	return "ORDER BY " + strings.Join(terms, ", ")
}

func renderPage(c transaction.Criteria, args *queryArgs) string {
	return "LIMIT " + args.add(c.Limit) + " OFFSET " + args.add(c.Offset())
}
