package reports

import (
	"github.com/shopspring/decimal"

	"finbook/models"
	"finbook/pkg/money"
)

// TypeStatusTotal is one row of the grouped totals query:
// SELECT type, status, SUM(amount) ... GROUP BY type, status.
type TypeStatusTotal struct {
	Type   string
	Status string
	Total  int64
}

// Summary holds the six decimal totals returned by the summary endpoint.
// Total fields sum across all statuses of their type; the completed/pending
// fields reflect only the matching group, and an absent group leaves its
// field at zero.
type Summary struct {
	TotalIncome       decimal.Decimal `json:"totalIncome"`
	CompletedIncome   decimal.Decimal `json:"completedIncome"`
	PendingIncome     decimal.Decimal `json:"pendingIncome"`
	TotalExpenses     decimal.Decimal `json:"totalExpenses"`
	CompletedExpenses decimal.Decimal `json:"completedExpenses"`
	PendingExpenses   decimal.Decimal `json:"pendingExpenses"`
}

// Summarize folds grouped integer totals into the decimal summary figures.
func Summarize(rows []TypeStatusTotal, currency string) Summary {
	var s Summary
	for _, r := range rows {
		amt := money.FromSmallestUnit(r.Total, currency)
		switch r.Type {
		case models.TransactionTypeIncome:
			s.TotalIncome = s.TotalIncome.Add(amt)
			switch r.Status {
			case models.TransactionStatusCompleted:
				s.CompletedIncome = amt
			case models.TransactionStatusPending:
				s.PendingIncome = amt
			}
		case models.TransactionTypeExpense:
			s.TotalExpenses = s.TotalExpenses.Add(amt)
			switch r.Status {
			case models.TransactionStatusCompleted:
				s.CompletedExpenses = amt
			case models.TransactionStatusPending:
				s.PendingExpenses = amt
			}
		}
	}
	return s
}
