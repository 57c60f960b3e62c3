// Package reports builds the monthly breakdown and the type/status summary
// served by the reporting endpoints. All monetary math uses decimals
// derived from the stored integer amounts; nothing here touches float64.
package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"finbook/models"
	"finbook/pkg/money"
)

func init() {
	// monetary fields serialize as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Budget split ratios (50/30/20 rule).
var (
	necessitiesRatio = decimal.RequireFromString("0.5")
	wantsRatio       = decimal.RequireFromString("0.3")
	savingsRatio     = decimal.RequireFromString("0.2")
)

// ValidYear bounds the accepted year parameter for the reporting endpoints.
func ValidYear(year int) bool {
	return year >= 1900 && year <= 2100
}

// TransactionView is a transaction plus its decimal amount. The decimal is
// attached at the serialization boundary so the stored integer stays the
// single source of truth.
type TransactionView struct {
	models.Transaction
	AmountDecimal decimal.Decimal `json:"amountDecimal"`
}

// NewTransactionView derives the decimal amount using the owner's currency.
func NewTransactionView(t models.Transaction, currency string) TransactionView {
	return TransactionView{
		Transaction:   t,
		AmountDecimal: money.FromSmallestUnit(t.Amount, currency),
	}
}

// MonthReport is one calendar month of the yearly breakdown: the month's
// transactions split by type plus the 50/30/20 budget evaluation.
type MonthReport struct {
	Incomes              []TransactionView `json:"incomes"`
	Expenses             []TransactionView `json:"expenses"`
	TotalIncome          decimal.Decimal   `json:"totalIncome"`
	TotalExpenses        decimal.Decimal   `json:"totalExpenses"`
	BudgetForNecessities decimal.Decimal   `json:"budgetForNecessities"`
	WantsBudget          decimal.Decimal   `json:"wantsBudget"`
	ExpectedSavings      decimal.Decimal   `json:"expectedSavings"`
	IsOverBudget         bool              `json:"isOverBudget"`
	ActualSavings        decimal.Decimal   `json:"actualSavings"`
	IsOnTrack            bool              `json:"isOnTrack"`
}

// Monthly buckets a year's transactions into 12 calendar-month reports
// (January first). A month without transactions keeps all-zero metrics,
// isOverBudget false and isOnTrack true (0 savings meets a 0 target).
func Monthly(txs []models.Transaction, currency string) [12]MonthReport {
	var months [12]MonthReport
	for i := range months {
		months[i].Incomes = []TransactionView{}
		months[i].Expenses = []TransactionView{}
	}

	for _, t := range txs {
		idx := int(t.Date.Month()) - 1
		v := NewTransactionView(t, currency)
		switch t.Type {
		case models.TransactionTypeIncome:
			months[idx].Incomes = append(months[idx].Incomes, v)
		case models.TransactionTypeExpense:
			months[idx].Expenses = append(months[idx].Expenses, v)
		}
	}

	for i := range months {
		m := &months[i]
		sort.SliceStable(m.Incomes, func(a, b int) bool {
			return m.Incomes[a].Date.Before(m.Incomes[b].Date)
		})
		sort.SliceStable(m.Expenses, func(a, b int) bool {
			return m.Expenses[a].Date.Before(m.Expenses[b].Date)
		})

		totalIncome := decimal.Zero
		for _, v := range m.Incomes {
			totalIncome = totalIncome.Add(v.AmountDecimal)
		}
		totalExpenses := decimal.Zero
		for _, v := range m.Expenses {
			totalExpenses = totalExpenses.Add(v.AmountDecimal)
		}

		m.TotalIncome = totalIncome
		m.TotalExpenses = totalExpenses
		m.BudgetForNecessities = totalIncome.Mul(necessitiesRatio)
		m.WantsBudget = totalIncome.Mul(wantsRatio)
		m.ExpectedSavings = totalIncome.Mul(savingsRatio)
		m.IsOverBudget = totalExpenses.GreaterThan(m.BudgetForNecessities)
		m.ActualSavings = totalIncome.Sub(totalExpenses).Sub(m.WantsBudget)
		m.IsOnTrack = m.ActualSavings.GreaterThanOrEqual(m.ExpectedSavings)
	}
	return months
}
