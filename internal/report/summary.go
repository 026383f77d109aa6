// Package report derives read-only summaries from transaction collections.
// Every function here is pure: input slices are never mutated and no I/O
// happens.
package report

import (
	"time"

	"github.com/meucofre/cofre/internal/model"
)

// MonthlySummary aggregates one calendar month of activity.
type MonthlySummary struct {
	Income      model.Cents
	Expense     model.Cents
	Pending     model.Cents
	Balance     model.Cents
	SavingsRate float64
}

// Monthly computes the summary for an exact year+month match (not a
// rolling window).
//
// Income and expense count only paid records; pending counts pending
// expenses. Pending income is not surfaced as a separate figure. The
// savings rate is a percentage and may be negative; it is zero whenever
// income is zero.
func Monthly(txns []model.Transaction, year int, month time.Month) MonthlySummary {
	var summary MonthlySummary

	for i := range txns {
		txn := &txns[i]
		if !txn.DueIn(year, month) {
			continue
		}

		switch txn.Kind {
		case model.KindIncome:
			if txn.Status == model.StatusPaid {
				summary.Income += txn.Amount
			}
		case model.KindExpense:
			switch txn.Status {
			case model.StatusPaid:
				summary.Expense += txn.Amount
			case model.StatusPending:
				summary.Pending += txn.Amount
			}
		}
	}

	summary.Balance = summary.Income - summary.Expense
	if summary.Income > 0 {
		summary.SavingsRate = float64(summary.Income-summary.Expense) / float64(summary.Income) * 100
	}

	return summary
}
