package report

import (
	"github.com/meucofre/cofre/internal/model"
)

// YearlyExpenseSeries returns twelve monthly expense totals for the given
// year, fixed Jan–Dec regardless of data presence. Both paid and pending
// expenses count; trend charts show committed money, not settled money.
func YearlyExpenseSeries(txns []model.Transaction, year int) [12]model.Cents {
	var series [12]model.Cents

	for i := range txns {
		txn := &txns[i]
		if txn.Kind != model.KindExpense || txn.Date.Year() != year {
			continue
		}
		series[int(txn.Date.Month())-1] += txn.Amount
	}

	return series
}

// YearlyCategorySeries pivots the same population by category name for
// stacked presentation: one map per month, category name → total.
func YearlyCategorySeries(txns []model.Transaction, year int) [12]map[string]model.Cents {
	var series [12]map[string]model.Cents
	for i := range series {
		series[i] = make(map[string]model.Cents)
	}

	for i := range txns {
		txn := &txns[i]
		if txn.Kind != model.KindExpense || txn.Date.Year() != year {
			continue
		}
		series[int(txn.Date.Month())-1][txn.Category] += txn.Amount
	}

	return series
}
