package report

import (
	"sort"

	"github.com/meucofre/cofre/internal/model"
)

// BudgetLine is one category's budget-vs-actual row.
type BudgetLine struct {
	Category    string
	Budget      model.Cents
	Spent       model.Cents
	Remaining   model.Cents
	PercentUsed float64
}

// BudgetReport is the per-category consumption table plus a totals row
// aggregated with the same percent formula over the summed values.
type BudgetReport struct {
	Lines []BudgetLine
	Total BudgetLine
}

// CategoryBudget builds the budget consumption report for expense-tracking
// categories. The transaction set is expected to be pre-filtered to the
// reporting window by the caller; only expense-kind records contribute to
// spent amounts. Lines are sorted descending by percent used (stable).
func CategoryBudget(categories []model.Category, txns []model.Transaction) BudgetReport {
	spentByCategory := make(map[string]model.Cents)
	for i := range txns {
		if txns[i].Kind == model.KindExpense {
			spentByCategory[txns[i].Category] += txns[i].Amount
		}
	}

	var rep BudgetReport
	for i := range categories {
		cat := &categories[i]
		if !cat.TracksExpenses() {
			continue
		}

		spent := spentByCategory[cat.Name]
		line := BudgetLine{
			Category:    cat.Name,
			Budget:      cat.Budget,
			Spent:       spent,
			Remaining:   cat.Budget - spent,
			PercentUsed: percentUsed(cat.Budget, spent),
		}
		rep.Lines = append(rep.Lines, line)

		rep.Total.Budget += line.Budget
		rep.Total.Spent += line.Spent
	}

	sort.SliceStable(rep.Lines, func(i, j int) bool {
		return rep.Lines[i].PercentUsed > rep.Lines[j].PercentUsed
	})

	rep.Total.Category = "Total"
	rep.Total.Remaining = rep.Total.Budget - rep.Total.Spent
	rep.Total.PercentUsed = percentUsed(rep.Total.Budget, rep.Total.Spent)

	return rep
}

// percentUsed applies the budget consumption formula: spent/budget when a
// budget exists, otherwise fully used iff anything was spent.
func percentUsed(budget, spent model.Cents) float64 {
	if budget > 0 {
		return float64(spent) / float64(budget) * 100
	}
	if spent > 0 {
		return 100
	}
	return 0
}
