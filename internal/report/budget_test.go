package report

import (
	"testing"
	"time"

	"github.com/meucofre/cofre/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func category(name string, kind model.CategoryKind, budget model.Cents) model.Category {
	return model.Category{ID: "cat-" + name, Name: name, Kind: kind, Budget: budget}
}

func expense(categoryName string, amount model.Cents) model.Transaction {
	return model.Transaction{
		ID:       "txn-" + categoryName + "-" + amount.String(),
		Category: categoryName,
		Kind:     model.KindExpense,
		Status:   model.StatusPaid,
		Amount:   amount,
		Date:     time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestCategoryBudget(t *testing.T) {
	categories := []model.Category{
		category("Groceries", model.CategoryKindExpense, 40000),
		category("Transport", model.CategoryKindExpense, 20000),
		category("Salary", model.CategoryKindIncome, 0),
		category("Misc", model.CategoryKindBoth, 0),
	}
	txns := []model.Transaction{
		expense("Groceries", 30000),
		expense("Groceries", 5000),
		expense("Transport", 19000),
		expense("Misc", 1000),
	}

	rep := CategoryBudget(categories, txns)

	// income-only category excluded
	require.Len(t, rep.Lines, 3)

	// ordered descending by percent used
	assert.Equal(t, "Misc", rep.Lines[0].Category)
	assert.Equal(t, "Transport", rep.Lines[1].Category)
	assert.Equal(t, "Groceries", rep.Lines[2].Category)

	assert.InDelta(t, 100.0, rep.Lines[0].PercentUsed, 0.001)
	assert.InDelta(t, 95.0, rep.Lines[1].PercentUsed, 0.001)
	assert.InDelta(t, 87.5, rep.Lines[2].PercentUsed, 0.001)

	assert.Equal(t, model.Cents(35000), rep.Lines[2].Spent)
	assert.Equal(t, model.Cents(5000), rep.Lines[2].Remaining)

	assert.Equal(t, "Total", rep.Total.Category)
	assert.Equal(t, model.Cents(60000), rep.Total.Budget)
	assert.Equal(t, model.Cents(55000), rep.Total.Spent)
	assert.InDelta(t, 91.666, rep.Total.PercentUsed, 0.001)
}

func TestCategoryBudgetNoBudgetNoSpend(t *testing.T) {
	categories := []model.Category{category("Idle", model.CategoryKindExpense, 0)}

	rep := CategoryBudget(categories, nil)

	require.Len(t, rep.Lines, 1)
	assert.Zero(t, rep.Lines[0].PercentUsed)
	assert.Zero(t, rep.Total.PercentUsed)
}

func TestCategoryBudgetIgnoresIncome(t *testing.T) {
	categories := []model.Category{category("Misc", model.CategoryKindBoth, 10000)}
	txns := []model.Transaction{
		{Category: "Misc", Kind: model.KindIncome, Status: model.StatusPaid, Amount: 5000,
			Date: time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)},
	}

	rep := CategoryBudget(categories, txns)

	require.Len(t, rep.Lines, 1)
	assert.Zero(t, rep.Lines[0].Spent)
}
