package report

import (
	"testing"
	"time"

	"github.com/meucofre/cofre/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestYearlyExpenseSeries(t *testing.T) {
	date := func(month time.Month) time.Time {
		return time.Date(2024, month, 15, 0, 0, 0, 0, time.UTC)
	}

	txns := []model.Transaction{
		{Kind: model.KindExpense, Status: model.StatusPaid, Amount: 10000, Date: date(time.January)},
		{Kind: model.KindExpense, Status: model.StatusPending, Amount: 5000, Date: date(time.January)},
		{Kind: model.KindExpense, Status: model.StatusPaid, Amount: 7000, Date: date(time.December)},
		// other years and income excluded
		{Kind: model.KindExpense, Status: model.StatusPaid, Amount: 9900, Date: time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{Kind: model.KindIncome, Status: model.StatusPaid, Amount: 9900, Date: date(time.January)},
	}

	series := YearlyExpenseSeries(txns, 2024)

	// pending counts alongside paid
	assert.Equal(t, model.Cents(15000), series[0])
	assert.Equal(t, model.Cents(7000), series[11])
	for m := 1; m < 11; m++ {
		assert.Zero(t, series[m], "month %d should be empty", m+1)
	}
}

func TestYearlyCategorySeries(t *testing.T) {
	jan := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)

	txns := []model.Transaction{
		{Kind: model.KindExpense, Category: "Groceries", Amount: 10000, Date: jan},
		{Kind: model.KindExpense, Category: "Groceries", Amount: 2500, Date: jan},
		{Kind: model.KindExpense, Category: "Transport", Amount: 4000, Date: jan},
	}

	series := YearlyCategorySeries(txns, 2024)

	assert.Equal(t, model.Cents(12500), series[0]["Groceries"])
	assert.Equal(t, model.Cents(4000), series[0]["Transport"])
	assert.Empty(t, series[5])
}
