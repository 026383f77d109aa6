package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/meucofre/cofre/internal/model"
	"github.com/meucofre/cofre/internal/report"
	"github.com/meucofre/cofre/internal/service"
)

const budgetBarWidth = 20

// RenderSummary renders the monthly summary box.
func RenderSummary(summary report.MonthlySummary, year int, month time.Month) string {
	rows := []string{
		fmt.Sprintf("%s %s", IncomeStyle.Render("Income:"), IncomeStyle.Render(summary.Income.String())),
		fmt.Sprintf("%s %s", ExpenseStyle.Render("Expense:"), ExpenseStyle.Render(summary.Expense.String())),
		fmt.Sprintf("%s %s", PendingStyle.Render("Pending:"), PendingStyle.Render(summary.Pending.String())),
		fmt.Sprintf("%s %s", BoldStyle.Render("Balance:"), BoldStyle.Render(summary.Balance.String())),
		SubtleStyle.Render(fmt.Sprintf("Savings rate: %.1f%%", summary.SavingsRate)),
	}

	title := fmt.Sprintf("%s %s %d", ChartIcon, month, year)
	return RenderBox(title, lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// RenderBudget renders the per-category budget table with usage bars.
func RenderBudget(rep report.BudgetReport) string {
	if len(rep.Lines) == 0 {
		return SubtleStyle.Render("No expense categories with activity.")
	}

	var b strings.Builder
	for _, line := range rep.Lines {
		b.WriteString(renderBudgetLine(line))
		b.WriteString("\n")
	}
	b.WriteString(SubtleStyle.Render(strings.Repeat("─", 48)))
	b.WriteString("\n")
	b.WriteString(renderBudgetLine(rep.Total))

	return b.String()
}

func renderBudgetLine(line report.BudgetLine) string {
	style := SuccessStyle
	switch {
	case line.PercentUsed >= 100:
		style = ErrorStyle
	case line.PercentUsed >= 80:
		style = WarningStyle
	}

	filled := int(line.PercentUsed / 100 * budgetBarWidth)
	if filled > budgetBarWidth {
		filled = budgetBarWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", budgetBarWidth-filled)

	return fmt.Sprintf("%-16s %s %6.1f%%  %s / %s",
		line.Category,
		style.Render(bar),
		line.PercentUsed,
		line.Spent.String(),
		line.Budget.String())
}

// RenderTransactions renders a transaction listing, newest first.
func RenderTransactions(txns []model.Transaction) string {
	if len(txns) == 0 {
		return SubtleStyle.Render("No transactions recorded.")
	}

	header := TableHeaderStyle.Render(fmt.Sprintf("%-10s  %-28s  %-14s  %-8s  %10s",
		"Date", "Title", "Category", "Status", "Amount"))

	rows := make([]string, 0, len(txns)+1)
	rows = append(rows, header)

	for i := range txns {
		txn := &txns[i]

		title := txn.Title
		if txn.Installment != nil {
			title = fmt.Sprintf("%s (%d/%d)", title, txn.Installment.Current, txn.Installment.Total)
		}
		if len(title) > 28 {
			title = title[:25] + "..."
		}

		amountStyle := IncomeStyle
		if txn.Kind == model.KindExpense {
			amountStyle = ExpenseStyle
			if txn.Status == model.StatusPending {
				amountStyle = PendingStyle
			}
		}

		rows = append(rows, fmt.Sprintf("%-10s  %-28s  %-14s  %-8s  %s",
			txn.Date.Format("2006-01-02"),
			title,
			txn.Category,
			txn.Status,
			amountStyle.Render(fmt.Sprintf("%10s", txn.Amount.String()))))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// RenderAnalysis renders the AI financial analysis.
func RenderAnalysis(analysis *service.FinancialAnalysis) string {
	sections := []string{analysis.Summary}

	if len(analysis.Tips) > 0 {
		sections = append(sections, "", BoldStyle.Render("Tips"))
		for _, tip := range analysis.Tips {
			sections = append(sections, "  • "+tip)
		}
	}

	if len(analysis.Anomalies) > 0 {
		sections = append(sections, "", WarningStyle.Render("Anomalies"))
		for _, anomaly := range analysis.Anomalies {
			sections = append(sections, "  "+WarningIcon+" "+anomaly)
		}
	}

	return RenderBox(RobotIcon+" Analysis", lipgloss.JoinVertical(lipgloss.Left, sections...))
}
