package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/meucofre/cofre/internal/cli"
	"github.com/meucofre/cofre/internal/config"
	"github.com/meucofre/cofre/internal/report"
	"github.com/meucofre/cofre/internal/service"
	"github.com/meucofre/cofre/internal/sheets"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var yearFlag, monthFlag string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a monthly report to Google Sheets",
		Long: `Build the monthly summary, budget table and transaction listing for
the active data context and write them to a Google Spreadsheet.
Configure credentials under the 'sheets' config section or with
COFRE_SHEETS_* environment variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			sess, err := app.currentLogin(ctx)
			if err != nil {
				return err
			}

			year, month, err := monthWindow(yearFlag, monthFlag)
			if err != nil {
				return err
			}

			sheetsConfig, err := config.LoadSheetsConfig()
			if err != nil {
				return err
			}

			writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
			if err != nil {
				return err
			}

			bar := progressbar.NewOptions(3,
				progressbar.OptionSetDescription("Exporting report"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)

			categories, txns, err := app.books.LoadBooks(ctx, sess.Caller.ID, sess.Active.DataContextID)
			if err != nil {
				return err
			}
			_ = bar.Add(1)

			inMonth := monthTransactions(txns, year, month)
			summary := report.Monthly(txns, year, month)
			budget := report.CategoryBudget(categories, inMonth)
			_ = bar.Add(1)

			monthly := &service.MonthlyReport{
				GeneratedAt:  time.Now(),
				Month:        month,
				Year:         year,
				AccountName:  sess.Active.Name,
				Income:       summary.Income,
				Expense:      summary.Expense,
				Pending:      summary.Pending,
				Balance:      summary.Balance,
				SavingsRate:  summary.SavingsRate,
				BudgetRows:   budgetRows(budget),
				Transactions: inMonth,
			}

			if err := writer.Write(ctx, monthly); err != nil {
				return err
			}
			_ = bar.Add(1)

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exported %s %d (%d transactions).", month, year, len(inMonth))))
			return nil
		},
	}

	cmd.Flags().StringVar(&yearFlag, "year", "", "year (default: current)")
	cmd.Flags().StringVar(&monthFlag, "month", "", "month 1-12 (default: current)")

	return cmd
}

func budgetRows(rep report.BudgetReport) []service.BudgetRow {
	rows := make([]service.BudgetRow, 0, len(rep.Lines))
	for _, line := range rep.Lines {
		rows = append(rows, service.BudgetRow{
			Category:    line.Category,
			Budget:      line.Budget,
			Spent:       line.Spent,
			Remaining:   line.Remaining,
			PercentUsed: line.PercentUsed,
		})
	}
	return rows
}
