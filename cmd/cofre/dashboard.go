package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/meucofre/cofre/internal/cli"
	"github.com/meucofre/cofre/internal/model"
	"github.com/meucofre/cofre/internal/prefs"
	"github.com/meucofre/cofre/internal/report"
	"github.com/spf13/cobra"
)

var defaultDashboardSections = []string{"summary", "budget", "transactions"}

func dashboardCmd() *cobra.Command {
	var yearFlag, monthFlag string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the monthly overview",
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

			categories, txns, err := app.books.LoadBooks(ctx, sess.Caller.ID, sess.Active.DataContextID)
			if err != nil {
				return err
			}

			for _, section := range dashboardSections(app.cache, sess.Active.ID) {
				switch section {
				case "summary":
					fmt.Println(cli.RenderSummary(report.Monthly(txns, year, month), year, month))
				case "budget":
					inMonth := monthTransactions(txns, year, month)
					fmt.Println(cli.BoldStyle.Render("Budget"))
					fmt.Println(cli.RenderBudget(report.CategoryBudget(categories, inMonth)))
				case "transactions":
					inMonth := monthTransactions(txns, year, month)
					fmt.Println(cli.BoldStyle.Render("Transactions"))
					fmt.Println(cli.RenderTransactions(inMonth))
				case "series":
					fmt.Println(cli.BoldStyle.Render(fmt.Sprintf("Expenses %d", year)))
					printSeries(report.YearlyExpenseSeries(txns, year))
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&yearFlag, "year", "", "year (default: current)")
	cmd.Flags().StringVar(&monthFlag, "month", "", "month 1-12 (default: current)")

	cmd.AddCommand(configureDashboardCmd())

	return cmd
}

func configureDashboardCmd() *cobra.Command {
	var sections string

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Choose which dashboard sections appear, and in what order",
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

			chosen := strings.Split(sections, ",")
			for i := range chosen {
				chosen[i] = strings.TrimSpace(chosen[i])
			}

			p := prefs.DashboardPrefs{Visible: chosen, Order: chosen}
			if err := app.cache.SaveDashboard(sess.Active.ID, p); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess("Dashboard preferences saved."))
			return nil
		},
	}

	cmd.Flags().StringVar(&sections, "sections", strings.Join(defaultDashboardSections, ","),
		"comma-separated sections (summary, budget, transactions, series)")

	return cmd
}

// dashboardSections returns the configured section order for the account,
// falling back to the default layout.
func dashboardSections(cache *prefs.Store, accountID string) []string {
	p, err := cache.Dashboard(accountID)
	if err != nil || len(p.Order) == 0 {
		return defaultDashboardSections
	}

	visible := make(map[string]bool, len(p.Visible))
	for _, s := range p.Visible {
		visible[s] = true
	}

	sections := make([]string, 0, len(p.Order))
	for _, s := range p.Order {
		if visible[s] {
			sections = append(sections, s)
		}
	}
	return sections
}

func monthTransactions(txns []model.Transaction, year int, month time.Month) []model.Transaction {
	inMonth := make([]model.Transaction, 0, len(txns))
	for i := range txns {
		if txns[i].DueIn(year, month) {
			inMonth = append(inMonth, txns[i])
		}
	}
	return inMonth
}

func printSeries(series [12]model.Cents) {
	var max model.Cents
	for _, v := range series {
		if v > max {
			max = v
		}
	}

	for i, v := range series {
		width := 0
		if max > 0 {
			width = int(int64(v) * 24 / int64(max))
		}
		bar := strings.Repeat("█", width)
		fmt.Printf("%-4s %s %s\n", time.Month(i+1).String()[:3], cli.ExpenseStyle.Render(bar), v.String())
	}
}
