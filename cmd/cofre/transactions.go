package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/meucofre/cofre/internal/cli"
	"github.com/meucofre/cofre/internal/ledger"
	"github.com/meucofre/cofre/internal/model"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Record and manage transactions",
	}

	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(addTransactionCmd())
	cmd.AddCommand(payTransactionsCmd())
	cmd.AddCommand(deleteTransactionCmd())

	return cmd
}

func listTransactionsCmd() *cobra.Command {
	var yearFlag, monthFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions for a month",
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

			_, txns, err := app.books.LoadBooks(ctx, sess.Caller.ID, sess.Active.DataContextID)
			if err != nil {
				return err
			}

			inMonth := txns[:0]
			for i := range txns {
				if txns[i].DueIn(year, month) {
					inMonth = append(inMonth, txns[i])
				}
			}

			fmt.Println(cli.FormatTitle(fmt.Sprintf("%s %d", month, year)))
			fmt.Println(cli.RenderTransactions(inMonth))
			return nil
		},
	}

	cmd.Flags().StringVar(&yearFlag, "year", "", "year (default: current)")
	cmd.Flags().StringVar(&monthFlag, "month", "", "month 1-12 (default: current)")

	return cmd
}

func addTransactionCmd() *cobra.Command {
	var (
		amountFlag   string
		category     string
		kind         string
		dateFlag     string
		status       string
		installments int
		observation  string
		paidOn       string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Record a transaction",
		Long: `Record an income or expense. Expenses may be split into monthly
installments; the full amount is distributed across the series with any
rounding remainder carried by the first installment.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			amount, err := model.ParseCents(amountFlag)
			if err != nil {
				return fmt.Errorf("invalid amount: %w", err)
			}

			date := time.Now()
			if dateFlag != "" {
				if date, err = time.Parse(dateLayout, dateFlag); err != nil {
					return fmt.Errorf("invalid date %q: use YYYY-MM-DD", dateFlag)
				}
			}

			var paymentDate *time.Time
			if paidOn != "" {
				parsed, err := time.Parse(dateLayout, paidOn)
				if err != nil {
					return fmt.Errorf("invalid payment date %q: use YYYY-MM-DD", paidOn)
				}
				paymentDate = &parsed
				status = string(model.StatusPaid)
			}

			intent := ledger.Intent{
				Date:          date,
				PaymentDate:   paymentDate,
				Title:         args[0],
				Category:      category,
				Observation:   observation,
				DataContextID: sess.Active.DataContextID,
				Kind:          model.TransactionKind(kind),
				Status:        model.TransactionStatus(status),
				Amount:        amount,
				Installments:  installments,
			}

			created, err := app.books.AddTransaction(ctx, sess.Caller.ID, intent)
			if err != nil {
				return err
			}

			if len(created) > 1 {
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Recorded %q in %d installments of ~%s.",
					args[0], len(created), created[1].Amount.String())))
			} else {
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Recorded %q (%s).", args[0], amount.String())))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&amountFlag, "amount", "", "total amount, e.g. 900.00 (required)")
	cmd.Flags().StringVar(&category, "category", "", "category name (required)")
	cmd.Flags().StringVar(&kind, "kind", "expense", "income or expense")
	cmd.Flags().StringVar(&dateFlag, "date", "", "due date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&status, "status", "pending", "paid or pending")
	cmd.Flags().IntVar(&installments, "installments", 1, "number of monthly installments (expenses only)")
	cmd.Flags().StringVar(&observation, "note", "", "free-form note")
	cmd.Flags().StringVar(&paidOn, "paid-on", "", "payment date YYYY-MM-DD (implies --status paid)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func payTransactionsCmd() *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "pay <transaction-id>...",
		Short: "Mark pending expenses as paid",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			paymentDate := time.Now()
			if dateFlag != "" {
				if paymentDate, err = time.Parse(dateLayout, dateFlag); err != nil {
					return fmt.Errorf("invalid date %q: use YYYY-MM-DD", dateFlag)
				}
			}

			if err := app.books.MarkPaid(ctx, sess.Caller.ID, sess.Active.DataContextID, args, paymentDate); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Marked %s as paid.", pluralize(len(args), "transaction"))))
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "payment date YYYY-MM-DD (default: today)")

	return cmd
}

func deleteTransactionCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <transaction-id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if !force {
				prompter := cli.NewPrompter(os.Stdin, os.Stdout)
				ok, err := prompter.Confirm(ctx, "Delete this transaction?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println(cli.SubtleStyle.Render("Aborted."))
					return nil
				}
			}

			if err := app.books.DeleteTransaction(ctx, sess.Caller.ID, sess.Active.DataContextID, args[0]); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess("Transaction deleted."))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip confirmation")

	return cmd
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
