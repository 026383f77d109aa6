package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/meucofre/cofre/internal/ai"
	"github.com/meucofre/cofre/internal/cli"
	"github.com/meucofre/cofre/internal/config"
	"github.com/meucofre/cofre/internal/ledger"
	"github.com/meucofre/cofre/internal/model"
	"github.com/meucofre/cofre/internal/service"
	"github.com/spf13/cobra"
)

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "AI analysis of recent activity",
		Long:  `Send your most recent transactions to the configured AI provider for a spending summary, saving tips and anomaly flags. Degrades to a neutral message when no provider is configured.`,
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

			clients, err := ai.NewClients(ctx, config.LoadAIConfig())
			if err != nil {
				return err
			}

			_, txns, err := app.books.LoadBooks(ctx, sess.Caller.ID, sess.Active.DataContextID)
			if err != nil {
				return err
			}

			records := make([]service.AnalysisRecord, 0, len(txns))
			for i := range txns {
				records = append(records, service.AnalysisRecord{
					Date:     txns[i].Date,
					Title:    txns[i].Title,
					Category: txns[i].Category,
					Kind:     txns[i].Kind,
					Amount:   txns[i].Amount,
				})
			}

			analysis := ai.SafeAnalyze(ctx, clients.Analyzer, records)
			fmt.Println(cli.RenderAnalysis(analysis))
			return nil
		},
	}
}

func receiptCmd() *cobra.Command {
	var save bool
	var category string

	cmd := &cobra.Command{
		Use:   "receipt <image-file>",
		Short: "Extract a transaction from a receipt photo",
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

			clients, err := ai.NewClients(ctx, config.LoadAIConfig())
			if err != nil {
				return err
			}

			image, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}

			mimeType := mime.TypeByExtension(filepath.Ext(args[0]))
			if mimeType == "" {
				mimeType = "image/jpeg"
			}

			receipt, err := clients.Extractor.Extract(ctx, image, mimeType)
			if err != nil {
				return err
			}
			receipt.Date = receiptDate(receipt.Date)

			fmt.Println(cli.FormatTitle(cli.ReceiptIcon + " " + receipt.Title))
			fmt.Printf("  Amount: %s\n", receipt.Amount.String())
			fmt.Printf("  Date:   %s\n", receipt.Date.Format(dateLayout))
			if receipt.Observation != "" {
				fmt.Println(cli.SubtleStyle.Render("  " + receipt.Observation))
			}

			if !save {
				fmt.Println(cli.SubtleStyle.Render("Run again with --save --category <name> to record it."))
				return nil
			}
			if category == "" {
				return fmt.Errorf("--category is required with --save")
			}

			intent := receiptIntent(receipt, category, sess.Active.DataContextID)
			if _, err := app.books.AddTransaction(ctx, sess.Caller.ID, intent); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess("Transaction recorded from receipt."))
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "record the extracted transaction")
	cmd.Flags().StringVar(&category, "category", "", "category for the recorded transaction")

	return cmd
}

// receiptDate falls back to today when the model could not read a date off
// the receipt, so the preview and the saved record stay usable.
func receiptDate(extracted time.Time) time.Time {
	if extracted.IsZero() {
		return time.Now().UTC().Truncate(24 * time.Hour)
	}
	return extracted
}

// receiptIntent shapes extracted receipt data into a paid expense.
func receiptIntent(receipt *service.ReceiptData, category, contextID string) ledger.Intent {
	paymentDate := receipt.Date
	return ledger.Intent{
		Date:          receipt.Date,
		PaymentDate:   &paymentDate,
		Title:         receipt.Title,
		Category:      category,
		Observation:   receipt.Observation,
		DataContextID: contextID,
		Kind:          model.KindExpense,
		Status:        model.StatusPaid,
		Amount:        receipt.Amount,
		Installments:  1,
	}
}
