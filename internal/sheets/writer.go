package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/meucofre/cofre/internal/common"
	"github.com/meucofre/cofre/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer implements the ReportWriter interface for Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: srv,
		logger:  logger,
	}, nil
}

// Write implements the ReportWriter interface.
func (w *Writer) Write(ctx context.Context, report *service.MonthlyReport) error {
	w.logger.Info("starting report export",
		"month", fmt.Sprintf("%04d-%02d", report.Year, report.Month),
		"transactions", len(report.Transactions))

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	if clearErr := w.clearSheet(ctx, spreadsheetID); clearErr != nil {
		return fmt.Errorf("failed to clear sheet: %w", clearErr)
	}

	values := w.prepareReportData(report)

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	err = common.WithRetry(ctx, func() error {
		return w.writeData(ctx, spreadsheetID, values)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	w.logger.Info("report export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// getOrCreateSpreadsheet gets an existing spreadsheet or creates a new one.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		_, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{
				Properties: &sheets.SheetProperties{
					Title: "Report",
				},
			},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, nil
}

// clearSheet clears all data from the sheet.
func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, "A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// prepareReportData flattens a monthly report into sheet rows: a header,
// the month summary, the budget table, then the transaction listing.
func (w *Writer) prepareReportData(report *service.MonthlyReport) [][]any {
	estimatedRows := 16 + len(report.BudgetRows) + len(report.Transactions)
	values := make([][]any, 0, estimatedRows)

	values = append(values,
		[]any{
			fmt.Sprintf("Cofre Report — %s", report.AccountName),
			fmt.Sprintf("%s %d", report.Month, report.Year),
		},
		[]any{"Generated", report.GeneratedAt.Format("Jan 2, 2006 15:04")},
		[]any{},
		[]any{"Summary"},
		[]any{"Income", report.Income.Float64()},
		[]any{"Expense", report.Expense.Float64()},
		[]any{"Pending", report.Pending.Float64()},
		[]any{"Balance", report.Balance.Float64()},
		[]any{"Savings Rate", fmt.Sprintf("%.1f%%", report.SavingsRate)},
		[]any{},
		[]any{"Budget"},
		[]any{"Category", "Budget", "Spent", "Remaining", "% Used"},
	)

	for _, row := range report.BudgetRows {
		values = append(values, []any{
			row.Category,
			row.Budget.Float64(),
			row.Spent.Float64(),
			row.Remaining.Float64(),
			fmt.Sprintf("%.1f%%", row.PercentUsed),
		})
	}

	values = append(values,
		[]any{},
		[]any{"Transactions"},
		[]any{"Date", "Title", "Category", "Kind", "Status", "Amount", "Installment"},
	)

	for i := range report.Transactions {
		txn := &report.Transactions[i]

		installment := ""
		if txn.Installment != nil {
			installment = fmt.Sprintf("%d/%d", txn.Installment.Current, txn.Installment.Total)
		}

		values = append(values, []any{
			txn.Date.Format("2006-01-02"),
			txn.Title,
			txn.Category,
			string(txn.Kind),
			string(txn.Status),
			txn.Amount.Float64(),
			installment,
		})
	}

	return values
}

// writeData writes rows in batches to stay under API request limits.
func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := i + w.config.BatchSize
		if end > len(values) {
			end = len(values)
		}

		valueRange := &sheets.ValueRange{
			Values: values[i:end],
		}

		rangeStr := fmt.Sprintf("A%d", i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, valueRange).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", end-i)
	}

	return nil
}
