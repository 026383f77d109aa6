package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/meucofre/cofre/internal/common"
	"github.com/meucofre/cofre/internal/model"
)

const dateLayout = "2006-01-02"

// GetTransactions returns all transactions in the given data context,
// newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, callerID, contextID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(callerID, "callerID"); err != nil {
		return nil, err
	}
	if err := validateString(contextID, "contextID"); err != nil {
		return nil, err
	}
	if err := s.authorizeContext(ctx, callerID, contextID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, amount, kind, category, status, date, payment_date,
		       observation, installments, data_context_id, created_at
		FROM transactions WHERE data_context_id = ?
		ORDER BY date DESC, created_at DESC`,
		contextID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query transactions: %v", common.ErrStorage, err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate transactions: %v", common.ErrStorage, err)
	}

	slog.Debug("retrieved transactions", "context_id", contextID, "count", len(txns))
	return txns, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn          model.Transaction
		amount       any
		date         string
		paymentDate  sql.NullString
		observation  sql.NullString
		installments sql.NullString
	)
	err := row.Scan(&txn.ID, &txn.Title, &amount, &txn.Kind, &txn.Category, &txn.Status,
		&date, &paymentDate, &observation, &installments, &txn.DataContextID, &txn.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: scan transaction: %v", common.ErrStorage, err)
	}

	txn.Amount = coerceCents(amount)
	txn.Observation = observation.String

	txn.Date, err = time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed date %q: %v", common.ErrStorage, date, err)
	}

	if paymentDate.Valid && paymentDate.String != "" {
		parsed, err := time.Parse(dateLayout, paymentDate.String)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed payment date %q: %v", common.ErrStorage, paymentDate.String, err)
		}
		txn.PaymentDate = &parsed
	}

	if installments.Valid && installments.String != "" {
		var inst model.Installment
		if err := json.Unmarshal([]byte(installments.String), &inst); err != nil {
			return nil, fmt.Errorf("%w: malformed installments %q: %v", common.ErrStorage, installments.String, err)
		}
		txn.Installment = &inst
	}

	return &txn, nil
}

// coerceCents normalizes the amount column to integer cents. The driver may
// hand back integers, floats, or text depending on how the row was written.
func coerceCents(v any) model.Cents {
	switch val := v.(type) {
	case int64:
		return model.Cents(val)
	case float64:
		return model.Cents(int64(val))
	case []byte:
		n, err := strconv.ParseInt(string(val), 10, 64)
		if err != nil {
			return 0
		}
		return model.Cents(n)
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0
		}
		return model.Cents(n)
	default:
		return 0
	}
}

// CreateTransactions inserts a batch of rows in one database transaction.
// Installment expansion relies on this being all-or-nothing: either every
// generated installment lands or none do.
func (s *SQLiteStorage) CreateTransactions(ctx context.Context, callerID string, txns []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(callerID, "callerID"); err != nil {
		return err
	}
	if err := validateTransactions(txns); err != nil {
		return err
	}
	for i := range txns {
		if err := s.authorizeContext(ctx, callerID, txns[i].DataContextID); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin batch insert: %v", common.ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range txns {
		if err := insertTransactionTx(ctx, tx, &txns[i]); err != nil {
			return fmt.Errorf("batch insert at index %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit batch insert: %v", common.ErrStorage, err)
	}

	slog.Debug("inserted transaction batch", "count", len(txns))
	return nil
}

func insertTransactionTx(ctx context.Context, tx *sql.Tx, txn *model.Transaction) error {
	txn.Normalize()
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}

	var paymentDate any
	if txn.PaymentDate != nil {
		paymentDate = txn.PaymentDate.Format(dateLayout)
	}

	var observation any
	if txn.Observation != "" {
		observation = txn.Observation
	}

	var installments any
	if txn.Installment != nil {
		encoded, err := json.Marshal(txn.Installment)
		if err != nil {
			return fmt.Errorf("%w: encode installments: %v", common.ErrStorage, err)
		}
		installments = string(encoded)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (
			id, title, amount, kind, category, status, date, payment_date,
			observation, installments, data_context_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.Title, int64(txn.Amount), string(txn.Kind), txn.Category, string(txn.Status),
		txn.Date.Format(dateLayout), paymentDate, observation, installments,
		txn.DataContextID, txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert transaction: %v", common.ErrStorage, err)
	}
	return nil
}

// UpdateTransaction rewrites a transaction row in place.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, callerID string, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(callerID, "callerID"); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	if err := s.authorizeContext(ctx, callerID, txn.DataContextID); err != nil {
		return err
	}

	txn.Normalize()

	var paymentDate any
	if txn.PaymentDate != nil {
		paymentDate = txn.PaymentDate.Format(dateLayout)
	}

	var observation any
	if txn.Observation != "" {
		observation = txn.Observation
	}

	var installments any
	if txn.Installment != nil {
		encoded, err := json.Marshal(txn.Installment)
		if err != nil {
			return fmt.Errorf("%w: encode installments: %v", common.ErrStorage, err)
		}
		installments = string(encoded)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET
			title = ?, amount = ?, kind = ?, category = ?, status = ?,
			date = ?, payment_date = ?, observation = ?, installments = ?
		WHERE id = ? AND data_context_id = ?`,
		txn.Title, int64(txn.Amount), string(txn.Kind), txn.Category, string(txn.Status),
		txn.Date.Format(dateLayout), paymentDate, observation, installments,
		txn.ID, txn.DataContextID,
	)
	if err != nil {
		return fmt.Errorf("%w: update transaction: %v", common.ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}

	return nil
}

// DeleteTransaction removes a single row. Deleting one installment does not
// cascade to its siblings.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, callerID, contextID, txnID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(callerID, "callerID"); err != nil {
		return err
	}
	if err := validateString(contextID, "contextID"); err != nil {
		return err
	}
	if err := validateString(txnID, "txnID"); err != nil {
		return err
	}
	if err := s.authorizeContext(ctx, callerID, contextID); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND data_context_id = ?`,
		txnID, contextID,
	)
	if err != nil {
		return fmt.Errorf("%w: delete transaction: %v", common.ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}

	return nil
}

// MarkAsPaid flips the given transactions to paid with the supplied payment
// date, in one statement. Income rows keep their paid status but never a
// payment date; Normalize semantics are applied in SQL.
func (s *SQLiteStorage) MarkAsPaid(ctx context.Context, callerID, contextID string, txnIDs []string, paymentDate time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(callerID, "callerID"); err != nil {
		return err
	}
	if err := validateString(contextID, "contextID"); err != nil {
		return err
	}
	if len(txnIDs) == 0 {
		return fmt.Errorf("%w: txnIDs", ErrEmptySlice)
	}
	if paymentDate.IsZero() {
		return fmt.Errorf("%w: paymentDate", ErrNilParameter)
	}
	if err := s.authorizeContext(ctx, callerID, contextID); err != nil {
		return err
	}

	placeholders := strings.Repeat("?,", len(txnIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(txnIDs)+2)
	args = append(args, paymentDate.Format(dateLayout), contextID)
	for _, id := range txnIDs {
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		UPDATE transactions SET
			status = 'paid',
			payment_date = CASE WHEN kind = 'expense' THEN ? ELSE NULL END
		WHERE data_context_id = ? AND id IN (%s)`, placeholders)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: mark as paid: %v", common.ErrStorage, err)
	}

	n, _ := res.RowsAffected()
	slog.Debug("marked transactions paid", "requested", len(txnIDs), "updated", n)
	return nil
}
