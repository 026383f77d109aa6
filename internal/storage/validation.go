// Package storage provides the data persistence layer for the cofre application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/meucofre/cofre/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateAccount validates an account row before insert.
func validateAccount(account *model.Account) error {
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if account.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidAccount)
	}
	if account.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidAccount)
	}
	if account.DataContextID == "" {
		return fmt.Errorf("%w: missing data context ID", ErrInvalidAccount)
	}
	return nil
}

// validateCategory validates a category row before insert or update.
func validateCategory(category *model.Category) error {
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if category.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidCategory)
	}
	if category.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCategory)
	}
	if !model.ValidCategoryKind(category.Kind) {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidCategory, category.Kind)
	}
	if category.Budget < 0 {
		return fmt.Errorf("%w: negative budget", ErrInvalidCategory)
	}
	if category.DataContextID == "" {
		return fmt.Errorf("%w: missing data context ID", ErrInvalidCategory)
	}
	return nil
}

// validateTransaction validates a transaction row before insert or update.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Title == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidTransaction)
	}
	if txn.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidTransaction)
	}
	if txn.Kind != model.KindIncome && txn.Kind != model.KindExpense {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidTransaction, txn.Kind)
	}
	if txn.Status != model.StatusPaid && txn.Status != model.StatusPending {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransaction, txn.Status)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.DataContextID == "" {
		return fmt.Errorf("%w: missing data context ID", ErrInvalidTransaction)
	}
	if txn.Installment != nil {
		if txn.Installment.Total < 1 || txn.Installment.Current < 1 || txn.Installment.Current > txn.Installment.Total {
			return fmt.Errorf("%w: malformed installment descriptor", ErrInvalidTransaction)
		}
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(txns []model.Transaction) error {
	if txns == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(txns) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i := range txns {
		if err := validateTransaction(&txns[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}
