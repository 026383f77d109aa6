// Package ledger holds the bookkeeping rules that sit between user intent
// and the persistence layer: installment expansion, category integrity
// guards, and the load/seed flow for a data context.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meucofre/cofre/internal/common"
	"github.com/meucofre/cofre/internal/model"
)

// MaxInstallments bounds how far an expense can be split.
const MaxInstallments = 120

// Intent is a user-submitted transaction before expansion. Installments
// above 1 only apply to expenses.
type Intent struct {
	Date          time.Time
	PaymentDate   *time.Time
	Title         string
	Category      string
	Observation   string
	DataContextID string
	Kind          model.TransactionKind
	Status        model.TransactionStatus
	Amount        model.Cents
	Installments  int
}

// Expand converts an intent into persisted-ready transaction records.
//
// A single record is emitted unchanged when the installment count is 1 or
// the intent is not an expense. Otherwise N records are generated: the
// total amount is divided evenly in cents with the rounding remainder
// pushed into the first installment, so the sum is exactly the total. Due
// dates advance one calendar month at a time with the day-of-month held
// constant; when the target month is shorter, Go's date normalization
// rolls the date forward (Jan 31 → Mar 2/3), which is a known edge case.
// Only the first installment keeps the caller's status, payment date and
// observation; the rest are forced to pending with neither.
func Expand(intent Intent) ([]model.Transaction, error) {
	if intent.Installments < 1 {
		return nil, fmt.Errorf("%w: installment count must be at least 1", common.ErrInvalidInput)
	}
	if intent.Installments > MaxInstallments {
		return nil, fmt.Errorf("%w: installment count exceeds %d", common.ErrInvalidInput, MaxInstallments)
	}
	if intent.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", common.ErrInvalidInput)
	}

	n := intent.Installments
	if n == 1 || intent.Kind != model.KindExpense {
		txn := newTransaction(intent, intent.Date, intent.Amount)
		txn.Status = intent.Status
		txn.PaymentDate = intent.PaymentDate
		txn.Observation = intent.Observation
		txn.Normalize()
		return []model.Transaction{txn}, nil
	}

	per := intent.Amount / model.Cents(n)
	remainder := intent.Amount - per*model.Cents(n)

	txns := make([]model.Transaction, 0, n)
	for i := 0; i < n; i++ {
		amount := per
		if i == 0 {
			amount += remainder
		}

		txn := newTransaction(intent, intent.Date.AddDate(0, i, 0), amount)
		txn.Installment = &model.Installment{Current: i + 1, Total: n}

		if i == 0 {
			txn.Status = intent.Status
			txn.PaymentDate = intent.PaymentDate
			txn.Observation = intent.Observation
		} else {
			txn.Status = model.StatusPending
		}
		txn.Normalize()

		txns = append(txns, txn)
	}

	return txns, nil
}

func newTransaction(intent Intent, date time.Time, amount model.Cents) model.Transaction {
	return model.Transaction{
		ID:            uuid.NewString(),
		Title:         intent.Title,
		Amount:        amount,
		Kind:          intent.Kind,
		Category:      intent.Category,
		Date:          date,
		DataContextID: intent.DataContextID,
		CreatedAt:     time.Now().UTC(),
	}
}
