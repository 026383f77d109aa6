package model

import "time"

// TransactionKind distinguishes income from expense records.
type TransactionKind string

const (
	// KindIncome marks money coming in.
	KindIncome TransactionKind = "income"
	// KindExpense marks money going out.
	KindExpense TransactionKind = "expense"
)

// TransactionStatus tracks whether a record has been settled.
type TransactionStatus string

const (
	// StatusPaid marks a settled record.
	StatusPaid TransactionStatus = "paid"
	// StatusPending marks a record awaiting settlement.
	StatusPending TransactionStatus = "pending"
)

// Installment describes one slice of an expense that was split across
// monthly installments. Current is 1-based.
type Installment struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Transaction is an atomic financial event scoped to a data context.
//
// Category holds the category NAME rather than its ID. The denormalization
// is deliberate: it keeps the category-in-use guard a plain string match
// and tolerates legacy rows whose category was renamed or deleted out of
// band. The storage interface is the only place aware of this shape.
type Transaction struct {
	CreatedAt     time.Time         `json:"created_at"`
	Date          time.Time         `json:"date"`
	PaymentDate   *time.Time        `json:"payment_date,omitempty"`
	Installment   *Installment      `json:"installments,omitempty"`
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Category      string            `json:"category"`
	Observation   string            `json:"observation,omitempty"`
	DataContextID string            `json:"data_context_id"`
	Kind          TransactionKind   `json:"kind"`
	Status        TransactionStatus `json:"status"`
	Amount        Cents             `json:"amount"`
}

// Normalize enforces the payment-date invariant: a payment date exists only
// on paid expenses. It is called before every insert and update.
func (t *Transaction) Normalize() {
	if t.Kind != KindExpense || t.Status != StatusPaid {
		t.PaymentDate = nil
	}
}

// DueIn reports whether the transaction's date falls in the given calendar
// month of the given year (exact match, not a rolling window).
func (t *Transaction) DueIn(year int, month time.Month) bool {
	return t.Date.Year() == year && t.Date.Month() == month
}
