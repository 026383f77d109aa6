package model

import "time"

// CategoryKind indicates which transaction kinds a category applies to.
type CategoryKind string

const (
	// CategoryKindIncome applies to income transactions only.
	CategoryKindIncome CategoryKind = "income"
	// CategoryKindExpense applies to expense transactions only.
	CategoryKindExpense CategoryKind = "expense"
	// CategoryKindBoth applies to both transaction kinds.
	CategoryKindBoth CategoryKind = "both"
)

// ValidCategoryKind reports whether k is one of the known kinds.
func ValidCategoryKind(k CategoryKind) bool {
	switch k {
	case CategoryKindIncome, CategoryKindExpense, CategoryKindBoth:
		return true
	}
	return false
}

// Category is a named bucket for transactions with an optional monthly
// budget. Names are unique per data context, case-insensitively; the check
// lives in the application layer, not in the schema.
type Category struct {
	CreatedAt     time.Time    `json:"created_at"`
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Kind          CategoryKind `json:"kind"`
	DataContextID string       `json:"data_context_id"`
	Budget        Cents        `json:"budget"`
}

// TracksExpenses reports whether the category participates in budget
// reports (expense or both).
func (c *Category) TracksExpenses() bool {
	return c.Kind == CategoryKindExpense || c.Kind == CategoryKindBoth
}
