// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/meucofre/cofre/internal/model"
)

// Storage defines the contract for our persistence layer.
//
// Every scoped read/write takes the caller's account ID alongside the data
// context ID. The access policy is enforced inside the implementation, at a
// single choke point: an account may touch its own rows, its parent's
// shared rows, and the rows of contexts owned by its member accounts.
// Denials surface as not-found, never as a distinguishable forbidden case.
type Storage interface {
	// Identity operations (self-hosted auth provider)
	CreateIdentity(ctx context.Context, email, passwordHash string, confirmed bool) (*model.Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (*model.Identity, error)
	ConfirmIdentity(ctx context.Context, id string) error

	// Session operations
	CreateSession(ctx context.Context, identityID string, ttl time.Duration) (*model.Session, error)
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error

	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, callerID, accountID string) (*model.Account, error)
	GetMembers(ctx context.Context, callerID, parentID string) ([]model.Account, error)

	// Category operations
	GetCategories(ctx context.Context, callerID, contextID string) ([]model.Category, error)
	SeedCategories(ctx context.Context, callerID, contextID string) ([]model.Category, error)
	CreateCategory(ctx context.Context, callerID string, category *model.Category) error
	UpdateCategory(ctx context.Context, callerID string, category *model.Category) error
	DeleteCategory(ctx context.Context, callerID, contextID, categoryID string) error

	// Transaction operations
	GetTransactions(ctx context.Context, callerID, contextID string) ([]model.Transaction, error)
	CreateTransactions(ctx context.Context, callerID string, txns []model.Transaction) error
	UpdateTransaction(ctx context.Context, callerID string, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, callerID, contextID, txnID string) error
	MarkAsPaid(ctx context.Context, callerID, contextID string, txnIDs []string, paymentDate time.Time) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// AnalysisRecord is the slimmed transaction shape sent to the AI
// collaborator for financial analysis.
type AnalysisRecord struct {
	Date     time.Time
	Title    string
	Category string
	Kind     model.TransactionKind
	Amount   model.Cents
}

// FinancialAnalysis is the AI collaborator's verdict on recent activity.
type FinancialAnalysis struct {
	Summary   string
	Tips      []string
	Anomalies []string
}

// ReceiptData holds the fields extracted from a receipt image.
type ReceiptData struct {
	Date        time.Time
	Title       string
	Observation string
	Amount      model.Cents
}

// Analyzer generates a financial summary from recent records. A failing
// provider must degrade to a neutral result at the call site, never to a
// hard failure in the user path.
type Analyzer interface {
	Analyze(ctx context.Context, records []AnalysisRecord) (*FinancialAnalysis, error)
}

// ReceiptExtractor pulls structured fields out of a receipt image.
type ReceiptExtractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (*ReceiptData, error)
}

// MonthlyReport is the flattened export shape handed to report writers.
type MonthlyReport struct {
	GeneratedAt  time.Time
	Month        time.Month
	Year         int
	AccountName  string
	Income       model.Cents
	Expense      model.Cents
	Pending      model.Cents
	Balance      model.Cents
	SavingsRate  float64
	BudgetRows   []BudgetRow
	Transactions []model.Transaction
}

// BudgetRow is one category line in an exported report.
type BudgetRow struct {
	Category    string
	Budget      model.Cents
	Spent       model.Cents
	Remaining   model.Cents
	PercentUsed float64
}

// ReportWriter exports a monthly report to an external destination.
type ReportWriter interface {
	Write(ctx context.Context, report *MonthlyReport) error
}

// RetryOptions configures retry behavior.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
