package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/meucofre/cofre/internal/common"
	"github.com/meucofre/cofre/internal/model"
	"github.com/meucofre/cofre/internal/service"
)

// Service applies the bookkeeping rules on top of the persistence gateway.
// Validation failures are resolved here, before any storage call is made.
type Service struct {
	store service.Storage
}

// NewService creates a ledger service backed by the given storage.
func NewService(store service.Storage) *Service {
	return &Service{store: store}
}

// LoadBooks fetches the categories and transactions of a data context. The
// two reads are independent and run in parallel; seeding the starter
// categories is a dependent step that only runs after the category fetch
// resolves empty.
func (s *Service) LoadBooks(ctx context.Context, callerID, contextID string) ([]model.Category, []model.Transaction, error) {
	var (
		categories []model.Category
		txns       []model.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = s.store.GetCategories(gctx, callerID, contextID)
		return err
	})
	g.Go(func() error {
		var err error
		txns, err = s.store.GetTransactions(gctx, callerID, contextID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if len(categories) == 0 {
		seeded, err := s.store.SeedCategories(ctx, callerID, contextID)
		if err != nil {
			return nil, nil, err
		}
		categories = seeded
	}

	return categories, txns, nil
}

// AddCategory creates a category after checking name uniqueness within the
// context, case-insensitively.
func (s *Service) AddCategory(ctx context.Context, callerID, contextID, name string, kind model.CategoryKind, budget model.Cents) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", common.ErrInvalidInput)
	}
	if !model.ValidCategoryKind(kind) {
		return nil, fmt.Errorf("%w: unknown category kind %q", common.ErrInvalidInput, kind)
	}
	if budget < 0 {
		return nil, fmt.Errorf("%w: budget cannot be negative", common.ErrInvalidInput)
	}

	existing, err := s.store.GetCategories(ctx, callerID, contextID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if strings.EqualFold(existing[i].Name, name) {
			return nil, common.ErrDuplicateCategory
		}
	}

	category := &model.Category{
		ID:            uuid.NewString(),
		Name:          name,
		Kind:          kind,
		Budget:        budget,
		DataContextID: contextID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.CreateCategory(ctx, callerID, category); err != nil {
		return nil, err
	}

	return category, nil
}

// UpdateCategory rewrites a category, re-checking name uniqueness against
// the other categories in the context.
func (s *Service) UpdateCategory(ctx context.Context, callerID string, category *model.Category) error {
	if category == nil {
		return fmt.Errorf("%w: category is required", common.ErrInvalidInput)
	}
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return fmt.Errorf("%w: category name is required", common.ErrInvalidInput)
	}
	if category.Budget < 0 {
		return fmt.Errorf("%w: budget cannot be negative", common.ErrInvalidInput)
	}

	existing, err := s.store.GetCategories(ctx, callerID, category.DataContextID)
	if err != nil {
		return err
	}
	for i := range existing {
		if existing[i].ID != category.ID && strings.EqualFold(existing[i].Name, category.Name) {
			return common.ErrDuplicateCategory
		}
	}

	return s.store.UpdateCategory(ctx, callerID, category)
}

// DeleteCategory removes a category unless any transaction in the context
// still references it by name. The refusal happens locally; no delete call
// reaches storage for a referenced category, regardless of the referencing
// transaction's status or kind.
func (s *Service) DeleteCategory(ctx context.Context, callerID, contextID, categoryID string) error {
	categories, err := s.store.GetCategories(ctx, callerID, contextID)
	if err != nil {
		return err
	}

	var target *model.Category
	for i := range categories {
		if categories[i].ID == categoryID {
			target = &categories[i]
			break
		}
	}
	if target == nil {
		return common.ErrNotFound
	}

	txns, err := s.store.GetTransactions(ctx, callerID, contextID)
	if err != nil {
		return err
	}
	for i := range txns {
		if txns[i].Category == target.Name {
			return common.ErrCategoryInUse
		}
	}

	return s.store.DeleteCategory(ctx, callerID, contextID, categoryID)
}

// AddTransaction expands an intent into one or more records and persists
// them atomically. The generated records are returned for optimistic
// display.
func (s *Service) AddTransaction(ctx context.Context, callerID string, intent Intent) ([]model.Transaction, error) {
	if strings.TrimSpace(intent.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrInvalidInput)
	}
	if intent.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", common.ErrInvalidInput)
	}
	if intent.Installments == 0 {
		intent.Installments = 1
	}

	txns, err := Expand(intent)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateTransactions(ctx, callerID, txns); err != nil {
		return nil, err
	}

	return txns, nil
}

// UpdateTransaction rewrites a record, enforcing the payment-date
// invariant before the row is stored. The installment tag is not editable:
// when the incoming record carries none, the stored tag is carried forward
// so an edit never detaches a row from its series.
func (s *Service) UpdateTransaction(ctx context.Context, callerID string, txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction is required", common.ErrInvalidInput)
	}
	txn.Normalize()

	if txn.Installment == nil {
		existing, err := s.store.GetTransactions(ctx, callerID, txn.DataContextID)
		if err != nil {
			return err
		}
		for i := range existing {
			if existing[i].ID == txn.ID {
				txn.Installment = existing[i].Installment
				break
			}
		}
	}

	return s.store.UpdateTransaction(ctx, callerID, txn)
}

// DeleteTransaction removes one record. Installment siblings are left
// untouched.
func (s *Service) DeleteTransaction(ctx context.Context, callerID, contextID, txnID string) error {
	return s.store.DeleteTransaction(ctx, callerID, contextID, txnID)
}

// MarkPaid settles the given transactions with one bulk status transition.
func (s *Service) MarkPaid(ctx context.Context, callerID, contextID string, txnIDs []string, paymentDate time.Time) error {
	if len(txnIDs) == 0 {
		return fmt.Errorf("%w: no transactions selected", common.ErrInvalidInput)
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now().UTC()
	}
	return s.store.MarkAsPaid(ctx, callerID, contextID, txnIDs, paymentDate)
}
