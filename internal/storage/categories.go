package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meucofre/cofre/internal/common"
	"github.com/meucofre/cofre/internal/model"
)

// starterCategories is the fixed set seeded into a data context the first
// time it is found empty.
var starterCategories = []struct {
	Name string
	Kind model.CategoryKind
}{
	{"Alimentação", model.CategoryKindExpense},
	{"Transporte", model.CategoryKindExpense},
	{"Moradia", model.CategoryKindExpense},
	{"Saúde", model.CategoryKindExpense},
	{"Lazer", model.CategoryKindExpense},
	{"Educação", model.CategoryKindExpense},
	{"Compras", model.CategoryKindExpense},
	{"Salário", model.CategoryKindIncome},
	{"Investimentos", model.CategoryKindBoth},
	{"Outros", model.CategoryKindBoth},
}

// GetCategories returns all categories in the given data context.
func (s *SQLiteStorage) GetCategories(ctx context.Context, callerID, contextID string) ([]model.Category, error) {
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
		SELECT id, name, kind, budget, data_context_id, created_at
		FROM categories WHERE data_context_id = ?
		ORDER BY name COLLATE NOCASE`,
		contextID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query categories: %v", common.ErrStorage, err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var (
			cat    model.Category
			budget int64
		)
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Kind, &budget, &cat.DataContextID, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan category: %v", common.ErrStorage, err)
		}
		cat.Budget = model.Cents(budget)
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate categories: %v", common.ErrStorage, err)
	}

	slog.Debug("retrieved categories", "context_id", contextID, "count", len(categories))
	return categories, nil
}

// SeedCategories bulk-inserts the starter category set into a context. The
// caller invokes this when GetCategories returns empty for a fresh context.
func (s *SQLiteStorage) SeedCategories(ctx context.Context, callerID, contextID string) ([]model.Category, error) {
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin seed: %v", common.ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO categories (id, name, kind, budget, data_context_id, created_at)
		VALUES (?, ?, ?, 0, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("%w: prepare seed: %v", common.ErrStorage, err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	seeded := make([]model.Category, 0, len(starterCategories))
	for _, starter := range starterCategories {
		cat := model.Category{
			ID:            uuid.NewString(),
			Name:          starter.Name,
			Kind:          starter.Kind,
			DataContextID: contextID,
			CreatedAt:     now,
		}
		if _, err := stmt.ExecContext(ctx, cat.ID, cat.Name, string(cat.Kind), contextID, now); err != nil {
			return nil, fmt.Errorf("%w: seed category %q: %v", common.ErrStorage, cat.Name, err)
		}
		seeded = append(seeded, cat)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit seed: %v", common.ErrStorage, err)
	}

	slog.Info("seeded starter categories", "context_id", contextID, "count", len(seeded))
	return seeded, nil
}

// CreateCategory inserts a single category row. Name uniqueness is the
// application layer's concern; no guard exists here.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, callerID string, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(callerID, "callerID"); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}
	if err := s.authorizeContext(ctx, callerID, category.DataContextID); err != nil {
		return err
	}

	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, kind, budget, data_context_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		category.ID, category.Name, string(category.Kind), int64(category.Budget), category.DataContextID, category.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: create category: %v", common.ErrStorage, err)
	}

	return nil
}

// UpdateCategory updates a category row in place.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, callerID string, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(callerID, "callerID"); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}
	if err := s.authorizeContext(ctx, callerID, category.DataContextID); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, kind = ?, budget = ?
		WHERE id = ? AND data_context_id = ?`,
		category.Name, string(category.Kind), int64(category.Budget), category.ID, category.DataContextID,
	)
	if err != nil {
		return fmt.Errorf("%w: update category: %v", common.ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}

	return nil
}

// DeleteCategory removes a category row. The caller is responsible for the
// category-in-use integrity check before calling; there is deliberately no
// server-side guard against orphaning referencing transactions.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, callerID, contextID, categoryID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(callerID, "callerID"); err != nil {
		return err
	}
	if err := validateString(contextID, "contextID"); err != nil {
		return err
	}
	if err := validateString(categoryID, "categoryID"); err != nil {
		return err
	}
	if err := s.authorizeContext(ctx, callerID, contextID); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND data_context_id = ?`,
		categoryID, contextID,
	)
	if err != nil {
		return fmt.Errorf("%w: delete category: %v", common.ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}

	return nil
}
