package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meucofre/cofre/internal/common"
	"github.com/meucofre/cofre/internal/model"
	"github.com/meucofre/cofre/internal/storage"
)

func newTestService(t *testing.T) (*Service, *model.Account) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	id := uuid.NewString()
	account := &model.Account{
		ID:            id,
		Name:          "owner",
		Email:         "owner@example.com",
		DataContextID: id,
	}
	require.NoError(t, store.CreateAccount(ctx, account))

	return NewService(store), account
}

func TestLoadBooksSeedsEmptyContext(t *testing.T) {
	svc, owner := newTestService(t)
	ctx := context.Background()

	categories, txns, err := svc.LoadBooks(ctx, owner.ID, owner.DataContextID)
	require.NoError(t, err)
	assert.Len(t, categories, 10)
	assert.Empty(t, txns)

	// second load must not seed again
	categories, _, err = svc.LoadBooks(ctx, owner.ID, owner.DataContextID)
	require.NoError(t, err)
	assert.Len(t, categories, 10)
}

func TestAddCategoryRejectsDuplicates(t *testing.T) {
	svc, owner := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddCategory(ctx, owner.ID, owner.DataContextID, "Viagens", model.CategoryKindExpense, 0)
	require.NoError(t, err)

	_, err = svc.AddCategory(ctx, owner.ID, owner.DataContextID, "viagens", model.CategoryKindExpense, 0)
	assert.ErrorIs(t, err, common.ErrDuplicateCategory, "duplicate check is case-insensitive")
}

func TestUpdateCategoryAllowsOwnName(t *testing.T) {
	svc, owner := newTestService(t)
	ctx := context.Background()

	category, err := svc.AddCategory(ctx, owner.ID, owner.DataContextID, "Viagens", model.CategoryKindExpense, 0)
	require.NoError(t, err)

	category.Budget = 100000
	assert.NoError(t, svc.UpdateCategory(ctx, owner.ID, category), "keeping its own name is not a duplicate")

	other, err := svc.AddCategory(ctx, owner.ID, owner.DataContextID, "Esportes", model.CategoryKindExpense, 0)
	require.NoError(t, err)
	other.Name = "Viagens"
	assert.ErrorIs(t, svc.UpdateCategory(ctx, owner.ID, other), common.ErrDuplicateCategory)
}

func TestDeleteCategoryInUse(t *testing.T) {
	svc, owner := newTestService(t)
	ctx := context.Background()

	category, err := svc.AddCategory(ctx, owner.ID, owner.DataContextID, "Viagens", model.CategoryKindExpense, 0)
	require.NoError(t, err)

	_, err = svc.AddTransaction(ctx, owner.ID, Intent{
		Date:          time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
		Title:         "flight",
		Category:      "Viagens",
		DataContextID: owner.DataContextID,
		Kind:          model.KindExpense,
		Status:        model.StatusPending,
		Amount:        150000,
		Installments:  1,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteCategory(ctx, owner.ID, owner.DataContextID, category.ID), common.ErrCategoryInUse)

	unused, err := svc.AddCategory(ctx, owner.ID, owner.DataContextID, "Esportes", model.CategoryKindExpense, 0)
	require.NoError(t, err)
	assert.NoError(t, svc.DeleteCategory(ctx, owner.ID, owner.DataContextID, unused.ID))
}

func TestAddTransactionPersistsInstallments(t *testing.T) {
	svc, owner := newTestService(t)
	ctx := context.Background()

	created, err := svc.AddTransaction(ctx, owner.ID, Intent{
		Date:          time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		Title:         "sofa",
		Category:      "Compras",
		DataContextID: owner.DataContextID,
		Kind:          model.KindExpense,
		Status:        model.StatusPending,
		Amount:        90000,
		Installments:  3,
	})
	require.NoError(t, err)
	require.Len(t, created, 3)

	_, txns, err := svc.LoadBooks(ctx, owner.ID, owner.DataContextID)
	require.NoError(t, err)
	require.Len(t, txns, 3)

	var total model.Cents
	for _, txn := range txns {
		total += txn.Amount
	}
	assert.Equal(t, model.Cents(90000), total)
}

func TestUpdateTransactionKeepsInstallmentTag(t *testing.T) {
	svc, owner := newTestService(t)
	ctx := context.Background()

	created, err := svc.AddTransaction(ctx, owner.ID, Intent{
		Date:          time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		Title:         "sofa",
		Category:      "Compras",
		DataContextID: owner.DataContextID,
		Kind:          model.KindExpense,
		Status:        model.StatusPending,
		Amount:        90000,
		Installments:  3,
	})
	require.NoError(t, err)
	require.Len(t, created, 3)

	edit := created[1]
	edit.Title = "sofa (loja nova)"
	edit.Installment = nil
	require.NoError(t, svc.UpdateTransaction(ctx, owner.ID, &edit))

	_, txns, err := svc.LoadBooks(ctx, owner.ID, owner.DataContextID)
	require.NoError(t, err)
	for _, txn := range txns {
		if txn.ID != edit.ID {
			continue
		}
		assert.Equal(t, "sofa (loja nova)", txn.Title)
		require.NotNil(t, txn.Installment, "an edit must not detach the row from its series")
		assert.Equal(t, 2, txn.Installment.Current)
		assert.Equal(t, 3, txn.Installment.Total)
	}
}

func TestMarkPaidRequiresSelection(t *testing.T) {
	svc, owner := newTestService(t)

	err := svc.MarkPaid(context.Background(), owner.ID, owner.DataContextID, nil, time.Now())
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
