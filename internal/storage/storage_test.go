package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meucofre/cofre/internal/common"
	"github.com/meucofre/cofre/internal/model"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func newTestAccount(t *testing.T, store *SQLiteStorage, parentID string) *model.Account {
	t.Helper()

	id := uuid.NewString()
	account := &model.Account{
		ID:            id,
		Name:          "account " + id[:8],
		Email:         id[:8] + "@example.com",
		ParentID:      parentID,
		DataContextID: id,
	}
	require.NoError(t, store.CreateAccount(context.Background(), account))
	return account
}

func newTestTransaction(contextID string, kind model.TransactionKind, status model.TransactionStatus, amount model.Cents) model.Transaction {
	return model.Transaction{
		ID:            uuid.NewString(),
		Title:         "test purchase",
		Category:      "Compras",
		Kind:          kind,
		Status:        status,
		Amount:        amount,
		Date:          time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		DataContextID: contextID,
	}
}

func TestAccountPolicy(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	owner := newTestAccount(t, store, "")
	member := newTestAccount(t, store, owner.ID)
	stranger := newTestAccount(t, store, "")

	t.Run("self access", func(t *testing.T) {
		got, err := store.GetAccount(ctx, owner.ID, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, owner.ID, got.ID)
		require.Len(t, got.Members, 1)
		assert.Equal(t, member.ID, got.Members[0].ID)
	})

	t.Run("parent reads member", func(t *testing.T) {
		got, err := store.GetAccount(ctx, owner.ID, member.ID)
		require.NoError(t, err)
		assert.Equal(t, member.ID, got.ID)
	})

	t.Run("stranger denied as not found", func(t *testing.T) {
		_, err := store.GetAccount(ctx, stranger.ID, member.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("member cannot read parent", func(t *testing.T) {
		_, err := store.GetAccount(ctx, member.ID, owner.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestContextPolicy(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	owner := newTestAccount(t, store, "")
	member := newTestAccount(t, store, owner.ID)
	stranger := newTestAccount(t, store, "")

	t.Run("own context", func(t *testing.T) {
		_, err := store.GetTransactions(ctx, owner.ID, owner.DataContextID)
		assert.NoError(t, err)
	})

	t.Run("parent reads member context", func(t *testing.T) {
		_, err := store.GetTransactions(ctx, owner.ID, member.DataContextID)
		assert.NoError(t, err)
	})

	t.Run("stranger denied", func(t *testing.T) {
		_, err := store.GetTransactions(ctx, stranger.ID, member.DataContextID)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestSeedCategories(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	owner := newTestAccount(t, store, "")

	seeded, err := store.SeedCategories(ctx, owner.ID, owner.DataContextID)
	require.NoError(t, err)
	assert.Len(t, seeded, 10)

	categories, err := store.GetCategories(ctx, owner.ID, owner.DataContextID)
	require.NoError(t, err)
	require.Len(t, categories, 10)

	byName := make(map[string]model.CategoryKind)
	for _, cat := range categories {
		byName[cat.Name] = cat.Kind
		assert.Zero(t, cat.Budget)
	}
	assert.Equal(t, model.CategoryKindIncome, byName["Salário"])
	assert.Equal(t, model.CategoryKindExpense, byName["Alimentação"])
	assert.Equal(t, model.CategoryKindBoth, byName["Outros"])
}

func TestTransactionRoundTrip(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	owner := newTestAccount(t, store, "")

	paid := time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)
	txn := newTestTransaction(owner.DataContextID, model.KindExpense, model.StatusPaid, 1234)
	txn.PaymentDate = &paid
	txn.Observation = "card"
	txn.Installment = &model.Installment{Current: 2, Total: 5}

	require.NoError(t, store.CreateTransactions(ctx, owner.ID, []model.Transaction{txn}))

	txns, err := store.GetTransactions(ctx, owner.ID, owner.DataContextID)
	require.NoError(t, err)
	require.Len(t, txns, 1)

	got := txns[0]
	assert.Equal(t, txn.ID, got.ID)
	assert.Equal(t, model.Cents(1234), got.Amount)
	assert.Equal(t, "card", got.Observation)
	require.NotNil(t, got.PaymentDate)
	assert.True(t, got.PaymentDate.Equal(paid))
	require.NotNil(t, got.Installment)
	assert.Equal(t, 2, got.Installment.Current)
	assert.Equal(t, 5, got.Installment.Total)
}

func TestCreateTransactionsAllOrNothing(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	owner := newTestAccount(t, store, "")

	dup := newTestTransaction(owner.DataContextID, model.KindExpense, model.StatusPending, 1000)
	batch := []model.Transaction{
		newTestTransaction(owner.DataContextID, model.KindExpense, model.StatusPending, 1000),
		dup,
		dup, // duplicate primary key fails mid-batch
	}

	err := store.CreateTransactions(ctx, owner.ID, batch)
	require.Error(t, err)

	txns, err := store.GetTransactions(ctx, owner.ID, owner.DataContextID)
	require.NoError(t, err)
	assert.Empty(t, txns, "failed batch must not persist partial rows")
}

func TestMarkAsPaid(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	owner := newTestAccount(t, store, "")

	expense := newTestTransaction(owner.DataContextID, model.KindExpense, model.StatusPending, 5000)
	income := newTestTransaction(owner.DataContextID, model.KindIncome, model.StatusPending, 7000)
	require.NoError(t, store.CreateTransactions(ctx, owner.ID, []model.Transaction{expense, income}))

	paymentDate := time.Date(2024, time.January, 25, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.MarkAsPaid(ctx, owner.ID, owner.DataContextID,
		[]string{expense.ID, income.ID}, paymentDate))

	txns, err := store.GetTransactions(ctx, owner.ID, owner.DataContextID)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	for _, got := range txns {
		assert.Equal(t, model.StatusPaid, got.Status)
		if got.Kind == model.KindExpense {
			require.NotNil(t, got.PaymentDate)
			assert.True(t, got.PaymentDate.Equal(paymentDate))
		} else {
			assert.Nil(t, got.PaymentDate, "income never carries a payment date")
		}
	}
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	owner := newTestAccount(t, store, "")

	txn := newTestTransaction(owner.DataContextID, model.KindExpense, model.StatusPending, 3000)
	require.NoError(t, store.CreateTransactions(ctx, owner.ID, []model.Transaction{txn}))

	txn.Title = "renamed"
	txn.Amount = 3500
	require.NoError(t, store.UpdateTransaction(ctx, owner.ID, &txn))

	txns, err := store.GetTransactions(ctx, owner.ID, owner.DataContextID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "renamed", txns[0].Title)
	assert.Equal(t, model.Cents(3500), txns[0].Amount)

	require.NoError(t, store.DeleteTransaction(ctx, owner.ID, owner.DataContextID, txn.ID))
	assert.ErrorIs(t, store.DeleteTransaction(ctx, owner.ID, owner.DataContextID, txn.ID), common.ErrNotFound)
}

func TestIdentityAndSessionLifecycle(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	identity, err := store.CreateIdentity(ctx, "User@Example.COM", "hash", true)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", identity.Email)

	_, err = store.CreateIdentity(ctx, "user@example.com", "hash", true)
	assert.ErrorIs(t, err, common.ErrValidation, "duplicate email must be rejected")

	found, err := store.GetIdentityByEmail(ctx, "USER@example.com")
	require.NoError(t, err)
	assert.Equal(t, identity.ID, found.ID)

	session, err := store.CreateSession(ctx, identity.ID, time.Hour)
	require.NoError(t, err)

	resolved, err := store.GetSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, identity.ID, resolved.IdentityID)

	require.NoError(t, store.DeleteSession(ctx, session.Token))
	_, err = store.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestExpiredSessionDeletedOnRead(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	identity, err := store.CreateIdentity(ctx, "short@example.com", "hash", true)
	require.NoError(t, err)

	session, err := store.CreateSession(ctx, identity.ID, time.Nanosecond)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	_, err = store.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCategoryCRUD(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	owner := newTestAccount(t, store, "")

	category := &model.Category{
		ID:            uuid.NewString(),
		Name:          "Viagens",
		Kind:          model.CategoryKindExpense,
		Budget:        50000,
		DataContextID: owner.DataContextID,
	}
	require.NoError(t, store.CreateCategory(ctx, owner.ID, category))

	category.Budget = 60000
	require.NoError(t, store.UpdateCategory(ctx, owner.ID, category))

	categories, err := store.GetCategories(ctx, owner.ID, owner.DataContextID)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, model.Cents(60000), categories[0].Budget)

	require.NoError(t, store.DeleteCategory(ctx, owner.ID, owner.DataContextID, category.ID))

	categories, err = store.GetCategories(ctx, owner.ID, owner.DataContextID)
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestMigrateIdempotent(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}
