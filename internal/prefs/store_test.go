package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meucofre/cofre/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSessionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	account := &model.Account{ID: "acc-1", Name: "Ana", Email: "ana@example.com", DataContextID: "acc-1"}

	_, err := store.LoadSession()
	assert.ErrorIs(t, err, ErrNotCached)

	require.NoError(t, store.SaveSession(account, "token-1"))

	cached, err := store.LoadSession()
	require.NoError(t, err)
	assert.Equal(t, "token-1", cached.Token)
	assert.Equal(t, "acc-1", cached.Account.ID)

	require.NoError(t, store.ClearSession())
	_, err = store.LoadSession()
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestSaveAccountPreservesToken(t *testing.T) {
	store := newTestStore(t)
	owner := &model.Account{ID: "acc-1", Name: "Ana", DataContextID: "acc-1"}
	member := &model.Account{ID: "acc-2", Name: "Bruno", ParentID: "acc-1", DataContextID: "acc-2"}

	require.NoError(t, store.SaveSession(owner, "token-1"))
	require.NoError(t, store.SaveAccount(member))

	cached, err := store.LoadSession()
	require.NoError(t, err)
	assert.Equal(t, "token-1", cached.Token, "context switch must not drop the token")
	assert.Equal(t, "acc-2", cached.Account.ID)
}

func TestDashboardPerAccount(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Dashboard("acc-1")
	assert.ErrorIs(t, err, ErrNotCached)

	layout := DashboardPrefs{Visible: []string{"summary", "budget"}, Order: []string{"budget", "summary"}}
	require.NoError(t, store.SaveDashboard("acc-1", layout))

	got, err := store.Dashboard("acc-1")
	require.NoError(t, err)
	assert.Equal(t, layout, *got)

	// other accounts unaffected
	_, err = store.Dashboard("acc-2")
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestCorruptFileRecovers(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "prefs.json"), []byte("not json"), 0600))

	_, err = store.LoadSession()
	assert.ErrorIs(t, err, ErrNotCached)

	account := &model.Account{ID: "acc-1", Name: "Ana", DataContextID: "acc-1"}
	assert.NoError(t, store.SaveSession(account, "token-1"))
}
