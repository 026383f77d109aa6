package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meucofre/cofre/internal/ledger"
	"github.com/meucofre/cofre/internal/service"
	"github.com/meucofre/cofre/internal/session"
	"github.com/meucofre/cofre/internal/storage"
)

type stubExtractor struct {
	data *service.ReceiptData
	err  error
}

func (s *stubExtractor) Extract(context.Context, []byte, string) (*service.ReceiptData, error) {
	return s.data, s.err
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	sessions := session.NewService(store, nil, session.DefaultConfig())
	books := ledger.NewService(store)
	server := NewServer(sessions, books, nil, &stubExtractor{data: &service.ReceiptData{Title: "Mercado", Amount: 4550}})

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// registerAndLogin provisions an account and returns its token and ID.
func registerAndLogin(t *testing.T, ts *httptest.Server, email string) (string, string) {
	t.Helper()

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"name": "Tester", "email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	login := decodeBody[struct {
		Token   string `json:"token"`
		Account struct {
			ID string `json:"id"`
		} `json:"account"`
	}](t, resp)
	require.NotEmpty(t, login.Token)
	return login.Token, login.Account.ID
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)
	token, _ := registerAndLogin(t, ts, "ana@example.com")

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/accounts/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/accounts/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/accounts/me", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/accounts/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts := newTestServer(t)
	registerAndLogin(t, ts, "ana@example.com")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCategoriesEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token, accountID := registerAndLogin(t, ts, "ana@example.com")
	base := fmt.Sprintf("%s/api/contexts/%s", ts.URL, accountID)

	// first read seeds starter categories
	resp := doJSON(t, http.MethodGet, base+"/categories", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	categories := decodeBody[[]map[string]any](t, resp)
	assert.Len(t, categories, 10)

	resp = doJSON(t, http.MethodPost, base+"/categories", token, map[string]any{
		"name": "Viagens", "kind": "expense", "budget": "500.00",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// duplicate name conflicts
	resp = doJSON(t, http.MethodPost, base+"/categories", token, map[string]any{
		"name": "viagens", "kind": "expense",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestTransactionsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token, accountID := registerAndLogin(t, ts, "ana@example.com")
	base := fmt.Sprintf("%s/api/contexts/%s", ts.URL, accountID)

	resp := doJSON(t, http.MethodPost, base+"/transactions", token, map[string]any{
		"title": "sofa", "amount": "900.00", "kind": "expense",
		"category": "Compras", "date": "2024-01-15", "installments": 3,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[[]map[string]any](t, resp)
	require.Len(t, created, 3)

	resp = doJSON(t, http.MethodGet, base+"/transactions", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	txns := decodeBody[[]map[string]any](t, resp)
	assert.Len(t, txns, 3)

	// summary over the window
	resp = doJSON(t, http.MethodGet, base+"/summary?year=2024&month=1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "300.00", summary["pending"])
}

func TestUpdateKeepsInstallmentTag(t *testing.T) {
	ts := newTestServer(t)
	token, accountID := registerAndLogin(t, ts, "ana@example.com")
	base := fmt.Sprintf("%s/api/contexts/%s", ts.URL, accountID)

	resp := doJSON(t, http.MethodPost, base+"/transactions", token, map[string]any{
		"title": "sofa", "amount": "900.00", "kind": "expense",
		"category": "Compras", "date": "2024-01-15", "installments": 3,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[[]struct {
		ID string `json:"id"`
	}](t, resp)
	require.Len(t, created, 3)

	// the edit payload has no installments field
	resp = doJSON(t, http.MethodPut, base+"/transactions/"+created[1].ID, token, map[string]any{
		"title": "sofa (loja nova)", "amount": "300.00", "kind": "expense",
		"category": "Compras", "date": "2024-02-15",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, base+"/transactions", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	txns := decodeBody[[]struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Installment *struct {
			Current int `json:"current"`
			Total   int `json:"total"`
		} `json:"installments"`
	}](t, resp)

	for _, txn := range txns {
		if txn.ID != created[1].ID {
			continue
		}
		assert.Equal(t, "sofa (loja nova)", txn.Title)
		require.NotNil(t, txn.Installment, "an edit must not erase the installment tag")
		assert.Equal(t, 2, txn.Installment.Current)
		assert.Equal(t, 3, txn.Installment.Total)
	}
}

func TestContextIsolation(t *testing.T) {
	ts := newTestServer(t)
	token, _ := registerAndLogin(t, ts, "ana@example.com")
	_, otherID := registerAndLogin(t, ts, "eve@example.com")

	resp := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/contexts/%s/transactions", ts.URL, otherID), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "foreign context must look nonexistent")
}

func TestMembersAndSwitch(t *testing.T) {
	ts := newTestServer(t)
	token, _ := registerAndLogin(t, ts, "ana@example.com")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/accounts/members", token, map[string]any{
		"name": "Bruno", "share_data": false,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	owner := decodeBody[struct {
		Members []struct {
			ID            string `json:"id"`
			DataContextID string `json:"data_context_id"`
		} `json:"members"`
	}](t, resp)
	require.Len(t, owner.Members, 1)
	member := owner.Members[0]
	assert.Equal(t, member.ID, member.DataContextID)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/accounts/switch/"+member.ID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// owner can read the member's isolated context
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/contexts/%s/transactions", ts.URL, member.ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMarkPaidEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token, accountID := registerAndLogin(t, ts, "ana@example.com")
	base := fmt.Sprintf("%s/api/contexts/%s", ts.URL, accountID)

	resp := doJSON(t, http.MethodPost, base+"/transactions", token, map[string]any{
		"title": "rent", "amount": "1200.00", "kind": "expense",
		"category": "Moradia", "date": "2024-01-05",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[[]struct {
		ID string `json:"id"`
	}](t, resp)
	require.Len(t, created, 1)

	resp = doJSON(t, http.MethodPost, base+"/transactions/pay", token, map[string]any{
		"ids": []string{created[0].ID}, "payment_date": "2024-01-06",
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAnalysisDegrades(t *testing.T) {
	ts := newTestServer(t)
	token, accountID := registerAndLogin(t, ts, "ana@example.com")

	// no analyzer configured; the endpoint still answers
	resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/contexts/%s/analysis", ts.URL, accountID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]any](t, resp)
	assert.NotEmpty(t, body["summary"])
}

func TestReceiptEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token, _ := registerAndLogin(t, ts, "ana@example.com")

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/receipts", bytes.NewReader([]byte("fake-image-bytes")))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "Mercado", body["title"])
	assert.Equal(t, "45.50", body["amount"])
}

func TestMetricsExposed(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
