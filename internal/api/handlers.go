package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meucofre/cofre/internal/ai"
	"github.com/meucofre/cofre/internal/common"
	"github.com/meucofre/cofre/internal/ledger"
	"github.com/meucofre/cofre/internal/model"
	"github.com/meucofre/cofre/internal/report"
	"github.com/meucofre/cofre/internal/service"
)

const dateLayout = "2006-01-02"

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	account, err := s.sessions.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	login, err := s.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":   login.Token,
		"account": login.Account,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	if err := s.sessions.Logout(r.Context(), token); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, caller(r))
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Email     string `json:"email"`
		ShareData bool   `json:"share_data"`
	}
	if err := decode(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	owner := caller(r)
	updated, err := s.sessions.AddMember(r.Context(), owner.ID, owner, req.Name, req.Email, req.ShareData)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, updated)
}

func (s *Server) handleSwitch(w http.ResponseWriter, r *http.Request) {
	account, err := s.sessions.SwitchAccount(r.Context(), caller(r).ID, chi.URLParam(r, "accountID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, _, err := s.books.LoadBooks(r.Context(), caller(r).ID, chi.URLParam(r, "contextID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string             `json:"name"`
		Kind   model.CategoryKind `json:"kind"`
		Budget model.Cents        `json:"budget"`
	}
	if err := decode(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	category, err := s.books.AddCategory(r.Context(), caller(r).ID, chi.URLParam(r, "contextID"), req.Name, req.Kind, req.Budget)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var category model.Category
	if err := decode(r, &category); err != nil {
		writeServiceError(w, err)
		return
	}
	category.ID = chi.URLParam(r, "categoryID")
	category.DataContextID = chi.URLParam(r, "contextID")

	if err := s.books.UpdateCategory(r.Context(), caller(r).ID, &category); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	err := s.books.DeleteCategory(r.Context(), caller(r).ID, chi.URLParam(r, "contextID"), chi.URLParam(r, "categoryID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	_, txns, err := s.books.LoadBooks(r.Context(), caller(r).ID, chi.URLParam(r, "contextID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

type transactionRequest struct {
	Title        string                  `json:"title"`
	Amount       model.Cents             `json:"amount"`
	Kind         model.TransactionKind   `json:"kind"`
	Category     string                  `json:"category"`
	Status       model.TransactionStatus `json:"status"`
	Date         string                  `json:"date"`
	PaymentDate  string                  `json:"payment_date"`
	Observation  string                  `json:"observation"`
	Installments int                     `json:"installments"`
}

func (req *transactionRequest) intent(contextID string) (ledger.Intent, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return ledger.Intent{}, common.NewUserError("Date must be YYYY-MM-DD.", common.ErrInvalidInput)
	}

	intent := ledger.Intent{
		Title:         req.Title,
		Amount:        req.Amount,
		Kind:          req.Kind,
		Category:      req.Category,
		Status:        req.Status,
		Date:          date,
		Observation:   req.Observation,
		Installments:  req.Installments,
		DataContextID: contextID,
	}
	if intent.Status == "" {
		intent.Status = model.StatusPending
	}
	if req.PaymentDate != "" {
		paid, err := time.Parse(dateLayout, req.PaymentDate)
		if err != nil {
			return ledger.Intent{}, common.NewUserError("Payment date must be YYYY-MM-DD.", common.ErrInvalidInput)
		}
		intent.PaymentDate = &paid
	}
	return intent, nil
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decode(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	intent, err := req.intent(chi.URLParam(r, "contextID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	txns, err := s.books.AddTransaction(r.Context(), caller(r).ID, intent)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, txns)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decode(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	intent, err := req.intent(chi.URLParam(r, "contextID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	txn := model.Transaction{
		ID:            chi.URLParam(r, "txnID"),
		Title:         intent.Title,
		Amount:        intent.Amount,
		Kind:          intent.Kind,
		Category:      intent.Category,
		Status:        intent.Status,
		Date:          intent.Date,
		PaymentDate:   intent.PaymentDate,
		Observation:   intent.Observation,
		DataContextID: intent.DataContextID,
	}

	if err := s.books.UpdateTransaction(r.Context(), caller(r).ID, &txn); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	err := s.books.DeleteTransaction(r.Context(), caller(r).ID, chi.URLParam(r, "contextID"), chi.URLParam(r, "txnID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs         []string `json:"ids"`
		PaymentDate string   `json:"payment_date"`
	}
	if err := decode(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	paymentDate := time.Now().UTC()
	if req.PaymentDate != "" {
		parsed, err := time.Parse(dateLayout, req.PaymentDate)
		if err != nil {
			writeServiceError(w, common.NewUserError("Payment date must be YYYY-MM-DD.", common.ErrInvalidInput))
			return
		}
		paymentDate = parsed
	}

	if err := s.books.MarkPaid(r.Context(), caller(r).ID, chi.URLParam(r, "contextID"), req.IDs, paymentDate); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// monthWindow parses ?year= and ?month= with the current month as default.
func monthWindow(r *http.Request) (int, time.Month) {
	now := time.Now()
	year, month := now.Year(), now.Month()

	if v := r.URL.Query().Get("year"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			year = parsed
		}
	}
	if v := r.URL.Query().Get("month"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 1 && parsed <= 12 {
			month = time.Month(parsed)
		}
	}
	return year, month
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	_, txns, err := s.books.LoadBooks(r.Context(), caller(r).ID, chi.URLParam(r, "contextID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	year, month := monthWindow(r)
	summary := report.Monthly(txns, year, month)

	writeJSON(w, http.StatusOK, map[string]any{
		"income":       summary.Income,
		"expense":      summary.Expense,
		"pending":      summary.Pending,
		"balance":      summary.Balance,
		"savings_rate": summary.SavingsRate,
	})
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	categories, txns, err := s.books.LoadBooks(r.Context(), caller(r).ID, chi.URLParam(r, "contextID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	year, month := monthWindow(r)
	var window []model.Transaction
	for i := range txns {
		if txns[i].DueIn(year, month) {
			window = append(window, txns[i])
		}
	}

	rep := report.CategoryBudget(categories, window)
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	_, txns, err := s.books.LoadBooks(r.Context(), caller(r).ID, chi.URLParam(r, "contextID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	year := time.Now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			year = parsed
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"year":        year,
		"monthly":     report.YearlyExpenseSeries(txns, year),
		"by_category": report.YearlyCategorySeries(txns, year),
	})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	_, txns, err := s.books.LoadBooks(r.Context(), caller(r).ID, chi.URLParam(r, "contextID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	records := make([]service.AnalysisRecord, 0, len(txns))
	for i := range txns {
		records = append(records, service.AnalysisRecord{
			Title:    txns[i].Title,
			Amount:   txns[i].Amount,
			Kind:     txns[i].Kind,
			Category: txns[i].Category,
			Date:     txns[i].Date,
		})
	}

	analysis := ai.SafeAnalyze(r.Context(), s.analyzer, records)
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":   analysis.Summary,
		"tips":      analysis.Tips,
		"anomalies": analysis.Anomalies,
	})
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	image, err := io.ReadAll(io.LimitReader(r.Body, 10<<20))
	if err != nil || len(image) == 0 {
		writeServiceError(w, common.NewUserError("Missing image payload.", common.ErrInvalidInput))
		return
	}

	data, err := s.extractor.Extract(r.Context(), image, r.Header.Get("Content-Type"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := map[string]any{
		"title":       data.Title,
		"amount":      data.Amount,
		"observation": data.Observation,
	}
	if !data.Date.IsZero() {
		resp["date"] = data.Date.Format(dateLayout)
	}
	writeJSON(w, http.StatusOK, resp)
}
