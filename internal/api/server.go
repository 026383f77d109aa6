// Package api exposes the application over HTTP as a JSON API: the backend
// a single-page client talks to. Handlers stay thin; every rule lives in
// the session and ledger services.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meucofre/cofre/internal/ledger"
	"github.com/meucofre/cofre/internal/service"
	"github.com/meucofre/cofre/internal/session"
)

// Server is the cofre HTTP API server.
type Server struct {
	sessions  *session.Service
	books     *ledger.Service
	analyzer  service.Analyzer
	extractor service.ReceiptExtractor
	metrics   *metrics
}

// NewServer creates an API server over the given services.
func NewServer(sessions *session.Service, books *ledger.Service, analyzer service.Analyzer, extractor service.ReceiptExtractor) *Server {
	return &Server{
		sessions:  sessions,
		books:     books,
		analyzer:  analyzer,
		extractor: extractor,
		metrics:   newMetrics(),
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.metrics.instrument)
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/accounts/me", s.handleMe)
			r.Post("/accounts/members", s.handleAddMember)
			r.Post("/accounts/switch/{accountID}", s.handleSwitch)

			r.Route("/contexts/{contextID}", func(r chi.Router) {
				r.Get("/categories", s.handleListCategories)
				r.Post("/categories", s.handleAddCategory)
				r.Put("/categories/{categoryID}", s.handleUpdateCategory)
				r.Delete("/categories/{categoryID}", s.handleDeleteCategory)

				r.Get("/transactions", s.handleListTransactions)
				r.Post("/transactions", s.handleAddTransaction)
				r.Put("/transactions/{txnID}", s.handleUpdateTransaction)
				r.Delete("/transactions/{txnID}", s.handleDeleteTransaction)
				r.Post("/transactions/pay", s.handleMarkPaid)

				r.Get("/summary", s.handleSummary)
				r.Get("/budget", s.handleBudget)
				r.Get("/series", s.handleSeries)
				r.Post("/analysis", s.handleAnalysis)
			})

			r.Post("/receipts", s.handleReceipt)
		})
	})

	return r
}
