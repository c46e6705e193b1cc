// Package http exposes the expense tracker over a JSON API. Handlers
// translate between wire payloads and domain types; all rules live in
// the services underneath.
package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/AliGanji14/cost-management/internal/log"
	"github.com/AliGanji14/cost-management/internal/middleware/ratelimit"
	"github.com/AliGanji14/cost-management/internal/middleware/security"
	"github.com/AliGanji14/cost-management/internal/middleware/trace"
	"github.com/AliGanji14/cost-management/internal/services"
	"github.com/AliGanji14/cost-management/internal/storage"
)

// Services bundles the domain services the handlers dispatch to.
type Services struct {
	Users    *services.UserService
	Taxonomy *services.TaxonomyService
	Expenses *services.ExpenseService
	Budgets  *services.BudgetService
}

type Server struct {
	http.Server

	store    *storage.Store
	users    *services.UserService
	taxonomy *services.TaxonomyService
	expenses *services.ExpenseService
	budgets  *services.BudgetService

	tracer  *trace.Middleware
	limiter *ratelimit.Limiter
	logger  *log.Logger
	started time.Time
}

// NewServer wires routes and middleware, returning a ready-to-run
// server. The caller owns the limiter's and store's lifecycles.
func NewServer(addr string, store *storage.Store, svcs Services, limiter *ratelimit.Limiter, logger *log.Logger) *Server {
	mux := http.NewServeMux()
	ips := security.NewIPExtractor()

	s := &Server{
		store:    store,
		users:    svcs.Users,
		taxonomy: svcs.Taxonomy,
		expenses: svcs.Expenses,
		budgets:  svcs.Budgets,
		tracer:   trace.NewMiddleware(ips.ClientIP),
		limiter:  limiter,
		logger:   logger.WithComponent(log.ComponentHTTP),
		started:  time.Now(),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /v1/users", s.handleCreateUser)
	mux.HandleFunc("GET /v1/users", s.handleListUsers)
	mux.HandleFunc("GET /v1/users/{id}", s.handleGetUser)
	mux.HandleFunc("PUT /v1/users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /v1/users/{id}", s.handleDeleteUser)

	mux.HandleFunc("POST /v1/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /v1/categories", s.handleListCategories)
	mux.HandleFunc("GET /v1/categories/{id}", s.handleGetCategory)
	mux.HandleFunc("PUT /v1/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /v1/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("POST /v1/tags", s.handleCreateTag)
	mux.HandleFunc("GET /v1/tags", s.handleListTags)
	mux.HandleFunc("GET /v1/tags/{id}", s.handleGetTag)
	mux.HandleFunc("PUT /v1/tags/{id}", s.handleUpdateTag)
	mux.HandleFunc("DELETE /v1/tags/{id}", s.handleDeleteTag)

	mux.HandleFunc("POST /v1/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /v1/expenses", s.handleListExpenses)
	mux.HandleFunc("GET /v1/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /v1/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /v1/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("PUT /v1/expenses/{id}/tags/{tagID}", s.handleAttachTag)
	mux.HandleFunc("DELETE /v1/expenses/{id}/tags/{tagID}", s.handleDetachTag)

	mux.HandleFunc("POST /v1/budgets", s.handleCreateBudget)
	mux.HandleFunc("GET /v1/budgets", s.handleListBudgets)
	mux.HandleFunc("GET /v1/budgets/status", s.handleAllBudgetStatus)
	mux.HandleFunc("GET /v1/budgets/{id}", s.handleGetBudget)
	mux.HandleFunc("PUT /v1/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /v1/budgets/{id}", s.handleDeleteBudget)
	mux.HandleFunc("GET /v1/budgets/{id}/status", s.handleBudgetStatus)

	// Outermost to innermost: headers, tracing, request logging, rate
	// limiting. Rejected requests still show up in logs and metrics.
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	handler := limiter.Middleware(ips.ClientIP, rateLimited)(mux)
	handler = log.Middleware(s.logger)(handler)
	handler = s.tracer.Middleware(handler)
	handler = headers.Middleware(handler)

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}

	return s
}

// rateLimited renders the 429 as JSON like every other API error.
func rateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("database unreachable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.GetMetrics()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "requests_total %d\n", m.TotalRequests)
	fmt.Fprintf(w, "response_time_us %d\n", m.AverageResponseTime)
	fmt.Fprintf(w, "ratelimit_active_clients %d\n", s.limiter.ActiveClients())
	fmt.Fprintf(w, "uptime_seconds %d\n", int64(time.Since(s.started).Seconds()))
}
