// Package http exposes the budget API as JSON over HTTP.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"budgetbook/internal/cache"
	"budgetbook/internal/core"
	"budgetbook/internal/middleware/ratelimit"
	"budgetbook/internal/middleware/security"
	"budgetbook/internal/middleware/trace"
	"budgetbook/internal/services"
)

// TransactionExporter appends a budget's transactions to an external
// sheet. Optional; the export endpoint returns 503 without one.
type TransactionExporter interface {
	Export(ctx context.Context, budget core.Budget, txs []core.Transaction) (int, error)
}

// Server wires the services into HTTP routes.
type Server struct {
	http.Server

	budgets      *services.BudgetService
	categories   *services.CategoryService
	transactions *services.TransactionService
	recurring    *services.RecurringService
	exporter     TransactionExporter

	rateLimiter *ratelimit.Limiter
	trace       *trace.Middleware
	startedAt   time.Time

	// Derived reads are cached briefly; any write to a budget
	// invalidates every cached view of it.
	overviewCache *cache.LRUCache[services.BudgetOverview]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

// Config holds server construction options.
type Config struct {
	Addr               string
	RateLimitPerMinute int
	Exporter           TransactionExporter
}

// NewServer configures routes and middleware, returning a
// ready-to-run server.
func NewServer(cfg Config, budgets *services.BudgetService, categories *services.CategoryService, transactions *services.TransactionService, recurring *services.RecurringService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		budgets:      budgets,
		categories:   categories,
		transactions: transactions,
		recurring:    recurring,
		exporter:     cfg.Exporter,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
		}),
		trace:         trace.NewMiddleware(clientIP),
		startedAt:     time.Now(),
		overviewCache: cache.NewLRUCache[services.BudgetOverview](100, 30*time.Second),
		cacheManager:  cache.NewManager(),
	}
	s.cacheManager.Register(s.overviewCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	mux.HandleFunc("GET /api/budgets/{id}", s.handleGetBudget)
	mux.HandleFunc("PUT /api/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /api/budgets/{id}/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/budgets/{id}/categories", s.handleCreateCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/budgets/{id}/transactions", s.handleQueryTransactions)
	mux.HandleFunc("POST /api/budgets/{id}/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/budgets/{id}/authors", s.handleListAuthors)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/budgets/{id}/recurring", s.handleListRecurring)
	mux.HandleFunc("POST /api/budgets/{id}/recurring", s.handleCreateRecurring)
	mux.HandleFunc("DELETE /api/recurring/{id}", s.handleDeleteRecurring)

	mux.HandleFunc("POST /api/budgets/{id}/export", s.handleExport)

	headersMW := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	handler := s.trace.Middleware(headersMW.Middleware(s.withRateLimit(mux)))

	s.Server = http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}
	return s
}

// Shutdown stops the server and its housekeeping goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withRateLimit throttles write requests per client IP.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && !s.rateLimiter.Allow(clientIP(r)) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP(r),
				"method", r.Method,
				"path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// invalidateBudget drops every cached view of a budget. Keys are
// prefixed "budget:<id>:" so new per-budget caches invalidate for free.
func (s *Server) invalidateBudget(budgetID string) {
	s.overviewCache.DeletePrefix("budget:" + budgetID + ":")
}

func overviewKey(budgetID string) string {
	return "budget:" + budgetID + ":overview"
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
