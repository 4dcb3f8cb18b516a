package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	applog "budget/internal/log"
	"budget/internal/services"
)

type Server struct {
	http.Server
	reports     *services.ReportService
	allocations *services.AllocationService
	expenses    *services.ExpenseService
	goals       *services.GoalService
	balances    *services.BalanceService
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// startCleanup runs periodic cleanup to remove stale client entries
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures all API routes, returning a ready-to-run http.Server.
func NewServer(addr string, reports *services.ReportService, allocations *services.AllocationService, expenses *services.ExpenseService, goals *services.GoalService, balances *services.BalanceService) *Server {
	mux := http.NewServeMux()

	// Every request carries a component logger enriched with its request ID;
	// handlers and helpers pull it back out with applog.FromContext.
	logger := applog.NewWithHandler(slog.Default().Handler(), applog.ComponentHTTP)
	handler := applog.Middleware(logger)(applog.RequestIDMiddleware(newRequestID)(mux))

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		reports:     reports,
		allocations: allocations,
		expenses:    expenses,
		goals:       goals,
		balances:    balances,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/dashboard", s.wrap(s.handleDashboard))
	mux.HandleFunc("GET /api/history", s.wrap(s.handleHistory))

	mux.HandleFunc("GET /api/accounts", s.wrap(s.handleListAccounts))
	mux.HandleFunc("POST /api/accounts", s.wrap(s.handleCreateAccount))
	mux.HandleFunc("PATCH /api/accounts/{id}", s.wrap(s.handleUpdateAccount))
	mux.HandleFunc("POST /api/accounts/{id}/balance", s.wrap(s.handleSetAccountBalance))

	mux.HandleFunc("GET /api/debts", s.wrap(s.handleListDebts))
	mux.HandleFunc("POST /api/debts", s.wrap(s.handleCreateDebt))
	mux.HandleFunc("PATCH /api/debts/{id}", s.wrap(s.handleUpdateDebt))
	mux.HandleFunc("POST /api/debts/{id}/balance", s.wrap(s.handleSetDebtBalance))

	mux.HandleFunc("GET /api/categories", s.wrap(s.handleCategoryBalances))
	mux.HandleFunc("POST /api/categories", s.wrap(s.handleCreateCategory))
	mux.HandleFunc("PATCH /api/categories/{id}", s.wrap(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.wrap(s.handleDeleteCategory))
	mux.HandleFunc("POST /api/setup/categories", s.wrap(s.handleSetupCategories))

	mux.HandleFunc("POST /api/paychecks", s.wrap(s.handleAddPaycheck))
	mux.HandleFunc("POST /api/income", s.wrap(s.handlePostIncome))

	mux.HandleFunc("POST /api/expenses", s.wrap(s.handleAddExpense))
	mux.HandleFunc("PATCH /api/expenses/{id}", s.wrap(s.handleUpdateExpense))
	mux.HandleFunc("GET /api/expenses/pending", s.wrap(s.handlePendingExpenses))
	mux.HandleFunc("GET /api/expenses/recent", s.wrap(s.handleRecentExpenses))

	mux.HandleFunc("POST /api/allocations/account", s.wrap(s.handleAccountAllocation))

	mux.HandleFunc("GET /api/goals", s.wrap(s.handleGoalProgress))
	mux.HandleFunc("POST /api/goals", s.wrap(s.handleCreateGoal))
	mux.HandleFunc("PATCH /api/goals/{id}", s.wrap(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", s.wrap(s.handleDeleteGoal))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// wrap adds security headers, rate limiting, and request logging
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		logger := applog.FromContext(ctx)

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		logger.InfoContext(ctx, "Request started",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		// Rate limit mutating requests
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		logger.InfoContext(ctx, "Request completed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

// newRequestID tags each request for tracing.
func newRequestID(*http.Request) string {
	return uuid.NewString()
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleReady verifies the storage backend answers before reporting ready
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	if _, _, err := s.balances.AllocationTotal(ctx); err != nil {
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
		applog.FromContext(ctx).ErrorContext(ctx, "Readiness check failed", applog.FieldError, err)
	}

	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]string{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
