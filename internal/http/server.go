package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

const (
	dashboardCacheSize = 16
	dashboardCacheTTL  = 5 * time.Minute
)

// Server wires the API handlers behind the middleware chain:
// trace -> rate limit (mutations only) -> security headers -> mux.
type Server struct {
	http.Server

	transactions *services.TransactionService
	mailer       *services.MailService

	tracer   *trace.Middleware
	limiter  *ratelimit.Limiter
	detector *security.Detector
	txLog    *applog.StructuredLogger

	// dashCache holds rendered dashboard snapshots per target percent,
	// purged wholesale on every mutation.
	dashCache *cache.LRUCache[dashboardView]
	cacheMgr  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a
// ready-to-run server. mailer may be nil when no relay is configured.
func NewServer(addr string, transactions *services.TransactionService, mailer *services.MailService) *Server {
	detector := security.NewDetector()

	s := &Server{
		transactions: transactions,
		mailer:       mailer,
		detector:     detector,
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:       trace.NewMiddleware(detector.ExtractClientIP),
		dashCache:    cache.NewLRUCache[dashboardView](dashboardCacheSize, dashboardCacheTTL),
		cacheMgr:     cache.NewManager(),
		// Reuse the process handler so handler logs follow whatever
		// logger the command installed.
		txLog: applog.NewStructuredLogger(applog.New(applog.Config{
			Component: applog.ComponentTransaction,
			Handler:   slog.Default().Handler(),
		})),
	}

	s.cacheMgr.Register(s.dashCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/add-transaction", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/v1/get-transactions", s.handleListTransactions)
	mux.HandleFunc("PUT /api/v1/update-transaction/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/v1/delete-transaction/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("POST /api/v1/mail/trigger-summary", s.handleTriggerSummary)
	mux.HandleFunc("POST /api/v1/mail/trigger-motivation", s.handleTriggerMotivation)
	mux.HandleFunc("GET /api/v1/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = headers.Middleware(handler)
	handler = s.limitMutations(handler)
	handler = s.flagSuspicious(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// limitMutations applies the per-IP limiter to write requests only.
// Reads stay unthrottled.
func (s *Server) limitMutations(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			clientIP := s.detector.ExtractClientIP(r)
			if !s.limiter.Allow(clientIP) {
				slog.WarnContext(r.Context(), "Rate limit exceeded",
					"client_ip", clientIP, "method", r.Method, "path", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				respondError(w, http.StatusTooManyRequests, "rate limit exceeded", nil)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// flagSuspicious logs requests matching known probe patterns. They are
// not blocked; the signal feeds the metrics endpoint.
func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request detected",
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r),
				"user_agent", r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the background cleanup goroutines and drains the
// listener within ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.cacheMgr.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	tm := s.tracer.GetMetrics()
	sm := s.detector.GetMetrics()
	respondOK(w, http.StatusOK, "", map[string]any{
		"total_requests":          tm.TotalRequests,
		"avg_response_time_us":    tm.AverageResponseTime,
		"tracked_clients":         s.limiter.ActiveClients(),
		"dashboard_cache_entries": s.dashCache.Size(),
		"suspicious_requests":     sm.SuspiciousRequests,
	})
}
