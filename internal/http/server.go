package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"financepilot/internal/core"
	"financepilot/internal/ledger"
	"financepilot/internal/log"
	"financepilot/internal/services"
)

// LedgerAPI is what the handlers need from the service layer.
type LedgerAPI interface {
	Dashboard(ctx context.Context) (ledger.Dashboard, error)
	Recent(ctx context.Context, limit int) ([]core.Transaction, error)
	AddTransaction(ctx context.Context, in core.TransactionInput) (services.AddResult, error)
	Draft() core.TransactionInput
	ListLimit() int
}

type Server struct {
	http.Server
	ledger      LedgerAPI
	logger      *log.Logger
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, api LedgerAPI, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		ledger:      api,
		logger:      logger,
		rateLimiter: newRateLimiter(60, time.Minute),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/draft", s.handleDraft)
	mux.HandleFunc("/transactions.txt", s.handleTransactionsText)

	var handler http.Handler = mux
	handler = s.withSecurityHeaders(handler)
	handler = log.AccessLog(handler)
	handler = log.RequestIDMiddleware(requestID)(handler)
	handler = log.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers and rate limits writes.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w.Header())

		if r.Method == http.MethodPost {
			clientIP := extractClientIP(r)
			if !s.rateLimiter.allow(clientIP, time.Now()) {
				log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
					"client_ip", clientIP,
					log.FieldPath, r.URL.Path)
				ErrorResponse(http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, try again later").
					Header("Retry-After", "60").
					Write(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().Text("ok").Write(w)
}
