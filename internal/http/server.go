// Package http is the JSON API surface: the PIN gate, the month views, and
// CRUD on every entity of the household document. Handlers never compute
// aggregates themselves; they snapshot the ledger and delegate to the
// aggregate package, so every response reflects the latest edits.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"moneylog/internal/bridge"
	"moneylog/internal/ledger"
	"moneylog/internal/session"
)

// Unlock attempts allowed per client IP per minute.
const unlockAttemptsPerMinute = 10

type Server struct {
	http.Server

	sessions *session.Manager
	ledger   *ledger.Store
	bridge   *bridge.Bridge

	rateLimiter *rateLimiter
	metrics     *securityMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, sessions *session.Manager, led *ledger.Store, br *bridge.Bridge) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		sessions:    sessions,
		ledger:      led,
		bridge:      br,
		rateLimiter: newRateLimiter(unlockAttemptsPerMinute),
		metrics:     &securityMetrics{},
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/unlock", s.withRequestLog(s.handleUnlock))
	mux.HandleFunc("POST /api/lock", s.withRequestLog(s.requireSession(s.handleLock)))

	mux.HandleFunc("GET /api/summary", s.withRequestLog(s.requireSession(s.handleSummary)))
	mux.HandleFunc("GET /api/entries", s.withRequestLog(s.requireSession(s.handleEntries)))

	mux.HandleFunc("GET /api/names", s.withRequestLog(s.requireSession(s.handleGetNames)))
	mux.HandleFunc("PUT /api/names", s.withRequestLog(s.requireSession(s.handleSetNames)))

	mux.HandleFunc("POST /api/transactions", s.withRequestLog(s.requireSession(s.handleCreateTransaction)))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withRequestLog(s.requireSession(s.handleUpdateTransaction)))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withRequestLog(s.requireSession(s.handleDeleteTransaction)))

	mux.HandleFunc("GET /api/fixed", s.withRequestLog(s.requireSession(s.handleListFixed)))
	mux.HandleFunc("POST /api/fixed", s.withRequestLog(s.requireSession(s.handleCreateFixed)))
	mux.HandleFunc("DELETE /api/fixed/{id}", s.withRequestLog(s.requireSession(s.handleDeleteFixed)))
	mux.HandleFunc("POST /api/fixed/{id}/deposited", s.withRequestLog(s.requireSession(s.handleToggleDeposited)))

	mux.HandleFunc("GET /api/loans", s.withRequestLog(s.requireSession(s.handleListLoans)))
	mux.HandleFunc("POST /api/loans", s.withRequestLog(s.requireSession(s.handleCreateLoan)))
	mux.HandleFunc("DELETE /api/loans/{id}", s.withRequestLog(s.requireSession(s.handleDeleteLoan)))
	mux.HandleFunc("POST /api/loans/{id}/payments", s.withRequestLog(s.requireSession(s.handleCreatePayment)))
	mux.HandleFunc("DELETE /api/loans/{id}/payments/{pid}", s.withRequestLog(s.requireSession(s.handleDeletePayment)))

	mux.HandleFunc("GET /api/investments", s.withRequestLog(s.requireSession(s.handleListInvestments)))
	mux.HandleFunc("POST /api/investments", s.withRequestLog(s.requireSession(s.handleCreateInvestment)))
	mux.HandleFunc("DELETE /api/investments/{id}", s.withRequestLog(s.requireSession(s.handleDeleteInvestment)))
	mux.HandleFunc("POST /api/investments/{id}/records", s.withRequestLog(s.requireSession(s.handleCreateRecord)))
	mux.HandleFunc("DELETE /api/investments/{id}/records/{rid}", s.withRequestLog(s.requireSession(s.handleDeleteRecord)))

	mux.HandleFunc("GET /api/wallet", s.withRequestLog(s.requireSession(s.handleWallet)))

	return s
}

// withRequestLog adds security headers and request logging.
func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// requireSession rejects requests without a live session token.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing session token")
			return
		}
		if _, ok := s.sessions.Get(token); !ok {
			writeError(w, http.StatusUnauthorized, "session expired or unknown")
			return
		}
		next(w, r)
	}
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
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Ready means the gate is up; the document loads lazily on unlock.
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown gracefully shuts down the server and cleanup routines.
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
