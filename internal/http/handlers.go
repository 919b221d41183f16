package http

import (
	"errors"
	"log/slog"
	"net/http"

	"moneylog/internal/aggregate"
	"moneylog/internal/bridge"
	"moneylog/internal/core"
	"moneylog/internal/session"
	"moneylog/internal/vault"
)

type unlockRequest struct {
	PIN string `json:"pin"`
}

type unlockResponse struct {
	Token string     `json:"token"`
	Names core.Names `json:"names"`
}

// handleUnlock checks the PIN, opens the document on first unlock, and
// issues a session token. Attempts are rate limited per client IP.
func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	clientIP := extractClientIP(r)
	if !s.rateLimiter.allow(clientIP, s.metrics) {
		slog.WarnContext(r.Context(), "Unlock rate limit exceeded", "client_ip", clientIP)
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, "too many attempts, try again later")
		return
	}

	var req unlockRequest
	if !readJSON(w, r, &req) {
		return
	}

	sess, err := s.sessions.Unlock(req.PIN)
	if err != nil {
		if errors.Is(err, session.ErrWrongPIN) {
			s.metrics.recordUnlockFailure()
			slog.WarnContext(r.Context(), "Unlock failed", "client_ip", clientIP)
			writeError(w, http.StatusUnauthorized, "wrong pin")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// First unlock (or unlock after a failed load) reads the remote
	// document. Later unlocks reuse the already loaded state.
	if s.bridge.State() != bridge.StateReady {
		if err := s.bridge.Open(r.Context(), sess.Key); err != nil {
			s.sessions.End(sess.Token)
			if errors.Is(err, vault.ErrDecryptFailed) {
				s.metrics.recordUnlockFailure()
				writeError(w, http.StatusUnauthorized, "pin does not match the stored document")
				return
			}
			slog.ErrorContext(r.Context(), "Failed to open document", "error", err)
			writeError(w, http.StatusBadGateway, "document store unavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, unlockResponse{
		Token: sess.Token,
		Names: s.ledger.Names(),
	})
}

// handleLock flushes any pending save and ends the session.
func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	s.bridge.Flush()
	s.sessions.End(sessionToken(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetNames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Names())
}

func (s *Server) handleSetNames(w http.ResponseWriter, r *http.Request) {
	var names core.Names
	if !readJSON(w, r, &names) {
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.SetNames(names))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc := s.ledger.Snapshot()
	writeJSON(w, http.StatusOK, aggregate.Summarize(doc.Tx, doc.Fixed, year, month, filter))
}

type entryView struct {
	aggregate.Entry
	PersonName       string `json:"personName"`
	AmountLabel      string `json:"amountLabel"`
	InstallmentLabel string `json:"installmentLabel,omitempty"`
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc := s.ledger.Snapshot()
	entries := aggregate.Entries(doc.Tx, doc.Fixed, year, month, filter)

	views := make([]entryView, len(entries))
	for i, e := range entries {
		views[i] = entryView{
			Entry:            e,
			PersonName:       doc.Names.DisplayName(e.Tx.Person),
			AmountLabel:      core.FormatWon(e.Tx.Amount),
			InstallmentLabel: aggregate.InstallmentLabel(e.Tx.Installment),
		}
	}
	writeJSON(w, http.StatusOK, views)
}
