package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"moneylog/internal/aggregate"
	"moneylog/internal/core"
	"moneylog/internal/ledger"
)

const maxBodyBytes = 1 << 20

// sessionToken pulls the token from the Authorization bearer header, with
// X-Session-Token as a fallback for clients that cannot set Authorization.
func sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Session-Token"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// parseMonth extracts the target month from the month=YYYY-MM query
// parameter, defaulting to the current month.
func parseMonth(r *http.Request) (year, month int, err error) {
	now := time.Now()
	year, month = now.Year(), int(now.Month())

	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		return year, month, nil
	}
	t, perr := time.Parse("2006-01", v)
	if perr != nil {
		return 0, 0, fmt.Errorf("invalid month %q: want YYYY-MM", v)
	}
	return t.Year(), int(t.Month()), nil
}

// parseFilter extracts the person filter, defaulting to all.
func parseFilter(r *http.Request) (aggregate.Filter, error) {
	v := strings.TrimSpace(r.URL.Query().Get("filter"))
	if v == "" {
		return aggregate.FilterAll, nil
	}
	f := aggregate.Filter(v)
	if !f.Valid() {
		return "", fmt.Errorf("invalid filter %q: want all, p1, p2 or shared", v)
	}
	return f, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	v := r.PathValue(name)
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", v)
	}
	return id, nil
}

// writeStoreError maps ledger errors to HTTP statuses: unknown ids are 404,
// rejected input is 422, anything else is a 500.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidType,
		core.ErrInvalidPerson,
		core.ErrInvalidDate,
		core.ErrInvalidCategory,
		core.ErrEmptyName,
		core.ErrInvalidInstallment,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
