package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"driverledger/internal/core"
	"driverledger/internal/log"
	gsheet "driverledger/internal/sheets/google"
)

type contextKey string

const requestIDKey contextKey = "request_id"

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode response", log.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	resp := errorResponse{Error: msg}
	if id, ok := r.Context().Value(requestIDKey).(string); ok {
		resp.RequestID = id
	}
	writeJSON(w, r, status, resp)
}

// writeDomainError maps domain errors onto HTTP statuses: validation failures
// are the client's fault, quota exhaustion is retryable, the rest is ours.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrNegativeAmount),
		errors.Is(err, core.ErrNegativeOdometer),
		errors.Is(err, core.ErrEmptyLineItemName),
		errors.Is(err, core.ErrInvalidMPG),
		errors.Is(err, core.ErrNegativeGasPrice),
		errors.Is(err, core.ErrNegativeGoal):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, gsheet.ErrQuotaExceeded):
		w.Header().Set("Retry-After", "60")
		writeError(w, r, http.StatusTooManyRequests, "remote store quota exceeded")
	default:
		logger := log.FromContext(r.Context())
		logger.ErrorContext(r.Context(), "Request failed", log.FieldError, err,
			log.FieldPath, r.URL.Path)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// pathDate parses the {date} path segment.
func pathDate(r *http.Request) (core.Date, error) {
	return core.ParseDate(r.PathValue("date"))
}

// queryDate reads an optional ?date= parameter, defaulting to today.
func queryDate(r *http.Request) (core.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get("date"))
	if v == "" {
		return core.Today(), nil
	}
	return core.ParseDate(v)
}

// queryYearMonth reads ?year= and ?month=, defaulting to the current month.
func queryYearMonth(r *http.Request) (year, month int, err error) {
	now := time.Now().UTC()
	year = now.Year()
	month = int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, errors.New("invalid year")
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		month, err = strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return 0, 0, errors.New("invalid month")
		}
	}
	return year, month, nil
}

// defaultListLimit caps the record listing when no ?limit= is given. An
// explicit limit=0 asks for the full history.
const defaultListLimit = 30

// queryLimit reads ?limit= for the listing endpoint.
func queryLimit(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("limit"))
	if v == "" {
		return defaultListLimit, nil
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit < 0 {
		return 0, errors.New("invalid limit")
	}
	return limit, nil
}
