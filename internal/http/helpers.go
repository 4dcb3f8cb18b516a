package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	applog "budget/internal/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", applog.FieldError, err)
	}
}

// writeError maps domain error kinds to HTTP status codes
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrAllocationTotal),
		errors.Is(err, core.ErrNoCategories),
		errors.Is(err, core.ErrEmptyName):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrUnsupportedGoalType),
		errors.Is(err, core.ErrUnsupportedTargetType),
		errors.Is(err, core.ErrUnsupportedLinkType):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrInsufficientFunds),
		errors.Is(err, core.ErrAlreadySatisfied):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err,
			applog.FieldPath, r.URL.Path)
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// pathID extracts the {id} path segment as an int64.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", r.PathValue("id"))
	}
	return id, nil
}

// parseLimit reads the limit query parameter, falling back to def.
func parseLimit(r *http.Request, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get("limit"))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// parseMoney parses a request amount string into a decimal.
func parseMoney(s string) (decimal.Decimal, error) {
	return core.ParseAmount(s)
}

// parseDateOrToday parses a YYYY-MM-DD string, empty meaning today.
func parseDateOrToday(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Today(), nil
	}
	return core.ParseDate(s)
}
