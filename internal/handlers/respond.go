package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/avolkhin/sqlarena/internal/app"
	"github.com/avolkhin/sqlarena/internal/models"
	"github.com/avolkhin/sqlarena/internal/sandbox"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

// writeError maps domain errors onto statuses. Raw database error text
// never reaches the caller; it is logged here instead.
func writeError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, app.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, app.ErrNotAllowed):
		http.Error(w, "Operation not permitted", http.StatusForbidden)
	case errors.Is(err, app.ErrCompetitionClosed):
		http.Error(w, "Competition is not open", http.StatusBadRequest)
	case errors.Is(err, sandbox.ErrForbidden):
		http.Error(w, "Statement contains a forbidden keyword", http.StatusBadRequest)
	case errors.Is(err, sandbox.ErrNameConflict):
		http.Error(w, "Database name already in use, pick another", http.StatusConflict)
	case errors.Is(err, sandbox.ErrBusy):
		http.Error(w, "Competition database is busy, retry later", http.StatusConflict)
	case errors.Is(err, sandbox.ErrUnreachable):
		http.Error(w, "Database server is unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, sandbox.ErrExecution):
		http.Error(w, "Query execution failed", http.StatusBadRequest)
	case errors.Is(err, models.ErrBadDatabaseName), errors.As(err, &validationErrs):
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
	default:
		logger.Error.Printf("Internal error: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
