package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/pointlog/internal/progress"
)

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// errorStatus maps a domain error to a status code and a message safe to
// show the client.
func errorStatus(err error) (int, string) {
	var verr *progress.ValidationError
	var uerr *progress.UnknownTaskError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.As(err, &uerr):
		return http.StatusBadRequest, uerr.Error()
	default:
		return http.StatusInternalServerError, "storage failure"
	}
}

// writeDomainError logs unexpected failures. Storage errors were already
// logged by the engine.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, msg := errorStatus(err)
	var serr *progress.StorageError
	if status == http.StatusInternalServerError && !errors.As(err, &serr) {
		logger.Error("request failed", "error", err)
	}
	writeError(w, status, msg)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}
