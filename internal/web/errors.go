package web

// errors.go provides unified error response handling for the web layer.
// All errors are logged with full technical detail server-side, correlated
// by request ID, and returned to clients as a compact JSON body.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/caretower/component-tracker/internal/core"
	"github.com/caretower/component-tracker/internal/logging"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError maps an error to a status code, logs it, and writes the
// JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	if errors.Is(err, core.ErrNotFound) {
		status = http.StatusNotFound
		msg = "component not found"
	}

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
	)

	writeErrorStatus(w, status, msg)
}

// writeError logs and writes a JSON error with the request ID for correlation.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logging.FromContext(r.Context()).Warn("request rejected",
		"path", r.URL.Path,
		"status", status,
		"error", message,
		"request_id", chimw.GetReqID(r.Context()),
	)
	writeErrorStatus(w, status, message)
}

func writeErrorStatus(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; nothing left to do but record it.
		slog.Error("json encode error", "error", err)
	}
}
