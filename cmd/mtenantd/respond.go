package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/mtenant/pkg/logger"
	"github.com/dmitrymomot/mtenant/pkg/tenancy"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeFailure maps err through tenancy.HTTPStatus. Server-side failures are
// logged and reported without detail.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := tenancy.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", logger.Error(err))
		writeError(w, status, http.StatusText(status))
		return
	}
	writeError(w, status, err.Error())
}
