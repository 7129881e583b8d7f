// Package web holds the JSON response helpers used by the in-process MealMax
// service.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mealmax/mealmax-smoke/internal/api/types"
)

func JSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("json encode", "err", err)
	}
}

// Success writes {"status":"success"} merged with fields.
func Success(w http.ResponseWriter, code int, fields map[string]any) {
	payload := map[string]any{"status": types.StatusSuccess}
	for k, v := range fields {
		payload[k] = v
	}
	JSON(w, code, payload)
}

// Error writes the MealMax error envelope {"status":"error","error":msg}.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]any{
		"status": types.StatusError,
		"error":  err.Error(),
	})
}

// StatusWriter wraps ResponseWriter to capture the status code.
type StatusWriter struct {
	http.ResponseWriter
	Code int
}

func (w *StatusWriter) WriteHeader(code int) {
	w.Code = code
	w.ResponseWriter.WriteHeader(code)
}
