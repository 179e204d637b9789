// Package respond writes the storefront's JSON envelope. Both the handlers
// and the middlewares answer through it so every response has one shape.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jcmexdev/tradehub/internal/pkg/apperr"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Data    any            `json:"data,omitempty"`
	Total   *int           `json:"total,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a success envelope with optional data.
func OK(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{Status: StatusSuccess, Message: message, Data: data})
}

// List writes a success envelope carrying a collection and its size.
func List(w http.ResponseWriter, data any, total int) {
	JSON(w, http.StatusOK, Envelope{Status: StatusSuccess, Data: data, Total: &total})
}

// Error maps err to its status and writes the error envelope. Internal
// failures are logged and reported without their cause.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.From(err)
	status := ae.StatusCode()
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", ae.Code,
			"error", err,
		)
	}
	JSON(w, status, Envelope{
		Status:  StatusError,
		Message: ae.Message,
		Code:    ae.Code,
		Details: ae.Details,
	})
}
