package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// envelope is the response shape shared by every endpoint, success and error
// alike.
type envelope struct {
	Status    string      `json:"status"`
	Message   string      `json:"message,omitempty"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, env envelope) {
	env.Timestamp = time.Now().UTC().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeSuccess(w http.ResponseWriter, code int, message string, data interface{}) {
	writeJSON(w, code, envelope{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, envelope{
		Status:  "error",
		Message: message,
	})
}

// writeErrorData is writeError with a structured payload, used where an error
// response still carries context the caller needs, such as which filters
// matched nothing.
func writeErrorData(w http.ResponseWriter, code int, message string, data interface{}) {
	writeJSON(w, code, envelope{
		Status:  "error",
		Message: message,
		Data:    data,
	})
}
