package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// errorResponse is the error envelope for all non-2xx responses.
type errorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Details   any       `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// actionResponse wraps side-effecting operations (send, broadcast).
type actionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the error envelope. On 5xx the details are withheld
// unless debug mode is on, so production responses stay sanitized.
func (s *Server) writeError(w http.ResponseWriter, status int, errType, message string, details any) {
	if status >= http.StatusInternalServerError && !s.cfg.Server.Debug {
		details = nil
	}
	writeJSON(w, status, errorResponse{
		Error:     errType,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}
