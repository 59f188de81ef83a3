// Package httpx provides JSON response utilities for the API surface.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the standard success body: payload under "data" plus an
// optional human-readable message.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorBody is the standard failure body.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Data sends a success envelope.
func Data(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Data: data})
}

// Message sends a success envelope carrying only a message.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Message: message})
}

// Error sends a failure body with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// DecodeJSON decodes the request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
