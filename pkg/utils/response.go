// Package utils provides common utility functions for HTTP response
// handling, request ID management, retry logic, and client IP extraction.
// Error responses use a single "detail" field so every client can surface
// failures uniformly.
package utils

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// requestIDKey is the context key for request ID
const requestIDKey contextKey = "request_id"

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if the context is nil or no request ID is present.
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithRequestID adds a request ID to the context for distributed tracing.
// Typically called by the logging middleware for each request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// ErrorResponse is the standard error body. Clients key off Detail; the
// request ID is included for log correlation.
type ErrorResponse struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

// RespondWithError sends a JSON error body {"detail": ...} with the given
// status code. The request ID is extracted from the request context.
//
// Example:
//
//	if user == nil {
//	    utils.RespondWithError(w, r, http.StatusNotFound, "User not found")
//	    return
//	}
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, detail string) {
	requestID := GetRequestID(r.Context())
	response := ErrorResponse{
		Detail:    detail,
		RequestID: requestID,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().
			Err(err).
			Str("request_id", requestID).
			Msg("Failed to encode error response")
	}
}

// RespondWithJSON sends a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	requestID := GetRequestID(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().
			Err(err).
			Str("request_id", requestID).
			Msg("Failed to encode JSON response")
	}
}

// RespondWithMessage sends a `{"message": ...}` body with the given status.
// Useful for endpoints that only need to confirm an action.
//
// Example:
//
//	utils.RespondWithMessage(w, r, http.StatusOK, "Successfully disconnected facebook account")
func RespondWithMessage(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	RespondWithJSON(w, r, statusCode, map[string]string{"message": message})
}
