package client

import (
	"errors"
	"fmt"
)

// ErrCredentialsRequired is returned by Connect for platforms that have no
// OAuth support in this deployment and must go through the credential form.
var ErrCredentialsRequired = errors.New("platform requires credential-based connection")

// APIError is a non-2xx response from the backend. Detail carries the
// server's structured error message when one was parseable, otherwise a
// generic "HTTP error, status <code>" text.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return e.Detail
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return IsStatus(err, 404)
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	return IsStatus(err, 401)
}

func statusError(code int) *APIError {
	return &APIError{
		StatusCode: code,
		Detail:     fmt.Sprintf("HTTP error, status %d", code),
	}
}
