package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized is returned after a 401 response has cleared the session and
// redirected to the login page. Callers need not handle it further.
var ErrUnauthorized = errors.New("unauthorized: session cleared")

// StatusError is a non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// TransportError is a request that produced no response: a network failure,
// a timeout or a cancelled context.
type TransportError struct {
	Method string
	Path   string
	Cause  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: request failed: %v", e.Method, e.Path, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	return 0
}

// IsStatus reports whether err is a response with the given status.
func IsStatus(err error, status int) bool {
	return StatusCode(err) == status
}
