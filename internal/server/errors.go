// Package server is the development backend: an in-memory implementation of
// the team-matching REST API for local use and end-to-end tests.
package server

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUsernameTaken indicates the username is already registered
type ErrUsernameTaken struct {
	Username string
}

func (e *ErrUsernameTaken) Error() string {
	return fmt.Sprintf("username already taken: %s", e.Username)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid username or password"
}

// ErrNotFound indicates a missing resource
type ErrNotFound struct {
	Resource string
	ID       any
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Resource, e.ID)
}

// ErrForbidden indicates the caller may not perform the action
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("not allowed to %s", e.Action)
}

// ErrConflict indicates the request clashes with current state
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		taken     *ErrUsernameTaken
		creds     *ErrInvalidCredentials
		notFound  *ErrNotFound
		forbidden *ErrForbidden
		conflict  *ErrConflict
		invalid   *ErrValidation
	)
	switch {
	case errors.As(err, &taken), errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &creds):
		return http.StatusUnauthorized
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
