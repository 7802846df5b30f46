package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
		message  string
	}{
		{
			name:     "username taken",
			err:      &ErrUsernameTaken{Username: "alice"},
			expected: http.StatusConflict,
			message:  "username already taken: alice",
		},
		{
			name:     "invalid credentials",
			err:      &ErrInvalidCredentials{},
			expected: http.StatusUnauthorized,
			message:  "invalid username or password",
		},
		{
			name:     "not found",
			err:      &ErrNotFound{Resource: "team", ID: int64(4)},
			expected: http.StatusNotFound,
			message:  "team not found: 4",
		},
		{
			name:     "forbidden",
			err:      &ErrForbidden{Action: "edit this project"},
			expected: http.StatusForbidden,
			message:  "not allowed to edit this project",
		},
		{
			name:     "conflict",
			err:      &ErrConflict{Message: "team is full"},
			expected: http.StatusConflict,
			message:  "team is full",
		},
		{
			name:     "validation",
			err:      &ErrValidation{Field: "deadline", Message: "must not be in the past"},
			expected: http.StatusBadRequest,
			message:  "validation error: deadline - must not be in the past",
		},
		{
			name:     "wrapped",
			err:      fmt.Errorf("loading: %w", &ErrNotFound{Resource: "user", ID: "bob"}),
			expected: http.StatusNotFound,
			message:  "loading: user not found: bob",
		},
		{
			name:     "unknown",
			err:      fmt.Errorf("boom"),
			expected: http.StatusInternalServerError,
			message:  "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}
