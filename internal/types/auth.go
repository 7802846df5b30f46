// Package types provides the domain entities and request payloads exchanged with the team-matching backend.
package types

import (
	"github.com/go-playground/validator/v10"
)

// Role distinguishes administrators from regular accounts.
type Role string

// Account roles.
const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// User is an authenticated account.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Nickname string `json:"nickname,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// DisplayName returns the nickname when set, otherwise the username.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}

// Credentials is the login request.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest represents the request to create a new account.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Nickname string `json:"nickname,omitempty" validate:"omitempty,max=30"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	UserID   int64  `json:"userId,omitempty"`
}

// UpdateUserRequest changes the mutable parts of an account.
type UpdateUserRequest struct {
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Nickname string `json:"nickname,omitempty" validate:"omitempty,max=30"`
}

// Validate validates the Credentials using the validator.
func (c *Credentials) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// Validate validates the SignupRequest using the validator.
func (r *SignupRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the UpdateUserRequest using the validator.
func (r *UpdateUserRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
