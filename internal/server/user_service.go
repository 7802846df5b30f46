package server

import (
	"context"
	"fmt"

	"github.com/jonathan/teammatch/internal/config"
	"github.com/jonathan/teammatch/internal/types"
)

// UserService provides business logic for account operations
type UserService struct {
	store          *Store
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(store *Store, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		store:          store,
		passwordConfig: passwordConfig,
	}
}

// Register creates a new account with a hashed password
func (s *UserService) Register(_ context.Context, req *types.SignupRequest) (*types.User, error) {
	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return s.store.CreateUser(*req, passwordHash)
}

// Login authenticates an account
func (s *UserService) Login(_ context.Context, req *types.Credentials) (*types.User, error) {
	rec := s.store.UserRecord(req.Username)

	// Same error for unknown users and wrong passwords.
	if rec == nil {
		return nil, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(req.Password, rec.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}
	user := rec.User
	return &user, nil
}
