package api

import (
	"context"
	"fmt"

	"github.com/jonathan/teammatch/internal/types"
)

// AuthClient talks to /auth.
type AuthClient struct{ base }

// Login exchanges credentials for a token.
func (c *AuthClient) Login(ctx context.Context, creds types.Credentials) (*types.LoginResponse, error) {
	var resp types.LoginResponse
	if err := c.post(ctx, "login", "/auth/login", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signup creates an account. It does not sign in.
func (c *AuthClient) Signup(ctx context.Context, req types.SignupRequest) (*types.User, error) {
	var user types.User
	if err := c.post(ctx, "signup", "/auth/signup", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me returns the account behind the current token.
func (c *AuthClient) Me(ctx context.Context) (*types.User, error) {
	var user types.User
	if err := c.get(ctx, "me", "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout invalidates the token on the server.
func (c *AuthClient) Logout(ctx context.Context) error {
	return c.post(ctx, "logout", "/auth/logout", nil, nil)
}

// ListUsers returns every account.
func (c *AuthClient) ListUsers(ctx context.Context) ([]types.User, error) {
	var users []types.User
	if err := c.get(ctx, "list-users", "/auth/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UsersClient talks to /users.
type UsersClient struct{ base }

// Get returns one account.
func (c *UsersClient) Get(ctx context.Context, id int64) (*types.User, error) {
	var user types.User
	if err := c.get(ctx, "get", fmt.Sprintf("/users/%d", id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update edits an account.
func (c *UsersClient) Update(ctx context.Context, id int64, req types.UpdateUserRequest) (*types.User, error) {
	var user types.User
	if err := c.put(ctx, "update", fmt.Sprintf("/users/%d", id), req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
