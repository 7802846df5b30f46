package api

import (
	"context"
	"fmt"

	"github.com/jonathan/teammatch/internal/types"
)

// ProfilesClient talks to /user-profiles.
type ProfilesClient struct{ base }

// List returns every profile.
func (c *ProfilesClient) List(ctx context.Context) ([]types.UserProfile, error) {
	var profiles []types.UserProfile
	if err := c.get(ctx, "list", "/user-profiles", &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Get returns one profile.
func (c *ProfilesClient) Get(ctx context.Context, id int64) (*types.UserProfile, error) {
	var p types.UserProfile
	if err := c.get(ctx, "get", fmt.Sprintf("/user-profiles/%d", id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByUsername returns the profile owned by username, or ErrNotFound.
func (c *ProfilesClient) FindByUsername(ctx context.Context, username string) (*types.UserProfile, error) {
	profiles, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].Username == username {
			return &profiles[i], nil
		}
	}
	return nil, ErrNotFound
}

// Create publishes the signed-in user's profile.
func (c *ProfilesClient) Create(ctx context.Context, req types.ProfileRequest) (*types.UserProfile, error) {
	var p types.UserProfile
	if err := c.post(ctx, "create", "/user-profiles", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update replaces a profile.
func (c *ProfilesClient) Update(ctx context.Context, id int64, req types.ProfileRequest) (*types.UserProfile, error) {
	var p types.UserProfile
	if err := c.put(ctx, "update", fmt.Sprintf("/user-profiles/%d", id), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a profile.
func (c *ProfilesClient) Delete(ctx context.Context, id int64) error {
	return c.delete(ctx, "delete", fmt.Sprintf("/user-profiles/%d", id), nil)
}
