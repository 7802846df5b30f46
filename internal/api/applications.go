package api

import (
	"context"
	"fmt"

	"github.com/jonathan/teammatch/internal/types"
)

// ApplicationsClient talks to /applications.
type ApplicationsClient struct{ base }

// List returns every application visible to the caller.
func (c *ApplicationsClient) List(ctx context.Context) ([]types.Application, error) {
	var apps []types.Application
	if err := c.get(ctx, "list", "/applications", &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// Get returns one application.
func (c *ApplicationsClient) Get(ctx context.Context, id int64) (*types.Application, error) {
	var app types.Application
	if err := c.get(ctx, "get", fmt.Sprintf("/applications/%d", id), &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// ListByProject returns the applications to one posting.
func (c *ApplicationsClient) ListByProject(ctx context.Context, projectID int64) ([]types.Application, error) {
	var apps []types.Application
	if err := c.get(ctx, "list-by-project", fmt.Sprintf("/applications/project/%d", projectID), &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// ListMine returns the signed-in user's applications.
func (c *ApplicationsClient) ListMine(ctx context.Context) ([]types.Application, error) {
	var apps []types.Application
	if err := c.get(ctx, "list-mine", "/applications/user", &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// Create applies to a project position.
func (c *ApplicationsClient) Create(ctx context.Context, req types.ApplicationRequest) (*types.Application, error) {
	var app types.Application
	if err := c.post(ctx, "create", "/applications", req, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// Update changes an application's status.
func (c *ApplicationsClient) Update(ctx context.Context, id int64, req types.ApplicationUpdate) (*types.Application, error) {
	var app types.Application
	if err := c.put(ctx, "update", fmt.Sprintf("/applications/%d", id), req, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// Delete removes an application.
func (c *ApplicationsClient) Delete(ctx context.Context, id int64) error {
	return c.delete(ctx, "delete", fmt.Sprintf("/applications/%d", id), nil)
}

// Approve is the owner accepting an applicant.
func (c *ApplicationsClient) Approve(ctx context.Context, id int64) (*types.Application, error) {
	return c.Update(ctx, id, types.ApplicationUpdate{Status: types.ApplicationApproved})
}

// Reject is the owner declining an applicant.
func (c *ApplicationsClient) Reject(ctx context.Context, id int64) (*types.Application, error) {
	return c.Update(ctx, id, types.ApplicationUpdate{Status: types.ApplicationRejected})
}

// Withdraw is the applicant taking the application back.
func (c *ApplicationsClient) Withdraw(ctx context.Context, id int64) (*types.Application, error) {
	return c.Update(ctx, id, types.ApplicationUpdate{Status: types.ApplicationWithdrawn})
}
