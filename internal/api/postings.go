package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jonathan/teammatch/internal/httpclient"
	"github.com/jonathan/teammatch/internal/types"
)

// PostingsClient talks to /project-posts.
type PostingsClient struct{ base }

// List returns postings matching filter.
func (c *PostingsClient) List(ctx context.Context, filter types.PostingFilter) ([]types.ProjectPosting, error) {
	q := url.Values{}
	if filter.Tag != "" {
		q.Set("tag", filter.Tag)
	}
	if filter.Search != "" {
		q.Set("q", filter.Search)
	}
	var postings []types.ProjectPosting
	if err := c.get(ctx, "list", "/project-posts", &postings, httpclient.WithQuery(q)); err != nil {
		return nil, err
	}
	return postings, nil
}

// Get returns one posting.
func (c *PostingsClient) Get(ctx context.Context, id int64) (*types.ProjectPosting, error) {
	var p types.ProjectPosting
	if err := c.get(ctx, "get", fmt.Sprintf("/project-posts/%d", id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create publishes a posting owned by the signed-in user.
func (c *PostingsClient) Create(ctx context.Context, req types.PostingRequest) (*types.ProjectPosting, error) {
	var p types.ProjectPosting
	if err := c.post(ctx, "create", "/project-posts", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update replaces a posting.
func (c *PostingsClient) Update(ctx context.Context, id int64, req types.PostingRequest) (*types.ProjectPosting, error) {
	var p types.ProjectPosting
	if err := c.put(ctx, "update", fmt.Sprintf("/project-posts/%d", id), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a posting.
func (c *PostingsClient) Delete(ctx context.Context, id int64) error {
	return c.delete(ctx, "delete", fmt.Sprintf("/project-posts/%d", id), nil)
}
