package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jonathan/teammatch/internal/httpclient"
	"github.com/jonathan/teammatch/internal/types"
)

// ProjectsClient talks to /projects (started projects).
type ProjectsClient struct{ base }

// Get returns one started project.
func (c *ProjectsClient) Get(ctx context.Context, id int64) (*types.Project, error) {
	var p types.Project
	if err := c.get(ctx, "get", fmt.Sprintf("/projects/%d", id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListMine returns the started projects the caller belongs to.
func (c *ProjectsClient) ListMine(ctx context.Context) ([]types.Project, error) {
	var ps []types.Project
	if err := c.get(ctx, "list-mine", "/projects/my", &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// AssignmentsClient talks to /team-assignments.
type AssignmentsClient struct{ base }

// ListByProject returns a project's tasks.
func (c *AssignmentsClient) ListByProject(ctx context.Context, projectID int64) ([]types.Assignment, error) {
	var as []types.Assignment
	if err := c.get(ctx, "list-by-project", fmt.Sprintf("/team-assignments/project/%d", projectID), &as); err != nil {
		return nil, err
	}
	return as, nil
}

// Generate asks the server to create the project's tasks in bulk.
func (c *AssignmentsClient) Generate(ctx context.Context, projectID int64) ([]types.Assignment, error) {
	var as []types.Assignment
	if err := c.post(ctx, "generate", fmt.Sprintf("/team-assignments/ai/generate/%d", projectID), nil, &as); err != nil {
		return nil, err
	}
	return as, nil
}

// UpdateProgress reports progress on a task.
func (c *AssignmentsClient) UpdateProgress(ctx context.Context, id int64, status types.AssignmentStatus, progress int) (*types.Assignment, error) {
	var a types.Assignment
	req := types.AssignmentUpdate{Status: status, Progress: progress}
	if err := c.patch(ctx, "update-progress", fmt.Sprintf("/team-assignments/%d", id), req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ReportsClient talks to /weekly-reports.
type ReportsClient struct{ base }

// ListByProject returns a project's weekly reports.
func (c *ReportsClient) ListByProject(ctx context.Context, projectID int64) ([]types.WeeklyReport, error) {
	var rs []types.WeeklyReport
	if err := c.get(ctx, "list-by-project", fmt.Sprintf("/weekly-reports/project/%d", projectID), &rs); err != nil {
		return nil, err
	}
	return rs, nil
}

// Get returns one weekly report.
func (c *ReportsClient) Get(ctx context.Context, id int64) (*types.WeeklyReport, error) {
	var r types.WeeklyReport
	if err := c.get(ctx, "get", fmt.Sprintf("/weekly-reports/%d", id), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Generate asks the server to write this week's report.
func (c *ReportsClient) Generate(ctx context.Context, projectID int64) (*types.WeeklyReport, error) {
	var r types.WeeklyReport
	if err := c.post(ctx, "generate", fmt.Sprintf("/weekly-reports/ai/generate/%d", projectID), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// MatchClient reads the server's match explanations.
type MatchClient struct{ base }

// UserReason explains why a user was recommended.
func (c *MatchClient) UserReason(ctx context.Context, userID int64) (*types.MatchReason, error) {
	var r types.MatchReason
	q := url.Values{"userId": {strconv.FormatInt(userID, 10)}}
	if err := c.get(ctx, "user-reason", "/match/reason", &r, httpclient.WithQuery(q)); err != nil {
		return nil, err
	}
	return &r, nil
}

// ProjectReason explains why a project suits a user.
func (c *MatchClient) ProjectReason(ctx context.Context, userID, projectID int64) (*types.MatchReason, error) {
	var r types.MatchReason
	path := fmt.Sprintf("/project-match/reason/%d/%d", userID, projectID)
	if err := c.get(ctx, "project-reason", path, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
