package api

import (
	"context"
	"fmt"

	"github.com/jonathan/teammatch/internal/types"
)

// TeamsClient talks to /teams.
type TeamsClient struct{ base }

// List returns the caller's teams.
func (c *TeamsClient) List(ctx context.Context) ([]types.Team, error) {
	var teams []types.Team
	if err := c.get(ctx, "list", "/teams", &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// Get returns one team.
func (c *TeamsClient) Get(ctx context.Context, id int64) (*types.Team, error) {
	var team types.Team
	if err := c.get(ctx, "get", fmt.Sprintf("/teams/%d", id), &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// Create forms a team led by the caller.
func (c *TeamsClient) Create(ctx context.Context, req types.TeamRequest) (*types.Team, error) {
	var team types.Team
	if err := c.post(ctx, "create", "/teams", req, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// Update renames or resizes a team.
func (c *TeamsClient) Update(ctx context.Context, id int64, req types.TeamRequest) (*types.Team, error) {
	var team types.Team
	if err := c.put(ctx, "update", fmt.Sprintf("/teams/%d", id), req, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// Delete disbands a team.
func (c *TeamsClient) Delete(ctx context.Context, id int64) error {
	return c.delete(ctx, "delete", fmt.Sprintf("/teams/%d", id), nil)
}

// StartReady asks the server whether every recruited position is filled.
func (c *TeamsClient) StartReady(ctx context.Context, teamID, projectID int64) (*types.StartReadiness, error) {
	var r types.StartReadiness
	if err := c.get(ctx, "start-ready", fmt.Sprintf("/teams/%d/start-ready/%d", teamID, projectID), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// StartProject moves the team into a started project.
func (c *TeamsClient) StartProject(ctx context.Context, teamID int64) (*types.Project, error) {
	var p types.Project
	if err := c.post(ctx, "start-project", fmt.Sprintf("/teams/%d/start-project", teamID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// RemoveMember removes a member from a team.
func (c *TeamsClient) RemoveMember(ctx context.Context, teamID, memberID int64) error {
	return c.delete(ctx, "remove-member", fmt.Sprintf("/teams/%d/members/%d", teamID, memberID), nil)
}

// InvitationsClient talks to the team invitation endpoints.
type InvitationsClient struct{ base }

// Send invites a user to a team.
func (c *InvitationsClient) Send(ctx context.Context, teamID int64, req types.InviteRequest) (*types.TeamInvitation, error) {
	var inv types.TeamInvitation
	if err := c.post(ctx, "send", fmt.Sprintf("/teams/%d/invitations", teamID), req, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListForTeam returns the invitations a team has sent.
func (c *InvitationsClient) ListForTeam(ctx context.Context, teamID int64) ([]types.TeamInvitation, error) {
	var invs []types.TeamInvitation
	if err := c.get(ctx, "list-for-team", fmt.Sprintf("/teams/%d/invitations", teamID), &invs); err != nil {
		return nil, err
	}
	return invs, nil
}

// ListMine returns invitations addressed to the caller.
func (c *InvitationsClient) ListMine(ctx context.Context) ([]types.TeamInvitation, error) {
	var invs []types.TeamInvitation
	if err := c.get(ctx, "list-mine", "/teams/invitations/my", &invs); err != nil {
		return nil, err
	}
	return invs, nil
}

// Respond accepts or declines an invitation.
func (c *InvitationsClient) Respond(ctx context.Context, invitationID int64, accept bool) (*types.TeamInvitation, error) {
	var inv types.TeamInvitation
	path := fmt.Sprintf("/teams/invitations/%d/respond", invitationID)
	if err := c.post(ctx, "respond", path, types.RespondRequest{Accept: accept}, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// LeaveRequestsClient talks to the team leave-request endpoints.
type LeaveRequestsClient struct{ base }

// Create asks to leave a team.
func (c *LeaveRequestsClient) Create(ctx context.Context, teamID int64, reason string) (*types.LeaveRequest, error) {
	var lr types.LeaveRequest
	path := fmt.Sprintf("/teams/%d/leave-requests", teamID)
	if err := c.post(ctx, "create", path, types.LeaveRequestBody{Reason: reason}, &lr); err != nil {
		return nil, err
	}
	return &lr, nil
}

// ListForTeam returns a team's leave requests.
func (c *LeaveRequestsClient) ListForTeam(ctx context.Context, teamID int64) ([]types.LeaveRequest, error) {
	var lrs []types.LeaveRequest
	if err := c.get(ctx, "list-for-team", fmt.Sprintf("/teams/%d/leave-requests", teamID), &lrs); err != nil {
		return nil, err
	}
	return lrs, nil
}

// Respond approves or rejects a leave request.
func (c *LeaveRequestsClient) Respond(ctx context.Context, requestID int64, approve bool) (*types.LeaveRequest, error) {
	var lr types.LeaveRequest
	path := fmt.Sprintf("/teams/leave-requests/%d/respond", requestID)
	if err := c.post(ctx, "respond", path, types.RespondRequest{Accept: approve}, &lr); err != nil {
		return nil, err
	}
	return &lr, nil
}
