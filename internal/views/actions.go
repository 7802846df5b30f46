package views

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/teammatch/internal/api"
	"github.com/jonathan/teammatch/internal/forms"
	"github.com/jonathan/teammatch/internal/router"
	"github.com/jonathan/teammatch/internal/types"
	"go.uber.org/zap"
)

// ErrNotReady is returned when a team tries to start before every position
// is filled.
var ErrNotReady = errors.New("team is not ready to start")

// Login signs in and moves to the project list.
func (v *Views) Login(ctx context.Context, creds types.Credentials) (*types.User, error) {
	var user *types.User
	err := v.mutate(ctx, "", func(ctx context.Context) error {
		var err error
		user, err = v.session.Login(ctx, creds)
		return err
	})
	if err != nil {
		return nil, err
	}
	v.toasts.ShowSuccess(fmt.Sprintf("Welcome, %s!", user.DisplayName()))
	v.navigate(ctx, router.ProjectList, nil)
	return user, nil
}

// Logout signs out. It never fails from the user's point of view.
func (v *Views) Logout(ctx context.Context) error {
	if err := v.session.Logout(ctx); err != nil {
		v.logger.Error("logout failed", zap.Error(err))
		return err
	}
	v.toasts.ShowInfo("Logged out.")
	v.navigate(ctx, router.Landing, nil)
	return nil
}

// Signup registers an account and sends the user to the login page.
func (v *Views) Signup(ctx context.Context, req types.SignupRequest) (*types.User, error) {
	var user *types.User
	err := v.mutate(ctx, "Account created. Please log in.", func(ctx context.Context) error {
		var err error
		user, err = v.session.Register(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	v.navigate(ctx, router.Login, nil)
	return user, nil
}

// CreatePosting validates the form and publishes it. Invalid forms never
// reach the server.
func (v *Views) CreatePosting(ctx context.Context, form forms.PostingForm) (*types.ProjectPosting, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	var post *types.ProjectPosting
	err := v.mutate(ctx, "Project published.", func(ctx context.Context) error {
		req, err := form.Validate(v.now())
		if err != nil {
			return err
		}
		post, err = v.api.Postings.Create(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	v.navigate(ctx, router.ProjectDetail, router.Params{"id": fmt.Sprint(post.ID)})
	return post, nil
}

// UpdatePosting validates the form and replaces the posting.
func (v *Views) UpdatePosting(ctx context.Context, id int64, form forms.PostingForm) (*types.ProjectPosting, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	var post *types.ProjectPosting
	err := v.mutate(ctx, "Project updated.", func(ctx context.Context) error {
		req, err := form.Validate(v.now())
		if err != nil {
			return err
		}
		post, err = v.api.Postings.Update(ctx, id, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	v.navigate(ctx, router.ProjectDetail, router.Params{"id": fmt.Sprint(id)})
	return post, nil
}

// DeletePosting removes a posting.
func (v *Views) DeletePosting(ctx context.Context, id int64) error {
	if _, err := v.requireUser(ctx); err != nil {
		return err
	}
	err := v.mutate(ctx, "Project deleted.", func(ctx context.Context) error {
		return v.api.Postings.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	v.navigate(ctx, router.ProjectList, nil)
	return nil
}

// CreateProfile publishes the user's profile. A user has at most one.
func (v *Views) CreateProfile(ctx context.Context, form forms.ProfileForm) (*types.UserProfile, error) {
	username, err := v.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var prof *types.UserProfile
	err = v.mutate(ctx, "Profile published.", func(ctx context.Context) error {
		req, err := form.Validate()
		if err != nil {
			return err
		}
		existing, err := v.api.Profiles.FindByUsername(ctx, username)
		if err != nil && !errors.Is(err, api.ErrNotFound) {
			return err
		}
		if err := forms.CheckProfileUnique(existing); err != nil {
			return err
		}
		prof, err = v.api.Profiles.Create(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	v.navigate(ctx, router.ProfileDetail, router.Params{"id": fmt.Sprint(prof.ID)})
	return prof, nil
}

// UpdateProfile replaces a profile.
func (v *Views) UpdateProfile(ctx context.Context, id int64, form forms.ProfileForm) (*types.UserProfile, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	var prof *types.UserProfile
	err := v.mutate(ctx, "Profile updated.", func(ctx context.Context) error {
		req, err := form.Validate()
		if err != nil {
			return err
		}
		prof, err = v.api.Profiles.Update(ctx, id, req)
		return err
	})
	return prof, err
}

// DeleteProfile removes a profile.
func (v *Views) DeleteProfile(ctx context.Context, id int64) error {
	if _, err := v.requireUser(ctx); err != nil {
		return err
	}
	return v.mutate(ctx, "Profile deleted.", func(ctx context.Context) error {
		return v.api.Profiles.Delete(ctx, id)
	})
}

// Apply submits an application after checking the position exists and the
// user has no live application for it.
func (v *Views) Apply(ctx context.Context, form forms.ApplicationForm) (*types.Application, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	var app *types.Application
	err := v.mutate(ctx, "Application sent.", func(ctx context.Context) error {
		req, err := form.Validate()
		if err != nil {
			return err
		}
		post, err := v.api.Postings.Get(ctx, req.ProjectID)
		if err != nil {
			return err
		}
		if err := forms.CheckPosition(post, req.AppliedPosition); err != nil {
			return err
		}
		mine, err := v.api.Applications.ListMine(ctx)
		if err != nil {
			return err
		}
		if err := forms.CheckDuplicateApplication(mine, req.ProjectID, req.AppliedPosition); err != nil {
			return err
		}
		app, err = v.api.Applications.Create(ctx, req)
		return err
	})
	return app, err
}

// Approve accepts an applicant.
func (v *Views) Approve(ctx context.Context, id int64) (*types.Application, error) {
	return v.decide(ctx, "Applicant approved.", id, v.api.Applications.Approve)
}

// Reject declines an applicant.
func (v *Views) Reject(ctx context.Context, id int64) (*types.Application, error) {
	return v.decide(ctx, "Applicant rejected.", id, v.api.Applications.Reject)
}

// Withdraw takes the user's application back.
func (v *Views) Withdraw(ctx context.Context, id int64) (*types.Application, error) {
	return v.decide(ctx, "Application withdrawn.", id, v.api.Applications.Withdraw)
}

func (v *Views) decide(ctx context.Context, success string, id int64, fn func(context.Context, int64) (*types.Application, error)) (*types.Application, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	var app *types.Application
	err := v.mutate(ctx, success, func(ctx context.Context) error {
		var err error
		app, err = fn(ctx, id)
		return err
	})
	return app, err
}

// StartProject starts the team's project once the server says it is ready.
func (v *Views) StartProject(ctx context.Context, teamID int64) (*types.Project, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	var proj *types.Project
	err := v.mutate(ctx, "Project started!", func(ctx context.Context) error {
		team, err := v.api.Teams.Get(ctx, teamID)
		if err != nil {
			return err
		}
		if team.ProjectStarted {
			return fmt.Errorf("team %s has already started its project", team.Name)
		}
		ready, err := v.api.Teams.StartReady(ctx, teamID, team.ProjectID)
		if err != nil {
			return err
		}
		if !ready.Ready {
			return fmt.Errorf("%w: %d of %d positions filled", ErrNotReady, ready.Filled, ready.Required)
		}
		proj, err = v.api.Teams.StartProject(ctx, teamID)
		return err
	})
	if err != nil {
		return nil, err
	}
	v.navigate(ctx, router.Dashboard, router.Params{"projectId": fmt.Sprint(proj.ID)})
	return proj, nil
}

// RemoveMember removes a member from a team.
func (v *Views) RemoveMember(ctx context.Context, teamID, memberID int64) error {
	if _, err := v.requireUser(ctx); err != nil {
		return err
	}
	return v.mutate(ctx, "Member removed.", func(ctx context.Context) error {
		return v.api.Teams.RemoveMember(ctx, teamID, memberID)
	})
}

// Invite sends a team invitation.
func (v *Views) Invite(ctx context.Context, teamID int64, req types.InviteRequest) (*types.TeamInvitation, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	var inv *types.TeamInvitation
	err := v.mutate(ctx, fmt.Sprintf("Invitation sent to %s.", req.InviteeUsername), func(ctx context.Context) error {
		var err error
		inv, err = v.api.Invitations.Send(ctx, teamID, req)
		return err
	})
	return inv, err
}

// RespondInvitation accepts or declines an invitation.
func (v *Views) RespondInvitation(ctx context.Context, id int64, accept bool) (*types.TeamInvitation, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	success := "Invitation declined."
	if accept {
		success = "Welcome to the team!"
	}
	var inv *types.TeamInvitation
	err := v.mutate(ctx, success, func(ctx context.Context) error {
		var err error
		inv, err = v.api.Invitations.Respond(ctx, id, accept)
		return err
	})
	return inv, err
}

// RequestLeave asks to leave a team.
func (v *Views) RequestLeave(ctx context.Context, teamID int64, reason string) (*types.LeaveRequest, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	var lr *types.LeaveRequest
	err := v.mutate(ctx, "Leave request sent.", func(ctx context.Context) error {
		body := types.LeaveRequestBody{Reason: reason}
		if err := validate.Struct(body); err != nil {
			return err
		}
		var err error
		lr, err = v.api.LeaveRequests.Create(ctx, teamID, reason)
		return err
	})
	return lr, err
}

// RespondLeave approves or rejects a leave request.
func (v *Views) RespondLeave(ctx context.Context, id int64, approve bool) (*types.LeaveRequest, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	success := "Leave request rejected."
	if approve {
		success = "Leave request approved."
	}
	var lr *types.LeaveRequest
	err := v.mutate(ctx, success, func(ctx context.Context) error {
		var err error
		lr, err = v.api.LeaveRequests.Respond(ctx, id, approve)
		return err
	})
	return lr, err
}

// GenerateTasks asks the server to draft the project's tasks.
func (v *Views) GenerateTasks(ctx context.Context, projectID int64) ([]types.Assignment, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	var as []types.Assignment
	err := v.mutate(ctx, "Tasks generated.", func(ctx context.Context) error {
		return v.withProgress(ctx, "AI is drafting tasks", func(ctx context.Context) error {
			var err error
			as, err = v.api.Assignments.Generate(ctx, projectID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	v.printer.Assignments(as)
	return as, nil
}

// UpdateTask reports progress on a task.
func (v *Views) UpdateTask(ctx context.Context, id int64, status types.AssignmentStatus, progress int) (*types.Assignment, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	var a *types.Assignment
	err := v.mutate(ctx, "Task updated.", func(ctx context.Context) error {
		if err := validate.Struct(types.AssignmentUpdate{Status: status, Progress: progress}); err != nil {
			return err
		}
		var err error
		a, err = v.api.Assignments.UpdateProgress(ctx, id, status, progress)
		return err
	})
	return a, err
}

// GenerateReport asks the server to write this week's report.
func (v *Views) GenerateReport(ctx context.Context, projectID int64) (*types.WeeklyReport, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	var r *types.WeeklyReport
	err := v.mutate(ctx, "Weekly report generated.", func(ctx context.Context) error {
		return v.withProgress(ctx, "AI is writing the report", func(ctx context.Context) error {
			var err error
			r, err = v.api.Reports.Generate(ctx, projectID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	v.printer.Reports([]types.WeeklyReport{*r})
	return r, nil
}

func (v *Views) navigate(ctx context.Context, name string, params router.Params) {
	if v.nav == nil {
		return
	}
	path, err := v.routes.Path(name, params)
	if err != nil {
		v.logger.Warn("failed to build path", zap.String("route", name), zap.Error(err))
		return
	}
	v.nav.Navigate(ctx, path)
}
