package views

import (
	"context"
	"fmt"

	"github.com/jonathan/teammatch/internal/query"
	"github.com/jonathan/teammatch/internal/types"
	"golang.org/x/sync/errgroup"
)

// ProjectList shows postings, optionally filtered.
func (v *Views) ProjectList(ctx context.Context, filter types.PostingFilter) ([]types.ProjectPosting, error) {
	postings, err := load(ctx, v, "projects", "teammatch projects list", func(ctx context.Context) ([]types.ProjectPosting, error) {
		return v.api.Postings.List(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	v.printer.Postings(postings)
	return postings, nil
}

// ProjectDetail shows one posting. The owner hint is shown when the signed-in
// user's name matches the posting's; it grants nothing.
func (v *Views) ProjectDetail(ctx context.Context, id int64) (*types.ProjectPosting, error) {
	retry := fmt.Sprintf("teammatch projects show %d", id)
	post, err := load(ctx, v, "project", retry, func(ctx context.Context) (*types.ProjectPosting, error) {
		return v.api.Postings.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	v.printer.Posting(post, v.isOwner(post.Username))
	return post, nil
}

func (v *Views) isOwner(username string) bool {
	u := v.session.CurrentUser()
	return u != nil && username != "" && u.Username == username
}

// ProfileList shows every profile.
func (v *Views) ProfileList(ctx context.Context) ([]types.UserProfile, error) {
	profiles, err := load(ctx, v, "people", "teammatch profiles list", v.api.Profiles.List)
	if err != nil {
		return nil, err
	}
	v.printer.Profiles(profiles)
	return profiles, nil
}

// ProfileDetail shows one profile.
func (v *Views) ProfileDetail(ctx context.Context, id int64) (*types.UserProfile, error) {
	retry := fmt.Sprintf("teammatch profiles show %d", id)
	prof, err := load(ctx, v, "profile", retry, func(ctx context.Context) (*types.UserProfile, error) {
		return v.api.Profiles.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	v.printer.Profile(prof)
	return prof, nil
}

// MyApplications shows the signed-in user's applications.
func (v *Views) MyApplications(ctx context.Context) ([]types.Application, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	apps, err := load(ctx, v, "my applications", "teammatch applications mine", v.api.Applications.ListMine)
	if err != nil {
		return nil, err
	}
	v.printer.Applications("my applications", apps)
	return apps, nil
}

// ProjectApplications shows the applicants to a posting.
func (v *Views) ProjectApplications(ctx context.Context, projectID int64) ([]types.Application, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	retry := fmt.Sprintf("teammatch applications project %d", projectID)
	apps, err := load(ctx, v, "applicants", retry, func(ctx context.Context) ([]types.Application, error) {
		return v.api.Applications.ListByProject(ctx, projectID)
	})
	if err != nil {
		return nil, err
	}
	v.printer.Applications("applicants", apps)
	return apps, nil
}

// Teams shows the signed-in user's teams.
func (v *Views) Teams(ctx context.Context) ([]types.Team, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	teams, err := load(ctx, v, "teams", "teammatch teams list", v.api.Teams.List)
	if err != nil {
		return nil, err
	}
	v.printer.Teams(teams)
	return teams, nil
}

// TeamPage is what the team page shows.
type TeamPage struct {
	Team      *types.Team
	Readiness *types.StartReadiness
}

// Team shows a team's members and, for an unstarted team with a posting,
// whether it can start.
func (v *Views) Team(ctx context.Context, teamID int64) (*TeamPage, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	retry := fmt.Sprintf("teammatch teams show %d", teamID)
	page, err := load(ctx, v, "team", retry, func(ctx context.Context) (*TeamPage, error) {
		team, err := v.api.Teams.Get(ctx, teamID)
		if err != nil {
			return nil, err
		}
		page := &TeamPage{Team: team}
		if !team.ProjectStarted && team.ProjectID != 0 {
			if page.Readiness, err = v.api.Teams.StartReady(ctx, teamID, team.ProjectID); err != nil {
				return nil, err
			}
		}
		return page, nil
	})
	if err != nil {
		return nil, err
	}
	v.printer.Team(page.Team, page.Readiness)
	return page, nil
}

// Invitations shows invitations addressed to the signed-in user.
func (v *Views) Invitations(ctx context.Context) ([]types.TeamInvitation, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	invs, err := load(ctx, v, "invitations", "teammatch invitations mine", v.api.Invitations.ListMine)
	if err != nil {
		return nil, err
	}
	v.printer.Invitations(invs)
	return invs, nil
}

// LeaveRequests shows a team's leave requests.
func (v *Views) LeaveRequests(ctx context.Context, teamID int64) ([]types.LeaveRequest, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	retry := fmt.Sprintf("teammatch leave list %d", teamID)
	lrs, err := load(ctx, v, "leave requests", retry, func(ctx context.Context) ([]types.LeaveRequest, error) {
		return v.api.LeaveRequests.ListForTeam(ctx, teamID)
	})
	if err != nil {
		return nil, err
	}
	v.printer.LeaveRequests(lrs)
	return lrs, nil
}

// DashboardPage is the project dashboard's data.
type DashboardPage struct {
	Project     *types.Project
	Assignments []types.Assignment
	Reports     []types.WeeklyReport
}

// Dashboard loads a started project's header, tasks and reports in parallel.
// Any failure cancels the others.
func (v *Views) Dashboard(ctx context.Context, projectID int64) (*DashboardPage, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	retry := fmt.Sprintf("teammatch dashboard %d", projectID)
	page, err := load(ctx, v, "dashboard", retry, func(ctx context.Context) (*DashboardPage, error) {
		page := &DashboardPage{}
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			page.Project, err = v.api.Projects.Get(ctx, projectID)
			return err
		})
		g.Go(func() error {
			var err error
			page.Assignments, err = v.api.Assignments.ListByProject(ctx, projectID)
			return err
		})
		g.Go(func() error {
			var err error
			page.Reports, err = v.api.Reports.ListByProject(ctx, projectID)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return page, nil
	})
	if err != nil {
		return nil, err
	}
	v.printer.Project(page.Project)
	v.printer.Assignments(page.Assignments)
	v.printer.Reports(page.Reports)
	return page, nil
}

// MyProjects shows the started projects the user belongs to.
func (v *Views) MyProjects(ctx context.Context) ([]types.Project, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	projects, err := load(ctx, v, "my projects", "teammatch dashboard", v.api.Projects.ListMine)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		v.printer.Empty("projects in progress")
	}
	for i := range projects {
		v.printer.Project(&projects[i])
	}
	return projects, nil
}

// MatchReason explains a user recommendation. The wait is decorated with the
// progress animation.
func (v *Views) MatchReason(ctx context.Context, userID int64) (*types.MatchReason, error) {
	retry := fmt.Sprintf("teammatch match user %d", userID)
	return v.matchReason(ctx, retry, func(ctx context.Context) (*types.MatchReason, error) {
		return v.api.Match.UserReason(ctx, userID)
	})
}

// ProjectMatchReason explains why a project suits a user.
func (v *Views) ProjectMatchReason(ctx context.Context, userID, projectID int64) (*types.MatchReason, error) {
	retry := fmt.Sprintf("teammatch match project %d %d", userID, projectID)
	return v.matchReason(ctx, retry, func(ctx context.Context) (*types.MatchReason, error) {
		return v.api.Match.ProjectReason(ctx, userID, projectID)
	})
}

func (v *Views) matchReason(ctx context.Context, retry string, fetch query.Fetch[*types.MatchReason]) (*types.MatchReason, error) {
	q := query.New(ctx, fetch)
	defer q.Close()

	var reason *types.MatchReason
	err := v.withProgress(ctx, "AI is analysing the match", func(context.Context) error {
		var err error
		reason, err = q.Run()
		return err
	})
	if err != nil {
		v.fail("match", retry, err)
		return nil, err
	}
	v.printer.MatchReason(reason)
	return reason, nil
}

// MyPageData is the my-page summary.
type MyPageData struct {
	User         *types.User
	Applications []types.Application
	Teams        []types.Team
}

// MyPage shows the account, its applications and its teams.
func (v *Views) MyPage(ctx context.Context) (*MyPageData, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	data, err := load(ctx, v, "my page", "teammatch open /mypage", func(ctx context.Context) (*MyPageData, error) {
		data := &MyPageData{User: v.session.CurrentUser()}
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			data.Applications, err = v.api.Applications.ListMine(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			data.Teams, err = v.api.Teams.List(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	v.printer.User(data.User)
	v.printer.Applications("my applications", data.Applications)
	v.printer.Teams(data.Teams)
	return data, nil
}

// Tasks lists a started project's assignments.
func (v *Views) Tasks(ctx context.Context, projectID int64) ([]types.Assignment, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	retry := fmt.Sprintf("teammatch tasks list %d", projectID)
	tasks, err := load(ctx, v, "tasks", retry, func(ctx context.Context) ([]types.Assignment, error) {
		return v.api.Assignments.ListByProject(ctx, projectID)
	})
	if err != nil {
		return nil, err
	}
	v.printer.Assignments(tasks)
	return tasks, nil
}

// Reports lists a started project's weekly reports.
func (v *Views) Reports(ctx context.Context, projectID int64) ([]types.WeeklyReport, error) {
	if _, err := v.requireUser(ctx); err != nil {
		return nil, err
	}
	retry := fmt.Sprintf("teammatch reports list %d", projectID)
	reports, err := load(ctx, v, "reports", retry, func(ctx context.Context) ([]types.WeeklyReport, error) {
		return v.api.Reports.ListByProject(ctx, projectID)
	})
	if err != nil {
		return nil, err
	}
	v.printer.Reports(reports)
	return reports, nil
}

// WhoAmI prints the signed-in account. It makes no request.
func (v *Views) WhoAmI() *types.User {
	u := v.session.CurrentUser()
	v.printer.User(u)
	return u
}

// Routes prints the route table.
func (v *Views) Routes() {
	v.printer.Routes(v.routes.Routes())
}
