package server

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jonathan/teammatch/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)

func newTestStore(t *testing.T, users ...string) *Store {
	t.Helper()
	s := NewStore(func() time.Time { return testNow })
	for _, u := range users {
		_, err := s.CreateUser(types.SignupRequest{Username: u, Email: u + "@example.com", Password: "password123"}, "hash")
		require.NoError(t, err)
	}
	return s
}

func postingRequest(positions ...types.Position) types.PostingRequest {
	return types.PostingRequest{
		Title:       "Chat app",
		Intro:       "Realtime chat for study groups",
		Description: "A small chat service.",
		Tags:        []string{"go", "react"},
		Deadline:    types.NewDate(testNow.AddDate(0, 0, 21)),
		Positions:   positions,
		WorkStyle:   types.WorkOnline,
	}
}

func assertStatus(t *testing.T, want int, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, HTTPStatus(err), err.Error())
}

// seated returns a store where alice owns a posting for one backend and one
// frontend seat, and bob holds an approved backend application.
func seated(t *testing.T) (*Store, *types.ProjectPosting, *types.Team) {
	t.Helper()
	s := newTestStore(t, "alice", "bob", "carol", "dave")
	p, err := s.CreatePosting("alice", postingRequest(
		types.Position{Role: "Backend", Headcount: 1},
		types.Position{Role: "Frontend", Headcount: 1},
	))
	require.NoError(t, err)

	a, err := s.Apply("bob", types.ApplicationRequest{ProjectID: p.ID, AppliedPosition: "Backend"})
	require.NoError(t, err)
	_, err = s.SetApplicationStatus("alice", a.ID, types.ApplicationApproved)
	require.NoError(t, err)

	teams := s.TeamsOf("bob")
	require.Len(t, teams, 1)
	return s, p, &teams[0]
}

func TestStore_UsernamesAreUniqueIgnoringCase(t *testing.T) {
	s := newTestStore(t, "alice")
	_, err := s.CreateUser(types.SignupRequest{Username: "Alice"}, "hash")

	var taken *ErrUsernameTaken
	require.True(t, errors.As(err, &taken))
	assert.Equal(t, "Alice", taken.Username)
	assert.Len(t, s.Users(), 1)
}

func TestStore_UpdateUserIsSelfOnly(t *testing.T) {
	s := newTestStore(t, "alice", "bob")

	u, err := s.UpdateUser(1, 1, types.UpdateUserRequest{Nickname: "Al"})
	require.NoError(t, err)
	assert.Equal(t, "Al", u.Nickname)
	assert.Equal(t, "alice@example.com", u.Email)

	_, err = s.UpdateUser(2, 1, types.UpdateUserRequest{Nickname: "Mallory"})
	assertStatus(t, http.StatusForbidden, err)
}

func TestStore_CreatePostingRejectsPastDeadline(t *testing.T) {
	s := newTestStore(t, "alice")

	tests := []struct {
		name     string
		deadline types.Date
		wantErr  bool
	}{
		{name: "yesterday", deadline: types.NewDate(testNow.AddDate(0, 0, -1)), wantErr: true},
		{name: "unset", deadline: types.Date{}, wantErr: true},
		{name: "today", deadline: types.NewDate(testNow)},
		{name: "next month", deadline: types.NewDate(testNow.AddDate(0, 1, 0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := postingRequest(types.Position{Role: "Backend", Headcount: 1})
			req.Deadline = tt.deadline
			_, err := s.CreatePosting("alice", req)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var ve *ErrValidation
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "deadline", ve.Field)
		})
	}
}

func TestStore_PostingsFilter(t *testing.T) {
	s := newTestStore(t, "alice")
	_, err := s.CreatePosting("alice", postingRequest(types.Position{Role: "Backend", Headcount: 1}))
	require.NoError(t, err)
	other := postingRequest(types.Position{Role: "Designer", Headcount: 1})
	other.Title = "Plant tracker"
	other.Intro = "Water reminders"
	other.Tags = []string{"Swift"}
	_, err = s.CreatePosting("alice", other)
	require.NoError(t, err)

	assert.Len(t, s.Postings("", ""), 2)
	assert.Len(t, s.Postings("swift", ""), 1)
	assert.Len(t, s.Postings("", "CHAT"), 1)
	assert.Len(t, s.Postings("", "water"), 1)
	assert.Empty(t, s.Postings("go", "water"))
}

func TestStore_OnlyOwnersChangePostings(t *testing.T) {
	s := newTestStore(t, "alice", "bob")
	p, err := s.CreatePosting("alice", postingRequest(types.Position{Role: "Backend", Headcount: 1}))
	require.NoError(t, err)

	_, err = s.UpdatePosting("bob", p.ID, postingRequest(types.Position{Role: "Backend", Headcount: 2}))
	assertStatus(t, http.StatusForbidden, err)
	assertStatus(t, http.StatusForbidden, s.DeletePosting("bob", p.ID))

	a, err := s.Apply("bob", types.ApplicationRequest{ProjectID: p.ID, AppliedPosition: "Backend"})
	require.NoError(t, err)
	require.NoError(t, s.DeletePosting("alice", p.ID))

	_, err = s.Posting(p.ID)
	assertStatus(t, http.StatusNotFound, err)
	_, err = s.Application("bob", a.ID)
	assertStatus(t, http.StatusNotFound, err)
}

func TestStore_Apply(t *testing.T) {
	s := newTestStore(t, "alice", "bob")
	p, err := s.CreatePosting("alice", postingRequest(types.Position{Role: "Backend", Headcount: 1}))
	require.NoError(t, err)

	a, err := s.Apply("bob", types.ApplicationRequest{ProjectID: p.ID, AppliedPosition: "Backend", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, types.ApplicationPending, a.Status)
	assert.Equal(t, "Chat app", a.ProjectTitle)
	assert.Equal(t, testNow, a.AppliedAt)

	_, err = s.Apply("bob", types.ApplicationRequest{ProjectID: p.ID, AppliedPosition: "Backend"})
	assertStatus(t, http.StatusConflict, err)

	_, err = s.Apply("bob", types.ApplicationRequest{ProjectID: p.ID, AppliedPosition: "Designer"})
	assertStatus(t, http.StatusBadRequest, err)

	_, err = s.Apply("alice", types.ApplicationRequest{ProjectID: p.ID, AppliedPosition: "Backend"})
	assertStatus(t, http.StatusConflict, err)

	_, err = s.Apply("bob", types.ApplicationRequest{ProjectID: 99, AppliedPosition: "Backend"})
	assertStatus(t, http.StatusNotFound, err)

	// A withdrawn application no longer blocks a new one.
	_, err = s.SetApplicationStatus("bob", a.ID, types.ApplicationWithdrawn)
	require.NoError(t, err)
	_, err = s.Apply("bob", types.ApplicationRequest{ProjectID: p.ID, AppliedPosition: "Backend"})
	require.NoError(t, err)
}

func TestStore_ApplicationVisibility(t *testing.T) {
	s := newTestStore(t, "alice", "bob", "carol")
	p, err := s.CreatePosting("alice", postingRequest(types.Position{Role: "Backend", Headcount: 1}))
	require.NoError(t, err)
	a, err := s.Apply("bob", types.ApplicationRequest{ProjectID: p.ID, AppliedPosition: "Backend"})
	require.NoError(t, err)

	assert.Len(t, s.Applications("alice"), 1)
	assert.Len(t, s.Applications("bob"), 1)
	assert.Empty(t, s.Applications("carol"))

	_, err = s.Application("carol", a.ID)
	assertStatus(t, http.StatusForbidden, err)
	_, err = s.ApplicationsFor("bob", p.ID)
	assertStatus(t, http.StatusForbidden, err)

	list, err := s.ApplicationsFor("alice", p.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Len(t, s.ApplicationsOf("bob"), 1)
}

func TestStore_ApprovalSeatsApplicant(t *testing.T) {
	s, p, team := seated(t)

	assert.Equal(t, "Chat app", team.Name)
	assert.Equal(t, p.ID, team.ProjectID)
	assert.Equal(t, 3, team.MaxMembers)
	require.Len(t, team.Members, 2)
	assert.Equal(t, types.MemberManager, team.Leader().Role)
	assert.Equal(t, "alice", team.Leader().Username)
	assert.Equal(t, "Backend", team.Member("bob").Position)

	assert.Len(t, s.TeamsOf("alice"), 1)
	assert.Empty(t, s.TeamsOf("carol"))
}

func TestStore_ApplicationTransitions(t *testing.T) {
	s := newTestStore(t, "alice", "bob")
	p, err := s.CreatePosting("alice", postingRequest(types.Position{Role: "Backend", Headcount: 1}))
	require.NoError(t, err)
	a, err := s.Apply("bob", types.ApplicationRequest{ProjectID: p.ID, AppliedPosition: "Backend"})
	require.NoError(t, err)

	_, err = s.SetApplicationStatus("bob", a.ID, types.ApplicationApproved)
	assertStatus(t, http.StatusForbidden, err)
	_, err = s.SetApplicationStatus("alice", a.ID, types.ApplicationWithdrawn)
	assertStatus(t, http.StatusForbidden, err)
	_, err = s.SetApplicationStatus("alice", a.ID, types.ApplicationPending)
	assertStatus(t, http.StatusBadRequest, err)

	_, err = s.SetApplicationStatus("alice", a.ID, types.ApplicationRejected)
	require.NoError(t, err)
	_, err = s.SetApplicationStatus("alice", a.ID, types.ApplicationApproved)
	assertStatus(t, http.StatusConflict, err)
	_, err = s.SetApplicationStatus("bob", a.ID, types.ApplicationWithdrawn)
	assertStatus(t, http.StatusConflict, err)
}

func TestStore_WithdrawingApprovedApplicationLeavesTeam(t *testing.T) {
	s, _, team := seated(t)
	apps := s.ApplicationsOf("bob")
	require.Len(t, apps, 1)

	assertStatus(t, http.StatusConflict, s.DeleteApplication("bob", apps[0].ID))

	_, err := s.SetApplicationStatus("bob", apps[0].ID, types.ApplicationWithdrawn)
	require.NoError(t, err)

	got, err := s.Team(team.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Member("bob"))
	require.NoError(t, s.DeleteApplication("bob", apps[0].ID))
}

func TestStore_ReadinessAndStart(t *testing.T) {
	s, p, team := seated(t)

	r, err := s.Readiness(team.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, r.Ready)
	assert.Equal(t, 1, r.Filled)
	assert.Equal(t, 2, r.Required)
	assert.Equal(t, []types.Position{{Role: "Frontend", Headcount: 1}}, r.Missing)

	_, err = s.StartProject("alice", team.ID)
	assertStatus(t, http.StatusConflict, err)

	a, err := s.Apply("carol", types.ApplicationRequest{ProjectID: p.ID, AppliedPosition: "Frontend"})
	require.NoError(t, err)
	_, err = s.SetApplicationStatus("alice", a.ID, types.ApplicationApproved)
	require.NoError(t, err)

	r, err = s.Readiness(team.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, r.Ready)
	assert.Empty(t, r.Missing)

	// The team is full now.
	late, err := s.Apply("dave", types.ApplicationRequest{ProjectID: p.ID, AppliedPosition: "Frontend"})
	require.NoError(t, err)
	_, err = s.SetApplicationStatus("alice", late.ID, types.ApplicationApproved)
	assertStatus(t, http.StatusConflict, err)

	_, err = s.StartProject("bob", team.ID)
	assertStatus(t, http.StatusForbidden, err)

	proj, err := s.StartProject("alice", team.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chat app", proj.Title)
	assert.Equal(t, p.ID, proj.PostingID)
	assert.Equal(t, "2025-03-10", proj.ProjectStartDate.String())
	assert.Equal(t, "2025-05-05", proj.ProjectEndDate.String())

	_, err = s.StartProject("alice", team.ID)
	assertStatus(t, http.StatusConflict, err)
	r, err = s.Readiness(team.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, r.Ready, "a started project is never ready again")

	assertStatus(t, http.StatusConflict, s.DeleteTeam("alice", team.ID))
	assert.Len(t, s.ProjectsOf("carol"), 1)
	assert.Empty(t, s.ProjectsOf("dave"))
}

func TestStore_Teams(t *testing.T) {
	s := newTestStore(t, "alice", "bob")
	p, err := s.CreatePosting("alice", postingRequest(types.Position{Role: "Backend", Headcount: 1}))
	require.NoError(t, err)

	_, err = s.CreateTeam("bob", types.TeamRequest{Name: "Hijack", ProjectID: p.ID})
	assertStatus(t, http.StatusForbidden, err)

	team, err := s.CreateTeam("alice", types.TeamRequest{Name: "Rockets", ProjectID: p.ID, MaxMembers: 4})
	require.NoError(t, err)
	_, err = s.CreateTeam("alice", types.TeamRequest{Name: "Again", ProjectID: p.ID})
	assertStatus(t, http.StatusConflict, err)

	_, err = s.UpdateTeam("bob", team.ID, types.TeamRequest{Name: "Mine"})
	assertStatus(t, http.StatusForbidden, err)
	_, err = s.UpdateTeam("alice", team.ID, types.TeamRequest{Name: "Rockets", MaxMembers: 0})
	require.NoError(t, err)

	updated, err := s.UpdateTeam("alice", team.ID, types.TeamRequest{Name: "Comets"})
	require.NoError(t, err)
	assert.Equal(t, "Comets", updated.Name)
	assert.Equal(t, 4, updated.MaxMembers)

	leader := updated.Leader()
	require.NotNil(t, leader)
	assertStatus(t, http.StatusConflict, s.RemoveMember("alice", team.ID, leader.ID))
	assertStatus(t, http.StatusNotFound, s.RemoveMember("alice", team.ID, 999))

	require.NoError(t, s.DeleteTeam("alice", team.ID))
	_, err = s.Team(team.ID)
	assertStatus(t, http.StatusNotFound, err)
}

func TestStore_Invitations(t *testing.T) {
	s := newTestStore(t, "alice", "bob", "carol")
	team, err := s.CreateTeam("alice", types.TeamRequest{Name: "Rockets"})
	require.NoError(t, err)

	_, err = s.Invite("carol", team.ID, types.InviteRequest{InviteeUsername: "bob"})
	assertStatus(t, http.StatusForbidden, err)
	_, err = s.Invite("alice", team.ID, types.InviteRequest{InviteeUsername: "nobody"})
	assertStatus(t, http.StatusNotFound, err)
	_, err = s.Invite("alice", team.ID, types.InviteRequest{InviteeUsername: "alice"})
	assertStatus(t, http.StatusConflict, err)

	inv, err := s.Invite("alice", team.ID, types.InviteRequest{InviteeUsername: "bob", Position: "Backend"})
	require.NoError(t, err)
	assert.Equal(t, "Rockets", inv.TeamName)
	assert.Equal(t, types.InvitationPending, inv.Status)

	_, err = s.Invite("alice", team.ID, types.InviteRequest{InviteeUsername: "bob"})
	assertStatus(t, http.StatusConflict, err)

	_, err = s.TeamInvitations("carol", team.ID)
	assertStatus(t, http.StatusForbidden, err)
	list, err := s.TeamInvitations("alice", team.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Len(t, s.InvitationsOf("bob"), 1)

	_, err = s.RespondInvitation("carol", inv.ID, true)
	assertStatus(t, http.StatusForbidden, err)

	accepted, err := s.RespondInvitation("bob", inv.ID, true)
	require.NoError(t, err)
	assert.Equal(t, types.InvitationAccepted, accepted.Status)

	got, err := s.Team(team.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Member("bob"))
	assert.Equal(t, "Backend", got.Member("bob").Position)

	_, err = s.RespondInvitation("bob", inv.ID, false)
	assertStatus(t, http.StatusConflict, err)
}

func TestStore_LeaveRequests(t *testing.T) {
	s, _, team := seated(t)

	_, err := s.RequestLeave("alice", team.ID, "tired")
	assertStatus(t, http.StatusConflict, err)
	_, err = s.RequestLeave("carol", team.ID, "curious")
	assertStatus(t, http.StatusForbidden, err)

	lr, err := s.RequestLeave("bob", team.ID, "exams")
	require.NoError(t, err)
	_, err = s.RequestLeave("bob", team.ID, "exams")
	assertStatus(t, http.StatusConflict, err)

	list, err := s.LeaveRequests("alice", team.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.RespondLeave("bob", lr.ID, true)
	assertStatus(t, http.StatusForbidden, err)

	approved, err := s.RespondLeave("alice", lr.ID, true)
	require.NoError(t, err)
	assert.Equal(t, types.LeaveApproved, approved.Status)

	got, err := s.Team(team.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Member("bob"))

	_, err = s.RespondLeave("alice", lr.ID, false)
	assertStatus(t, http.StatusConflict, err)
}

func TestStore_AssignmentsAndReports(t *testing.T) {
	s, p, team := seated(t)
	a, err := s.Apply("carol", types.ApplicationRequest{ProjectID: p.ID, AppliedPosition: "Frontend"})
	require.NoError(t, err)
	_, err = s.SetApplicationStatus("alice", a.ID, types.ApplicationApproved)
	require.NoError(t, err)
	proj, err := s.StartProject("alice", team.ID)
	require.NoError(t, err)

	_, err = s.GenerateAssignments("dave", proj.ID)
	assertStatus(t, http.StatusForbidden, err)

	tasks, err := s.GenerateAssignments("bob", proj.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	for _, task := range tasks {
		assert.Equal(t, "2025-03-24", task.DueAt.Format(types.DateLayout))
		assert.Equal(t, types.AssignmentTodo, task.Status)
		assert.NotZero(t, task.UserID)
	}
	assert.Equal(t, "Deliver the first Backend increment", tasks[1].Title)

	// Regenerating replaces the drafts.
	tasks, err = s.GenerateAssignments("bob", proj.ID)
	require.NoError(t, err)
	listed, err := s.Assignments("carol", proj.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 3)

	var bobTask, carolTask types.Assignment
	for _, task := range tasks {
		switch task.Username {
		case "bob":
			bobTask = task
		case "carol":
			carolTask = task
		}
	}

	_, err = s.UpdateAssignment("bob", carolTask.ID, types.AssignmentUpdate{Status: types.AssignmentInProgress, Progress: 10})
	assertStatus(t, http.StatusForbidden, err)
	_, err = s.UpdateAssignment("alice", carolTask.ID, types.AssignmentUpdate{Status: types.AssignmentInProgress, Progress: 10})
	require.NoError(t, err)

	done, err := s.UpdateAssignment("bob", bobTask.ID, types.AssignmentUpdate{Status: types.AssignmentCompleted, Progress: 40})
	require.NoError(t, err)
	assert.Equal(t, 100, done.Progress)

	r, err := s.GenerateReport("carol", proj.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, r.WeekNumber)
	assert.Equal(t, "2025-03-10", r.StartDate.String())
	assert.Equal(t, "2025-03-16", r.EndDate.String())
	assert.Equal(t, 3, r.PerformanceData.TotalTasks)
	assert.Equal(t, 1, r.PerformanceData.CompletedTasks)
	assert.InDelta(t, 33.33, r.PerformanceData.CompletionRate, 0.01)
	assert.Equal(t, "On track: 1 of 3 tasks done.", r.AIAnalysis)

	_, err = s.UpdateAssignment("carol", carolTask.ID, types.AssignmentUpdate{Status: types.AssignmentDelayed, Progress: 10})
	require.NoError(t, err)
	r2, err := s.GenerateReport("carol", proj.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, r2.WeekNumber)
	assert.Equal(t, "2025-03-17", r2.StartDate.String())
	assert.Contains(t, r2.AIAnalysis, "1 of 3 tasks are delayed")

	reports, err := s.Reports("alice", proj.ID)
	require.NoError(t, err)
	assert.Len(t, reports, 2)
	_, err = s.Report("dave", r.ID)
	assertStatus(t, http.StatusForbidden, err)
}

func TestStore_Profiles(t *testing.T) {
	s := newTestStore(t, "alice", "bob")
	req := types.ProfileRequest{Intro: "Gopher", Bio: "Backend dev", Skills: []string{"Go", "SQL"}}

	prof, err := s.CreateProfile("bob", req)
	require.NoError(t, err)
	_, err = s.CreateProfile("bob", req)
	assertStatus(t, http.StatusConflict, err)

	_, err = s.UpdateProfile("alice", prof.ID, req)
	assertStatus(t, http.StatusForbidden, err)
	assertStatus(t, http.StatusForbidden, s.DeleteProfile("alice", prof.ID))

	req.Location = "Seoul"
	updated, err := s.UpdateProfile("bob", prof.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Seoul", updated.Location)
	assert.Len(t, s.Profiles(), 1)

	require.NoError(t, s.DeleteProfile("bob", prof.ID))
	_, err = s.Profile(prof.ID)
	assertStatus(t, http.StatusNotFound, err)
}

func TestStore_MatchReasons(t *testing.T) {
	s := newTestStore(t, "alice", "bob", "carol")
	p, err := s.CreatePosting("alice", postingRequest(types.Position{Role: "Backend", Headcount: 1}))
	require.NoError(t, err)
	_, err = s.CreateProfile("carol", types.ProfileRequest{Intro: "Gopher", Bio: "Backend dev", Skills: []string{"Go", "SQL"}})
	require.NoError(t, err)

	r, err := s.ProjectMatchReason(3, p.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, r.Score, 1e-9)
	assert.Equal(t, "carol already works with Go, used by Chat app.", r.Reason)

	r, err = s.ProjectMatchReason(2, p.ID)
	require.NoError(t, err)
	assert.Zero(t, r.Score)

	r, err = s.UserMatchReason(2)
	require.NoError(t, err)
	assert.Equal(t, "bob has not listed any skills yet.", r.Reason)

	r, err = s.UserMatchReason(3)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, r.Score, 1e-9)

	_, err = s.UserMatchReason(42)
	assertStatus(t, http.StatusNotFound, err)
	_, err = s.ProjectMatchReason(3, 42)
	assertStatus(t, http.StatusNotFound, err)
}
