package server

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jonathan/teammatch/internal/types"
)

func (s *Store) memberProject(actor string, id int64) (*types.Project, *types.Team, error) {
	p, ok := s.projects[id]
	if !ok {
		return nil, nil, &ErrNotFound{Resource: "project", ID: id}
	}
	t, err := s.team(p.TeamID)
	if err != nil {
		return nil, nil, err
	}
	if t.Member(actor) == nil {
		return nil, nil, &ErrForbidden{Action: "view this project"}
	}
	return p, t, nil
}

// Project returns a started project for one of its members.
func (s *Store) Project(actor string, id int64) (*types.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, _, err := s.memberProject(actor, id)
	if err != nil {
		return nil, err
	}
	return copyOf(p), nil
}

// ProjectsOf lists the started projects of username's teams.
func (s *Store) ProjectsOf(username string) []types.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return values(s.projects, func(p *types.Project) bool {
		t, ok := s.teams[p.TeamID]
		return ok && t.Member(username) != nil
	})
}

// Assignments lists a project's tasks.
func (s *Store) Assignments(actor string, projectID int64) ([]types.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, _, err := s.memberProject(actor, projectID); err != nil {
		return nil, err
	}
	return values(s.assignments, func(a *types.Assignment) bool { return a.ProjectID == projectID }), nil
}

// GenerateAssignments drafts one task per member, replacing earlier drafts.
// The content is a deterministic placeholder for the real generator.
func (s *Store) GenerateAssignments(actor string, projectID int64) ([]types.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, t, err := s.memberProject(actor, projectID)
	if err != nil {
		return nil, err
	}
	for id, a := range s.assignments {
		if a.ProjectID == projectID {
			delete(s.assignments, id)
		}
	}

	due := p.ProjectStartDate.AddDate(0, 0, 14)
	out := make([]types.Assignment, 0, len(t.Members))
	for _, m := range t.Members {
		u := s.userByName(m.Username)
		a := &types.Assignment{
			ID:          s.nextID("assignment"),
			ProjectID:   projectID,
			Title:       taskTitle(m),
			Description: fmt.Sprintf("First milestone of %s for %s.", p.Title, m.Username),
			Username:    m.Username,
			DueAt:       due,
			Status:      types.AssignmentTodo,
		}
		if u != nil {
			a.UserID = u.ID
		}
		s.assignments[a.ID] = a
		out = append(out, *a)
	}
	return out, nil
}

func taskTitle(m types.TeamMember) string {
	switch {
	case m.Role == types.MemberManager:
		return "Plan the milestones and run the weekly sync"
	case m.Position != "":
		return fmt.Sprintf("Deliver the first %s increment", m.Position)
	default:
		return "Pick up a first task with the team"
	}
}

// UpdateAssignment records progress. The assignee or the manager may.
func (s *Store) UpdateAssignment(actor string, id int64, upd types.AssignmentUpdate) (*types.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id]
	if !ok {
		return nil, &ErrNotFound{Resource: "assignment", ID: id}
	}
	_, t, err := s.memberProject(actor, a.ProjectID)
	if err != nil {
		return nil, err
	}
	if a.Username != actor {
		if m := t.Member(actor); m == nil || m.Role != types.MemberManager {
			return nil, &ErrForbidden{Action: "update someone else's task"}
		}
	}
	a.Status = upd.Status
	a.Progress = upd.Progress
	if upd.Status == types.AssignmentCompleted {
		a.Progress = 100
	}
	return copyOf(a), nil
}

// Reports lists a project's weekly reports.
func (s *Store) Reports(actor string, projectID int64) ([]types.WeeklyReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, _, err := s.memberProject(actor, projectID); err != nil {
		return nil, err
	}
	return values(s.reports, func(r *types.WeeklyReport) bool { return r.ProjectID == projectID }), nil
}

// Report returns one weekly report.
func (s *Store) Report(actor string, id int64) (*types.WeeklyReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, &ErrNotFound{Resource: "weekly report", ID: id}
	}
	if _, _, err := s.memberProject(actor, r.ProjectID); err != nil {
		return nil, err
	}
	return copyOf(r), nil
}

// GenerateReport writes the next weekly report from the task counts.
func (s *Store) GenerateReport(actor string, projectID int64) (*types.WeeklyReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, _, err := s.memberProject(actor, projectID)
	if err != nil {
		return nil, err
	}

	week := 1
	for _, r := range s.reports {
		if r.ProjectID == projectID {
			week = max(week, r.WeekNumber+1)
		}
	}
	var perf types.PerformanceData
	for _, a := range s.assignments {
		if a.ProjectID != projectID {
			continue
		}
		perf.TotalTasks++
		switch a.Status {
		case types.AssignmentCompleted:
			perf.CompletedTasks++
		case types.AssignmentDelayed:
			perf.DelayedTasks++
		}
	}
	if perf.TotalTasks > 0 {
		perf.CompletionRate = float64(perf.CompletedTasks) * 100 / float64(perf.TotalTasks)
	}

	start := p.ProjectStartDate.AddDate(0, 0, 7*(week-1))
	r := &types.WeeklyReport{
		ID:              s.nextID("report"),
		ProjectID:       projectID,
		WeekNumber:      week,
		StartDate:       types.NewDate(start),
		EndDate:         types.NewDate(start.Add(6 * 24 * time.Hour)),
		PerformanceData: perf,
		AIAnalysis:      analysis(perf),
	}
	s.reports[r.ID] = r
	return copyOf(r), nil
}

func analysis(perf types.PerformanceData) string {
	switch {
	case perf.TotalTasks == 0:
		return "No tasks yet. Generate tasks to start tracking progress."
	case perf.DelayedTasks > 0:
		return fmt.Sprintf("%d of %d tasks are delayed. Rebalance the work at the next sync.",
			perf.DelayedTasks, perf.TotalTasks)
	case perf.CompletedTasks == perf.TotalTasks:
		return "Every task is done. Plan the next milestone."
	default:
		return fmt.Sprintf("On track: %d of %d tasks done.", perf.CompletedTasks, perf.TotalTasks)
	}
}

// UserMatchReason explains why a user is worth recruiting.
func (s *Store) UserMatchReason(userID int64) (*types.MatchReason, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, &ErrNotFound{Resource: "user", ID: userID}
	}
	prof := s.profileOf(u.Username)
	if prof == nil || len(prof.Skills) == 0 {
		return &types.MatchReason{
			UserID: userID,
			Score:  0.5,
			Reason: fmt.Sprintf("%s has not listed any skills yet.", u.Username),
		}, nil
	}
	return &types.MatchReason{
		UserID: userID,
		Score:  min(1, 0.5+0.1*float64(len(prof.Skills))),
		Reason: fmt.Sprintf("%s brings %s.", u.Username, strings.Join(prof.Skills, ", ")),
	}, nil
}

// ProjectMatchReason scores a posting for a user by shared skills and tags.
func (s *Store) ProjectMatchReason(userID, postingID int64) (*types.MatchReason, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, &ErrNotFound{Resource: "user", ID: userID}
	}
	p, err := s.posting(postingID)
	if err != nil {
		return nil, err
	}

	var shared []string
	if prof := s.profileOf(u.Username); prof != nil {
		for _, skill := range prof.Skills {
			if slices.ContainsFunc(p.Tags, func(t string) bool { return strings.EqualFold(t, skill) }) {
				shared = append(shared, skill)
			}
		}
	}
	r := &types.MatchReason{UserID: userID, ProjectID: postingID}
	if len(p.Tags) > 0 {
		r.Score = float64(len(shared)) / float64(len(p.Tags))
	}
	if len(shared) == 0 {
		r.Reason = fmt.Sprintf("%s shares no listed skills with %s.", u.Username, p.Title)
	} else {
		r.Reason = fmt.Sprintf("%s already works with %s, used by %s.", u.Username, strings.Join(shared, ", "), p.Title)
	}
	return r, nil
}

func (s *Store) profileOf(username string) *types.UserProfile {
	for _, p := range s.profiles {
		if p.Username == username {
			return p
		}
	}
	return nil
}
