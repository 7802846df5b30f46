package server

import (
	"slices"

	"github.com/jonathan/teammatch/internal/types"
)

// teamFor returns the team recruited by a posting, or nil.
func (s *Store) teamFor(postingID int64) *types.Team {
	for _, t := range s.teams {
		if t.ProjectID == postingID {
			return t
		}
	}
	return nil
}

// seatApplicant adds an approved applicant to the posting's team, creating
// the team, led by the posting owner, on first approval.
func (s *Store) seatApplicant(a *types.Application) error {
	p, err := s.posting(a.ProjectID)
	if err != nil {
		return err
	}
	team := s.teamFor(p.ID)
	if team == nil {
		team = &types.Team{
			ID:         s.nextID("team"),
			Name:       p.Title,
			ProjectID:  p.ID,
			MaxMembers: p.TotalHeadcount() + 1,
		}
		s.teams[team.ID] = team
		s.addMember(team, p.Username, types.MemberManager, "")
	}
	if team.Member(a.ApplicantUsername) != nil {
		return &ErrConflict{Message: "applicant is already a team member"}
	}
	if team.IsFull() {
		return &ErrConflict{Message: "team is full"}
	}
	s.addMember(team, a.ApplicantUsername, types.MemberRegular, a.AppliedPosition)
	return nil
}

func (s *Store) unseat(postingID int64, username string) {
	if team := s.teamFor(postingID); team != nil {
		s.removeMember(team, username)
	}
}

func (s *Store) addMember(team *types.Team, username string, role types.MemberRole, position string) {
	team.Members = append(team.Members, types.TeamMember{
		ID:       s.nextID("member"),
		Username: username,
		Role:     role,
		Position: position,
		JoinedAt: s.now(),
	})
}

func (s *Store) removeMember(team *types.Team, username string) {
	team.Members = slices.DeleteFunc(team.Members, func(m types.TeamMember) bool {
		return m.Username == username
	})
}

func copyTeam(t *types.Team) *types.Team {
	c := *t
	c.Members = slices.Clone(t.Members)
	return &c
}

func (s *Store) team(id int64) (*types.Team, error) {
	t, ok := s.teams[id]
	if !ok {
		return nil, &ErrNotFound{Resource: "team", ID: id}
	}
	return t, nil
}

func (s *Store) managedTeam(actor string, id int64, action string) (*types.Team, error) {
	t, err := s.team(id)
	if err != nil {
		return nil, err
	}
	if m := t.Member(actor); m == nil || m.Role != types.MemberManager {
		return nil, &ErrForbidden{Action: action}
	}
	return t, nil
}

// TeamsOf lists the teams username belongs to.
func (s *Store) TeamsOf(username string) []types.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []types.Team{}
	for _, t := range values(s.teams, func(t *types.Team) bool { return t.Member(username) != nil }) {
		out = append(out, *copyTeam(&t))
	}
	return out
}

// Team returns one team.
func (s *Store) Team(id int64) (*types.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.team(id)
	if err != nil {
		return nil, err
	}
	return copyTeam(t), nil
}

// CreateTeam forms a team led by actor.
func (s *Store) CreateTeam(actor string, req types.TeamRequest) (*types.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.ProjectID != 0 {
		p, err := s.posting(req.ProjectID)
		if err != nil {
			return nil, err
		}
		if p.Username != actor {
			return nil, &ErrForbidden{Action: "form a team for this project"}
		}
		if s.teamFor(p.ID) != nil {
			return nil, &ErrConflict{Message: "project already has a team"}
		}
	}
	t := &types.Team{ID: s.nextID("team"), Name: req.Name, ProjectID: req.ProjectID, MaxMembers: req.MaxMembers}
	s.addMember(t, actor, types.MemberManager, "")
	s.teams[t.ID] = t
	return copyTeam(t), nil
}

// UpdateTeam renames a team or changes its cap. Only the manager may.
func (s *Store) UpdateTeam(actor string, id int64, req types.TeamRequest) (*types.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.managedTeam(actor, id, "edit this team")
	if err != nil {
		return nil, err
	}
	t.Name = req.Name
	if req.MaxMembers > 0 {
		if req.MaxMembers < len(t.Members) {
			return nil, &ErrValidation{Field: "maxMembers", Message: "below the current member count"}
		}
		t.MaxMembers = req.MaxMembers
	}
	return copyTeam(t), nil
}

// DeleteTeam disbands a team that has not started. Only the manager may.
func (s *Store) DeleteTeam(actor string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.managedTeam(actor, id, "disband this team")
	if err != nil {
		return err
	}
	if t.ProjectStarted {
		return &ErrConflict{Message: "team has already started its project"}
	}
	delete(s.teams, id)
	return nil
}

// Readiness reports whether every position of the posting is filled by the
// team's members.
func (s *Store) Readiness(teamID, postingID int64) (*types.StartReadiness, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.team(teamID)
	if err != nil {
		return nil, err
	}
	p, err := s.posting(postingID)
	if err != nil {
		return nil, err
	}
	return readiness(t, p), nil
}

func readiness(t *types.Team, p *types.ProjectPosting) *types.StartReadiness {
	r := &types.StartReadiness{Required: p.TotalHeadcount()}
	for _, pos := range p.Positions {
		seated := 0
		for _, m := range t.Members {
			if m.Role == types.MemberRegular && m.Position == pos.Role {
				seated++
			}
		}
		seated = min(seated, pos.Headcount)
		r.Filled += seated
		if seated < pos.Headcount {
			r.Missing = append(r.Missing, types.Position{Role: pos.Role, Headcount: pos.Headcount - seated})
		}
	}
	r.Ready = !t.ProjectStarted && r.Required > 0 && r.Filled == r.Required
	return r
}

// StartProject turns a ready team into a running project. Only the manager
// may.
func (s *Store) StartProject(actor string, teamID int64) (*types.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.managedTeam(actor, teamID, "start this project")
	if err != nil {
		return nil, err
	}
	if t.ProjectStarted {
		return nil, &ErrConflict{Message: "project already started"}
	}
	p, err := s.posting(t.ProjectID)
	if err != nil {
		return nil, err
	}
	if r := readiness(t, p); !r.Ready {
		return nil, &ErrConflict{Message: "not every position is filled"}
	}

	start := types.NewDate(s.now())
	proj := &types.Project{
		ID:               s.nextID("project"),
		Title:            p.Title,
		TeamID:           t.ID,
		PostingID:        p.ID,
		ProjectStartDate: start,
		ProjectEndDate:   types.NewDate(start.AddDate(0, 0, 7*projectWeeks)),
	}
	s.projects[proj.ID] = proj
	t.ProjectStarted = true
	return copyOf(proj), nil
}

// projectWeeks is the length of a started project.
const projectWeeks = 8

// RemoveMember removes a regular member. Only the manager may.
func (s *Store) RemoveMember(actor string, teamID, memberID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.managedTeam(actor, teamID, "remove members")
	if err != nil {
		return err
	}
	i := slices.IndexFunc(t.Members, func(m types.TeamMember) bool { return m.ID == memberID })
	if i < 0 {
		return &ErrNotFound{Resource: "team member", ID: memberID}
	}
	if t.Members[i].Role == types.MemberManager {
		return &ErrConflict{Message: "the manager cannot be removed"}
	}
	t.Members = slices.Delete(t.Members, i, i+1)
	return nil
}

// Invite invites a user to a team. Only the manager may.
func (s *Store) Invite(actor string, teamID int64, req types.InviteRequest) (*types.TeamInvitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.managedTeam(actor, teamID, "invite to this team")
	if err != nil {
		return nil, err
	}
	invitee := s.userByName(req.InviteeUsername)
	if invitee == nil {
		return nil, &ErrNotFound{Resource: "user", ID: req.InviteeUsername}
	}
	if t.Member(invitee.Username) != nil {
		return nil, &ErrConflict{Message: "already a team member"}
	}
	for _, inv := range s.invitations {
		if inv.TeamID == teamID && inv.InviteeUsername == invitee.Username && inv.Status == types.InvitationPending {
			return nil, &ErrConflict{Message: "invitation already pending"}
		}
	}
	inv := &types.TeamInvitation{
		ID:              s.nextID("invitation"),
		TeamID:          t.ID,
		TeamName:        t.Name,
		InviterUsername: actor,
		InviteeUsername: invitee.Username,
		Position:        req.Position,
		Message:         req.Message,
		Status:          types.InvitationPending,
		CreatedAt:       s.now(),
	}
	s.invitations[inv.ID] = inv
	return copyOf(inv), nil
}

// TeamInvitations lists a team's invitations for its members.
func (s *Store) TeamInvitations(actor string, teamID int64) ([]types.TeamInvitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.team(teamID)
	if err != nil {
		return nil, err
	}
	if t.Member(actor) == nil {
		return nil, &ErrForbidden{Action: "view this team's invitations"}
	}
	return values(s.invitations, func(inv *types.TeamInvitation) bool { return inv.TeamID == teamID }), nil
}

// InvitationsOf lists invitations addressed to username.
func (s *Store) InvitationsOf(username string) []types.TeamInvitation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return values(s.invitations, func(inv *types.TeamInvitation) bool { return inv.InviteeUsername == username })
}

// RespondInvitation accepts or declines. Only the invitee may.
func (s *Store) RespondInvitation(actor string, id int64, accept bool) (*types.TeamInvitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invitations[id]
	if !ok {
		return nil, &ErrNotFound{Resource: "invitation", ID: id}
	}
	if inv.InviteeUsername != actor {
		return nil, &ErrForbidden{Action: "answer this invitation"}
	}
	if inv.Status != types.InvitationPending {
		return nil, &ErrConflict{Message: "invitation already answered"}
	}
	if !accept {
		inv.Status = types.InvitationDeclined
		return copyOf(inv), nil
	}

	t, err := s.team(inv.TeamID)
	if err != nil {
		inv.Status = types.InvitationExpired
		return nil, err
	}
	if t.IsFull() {
		return nil, &ErrConflict{Message: "team is full"}
	}
	if t.Member(actor) == nil {
		s.addMember(t, actor, types.MemberRegular, inv.Position)
	}
	inv.Status = types.InvitationAccepted
	return copyOf(inv), nil
}

// RequestLeave opens a leave request. The manager cannot leave.
func (s *Store) RequestLeave(actor string, teamID int64, reason string) (*types.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.team(teamID)
	if err != nil {
		return nil, err
	}
	m := t.Member(actor)
	if m == nil {
		return nil, &ErrForbidden{Action: "leave a team you are not in"}
	}
	if m.Role == types.MemberManager {
		return nil, &ErrConflict{Message: "the manager cannot leave the team"}
	}
	for _, lr := range s.leaves {
		if lr.TeamID == teamID && lr.Username == actor && lr.Status == types.LeavePending {
			return nil, &ErrConflict{Message: "leave request already pending"}
		}
	}
	lr := &types.LeaveRequest{
		ID:        s.nextID("leave"),
		TeamID:    teamID,
		Username:  actor,
		Reason:    reason,
		Status:    types.LeavePending,
		CreatedAt: s.now(),
	}
	s.leaves[lr.ID] = lr
	return copyOf(lr), nil
}

// LeaveRequests lists a team's leave requests for its members.
func (s *Store) LeaveRequests(actor string, teamID int64) ([]types.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.team(teamID)
	if err != nil {
		return nil, err
	}
	if t.Member(actor) == nil {
		return nil, &ErrForbidden{Action: "view this team's leave requests"}
	}
	return values(s.leaves, func(lr *types.LeaveRequest) bool { return lr.TeamID == teamID }), nil
}

// RespondLeave approves or rejects. Only the manager may; approval removes
// the member.
func (s *Store) RespondLeave(actor string, id int64, approve bool) (*types.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lr, ok := s.leaves[id]
	if !ok {
		return nil, &ErrNotFound{Resource: "leave request", ID: id}
	}
	t, err := s.managedTeam(actor, lr.TeamID, "answer this leave request")
	if err != nil {
		return nil, err
	}
	if lr.Status != types.LeavePending {
		return nil, &ErrConflict{Message: "leave request already answered"}
	}
	if approve {
		s.removeMember(t, lr.Username)
		lr.Status = types.LeaveApproved
	} else {
		lr.Status = types.LeaveRejected
	}
	return copyOf(lr), nil
}
