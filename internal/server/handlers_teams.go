package server

import (
	"net/http"

	"github.com/jonathan/teammatch/internal/types"
)

// ---------------------------------------------------------------------
// Teams
// ---------------------------------------------------------------------

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.store.TeamsOf(actor(r).Username))
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	team, err := s.store.Team(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, team)
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var req types.TeamRequest
	if !s.decode(w, r, &req) {
		return
	}
	team, err := s.store.CreateTeam(actor(r).Username, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, team)
}

func (s *Server) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req types.TeamRequest
	if !s.decode(w, r, &req) {
		return
	}
	team, err := s.store.UpdateTeam(actor(r).Username, id, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, team)
}

func (s *Server) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.DeleteTeam(actor(r).Username, id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStartReady(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	postingID, err := pathID(r, "project_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ready, err := s.store.Readiness(teamID, postingID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ready)
}

func (s *Server) handleStartProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	proj, err := s.store.StartProject(actor(r).Username, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, proj)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	memberID, err := pathID(r, "member_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.RemoveMember(actor(r).Username, teamID, memberID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------
// Invitations
// ---------------------------------------------------------------------

func (s *Server) handleSendInvitation(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req types.InviteRequest
	if !s.decode(w, r, &req) {
		return
	}
	inv, err := s.store.Invite(actor(r).Username, teamID, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, inv)
}

func (s *Server) handleTeamInvitations(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	invs, err := s.store.TeamInvitations(actor(r).Username, teamID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, invs)
}

func (s *Server) handleMyInvitations(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.store.InvitationsOf(actor(r).Username))
}

func (s *Server) handleRespondInvitation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req types.RespondRequest
	if !s.decode(w, r, &req) {
		return
	}
	inv, err := s.store.RespondInvitation(actor(r).Username, id, req.Accept)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, inv)
}

// ---------------------------------------------------------------------
// Leave requests
// ---------------------------------------------------------------------

func (s *Server) handleCreateLeaveRequest(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req types.LeaveRequestBody
	if !s.decode(w, r, &req) {
		return
	}
	lr, err := s.store.RequestLeave(actor(r).Username, teamID, req.Reason)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, lr)
}

func (s *Server) handleTeamLeaveRequests(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	lrs, err := s.store.LeaveRequests(actor(r).Username, teamID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, lrs)
}

func (s *Server) handleRespondLeaveRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req types.RespondRequest
	if !s.decode(w, r, &req) {
		return
	}
	lr, err := s.store.RespondLeave(actor(r).Username, id, req.Accept)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, lr)
}
