package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/teammatch/internal/types"
)

// ---------------------------------------------------------------------
// Started projects, tasks and reports
// ---------------------------------------------------------------------

func (s *Server) handleMyProjects(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.store.ProjectsOf(actor(r).Username))
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	proj, err := s.store.Project(actor(r).Username, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, proj)
}

func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	as, err := s.store.Assignments(actor(r).Username, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, as)
}

func (s *Server) handleGenerateAssignments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	as, err := s.store.GenerateAssignments(actor(r).Username, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, as)
}

func (s *Server) handleUpdateAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req types.AssignmentUpdate
	if !s.decode(w, r, &req) {
		return
	}
	a, err := s.store.UpdateAssignment(actor(r).Username, id, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, a)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rs, err := s.store.Reports(actor(r).Username, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rs)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rep, err := s.store.Report(actor(r).Username, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rep)
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rep, err := s.store.GenerateReport(actor(r).Username, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, rep)
}

// ---------------------------------------------------------------------
// Match explanations
// ---------------------------------------------------------------------

func (s *Server) handleUserMatchReason(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil || userID <= 0 {
		s.fail(w, r, &ErrValidation{Field: "userId", Message: "must be a positive integer"})
		return
	}
	reason, err := s.store.UserMatchReason(userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, reason)
}

func (s *Server) handleProjectMatchReason(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	postingID, err := pathID(r, "project_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	reason, err := s.store.ProjectMatchReason(userID, postingID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, reason)
}
