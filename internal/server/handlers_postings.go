package server

import (
	"net/http"

	"github.com/jonathan/teammatch/internal/types"
)

// ---------------------------------------------------------------------
// Project postings
// ---------------------------------------------------------------------

func (s *Server) handleListPostings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.jsonResponse(w, http.StatusOK, s.store.Postings(q.Get("tag"), q.Get("q")))
}

func (s *Server) handleGetPosting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	post, err := s.store.Posting(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, post)
}

func (s *Server) handleCreatePosting(w http.ResponseWriter, r *http.Request) {
	var req types.PostingRequest
	if !s.decode(w, r, &req) {
		return
	}
	post, err := s.store.CreatePosting(actor(r).Username, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, post)
}

func (s *Server) handleUpdatePosting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req types.PostingRequest
	if !s.decode(w, r, &req) {
		return
	}
	post, err := s.store.UpdatePosting(actor(r).Username, id, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, post)
}

func (s *Server) handleDeletePosting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.DeletePosting(actor(r).Username, id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------
// Profiles
// ---------------------------------------------------------------------

func (s *Server) handleListProfiles(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.store.Profiles())
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	prof, err := s.store.Profile(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, prof)
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req types.ProfileRequest
	if !s.decode(w, r, &req) {
		return
	}
	prof, err := s.store.CreateProfile(actor(r).Username, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, prof)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req types.ProfileRequest
	if !s.decode(w, r, &req) {
		return
	}
	prof, err := s.store.UpdateProfile(actor(r).Username, id, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, prof)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.DeleteProfile(actor(r).Username, id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------
// Applications
// ---------------------------------------------------------------------

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.store.Applications(actor(r).Username))
}

func (s *Server) handleMyApplications(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.store.ApplicationsOf(actor(r).Username))
}

func (s *Server) handleProjectApplications(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	apps, err := s.store.ApplicationsFor(actor(r).Username, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, apps)
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	app, err := s.store.Application(actor(r).Username, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var req types.ApplicationRequest
	if !s.decode(w, r, &req) {
		return
	}
	app, err := s.store.Apply(actor(r).Username, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, app)
}

func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req types.ApplicationUpdate
	if !s.decode(w, r, &req) {
		return
	}
	app, err := s.store.SetApplicationStatus(actor(r).Username, id, req.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.DeleteApplication(actor(r).Username, id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
