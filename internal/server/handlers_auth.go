package server

import (
	"net/http"

	"github.com/jonathan/teammatch/internal/types"
	"go.uber.org/zap"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.Credentials
	if !s.decode(w, r, &req) {
		return
	}

	user, err := s.userService.Login(r.Context(), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		s.logger.Error("failed to generate token", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to generate token")
		return
	}

	s.jsonResponse(w, http.StatusOK, types.LoginResponse{
		Token:    token,
		Username: user.Username,
		Email:    user.Email,
		UserID:   user.ID,
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req types.SignupRequest
	if !s.decode(w, r, &req) {
		return
	}
	user, err := s.userService.Register(r.Context(), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, user)
}

// handleLogout acknowledges a logout. Tokens are stateless, so there is
// nothing to revoke.
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.User(actor(r).UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.store.Users())
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	user, err := s.store.User(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req types.UpdateUserRequest
	if !s.decode(w, r, &req) {
		return
	}
	user, err := s.store.UpdateUser(actor(r).UserID, id, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, user)
}
