package http

import (
	"net/http"
	"strings"

	"pfm/internal/log"
	"pfm/internal/services"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := DecodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	in.Username = sanitizeInput(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	session, err := s.deps.Users.Register(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "User registered",
		log.FieldUserID, session.User.ID,
		log.FieldOperation, log.OpCreate)
	NewResponse().Status(http.StatusCreated).JSON(session).Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := DecodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	session, err := s.deps.Users.Login(r.Context(), strings.TrimSpace(in.Email), in.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().JSON(session).Write(w)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.deps.Users.Get(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().JSON(u).Write(w)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := PathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if id != userID {
		s.writeError(w, r, services.ErrForbidden)
		return
	}
	u, err := s.deps.Users.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().JSON(u).Write(w)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := PathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var patch services.UserPatch
	if err := DecodeJSON(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	if patch.Username != nil {
		name := sanitizeInput(*patch.Username)
		patch.Username = &name
	}

	u, err := s.deps.Users.Update(r.Context(), userID, id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().JSON(u).Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.deps.Users.Dashboard(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().JSON(d).Write(w)
}
