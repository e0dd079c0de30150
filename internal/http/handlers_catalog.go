package http

import (
	"net/http"

	"pfm/internal/core"
)

type categoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.deps.Categories.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	NewResponse().JSON(cats).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryRequest
	if err := DecodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.deps.Categories.Create(r.Context(), sanitizeInput(in.Name))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(c).Write(w)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.deps.Categories.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().JSON(c).Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in categoryRequest
	if err := DecodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.deps.Categories.Update(r.Context(), core.Category{ID: id, Name: sanitizeInput(in.Name)})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().JSON(c).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Categories.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListChildren(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	children, err := s.deps.Children.List(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if children == nil {
		children = []core.ChildrenContribution{}
	}
	NewResponse().JSON(children).Write(w)
}

func (s *Server) handleCreateChild(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var c core.ChildrenContribution
	if err := DecodeJSON(r, &c); err != nil {
		s.writeError(w, r, err)
		return
	}
	c.ID = 0
	c.UserID = userID
	c.ChildName = sanitizeInput(c.ChildName)
	c.ParentName = sanitizeInput(c.ParentName)

	created, err := s.deps.Children.Create(r.Context(), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(created).Write(w)
}

func (s *Server) handleGetChild(w http.ResponseWriter, r *http.Request) {
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
	c, err := s.deps.Children.Get(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().JSON(c).Write(w)
}

func (s *Server) handleUpdateChild(w http.ResponseWriter, r *http.Request) {
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
	var c core.ChildrenContribution
	if err := DecodeJSON(r, &c); err != nil {
		s.writeError(w, r, err)
		return
	}
	c.ID = id
	c.UserID = userID
	c.ChildName = sanitizeInput(c.ChildName)
	c.ParentName = sanitizeInput(c.ParentName)

	updated, err := s.deps.Children.Update(r.Context(), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().JSON(updated).Write(w)
}

func (s *Server) handleDeleteChild(w http.ResponseWriter, r *http.Request) {
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
	if err := s.deps.Children.Delete(r.Context(), userID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
