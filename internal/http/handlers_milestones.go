package http

import (
	"net/http"

	"pfm/internal/core"
	"pfm/internal/log"
	"pfm/internal/milestones"
	"pfm/internal/services"
)

func (s *Server) handleListMilestones(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(milestones.All()).Write(w)
}

func (s *Server) handleUserMilestones(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	statuses, err := s.deps.Milestones.Statuses(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if statuses == nil {
		statuses = []core.UserMilestoneStatus{}
	}
	NewResponse().JSON(statuses).Write(w)
}

// handleMilestonesStatus evaluates the Baby Steps report. user_id defaults
// to the caller; asking for anyone else is forbidden.
func (s *Server) handleMilestonesStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	target, ok, err := QueryID(r.URL.Query(), "user_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ok && target != userID {
		s.writeError(w, r, services.ErrForbidden)
		return
	}

	report, err := s.deps.Milestones.Evaluate(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// An unknown user is a report shape, not a fault.
	NewResponse().JSON(report).Write(w)
}

func (s *Server) handleListResponses(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.deps.Questionnaires.List(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []core.QuestionnaireResponse{}
	}
	NewResponse().JSON(list).Write(w)
}

func (s *Server) handleCreateResponse(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var q core.QuestionnaireResponse
	if err := DecodeJSON(r, &q); err != nil {
		s.writeError(w, r, err)
		return
	}
	q.ID = 0
	q.UserID = userID

	created, err := s.deps.Questionnaires.Create(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "Questionnaire submitted",
		log.FieldUserID, userID,
		"response_id", created.ID)
	NewResponse().Status(http.StatusCreated).JSON(created).Write(w)
}

func (s *Server) handleGetResponse(w http.ResponseWriter, r *http.Request) {
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
	q, err := s.deps.Questionnaires.Get(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().JSON(q).Write(w)
}

func (s *Server) handleUpdateResponse(w http.ResponseWriter, r *http.Request) {
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
	var q core.QuestionnaireResponse
	if err := DecodeJSON(r, &q); err != nil {
		s.writeError(w, r, err)
		return
	}
	q.ID = id
	q.UserID = userID

	updated, err := s.deps.Questionnaires.Update(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().JSON(updated).Write(w)
}
