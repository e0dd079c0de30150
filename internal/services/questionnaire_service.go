package services

import (
	"context"
	"fmt"

	"pfm/internal/core"
	"pfm/internal/storage"
)

// QuestionnaireService stores questionnaire responses. Every write re-runs
// the milestone sync for the user.
type QuestionnaireService struct {
	store      storage.Store
	milestones *MilestoneService
}

func NewQuestionnaireService(store storage.Store, ms *MilestoneService) *QuestionnaireService {
	return &QuestionnaireService{store: store, milestones: ms}
}

func (s *QuestionnaireService) Create(ctx context.Context, r core.QuestionnaireResponse) (core.QuestionnaireResponse, error) {
	if err := r.Validate(); err != nil {
		return core.QuestionnaireResponse{}, err
	}
	r.SubmittedAt = s.milestones.now().UTC()
	created, err := s.store.CreateResponse(ctx, r)
	if err != nil {
		return core.QuestionnaireResponse{}, fmt.Errorf("save questionnaire response: %w", err)
	}
	if err := s.milestones.RecalculateAndNotify(ctx, r.UserID); err != nil {
		return created, err
	}
	return created, nil
}

func (s *QuestionnaireService) Update(ctx context.Context, r core.QuestionnaireResponse) (core.QuestionnaireResponse, error) {
	if err := r.Validate(); err != nil {
		return core.QuestionnaireResponse{}, err
	}
	updated, err := s.store.UpdateResponse(ctx, r)
	if err != nil {
		return core.QuestionnaireResponse{}, err
	}
	if err := s.milestones.RecalculateAndNotify(ctx, r.UserID); err != nil {
		return updated, err
	}
	return updated, nil
}

func (s *QuestionnaireService) Get(ctx context.Context, userID, id int64) (core.QuestionnaireResponse, error) {
	return s.store.GetResponse(ctx, userID, id)
}

func (s *QuestionnaireService) List(ctx context.Context, userID int64) ([]core.QuestionnaireResponse, error) {
	return s.store.ListResponses(ctx, userID)
}
