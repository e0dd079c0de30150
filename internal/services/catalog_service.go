package services

import (
	"context"
	"strings"

	"pfm/internal/core"
	"pfm/internal/storage"
)

// CategoryService manages the shared expense categories. Milestone rules
// match categories by name, so renames and deletes drop every cached report.
type CategoryService struct {
	store      storage.CategoryStore
	milestones *MilestoneService
}

func NewCategoryService(store storage.CategoryStore, ms *MilestoneService) *CategoryService {
	return &CategoryService{store: store, milestones: ms}
}

func (s *CategoryService) Create(ctx context.Context, name string) (core.Category, error) {
	c := core.Category{Name: strings.TrimSpace(name)}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return s.store.CreateCategory(ctx, c.Name)
}

func (s *CategoryService) Get(ctx context.Context, id int64) (core.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *CategoryService) Update(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	updated, err := s.store.UpdateCategory(ctx, c)
	if err != nil {
		return core.Category{}, err
	}
	if s.milestones != nil {
		s.milestones.InvalidateAll(ctx)
	}
	return updated, nil
}

// Delete fails with core.ErrConflict while expenses still reference the
// category.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	if s.milestones != nil {
		s.milestones.InvalidateAll(ctx)
	}
	return nil
}

// ChildrenService manages planned education contributions. Changes only
// invalidate the cached report; the persisted statuses follow on the next
// questionnaire write.
type ChildrenService struct {
	store      storage.ChildrenStore
	milestones *MilestoneService
}

func NewChildrenService(store storage.ChildrenStore, ms *MilestoneService) *ChildrenService {
	return &ChildrenService{store: store, milestones: ms}
}

func (s *ChildrenService) Create(ctx context.Context, c core.ChildrenContribution) (core.ChildrenContribution, error) {
	if err := c.Validate(); err != nil {
		return core.ChildrenContribution{}, err
	}
	created, err := s.store.CreateChild(ctx, c)
	if err != nil {
		return core.ChildrenContribution{}, err
	}
	s.invalidate(ctx, c.UserID)
	return created, nil
}

func (s *ChildrenService) Get(ctx context.Context, userID, id int64) (core.ChildrenContribution, error) {
	return s.store.GetChild(ctx, userID, id)
}

func (s *ChildrenService) List(ctx context.Context, userID int64) ([]core.ChildrenContribution, error) {
	return s.store.ListChildren(ctx, userID)
}

func (s *ChildrenService) Update(ctx context.Context, c core.ChildrenContribution) (core.ChildrenContribution, error) {
	if err := c.Validate(); err != nil {
		return core.ChildrenContribution{}, err
	}
	updated, err := s.store.UpdateChild(ctx, c)
	if err != nil {
		return core.ChildrenContribution{}, err
	}
	s.invalidate(ctx, c.UserID)
	return updated, nil
}

func (s *ChildrenService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteChild(ctx, userID, id); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *ChildrenService) invalidate(ctx context.Context, userID int64) {
	if s.milestones != nil {
		s.milestones.Invalidate(ctx, userID)
	}
}
