package service

import (
	"context"
	"fmt"

	"tutor/internal/modules/curriculum/domain"
	curriculumout "tutor/internal/modules/curriculum/port/out"
)

type PlanService struct {
	store curriculumout.PlanStore
}

func NewPlanService(store curriculumout.PlanStore) *PlanService {
	return &PlanService{store: store}
}

func (s *PlanService) Get(ctx context.Context, id string) (domain.Plan, error) {
	if id == "" {
		return domain.Plan{}, fmt.Errorf("plan id is required")
	}
	plan, err := s.store.Load(ctx, id)
	if err != nil {
		return domain.Plan{}, err
	}
	if err := plan.Validate(); err != nil {
		return domain.Plan{}, fmt.Errorf("plan %s: %w", id, err)
	}
	return plan, nil
}

func (s *PlanService) List(ctx context.Context) ([]domain.Plan, error) {
	plans, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	valid := make([]domain.Plan, 0, len(plans))
	for _, plan := range plans {
		if err := plan.Validate(); err != nil {
			return nil, err
		}
		valid = append(valid, plan)
	}
	return valid, nil
}
