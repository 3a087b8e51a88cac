package usecase

import (
	"context"

	"tutor/internal/modules/curriculum/dto"
	curriculumin "tutor/internal/modules/curriculum/port/in"
	curriculumout "tutor/internal/modules/curriculum/port/out"
	"tutor/internal/modules/curriculum/service"
)

type Interactor struct {
	svc       *service.PlanService
	projector curriculumout.PlanIndexProjector
}

func NewInteractor(svc *service.PlanService, projector curriculumout.PlanIndexProjector) curriculumin.Usecase {
	return &Interactor{svc: svc, projector: projector}
}

func (i *Interactor) ListPlans(ctx context.Context) ([]dto.PlanOutput, error) {
	plans, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PlanOutput, 0, len(plans))
	for _, plan := range plans {
		out = append(out, dto.PlanOutput{
			ID:          plan.ID,
			Title:       plan.Title,
			Checkpoints: len(plan.Checkpoints),
			UpdatedAt:   plan.UpdatedAt,
		})
	}
	return out, nil
}

func (i *Interactor) GetPlan(ctx context.Context, id string) (dto.PlanDetailOutput, error) {
	plan, err := i.svc.Get(ctx, id)
	if err != nil {
		return dto.PlanDetailOutput{}, err
	}
	detail := dto.PlanDetailOutput{ID: plan.ID, Title: plan.Title, UpdatedAt: plan.UpdatedAt}
	for _, checkpoint := range plan.Checkpoints {
		detail.Checkpoints = append(detail.Checkpoints, dto.CheckpointOutput{
			OrderIndex: checkpoint.OrderIndex,
			Topic:      checkpoint.Topic,
			Difficulty: string(checkpoint.Difficulty),
			Objectives: checkpoint.Objectives,
		})
	}
	return detail, nil
}

func (i *Interactor) Reindex(ctx context.Context) error {
	plans, err := i.svc.List(ctx)
	if err != nil {
		return err
	}
	if err := i.projector.Reset(ctx); err != nil {
		return err
	}
	for _, plan := range plans {
		if err := i.projector.UpsertPlan(ctx, plan); err != nil {
			return err
		}
	}
	return nil
}
