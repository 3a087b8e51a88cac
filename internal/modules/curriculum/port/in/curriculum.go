package in

import (
	"context"

	"tutor/internal/modules/curriculum/dto"
)

type Usecase interface {
	ListPlans(ctx context.Context) ([]dto.PlanOutput, error)
	GetPlan(ctx context.Context, id string) (dto.PlanDetailOutput, error)
	Reindex(ctx context.Context) error
}
