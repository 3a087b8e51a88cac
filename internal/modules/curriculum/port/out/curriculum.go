package out

import (
	"context"

	"tutor/internal/modules/curriculum/domain"
)

type PlanStore interface {
	Load(ctx context.Context, id string) (domain.Plan, error)
	List(ctx context.Context) ([]domain.Plan, error)
}

type PlanIndexProjector interface {
	Reset(ctx context.Context) error
	UpsertPlan(ctx context.Context, plan domain.Plan) error
}
