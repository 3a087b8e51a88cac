package in

import (
	"context"

	"tutor/internal/modules/curriculum/dto"
	curriculumin "tutor/internal/modules/curriculum/port/in"
)

type CLIHandler struct {
	usecase curriculumin.Usecase
}

func NewCLIHandler(usecase curriculumin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) ListPlans(ctx context.Context) ([]dto.PlanOutput, error) {
	return h.usecase.ListPlans(ctx)
}

func (h CLIHandler) GetPlan(ctx context.Context, id string) (dto.PlanDetailOutput, error) {
	return h.usecase.GetPlan(ctx, id)
}

func (h CLIHandler) Reindex(ctx context.Context) error {
	return h.usecase.Reindex(ctx)
}
