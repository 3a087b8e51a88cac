package in

import (
	"context"

	"tutor/internal/modules/provider/dto"
	providerin "tutor/internal/modules/provider/port/in"
)

type CLIHandler struct {
	usecase providerin.Usecase
}

func NewCLIHandler(usecase providerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.ProviderInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}
