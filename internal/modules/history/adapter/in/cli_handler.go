package in

import (
	"context"

	"tutor/internal/modules/history/dto"
	historyin "tutor/internal/modules/history/port/in"
)

type CLIHandler struct {
	usecase historyin.Usecase
}

func NewCLIHandler(usecase historyin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) ListRecords(ctx context.Context) ([]dto.RecordOutput, error) {
	return h.usecase.ListRecords(ctx)
}

func (h CLIHandler) GetRecord(ctx context.Context, sessionID string) (dto.RecordDetailOutput, error) {
	return h.usecase.GetRecord(ctx, sessionID)
}

func (h CLIHandler) Reindex(ctx context.Context) error {
	return h.usecase.Reindex(ctx)
}
