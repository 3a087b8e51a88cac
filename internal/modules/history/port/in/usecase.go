package in

import (
	"context"

	"tutor/internal/modules/history/dto"
)

type Usecase interface {
	Record(ctx context.Context, input dto.RecordInput) error
	ListRecords(ctx context.Context) ([]dto.RecordOutput, error)
	GetRecord(ctx context.Context, sessionID string) (dto.RecordDetailOutput, error)
	Reindex(ctx context.Context) error
}
