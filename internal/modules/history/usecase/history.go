package usecase

import (
	"context"

	"tutor/internal/modules/history/domain"
	"tutor/internal/modules/history/dto"
	historyin "tutor/internal/modules/history/port/in"
	historyout "tutor/internal/modules/history/port/out"
	"tutor/internal/modules/history/service"

	hclog "github.com/hashicorp/go-hclog"
)

type Interactor struct {
	svc       *service.RecordService
	projector historyout.RecordProjector
	logger    hclog.Logger
}

func NewInteractor(svc *service.RecordService, projector historyout.RecordProjector, logger hclog.Logger) historyin.Usecase {
	return &Interactor{svc: svc, projector: projector, logger: logger}
}

func (i *Interactor) Record(ctx context.Context, input dto.RecordInput) error {
	record := domain.SessionRecord{
		SessionID:       input.SessionID,
		PlanID:          input.PlanID,
		PlanTitle:       input.PlanTitle,
		StartedAt:       input.StartedAt,
		CompletedAt:     input.CompletedAt,
		CheckpointCount: input.CheckpointCount,
		MasteredCount:   input.MasteredCount,
	}
	for _, outcome := range input.Outcomes {
		record.Outcomes = append(record.Outcomes, domain.CheckpointOutcome{
			OrderIndex:          outcome.OrderIndex,
			Topic:               outcome.Topic,
			Score:               outcome.Score,
			Mastered:            outcome.Mastered,
			RemediationAttempts: outcome.RemediationAttempts,
			ForcedContent:       outcome.ForcedContent,
		})
	}

	path, err := i.svc.Save(ctx, record)
	if err != nil {
		return err
	}
	if err := i.projector.Upsert(ctx, record); err != nil {
		i.logger.Warn("record projection failed", "session_id", record.SessionID, "error", err)
	}
	i.logger.Info("session archived", "session_id", record.SessionID, "path", path)
	return nil
}

func (i *Interactor) ListRecords(ctx context.Context) ([]dto.RecordOutput, error) {
	records, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RecordOutput, 0, len(records))
	for _, record := range records {
		out = append(out, dto.RecordOutput{
			SessionID:       record.SessionID,
			PlanID:          record.PlanID,
			PlanTitle:       record.PlanTitle,
			CompletedAt:     record.CompletedAt,
			CheckpointCount: record.CheckpointCount,
			MasteredCount:   record.MasteredCount,
		})
	}
	return out, nil
}

func (i *Interactor) GetRecord(ctx context.Context, sessionID string) (dto.RecordDetailOutput, error) {
	record, err := i.svc.Get(ctx, sessionID)
	if err != nil {
		return dto.RecordDetailOutput{}, err
	}
	detail := dto.RecordDetailOutput{
		SessionID:       record.SessionID,
		PlanID:          record.PlanID,
		PlanTitle:       record.PlanTitle,
		StartedAt:       record.StartedAt,
		CompletedAt:     record.CompletedAt,
		CheckpointCount: record.CheckpointCount,
		MasteredCount:   record.MasteredCount,
		MasteryRate:     record.MasteryRate(),
	}
	for _, outcome := range record.Outcomes {
		detail.Outcomes = append(detail.Outcomes, dto.OutcomeOutput{
			OrderIndex:          outcome.OrderIndex,
			Topic:               outcome.Topic,
			Score:               outcome.Score,
			Mastered:            outcome.Mastered,
			RemediationAttempts: outcome.RemediationAttempts,
			ForcedContent:       outcome.ForcedContent,
		})
	}
	return detail, nil
}

func (i *Interactor) Reindex(ctx context.Context) error {
	records, err := i.svc.List(ctx)
	if err != nil {
		return err
	}
	if err := i.projector.Reset(ctx); err != nil {
		return err
	}
	for _, record := range records {
		if err := i.projector.Upsert(ctx, record); err != nil {
			return err
		}
	}
	return nil
}
