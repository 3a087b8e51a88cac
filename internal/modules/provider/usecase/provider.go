package usecase

import (
	"context"

	"tutor/internal/modules/provider/domain"
	"tutor/internal/modules/provider/dto"
	providerin "tutor/internal/modules/provider/port/in"
	"tutor/internal/modules/provider/service"
)

type Interactor struct {
	svc *service.ProviderService
}

func NewInteractor(svc *service.ProviderService) providerin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.ProviderInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) HasRole(ctx context.Context, role string) (bool, error) {
	return i.svc.HasRole(ctx, domain.Role(role))
}

func (i *Interactor) ScoreRelevance(ctx context.Context, input dto.ScoreInput) (dto.ScoreOutput, error) {
	return i.svc.ScoreRelevance(ctx, input)
}

func (i *Interactor) GenerateQuestions(ctx context.Context, input dto.GenerateInput) (dto.GenerateOutput, error) {
	return i.svc.GenerateQuestions(ctx, input)
}

func (i *Interactor) GradeAnswers(ctx context.Context, input dto.GradeInput) (dto.GradeOutput, error) {
	return i.svc.GradeAnswers(ctx, input)
}

func (i *Interactor) Explain(ctx context.Context, input dto.ExplainInput) (dto.ExplainOutput, error) {
	return i.svc.Explain(ctx, input)
}
