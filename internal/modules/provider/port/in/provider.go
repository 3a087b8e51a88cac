package in

import (
	"context"

	"tutor/internal/modules/provider/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.ProviderInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)

	// HasRole reports whether some enabled provider serves the role.
	// Bootstrap uses it to decide between a provider-backed collaborator
	// and the built-in heuristic.
	HasRole(ctx context.Context, role string) (bool, error)

	ScoreRelevance(ctx context.Context, input dto.ScoreInput) (dto.ScoreOutput, error)
	GenerateQuestions(ctx context.Context, input dto.GenerateInput) (dto.GenerateOutput, error)
	GradeAnswers(ctx context.Context, input dto.GradeInput) (dto.GradeOutput, error)
	Explain(ctx context.Context, input dto.ExplainInput) (dto.ExplainOutput, error)
}
