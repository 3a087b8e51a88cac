package out

import (
	"context"

	"tutor/internal/modules/provider/domain"
	"tutor/internal/modules/provider/dto"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	ScoreRelevance(ctx context.Context, manifest domain.Manifest, input dto.ScoreInput) (dto.ScoreOutput, error)
	GenerateQuestions(ctx context.Context, manifest domain.Manifest, input dto.GenerateInput) (dto.GenerateOutput, error)
	GradeAnswers(ctx context.Context, manifest domain.Manifest, input dto.GradeInput) (dto.GradeOutput, error)
	Explain(ctx context.Context, manifest domain.Manifest, input dto.ExplainInput) (dto.ExplainOutput, error)
}
