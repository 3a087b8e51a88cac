package out

import (
	"context"

	"tutor/internal/modules/session/domain"
)

// CollectRequest describes one gathering round. Attempt starts at 1 and
// grows with every re-gather so collectors can broaden their strategy.
type CollectRequest struct {
	Topic      string
	Objectives []string
	Attempt    int
}

// ContentCollector acquires raw learning material for a checkpoint.
type ContentCollector interface {
	Collect(ctx context.Context, req CollectRequest) ([]domain.ContentItem, error)
}

// RelevanceScorer assigns each item a relevance score in [0,1] against the
// checkpoint's topic and objectives.
type RelevanceScorer interface {
	Score(ctx context.Context, topic string, objectives []string, items []domain.ContentItem) ([]domain.ContentItem, error)
}

// ContentIndexer chunks and stores accepted content, returning an opaque
// handle the rest of the pipeline queries by.
type ContentIndexer interface {
	Index(ctx context.Context, sessionID string, checkpointIndex int, items []domain.ContentItem) (domain.IndexedContext, error)
	Chunks(ctx context.Context, ref domain.IndexedContext) ([]string, error)
}

// AssessmentGenerator produces questions for the checkpoint from the
// indexed context. The engine validates the count against policy.
type AssessmentGenerator interface {
	Generate(ctx context.Context, checkpoint domain.Checkpoint, ref domain.IndexedContext, min, max int) ([]domain.Question, error)
}

// AnswerGrader scores learner answers. Per-question scores and the overall
// score are in [0,1]; the engine recomputes pass/fail itself.
type AnswerGrader interface {
	Grade(ctx context.Context, checkpoint domain.Checkpoint, ref domain.IndexedContext, questions []domain.Question, answers []domain.Answer) (domain.EvaluationResult, error)
}

// RemediationExplainer produces a plain-language explanation per weak
// objective, grounded in the indexed context.
type RemediationExplainer interface {
	Explain(ctx context.Context, checkpoint domain.Checkpoint, ref domain.IndexedContext, weakObjectives []string, attempt int) (map[string]string, error)
}

// SessionStateStore persists the single active session between invocations.
type SessionStateStore interface {
	Save(ctx context.Context, state domain.SessionState) error
	Load(ctx context.Context) (domain.SessionState, error)
	Clear(ctx context.Context) error
}

// AuditProjector mirrors transition records into the read model.
type AuditProjector interface {
	Append(ctx context.Context, sessionID string, records []domain.TransitionRecord) error
}

// CompletionRecorder archives a finished session. Called once, after the
// machine reaches SessionComplete.
type CompletionRecorder interface {
	Record(ctx context.Context, state domain.SessionState) error
}
