package out

import (
	"context"
	"fmt"

	providerdto "tutor/internal/modules/provider/dto"
	providerin "tutor/internal/modules/provider/port/in"
	"tutor/internal/modules/session/domain"
	sessionout "tutor/internal/modules/session/port/out"
)

// Provider-backed collaborators. Each one adapts a provider role to the
// engine's port, fetching the indexed chunks so the provider sees the same
// context the heuristics do.

type ProviderScorer struct {
	providers providerin.Usecase
}

func NewProviderScorer(providers providerin.Usecase) sessionout.RelevanceScorer {
	return &ProviderScorer{providers: providers}
}

func (s *ProviderScorer) Score(ctx context.Context, topic string, objectives []string, items []domain.ContentItem) ([]domain.ContentItem, error) {
	input := providerdto.ScoreInput{Topic: topic, Objectives: objectives}
	for _, item := range items {
		input.Items = append(input.Items, providerdto.ContentItemPayload{Origin: item.Origin, Text: item.Text})
	}
	output, err := s.providers.ScoreRelevance(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(output.Scores) != len(items) {
		return nil, fmt.Errorf("provider scored %d of %d items", len(output.Scores), len(items))
	}
	scored := make([]domain.ContentItem, len(items))
	for i, item := range items {
		value := output.Scores[i]
		item.RelevanceScore = &value
		scored[i] = item
	}
	return scored, nil
}

type ProviderGenerator struct {
	providers providerin.Usecase
	indexer   sessionout.ContentIndexer
}

func NewProviderGenerator(providers providerin.Usecase, indexer sessionout.ContentIndexer) sessionout.AssessmentGenerator {
	return &ProviderGenerator{providers: providers, indexer: indexer}
}

func (g *ProviderGenerator) Generate(ctx context.Context, checkpoint domain.Checkpoint, ref domain.IndexedContext, minQ, maxQ int) ([]domain.Question, error) {
	chunks, err := g.indexer.Chunks(ctx, ref)
	if err != nil {
		return nil, err
	}
	output, err := g.providers.GenerateQuestions(ctx, providerdto.GenerateInput{
		Topic:        checkpoint.Topic,
		Objectives:   checkpoint.Objectives,
		Difficulty:   checkpoint.Difficulty,
		ContextText:  chunks,
		MinQuestions: minQ,
		MaxQuestions: maxQ,
	})
	if err != nil {
		return nil, err
	}
	questions := make([]domain.Question, 0, len(output.Questions))
	for _, question := range output.Questions {
		questions = append(questions, domain.Question{
			ID:           question.ID,
			Text:         question.Text,
			ObjectiveRef: question.ObjectiveRef,
			Difficulty:   question.Difficulty,
		})
	}
	return questions, nil
}

type ProviderGrader struct {
	providers providerin.Usecase
	indexer   sessionout.ContentIndexer
}

func NewProviderGrader(providers providerin.Usecase, indexer sessionout.ContentIndexer) sessionout.AnswerGrader {
	return &ProviderGrader{providers: providers, indexer: indexer}
}

func (g *ProviderGrader) Grade(ctx context.Context, checkpoint domain.Checkpoint, ref domain.IndexedContext, questions []domain.Question, answers []domain.Answer) (domain.EvaluationResult, error) {
	chunks, err := g.indexer.Chunks(ctx, ref)
	if err != nil {
		return domain.EvaluationResult{}, err
	}
	input := providerdto.GradeInput{
		Topic:       checkpoint.Topic,
		Objectives:  checkpoint.Objectives,
		ContextText: chunks,
	}
	for _, question := range questions {
		input.Questions = append(input.Questions, providerdto.QuestionPayload{
			ID:           question.ID,
			Text:         question.Text,
			ObjectiveRef: question.ObjectiveRef,
			Difficulty:   question.Difficulty,
		})
	}
	for _, answer := range answers {
		input.Answers = append(input.Answers, providerdto.AnswerPayload{QuestionID: answer.QuestionID, Text: answer.Text})
	}
	output, err := g.providers.GradeAnswers(ctx, input)
	if err != nil {
		return domain.EvaluationResult{}, err
	}
	return domain.EvaluationResult{
		PerQuestion:    output.PerQuestion,
		OverallScore:   output.OverallScore,
		WeakObjectives: output.WeakObjectives,
	}, nil
}

type ProviderExplainer struct {
	providers providerin.Usecase
	indexer   sessionout.ContentIndexer
}

func NewProviderExplainer(providers providerin.Usecase, indexer sessionout.ContentIndexer) sessionout.RemediationExplainer {
	return &ProviderExplainer{providers: providers, indexer: indexer}
}

func (e *ProviderExplainer) Explain(ctx context.Context, checkpoint domain.Checkpoint, ref domain.IndexedContext, weakObjectives []string, attempt int) (map[string]string, error) {
	chunks, err := e.indexer.Chunks(ctx, ref)
	if err != nil {
		return nil, err
	}
	output, err := e.providers.Explain(ctx, providerdto.ExplainInput{
		Topic:          checkpoint.Topic,
		ContextText:    chunks,
		WeakObjectives: weakObjectives,
		Attempt:        attempt,
	})
	if err != nil {
		return nil, err
	}
	return output.Explanations, nil
}
