package service

import (
	"context"
	"fmt"

	"tutor/internal/modules/session/domain"
	sessionout "tutor/internal/modules/session/port/out"
	"tutor/internal/platform/clock"
	apperrors "tutor/internal/platform/errors"
)

// EngineService executes the checkpoint orchestration machine. Step performs
// exactly one transition per call; drivers loop over it. Collaborator
// failures land the state in Failed instead of returning an error, so the
// caller can persist the terminal state. Only learner-input problems come
// back as errors, leaving the state untouched.
type EngineService struct {
	collector sessionout.ContentCollector
	scorer    sessionout.RelevanceScorer
	indexer   sessionout.ContentIndexer
	generator sessionout.AssessmentGenerator
	grader    sessionout.AnswerGrader
	explainer sessionout.RemediationExplainer
	policy    domain.Policy
	clock     clock.Clock
}

func NewEngineService(
	collector sessionout.ContentCollector,
	scorer sessionout.RelevanceScorer,
	indexer sessionout.ContentIndexer,
	generator sessionout.AssessmentGenerator,
	grader sessionout.AnswerGrader,
	explainer sessionout.RemediationExplainer,
	policy domain.Policy,
	clk clock.Clock,
) (*EngineService, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &EngineService{
		collector: collector,
		scorer:    scorer,
		indexer:   indexer,
		generator: generator,
		grader:    grader,
		explainer: explainer,
		policy:    policy,
		clock:     clk,
	}, nil
}

func (e *EngineService) Policy() domain.Policy {
	return e.policy
}

// Step advances the machine by one transition. Answers are only consumed in
// AwaitingAnswers; everywhere else they must be empty.
func (e *EngineService) Step(ctx context.Context, state *domain.SessionState, answers []domain.Answer) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if state.Phase.Terminal() {
		return nil
	}
	if len(answers) > 0 && !state.Phase.AwaitsInput() {
		return fmt.Errorf("%w: answers are not expected in phase %s", apperrors.ErrInvalidInput, state.Phase)
	}

	switch state.Phase {
	case domain.PhaseInit:
		return e.stepInit(state)
	case domain.PhaseGatheringContent:
		return e.stepGather(ctx, state)
	case domain.PhaseValidatingContent:
		return e.stepValidate(ctx, state)
	case domain.PhaseIndexingContent:
		return e.stepIndex(ctx, state)
	case domain.PhaseGeneratingQuestions:
		return e.stepGenerate(ctx, state)
	case domain.PhaseAwaitingAnswers:
		return e.stepAwait(state, answers)
	case domain.PhaseEvaluating:
		return e.stepEvaluate(ctx, state)
	case domain.PhaseCheckingThreshold:
		return e.stepThreshold(state)
	case domain.PhaseRemediating:
		return e.stepRemediate(ctx, state)
	case domain.PhaseCheckpointComplete:
		return e.stepComplete(state)
	default:
		return fmt.Errorf("%w: phase %s has no handler", apperrors.ErrInvalidInput, state.Phase)
	}
}

func (e *EngineService) stepInit(state *domain.SessionState) error {
	if _, err := state.Current(); err != nil {
		state.Transition(e.clock.Now(), domain.PhaseSessionComplete, "plan_finished")
		return nil
	}
	state.Transition(e.clock.Now(), domain.PhaseGatheringContent, "checkpoint_ready")
	return nil
}

func (e *EngineService) stepGather(ctx context.Context, state *domain.SessionState) error {
	checkpoint, err := state.Current()
	if err != nil {
		return err
	}
	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	items, err := e.collector.Collect(callCtx, sessionout.CollectRequest{
		Topic:      checkpoint.Topic,
		Objectives: checkpoint.Objectives,
		Attempt:    state.ContentRetryCount + 1,
	})
	if err != nil {
		// Transient collector failures consume the content retry budget
		// before the session gives up.
		state.ContentRetryCount++
		if state.ContentRetryCount >= e.policy.MaxContentRetries {
			state.ContentRetryCount = e.policy.MaxContentRetries
			state.Fail(e.clock.Now(), "collector_exhausted", fmt.Errorf("%w: %v", apperrors.ErrCollaboratorUnavailable, err))
			return nil
		}
		state.Transition(e.clock.Now(), domain.PhaseGatheringContent, "collector_retry")
		return nil
	}
	state.Content = items
	state.Transition(e.clock.Now(), domain.PhaseValidatingContent, "content_gathered")
	return nil
}

func (e *EngineService) stepValidate(ctx context.Context, state *domain.SessionState) error {
	checkpoint, err := state.Current()
	if err != nil {
		return err
	}
	if len(state.Content) > 0 {
		callCtx, cancel := e.callContext(ctx)
		defer cancel()

		scored, err := e.scorer.Score(callCtx, checkpoint.Topic, checkpoint.Objectives, state.Content)
		if err != nil {
			state.Fail(e.clock.Now(), "scorer_failed", fmt.Errorf("%w: %v", apperrors.ErrCollaboratorUnavailable, err))
			return nil
		}
		for i, item := range scored {
			if item.RelevanceScore != nil && (*item.RelevanceScore < 0 || *item.RelevanceScore > 1) {
				state.Fail(e.clock.Now(), "scorer_invalid", fmt.Errorf("%w: item %d relevance %g out of range", apperrors.ErrInvalidCollaboratorOutput, i, *item.RelevanceScore))
				return nil
			}
		}
		state.Content = scored
	}

	decision := domain.DecideValidation(domain.MeanRelevance(state.Content), state.ContentRetryCount, e.policy)
	state.ContentRetryCount = decision.RetryCount
	if decision.Forced {
		state.ForcedContent = true
	}
	if decision.Next == domain.PhaseGatheringContent {
		state.Content = nil
	}
	state.Transition(e.clock.Now(), decision.Next, decision.Condition)
	return nil
}

func (e *EngineService) stepIndex(ctx context.Context, state *domain.SessionState) error {
	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	ref, err := e.indexer.Index(callCtx, state.SessionID, state.CurrentIndex, state.Content)
	if err != nil {
		state.Fail(e.clock.Now(), "indexer_failed", fmt.Errorf("%w: %v", apperrors.ErrCollaboratorUnavailable, err))
		return nil
	}
	if ref.Empty() {
		state.Fail(e.clock.Now(), "indexer_invalid", fmt.Errorf("%w: indexer returned no handle", apperrors.ErrInvalidCollaboratorOutput))
		return nil
	}
	state.Context = ref
	state.Transition(e.clock.Now(), domain.PhaseGeneratingQuestions, "content_indexed")
	return nil
}

func (e *EngineService) stepGenerate(ctx context.Context, state *domain.SessionState) error {
	checkpoint, err := state.Current()
	if err != nil {
		return err
	}
	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	questions, err := e.generator.Generate(callCtx, checkpoint, state.Context, e.policy.MinQuestions, e.policy.MaxQuestions)
	if err != nil {
		state.Fail(e.clock.Now(), "generator_failed", fmt.Errorf("%w: %v", apperrors.ErrCollaboratorUnavailable, err))
		return nil
	}
	if len(questions) == 0 {
		if e.policy.RegenerateOnEmpty && !state.RegenAttempted {
			state.RegenAttempted = true
			state.Transition(e.clock.Now(), domain.PhaseGeneratingQuestions, "regenerate_questions")
			return nil
		}
		state.Fail(e.clock.Now(), "generator_empty", fmt.Errorf("%w: generator produced no questions", apperrors.ErrInvalidCollaboratorOutput))
		return nil
	}
	if err := validateQuestions(questions, e.policy); err != nil {
		state.Fail(e.clock.Now(), "generator_invalid", fmt.Errorf("%w: %v", apperrors.ErrInvalidCollaboratorOutput, err))
		return nil
	}
	state.Questions = questions
	state.Answers = nil
	state.Transition(e.clock.Now(), domain.PhaseAwaitingAnswers, "questions_ready")
	return nil
}

func (e *EngineService) stepAwait(state *domain.SessionState, answers []domain.Answer) error {
	if len(answers) == 0 {
		// Waiting for the learner. Not a transition, not an error.
		return nil
	}
	if err := domain.ValidateAnswers(state.Questions, answers); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	state.Answers = answers
	state.Transition(e.clock.Now(), domain.PhaseEvaluating, "answers_received")
	return nil
}

func (e *EngineService) stepEvaluate(ctx context.Context, state *domain.SessionState) error {
	checkpoint, err := state.Current()
	if err != nil {
		return err
	}
	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	result, err := e.grader.Grade(callCtx, checkpoint, state.Context, state.Questions, state.Answers)
	if err != nil {
		state.Fail(e.clock.Now(), "grader_failed", fmt.Errorf("%w: %v", apperrors.ErrCollaboratorUnavailable, err))
		return nil
	}
	if err := result.Validate(state.Questions); err != nil {
		state.Fail(e.clock.Now(), "grader_invalid", fmt.Errorf("%w: %v", apperrors.ErrInvalidCollaboratorOutput, err))
		return nil
	}
	// The pass verdict belongs to the policy, not the grader.
	result.Passed = result.OverallScore >= e.policy.PassThreshold
	if !result.Passed && len(result.WeakObjectives) == 0 {
		result.WeakObjectives = domain.WeakObjectives(state.Questions, result.PerQuestion, e.policy.PerQuestionCutoff)
	}
	state.Evaluation = &result
	state.Transition(e.clock.Now(), domain.PhaseCheckingThreshold, "graded")
	return nil
}

func (e *EngineService) stepThreshold(state *domain.SessionState) error {
	if state.Evaluation == nil {
		return fmt.Errorf("%w: threshold check without evaluation", apperrors.ErrInvalidInput)
	}
	decision := domain.DecideThreshold(state.Evaluation.OverallScore, state.RemediationAttemptCount, e.policy)
	switch decision.Next {
	case domain.PhaseCheckpointComplete:
		state.CompleteCheckpoint(e.clock.Now(), decision.Condition, state.Evaluation.OverallScore, decision.Mastered)
	case domain.PhaseRemediating:
		state.RemediationAttemptCount = decision.Attempts
		state.Transition(e.clock.Now(), domain.PhaseRemediating, decision.Condition)
	}
	return nil
}

func (e *EngineService) stepRemediate(ctx context.Context, state *domain.SessionState) error {
	checkpoint, err := state.Current()
	if err != nil {
		return err
	}
	weak := []string{}
	if state.Evaluation != nil {
		weak = state.Evaluation.WeakObjectives
	}
	if len(weak) == 0 {
		weak = checkpoint.Objectives
	}
	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	explanations, err := e.explainer.Explain(callCtx, checkpoint, state.Context, weak, state.RemediationAttemptCount)
	if err != nil {
		state.Fail(e.clock.Now(), "explainer_failed", fmt.Errorf("%w: %v", apperrors.ErrCollaboratorUnavailable, err))
		return nil
	}
	state.Remediation = explanations
	// Re-assess against the same indexed context; content is never
	// re-gathered during remediation.
	state.ResetAssessment()
	state.Transition(e.clock.Now(), domain.PhaseGeneratingQuestions, "remediation_delivered")
	return nil
}

func (e *EngineService) stepComplete(state *domain.SessionState) error {
	if state.Remaining() > 0 {
		state.NextCheckpoint(e.clock.Now())
		return nil
	}
	state.Transition(e.clock.Now(), domain.PhaseSessionComplete, "plan_finished")
	return nil
}

func validateQuestions(questions []domain.Question, policy domain.Policy) error {
	if len(questions) < policy.MinQuestions || len(questions) > policy.MaxQuestions {
		return fmt.Errorf("generator produced %d questions, want %d..%d", len(questions), policy.MinQuestions, policy.MaxQuestions)
	}
	seen := map[string]struct{}{}
	for i, question := range questions {
		if question.ID == "" || question.Text == "" {
			return fmt.Errorf("question %d is missing id or text", i)
		}
		if _, dup := seen[question.ID]; dup {
			return fmt.Errorf("duplicate question id %s", question.ID)
		}
		seen[question.ID] = struct{}{}
	}
	return nil
}

func (e *EngineService) callContext(parent context.Context) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, e.policy.CollaboratorTimeout)
}
