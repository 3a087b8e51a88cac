package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	curriculumin "tutor/internal/modules/curriculum/port/in"
	"tutor/internal/modules/session/domain"
	"tutor/internal/modules/session/dto"
	sessionin "tutor/internal/modules/session/port/in"
	sessionout "tutor/internal/modules/session/port/out"
	"tutor/internal/modules/session/service"
	"tutor/internal/platform/clock"
	apperrors "tutor/internal/platform/errors"
	"tutor/internal/platform/id"

	hclog "github.com/hashicorp/go-hclog"
)

type Interactor struct {
	engine   *service.EngineService
	store    sessionout.SessionStateStore
	audit    sessionout.AuditProjector
	recorder sessionout.CompletionRecorder
	plans    curriculumin.Usecase
	ids      id.Generator
	clock    clock.Clock
	logger   hclog.Logger
}

func NewInteractor(
	engine *service.EngineService,
	store sessionout.SessionStateStore,
	audit sessionout.AuditProjector,
	recorder sessionout.CompletionRecorder,
	plans curriculumin.Usecase,
	ids id.Generator,
	clk clock.Clock,
	logger hclog.Logger,
) sessionin.Usecase {
	return &Interactor{
		engine:   engine,
		store:    store,
		audit:    audit,
		recorder: recorder,
		plans:    plans,
		ids:      ids,
		clock:    clk,
		logger:   logger,
	}
}

func (i *Interactor) Start(ctx context.Context, input dto.StartSessionInput) (dto.StartSessionOutput, error) {
	if input.PlanID == "" {
		return dto.StartSessionOutput{}, fmt.Errorf("%w: plan id is required", apperrors.ErrInvalidInput)
	}
	existing, err := i.store.Load(ctx)
	if err == nil && !existing.Phase.Terminal() {
		return dto.StartSessionOutput{}, fmt.Errorf("%w: session %s is still running", apperrors.ErrActiveSessionExists, existing.SessionID)
	}
	if err != nil && !errors.Is(err, apperrors.ErrNoActiveSession) {
		return dto.StartSessionOutput{}, err
	}

	plan, err := i.plans.GetPlan(ctx, input.PlanID)
	if err != nil {
		return dto.StartSessionOutput{}, err
	}
	checkpoints := make([]domain.Checkpoint, 0, len(plan.Checkpoints))
	for _, checkpoint := range plan.Checkpoints {
		checkpoints = append(checkpoints, domain.Checkpoint{
			Topic:      checkpoint.Topic,
			Objectives: checkpoint.Objectives,
			Difficulty: checkpoint.Difficulty,
			OrderIndex: checkpoint.OrderIndex,
		})
	}

	state, err := domain.NewSessionState(i.ids.New(), plan.ID, plan.Title, checkpoints, i.clock.Now())
	if err != nil {
		return dto.StartSessionOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if err := i.store.Save(ctx, state); err != nil {
		return dto.StartSessionOutput{}, err
	}
	i.logger.Info("session started", "session_id", state.SessionID, "plan_id", state.PlanID, "checkpoints", len(checkpoints))
	return dto.StartSessionOutput{
		SessionID:       state.SessionID,
		PlanTitle:       state.PlanTitle,
		CheckpointCount: len(checkpoints),
		FirstTopic:      checkpoints[0].Topic,
	}, nil
}

func (i *Interactor) Advance(ctx context.Context, input dto.AdvanceInput) (dto.Directive, error) {
	state, err := i.store.Load(ctx)
	if err != nil {
		return dto.Directive{}, err
	}
	return i.advance(ctx, &state, input)
}

// Run loops single transitions until the machine needs the learner or has
// something to show. The loop is bounded; a machine that does not settle
// within the policy's transition budget is a bug, not a longer session.
func (i *Interactor) Run(ctx context.Context) (dto.Directive, error) {
	state, err := i.store.Load(ctx)
	if err != nil {
		return dto.Directive{}, err
	}
	budget := (domain.TransitionBound(i.engine.Policy()) + 2) * (len(state.Checkpoints) + 1)
	var directive dto.Directive
	for step := 0; step < budget; step++ {
		directive, err = i.advance(ctx, &state, dto.AdvanceInput{})
		if err != nil {
			return dto.Directive{}, err
		}
		if directive.Kind != dto.DirectiveProceed {
			return directive, nil
		}
	}
	return dto.Directive{}, fmt.Errorf("session %s exceeded its transition budget", state.SessionID)
}

func (i *Interactor) advance(ctx context.Context, state *domain.SessionState, input dto.AdvanceInput) (dto.Directive, error) {
	answers := make([]domain.Answer, 0, len(input.Answers))
	for _, answer := range input.Answers {
		answers = append(answers, domain.Answer{QuestionID: answer.QuestionID, Text: answer.Text})
	}

	auditBefore := len(state.Audit)
	if err := i.engine.Step(ctx, state, answers); err != nil {
		return dto.Directive{}, err
	}

	if len(state.Audit) > auditBefore {
		delta := state.Audit[auditBefore:]
		if err := i.store.Save(ctx, *state); err != nil {
			return dto.Directive{}, err
		}
		if err := i.audit.Append(ctx, state.SessionID, delta); err != nil {
			i.logger.Warn("audit projection failed", "session_id", state.SessionID, "error", err)
		}
		for _, record := range delta {
			i.logTransition(*state, record)
		}
		if state.Phase == domain.PhaseSessionComplete {
			if err := i.recorder.Record(ctx, *state); err != nil {
				i.logger.Warn("session record failed", "session_id", state.SessionID, "error", err)
			}
		}
	}
	return i.directiveFor(*state, lastCondition(*state, auditBefore)), nil
}

func (i *Interactor) logTransition(state domain.SessionState, record domain.TransitionRecord) {
	switch record.Condition {
	case "forced_accept":
		i.logger.Warn("content accepted by exhaustion", "session_id", state.SessionID, "checkpoint", state.CurrentIndex)
	case "remediation_exhausted":
		i.logger.Warn("remediation budget exhausted", "session_id", state.SessionID, "checkpoint", state.CurrentIndex)
	default:
		i.logger.Debug("transition", "session_id", state.SessionID, "from", string(record.From), "to", string(record.To), "condition", record.Condition)
	}
}

// lastCondition returns the condition of the transition this Advance call
// produced, or "" when the call was a no-op.
func lastCondition(state domain.SessionState, auditBefore int) string {
	if len(state.Audit) <= auditBefore {
		return ""
	}
	return state.Audit[len(state.Audit)-1].Condition
}

func (i *Interactor) directiveFor(state domain.SessionState, condition string) dto.Directive {
	directive := dto.Directive{
		Kind:      dto.DirectiveProceed,
		Phase:     string(state.Phase),
		Condition: condition,
	}
	if checkpoint, err := state.Current(); err == nil {
		directive.Topic = checkpoint.Topic
	}

	switch {
	case state.Phase == domain.PhaseFailed:
		directive.Kind = dto.DirectiveErrored
		directive.Reason = state.LastError
	case state.Phase == domain.PhaseSessionComplete:
		directive.Kind = dto.DirectiveSessionFinished
		summary := summarize(state, i.clock.Now())
		directive.Summary = &summary
	case state.Phase == domain.PhaseAwaitingAnswers:
		directive.Kind = dto.DirectiveNeedAnswers
		for _, question := range state.Questions {
			directive.Questions = append(directive.Questions, dto.QuestionOutput{
				ID:           question.ID,
				Text:         question.Text,
				ObjectiveRef: question.ObjectiveRef,
				Difficulty:   question.Difficulty,
			})
		}
	case condition == "remediation_delivered":
		directive.Kind = dto.DirectiveShowRemediation
		directive.Explanations = state.Remediation
		directive.AttemptNumber = state.RemediationAttemptCount
	case state.Phase == domain.PhaseCheckpointComplete && len(state.Outcomes) > 0:
		directive.Kind = dto.DirectiveCheckpointResult
		result := outcomeOutput(state.Outcomes[len(state.Outcomes)-1])
		directive.Result = &result
	}
	return directive
}

func (i *Interactor) Status(ctx context.Context) (dto.SessionStatusOutput, error) {
	state, err := i.store.Load(ctx)
	if err != nil {
		return dto.SessionStatusOutput{}, err
	}
	status := dto.SessionStatusOutput{
		SessionID:       state.SessionID,
		PlanID:          state.PlanID,
		PlanTitle:       state.PlanTitle,
		Phase:           string(state.Phase),
		CurrentIndex:    state.CurrentIndex,
		CheckpointCount: len(state.Checkpoints),
		MasteredCount:   state.MasteredCount(),
		ContentRetries:  state.ContentRetryCount,
		Remediations:    state.RemediationAttemptCount,
		StartedAt:       state.StartedAt,
		LastError:       state.LastError,
	}
	if checkpoint, err := state.Current(); err == nil {
		status.CurrentTopic = checkpoint.Topic
	}
	return status, nil
}

func (i *Interactor) Abort(ctx context.Context) error {
	state, err := i.store.Load(ctx)
	if err != nil {
		return err
	}
	i.logger.Info("session aborted", "session_id", state.SessionID, "phase", string(state.Phase))
	return i.store.Clear(ctx)
}

func summarize(state domain.SessionState, completedAt time.Time) dto.SessionSummaryOutput {
	summary := dto.SessionSummaryOutput{
		SessionID:       state.SessionID,
		PlanID:          state.PlanID,
		PlanTitle:       state.PlanTitle,
		StartedAt:       state.StartedAt,
		CompletedAt:     completedAt,
		CheckpointCount: len(state.Checkpoints),
		MasteredCount:   state.MasteredCount(),
	}
	for _, outcome := range state.Outcomes {
		summary.Outcomes = append(summary.Outcomes, outcomeOutput(outcome))
	}
	return summary
}

func outcomeOutput(outcome domain.CheckpointOutcome) dto.CheckpointResultOutput {
	return dto.CheckpointResultOutput{
		OrderIndex:          outcome.OrderIndex,
		Topic:               outcome.Topic,
		Score:               outcome.Score,
		Mastered:            outcome.Mastered,
		RemediationAttempts: outcome.RemediationAttempts,
		ForcedContent:       outcome.ForcedContent,
	}
}
