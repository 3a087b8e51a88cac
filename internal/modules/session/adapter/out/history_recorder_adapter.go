package out

import (
	"context"

	historydto "tutor/internal/modules/history/dto"
	historyin "tutor/internal/modules/history/port/in"
	"tutor/internal/modules/session/domain"
	sessionout "tutor/internal/modules/session/port/out"
	"tutor/internal/platform/clock"
)

type HistoryRecorderAdapter struct {
	history historyin.Usecase
	clock   clock.Clock
}

func NewHistoryRecorderAdapter(history historyin.Usecase, clk clock.Clock) sessionout.CompletionRecorder {
	return &HistoryRecorderAdapter{history: history, clock: clk}
}

func (a *HistoryRecorderAdapter) Record(ctx context.Context, state domain.SessionState) error {
	input := historydto.RecordInput{
		SessionID:       state.SessionID,
		PlanID:          state.PlanID,
		PlanTitle:       state.PlanTitle,
		StartedAt:       state.StartedAt,
		CompletedAt:     a.clock.Now(),
		CheckpointCount: len(state.Checkpoints),
		MasteredCount:   state.MasteredCount(),
	}
	for _, outcome := range state.Outcomes {
		input.Outcomes = append(input.Outcomes, historydto.OutcomeOutput{
			OrderIndex:          outcome.OrderIndex,
			Topic:               outcome.Topic,
			Score:               outcome.Score,
			Mastered:            outcome.Mastered,
			RemediationAttempts: outcome.RemediationAttempts,
			ForcedContent:       outcome.ForcedContent,
		})
	}
	return a.history.Record(ctx, input)
}
