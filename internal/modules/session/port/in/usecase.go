package in

import (
	"context"

	"tutor/internal/modules/session/dto"
)

type Usecase interface {
	// Start creates a session for the given plan. Fails with
	// ErrActiveSessionExists while another session is live.
	Start(ctx context.Context, input dto.StartSessionInput) (dto.StartSessionOutput, error)

	// Advance executes exactly one transition of the active session and
	// returns a directive telling the driver what happened and what it
	// needs next. In AwaitingAnswers an Advance without answers is a
	// no-op that re-issues the pending questions.
	Advance(ctx context.Context, input dto.AdvanceInput) (dto.Directive, error)

	// Run advances repeatedly until the engine needs learner input or the
	// session reaches a terminal phase.
	Run(ctx context.Context) (dto.Directive, error)

	Status(ctx context.Context) (dto.SessionStatusOutput, error)
	Abort(ctx context.Context) error
}
