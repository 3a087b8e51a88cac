package in

import (
	"context"

	sessiondto "tutor/internal/modules/session/dto"
	sessionin "tutor/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, planID string) (sessiondto.StartSessionOutput, error) {
	return h.usecase.Start(ctx, sessiondto.StartSessionInput{PlanID: planID})
}

func (h CLIHandler) Step(ctx context.Context) (sessiondto.Directive, error) {
	return h.usecase.Advance(ctx, sessiondto.AdvanceInput{})
}

func (h CLIHandler) Run(ctx context.Context) (sessiondto.Directive, error) {
	return h.usecase.Run(ctx)
}

func (h CLIHandler) Answer(ctx context.Context, answers []sessiondto.AnswerInput) (sessiondto.Directive, error) {
	return h.usecase.Advance(ctx, sessiondto.AdvanceInput{Answers: answers})
}

func (h CLIHandler) Status(ctx context.Context) (sessiondto.SessionStatusOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) Abort(ctx context.Context) error {
	return h.usecase.Abort(ctx)
}
