package out

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"tutor/internal/modules/provider/adapter/out/rpc"
	"tutor/internal/modules/provider/domain"
	"tutor/internal/modules/provider/dto"
	providerout "tutor/internal/modules/provider/port/out"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 30 * time.Second
)

type GRPCHost struct{}

func NewGRPCHost() providerout.Host {
	return &GRPCHost{}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	client, closeFn, err := h.connect(manifest, defaultStartTimeout)
	if err != nil {
		return err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()
	if _, err := client.GetMetadata(callCtx); err != nil {
		return fmt.Errorf("get metadata: %w", err)
	}
	return nil
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, closeFn, err := h.connect(manifest, defaultStartTimeout)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	roles := make([]domain.Role, 0, len(meta.Roles))
	for _, role := range meta.Roles {
		roles = append(roles, domain.Role(role))
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Roles: roles}, nil
}

func (h *GRPCHost) ScoreRelevance(ctx context.Context, manifest domain.Manifest, input dto.ScoreInput) (dto.ScoreOutput, error) {
	client, closeFn, err := h.connect(manifest, defaultStartTimeout)
	if err != nil {
		return dto.ScoreOutput{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	items := make([]rpc.ContentItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, rpc.ContentItem{Origin: item.Origin, Text: item.Text})
	}
	response, err := client.ScoreRelevance(callCtx, &rpc.ScoreRequest{
		Topic:      input.Topic,
		Objectives: input.Objectives,
		Items:      items,
	})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return dto.ScoreOutput{}, fmt.Errorf("%w: %s", domain.ErrProviderTimeout, manifest.Name)
		}
		return dto.ScoreOutput{}, fmt.Errorf("score relevance: %w", err)
	}
	return dto.ScoreOutput{Scores: response.Scores}, nil
}

func (h *GRPCHost) GenerateQuestions(ctx context.Context, manifest domain.Manifest, input dto.GenerateInput) (dto.GenerateOutput, error) {
	client, closeFn, err := h.connect(manifest, defaultStartTimeout)
	if err != nil {
		return dto.GenerateOutput{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	response, err := client.GenerateQuestions(callCtx, &rpc.GenerateRequest{
		Topic:        input.Topic,
		Objectives:   input.Objectives,
		Difficulty:   input.Difficulty,
		ContextText:  input.ContextText,
		MinQuestions: int32(input.MinQuestions),
		MaxQuestions: int32(input.MaxQuestions),
	})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return dto.GenerateOutput{}, fmt.Errorf("%w: %s", domain.ErrProviderTimeout, manifest.Name)
		}
		return dto.GenerateOutput{}, fmt.Errorf("generate questions: %w", err)
	}
	questions := make([]dto.QuestionPayload, 0, len(response.Questions))
	for _, question := range response.Questions {
		questions = append(questions, dto.QuestionPayload{
			ID:           question.ID,
			Text:         question.Text,
			ObjectiveRef: question.ObjectiveRef,
			Difficulty:   question.Difficulty,
		})
	}
	return dto.GenerateOutput{Questions: questions}, nil
}

func (h *GRPCHost) GradeAnswers(ctx context.Context, manifest domain.Manifest, input dto.GradeInput) (dto.GradeOutput, error) {
	client, closeFn, err := h.connect(manifest, defaultStartTimeout)
	if err != nil {
		return dto.GradeOutput{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	questions := make([]rpc.Question, 0, len(input.Questions))
	for _, question := range input.Questions {
		questions = append(questions, rpc.Question{
			ID:           question.ID,
			Text:         question.Text,
			ObjectiveRef: question.ObjectiveRef,
			Difficulty:   question.Difficulty,
		})
	}
	answers := make([]rpc.Answer, 0, len(input.Answers))
	for _, answer := range input.Answers {
		answers = append(answers, rpc.Answer{QuestionID: answer.QuestionID, Text: answer.Text})
	}
	response, err := client.GradeAnswers(callCtx, &rpc.GradeRequest{
		Topic:       input.Topic,
		Objectives:  input.Objectives,
		ContextText: input.ContextText,
		Questions:   questions,
		Answers:     answers,
	})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return dto.GradeOutput{}, fmt.Errorf("%w: %s", domain.ErrProviderTimeout, manifest.Name)
		}
		return dto.GradeOutput{}, fmt.Errorf("grade answers: %w", err)
	}
	return dto.GradeOutput{
		PerQuestion:    response.PerQuestion,
		OverallScore:   response.OverallScore,
		WeakObjectives: response.WeakObjectives,
	}, nil
}

func (h *GRPCHost) Explain(ctx context.Context, manifest domain.Manifest, input dto.ExplainInput) (dto.ExplainOutput, error) {
	client, closeFn, err := h.connect(manifest, defaultStartTimeout)
	if err != nil {
		return dto.ExplainOutput{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	response, err := client.Explain(callCtx, &rpc.ExplainRequest{
		Topic:          input.Topic,
		ContextText:    input.ContextText,
		WeakObjectives: input.WeakObjectives,
		Attempt:        int32(input.Attempt),
	})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return dto.ExplainOutput{}, fmt.Errorf("%w: %s", domain.ErrProviderTimeout, manifest.Name)
		}
		return dto.ExplainOutput{}, fmt.Errorf("explain: %w", err)
	}
	return dto.ExplainOutput{Explanations: response.Explanations}, nil
}

func (h *GRPCHost) connect(manifest domain.Manifest, startTimeout time.Duration) (rpc.TutorProviderClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  rpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          rpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     startTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel}),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start provider client: %w", err)
	}
	raw, err := rpcClient.Dispense(rpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense provider: %w", err)
	}
	typed, ok := raw.(rpc.TutorProviderClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("provider rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func (h *GRPCHost) callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
