package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	providerrpc "tutor/internal/modules/provider/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

// Reference provider: deterministic keyword heuristics behind the provider
// RPC surface. Useful for wiring checks and as a template for real
// providers.

type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *providerrpc.Empty) (*providerrpc.Metadata, error) {
	return &providerrpc.Metadata{
		Name:    "reference",
		Version: "1.0.0",
		Roles:   []string{"scorer", "generator", "grader", "explainer"},
	}, nil
}

func (s *server) ScoreRelevance(_ context.Context, in *providerrpc.ScoreRequest) (*providerrpc.ScoreResponse, error) {
	keywords := keywords(in.Topic, in.Objectives)
	scores := make([]float64, 0, len(in.Items))
	for _, item := range in.Items {
		scores = append(scores, overlap(item.Text, keywords))
	}
	return &providerrpc.ScoreResponse{Scores: scores}, nil
}

func (s *server) GenerateQuestions(_ context.Context, in *providerrpc.GenerateRequest) (*providerrpc.GenerateResponse, error) {
	if len(in.ContextText) == 0 {
		return &providerrpc.GenerateResponse{}, nil
	}
	count := len(in.Objectives)
	if count < int(in.MinQuestions) {
		count = int(in.MinQuestions)
	}
	if count > int(in.MaxQuestions) {
		count = int(in.MaxQuestions)
	}
	questions := make([]providerrpc.Question, 0, count)
	for i := 0; i < count; i++ {
		objective := in.Objectives[i%len(in.Objectives)]
		questions = append(questions, providerrpc.Question{
			ID:           fmt.Sprintf("ref-q%d", i+1),
			Text:         fmt.Sprintf("In your own words, explain what it means to %s.", objective),
			ObjectiveRef: objective,
			Difficulty:   in.Difficulty,
		})
	}
	return &providerrpc.GenerateResponse{Questions: questions}, nil
}

func (s *server) GradeAnswers(_ context.Context, in *providerrpc.GradeRequest) (*providerrpc.GradeResponse, error) {
	byID := map[string]string{}
	for _, answer := range in.Answers {
		byID[answer.QuestionID] = answer.Text
	}
	perQuestion := map[string]float64{}
	total := 0.0
	weakSet := map[string]struct{}{}
	for _, question := range in.Questions {
		score := overlap(byID[question.ID], keywords(question.ObjectiveRef, []string{question.Text}))
		perQuestion[question.ID] = score
		total += score
		if score < 0.5 && question.ObjectiveRef != "" {
			weakSet[question.ObjectiveRef] = struct{}{}
		}
	}
	overall := 0.0
	if len(in.Questions) > 0 {
		overall = total / float64(len(in.Questions))
	}
	weak := make([]string, 0, len(weakSet))
	for objective := range weakSet {
		weak = append(weak, objective)
	}
	sort.Strings(weak)
	return &providerrpc.GradeResponse{PerQuestion: perQuestion, OverallScore: overall, WeakObjectives: weak}, nil
}

func (s *server) Explain(_ context.Context, in *providerrpc.ExplainRequest) (*providerrpc.ExplainResponse, error) {
	explanations := map[string]string{}
	for _, objective := range in.WeakObjectives {
		best := ""
		bestScore := 0.0
		for _, chunk := range in.ContextText {
			score := overlap(chunk, keywords(objective, nil))
			if score > bestScore {
				best = chunk
				bestScore = score
			}
		}
		if best == "" {
			best = fmt.Sprintf("Revisit your material on %s and restate it in your own words.", in.Topic)
		}
		explanations[objective] = fmt.Sprintf("Attempt %d. %s", in.Attempt, best)
	}
	return &providerrpc.ExplainResponse{Explanations: explanations}, nil
}

func keywords(topic string, extra []string) []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(word string) {
		word = strings.ToLower(strings.Trim(word, ".,;:!?\"'()"))
		if len(word) < 3 {
			return
		}
		if _, dup := seen[word]; dup {
			return
		}
		seen[word] = struct{}{}
		out = append(out, word)
	}
	for _, word := range strings.Fields(topic) {
		add(word)
	}
	for _, text := range extra {
		for _, word := range strings.Fields(text) {
			add(word)
		}
	}
	return out
}

func overlap(text string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	lowered := strings.ToLower(text)
	matches := 0
	for _, keyword := range keywords {
		if strings.Contains(lowered, keyword) {
			matches++
		}
	}
	score := float64(matches) / 4
	if score > 1 {
		score = 1
	}
	return score
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: providerrpc.HandshakeConfig,
		Plugins:         providerrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
