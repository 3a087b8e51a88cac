package out

import (
	"context"
	"fmt"

	"tutor/internal/modules/session/domain"
	sessionout "tutor/internal/modules/session/port/out"
	"tutor/internal/platform/id"
)

// Question templates per difficulty, cycled over the checkpoint's
// objectives until the policy's question budget is met.
var questionTemplates = map[string][]string{
	"beginner": {
		"In your own words, what does it mean to %s?",
		"Give a simple example that shows how you would %s.",
	},
	"intermediate": {
		"Explain how you would %s, and what could go wrong.",
		"Compare two ways to %s. When would you pick each?",
	},
	"advanced": {
		"Describe the trade-offs involved when you %s in a real system.",
		"A teammate's approach to %s is failing under load. How do you diagnose it?",
	},
}

// TemplateGenerator is the built-in assessment heuristic: one question per
// objective, phrased from difficulty-matched templates. A provider plugin
// replaces it when one is installed for the generator role.
type TemplateGenerator struct {
	ids id.Generator
}

func NewTemplateGenerator(ids id.Generator) sessionout.AssessmentGenerator {
	return &TemplateGenerator{ids: ids}
}

func (g *TemplateGenerator) Generate(_ context.Context, checkpoint domain.Checkpoint, ref domain.IndexedContext, minQ, maxQ int) ([]domain.Question, error) {
	if ref.ChunkCount == 0 {
		// Nothing to ask about.
		return nil, nil
	}
	templates, ok := questionTemplates[checkpoint.Difficulty]
	if !ok {
		templates = questionTemplates["beginner"]
	}

	count := len(checkpoint.Objectives)
	if count < minQ {
		count = minQ
	}
	if count > maxQ {
		count = maxQ
	}

	questions := make([]domain.Question, 0, count)
	for i := 0; i < count; i++ {
		objective := checkpoint.Objectives[i%len(checkpoint.Objectives)]
		template := templates[(i/len(checkpoint.Objectives))%len(templates)]
		questions = append(questions, domain.Question{
			ID:           fmt.Sprintf("q-%s", g.ids.Short()),
			Text:         fmt.Sprintf(template, objective),
			ObjectiveRef: objective,
			Difficulty:   checkpoint.Difficulty,
		})
	}
	return questions, nil
}
