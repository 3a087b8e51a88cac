package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type ContentSource string

const (
	SourceUserNotes ContentSource = "user-notes"
	SourceSearch    ContentSource = "search"
)

// ContentItem is one piece of raw learning material for the current
// checkpoint attempt. The relevance score is nil until validation has run.
type ContentItem struct {
	Source         ContentSource `json:"source"`
	Origin         string        `json:"origin,omitempty"`
	Text           string        `json:"text"`
	RelevanceScore *float64      `json:"relevance_score,omitempty"`
	AcquiredAt     time.Time     `json:"acquired_at"`
}

// IndexedContext is the opaque result of chunking/indexing accepted content.
// The chunks themselves belong to the indexer adapter; the state machine
// only carries the handle.
type IndexedContext struct {
	Handle     string `json:"handle"`
	ChunkCount int    `json:"chunk_count"`
}

func (c IndexedContext) Empty() bool {
	return c.Handle == ""
}

type Question struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	ObjectiveRef string `json:"objective_ref"`
	Difficulty   string `json:"difficulty"`
}

type Answer struct {
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
}

type EvaluationResult struct {
	PerQuestion    map[string]float64 `json:"per_question"`
	OverallScore   float64            `json:"overall_score"`
	Passed         bool               `json:"passed"`
	WeakObjectives []string           `json:"weak_objectives"`
}

// Validate checks a grader's output against the question set it graded:
// every question must be scored, every score in [0,1].
func (e EvaluationResult) Validate(questions []Question) error {
	if len(e.PerQuestion) != len(questions) {
		return fmt.Errorf("graded %d of %d questions", len(e.PerQuestion), len(questions))
	}
	for _, question := range questions {
		score, ok := e.PerQuestion[question.ID]
		if !ok {
			return fmt.Errorf("question %s has no score", question.ID)
		}
		if score < 0 || score > 1 {
			return fmt.Errorf("question %s score %g out of range", question.ID, score)
		}
	}
	if e.OverallScore < 0 || e.OverallScore > 1 {
		return fmt.Errorf("overall score %g out of range", e.OverallScore)
	}
	return nil
}

// MeanRelevance averages the relevance scores of a content batch. Unscored
// items count as zero; an empty batch scores zero.
func MeanRelevance(items []ContentItem) float64 {
	if len(items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range items {
		if item.RelevanceScore != nil {
			total += *item.RelevanceScore
		}
	}
	return total / float64(len(items))
}

// ValidateAnswers enforces the AwaitingAnswers input contract: exactly one
// non-empty answer per question, matched by question id.
func ValidateAnswers(questions []Question, answers []Answer) error {
	if len(answers) != len(questions) {
		return fmt.Errorf("expected %d answers, got %d", len(questions), len(answers))
	}
	byID := make(map[string]Answer, len(answers))
	for _, answer := range answers {
		if _, dup := byID[answer.QuestionID]; dup {
			return fmt.Errorf("duplicate answer for question %s", answer.QuestionID)
		}
		byID[answer.QuestionID] = answer
	}
	for _, question := range questions {
		answer, ok := byID[question.ID]
		if !ok {
			return fmt.Errorf("missing answer for question %s", question.ID)
		}
		if strings.TrimSpace(answer.Text) == "" {
			return fmt.Errorf("answer for question %s is empty", question.ID)
		}
	}
	return nil
}

// WeakObjectives derives the set of objectives whose questions scored below
// the cutoff. Used as a fallback when the grader does not report weak
// objectives itself.
func WeakObjectives(questions []Question, perQuestion map[string]float64, cutoff float64) []string {
	seen := map[string]struct{}{}
	for _, question := range questions {
		score, ok := perQuestion[question.ID]
		if !ok || score >= cutoff {
			continue
		}
		if question.ObjectiveRef == "" {
			continue
		}
		seen[question.ObjectiveRef] = struct{}{}
	}
	weak := make([]string, 0, len(seen))
	for objective := range seen {
		weak = append(weak, objective)
	}
	sort.Strings(weak)
	return weak
}
