package out

import (
	"context"
	"strings"
	"unicode"

	"tutor/internal/modules/session/domain"
	sessionout "tutor/internal/modules/session/port/out"
)

// Throwaway answers that earn a zero regardless of keyword luck.
var meaninglessAnswers = map[string]struct{}{
	"idk": {}, "dunno": {}, "no": {}, "yes": {}, "ok": {}, "okay": {},
	"n/a": {}, "na": {}, "none": {}, "nothing": {}, "pass": {}, "skip": {},
	"maybe": {}, "whatever": {}, "asdf": {},
}

// KeywordGrader is the built-in grading heuristic: an answer scores by how
// many of the question's and objective's keywords it touches, with an extra
// point for substance (length). A provider plugin replaces it when one is
// installed for the grader role.
type KeywordGrader struct {
	indexer sessionout.ContentIndexer
	cutoff  float64
}

func NewKeywordGrader(indexer sessionout.ContentIndexer, perQuestionCutoff float64) sessionout.AnswerGrader {
	return &KeywordGrader{indexer: indexer, cutoff: perQuestionCutoff}
}

func (g *KeywordGrader) Grade(ctx context.Context, checkpoint domain.Checkpoint, ref domain.IndexedContext, questions []domain.Question, answers []domain.Answer) (domain.EvaluationResult, error) {
	byID := make(map[string]string, len(answers))
	for _, answer := range answers {
		byID[answer.QuestionID] = answer.Text
	}

	// Grading degrades rather than fails when the indexed context cannot
	// be loaded: answers are still scored on keyword overlap, they just
	// cannot earn the grounding bonus.
	chunks, _ := g.indexer.Chunks(ctx, ref)
	contextText := strings.ToLower(strings.Join(chunks, " "))

	perQuestion := make(map[string]float64, len(questions))
	total := 0.0
	for _, question := range questions {
		score := gradeAnswer(question, byID[question.ID], contextText)
		perQuestion[question.ID] = score
		total += score
	}
	overall := 0.0
	if len(questions) > 0 {
		overall = total / float64(len(questions))
	}

	result := domain.EvaluationResult{
		PerQuestion:  perQuestion,
		OverallScore: overall,
	}
	result.WeakObjectives = domain.WeakObjectives(questions, perQuestion, g.cutoff)
	return result, nil
}

// gradeAnswer scores a single answer in [0,1]. Keyword overlap with the
// question and its objective carries most of the weight; mentioning terms
// that actually appear in the indexed context earns the rest.
func gradeAnswer(question domain.Question, answer, contextText string) float64 {
	if isMeaningless(answer) {
		return 0
	}
	keywords := keywordsFor(question.ObjectiveRef, []string{question.Text})
	if len(keywords) == 0 {
		return 0.5
	}
	lowered := strings.ToLower(answer)
	hits := 0
	grounded := 0
	for _, keyword := range keywords {
		if !strings.Contains(lowered, keyword) {
			continue
		}
		hits++
		if contextText != "" && strings.Contains(contextText, keyword) {
			grounded++
		}
	}

	score := 0.7 * float64(hits) / float64(len(keywords))
	if hits > 0 {
		score += 0.15 * float64(grounded) / float64(hits)
	}
	if len(strings.Fields(answer)) >= 8 {
		score += 0.15
	}
	if score > 1 {
		score = 1
	}
	return score
}

// isMeaningless rejects answers that cannot carry content: too short, a
// known throwaway word, or lacking three alphabetic characters.
func isMeaningless(answer string) bool {
	trimmed := strings.TrimSpace(strings.ToLower(answer))
	if len(trimmed) < 3 {
		return true
	}
	if _, throwaway := meaninglessAnswers[trimmed]; throwaway {
		return true
	}
	letters := 0
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters < 3
}
