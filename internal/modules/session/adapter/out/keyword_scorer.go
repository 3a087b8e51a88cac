package out

import (
	"context"
	"strings"

	"tutor/internal/modules/session/domain"
	sessionout "tutor/internal/modules/session/port/out"
)

// keywordSaturation is how many distinct keyword hits score an item as
// fully relevant. Below that the score scales linearly.
const keywordSaturation = 4

// KeywordScorer is the built-in relevance heuristic: it counts how many of
// the checkpoint's keywords each item mentions. A provider plugin replaces
// it when one is installed for the scorer role.
type KeywordScorer struct{}

func NewKeywordScorer() sessionout.RelevanceScorer {
	return &KeywordScorer{}
}

func (s *KeywordScorer) Score(_ context.Context, topic string, objectives []string, items []domain.ContentItem) ([]domain.ContentItem, error) {
	keywords := keywordsFor(topic, objectives)
	scored := make([]domain.ContentItem, len(items))
	for i, item := range items {
		value := keywordScore(item.Text, keywords)
		item.RelevanceScore = &value
		scored[i] = item
	}
	return scored, nil
}

func keywordScore(text string, keywords []string) float64 {
	lowered := strings.ToLower(text)
	matches := 0
	for _, keyword := range keywords {
		if strings.Contains(lowered, keyword) {
			matches++
		}
	}
	score := float64(matches) / keywordSaturation
	if score > 1 {
		score = 1
	}
	return score
}

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "what": {}, "how": {},
	"why": {}, "are": {}, "can": {}, "use": {}, "using": {}, "their": {},
	"about": {}, "from": {}, "into": {}, "when": {}, "that": {}, "this": {},
}

func keywordsFor(topic string, objectives []string) []string {
	seen := map[string]struct{}{}
	var keywords []string
	add := func(word string) {
		word = strings.ToLower(strings.Trim(word, ".,;:!?\"'()"))
		if len(word) < 3 {
			return
		}
		if _, stop := stopwords[word]; stop {
			return
		}
		if _, dup := seen[word]; dup {
			return
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}
	for _, word := range strings.Fields(topic) {
		add(word)
	}
	for _, objective := range objectives {
		for _, word := range strings.Fields(objective) {
			add(word)
		}
	}
	return keywords
}
