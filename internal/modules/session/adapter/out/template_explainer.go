package out

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"tutor/internal/modules/session/domain"
	sessionout "tutor/internal/modules/session/port/out"
)

// TemplateExplainer is the built-in remediation heuristic: for each weak
// objective it pulls the best-matching chunks from the indexed context and
// wraps them in plain language. Later attempts change the framing so a
// stuck learner is not shown the same text twice.
type TemplateExplainer struct {
	indexer sessionout.ContentIndexer
}

var attemptFramings = []string{
	"Let's go over this once more. %s",
	"Try thinking about it from a different angle. %s",
	"Back to basics, step by step. %s",
}

func NewTemplateExplainer(indexer sessionout.ContentIndexer) sessionout.RemediationExplainer {
	return &TemplateExplainer{indexer: indexer}
}

func (e *TemplateExplainer) Explain(ctx context.Context, checkpoint domain.Checkpoint, ref domain.IndexedContext, weakObjectives []string, attempt int) (map[string]string, error) {
	chunks, err := e.indexer.Chunks(ctx, ref)
	if err != nil {
		chunks = nil
	}

	framing := attemptFramings[0]
	if attempt >= 1 && attempt <= len(attemptFramings) {
		framing = attemptFramings[attempt-1]
	}

	explanations := make(map[string]string, len(weakObjectives))
	for _, objective := range weakObjectives {
		core := bestChunks(chunks, objective, 2)
		if core == "" {
			core = fmt.Sprintf("The key idea behind %q is part of %s. Re-read your material on this and put it in your own words before retrying.", objective, checkpoint.Topic)
		}
		explanations[objective] = fmt.Sprintf(framing, core)
	}
	return explanations, nil
}

// bestChunks returns the top scoring chunks for an objective, joined in
// their original order.
func bestChunks(chunks []string, objective string, limit int) string {
	keywords := keywordsFor(objective, nil)
	if len(keywords) == 0 || len(chunks) == 0 {
		return ""
	}
	type ranked struct {
		index int
		score float64
	}
	var candidates []ranked
	for i, chunk := range chunks {
		score := keywordScore(chunk, keywords)
		if score == 0 {
			continue
		}
		candidates = append(candidates, ranked{index: i, score: score})
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.SliceStable(candidates, func(a, b int) bool { return candidates[a].score > candidates[b].score })
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	sort.Slice(candidates, func(a, b int) bool { return candidates[a].index < candidates[b].index })

	parts := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		parts = append(parts, chunks[candidate.index])
	}
	return strings.Join(parts, " ")
}
