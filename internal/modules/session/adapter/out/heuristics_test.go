package out

import (
	"context"
	"strings"
	"testing"
	"time"

	"tutor/internal/modules/session/domain"
	sessionout "tutor/internal/modules/session/port/out"
	"tutor/internal/platform/id"
)

func pointersCheckpoint() domain.Checkpoint {
	return domain.Checkpoint{
		Topic:      "Pointers",
		Objectives: []string{"explain pointer semantics", "use pointers safely"},
		Difficulty: "beginner",
		OrderIndex: 0,
	}
}

func TestKeywordScorerSaturates(t *testing.T) {
	t.Parallel()

	scorer := NewKeywordScorer()
	items := []domain.ContentItem{
		{Text: "pointer semantics explained: a pointer holds an address, use pointers safely"},
		{Text: "a recipe for sourdough bread"},
	}
	scored, err := scorer.Score(context.Background(), "Pointers", []string{"explain pointer semantics", "use pointers safely"}, items)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if scored[0].RelevanceScore == nil || *scored[0].RelevanceScore != 1 {
		t.Fatalf("rich item score = %v, want 1", scored[0].RelevanceScore)
	}
	if scored[1].RelevanceScore == nil || *scored[1].RelevanceScore != 0 {
		t.Fatalf("unrelated item score = %v, want 0", scored[1].RelevanceScore)
	}
}

func TestChunkIndexerRoundTrip(t *testing.T) {
	t.Parallel()

	indexer := NewChunkIndexer(t.TempDir())
	ctx := context.Background()

	long := strings.Repeat("a pointer holds the address of a value in memory ", 40)
	ref, err := indexer.Index(ctx, "s1", 0, []domain.ContentItem{{Text: long}})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if ref.Empty() || ref.ChunkCount < 2 {
		t.Fatalf("long text produced ref %+v, want multiple chunks", ref)
	}

	chunks, err := indexer.Chunks(ctx, ref)
	if err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	if len(chunks) != ref.ChunkCount {
		t.Fatalf("loaded %d chunks, handle says %d", len(chunks), ref.ChunkCount)
	}
	for i, chunk := range chunks {
		if len([]rune(chunk)) > chunkSize {
			t.Fatalf("chunk %d is %d runes, cap is %d", i, len([]rune(chunk)), chunkSize)
		}
		if strings.TrimSpace(chunk) == "" {
			t.Fatalf("chunk %d is blank", i)
		}
	}
}

func TestChunkIndexerMissingHandle(t *testing.T) {
	t.Parallel()

	indexer := NewChunkIndexer(t.TempDir())
	if _, err := indexer.Chunks(context.Background(), domain.IndexedContext{Handle: "ghost"}); err == nil {
		t.Fatalf("expected error for unknown handle")
	}
}

func TestTemplateGeneratorRespectsBounds(t *testing.T) {
	t.Parallel()

	generator := NewTemplateGenerator(id.RandomHex{})
	ref := domain.IndexedContext{Handle: "h", ChunkCount: 3}

	questions, err := generator.Generate(context.Background(), pointersCheckpoint(), ref, 3, 5)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(questions) < 3 || len(questions) > 5 {
		t.Fatalf("generated %d questions, want 3..5", len(questions))
	}
	seen := map[string]struct{}{}
	for _, question := range questions {
		if question.ID == "" || question.Text == "" || question.ObjectiveRef == "" {
			t.Fatalf("incomplete question: %+v", question)
		}
		if _, dup := seen[question.ID]; dup {
			t.Fatalf("duplicate question id %s", question.ID)
		}
		seen[question.ID] = struct{}{}
	}
}

func TestTemplateGeneratorEmptyContext(t *testing.T) {
	t.Parallel()

	generator := NewTemplateGenerator(id.RandomHex{})
	questions, err := generator.Generate(context.Background(), pointersCheckpoint(), domain.IndexedContext{Handle: "h"}, 3, 5)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(questions) != 0 {
		t.Fatalf("expected no questions without chunks, got %d", len(questions))
	}
}

func TestKeywordGraderRejectsMeaninglessAnswers(t *testing.T) {
	t.Parallel()

	indexer := NewChunkIndexer(t.TempDir())
	ctx := context.Background()
	ref, err := indexer.Index(ctx, "s1", 0, []domain.ContentItem{{Text: "a pointer holds the address of a value; pointer semantics matter"}})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}

	grader := NewKeywordGrader(indexer, 0.5)
	questions := []domain.Question{
		{ID: "q1", Text: "Explain pointer semantics", ObjectiveRef: "explain pointer semantics"},
		{ID: "q2", Text: "How do you use pointers safely?", ObjectiveRef: "use pointers safely"},
	}
	answers := []domain.Answer{
		{QuestionID: "q1", Text: "A pointer holds the address of a value, so pointer semantics describe how assignment shares memory."},
		{QuestionID: "q2", Text: "idk"},
	}

	result, err := grader.Grade(ctx, pointersCheckpoint(), ref, questions, answers)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if err := result.Validate(questions); err != nil {
		t.Fatalf("grader output invalid: %v", err)
	}
	if result.PerQuestion["q2"] != 0 {
		t.Fatalf("throwaway answer scored %g, want 0", result.PerQuestion["q2"])
	}
	if result.PerQuestion["q1"] <= result.PerQuestion["q2"] {
		t.Fatalf("substantive answer did not outscore throwaway: %+v", result.PerQuestion)
	}
	if len(result.WeakObjectives) != 1 || result.WeakObjectives[0] != "use pointers safely" {
		t.Fatalf("weak objectives = %v", result.WeakObjectives)
	}
}

func TestKeywordGraderGradesWithoutContext(t *testing.T) {
	t.Parallel()

	indexer := NewChunkIndexer(t.TempDir())
	ctx := context.Background()
	ghost := domain.IndexedContext{Handle: "missing-handle", ChunkCount: 2}

	grader := NewKeywordGrader(indexer, 0.5)
	questions := []domain.Question{
		{ID: "q1", Text: "Explain pointer semantics", ObjectiveRef: "explain pointer semantics"},
	}
	answers := []domain.Answer{
		{QuestionID: "q1", Text: "Pointer semantics describe how assignment shares the address of a value between variables."},
	}

	result, err := grader.Grade(ctx, pointersCheckpoint(), ghost, questions, answers)
	if err != nil {
		t.Fatalf("Grade without indexed context: %v", err)
	}
	if result.PerQuestion["q1"] <= 0 {
		t.Fatalf("keyword overlap should still score without context, got %g", result.PerQuestion["q1"])
	}

	ref, err := indexer.Index(ctx, "s1", 0, []domain.ContentItem{{Text: "pointer semantics describe how assignment shares the address of a value"}})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	grounded, err := grader.Grade(ctx, pointersCheckpoint(), ref, questions, answers)
	if err != nil {
		t.Fatalf("Grade with indexed context: %v", err)
	}
	if grounded.PerQuestion["q1"] <= result.PerQuestion["q1"] {
		t.Fatalf("grounded answer should earn the context bonus: with=%g without=%g",
			grounded.PerQuestion["q1"], result.PerQuestion["q1"])
	}
}

func TestTemplateExplainerUsesContextAndVariesFraming(t *testing.T) {
	t.Parallel()

	indexer := NewChunkIndexer(t.TempDir())
	ctx := context.Background()
	ref, err := indexer.Index(ctx, "s1", 0, []domain.ContentItem{
		{Text: "A pointer holds the address of a value. Dereference it with the star operator."},
		{Text: "Sourdough needs a lively starter."},
	})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}

	explainer := NewTemplateExplainer(indexer)
	first, err := explainer.Explain(ctx, pointersCheckpoint(), ref, []string{"explain pointer semantics"}, 1)
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	explanation := first["explain pointer semantics"]
	if !strings.Contains(explanation, "pointer holds the address") {
		t.Fatalf("explanation ignored context: %q", explanation)
	}
	if strings.Contains(explanation, "Sourdough") {
		t.Fatalf("explanation pulled an unrelated chunk: %q", explanation)
	}

	second, err := explainer.Explain(ctx, pointersCheckpoint(), ref, []string{"explain pointer semantics"}, 2)
	if err != nil {
		t.Fatalf("Explain attempt 2: %v", err)
	}
	if second["explain pointer semantics"] == explanation {
		t.Fatalf("second attempt repeated the first framing")
	}
}

func TestCompositeCollectorFallsBackToSearch(t *testing.T) {
	t.Parallel()

	empty := NewNotesCollector(t.TempDir(), stubClock{now: time.Now().UTC()})
	search := &staticCollector{items: []domain.ContentItem{{Source: domain.SourceSearch, Text: "pointers from the web"}}}

	composite := NewCompositeCollector(empty, search)
	items, err := composite.Collect(context.Background(), sessionout.CollectRequest{Topic: "Pointers", Attempt: 1})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(items) != 1 || items[0].Source != domain.SourceSearch {
		t.Fatalf("expected the search item, got %+v", items)
	}
}

type staticCollector struct {
	items []domain.ContentItem
	err   error
}

func (s *staticCollector) Collect(context.Context, sessionout.CollectRequest) ([]domain.ContentItem, error) {
	return s.items, s.err
}
