package domain

import (
	"testing"
	"time"
)

func testCheckpoints() []Checkpoint {
	return []Checkpoint{
		{Topic: "Pointers", Objectives: []string{"Explain pointer semantics"}, Difficulty: "beginner", OrderIndex: 0},
		{Topic: "Slices", Objectives: []string{"Explain slice growth"}, Difficulty: "beginner", OrderIndex: 1},
	}
}

func TestNewSessionStateStartsAtInit(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	state, err := NewSessionState("s1", "go-basics", "Go Basics", testCheckpoints(), now)
	if err != nil {
		t.Fatalf("NewSessionState: %v", err)
	}
	if state.Phase != PhaseInit || state.CurrentIndex != 0 {
		t.Fatalf("fresh session at %s index %d", state.Phase, state.CurrentIndex)
	}
	if state.Remaining() != 1 {
		t.Fatalf("Remaining() = %d, want 1", state.Remaining())
	}
}

func TestNewSessionStateRejectsBadInput(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	if _, err := NewSessionState("s1", "p", "P", nil, now); err == nil {
		t.Fatalf("expected error for empty checkpoint list")
	}
	broken := testCheckpoints()
	broken[1].OrderIndex = 5
	if _, err := NewSessionState("s1", "p", "P", broken, now); err == nil {
		t.Fatalf("expected error for non-contiguous order index")
	}
	noObjectives := testCheckpoints()
	noObjectives[0].Objectives = nil
	if _, err := NewSessionState("s1", "p", "P", noObjectives, now); err == nil {
		t.Fatalf("expected error for checkpoint without objectives")
	}
}

func TestTransitionAppendsAudit(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	state, err := NewSessionState("s1", "p", "P", testCheckpoints(), now)
	if err != nil {
		t.Fatalf("NewSessionState: %v", err)
	}
	state.Transition(now, PhaseGatheringContent, "checkpoint_ready")
	state.Transition(now, PhaseValidatingContent, "content_gathered")

	if state.Phase != PhaseValidatingContent {
		t.Fatalf("phase = %s", state.Phase)
	}
	if len(state.Audit) != 2 {
		t.Fatalf("audit length = %d, want 2", len(state.Audit))
	}
	if state.Audit[0].From != PhaseInit || state.Audit[0].To != PhaseGatheringContent {
		t.Fatalf("first record %s -> %s", state.Audit[0].From, state.Audit[0].To)
	}
	if state.Audit[1].Condition != "content_gathered" {
		t.Fatalf("second condition = %s", state.Audit[1].Condition)
	}
}

func TestCompleteCheckpointRecordsOutcome(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	state, err := NewSessionState("s1", "p", "P", testCheckpoints(), now)
	if err != nil {
		t.Fatalf("NewSessionState: %v", err)
	}
	state.ContentRetryCount = 2
	state.RemediationAttemptCount = 1
	state.ForcedContent = true
	state.CompleteCheckpoint(now, "threshold_passed", 0.85, true)

	if len(state.Outcomes) != 1 {
		t.Fatalf("outcomes = %d, want 1", len(state.Outcomes))
	}
	outcome := state.Outcomes[0]
	if outcome.Topic != "Pointers" || outcome.Score != 0.85 || !outcome.Mastered {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if outcome.RemediationAttempts != 1 || outcome.ContentRetries != 2 || !outcome.ForcedContent {
		t.Fatalf("counters not captured: %+v", outcome)
	}
}

func TestNextCheckpointResetsCountersAndWorkingSet(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	state, err := NewSessionState("s1", "p", "P", testCheckpoints(), now)
	if err != nil {
		t.Fatalf("NewSessionState: %v", err)
	}
	state.ContentRetryCount = 3
	state.RemediationAttemptCount = 2
	state.Content = []ContentItem{{Source: SourceSearch, Text: "x"}}
	state.Context = IndexedContext{Handle: "h", ChunkCount: 4}
	state.Questions = []Question{{ID: "q1"}}
	state.Remediation = map[string]string{"obj": "again"}
	state.ForcedContent = true

	state.NextCheckpoint(now)

	if state.CurrentIndex != 1 || state.Phase != PhaseInit {
		t.Fatalf("index %d phase %s after advance", state.CurrentIndex, state.Phase)
	}
	if state.ContentRetryCount != 0 || state.RemediationAttemptCount != 0 {
		t.Fatalf("counters survived advance: %d/%d", state.ContentRetryCount, state.RemediationAttemptCount)
	}
	if state.Content != nil || !state.Context.Empty() || state.Questions != nil || state.Remediation != nil || state.ForcedContent {
		t.Fatalf("working set survived advance")
	}
}

func TestResetAssessmentKeepsContext(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	state, err := NewSessionState("s1", "p", "P", testCheckpoints(), now)
	if err != nil {
		t.Fatalf("NewSessionState: %v", err)
	}
	state.Context = IndexedContext{Handle: "h", ChunkCount: 3}
	state.Questions = []Question{{ID: "q1"}}
	state.Answers = []Answer{{QuestionID: "q1", Text: "a"}}
	state.Evaluation = &EvaluationResult{OverallScore: 0.2}
	state.RegenAttempted = true

	state.ResetAssessment()

	if state.Context.Empty() {
		t.Fatalf("indexed context must survive a remediation round")
	}
	if state.Questions != nil || state.Answers != nil || state.Evaluation != nil || state.RegenAttempted {
		t.Fatalf("assessment working set survived reset")
	}
}

func TestFailRecordsCause(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	state, err := NewSessionState("s1", "p", "P", testCheckpoints(), now)
	if err != nil {
		t.Fatalf("NewSessionState: %v", err)
	}
	state.Fail(now, "collector_exhausted", errFake)
	if state.Phase != PhaseFailed || state.LastError != errFake.Error() {
		t.Fatalf("failure not recorded: %s %q", state.Phase, state.LastError)
	}
	if !state.Phase.Terminal() {
		t.Fatalf("failed must be terminal")
	}
}

func TestMasteredCount(t *testing.T) {
	t.Parallel()

	state := SessionState{Outcomes: []CheckpointOutcome{
		{Mastered: true}, {Mastered: false}, {Mastered: true},
	}}
	if got := state.MasteredCount(); got != 2 {
		t.Fatalf("MasteredCount() = %d, want 2", got)
	}
}
