package domain

import "fmt"

// Phase is the state of the checkpoint orchestration machine. The set is
// closed: no undefined phase is reachable, which Validate enforces at every
// decode boundary.
type Phase string

const (
	PhaseInit                Phase = "init"
	PhaseGatheringContent    Phase = "gathering_content"
	PhaseValidatingContent   Phase = "validating_content"
	PhaseIndexingContent     Phase = "indexing_content"
	PhaseGeneratingQuestions Phase = "generating_questions"
	PhaseAwaitingAnswers     Phase = "awaiting_answers"
	PhaseEvaluating          Phase = "evaluating"
	PhaseCheckingThreshold   Phase = "checking_threshold"
	PhaseRemediating         Phase = "remediating"
	PhaseCheckpointComplete  Phase = "checkpoint_complete"
	PhaseSessionComplete     Phase = "session_complete"
	PhaseFailed              Phase = "failed"
)

func (p Phase) Validate() error {
	switch p {
	case PhaseInit, PhaseGatheringContent, PhaseValidatingContent, PhaseIndexingContent,
		PhaseGeneratingQuestions, PhaseAwaitingAnswers, PhaseEvaluating, PhaseCheckingThreshold,
		PhaseRemediating, PhaseCheckpointComplete, PhaseSessionComplete, PhaseFailed:
		return nil
	default:
		return fmt.Errorf("unknown phase: %s", p)
	}
}

// Terminal reports whether the machine halts in this phase.
func (p Phase) Terminal() bool {
	return p == PhaseSessionComplete || p == PhaseFailed
}

// AwaitsInput reports whether Advance needs learner input to make progress.
// This is the only phase where an empty Advance is a no-op instead of a
// transition.
func (p Phase) AwaitsInput() bool {
	return p == PhaseAwaitingAnswers
}
