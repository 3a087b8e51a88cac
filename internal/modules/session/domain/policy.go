package domain

import (
	"fmt"
	"time"

	apperrors "tutor/internal/platform/errors"
)

// Policy is the numeric configuration of the state machine. Every value is
// deployment configuration; the engine accepts anything Validate allows.
type Policy struct {
	AcceptThreshold        float64
	PassThreshold          float64
	MaxContentRetries      int
	MaxRemediationAttempts int
	MinQuestions           int
	MaxQuestions           int
	PerQuestionCutoff      float64
	CollaboratorTimeout    time.Duration
	RegenerateOnEmpty      bool
}

func (p Policy) Validate() error {
	if p.AcceptThreshold < 0 || p.AcceptThreshold > 1 {
		return fmt.Errorf("%w: accept threshold %g out of [0,1]", apperrors.ErrConfiguration, p.AcceptThreshold)
	}
	if p.PassThreshold < 0 || p.PassThreshold > 1 {
		return fmt.Errorf("%w: pass threshold %g out of [0,1]", apperrors.ErrConfiguration, p.PassThreshold)
	}
	if p.PerQuestionCutoff < 0 || p.PerQuestionCutoff > 1 {
		return fmt.Errorf("%w: per-question cutoff %g out of [0,1]", apperrors.ErrConfiguration, p.PerQuestionCutoff)
	}
	if p.MaxContentRetries < 0 || p.MaxRemediationAttempts < 0 {
		return fmt.Errorf("%w: retry bounds must be >= 0", apperrors.ErrConfiguration)
	}
	if p.MinQuestions < 1 || p.MaxQuestions < p.MinQuestions {
		return fmt.Errorf("%w: question bounds must satisfy 1 <= min <= max", apperrors.ErrConfiguration)
	}
	if p.CollaboratorTimeout <= 0 {
		return fmt.Errorf("%w: collaborator timeout must be positive", apperrors.ErrConfiguration)
	}
	return nil
}

// ValidationDecision is the outcome of the content-relevance gate.
type ValidationDecision struct {
	Next       Phase
	Condition  string
	Forced     bool
	RetryCount int
}

// DecideValidation applies the relevance gate. The retry counter counts
// rejected gathers; when the incremented count reaches the bound the current
// batch is force-accepted (best effort) instead of looping forever. With
// MaxContentRetries=3 the third low-relevance batch is therefore accepted.
func DecideValidation(mean float64, retryCount int, p Policy) ValidationDecision {
	if mean >= p.AcceptThreshold {
		return ValidationDecision{Next: PhaseIndexingContent, Condition: "relevance_accepted", RetryCount: retryCount}
	}
	retryCount++
	if retryCount >= p.MaxContentRetries {
		// The stored counter never exceeds the bound, even when the bound
		// is zero and the very first batch is force-accepted.
		return ValidationDecision{Next: PhaseIndexingContent, Condition: "forced_accept", Forced: true, RetryCount: p.MaxContentRetries}
	}
	return ValidationDecision{Next: PhaseGatheringContent, Condition: "relevance_rejected", RetryCount: retryCount}
}

// ThresholdDecision is the outcome of the mastery gate.
type ThresholdDecision struct {
	Next      Phase
	Condition string
	Mastered  bool
	Attempts  int
}

// DecideThreshold applies the pass gate. A score exactly equal to the pass
// threshold masters the checkpoint. Exhausted remediation completes the
// checkpoint as not mastered rather than looping.
func DecideThreshold(score float64, attempts int, p Policy) ThresholdDecision {
	if score >= p.PassThreshold {
		return ThresholdDecision{Next: PhaseCheckpointComplete, Condition: "threshold_passed", Mastered: true, Attempts: attempts}
	}
	if attempts < p.MaxRemediationAttempts {
		return ThresholdDecision{Next: PhaseRemediating, Condition: "remediation_scheduled", Attempts: attempts + 1}
	}
	return ThresholdDecision{Next: PhaseCheckpointComplete, Condition: "remediation_exhausted", Attempts: attempts}
}

// TransitionBound is the worst-case number of transitions one checkpoint can
// take before reaching CheckpointComplete or Failed. Used by termination
// tests; derived from the fixed path length plus both bounded loops.
func TransitionBound(p Policy) int {
	fixed := 9
	gatherLoop := 2 * p.MaxContentRetries
	remediationLoop := 6 * p.MaxRemediationAttempts
	regen := 0
	if p.RegenerateOnEmpty {
		regen = 1
	}
	return fixed + gatherLoop + remediationLoop + regen
}
