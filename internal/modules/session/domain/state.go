package domain

import (
	"fmt"
	"time"
)

const SchemaVersion = 1

// Checkpoint is the session's immutable copy of one plan step.
type Checkpoint struct {
	Topic      string   `json:"topic"`
	Objectives []string `json:"objectives"`
	Difficulty string   `json:"difficulty"`
	OrderIndex int      `json:"order_index"`
}

// CheckpointOutcome records how one checkpoint ended. mastered=false after
// exhausted remediation is a soft failure, not an error.
type CheckpointOutcome struct {
	OrderIndex          int       `json:"order_index"`
	Topic               string    `json:"topic"`
	Score               float64   `json:"score"`
	Mastered            bool      `json:"mastered"`
	RemediationAttempts int       `json:"remediation_attempts"`
	ContentRetries      int       `json:"content_retries"`
	ForcedContent       bool      `json:"forced_content"`
	CompletedAt         time.Time `json:"completed_at"`
}

// TransitionRecord is one entry of the append-only audit log. The sequence
// is sufficient to replay the whole session trace.
type TransitionRecord struct {
	At        time.Time `json:"at"`
	From      Phase     `json:"from"`
	To        Phase     `json:"to"`
	Condition string    `json:"condition"`
}

// SessionState is the aggregate root of a learning session. It is mutated
// only by the engine; drivers hold it opaquely between Advance calls and must
// serialize concurrent access themselves.
type SessionState struct {
	SessionID string       `json:"session_id"`
	PlanID    string       `json:"plan_id"`
	PlanTitle string       `json:"plan_title"`
	StartedAt time.Time    `json:"started_at"`
	Checkpoints []Checkpoint `json:"checkpoints"`

	CurrentIndex            int   `json:"current_index"`
	Phase                   Phase `json:"phase"`
	ContentRetryCount       int   `json:"content_retry_count"`
	RemediationAttemptCount int   `json:"remediation_attempt_count"`
	RegenAttempted          bool  `json:"regen_attempted"`
	ForcedContent           bool  `json:"forced_content"`

	// Per-attempt working set, discarded when the checkpoint completes.
	Content     []ContentItem     `json:"content,omitempty"`
	Context     IndexedContext    `json:"context,omitempty"`
	Questions   []Question        `json:"questions,omitempty"`
	Answers     []Answer          `json:"answers,omitempty"`
	Evaluation  *EvaluationResult `json:"evaluation,omitempty"`
	Remediation map[string]string `json:"remediation,omitempty"`

	Outcomes  []CheckpointOutcome `json:"outcomes"`
	LastError string              `json:"last_error,omitempty"`
	Audit     []TransitionRecord  `json:"audit"`
}

func NewSessionState(sessionID, planID, planTitle string, checkpoints []Checkpoint, now time.Time) (SessionState, error) {
	if sessionID == "" {
		return SessionState{}, fmt.Errorf("session id is required")
	}
	if len(checkpoints) == 0 {
		return SessionState{}, fmt.Errorf("session needs at least one checkpoint")
	}
	for i, checkpoint := range checkpoints {
		if checkpoint.OrderIndex != i {
			return SessionState{}, fmt.Errorf("checkpoint %d has order index %d", i, checkpoint.OrderIndex)
		}
		if len(checkpoint.Objectives) == 0 {
			return SessionState{}, fmt.Errorf("checkpoint %q has no objectives", checkpoint.Topic)
		}
	}
	return SessionState{
		SessionID:   sessionID,
		PlanID:      planID,
		PlanTitle:   planTitle,
		StartedAt:   now,
		Checkpoints: checkpoints,
		Phase:       PhaseInit,
	}, nil
}

func (s *SessionState) Validate() error {
	if err := s.Phase.Validate(); err != nil {
		return err
	}
	if s.CurrentIndex < 0 || s.CurrentIndex > len(s.Checkpoints) {
		return fmt.Errorf("checkpoint index %d out of range", s.CurrentIndex)
	}
	return nil
}

// Current returns the checkpoint the machine is working on.
func (s *SessionState) Current() (Checkpoint, error) {
	if s.CurrentIndex >= len(s.Checkpoints) {
		return Checkpoint{}, fmt.Errorf("no checkpoint at index %d", s.CurrentIndex)
	}
	return s.Checkpoints[s.CurrentIndex], nil
}

func (s *SessionState) Remaining() int {
	return len(s.Checkpoints) - s.CurrentIndex - 1
}

// Transition moves the machine to the next phase and appends an audit
// record. It is the only way the phase changes.
func (s *SessionState) Transition(now time.Time, to Phase, condition string) {
	s.Audit = append(s.Audit, TransitionRecord{At: now, From: s.Phase, To: to, Condition: condition})
	s.Phase = to
}

// Fail records a terminal collaborator failure, preserving the cause.
func (s *SessionState) Fail(now time.Time, condition string, cause error) {
	if cause != nil {
		s.LastError = cause.Error()
	}
	s.Transition(now, PhaseFailed, condition)
}

// ResetAssessment clears the question/answer working set for a fresh
// assessment round. The indexed context survives: remediation never
// re-gathers content.
func (s *SessionState) ResetAssessment() {
	s.Questions = nil
	s.Answers = nil
	s.Evaluation = nil
	s.RegenAttempted = false
}

// ResetAttempt clears the entire per-checkpoint working set.
func (s *SessionState) ResetAttempt() {
	s.Content = nil
	s.Context = IndexedContext{}
	s.Remediation = nil
	s.ForcedContent = false
	s.ResetAssessment()
}

// CompleteCheckpoint records the outcome of the current checkpoint and moves
// the machine to CheckpointComplete.
func (s *SessionState) CompleteCheckpoint(now time.Time, condition string, score float64, mastered bool) {
	checkpoint := s.Checkpoints[s.CurrentIndex]
	s.Outcomes = append(s.Outcomes, CheckpointOutcome{
		OrderIndex:          checkpoint.OrderIndex,
		Topic:               checkpoint.Topic,
		Score:               score,
		Mastered:            mastered,
		RemediationAttempts: s.RemediationAttemptCount,
		ContentRetries:      s.ContentRetryCount,
		ForcedContent:       s.ForcedContent,
		CompletedAt:         now,
	})
	s.Transition(now, PhaseCheckpointComplete, condition)
}

// NextCheckpoint advances the sequence: index forward, both retry counters
// back to zero, working set discarded.
func (s *SessionState) NextCheckpoint(now time.Time) {
	s.CurrentIndex++
	s.ContentRetryCount = 0
	s.RemediationAttemptCount = 0
	s.ResetAttempt()
	s.Transition(now, PhaseInit, "next_checkpoint")
}

// MasteredCount reports how many completed checkpoints reached mastery.
func (s *SessionState) MasteredCount() int {
	count := 0
	for _, outcome := range s.Outcomes {
		if outcome.Mastered {
			count++
		}
	}
	return count
}
