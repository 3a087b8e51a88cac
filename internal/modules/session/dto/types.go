package dto

import "time"

// DirectiveKind tells the driver (CLI or TUI) what to do after an advance.
type DirectiveKind string

const (
	DirectiveProceed          DirectiveKind = "proceed"
	DirectiveNeedAnswers      DirectiveKind = "need_answers"
	DirectiveShowRemediation  DirectiveKind = "show_remediation"
	DirectiveCheckpointResult DirectiveKind = "checkpoint_result"
	DirectiveSessionFinished  DirectiveKind = "session_finished"
	DirectiveErrored          DirectiveKind = "errored"
)

type QuestionOutput struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	ObjectiveRef string `json:"objective_ref,omitempty"`
	Difficulty   string `json:"difficulty,omitempty"`
}

type AnswerInput struct {
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
}

type CheckpointResultOutput struct {
	OrderIndex          int     `json:"order_index"`
	Topic               string  `json:"topic"`
	Score               float64 `json:"score"`
	Mastered            bool    `json:"mastered"`
	RemediationAttempts int     `json:"remediation_attempts"`
	ForcedContent       bool    `json:"forced_content"`
}

type SessionSummaryOutput struct {
	SessionID       string                   `json:"session_id"`
	PlanID          string                   `json:"plan_id"`
	PlanTitle       string                   `json:"plan_title"`
	StartedAt       time.Time                `json:"started_at"`
	CompletedAt     time.Time                `json:"completed_at"`
	CheckpointCount int                      `json:"checkpoint_count"`
	MasteredCount   int                      `json:"mastered_count"`
	Outcomes        []CheckpointResultOutput `json:"outcomes"`
}

// Directive is the engine's answer to one Advance call. Exactly one kind is
// set; the other fields carry what that kind needs.
type Directive struct {
	Kind          DirectiveKind           `json:"kind"`
	Phase         string                  `json:"phase"`
	Topic         string                  `json:"topic,omitempty"`
	Condition     string                  `json:"condition,omitempty"`
	Questions     []QuestionOutput        `json:"questions,omitempty"`
	Explanations  map[string]string       `json:"explanations,omitempty"`
	AttemptNumber int                     `json:"attempt_number,omitempty"`
	Result        *CheckpointResultOutput `json:"result,omitempty"`
	Summary       *SessionSummaryOutput   `json:"summary,omitempty"`
	Reason        string                  `json:"reason,omitempty"`
}

type StartSessionInput struct {
	PlanID string `json:"plan_id"`
}

type StartSessionOutput struct {
	SessionID       string `json:"session_id"`
	PlanTitle       string `json:"plan_title"`
	CheckpointCount int    `json:"checkpoint_count"`
	FirstTopic      string `json:"first_topic"`
}

type AdvanceInput struct {
	Answers []AnswerInput `json:"answers,omitempty"`
}

type SessionStatusOutput struct {
	SessionID       string    `json:"session_id"`
	PlanID          string    `json:"plan_id"`
	PlanTitle       string    `json:"plan_title"`
	Phase           string    `json:"phase"`
	CurrentIndex    int       `json:"current_index"`
	CurrentTopic    string    `json:"current_topic,omitempty"`
	CheckpointCount int       `json:"checkpoint_count"`
	MasteredCount   int       `json:"mastered_count"`
	ContentRetries  int       `json:"content_retries"`
	Remediations    int       `json:"remediations"`
	StartedAt       time.Time `json:"started_at"`
	LastError       string    `json:"last_error,omitempty"`
}
