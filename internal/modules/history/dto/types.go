package dto

import "time"

type RecordOutput struct {
	SessionID       string    `json:"session_id"`
	PlanID          string    `json:"plan_id"`
	PlanTitle       string    `json:"plan_title"`
	CompletedAt     time.Time `json:"completed_at"`
	CheckpointCount int       `json:"checkpoint_count"`
	MasteredCount   int       `json:"mastered_count"`
}

type OutcomeOutput struct {
	OrderIndex          int     `json:"order_index"`
	Topic               string  `json:"topic"`
	Score               float64 `json:"score"`
	Mastered            bool    `json:"mastered"`
	RemediationAttempts int     `json:"remediation_attempts"`
	ForcedContent       bool    `json:"forced_content"`
}

type RecordDetailOutput struct {
	SessionID       string          `json:"session_id"`
	PlanID          string          `json:"plan_id"`
	PlanTitle       string          `json:"plan_title"`
	StartedAt       time.Time       `json:"started_at"`
	CompletedAt     time.Time       `json:"completed_at"`
	CheckpointCount int             `json:"checkpoint_count"`
	MasteredCount   int             `json:"mastered_count"`
	MasteryRate     float64         `json:"mastery_rate"`
	Outcomes        []OutcomeOutput `json:"outcomes"`
}

type RecordInput struct {
	SessionID       string
	PlanID          string
	PlanTitle       string
	StartedAt       time.Time
	CompletedAt     time.Time
	CheckpointCount int
	MasteredCount   int
	Outcomes        []OutcomeOutput
}
