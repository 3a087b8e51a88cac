package domain

import (
	"fmt"
	"time"
)

const SchemaVersion = 1

// CheckpointOutcome is the archived result of one checkpoint.
type CheckpointOutcome struct {
	OrderIndex          int
	Topic               string
	Score               float64
	Mastered            bool
	RemediationAttempts int
	ContentRetries      int
	ForcedContent       bool
}

// SessionRecord is the permanent report of one finished session. Records
// are append-only; a session is archived exactly once.
type SessionRecord struct {
	SessionID       string
	PlanID          string
	PlanTitle       string
	StartedAt       time.Time
	CompletedAt     time.Time
	CheckpointCount int
	MasteredCount   int
	Outcomes        []CheckpointOutcome
}

func (r SessionRecord) Validate() error {
	if r.SessionID == "" {
		return fmt.Errorf("record session id is required")
	}
	if r.PlanTitle == "" {
		return fmt.Errorf("record plan title is required")
	}
	if r.MasteredCount > r.CheckpointCount {
		return fmt.Errorf("mastered %d of %d checkpoints", r.MasteredCount, r.CheckpointCount)
	}
	return nil
}

// MasteryRate is the share of checkpoints that reached mastery, in [0,1].
func (r SessionRecord) MasteryRate() float64 {
	if r.CheckpointCount == 0 {
		return 0
	}
	return float64(r.MasteredCount) / float64(r.CheckpointCount)
}
