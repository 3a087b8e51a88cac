package domain

import (
	"testing"
	"time"
)

func testPolicy() Policy {
	return Policy{
		AcceptThreshold:        0.6,
		PassThreshold:          0.70,
		MaxContentRetries:      3,
		MaxRemediationAttempts: 3,
		MinQuestions:           3,
		MaxQuestions:           5,
		PerQuestionCutoff:      0.5,
		CollaboratorTimeout:    30 * time.Second,
		RegenerateOnEmpty:      true,
	}
}

func TestPolicyValidate(t *testing.T) {
	t.Parallel()

	if err := testPolicy().Validate(); err != nil {
		t.Fatalf("valid policy rejected: %v", err)
	}

	bad := testPolicy()
	bad.AcceptThreshold = 1.5
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for accept threshold out of range")
	}

	bad = testPolicy()
	bad.MinQuestions = 5
	bad.MaxQuestions = 3
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for inverted question bounds")
	}

	bad = testPolicy()
	bad.CollaboratorTimeout = 0
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
}

func TestDecideValidationAcceptsAtThreshold(t *testing.T) {
	t.Parallel()

	decision := DecideValidation(0.6, 0, testPolicy())
	if decision.Next != PhaseIndexingContent || decision.Condition != "relevance_accepted" {
		t.Fatalf("mean == threshold should accept, got %s/%s", decision.Next, decision.Condition)
	}
	if decision.Forced || decision.RetryCount != 0 {
		t.Fatalf("clean accept should not count a retry: %+v", decision)
	}
}

func TestDecideValidationRejectsBelowThreshold(t *testing.T) {
	t.Parallel()

	decision := DecideValidation(0.59, 0, testPolicy())
	if decision.Next != PhaseGatheringContent || decision.Condition != "relevance_rejected" {
		t.Fatalf("expected re-gather, got %s/%s", decision.Next, decision.Condition)
	}
	if decision.RetryCount != 1 {
		t.Fatalf("retry count = %d, want 1", decision.RetryCount)
	}
}

func TestDecideValidationForcesOnThirdLowBatch(t *testing.T) {
	t.Parallel()

	policy := testPolicy()
	retries := 0
	for round := 1; round <= policy.MaxContentRetries; round++ {
		decision := DecideValidation(0.1, retries, policy)
		retries = decision.RetryCount
		if retries > policy.MaxContentRetries {
			t.Fatalf("retry count %d exceeds bound %d", retries, policy.MaxContentRetries)
		}
		if round < policy.MaxContentRetries {
			if decision.Next != PhaseGatheringContent {
				t.Fatalf("round %d: expected re-gather, got %s", round, decision.Next)
			}
			continue
		}
		if decision.Next != PhaseIndexingContent || !decision.Forced || decision.Condition != "forced_accept" {
			t.Fatalf("round %d: expected forced accept, got %+v", round, decision)
		}
	}
}

func TestDecideValidationZeroBudgetForcesFirstBatch(t *testing.T) {
	t.Parallel()

	policy := testPolicy()
	policy.MaxContentRetries = 0
	decision := DecideValidation(0.1, 0, policy)
	if decision.Next != PhaseIndexingContent || !decision.Forced || decision.Condition != "forced_accept" {
		t.Fatalf("zero budget should force-accept the first low batch, got %+v", decision)
	}
	if decision.RetryCount != 0 {
		t.Fatalf("retry count = %d, must not exceed the zero bound", decision.RetryCount)
	}
}

func TestDecideThresholdPassesAtBoundary(t *testing.T) {
	t.Parallel()

	decision := DecideThreshold(0.70, 0, testPolicy())
	if !decision.Mastered || decision.Condition != "threshold_passed" {
		t.Fatalf("score == pass threshold should master, got %+v", decision)
	}
}

func TestDecideThresholdSchedulesRemediation(t *testing.T) {
	t.Parallel()

	decision := DecideThreshold(0.4, 0, testPolicy())
	if decision.Next != PhaseRemediating || decision.Attempts != 1 {
		t.Fatalf("expected first remediation, got %+v", decision)
	}
}

func TestDecideThresholdExhaustsRemediation(t *testing.T) {
	t.Parallel()

	policy := testPolicy()
	attempts := 0
	for round := 0; round < policy.MaxRemediationAttempts; round++ {
		decision := DecideThreshold(0.3, attempts, policy)
		if decision.Next != PhaseRemediating {
			t.Fatalf("round %d: expected remediation, got %s", round, decision.Next)
		}
		attempts = decision.Attempts
	}
	if attempts != policy.MaxRemediationAttempts {
		t.Fatalf("attempts = %d, want %d", attempts, policy.MaxRemediationAttempts)
	}
	final := DecideThreshold(0.3, attempts, policy)
	if final.Next != PhaseCheckpointComplete || final.Condition != "remediation_exhausted" || final.Mastered {
		t.Fatalf("expected unmastered completion after exhaustion, got %+v", final)
	}
}

func TestTransitionBoundGrowsWithLoops(t *testing.T) {
	t.Parallel()

	base := testPolicy()
	bigger := base
	bigger.MaxRemediationAttempts = base.MaxRemediationAttempts + 1
	if TransitionBound(bigger) <= TransitionBound(base) {
		t.Fatalf("bound should grow with remediation budget")
	}
	if TransitionBound(base) <= 0 {
		t.Fatalf("bound must be positive")
	}
}
