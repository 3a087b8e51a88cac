package out

import (
	"context"
	"errors"
	"testing"
	"time"

	"tutor/internal/modules/session/domain"
	apperrors "tutor/internal/platform/errors"
)

func TestFileStateStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewFileStateStore(t.TempDir())
	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession on empty store, got %v", err)
	}

	state, err := domain.NewSessionState("s1", "go-basics", "Go Basics", []domain.Checkpoint{
		{Topic: "Pointers", Objectives: []string{"explain pointers"}, Difficulty: "beginner", OrderIndex: 0},
	}, time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewSessionState: %v", err)
	}
	state.Transition(state.StartedAt, domain.PhaseGatheringContent, "checkpoint_ready")
	state.ContentRetryCount = 2

	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.SessionID != "s1" || loaded.Phase != domain.PhaseGatheringContent || loaded.ContentRetryCount != 2 {
		t.Fatalf("round trip lost state: %+v", loaded)
	}
	if len(loaded.Audit) != 1 || loaded.Audit[0].Condition != "checkpoint_ready" {
		t.Fatalf("audit log lost: %+v", loaded.Audit)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession after clear, got %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear on empty store: %v", err)
	}
}

func TestFileStateStoreRejectsUnknownPhase(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewFileStateStore(dir)
	ctx := context.Background()

	state, err := domain.NewSessionState("s1", "p", "P", []domain.Checkpoint{
		{Topic: "T", Objectives: []string{"o"}, OrderIndex: 0},
	}, time.Now().UTC())
	if err != nil {
		t.Fatalf("NewSessionState: %v", err)
	}
	state.Phase = domain.Phase("time_travel")
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := store.Load(ctx); err == nil {
		t.Fatalf("expected error for unknown phase")
	}
}
