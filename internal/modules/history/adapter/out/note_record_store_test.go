package out

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"tutor/internal/modules/history/domain"
	apperrors "tutor/internal/platform/errors"
)

func sampleRecord(sessionID string, completedAt time.Time) domain.SessionRecord {
	return domain.SessionRecord{
		SessionID:       sessionID,
		PlanID:          "go-basics",
		PlanTitle:       "Go Basics",
		StartedAt:       completedAt.Add(-45 * time.Minute),
		CompletedAt:     completedAt,
		CheckpointCount: 2,
		MasteredCount:   1,
		Outcomes: []domain.CheckpointOutcome{
			{OrderIndex: 0, Topic: "Pointers", Score: 0.85, Mastered: true, RemediationAttempts: 1},
			{OrderIndex: 1, Topic: "Slices", Score: 0.4, Mastered: false, RemediationAttempts: 3, ForcedContent: true},
		},
	}
}

func TestNoteRecordStoreRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewNoteRecordStore(dir)
	ctx := context.Background()
	completedAt := time.Date(2026, 8, 23, 14, 30, 5, 0, time.UTC)

	path, err := store.Save(ctx, sampleRecord("s1", completedAt))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.Contains(path, "2026") || !strings.HasSuffix(path, "go-basics.md") {
		t.Fatalf("unexpected report path: %s", path)
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(payload), "Mastered 1 of 2 checkpoints") {
		t.Fatalf("report body missing summary:\n%s", payload)
	}

	loaded, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.PlanTitle != "Go Basics" || loaded.MasteredCount != 1 || len(loaded.Outcomes) != 2 {
		t.Fatalf("round trip lost fields: %+v", loaded)
	}
	if loaded.Outcomes[1].RemediationAttempts != 3 || !loaded.Outcomes[1].ForcedContent {
		t.Fatalf("outcome detail lost: %+v", loaded.Outcomes[1])
	}
	if !loaded.CompletedAt.Equal(completedAt) {
		t.Fatalf("completed at = %v, want %v", loaded.CompletedAt, completedAt)
	}
}

func TestNoteRecordStoreListSkipsMalformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewNoteRecordStore(dir)
	ctx := context.Background()

	if _, err := store.Save(ctx, sampleRecord("s1", time.Date(2026, 8, 22, 9, 0, 0, 0, time.UTC))); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := store.Save(ctx, sampleRecord("s2", time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC))); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.WriteFile(dir+"/garbage.md", []byte("not a report"), 0o644); err != nil {
		t.Fatalf("write garbage: %v", err)
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("listed %d records, want 2", len(records))
	}
}

func TestNoteRecordStoreMissing(t *testing.T) {
	t.Parallel()

	store := NewNoteRecordStore(t.TempDir())
	if _, err := store.Load(context.Background(), "ghost"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
