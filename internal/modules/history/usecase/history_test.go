package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"tutor/internal/modules/history/domain"
	"tutor/internal/modules/history/dto"
	"tutor/internal/modules/history/service"
	apperrors "tutor/internal/platform/errors"

	hclog "github.com/hashicorp/go-hclog"
)

type memRecordStore struct {
	records []domain.SessionRecord
}

func (m *memRecordStore) Save(_ context.Context, record domain.SessionRecord) (string, error) {
	m.records = append(m.records, record)
	return "reports/" + record.SessionID + ".md", nil
}

func (m *memRecordStore) List(context.Context) ([]domain.SessionRecord, error) {
	return append([]domain.SessionRecord(nil), m.records...), nil
}

func (m *memRecordStore) Load(_ context.Context, sessionID string) (domain.SessionRecord, error) {
	for _, record := range m.records {
		if record.SessionID == sessionID {
			return record, nil
		}
	}
	return domain.SessionRecord{}, apperrors.ErrNotFound
}

type memProjector struct {
	upserts int
	resets  int
}

func (m *memProjector) Reset(context.Context) error { m.resets++; return nil }
func (m *memProjector) Upsert(context.Context, domain.SessionRecord) error {
	m.upserts++
	return nil
}

func recordInput(sessionID string, completedAt time.Time) dto.RecordInput {
	return dto.RecordInput{
		SessionID:       sessionID,
		PlanID:          "go-basics",
		PlanTitle:       "Go Basics",
		StartedAt:       completedAt.Add(-30 * time.Minute),
		CompletedAt:     completedAt,
		CheckpointCount: 1,
		MasteredCount:   1,
		Outcomes: []dto.OutcomeOutput{
			{OrderIndex: 0, Topic: "Pointers", Score: 0.9, Mastered: true},
		},
	}
}

func TestRecordArchivesAndProjects(t *testing.T) {
	t.Parallel()

	store := &memRecordStore{}
	projector := &memProjector{}
	uc := NewInteractor(service.NewRecordService(store), projector, hclog.NewNullLogger())
	ctx := context.Background()

	if err := uc.Record(ctx, recordInput("s1", time.Date(2026, 8, 23, 15, 0, 0, 0, time.UTC))); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(store.records) != 1 || projector.upserts != 1 {
		t.Fatalf("store=%d projector=%d, want 1/1", len(store.records), projector.upserts)
	}
}

func TestRecordRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	uc := NewInteractor(service.NewRecordService(&memRecordStore{}), &memProjector{}, hclog.NewNullLogger())
	input := recordInput("", time.Now().UTC())
	if err := uc.Record(context.Background(), input); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestListRecordsNewestFirst(t *testing.T) {
	t.Parallel()

	store := &memRecordStore{}
	uc := NewInteractor(service.NewRecordService(store), &memProjector{}, hclog.NewNullLogger())
	ctx := context.Background()

	if err := uc.Record(ctx, recordInput("old", time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC))); err != nil {
		t.Fatalf("Record old: %v", err)
	}
	if err := uc.Record(ctx, recordInput("new", time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC))); err != nil {
		t.Fatalf("Record new: %v", err)
	}

	records, err := uc.ListRecords(ctx)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(records) != 2 || records[0].SessionID != "new" {
		t.Fatalf("unexpected order: %+v", records)
	}
}

func TestGetRecordComputesMasteryRate(t *testing.T) {
	t.Parallel()

	store := &memRecordStore{}
	uc := NewInteractor(service.NewRecordService(store), &memProjector{}, hclog.NewNullLogger())
	ctx := context.Background()

	input := recordInput("s1", time.Date(2026, 8, 23, 15, 0, 0, 0, time.UTC))
	input.CheckpointCount = 4
	input.MasteredCount = 3
	if err := uc.Record(ctx, input); err != nil {
		t.Fatalf("Record: %v", err)
	}

	detail, err := uc.GetRecord(ctx, "s1")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if detail.MasteryRate != 0.75 {
		t.Fatalf("mastery rate = %g, want 0.75", detail.MasteryRate)
	}
}

func TestReindexResetsThenUpserts(t *testing.T) {
	t.Parallel()

	store := &memRecordStore{}
	projector := &memProjector{}
	uc := NewInteractor(service.NewRecordService(store), projector, hclog.NewNullLogger())
	ctx := context.Background()

	if err := uc.Record(ctx, recordInput("s1", time.Now().UTC())); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := uc.Reindex(ctx); err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if projector.resets != 1 || projector.upserts != 2 {
		t.Fatalf("resets=%d upserts=%d, want 1/2", projector.resets, projector.upserts)
	}
}
