package service

import (
	"context"
	"fmt"
	"sort"

	"tutor/internal/modules/history/domain"
	historyout "tutor/internal/modules/history/port/out"
	apperrors "tutor/internal/platform/errors"
)

type RecordService struct {
	store historyout.RecordStore
}

func NewRecordService(store historyout.RecordStore) *RecordService {
	return &RecordService{store: store}
}

func (s *RecordService) Save(ctx context.Context, record domain.SessionRecord) (string, error) {
	if err := record.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return s.store.Save(ctx, record)
}

// List returns records newest first.
func (s *RecordService) List(ctx context.Context) ([]domain.SessionRecord, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(a, b int) bool {
		return records[a].CompletedAt.After(records[b].CompletedAt)
	})
	return records, nil
}

func (s *RecordService) Get(ctx context.Context, sessionID string) (domain.SessionRecord, error) {
	if sessionID == "" {
		return domain.SessionRecord{}, fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}
	return s.store.Load(ctx, sessionID)
}
