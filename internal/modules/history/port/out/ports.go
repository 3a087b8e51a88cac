package out

import (
	"context"

	"tutor/internal/modules/history/domain"
)

// RecordStore is the primary store: one markdown note per finished session.
type RecordStore interface {
	Save(ctx context.Context, record domain.SessionRecord) (string, error)
	List(ctx context.Context) ([]domain.SessionRecord, error)
	Load(ctx context.Context, sessionID string) (domain.SessionRecord, error)
}

// RecordProjector mirrors records into the queryable read model.
type RecordProjector interface {
	Reset(ctx context.Context) error
	Upsert(ctx context.Context, record domain.SessionRecord) error
}
