package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"tutor/internal/modules/session/domain"
	sessionout "tutor/internal/modules/session/port/out"

	_ "modernc.org/sqlite"
)

type SQLiteAuditProjector struct {
	db *sql.DB
}

func NewSQLiteAuditProjector(dbPath string) (sessionout.AuditProjector, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	projector := &SQLiteAuditProjector{db: db}
	if err := projector.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return projector, nil
}

func (s *SQLiteAuditProjector) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS transitions (
  session_id TEXT NOT NULL,
  seq INTEGER NOT NULL,
  at TEXT NOT NULL,
  from_phase TEXT NOT NULL,
  to_phase TEXT NOT NULL,
  condition TEXT NOT NULL,
  PRIMARY KEY (session_id, seq)
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create transitions table: %w", err)
	}
	return nil
}

func (s *SQLiteAuditProjector) Append(ctx context.Context, sessionID string, records []domain.TransitionRecord) error {
	var next int
	row := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), -1) + 1 FROM transitions WHERE session_id = ?`, sessionID)
	if err := row.Scan(&next); err != nil {
		return fmt.Errorf("read transition sequence: %w", err)
	}

	const stmt = `
INSERT INTO transitions (session_id, seq, at, from_phase, to_phase, condition)
VALUES (?, ?, ?, ?, ?, ?);
`
	for i, record := range records {
		if _, err := s.db.ExecContext(ctx, stmt,
			sessionID,
			next+i,
			record.At.Format("2006-01-02T15:04:05Z07:00"),
			string(record.From),
			string(record.To),
			record.Condition,
		); err != nil {
			return fmt.Errorf("append transition: %w", err)
		}
	}
	return nil
}
