package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"tutor/internal/modules/history/domain"
	historyout "tutor/internal/modules/history/port/out"

	_ "modernc.org/sqlite"
)

type SQLiteRecordProjector struct {
	db *sql.DB
}

func NewSQLiteRecordProjector(dbPath string) (historyout.RecordProjector, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	projector := &SQLiteRecordProjector{db: db}
	if err := projector.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return projector, nil
}

func (s *SQLiteRecordProjector) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS session_records (
  session_id TEXT PRIMARY KEY,
  plan_id TEXT NOT NULL,
  plan_title TEXT NOT NULL,
  started_at TEXT NOT NULL,
  completed_at TEXT NOT NULL,
  checkpoint_count INTEGER NOT NULL,
  mastered_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS session_outcomes (
  session_id TEXT NOT NULL,
  order_index INTEGER NOT NULL,
  topic TEXT NOT NULL,
  score REAL NOT NULL,
  mastered INTEGER NOT NULL,
  remediation_attempts INTEGER NOT NULL,
  forced_content INTEGER NOT NULL,
  PRIMARY KEY (session_id, order_index)
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create record tables: %w", err)
	}
	return nil
}

func (s *SQLiteRecordProjector) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_outcomes`); err != nil {
		return fmt.Errorf("reset outcomes: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_records`); err != nil {
		return fmt.Errorf("reset records: %w", err)
	}
	return nil
}

func (s *SQLiteRecordProjector) Upsert(ctx context.Context, record domain.SessionRecord) error {
	const recordStmt = `
INSERT INTO session_records (session_id, plan_id, plan_title, started_at, completed_at, checkpoint_count, mastered_count)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(session_id) DO UPDATE SET
  plan_id=excluded.plan_id,
  plan_title=excluded.plan_title,
  started_at=excluded.started_at,
  completed_at=excluded.completed_at,
  checkpoint_count=excluded.checkpoint_count,
  mastered_count=excluded.mastered_count;
`
	if _, err := s.db.ExecContext(ctx, recordStmt,
		record.SessionID,
		record.PlanID,
		record.PlanTitle,
		record.StartedAt.Format(timeLayout),
		record.CompletedAt.Format(timeLayout),
		record.CheckpointCount,
		record.MasteredCount,
	); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}

	const outcomeStmt = `
INSERT INTO session_outcomes (session_id, order_index, topic, score, mastered, remediation_attempts, forced_content)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(session_id, order_index) DO UPDATE SET
  topic=excluded.topic,
  score=excluded.score,
  mastered=excluded.mastered,
  remediation_attempts=excluded.remediation_attempts,
  forced_content=excluded.forced_content;
`
	for _, outcome := range record.Outcomes {
		if _, err := s.db.ExecContext(ctx, outcomeStmt,
			record.SessionID,
			outcome.OrderIndex,
			outcome.Topic,
			outcome.Score,
			boolToInt(outcome.Mastered),
			outcome.RemediationAttempts,
			boolToInt(outcome.ForcedContent),
		); err != nil {
			return fmt.Errorf("upsert outcome: %w", err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
