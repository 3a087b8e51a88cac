package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tutor/internal/modules/curriculum/domain"
	curriculumout "tutor/internal/modules/curriculum/port/out"

	_ "modernc.org/sqlite"
)

type SQLitePlanProjector struct {
	db *sql.DB
}

func NewSQLitePlanProjector(dbPath string) (curriculumout.PlanIndexProjector, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	projector := &SQLitePlanProjector{db: db}
	if err := projector.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return projector, nil
}

func (s *SQLitePlanProjector) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS plans (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  checkpoint_count INTEGER NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS checkpoints (
  plan_id TEXT NOT NULL,
  order_index INTEGER NOT NULL,
  topic TEXT NOT NULL,
  difficulty TEXT NOT NULL,
  objectives TEXT NOT NULL,
  PRIMARY KEY (plan_id, order_index)
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create plan tables: %w", err)
	}
	return nil
}

func (s *SQLitePlanProjector) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints`); err != nil {
		return fmt.Errorf("reset checkpoints: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM plans`); err != nil {
		return fmt.Errorf("reset plans: %w", err)
	}
	return nil
}

func (s *SQLitePlanProjector) UpsertPlan(ctx context.Context, plan domain.Plan) error {
	const planStmt = `
INSERT INTO plans (id, title, checkpoint_count, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  title=excluded.title,
  checkpoint_count=excluded.checkpoint_count,
  updated_at=excluded.updated_at;
`
	if _, err := s.db.ExecContext(ctx, planStmt,
		plan.ID,
		plan.Title,
		len(plan.Checkpoints),
		plan.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	); err != nil {
		return fmt.Errorf("upsert plan: %w", err)
	}

	const checkpointStmt = `
INSERT INTO checkpoints (plan_id, order_index, topic, difficulty, objectives)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(plan_id, order_index) DO UPDATE SET
  topic=excluded.topic,
  difficulty=excluded.difficulty,
  objectives=excluded.objectives;
`
	for _, checkpoint := range plan.Checkpoints {
		if _, err := s.db.ExecContext(ctx, checkpointStmt,
			plan.ID,
			checkpoint.OrderIndex,
			checkpoint.Topic,
			string(checkpoint.Difficulty),
			strings.Join(checkpoint.Objectives, "\n"),
		); err != nil {
			return fmt.Errorf("upsert checkpoint: %w", err)
		}
	}
	return nil
}
