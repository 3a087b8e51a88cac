package out

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tutor/internal/modules/history/domain"
	historyout "tutor/internal/modules/history/port/out"
	apperrors "tutor/internal/platform/errors"
	"tutor/internal/platform/markdown"
	"tutor/internal/platform/slug"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// NoteRecordStore writes one markdown report per finished session under
// reports/YYYY/MM/DD/. The frontmatter is the machine-readable record; the
// body is for the learner.
type NoteRecordStore struct {
	reportsPath string
}

func NewNoteRecordStore(reportsPath string) historyout.RecordStore {
	return &NoteRecordStore{reportsPath: reportsPath}
}

func (s *NoteRecordStore) Save(_ context.Context, record domain.SessionRecord) (string, error) {
	date := record.CompletedAt
	dir := filepath.Join(s.reportsPath, date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.md", date.Format("150405"), slug.Make(record.PlanTitle))
	path := filepath.Join(dir, name)

	outcomes := make([]map[string]any, 0, len(record.Outcomes))
	for _, outcome := range record.Outcomes {
		outcomes = append(outcomes, map[string]any{
			"order_index":          outcome.OrderIndex,
			"topic":                outcome.Topic,
			"score":                outcome.Score,
			"mastered":             outcome.Mastered,
			"remediation_attempts": outcome.RemediationAttempts,
			"content_retries":      outcome.ContentRetries,
			"forced_content":       outcome.ForcedContent,
		})
	}
	meta := map[string]any{
		"schema_version":   domain.SchemaVersion,
		"session_id":       record.SessionID,
		"plan_id":          record.PlanID,
		"plan_title":       record.PlanTitle,
		"started_at":       record.StartedAt.Format(timeLayout),
		"completed_at":     record.CompletedAt.Format(timeLayout),
		"checkpoint_count": record.CheckpointCount,
		"mastered_count":   record.MasteredCount,
		"outcomes":         outcomes,
	}

	body := renderBody(record)
	rendered, err := markdown.RenderFrontmatter(meta, body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func renderBody(record domain.SessionRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", record.PlanTitle)
	fmt.Fprintf(&b, "Mastered %d of %d checkpoints.\n\n", record.MasteredCount, record.CheckpointCount)
	b.WriteString("## Checkpoints\n\n")
	for _, outcome := range record.Outcomes {
		verdict := "needs another pass"
		if outcome.Mastered {
			verdict = "mastered"
		}
		fmt.Fprintf(&b, "- **%s**: %.0f%%, %s", outcome.Topic, outcome.Score*100, verdict)
		if outcome.RemediationAttempts > 0 {
			fmt.Fprintf(&b, " (after %d remediation rounds)", outcome.RemediationAttempts)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (s *NoteRecordStore) List(_ context.Context) ([]domain.SessionRecord, error) {
	var records []domain.SessionRecord
	err := filepath.WalkDir(s.reportsPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			return nil
		}
		record, err := s.parse(path)
		if err != nil {
			// A malformed report is skipped, not fatal.
			return nil
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("walk reports: %w", err)
	}
	return records, nil
}

func (s *NoteRecordStore) Load(ctx context.Context, sessionID string) (domain.SessionRecord, error) {
	records, err := s.List(ctx)
	if err != nil {
		return domain.SessionRecord{}, err
	}
	for _, record := range records {
		if record.SessionID == sessionID {
			return record, nil
		}
	}
	return domain.SessionRecord{}, fmt.Errorf("%w: session record %s", apperrors.ErrNotFound, sessionID)
}

func (s *NoteRecordStore) parse(path string) (domain.SessionRecord, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("read report: %w", err)
	}
	meta, _, err := markdown.SplitFrontmatter(string(payload))
	if err != nil {
		return domain.SessionRecord{}, err
	}

	record := domain.SessionRecord{
		SessionID:       asString(meta["session_id"]),
		PlanID:          asString(meta["plan_id"]),
		PlanTitle:       asString(meta["plan_title"]),
		StartedAt:       asTime(meta["started_at"]),
		CompletedAt:     asTime(meta["completed_at"]),
		CheckpointCount: asInt(meta["checkpoint_count"]),
		MasteredCount:   asInt(meta["mastered_count"]),
	}
	if rawOutcomes, ok := meta["outcomes"].([]any); ok {
		for _, rawOutcome := range rawOutcomes {
			fields, ok := rawOutcome.(map[string]any)
			if !ok {
				continue
			}
			record.Outcomes = append(record.Outcomes, domain.CheckpointOutcome{
				OrderIndex:          asInt(fields["order_index"]),
				Topic:               asString(fields["topic"]),
				Score:               asFloat(fields["score"]),
				Mastered:            asBool(fields["mastered"]),
				RemediationAttempts: asInt(fields["remediation_attempts"]),
				ContentRetries:      asInt(fields["content_retries"]),
				ForcedContent:       asBool(fields["forced_content"]),
			})
		}
	}
	if err := record.Validate(); err != nil {
		return domain.SessionRecord{}, err
	}
	return record, nil
}

func asString(value any) string {
	s, _ := value.(string)
	return s
}

func asInt(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func asFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func asBool(value any) bool {
	b, _ := value.(bool)
	return b
}

func asTime(value any) time.Time {
	parsed, err := time.Parse(timeLayout, asString(value))
	if err != nil {
		return time.Time{}
	}
	return parsed
}
