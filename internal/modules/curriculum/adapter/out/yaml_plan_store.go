package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tutor/internal/modules/curriculum/domain"
	curriculumout "tutor/internal/modules/curriculum/port/out"
	apperrors "tutor/internal/platform/errors"
)

// YAMLPlanStore reads learning plans from <plansPath>/<id>.yaml. The plan id
// is the file name stem; checkpoint order is the document order.
type YAMLPlanStore struct {
	plansPath string
}

type planFile struct {
	Title       string              `yaml:"title"`
	Checkpoints []domain.Checkpoint `yaml:"checkpoints"`
}

func NewYAMLPlanStore(plansPath string) curriculumout.PlanStore {
	return &YAMLPlanStore{plansPath: plansPath}
}

func (s *YAMLPlanStore) Load(_ context.Context, id string) (domain.Plan, error) {
	path := filepath.Join(s.plansPath, id+".yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Plan{}, fmt.Errorf("plan %s: %w", id, apperrors.ErrNotFound)
		}
		return domain.Plan{}, fmt.Errorf("read plan %s: %w", id, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("stat plan %s: %w", id, err)
	}
	return decodePlan(id, raw, info.ModTime().UTC())
}

func (s *YAMLPlanStore) List(ctx context.Context) ([]domain.Plan, error) {
	entries, err := os.ReadDir(s.plansPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Plan{}, nil
		}
		return nil, fmt.Errorf("read plans dir: %w", err)
	}
	plans := make([]domain.Plan, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		plan, err := s.Load(ctx, strings.TrimSuffix(name, ".yaml"))
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].ID < plans[j].ID })
	return plans, nil
}

func decodePlan(id string, raw []byte, updatedAt time.Time) (domain.Plan, error) {
	parsed := planFile{}
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return domain.Plan{}, fmt.Errorf("decode plan %s: %w", id, err)
	}
	plan := domain.Plan{ID: id, Title: parsed.Title, UpdatedAt: updatedAt}
	for i, checkpoint := range parsed.Checkpoints {
		checkpoint.OrderIndex = i
		if checkpoint.Difficulty == "" {
			checkpoint.Difficulty = domain.DifficultyBeginner
		}
		plan.Checkpoints = append(plan.Checkpoints, checkpoint)
	}
	return plan, nil
}
