package domain

import (
	"fmt"
	"strings"
	"time"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) Validate() error {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return nil
	default:
		return fmt.Errorf("unknown difficulty: %s", d)
	}
}

// Checkpoint is one sequential unit of a learning plan. Immutable once the
// plan is loaded; the engine never mutates it.
type Checkpoint struct {
	Topic      string     `yaml:"topic"`
	Objectives []string   `yaml:"objectives"`
	Difficulty Difficulty `yaml:"difficulty"`
	OrderIndex int        `yaml:"-"`
}

func (c Checkpoint) Validate() error {
	if strings.TrimSpace(c.Topic) == "" {
		return fmt.Errorf("checkpoint topic is required")
	}
	if len(c.Objectives) == 0 {
		return fmt.Errorf("checkpoint %q needs at least one objective", c.Topic)
	}
	for i, objective := range c.Objectives {
		if strings.TrimSpace(objective) == "" {
			return fmt.Errorf("checkpoint %q objective %d is empty", c.Topic, i+1)
		}
	}
	return c.Difficulty.Validate()
}

type Plan struct {
	ID          string
	Title       string
	Checkpoints []Checkpoint
	UpdatedAt   time.Time
}

func (p Plan) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("plan id is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("plan title is required")
	}
	if len(p.Checkpoints) == 0 {
		return fmt.Errorf("plan %q has no checkpoints", p.ID)
	}
	for i, checkpoint := range p.Checkpoints {
		if checkpoint.OrderIndex != i {
			return fmt.Errorf("plan %q checkpoint %d has order index %d", p.ID, i, checkpoint.OrderIndex)
		}
		if err := checkpoint.Validate(); err != nil {
			return err
		}
	}
	return nil
}
