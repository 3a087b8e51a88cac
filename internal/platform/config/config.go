package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apperrors "tutor/internal/platform/errors"
)

// Policy holds the numeric knobs of the checkpoint state machine. All of
// them are configuration, never constants: deployments disagree on the
// literal values, so anything satisfying Validate is accepted.
type Policy struct {
	AcceptThreshold        float64 `yaml:"accept_threshold"`
	PassThreshold          float64 `yaml:"pass_threshold"`
	MaxContentRetries      int     `yaml:"max_content_retries"`
	MaxRemediationAttempts int     `yaml:"max_remediation_attempts"`
	MinQuestions           int     `yaml:"min_questions"`
	MaxQuestions           int     `yaml:"max_questions"`
	PerQuestionCutoff      float64 `yaml:"per_question_cutoff"`
	CollaboratorTimeoutSec int     `yaml:"collaborator_timeout_seconds"`
	RegenerateOnEmpty      bool    `yaml:"regenerate_on_empty"`
}

type Search struct {
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"-"`
	MaxResults int    `yaml:"max_results"`
}

type Config struct {
	WorkPath    string
	DBPath      string
	PlansPath   string
	NotesPath   string
	ReportsPath string
	ContextPath string
	LogLevel    string
	Policy      Policy `yaml:"policy"`
	Search      Search `yaml:"search"`
}

type fileConfig struct {
	Policy Policy `yaml:"policy"`
	Search Search `yaml:"search"`
}

func Defaults() Policy {
	return Policy{
		AcceptThreshold:        0.6,
		PassThreshold:          0.70,
		MaxContentRetries:      3,
		MaxRemediationAttempts: 3,
		MinQuestions:           3,
		MaxQuestions:           5,
		PerQuestionCutoff:      0.5,
		CollaboratorTimeoutSec: 30,
		RegenerateOnEmpty:      true,
	}
}

// New builds the configuration for a work directory: defaults, then
// <workdir>/tutor.yaml, then environment overrides (a .env file is honored
// when present).
func New(workPath string) (Config, error) {
	if workPath == "" {
		return Config{}, fmt.Errorf("work path is required")
	}
	_ = godotenv.Load()

	cfg := Config{
		WorkPath:    workPath,
		DBPath:      filepath.Join(workPath, ".tutor", "tutor.db"),
		PlansPath:   filepath.Join(workPath, "plans"),
		NotesPath:   filepath.Join(workPath, "notes"),
		ReportsPath: filepath.Join(workPath, "reports"),
		ContextPath: filepath.Join(workPath, ".tutor", "context"),
		LogLevel:    "warn",
		Policy:      Defaults(),
		Search:      Search{MaxResults: 3},
	}

	path := filepath.Join(workPath, "tutor.yaml")
	if raw, err := os.ReadFile(path); err == nil {
		parsed := fileConfig{Policy: cfg.Policy, Search: cfg.Search}
		if err := yaml.Unmarshal(raw, &parsed); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.Policy = parsed.Policy
		cfg.Search = parsed.Search
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if v := os.Getenv("TUTOR_SEARCH_ENDPOINT"); v != "" {
		cfg.Search.Endpoint = v
	}
	if v := os.Getenv("TUTOR_SEARCH_API_KEY"); v != "" {
		cfg.Search.APIKey = v
	}
	if v := os.Getenv("TUTOR_SEARCH_MAX_RESULTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: TUTOR_SEARCH_MAX_RESULTS: %v", apperrors.ErrConfiguration, err)
		}
		cfg.Search.MaxResults = n
	}
	if v := os.Getenv("TUTOR_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.Policy.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (p Policy) Validate() error {
	if p.AcceptThreshold < 0 || p.AcceptThreshold > 1 {
		return fmt.Errorf("%w: accept_threshold must be in [0,1], got %g", apperrors.ErrConfiguration, p.AcceptThreshold)
	}
	if p.PassThreshold < 0 || p.PassThreshold > 1 {
		return fmt.Errorf("%w: pass_threshold must be in [0,1], got %g", apperrors.ErrConfiguration, p.PassThreshold)
	}
	if p.PerQuestionCutoff < 0 || p.PerQuestionCutoff > 1 {
		return fmt.Errorf("%w: per_question_cutoff must be in [0,1], got %g", apperrors.ErrConfiguration, p.PerQuestionCutoff)
	}
	if p.MaxContentRetries < 0 {
		return fmt.Errorf("%w: max_content_retries must be >= 0", apperrors.ErrConfiguration)
	}
	if p.MaxRemediationAttempts < 0 {
		return fmt.Errorf("%w: max_remediation_attempts must be >= 0", apperrors.ErrConfiguration)
	}
	if p.MinQuestions < 1 || p.MaxQuestions < p.MinQuestions {
		return fmt.Errorf("%w: question bounds must satisfy 1 <= min <= max", apperrors.ErrConfiguration)
	}
	if p.CollaboratorTimeoutSec < 1 {
		return fmt.Errorf("%w: collaborator_timeout_seconds must be >= 1", apperrors.ErrConfiguration)
	}
	return nil
}
