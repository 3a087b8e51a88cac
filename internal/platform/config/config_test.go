package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"tutor/internal/platform/config"
)

func TestNewAppliesDefaults(t *testing.T) {
	tmp := t.TempDir()

	cfg, err := config.New(tmp)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.PlansPath != filepath.Join(tmp, "plans") {
		t.Fatalf("plans path = %s", cfg.PlansPath)
	}
	if cfg.Policy.PassThreshold != 0.70 {
		t.Fatalf("default pass threshold = %g", cfg.Policy.PassThreshold)
	}
	if cfg.Policy.MaxContentRetries != 3 {
		t.Fatalf("default content retries = %d", cfg.Policy.MaxContentRetries)
	}
}

func TestNewReadsFileAndEnvOverrides(t *testing.T) {
	tmp := t.TempDir()
	raw := `policy:
  accept_threshold: 0.5
  pass_threshold: 0.8
  max_content_retries: 2
  max_remediation_attempts: 1
  min_questions: 2
  max_questions: 4
  per_question_cutoff: 0.4
  collaborator_timeout_seconds: 10
  regenerate_on_empty: false
search:
  endpoint: https://search.example/api
  max_results: 7
`
	if err := os.WriteFile(filepath.Join(tmp, "tutor.yaml"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write tutor.yaml: %v", err)
	}
	t.Setenv("TUTOR_SEARCH_API_KEY", "secret")
	t.Setenv("TUTOR_LOG_LEVEL", "debug")

	cfg, err := config.New(tmp)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Policy.PassThreshold != 0.8 {
		t.Fatalf("pass threshold = %g, want file value", cfg.Policy.PassThreshold)
	}
	if cfg.Policy.RegenerateOnEmpty {
		t.Fatalf("expected regenerate_on_empty to be disabled")
	}
	if cfg.Search.Endpoint != "https://search.example/api" || cfg.Search.MaxResults != 7 {
		t.Fatalf("search config = %+v", cfg.Search)
	}
	if cfg.Search.APIKey != "secret" {
		t.Fatalf("api key not taken from environment")
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %s", cfg.LogLevel)
	}
}

func TestNewRejectsInvalidPolicy(t *testing.T) {
	tmp := t.TempDir()
	raw := `policy:
  accept_threshold: 1.4
  pass_threshold: 0.7
  max_content_retries: 3
  max_remediation_attempts: 3
  min_questions: 3
  max_questions: 5
  per_question_cutoff: 0.5
  collaborator_timeout_seconds: 30
`
	if err := os.WriteFile(filepath.Join(tmp, "tutor.yaml"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write tutor.yaml: %v", err)
	}
	if _, err := config.New(tmp); err == nil {
		t.Fatalf("expected error for accept_threshold out of range")
	}
}

func TestPolicyValidateBounds(t *testing.T) {
	t.Parallel()

	good := config.Defaults()
	if err := good.Validate(); err != nil {
		t.Fatalf("defaults rejected: %v", err)
	}

	bad := config.Defaults()
	bad.MinQuestions = 6
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error when min_questions exceeds max_questions")
	}

	bad = config.Defaults()
	bad.CollaboratorTimeoutSec = 0
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for zero collaborator timeout")
	}
}
