package domain

import (
	"strings"
	"testing"
)

func validManifest() Manifest {
	return Manifest{
		Name:    "reference",
		Version: "1.0.0",
		Binary:  "/opt/tutor/providers/reference",
		SHA256:  strings.Repeat("a", 64),
		Enabled: true,
		Roles:   []Role{RoleScorer, RoleGrader},
	}
}

func TestManifestValidate(t *testing.T) {
	t.Parallel()

	if err := validManifest().Validate(); err != nil {
		t.Fatalf("valid manifest rejected: %v", err)
	}

	bad := validManifest()
	bad.SHA256 = "not-hex"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for malformed sha256")
	}

	bad = validManifest()
	bad.Roles = nil
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for missing roles")
	}

	bad = validManifest()
	bad.Roles = []Role{RoleScorer, RoleScorer}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for duplicate role")
	}

	bad = validManifest()
	bad.Roles = []Role{"oracle"}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestManifestHasRole(t *testing.T) {
	t.Parallel()

	manifest := validManifest()
	if !manifest.HasRole(RoleScorer) {
		t.Fatalf("expected scorer role")
	}
	if manifest.HasRole(RoleExplainer) {
		t.Fatalf("unexpected explainer role")
	}
}
