package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	providerout "tutor/internal/modules/provider/adapter/out"
	"tutor/internal/modules/provider/domain"
	"tutor/internal/modules/provider/service"
)

func writeManifests(t *testing.T, base string, manifests []domain.Manifest) {
	t.Helper()
	providersDir := filepath.Join(base, "providers")
	if err := os.MkdirAll(providersDir, 0o755); err != nil {
		t.Fatalf("mkdir providers: %v", err)
	}
	raw, _ := json.Marshal(manifests)
	if err := os.WriteFile(filepath.Join(providersDir, "providers.json"), raw, 0o644); err != nil {
		t.Fatalf("write providers.json: %v", err)
	}
}

func writeBinary(t *testing.T, base, name string) (string, string) {
	t.Helper()
	path := filepath.Join(base, name)
	payload := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(path, payload, 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	hash := sha256.Sum256(payload)
	return path, hex.EncodeToString(hash[:])
}

func TestDoctorDetectsChecksumMismatch(t *testing.T) {
	t.Parallel()
	tmp := t.TempDir()
	binPath, _ := writeBinary(t, tmp, "dummy-provider")
	writeManifests(t, tmp, []domain.Manifest{{
		Name:    "demo",
		Version: "1.0.0",
		Binary:  binPath,
		SHA256:  strings.Repeat("0", 64),
		Enabled: true,
		Roles:   []domain.Role{domain.RoleScorer},
	}})

	svc := service.NewProviderService(providerout.NewFileManifestStore(tmp), nil)
	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if results[0].ChecksumValid {
		t.Fatalf("expected checksum mismatch")
	}
}

func TestResolveRolePicksEnabledProvider(t *testing.T) {
	t.Parallel()
	tmp := t.TempDir()
	binPath, checksum := writeBinary(t, tmp, "grader-provider")
	writeManifests(t, tmp, []domain.Manifest{
		{
			Name:    "disabled",
			Version: "1.0.0",
			Binary:  binPath,
			SHA256:  checksum,
			Enabled: false,
			Roles:   []domain.Role{domain.RoleGrader},
		},
		{
			Name:    "live",
			Version: "1.0.0",
			Binary:  binPath,
			SHA256:  checksum,
			Enabled: true,
			Roles:   []domain.Role{domain.RoleGrader, domain.RoleExplainer},
		},
	})

	svc := service.NewProviderService(providerout.NewFileManifestStore(tmp), nil)
	manifest, err := svc.ResolveRole(context.Background(), domain.RoleGrader)
	if err != nil {
		t.Fatalf("resolve role: %v", err)
	}
	if manifest.Name != "live" {
		t.Fatalf("resolved %q, want the enabled provider", manifest.Name)
	}
}

func TestResolveRoleMissing(t *testing.T) {
	t.Parallel()
	tmp := t.TempDir()
	binPath, checksum := writeBinary(t, tmp, "scorer-provider")
	writeManifests(t, tmp, []domain.Manifest{{
		Name:    "scorer-only",
		Version: "1.0.0",
		Binary:  binPath,
		SHA256:  checksum,
		Enabled: true,
		Roles:   []domain.Role{domain.RoleScorer},
	}})

	svc := service.NewProviderService(providerout.NewFileManifestStore(tmp), nil)
	if _, err := svc.ResolveRole(context.Background(), domain.RoleGenerator); !errors.Is(err, domain.ErrRoleMissing) {
		t.Fatalf("expected ErrRoleMissing, got %v", err)
	}

	ok, err := svc.HasRole(context.Background(), domain.RoleScorer)
	if err != nil || !ok {
		t.Fatalf("HasRole(scorer) = %v, %v", ok, err)
	}
	ok, err = svc.HasRole(context.Background(), domain.RoleGenerator)
	if err != nil || ok {
		t.Fatalf("HasRole(generator) = %v, %v", ok, err)
	}
}

func TestResolveRoleRejectsTamperedBinary(t *testing.T) {
	t.Parallel()
	tmp := t.TempDir()
	binPath, checksum := writeBinary(t, tmp, "tampered-provider")
	writeManifests(t, tmp, []domain.Manifest{{
		Name:    "tampered",
		Version: "1.0.0",
		Binary:  binPath,
		SHA256:  checksum,
		Enabled: true,
		Roles:   []domain.Role{domain.RoleScorer},
	}})
	if err := os.WriteFile(binPath, []byte("#!/bin/sh\nrm -rf /\n"), 0o755); err != nil {
		t.Fatalf("tamper binary: %v", err)
	}

	svc := service.NewProviderService(providerout.NewFileManifestStore(tmp), nil)
	if _, err := svc.ResolveRole(context.Background(), domain.RoleScorer); !errors.Is(err, domain.ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}
