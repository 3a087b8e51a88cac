package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tutor/internal/modules/provider/domain"
	"tutor/internal/modules/provider/dto"
	providerout "tutor/internal/modules/provider/port/out"
)

type ProviderService struct {
	store providerout.ManifestStore
	host  providerout.Host
}

func NewProviderService(store providerout.ManifestStore, host providerout.Host) *ProviderService {
	return &ProviderService{store: store, host: host}
}

func (s *ProviderService) List(ctx context.Context) ([]dto.ProviderInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProviderInfo, 0, len(manifests))
	for _, m := range manifests {
		roles := make([]string, 0, len(m.Roles))
		for _, role := range m.Roles {
			roles = append(roles, string(role))
		}
		out = append(out, dto.ProviderInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary, Roles: roles})
	}
	return out, nil
}

func (s *ProviderService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		binaryOK := fileExists(m.Binary)
		result.BinaryReachable = binaryOK
		checksumOK := false
		if binaryOK {
			checksumOK = checksumMatches(m.Binary, m.SHA256) == nil
		}
		result.ChecksumValid = checksumOK
		if binaryOK && checksumOK && m.Enabled && s.host != nil {
			if err := s.host.CheckLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		if !binaryOK {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
		}
		if binaryOK && !checksumOK {
			result.Error = "checksum mismatch"
		}
		results = append(results, result)
	}
	return results, nil
}

// ResolveRole returns the first enabled, checksum-verified provider that
// serves the role.
func (s *ProviderService) ResolveRole(ctx context.Context, role domain.Role) (domain.Manifest, error) {
	if err := role.Validate(); err != nil {
		return domain.Manifest{}, err
	}
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return domain.Manifest{}, err
	}
	for _, manifest := range manifests {
		if !manifest.Enabled || !manifest.HasRole(role) {
			continue
		}
		if err := checksumMatches(manifest.Binary, manifest.SHA256); err != nil {
			return domain.Manifest{}, err
		}
		return manifest, nil
	}
	return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrRoleMissing, role)
}

func (s *ProviderService) HasRole(ctx context.Context, role domain.Role) (bool, error) {
	_, err := s.ResolveRole(ctx, role)
	if err != nil {
		if errors.Is(err, domain.ErrRoleMissing) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *ProviderService) ScoreRelevance(ctx context.Context, input dto.ScoreInput) (dto.ScoreOutput, error) {
	manifest, err := s.ResolveRole(ctx, domain.RoleScorer)
	if err != nil {
		return dto.ScoreOutput{}, err
	}
	out, err := s.host.ScoreRelevance(ctx, manifest, input)
	if err != nil {
		return dto.ScoreOutput{}, s.wrapHostErr(manifest, err)
	}
	if len(out.Scores) != len(input.Items) {
		return dto.ScoreOutput{}, fmt.Errorf("provider %s scored %d of %d items", manifest.Name, len(out.Scores), len(input.Items))
	}
	return out, nil
}

func (s *ProviderService) GenerateQuestions(ctx context.Context, input dto.GenerateInput) (dto.GenerateOutput, error) {
	manifest, err := s.ResolveRole(ctx, domain.RoleGenerator)
	if err != nil {
		return dto.GenerateOutput{}, err
	}
	out, err := s.host.GenerateQuestions(ctx, manifest, input)
	if err != nil {
		return dto.GenerateOutput{}, s.wrapHostErr(manifest, err)
	}
	return out, nil
}

func (s *ProviderService) GradeAnswers(ctx context.Context, input dto.GradeInput) (dto.GradeOutput, error) {
	manifest, err := s.ResolveRole(ctx, domain.RoleGrader)
	if err != nil {
		return dto.GradeOutput{}, err
	}
	out, err := s.host.GradeAnswers(ctx, manifest, input)
	if err != nil {
		return dto.GradeOutput{}, s.wrapHostErr(manifest, err)
	}
	return out, nil
}

func (s *ProviderService) Explain(ctx context.Context, input dto.ExplainInput) (dto.ExplainOutput, error) {
	manifest, err := s.ResolveRole(ctx, domain.RoleExplainer)
	if err != nil {
		return dto.ExplainOutput{}, err
	}
	out, err := s.host.Explain(ctx, manifest, input)
	if err != nil {
		return dto.ExplainOutput{}, s.wrapHostErr(manifest, err)
	}
	return out, nil
}

func (s *ProviderService) wrapHostErr(manifest domain.Manifest, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s", domain.ErrProviderTimeout, manifest.Name)
	}
	return fmt.Errorf("provider %s: %w", manifest.Name, err)
}

func (s *ProviderService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seenNames := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seenNames[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate provider name: %s", manifest.Name)
		}
		seenNames[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read provider binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	actual := hex.EncodeToString(hash[:])
	if actual != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
