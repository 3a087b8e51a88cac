package domain

import (
	"errors"
	"fmt"
	"regexp"
)

// Role is a collaborator slot a provider can fill. A provider binary may
// serve several roles; the engine uses one provider per role.
type Role string

const (
	RoleScorer    Role = "scorer"
	RoleGenerator Role = "generator"
	RoleGrader    Role = "grader"
	RoleExplainer Role = "explainer"
)

var (
	ErrProviderDisabled = errors.New("provider is disabled")
	ErrChecksumMismatch = errors.New("provider checksum mismatch")
	ErrRoleMissing      = errors.New("provider role missing")
	ErrProviderTimeout  = errors.New("provider timeout")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

type Manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Binary  string `json:"binary"`
	SHA256  string `json:"sha256"`
	Enabled bool   `json:"enabled"`
	Roles   []Role `json:"roles"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("provider name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("provider version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("provider binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("provider sha256 must be lowercase 64-char hex")
	}
	if len(m.Roles) == 0 {
		return fmt.Errorf("provider roles are required")
	}
	seen := map[Role]struct{}{}
	for _, role := range m.Roles {
		if err := role.Validate(); err != nil {
			return err
		}
		if _, ok := seen[role]; ok {
			return fmt.Errorf("duplicate role: %s", role)
		}
		seen[role] = struct{}{}
	}
	return nil
}

func (r Role) Validate() error {
	switch r {
	case RoleScorer, RoleGenerator, RoleGrader, RoleExplainer:
		return nil
	default:
		return fmt.Errorf("unknown role: %s", r)
	}
}

func (m Manifest) HasRole(role Role) bool {
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type Metadata struct {
	Name    string
	Version string
	Roles   []Role
}
