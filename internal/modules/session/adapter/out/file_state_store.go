package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tutor/internal/modules/session/domain"
	sessionout "tutor/internal/modules/session/port/out"
	apperrors "tutor/internal/platform/errors"
)

type FileStateStore struct {
	path string
}

func NewFileStateStore(workPath string) sessionout.SessionStateStore {
	return &FileStateStore{path: filepath.Join(workPath, ".tutor", "active-session.json")}
}

func (s *FileStateStore) Save(_ context.Context, state domain.SessionState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("write session state: %w", err)
	}
	return nil
}

func (s *FileStateStore) Load(_ context.Context) (domain.SessionState, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.SessionState{}, apperrors.ErrNoActiveSession
		}
		return domain.SessionState{}, fmt.Errorf("read session state: %w", err)
	}
	state := domain.SessionState{}
	if err := json.Unmarshal(payload, &state); err != nil {
		return domain.SessionState{}, fmt.Errorf("decode session state: %w", err)
	}
	if state.SessionID == "" {
		return domain.SessionState{}, apperrors.ErrNoActiveSession
	}
	if err := state.Validate(); err != nil {
		return domain.SessionState{}, fmt.Errorf("decode session state: %w", err)
	}
	return state, nil
}

func (s *FileStateStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("clear session state: %w", err)
	}
	return nil
}
