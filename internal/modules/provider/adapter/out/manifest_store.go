package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tutor/internal/modules/provider/domain"
	providerout "tutor/internal/modules/provider/port/out"
)

const manifestFile = "providers.json"

// FileManifestStore reads provider manifests from
// <workdir>/providers/providers.json: a JSON array of objects with
// name, version, binary, sha256, enabled, and roles fields. Unknown fields
// are rejected so a typo in a manifest surfaces as an error instead of a
// silently disabled provider. A missing file means no providers.
type FileManifestStore struct {
	basePath string
	path     string
}

func NewFileManifestStore(basePath string) providerout.ManifestStore {
	return &FileManifestStore{basePath: basePath, path: filepath.Join(basePath, "providers", manifestFile)}
}

func (s *FileManifestStore) Load(_ context.Context) ([]domain.Manifest, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Manifest{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", manifestFile, err)
	}
	var manifests []domain.Manifest
	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&manifests); err != nil {
		return nil, fmt.Errorf("decode %s: %w", manifestFile, err)
	}
	for i := range manifests {
		if err := manifests[i].Validate(); err != nil {
			return nil, fmt.Errorf("%s entry %d (%s): %w", manifestFile, i, manifests[i].Name, err)
		}
		// Binary paths are resolved against the work directory so a
		// manifest can ship alongside the binary it describes.
		if !filepath.IsAbs(manifests[i].Binary) {
			manifests[i].Binary = filepath.Clean(filepath.Join(s.basePath, manifests[i].Binary))
		}
	}
	return manifests, nil
}
