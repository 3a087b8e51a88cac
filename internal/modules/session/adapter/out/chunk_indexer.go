package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tutor/internal/modules/session/domain"
	sessionout "tutor/internal/modules/session/port/out"
	apperrors "tutor/internal/platform/errors"
)

const (
	chunkSize    = 500
	chunkOverlap = 80
)

// ChunkIndexer splits accepted content into overlapping text chunks and
// persists them as one JSON file per handle, so the indexed context survives
// across CLI invocations.
type ChunkIndexer struct {
	contextPath string
}

type chunkFile struct {
	Handle string   `json:"handle"`
	Chunks []string `json:"chunks"`
}

func NewChunkIndexer(contextPath string) sessionout.ContentIndexer {
	return &ChunkIndexer{contextPath: contextPath}
}

func (c *ChunkIndexer) Index(_ context.Context, sessionID string, checkpointIndex int, items []domain.ContentItem) (domain.IndexedContext, error) {
	var chunks []string
	for _, item := range items {
		chunks = append(chunks, splitChunks(item.Text)...)
	}
	handle := fmt.Sprintf("%s-cp%d", sessionID, checkpointIndex)

	if err := os.MkdirAll(c.contextPath, 0o755); err != nil {
		return domain.IndexedContext{}, fmt.Errorf("create context dir: %w", err)
	}
	payload, err := json.MarshalIndent(chunkFile{Handle: handle, Chunks: chunks}, "", "  ")
	if err != nil {
		return domain.IndexedContext{}, fmt.Errorf("marshal chunks: %w", err)
	}
	if err := os.WriteFile(c.path(handle), payload, 0o644); err != nil {
		return domain.IndexedContext{}, fmt.Errorf("write chunks: %w", err)
	}
	return domain.IndexedContext{Handle: handle, ChunkCount: len(chunks)}, nil
}

func (c *ChunkIndexer) Chunks(_ context.Context, ref domain.IndexedContext) ([]string, error) {
	payload, err := os.ReadFile(c.path(ref.Handle))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: context %s", apperrors.ErrNotFound, ref.Handle)
		}
		return nil, fmt.Errorf("read chunks: %w", err)
	}
	var file chunkFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return nil, fmt.Errorf("decode chunks: %w", err)
	}
	return file.Chunks, nil
}

func (c *ChunkIndexer) path(handle string) string {
	return filepath.Join(c.contextPath, handle+".json")
}

// splitChunks cuts text into ~chunkSize rune windows that overlap by
// chunkOverlap, snapping forward to whitespace so words stay whole.
func splitChunks(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}
	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + chunkSize
		if end >= len(runes) {
			chunks = append(chunks, strings.TrimSpace(string(runes[start:])))
			break
		}
		cut := end
		for cut > start && runes[cut] != ' ' && runes[cut] != '\n' {
			cut--
		}
		if cut == start {
			cut = end
		}
		chunks = append(chunks, strings.TrimSpace(string(runes[start:cut])))
		next := cut - chunkOverlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}
