package out

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"tutor/internal/modules/session/domain"
	sessionout "tutor/internal/modules/session/port/out"
	"tutor/internal/platform/clock"
	"tutor/internal/platform/markdown"

	"rsc.io/pdf"
)

// NotesCollector gathers learning material from the learner's own notes
// directory. Markdown, plain text and PDF files are supported; a file is
// picked up when its name or content mentions the checkpoint topic.
type NotesCollector struct {
	notesPath string
	clock     clock.Clock
}

func NewNotesCollector(notesPath string, clk clock.Clock) sessionout.ContentCollector {
	return &NotesCollector{notesPath: notesPath, clock: clk}
}

func (c *NotesCollector) Collect(ctx context.Context, req sessionout.CollectRequest) ([]domain.ContentItem, error) {
	terms := matchTerms(req.Topic, req.Objectives)
	var items []domain.ContentItem

	err := filepath.WalkDir(c.notesPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			if strings.HasPrefix(entry.Name(), ".") && path != c.notesPath {
				return filepath.SkipDir
			}
			return nil
		}
		text, err := c.extract(path)
		if err != nil {
			// One unreadable file must not sink the whole gather.
			return nil
		}
		if !mentionsAny(entry.Name()+" "+text, terms) {
			return nil
		}
		items = append(items, domain.ContentItem{
			Source:     domain.SourceUserNotes,
			Origin:     path,
			Text:       text,
			AcquiredAt: c.clock.Now(),
		})
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("walk notes: %w", err)
	}
	return items, nil
}

func (c *NotesCollector) extract(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md":
		payload, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read note: %w", err)
		}
		return markdown.Body(string(payload)), nil
	case ".txt":
		payload, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read note: %w", err)
		}
		return string(payload), nil
	case ".pdf":
		return extractPDF(path)
	default:
		return "", fmt.Errorf("unsupported note type: %s", path)
	}
}

func extractPDF(path string) (string, error) {
	doc, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var parts []string
	for page := 1; page <= doc.NumPage(); page++ {
		p := doc.Page(page)
		if p.V.IsNull() {
			continue
		}
		for _, text := range p.Content().Text {
			if strings.TrimSpace(text.S) == "" {
				continue
			}
			parts = append(parts, text.S)
		}
	}
	return strings.Join(parts, " "), nil
}

func matchTerms(topic string, objectives []string) []string {
	seen := map[string]struct{}{}
	var terms []string
	add := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if len(term) < 3 {
			return
		}
		if _, dup := seen[term]; dup {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	add(topic)
	for _, word := range strings.Fields(topic) {
		add(word)
	}
	for _, objective := range objectives {
		for _, word := range strings.Fields(objective) {
			add(word)
		}
	}
	return terms
}

func mentionsAny(text string, terms []string) bool {
	lowered := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}
