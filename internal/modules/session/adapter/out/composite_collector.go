package out

import (
	"context"

	"tutor/internal/modules/session/domain"
	sessionout "tutor/internal/modules/session/port/out"
)

// CompositeCollector tries the learner's own notes first and falls back to
// search when the notes come up short. Both sources contribute when both
// have material.
type CompositeCollector struct {
	notes  sessionout.ContentCollector
	search sessionout.ContentCollector
}

func NewCompositeCollector(notes, search sessionout.ContentCollector) sessionout.ContentCollector {
	return &CompositeCollector{notes: notes, search: search}
}

func (c *CompositeCollector) Collect(ctx context.Context, req sessionout.CollectRequest) ([]domain.ContentItem, error) {
	items, err := c.notes.Collect(ctx, req)
	if err != nil {
		items = nil
	}
	if c.search == nil {
		return items, err
	}

	searched, searchErr := c.search.Collect(ctx, req)
	if searchErr != nil {
		// Notes alone are fine; with neither source the gather fails.
		if len(items) == 0 {
			return nil, searchErr
		}
		return items, nil
	}
	return append(items, searched...), nil
}
