package out

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tutor/internal/modules/session/domain"
	sessionout "tutor/internal/modules/session/port/out"
	"tutor/internal/platform/clock"
	apperrors "tutor/internal/platform/errors"
)

// SearchCollector pulls learning material from an HTTP search endpoint.
// Every re-gather broadens the query with one more objective so repeated
// attempts do not fetch the same batch.
type SearchCollector struct {
	endpoint   string
	apiKey     string
	maxResults int
	client     *http.Client
	clock      clock.Clock
}

type searchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Snippet string `json:"snippet"`
	} `json:"results"`
}

func NewSearchCollector(endpoint, apiKey string, maxResults int, client *http.Client, clk clock.Clock) sessionout.ContentCollector {
	if client == nil {
		client = http.DefaultClient
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	return &SearchCollector{
		endpoint:   endpoint,
		apiKey:     apiKey,
		maxResults: maxResults,
		client:     client,
		clock:      clk,
	}
}

func (c *SearchCollector) Collect(ctx context.Context, req sessionout.CollectRequest) ([]domain.ContentItem, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("%w: search endpoint is not configured", apperrors.ErrConfiguration)
	}

	query := buildQuery(req)
	target, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: search endpoint: %v", apperrors.ErrConfiguration, err)
	}
	values := target.Query()
	values.Set("q", query)
	values.Set("limit", strconv.Itoa(c.maxResults))
	target.RawQuery = values.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: search request: %v", apperrors.ErrCollaboratorUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: search returned %s", apperrors.ErrCollaboratorUnavailable, resp.Status)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", apperrors.ErrInvalidCollaboratorOutput, err)
	}

	items := make([]domain.ContentItem, 0, len(payload.Results))
	for _, result := range payload.Results {
		text := strings.TrimSpace(result.Snippet)
		if text == "" {
			continue
		}
		if result.Title != "" {
			text = result.Title + "\n" + text
		}
		items = append(items, domain.ContentItem{
			Source:     domain.SourceSearch,
			Origin:     result.URL,
			Text:       text,
			AcquiredAt: c.clock.Now(),
		})
	}
	return items, nil
}

// buildQuery widens with attempts: the first query is the bare topic, later
// ones pull objectives in, one more per attempt.
func buildQuery(req sessionout.CollectRequest) string {
	parts := []string{req.Topic}
	extra := req.Attempt - 1
	for i := 0; i < extra && i < len(req.Objectives); i++ {
		parts = append(parts, req.Objectives[i])
	}
	return strings.Join(parts, " ")
}
