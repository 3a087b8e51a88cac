package out

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tutor/internal/modules/session/domain"
	sessionout "tutor/internal/modules/session/port/out"
	apperrors "tutor/internal/platform/errors"
)

func TestSearchCollectorParsesResults(t *testing.T) {
	t.Parallel()

	var gotQuery, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{
				{"title": "Go pointers", "url": "https://example.com/1", "snippet": "A pointer holds an address."},
				{"title": "Empty", "url": "https://example.com/2", "snippet": "   "},
			},
		})
	}))
	defer server.Close()

	collector := NewSearchCollector(server.URL, "secret", 5, server.Client(), stubClock{now: time.Now().UTC()})
	items, err := collector.Collect(context.Background(), sessionout.CollectRequest{
		Topic:      "Pointers",
		Objectives: []string{"explain pointer semantics"},
		Attempt:    1,
	})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("collected %d items, want 1 (blank snippets dropped)", len(items))
	}
	if items[0].Source != domain.SourceSearch || items[0].Origin != "https://example.com/1" {
		t.Fatalf("unexpected item: %+v", items[0])
	}
	if gotQuery != "Pointers" {
		t.Fatalf("first attempt query = %q, want bare topic", gotQuery)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("auth header = %q", gotAuth)
	}
}

func TestSearchCollectorBroadensQueryOnRetry(t *testing.T) {
	t.Parallel()

	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		json.NewEncoder(w).Encode(map[string]any{"results": []map[string]string{}})
	}))
	defer server.Close()

	collector := NewSearchCollector(server.URL, "", 5, server.Client(), stubClock{now: time.Now().UTC()})
	_, err := collector.Collect(context.Background(), sessionout.CollectRequest{
		Topic:      "Pointers",
		Objectives: []string{"explain pointer semantics", "use pointers safely"},
		Attempt:    2,
	})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if gotQuery != "Pointers explain pointer semantics" {
		t.Fatalf("retry query = %q, want topic plus first objective", gotQuery)
	}
}

func TestSearchCollectorReportsServerErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	collector := NewSearchCollector(server.URL, "", 5, server.Client(), stubClock{now: time.Now().UTC()})
	_, err := collector.Collect(context.Background(), sessionout.CollectRequest{Topic: "Pointers", Attempt: 1})
	if !errors.Is(err, apperrors.ErrCollaboratorUnavailable) {
		t.Fatalf("expected ErrCollaboratorUnavailable, got %v", err)
	}
}

func TestSearchCollectorRequiresEndpoint(t *testing.T) {
	t.Parallel()

	collector := NewSearchCollector("", "", 5, nil, stubClock{now: time.Now().UTC()})
	_, err := collector.Collect(context.Background(), sessionout.CollectRequest{Topic: "Pointers", Attempt: 1})
	if !errors.Is(err, apperrors.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
