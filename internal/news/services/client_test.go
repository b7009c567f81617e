package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"newsdeck/internal/core"
)

func newTestNewsAPIClient(t *testing.T, handler http.HandlerFunc) *NewsAPIClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(func() {
		server.Close()
		http.DefaultTransport.(*http.Transport).CloseIdleConnections()
	})

	return NewNewsAPIClient(testLogger(), &core.FeedConfig{
		APIKey:    "test-key",
		BaseURL:   server.URL,
		Country:   "us",
		PageSize:  20,
		UserAgent: "newsdeck-test",
		Timeout:   5 * time.Second,
	})
}

func TestTopHeadlinesRequestShape(t *testing.T) {
	client := newTestNewsAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/top-headlines" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("country") != "us" || query.Get("category") != "technology" {
			t.Errorf("Unexpected query %v", query)
		}
		if query.Get("page") != "2" || query.Get("pageSize") != "20" {
			t.Errorf("Unexpected pagination %v", query)
		}
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("Expected API key header, got %q", r.Header.Get("X-Api-Key"))
		}
		if r.Header.Get("User-Agent") != "newsdeck-test" {
			t.Errorf("Unexpected user agent %q", r.Header.Get("User-Agent"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "ok",
			"totalResults": 1,
			"articles": [{
				"source": {"id": "example", "name": "Example News"},
				"author": "Jo Reporter",
				"title": "A headline",
				"url": "https://example.com/a",
				"urlToImage": "https://example.com/a.jpg",
				"publishedAt": "2026-08-01T10:00:00Z"
			}]
		}`))
	})

	records, err := client.TopHeadlines(context.Background(), "technology", 2)
	if err != nil {
		t.Fatalf("Failed to fetch headlines: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	record := records[0]
	if record.URL != "https://example.com/a" || record.Source.Name != "Example News" {
		t.Errorf("Unexpected record: %+v", record)
	}
	if record.ImageURL != "https://example.com/a.jpg" || record.PublishedAt != "2026-08-01T10:00:00Z" {
		t.Errorf("Unexpected record fields: %+v", record)
	}
}

func TestSearchRequestShape(t *testing.T) {
	client := newTestNewsAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/everything" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if q := r.URL.Query().Get("q"); q != "golang" {
			t.Errorf("Unexpected search query %q", q)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok", "totalResults": 0, "articles": []}`))
	})

	records, err := client.Search(context.Background(), "golang", 1)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestFetchFailsOnUpstreamError(t *testing.T) {
	client := newTestNewsAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status": "error", "code": "apiKeyInvalid", "message": "Your API key is invalid"}`))
	})

	_, err := client.TopHeadlines(context.Background(), "general", 1)
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("Expected ErrFetchFailed, got %v", err)
	}
}

func TestFetchFailsOnErrorStatusWithHTTP200(t *testing.T) {
	// NewsAPI reports some failures inside a 200 response body.
	client := newTestNewsAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "error", "code": "rateLimited", "message": "Too many requests"}`))
	})

	_, err := client.TopHeadlines(context.Background(), "general", 1)
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("Expected ErrFetchFailed, got %v", err)
	}
}

func TestFetchFailsOnMalformedBody(t *testing.T) {
	client := newTestNewsAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := client.TopHeadlines(context.Background(), "general", 1)
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("Expected ErrFetchFailed, got %v", err)
	}
}
