package newsapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newsServer(t *testing.T, articles []map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/everything" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "key" {
			t.Errorf("missing api key header")
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":       "ok",
			"totalResults": len(articles),
			"articles":     articles,
		})
	}))
}

func TestFetchRangeParsesArticles(t *testing.T) {
	srv := newsServer(t, []map[string]interface{}{
		{
			"source":      map[string]string{"name": "Reuters"},
			"title":       "Markets rally",
			"description": "Broad gains",
			"url":         "https://example.com/a",
			"publishedAt": "2025-03-09T10:00:00Z",
		},
		{
			// no URL: dropped
			"title":       "Orphan",
			"publishedAt": "2025-03-09T11:00:00Z",
		},
		{
			// bad timestamp: dropped
			"title":       "Bad time",
			"url":         "https://example.com/b",
			"publishedAt": "yesterday",
		},
	})
	defer srv.Close()

	c := New("key", srv.URL, time.Second)
	got, err := c.FetchRange(context.Background(),
		time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 valid article, got %d", len(got))
	}
	a := got[0]
	if a.SourceName != "Reuters" || a.Title != "Markets rally" || a.URL != "https://example.com/a" {
		t.Fatalf("unexpected article %+v", a)
	}
	if a.Annotated() {
		t.Fatalf("collected articles must not carry NLP features")
	}
}

func TestFetchRangeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "error",
			"code":    "apiKeyInvalid",
			"message": "Your API key is invalid",
		})
	}))
	defer srv.Close()

	c := New("key", srv.URL, time.Second)
	if _, err := c.FetchRange(context.Background(), time.Now().Add(-time.Hour), time.Now()); err == nil {
		t.Fatalf("expected provider error to surface")
	}
}

func TestFetchRangeRateLimited(t *testing.T) {
	srv := newsServer(t, nil)
	defer srv.Close()

	c := New("key", srv.URL, time.Second, WithRateLimit(0.0001, 1))
	if _, err := c.FetchRange(context.Background(), time.Now().Add(-time.Hour), time.Now()); err != nil {
		t.Fatalf("first request should pass: %v", err)
	}
	if _, err := c.FetchRange(context.Background(), time.Now().Add(-time.Hour), time.Now()); err == nil {
		t.Fatalf("second request should hit the rate limit")
	}
}
