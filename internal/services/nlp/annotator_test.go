package nlp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestAnnotateMapsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/annotate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["text"] == "" {
			t.Errorf("expected text in request")
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"sentiment": map[string]interface{}{"label": "positive", "score": 0.93},
			"entities":  []map[string]string{{"text": "Apple", "label": "ORG"}},
		})
	}))
	defer srv.Close()

	a := New(srv.URL, 2*time.Second)
	feats, err := a.Annotate(context.Background(), "Apple beats estimates")
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if feats.Sentiment == nil || feats.Sentiment.Label != "positive" || feats.Sentiment.Score != 0.93 {
		t.Fatalf("unexpected sentiment %+v", feats.Sentiment)
	}
	if len(feats.Entities) != 1 || feats.Entities[0].Text != "Apple" {
		t.Fatalf("unexpected entities %+v", feats.Entities)
	}
}

func TestAnnotateRetriesTransientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"sentiment": map[string]interface{}{"label": "neutral", "score": 0.5},
		})
	}))
	defer srv.Close()

	a := New(srv.URL, 2*time.Second)
	feats, err := a.Annotate(context.Background(), "quiet day")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if feats.Sentiment == nil || feats.Sentiment.Label != "neutral" {
		t.Fatalf("unexpected features %+v", feats)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestAnnotateEmptyEntities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"sentiment": map[string]interface{}{"label": "negative", "score": 0.7},
			"entities":  []map[string]string{},
		})
	}))
	defer srv.Close()

	a := New(srv.URL, time.Second)
	feats, err := a.Annotate(context.Background(), "markets slide")
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if len(feats.Entities) != 0 {
		t.Fatalf("expected no entities, got %+v", feats.Entities)
	}
}
