package usecase

import (
	"context"
	"testing"
	"time"

	"Stockometry/internal/domain/models"
)

func testArticle(url, source string) *models.Article {
	return &models.Article{
		URL:         url,
		SourceName:  source,
		Title:       "t-" + url,
		PublishedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestCollectAttributesOnlyIngestedArticles(t *testing.T) {
	// u2 is already stored; its source must not show up in the metrics
	// even though it sits in the middle of the batch.
	store := &fakeArticleStore{existing: map[string]bool{"u2": true}}
	m := &fakeMetrics{}
	fetcher := &fakeFetcher{articles: []*models.Article{
		testArticle("u1", "reuters"),
		testArticle("u2", "bloomberg"),
		testArticle("u3", "ft"),
	}}

	c := NewNewsCollector(fetcher, nil, store, m, "clickhouse")
	n, err := c.CollectLatest(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("CollectLatest() error: %v", err)
	}
	if n != 2 {
		t.Fatalf("ingested = %d, want 2", n)
	}

	sources := m.storedSources()
	if len(sources) != 2 || sources[0] != "reuters" || sources[1] != "ft" {
		t.Fatalf("stored sources = %v, want [reuters ft]", sources)
	}
}

func TestCollectKafkaAttributesPublishedPrefix(t *testing.T) {
	// The publisher dies on the third article: exactly the first two
	// were handed to the bus, and only they are counted.
	pub := &fakePublisher{failAfter: 3}
	m := &fakeMetrics{}
	fetcher := &fakeFetcher{articles: []*models.Article{
		testArticle("u1", "reuters"),
		testArticle("u2", "bloomberg"),
		testArticle("u3", "ft"),
	}}

	c := NewNewsCollector(fetcher, pub, nil, m, "kafka")
	n, err := c.CollectLatest(context.Background(), time.Hour)
	if err == nil {
		t.Fatal("expected publish error")
	}
	if n != 2 {
		t.Fatalf("ingested = %d, want 2", n)
	}
	if sources := m.storedSources(); len(sources) != 2 || sources[1] != "bloomberg" {
		t.Fatalf("stored sources = %v, want [reuters bloomberg]", sources)
	}
}

func TestCollectUnknownBackendFails(t *testing.T) {
	fetcher := &fakeFetcher{articles: []*models.Article{testArticle("u1", "reuters")}}
	c := NewNewsCollector(fetcher, nil, nil, &fakeMetrics{}, "postgres")
	if _, err := c.CollectLatest(context.Background(), time.Hour); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
