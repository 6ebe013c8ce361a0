package usecase

import (
	"context"
	"testing"
	"time"

	"Stockometry/internal/domain/models"
	"Stockometry/internal/services/analysis"
	"Stockometry/internal/services/sectors"
)

func testRunner(articles *fakeArticleStore, reports *fakeReportStore, m *fakeMetrics) *ReportRunner {
	synth := analysis.NewSynthesizer(sectors.Default(), 0)
	return NewReportRunner(articles, reports, synth, nil, nil, 0, 0, m, nil)
}

func TestBackfillRestoresCoverageBeforeReruns(t *testing.T) {
	day1 := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)

	reports := &fakeReportStore{missing: []time.Time{day1, day2}}
	store := &fakeArticleStore{}
	m := &fakeMetrics{}
	fetcher := &fakeFetcher{articles: []*models.Article{testArticle("u1", "reuters")}}
	collector := NewNewsCollector(fetcher, nil, store, m, "clickhouse")

	b := NewBackfill(reports, testRunner(store, reports, m), collector, nil, nil)
	dates, err := b.Run(context.Background(), day1, day2)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(dates) != 2 {
		t.Fatalf("scheduled %d dates, want 2", len(dates))
	}

	// Coverage for the whole missing span is fetched once, before the
	// report runs.
	if fetcher.rangeCalls != 1 {
		t.Fatalf("FetchRange calls = %d, want 1", fetcher.rangeCalls)
	}
	if !fetcher.rangeFrom.Equal(day1) || !fetcher.rangeTo.Equal(day2.AddDate(0, 0, 1)) {
		t.Fatalf("fetched range [%s, %s), want [%s, %s)",
			fetcher.rangeFrom, fetcher.rangeTo, day1, day2.AddDate(0, 0, 1))
	}

	if len(reports.saved) != 2 {
		t.Fatalf("saved %d reports, want 2", len(reports.saved))
	}
	for _, sr := range reports.saved {
		if sr.RunSource != models.RunBackfill {
			t.Fatalf("run_source = %q, want %q", sr.RunSource, models.RunBackfill)
		}
	}
}

func TestBackfillNothingMissing(t *testing.T) {
	reports := &fakeReportStore{}
	fetcher := &fakeFetcher{}
	collector := NewNewsCollector(fetcher, nil, &fakeArticleStore{}, &fakeMetrics{}, "clickhouse")

	b := NewBackfill(reports, testRunner(&fakeArticleStore{}, reports, &fakeMetrics{}), collector, nil, nil)
	dates, err := b.Run(context.Background(), time.Now().AddDate(0, 0, -7), time.Now())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(dates) != 0 {
		t.Fatalf("scheduled %d dates, want 0", len(dates))
	}
	if fetcher.rangeCalls != 0 {
		t.Fatalf("FetchRange should not run when no dates are missing")
	}
	if len(reports.saved) != 0 {
		t.Fatalf("no reports should be generated")
	}
}
