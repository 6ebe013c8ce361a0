package analysis

import (
	"testing"
	"time"

	"Stockometry/internal/domain/models"
	"Stockometry/internal/services/sectors"
)

var testSectors = sectors.New(map[string]string{
	"AAPL": "Technology", "MSFT": "Technology", "NVDA": "Technology",
	"GOOGL": "Technology", "INTC": "Technology", "AMD": "Technology",
	"XOM": "Energy", "PFE": "Healthcare",
})

var asOf = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func article(daysBefore int, label string, score float64, title, url string, tickers ...string) *models.Article {
	ents := make([]models.Entity, 0, len(tickers))
	for _, t := range tickers {
		ents = append(ents, models.Entity{Text: t, Label: "ORG"})
	}
	return &models.Article{
		Title:       title,
		URL:         url,
		PublishedAt: asOf.AddDate(0, 0, -daysBefore),
		NLPFeatures: &models.NLPFeatures{
			Sentiment: &models.Sentiment{Label: label, Score: score},
			Entities:  ents,
		},
	}
}

func TestTrendThresholdIsStrict(t *testing.T) {
	d := NewTrendDetector(testSectors, 0)

	// Exactly at the threshold on all three days: no signal.
	at := []*models.Article{
		article(3, "positive", 0.1, "a", "u1", "AAPL"),
		article(2, "positive", 0.1, "b", "u2", "AAPL"),
		article(1, "positive", 0.1, "c", "u3", "AAPL"),
	}
	if res := d.Analyze(at, asOf); len(res.Signals) != 0 {
		t.Fatalf("expected no signal at threshold, got %d", len(res.Signals))
	}

	// Just above the threshold: Bullish.
	above := []*models.Article{
		article(3, "positive", 0.11, "a", "u1", "AAPL"),
		article(2, "positive", 0.11, "b", "u2", "AAPL"),
		article(1, "positive", 0.11, "c", "u3", "AAPL"),
	}
	res := d.Analyze(above, asOf)
	if len(res.Signals) != 1 {
		t.Fatalf("expected one signal, got %d", len(res.Signals))
	}
	if res.Signals[0].Direction != models.DirectionBullish || res.Signals[0].Sector != "Technology" {
		t.Fatalf("unexpected signal %+v", res.Signals[0])
	}
}

func TestTrendBearish(t *testing.T) {
	d := NewTrendDetector(testSectors, 0)
	arts := []*models.Article{
		article(3, "negative", 0.8, "a", "u1", "XOM"),
		article(2, "negative", 0.7, "b", "u2", "XOM"),
		article(1, "negative", 0.9, "c", "u3", "XOM"),
	}
	res := d.Analyze(arts, asOf)
	if len(res.Signals) != 1 || res.Signals[0].Direction != models.DirectionBearish {
		t.Fatalf("expected one bearish signal, got %+v", res.Signals)
	}
}

func TestTrendInsufficientDataGuard(t *testing.T) {
	d := NewTrendDetector(testSectors, 0)
	// Two days with data, extreme magnitude: still skipped.
	arts := []*models.Article{
		article(2, "positive", 0.99, "a", "u1", "AAPL"),
		article(1, "positive", 0.99, "b", "u2", "AAPL"),
	}
	if res := d.Analyze(arts, asOf); len(res.Signals) != 0 {
		t.Fatalf("expected no signal with 2 days of data, got %d", len(res.Signals))
	}
}

func TestTrendMixedSentimentGuard(t *testing.T) {
	d := NewTrendDetector(testSectors, 0)
	arts := []*models.Article{
		article(3, "positive", 0.9, "a", "u1", "AAPL"),
		article(2, "negative", 0.9, "b", "u2", "AAPL"),
		article(1, "positive", 0.9, "c", "u3", "AAPL"),
	}
	if res := d.Analyze(arts, asOf); len(res.Signals) != 0 {
		t.Fatalf("expected no signal for mixed days, got %d", len(res.Signals))
	}
}

func TestTrendLastThreeAvailableDaysNotCalendarDays(t *testing.T) {
	d := NewTrendDetector(testSectors, 0)
	// Data on days -6, -4, -1: gaps do not matter, the last three
	// days with data are inspected.
	arts := []*models.Article{
		article(6, "positive", 0.5, "a", "u1", "AAPL"),
		article(4, "positive", 0.5, "b", "u2", "AAPL"),
		article(1, "positive", 0.5, "c", "u3", "AAPL"),
	}
	res := d.Analyze(arts, asOf)
	if len(res.Signals) != 1 || res.Signals[0].Direction != models.DirectionBullish {
		t.Fatalf("expected bullish signal across gapped days, got %+v", res.Signals)
	}
}

func TestTrendDefaultWindowCoversGappedCoverage(t *testing.T) {
	// Data on days -6, -4, -1 needs the full default window; a 3-day
	// window would only ever see 3 calendar days and miss the trend.
	arts := []*models.Article{
		article(6, "positive", 0.5, "a", "u1", "AAPL"),
		article(4, "positive", 0.5, "b", "u2", "AAPL"),
		article(1, "positive", 0.5, "c", "u3", "AAPL"),
	}

	if res := NewTrendDetector(testSectors, DefaultLookbackDays).Analyze(arts, asOf); len(res.Signals) != 1 {
		t.Fatalf("default window must detect the gapped trend, got %d signals", len(res.Signals))
	}
	if res := NewTrendDetector(testSectors, 3).Analyze(arts, asOf); len(res.Signals) != 0 {
		t.Fatalf("3-day window should not see three days of data here, got %d signals", len(res.Signals))
	}
	if DefaultLookbackDays != 7 {
		t.Fatalf("default lookback = %d, want 7", DefaultLookbackDays)
	}
}

func TestTrendSourceArticlesDedupedAndCapped(t *testing.T) {
	d := NewTrendDetector(testSectors, 0)
	arts := []*models.Article{
		article(3, "positive", 0.5, "a", "u1", "AAPL"),
		article(3, "positive", 0.5, "a-again", "u1", "MSFT"), // same URL
		article(2, "positive", 0.5, "b", "u2", "AAPL"),
		article(2, "positive", 0.5, "c", "u3", "AAPL"),
		article(1, "positive", 0.5, "d", "u4", "AAPL"),
	}
	res := d.Analyze(arts, asOf)
	if len(res.Signals) != 1 {
		t.Fatalf("expected one signal, got %d", len(res.Signals))
	}
	src := res.Signals[0].SourceArticles
	if len(src) != 3 {
		t.Fatalf("expected 3 capped sources, got %d", len(src))
	}
	if src[0].URL != "u1" || src[1].URL != "u2" || src[2].URL != "u3" {
		t.Fatalf("unexpected source order %+v", src)
	}
}

func TestTrendArticleCountsOncePerSector(t *testing.T) {
	d := NewTrendDetector(testSectors, 0)
	// One article mentioning three Technology tickers must contribute
	// a single score to the sector's day, not three.
	arts := []*models.Article{
		article(3, "positive", 0.3, "a", "u1", "AAPL", "MSFT", "NVDA"),
		article(2, "positive", 0.3, "b", "u2", "AAPL"),
		article(1, "positive", 0.3, "c", "u3", "AAPL"),
	}
	res := d.Analyze(arts, asOf)
	if len(res.Signals) != 1 {
		t.Fatalf("expected one signal, got %d", len(res.Signals))
	}
	// With dedup, day -3 average is 0.3 rather than an inflated sum.
	if res.Signals[0].Direction != models.DirectionBullish {
		t.Fatalf("unexpected direction %s", res.Signals[0].Direction)
	}
}

func TestTrendEmptyInputDistinguishedFromNoTrend(t *testing.T) {
	d := NewTrendDetector(testSectors, 0)

	empty := d.Analyze(nil, asOf)
	if len(empty.Signals) != 0 || len(empty.SummaryPoints) != 1 {
		t.Fatalf("unexpected empty result %+v", empty)
	}

	flat := d.Analyze([]*models.Article{
		article(3, "neutral", 0.5, "a", "u1", "AAPL"),
		article(2, "neutral", 0.5, "b", "u2", "AAPL"),
		article(1, "neutral", 0.5, "c", "u3", "AAPL"),
	}, asOf)
	if len(flat.Signals) != 0 {
		t.Fatalf("expected no signals for neutral coverage")
	}
	if flat.SummaryPoints[0] == empty.SummaryPoints[0] {
		t.Fatalf("no-data and no-trend summaries must differ")
	}
}

func TestTrendSkipsMalformedAnnotations(t *testing.T) {
	d := NewTrendDetector(testSectors, 0)
	broken := &models.Article{
		Title: "broken", URL: "ub",
		PublishedAt: asOf.AddDate(0, 0, -2),
		NLPFeatures: &models.NLPFeatures{Sentiment: nil, Entities: []models.Entity{{Text: "AAPL"}}},
	}
	arts := []*models.Article{
		article(3, "positive", 0.5, "a", "u1", "AAPL"),
		broken,
		article(2, "positive", 0.5, "b", "u2", "AAPL"),
		article(1, "positive", 0.5, "c", "u3", "AAPL"),
	}
	res := d.Analyze(arts, asOf)
	if len(res.Signals) != 1 {
		t.Fatalf("one bad record must not fail the batch, got %d signals", len(res.Signals))
	}
}

func TestTrendWindowExcludesAsOfDay(t *testing.T) {
	d := NewTrendDetector(testSectors, 0)
	arts := []*models.Article{
		article(3, "positive", 0.5, "a", "u1", "AAPL"),
		article(2, "positive", 0.5, "b", "u2", "AAPL"),
		article(0, "positive", 0.9, "same-day", "u4", "AAPL"), // on asOf: outside window
	}
	if res := d.Analyze(arts, asOf); len(res.Signals) != 0 {
		t.Fatalf("as-of day article must not count toward the trend window")
	}
}
