package analysis

import (
	"strings"
	"testing"

	"Stockometry/internal/domain/models"
)

func TestImpactKeywordMatch(t *testing.T) {
	d := NewImpactDetector(testSectors)
	arts := []*models.Article{
		article(0, "positive", 0.6, "Major Acquisition announced", "u1", "AAPL"),
	}
	res := d.Analyze(arts, asOf)
	if len(res.Signals) != 1 {
		t.Fatalf("expected one impact signal, got %d", len(res.Signals))
	}
	s := res.Signals[0]
	if s.Sector != "Technology" || s.Direction != models.DirectionUp {
		t.Fatalf("unexpected signal %+v", s)
	}
}

func TestImpactExtremeSentimentWithoutKeyword(t *testing.T) {
	d := NewImpactDetector(testSectors)
	arts := []*models.Article{
		article(0, "negative", 0.95, "Quiet but dire news", "u1", "XOM"),
	}
	res := d.Analyze(arts, asOf)
	if len(res.Signals) != 1 || res.Signals[0].Direction != models.DirectionDown {
		t.Fatalf("expected one DOWN signal, got %+v", res.Signals)
	}
}

func TestImpactExtremeThresholdIsStrict(t *testing.T) {
	d := NewImpactDetector(testSectors)
	arts := []*models.Article{
		article(0, "positive", 0.90, "Calm headline", "u1", "AAPL"),
	}
	if res := d.Analyze(arts, asOf); len(res.Signals) != 0 {
		t.Fatalf("score exactly 0.90 must not trigger, got %d signals", len(res.Signals))
	}
}

func TestImpactOneSignalPerArticle(t *testing.T) {
	d := NewImpactDetector(testSectors)
	// Three entities all resolving to Technology: exactly one signal.
	arts := []*models.Article{
		article(0, "positive", 0.5, "Merger frenzy", "u1", "AAPL", "MSFT", "NVDA"),
	}
	res := d.Analyze(arts, asOf)
	if len(res.Signals) != 1 {
		t.Fatalf("expected exactly one signal, got %d", len(res.Signals))
	}
}

func TestImpactFirstResolvableEntityWins(t *testing.T) {
	d := NewImpactDetector(testSectors)
	a := article(0, "positive", 0.5, "Landmark deal", "u1")
	a.NLPFeatures.Entities = []models.Entity{
		{Text: "Unknown Corp", Label: "ORG"}, // no mapping: skipped
		{Text: "XOM", Label: "ORG"},
		{Text: "AAPL", Label: "ORG"}, // never reached
	}
	res := d.Analyze([]*models.Article{a}, asOf)
	if len(res.Signals) != 1 || res.Signals[0].Sector != "Energy" {
		t.Fatalf("expected the first mapped entity's sector, got %+v", res.Signals)
	}
}

func TestImpactNoEntityResolves(t *testing.T) {
	d := NewImpactDetector(testSectors)
	a := article(0, "positive", 0.95, "Mystery surge", "u1")
	a.NLPFeatures.Entities = []models.Entity{{Text: "Nobody Knows Inc", Label: "ORG"}}
	res := d.Analyze([]*models.Article{a}, asOf)
	if len(res.Signals) != 0 {
		t.Fatalf("unmapped entities must contribute nothing, got %d", len(res.Signals))
	}
	if len(res.SummaryPoints) != 1 || !strings.Contains(res.SummaryPoints[0], "no high-impact signals") {
		t.Fatalf("expected analyzed-but-quiet summary, got %+v", res.SummaryPoints)
	}
}

func TestImpactFallsBackToPreviousDay(t *testing.T) {
	d := NewImpactDetector(testSectors)
	// Nothing on the as-of day; one keyword article the day before.
	arts := []*models.Article{
		article(1, "positive", 0.6, "Tariff relief", "u1", "AAPL"),
	}
	res := d.Analyze(arts, asOf)
	if len(res.Signals) != 1 {
		t.Fatalf("expected fallback to yield a signal, got %d", len(res.Signals))
	}
	if len(res.Articles) != 1 {
		t.Fatalf("analyzed slice should expose the fallback day's articles")
	}
}

func TestImpactNoArticlesEitherDay(t *testing.T) {
	d := NewImpactDetector(testSectors)
	res := d.Analyze(nil, asOf)
	if len(res.Signals) != 0 || len(res.Articles) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if !strings.Contains(res.SummaryPoints[0], "No articles found") {
		t.Fatalf("expected no-articles summary, got %q", res.SummaryPoints[0])
	}
}

func TestImpactSkipsNilSentiment(t *testing.T) {
	d := NewImpactDetector(testSectors)
	a := article(0, "positive", 0.5, "Merger talk", "u1", "AAPL")
	a.NLPFeatures.Sentiment = nil
	res := d.Analyze([]*models.Article{a}, asOf)
	if len(res.Signals) != 0 {
		t.Fatalf("article without sentiment must be skipped")
	}
}
