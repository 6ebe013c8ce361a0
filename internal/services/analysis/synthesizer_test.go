package analysis

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"Stockometry/internal/domain/models"
)

func TestConfluenceIsSetIntersection(t *testing.T) {
	s := NewSynthesizer(testSectors, 0)

	arts := []*models.Article{}
	// Historical bullish: Technology and Energy.
	for day := 3; day >= 1; day-- {
		arts = append(arts,
			article(day, "positive", 0.6, "tech trend", "th"+string(rune('0'+day)), "AAPL"),
			article(day, "positive", 0.6, "energy trend", "eh"+string(rune('0'+day)), "XOM"),
		)
	}
	// Impact UP: Technology and Healthcare.
	arts = append(arts,
		article(0, "positive", 0.6, "Tech merger today", "ti", "AAPL"),
		article(0, "positive", 0.6, "Drug approval granted", "hi", "PFE"),
	)

	rep := s.Run(arts, asOf)
	if len(rep.Signals.Confidence) != 1 {
		t.Fatalf("expected exactly one confluent sector, got %d", len(rep.Signals.Confidence))
	}
	if rep.Signals.Confidence[0].Sector != "Technology" {
		t.Fatalf("expected Technology confluence, got %s", rep.Signals.Confidence[0].Sector)
	}
}

func TestConfluenceBullishOnly(t *testing.T) {
	s := NewSynthesizer(testSectors, 0)

	arts := []*models.Article{}
	// Bearish trend for Energy plus a DOWN impact for Energy: no
	// confidence signal, the bearish side is never intersected.
	for day := 3; day >= 1; day-- {
		arts = append(arts, article(day, "negative", 0.7, "energy slump", "e"+string(rune('0'+day)), "XOM"))
	}
	arts = append(arts, article(0, "negative", 0.95, "Oil ban imposed", "ei", "XOM"))

	rep := s.Run(arts, asOf)
	if len(rep.Signals.Historical) != 1 || rep.Signals.Historical[0].Direction != models.DirectionBearish {
		t.Fatalf("expected bearish historical signal, got %+v", rep.Signals.Historical)
	}
	if len(rep.Signals.Impact) != 1 || rep.Signals.Impact[0].Direction != models.DirectionDown {
		t.Fatalf("expected DOWN impact signal, got %+v", rep.Signals.Impact)
	}
	if len(rep.Signals.Confidence) != 0 {
		t.Fatalf("bearish confluence must not be computed")
	}
}

func TestConfidenceSourcesMergedByURL(t *testing.T) {
	s := NewSynthesizer(testSectors, 0)

	arts := []*models.Article{}
	for day := 3; day >= 1; day-- {
		arts = append(arts, article(day, "positive", 0.6, "tech", "shared-url", "AAPL"))
	}
	arts = append(arts, article(0, "positive", 0.6, "Tech deal", "shared-url", "AAPL"))

	rep := s.Run(arts, asOf)
	if len(rep.Signals.Confidence) != 1 {
		t.Fatalf("expected confluence, got %+v", rep.Signals)
	}
	if len(rep.Signals.Confidence[0].SourceArticles) != 1 {
		t.Fatalf("expected URL-deduplicated sources, got %+v",
			rep.Signals.Confidence[0].SourceArticles)
	}
}

func TestEndToEndBullishTechnology(t *testing.T) {
	s := NewSynthesizer(testSectors, 0)

	// Six consecutive days of positive Technology coverage at 0.85,
	// plus a same-day keyword article at 0.95 naming a tech ticker.
	arts := []*models.Article{}
	for day := 6; day >= 1; day-- {
		arts = append(arts, article(day, "positive", 0.85, "steady tech optimism",
			"hist-"+string(rune('0'+day)), "AAPL"))
	}
	arts = append(arts, article(0, "positive", 0.95, "Blockbuster deal for Apple",
		"today-deal", "AAPL"))

	rep := s.Run(arts, asOf)

	if len(rep.Signals.Historical) != 1 ||
		rep.Signals.Historical[0].Sector != "Technology" ||
		rep.Signals.Historical[0].Direction != models.DirectionBullish {
		t.Fatalf("expected HISTORICAL/Bullish Technology, got %+v", rep.Signals.Historical)
	}
	if len(rep.Signals.Impact) != 1 ||
		rep.Signals.Impact[0].Sector != "Technology" ||
		rep.Signals.Impact[0].Direction != models.DirectionUp {
		t.Fatalf("expected IMPACT/UP Technology, got %+v", rep.Signals.Impact)
	}
	if len(rep.Signals.Confidence) != 1 {
		t.Fatalf("expected one CONFIDENCE signal, got %d", len(rep.Signals.Confidence))
	}
	conf := rep.Signals.Confidence[0]
	if conf.Direction != models.DirectionHighlyBull || conf.Sector != "Technology" {
		t.Fatalf("unexpected confidence signal %+v", conf)
	}
	if len(conf.PredictedStocks) == 0 {
		t.Fatalf("expected at least one predicted stock")
	}
	if conf.PredictedStocks[0].Symbol != "AAPL" || conf.PredictedStocks[0].Score != 0.95 {
		t.Fatalf("unexpected prediction %+v", conf.PredictedStocks[0])
	}
	if !strings.Contains(rep.ExecutiveSummary, "High-confidence bullish signals") {
		t.Fatalf("summary missing confluence sentence: %q", rep.ExecutiveSummary)
	}
}

func TestPipelineIsIdempotent(t *testing.T) {
	s := NewSynthesizer(testSectors, 0)

	arts := []*models.Article{}
	for day := 6; day >= 1; day-- {
		arts = append(arts,
			article(day, "positive", 0.85, "tech", "h"+string(rune('0'+day)), "AAPL", "MSFT"),
			article(day, "negative", 0.6, "energy", "e"+string(rune('0'+day)), "XOM"),
		)
	}
	arts = append(arts,
		article(0, "positive", 0.95, "Tech acquisition spree", "i1", "MSFT", "AAPL"),
		article(0, "positive", 0.92, "Another tech deal", "i2", "AAPL"),
	)

	first, err := json.Marshal(s.Run(arts, asOf))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(s.Run(arts, asOf))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("two runs over the same snapshot must be byte-identical")
	}
}

func TestRunNeverErrorsOnEmptySnapshot(t *testing.T) {
	s := NewSynthesizer(testSectors, 0)
	rep := s.Run(nil, asOf)
	if rep == nil {
		t.Fatalf("expected a report object for empty input")
	}
	if len(rep.Signals.Historical)+len(rep.Signals.Impact)+len(rep.Signals.Confidence) != 0 {
		t.Fatalf("expected no signals for empty input")
	}
	if rep.ExecutiveSummary == "" {
		t.Fatalf("expected descriptive summary for empty input")
	}
}
