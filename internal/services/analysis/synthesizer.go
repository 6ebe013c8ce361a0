package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"Stockometry/internal/domain/models"
	"Stockometry/internal/services/sectors"
)

// Synthesizer runs the trend and impact detectors independently,
// intersects their bullish sectors, and assembles the final report.
// Each run is a pure function of (article snapshot, as-of date): no
// shared state is mutated, so concurrent runs for different dates are
// safe as long as each gets its own snapshot.
//
// Only the bullish side is intersected. Bearish trend + DOWN impact is
// deliberately never combined; the asymmetry is preserved from the
// original decision logic (see DESIGN.md).
type Synthesizer struct {
	trend  *TrendDetector
	impact *ImpactDetector
	ranker *StockRanker
}

// NewSynthesizer wires the three detectors over one sector map.
func NewSynthesizer(m *sectors.Map, lookbackDays int) *Synthesizer {
	return &Synthesizer{
		trend:  NewTrendDetector(m, lookbackDays),
		impact: NewImpactDetector(m),
		ranker: NewStockRanker(m),
	}
}

// Run produces the report object for the given as-of date. It never
// returns an error: degenerate inputs yield an empty signal set with
// an explanatory summary.
func (s *Synthesizer) Run(articles []*models.Article, asOf time.Time) *models.Report {
	hist := s.trend.Analyze(articles, asOf)
	imp := s.impact.Analyze(articles, asOf)

	bullishTrend := sectorSet(hist.Signals, models.DirectionBullish)
	impactUp := sectorSet(imp.Signals, models.DirectionUp)

	confluent := []string{}
	for sector := range bullishTrend {
		if impactUp[sector] {
			confluent = append(confluent, sector)
		}
	}
	sort.Strings(confluent)

	confidence := []models.Signal{}
	for _, sector := range confluent {
		srcs := mergeSources(
			sectorSources(hist.Signals, sector),
			sectorSources(imp.Signals, sector),
		)
		confidence = append(confidence, models.Signal{
			Type:      models.SignalConfidence,
			Sector:    sector,
			Direction: models.DirectionHighlyBull,
			Details: fmt.Sprintf(
				"Sector '%s' shows a positive historical trend and a positive high-impact event today.", sector),
			SourceArticles:  srcs,
			PredictedStocks: s.ranker.Rank(sector, imp.Articles),
		})
	}

	points := make([]string, 0, len(hist.SummaryPoints)+len(imp.SummaryPoints)+1)
	points = append(points, hist.SummaryPoints...)
	points = append(points, imp.SummaryPoints...)
	if len(confluent) > 0 {
		points = append(points, fmt.Sprintf(
			"High-confidence bullish signals were found for the following sectors: %s.",
			strings.Join(confluent, ", ")))
	}

	return &models.Report{
		ExecutiveSummary: strings.Join(points, " "),
		Signals: models.SignalGroups{
			Historical: hist.Signals,
			Impact:     imp.Signals,
			Confidence: confidence,
		},
	}
}

func sectorSet(signals []models.Signal, direction string) map[string]bool {
	set := make(map[string]bool)
	for _, s := range signals {
		if s.Direction == direction {
			set[s.Sector] = true
		}
	}
	return set
}

// sectorSources returns the source articles of the first signal for a
// sector, matching the original one-signal-per-sector lookup.
func sectorSources(signals []models.Signal, sector string) []models.SourceArticle {
	for _, s := range signals {
		if s.Sector == sector {
			return s.SourceArticles
		}
	}
	return nil
}

// mergeSources unions source lists, deduplicating by URL and keeping
// the first occurrence's title.
func mergeSources(lists ...[]models.SourceArticle) []models.SourceArticle {
	out := []models.SourceArticle{}
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, src := range list {
			if seen[src.URL] {
				continue
			}
			seen[src.URL] = true
			out = append(out, src)
		}
	}
	return out
}
