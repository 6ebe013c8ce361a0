package analysis

import (
	"fmt"
	"sort"
	"time"

	"Stockometry/internal/domain/models"
	"Stockometry/internal/services/sectors"
)

const (
	// DefaultLookbackDays bounds the historical window [asOf-N, asOf).
	DefaultLookbackDays = 7

	// trendDays is how many trailing days with data must agree.
	trendDays = 3

	// trendThreshold separates a directional day from a neutral one.
	// Comparison is strict on both sides.
	trendThreshold = 0.1

	// maxTrendSources caps source articles attached to a trend signal.
	maxTrendSources = 3
)

// TrendDetector flags sectors with a sustained multi-day sentiment trend.
type TrendDetector struct {
	sectors  *sectors.Map
	lookback int
}

// NewTrendDetector builds a detector over the given sector map.
// lookbackDays <= 0 falls back to DefaultLookbackDays.
func NewTrendDetector(m *sectors.Map, lookbackDays int) *TrendDetector {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	return &TrendDetector{sectors: m, lookback: lookbackDays}
}

// TrendResult carries historical signals and their summary fragments.
type TrendResult struct {
	Signals       []models.Signal
	SummaryPoints []string
}

type daySentiment struct {
	day    time.Time
	scores []float64
}

// Analyze scans annotated articles published in [asOf-N, asOf) and
// emits a Bullish or Bearish signal for every sector whose last
// trendDays daily averages all clear the threshold. Sectors with fewer
// than trendDays days of data are skipped; mixed or borderline days
// produce no signal.
func (d *TrendDetector) Analyze(articles []*models.Article, asOf time.Time) TrendResult {
	windowEnd := dayOf(asOf)
	windowStart := windowEnd.AddDate(0, 0, -d.lookback)

	// sector -> day -> signed scores, plus contributing articles per
	// sector deduplicated by URL in encounter order.
	daily := make(map[string]map[time.Time][]float64)
	sources := make(map[string][]models.SourceArticle)
	seenURL := make(map[string]map[string]bool)

	inWindow := 0
	for _, a := range articles {
		day := dayOf(a.PublishedAt)
		if day.Before(windowStart) || !day.Before(windowEnd) {
			continue
		}
		inWindow++
		f := a.NLPFeatures
		if f == nil || f.Sentiment == nil || len(f.Entities) == 0 {
			continue // malformed annotation: skip, never abort the batch
		}
		score := f.Sentiment.SignedScore()

		// An article counts at most once per sector even when several
		// of its entities resolve to the same one.
		counted := make(map[string]bool)
		for _, e := range f.Entities {
			sector, ok := d.sectors.Sector(e.Text)
			if !ok || counted[sector] {
				continue
			}
			counted[sector] = true
			if daily[sector] == nil {
				daily[sector] = make(map[time.Time][]float64)
			}
			daily[sector][day] = append(daily[sector][day], score)
			if seenURL[sector] == nil {
				seenURL[sector] = make(map[string]bool)
			}
			if !seenURL[sector][a.URL] {
				seenURL[sector][a.URL] = true
				sources[sector] = append(sources[sector], models.SourceArticle{Title: a.Title, URL: a.URL})
			}
		}
	}

	if inWindow == 0 {
		return TrendResult{
			Signals:       []models.Signal{},
			SummaryPoints: []string{"No recent data available for historical analysis."},
		}
	}
	if len(daily) == 0 {
		return TrendResult{
			Signals:       []models.Signal{},
			SummaryPoints: []string{"Insufficient sector-specific news for historical analysis."},
		}
	}

	signals := []models.Signal{}
	points := []string{}
	for _, sector := range sortedKeys(daily) {
		series := averageByDay(daily[sector])
		if len(series) < trendDays {
			continue // strict insufficient-data guard
		}
		last := series[len(series)-trendDays:]

		direction := ""
		switch {
		case allAbove(last, trendThreshold):
			direction = models.DirectionBullish
		case allBelow(last, -trendThreshold):
			direction = models.DirectionBearish
		}
		if direction == "" {
			continue // no signal on ambiguity
		}

		tone := "positive"
		move := "bullish"
		if direction == models.DirectionBearish {
			tone = "negative"
			move = "bearish"
		}
		src := sources[sector]
		if len(src) > maxTrendSources {
			src = src[:maxTrendSources]
		}
		signals = append(signals, models.Signal{
			Type:      models.SignalHistorical,
			Sector:    sector,
			Direction: direction,
			Details: fmt.Sprintf("Sector '%s' shows strong %s sentiment for the last %d days.",
				sector, tone, trendDays),
			SourceArticles: src,
		})
		points = append(points, fmt.Sprintf(
			"A sustained %s trend was identified for the '%s' sector.", move, sector))
	}

	if len(points) == 0 {
		points = append(points, "No significant multi-day trends identified in any sector.")
	}
	return TrendResult{Signals: signals, SummaryPoints: points}
}

func averageByDay(byDay map[time.Time][]float64) []float64 {
	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	avgs := make([]float64, 0, len(days))
	for _, d := range days {
		scores := byDay[d]
		sum := 0.0
		for _, s := range scores {
			sum += s
		}
		avgs = append(avgs, sum/float64(len(scores)))
	}
	return avgs
}

func allAbove(xs []float64, threshold float64) bool {
	for _, x := range xs {
		if x <= threshold {
			return false
		}
	}
	return true
}

func allBelow(xs []float64, threshold float64) bool {
	for _, x := range xs {
		if x >= threshold {
			return false
		}
	}
	return true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// dayOf truncates a timestamp to its UTC calendar day.
func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
