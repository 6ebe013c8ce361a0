package analysis

import (
	"fmt"
	"strings"
	"time"

	"Stockometry/internal/domain/models"
	"Stockometry/internal/services/sectors"
)

// extremeSentimentThreshold flags an article as high-impact on score
// alone, regardless of label. Comparison is strict.
const extremeSentimentThreshold = 0.90

// impactKeywords mark same-day catalyst events. Matched
// case-insensitively as substrings of title+description.
var impactKeywords = []string{
	"regulation", "act", "tariff", "subsidy", "ban",
	"approval", "deal", "acquisition", "merger", "lawsuit",
}

// ImpactDetector flags single high-impact articles on the as-of day.
type ImpactDetector struct {
	sectors *sectors.Map
}

func NewImpactDetector(m *sectors.Map) *ImpactDetector {
	return &ImpactDetector{sectors: m}
}

// ImpactResult carries impact signals, summary fragments, and the
// article slice that was actually analyzed (the as-of day or, after
// fallback, the previous day) for reuse by the stock ranker.
type ImpactResult struct {
	Signals       []models.Signal
	SummaryPoints []string
	Articles      []*models.Article
}

// Analyze inspects articles published on the as-of day. When that day
// has no articles (common near midnight UTC), it falls back to the
// previous calendar day and applies the same rules. Each high-impact
// article yields at most one signal: entities are scanned in their
// original order and the first one resolving to a known sector wins.
func (d *ImpactDetector) Analyze(articles []*models.Article, asOf time.Time) ImpactResult {
	day := dayOf(asOf)
	prev := day.AddDate(0, 0, -1)

	slice := articlesOn(articles, day)
	label := "today"
	if len(slice) == 0 {
		slice = articlesOn(articles, prev)
		label = "yesterday"
		if len(slice) == 0 {
			return ImpactResult{
				Signals: []models.Signal{},
				SummaryPoints: []string{fmt.Sprintf(
					"No articles found for %s or %s.",
					day.Format("2006-01-02"), prev.Format("2006-01-02"))},
				Articles: []*models.Article{},
			}
		}
	}

	signals := []models.Signal{}
	points := []string{}
	for _, a := range slice {
		f := a.NLPFeatures
		if f == nil || f.Sentiment == nil {
			continue
		}
		text := strings.ToLower(a.Title) + strings.ToLower(a.Description)

		keywordHit := false
		for _, kw := range impactKeywords {
			if strings.Contains(text, kw) {
				keywordHit = true
				break
			}
		}
		extreme := f.Sentiment.Score > extremeSentimentThreshold
		if !keywordHit && !extreme {
			continue
		}

		// First entity that maps to a sector wins; the rest of the
		// entity list is not scanned.
		for _, e := range f.Entities {
			sector, ok := d.sectors.Sector(e.Text)
			if !ok {
				continue
			}
			direction := models.DirectionDown
			if f.Sentiment.Label == models.SentimentPositive {
				direction = models.DirectionUp
			}
			signals = append(signals, models.Signal{
				Type:      models.SignalImpact,
				Sector:    sector,
				Direction: direction,
				Details: fmt.Sprintf("High-impact news titled '%s' (Sentiment: %s @ %g).",
					a.Title, f.Sentiment.Label, f.Sentiment.Score),
				SourceArticles: []models.SourceArticle{{Title: a.Title, URL: a.URL}},
			})
			points = append(points, fmt.Sprintf(
				"A high-impact event for the '%s' sector suggests a short-term move %s.",
				sector, strings.ToLower(direction)))
			break
		}
	}

	if len(points) == 0 {
		points = append(points, fmt.Sprintf(
			"Analyzed %d articles for %s, but no high-impact signals were generated.",
			len(slice), label))
	}
	return ImpactResult{Signals: signals, SummaryPoints: points, Articles: slice}
}

func articlesOn(articles []*models.Article, day time.Time) []*models.Article {
	out := make([]*models.Article, 0)
	for _, a := range articles {
		if dayOf(a.PublishedAt).Equal(day) {
			out = append(out, a)
		}
	}
	return out
}
