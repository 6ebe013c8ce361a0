package analysis

import (
	"math"
	"sort"

	"Stockometry/internal/domain/models"
	"Stockometry/internal/services/sectors"
)

// maxPredictedStocks caps the ranked movers per confidence signal.
const maxPredictedStocks = 2

// StockRanker picks the strongest individual movers inside a sector
// already flagged bullish by confluence.
type StockRanker struct {
	sectors *sectors.Map
}

func NewStockRanker(m *sectors.Map) *StockRanker {
	return &StockRanker{sectors: m}
}

type rankedStock struct {
	symbol string
	score  float64
	title  string
	url    string
}

// Rank scans the same-day articles used by the impact detector for
// positive coverage of the sector's constituent tickers. For each
// ticker only the highest-scoring article survives; on an exact score
// tie the first one encountered wins (strict-greater replacement, not
// sort-then-dedupe). Returns at most maxPredictedStocks entries sorted
// by score descending; an empty result is a valid "no specific mover"
// answer, never an error.
func (r *StockRanker) Rank(sector string, dayArticles []*models.Article) []models.PredictedStock {
	tickers := r.sectors.Tickers(sector)
	if len(tickers) == 0 {
		return []models.PredictedStock{}
	}
	targets := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		targets[t] = true
	}

	best := make(map[string]*rankedStock)
	order := []string{} // ticker first-encounter order, for stable ties
	for _, a := range dayArticles {
		f := a.NLPFeatures
		if f == nil || f.Sentiment == nil || f.Sentiment.Label != models.SentimentPositive {
			continue
		}
		for _, e := range f.Entities {
			if !targets[e.Text] {
				continue
			}
			cur, seen := best[e.Text]
			if !seen {
				order = append(order, e.Text)
			}
			if !seen || f.Sentiment.Score > cur.score {
				best[e.Text] = &rankedStock{
					symbol: e.Text,
					score:  f.Sentiment.Score,
					title:  a.Title,
					url:    a.URL,
				}
			}
		}
	}
	if len(best) == 0 {
		return []models.PredictedStock{}
	}

	ranked := make([]*rankedStock, 0, len(best))
	for _, sym := range order {
		ranked = append(ranked, best[sym])
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > maxPredictedStocks {
		ranked = ranked[:maxPredictedStocks]
	}

	out := make([]models.PredictedStock, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, models.PredictedStock{
			Symbol: s.symbol,
			Reason: s.title,
			URL:    s.url,
			Score:  round4(s.score),
		})
	}
	return out
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
