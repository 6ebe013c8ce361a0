package models

// Signal types emitted by the analysis engine.
const (
	SignalHistorical = "HISTORICAL"
	SignalImpact     = "IMPACT"
	SignalConfidence = "CONFIDENCE"
)

// Signal directions. Historical signals use Bullish/Bearish, impact
// signals UP/DOWN, confidence signals BULLISH only (bearish confluence
// is intentionally never computed, see DESIGN.md).
const (
	DirectionBullish    = "Bullish"
	DirectionBearish    = "Bearish"
	DirectionUp         = "UP"
	DirectionDown       = "DOWN"
	DirectionHighlyBull = "BULLISH"
)

// SourceArticle references an article that contributed to a signal.
type SourceArticle struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// PredictedStock is a ranked single-stock call inside a confidence signal.
type PredictedStock struct {
	Symbol string  `json:"symbol"`
	Reason string  `json:"reason"`
	URL    string  `json:"url"`
	Score  float64 `json:"score"` // rounded to 4 decimals
}

// Signal is one sector-level trading signal.
type Signal struct {
	Type            string           `json:"type"`
	Sector          string           `json:"sector"`
	Direction       string           `json:"direction"`
	Details         string           `json:"details,omitempty"`
	SourceArticles  []SourceArticle  `json:"source_articles"`
	PredictedStocks []PredictedStock `json:"predicted_stocks,omitempty"`
}
