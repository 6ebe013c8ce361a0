package analysis

import (
	"testing"

	"Stockometry/internal/domain/models"
)

func TestRankerCapsAtTwoDescending(t *testing.T) {
	r := NewStockRanker(testSectors)
	arts := []*models.Article{
		article(0, "positive", 0.61, "intc", "u1", "INTC"),
		article(0, "positive", 0.95, "nvda", "u2", "NVDA"),
		article(0, "positive", 0.72, "aapl", "u3", "AAPL"),
		article(0, "positive", 0.88, "msft", "u4", "MSFT"),
		article(0, "positive", 0.55, "amd", "u5", "AMD"),
	}
	got := r.Rank("Technology", arts)
	if len(got) != 2 {
		t.Fatalf("expected 2 predictions, got %d", len(got))
	}
	if got[0].Symbol != "NVDA" || got[1].Symbol != "MSFT" {
		t.Fatalf("expected top scores descending, got %+v", got)
	}
	if got[0].Score < got[1].Score {
		t.Fatalf("scores must be descending")
	}
}

func TestRankerKeepsHighestPerTicker(t *testing.T) {
	r := NewStockRanker(testSectors)
	arts := []*models.Article{
		article(0, "positive", 0.60, "weak aapl", "u1", "AAPL"),
		article(0, "positive", 0.90, "strong aapl", "u2", "AAPL"),
		article(0, "positive", 0.70, "middling aapl", "u3", "AAPL"),
	}
	got := r.Rank("Technology", arts)
	if len(got) != 1 {
		t.Fatalf("expected single prediction, got %d", len(got))
	}
	if got[0].Reason != "strong aapl" || got[0].URL != "u2" {
		t.Fatalf("expected highest-scoring article kept, got %+v", got[0])
	}
}

func TestRankerTieKeepsFirstEncountered(t *testing.T) {
	r := NewStockRanker(testSectors)
	arts := []*models.Article{
		article(0, "positive", 0.80, "first", "u1", "AAPL"),
		article(0, "positive", 0.80, "second", "u2", "AAPL"),
	}
	got := r.Rank("Technology", arts)
	if len(got) != 1 || got[0].Reason != "first" {
		t.Fatalf("exact score tie must keep the first article, got %+v", got)
	}
}

func TestRankerIgnoresNonPositiveArticles(t *testing.T) {
	r := NewStockRanker(testSectors)
	arts := []*models.Article{
		article(0, "negative", 0.99, "bad news", "u1", "AAPL"),
		article(0, "neutral", 0.99, "flat news", "u2", "MSFT"),
	}
	if got := r.Rank("Technology", arts); len(got) != 0 {
		t.Fatalf("non-positive articles must not rank, got %+v", got)
	}
}

func TestRankerUnknownSectorEmptyNotError(t *testing.T) {
	r := NewStockRanker(testSectors)
	got := r.Rank("Utilities", []*models.Article{
		article(0, "positive", 0.9, "x", "u1", "AAPL"),
	})
	if len(got) != 0 {
		t.Fatalf("sector without constituents must return empty, got %+v", got)
	}
}

func TestRankerRoundsToFourDecimals(t *testing.T) {
	r := NewStockRanker(testSectors)
	arts := []*models.Article{
		article(0, "positive", 0.123456789, "precise", "u1", "AAPL"),
	}
	got := r.Rank("Technology", arts)
	if len(got) != 1 {
		t.Fatalf("expected one prediction")
	}
	if got[0].Score != 0.1235 {
		t.Fatalf("expected rounded score 0.1235, got %v", got[0].Score)
	}
}
