package repository

import (
	"context"
	"time"

	"Stockometry/internal/domain/models"
)

// ArticleStore persists and queries news articles.
type ArticleStore interface {
	// StoreRaw inserts articles not yet stored, deduplicating by URL,
	// and returns the subset that was actually inserted.
	StoreRaw(ctx context.Context, articles []*models.Article) ([]*models.Article, error)
	StoreAnnotated(ctx context.Context, a *models.Article) error
	// ListAnnotatedRange returns annotated articles whose published_at
	// date falls in [from, to), ordered by published_at ascending.
	ListAnnotatedRange(ctx context.Context, from, to time.Time) ([]*models.Article, error)
	ListPending(ctx context.Context, limit int) ([]*models.Article, error)
	Health(ctx context.Context) error
	Close() error
}

// ReportStore persists generated reports and their signals.
type ReportStore interface {
	Save(ctx context.Context, r *models.StoredReport) error
	Latest(ctx context.Context) (*models.StoredReport, error)
	ByDate(ctx context.Context, day time.Time) (*models.StoredReport, error)
	List(ctx context.Context, limit int) ([]*models.StoredReport, error)
	// MissingDates returns days in [from, to] with no stored report.
	MissingDates(ctx context.Context, from, to time.Time) ([]time.Time, error)
}

// QuoteStore persists streamed market ticks into daily bars.
type QuoteStore interface {
	Store(ctx context.Context, q *models.Quote) error
}

// Publisher hands raw articles to the ingestion bus.
type Publisher interface {
	PublishArticle(ctx context.Context, a *models.Article) error
	Close() error
}

// MarketStream is a live quote feed for tracked symbols.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Quote, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Annotator assigns sentiment and entities to article text.
// The implementation calls the external NLP service.
type Annotator interface {
	Annotate(ctx context.Context, text string) (*models.NLPFeatures, error)
}

// Metrics records operational measurements.
type Metrics interface {
	RecordArticleStored(backend, source string)
	RecordSignal(signalType string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordLastQuote(symbol string, price float64)
}
