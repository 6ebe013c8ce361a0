package usecase

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"Stockometry/internal/domain/models"
)

type storedMetric struct {
	backend string
	source  string
}

type fakeMetrics struct {
	mu      sync.Mutex
	stored  []storedMetric
	errs    []string
	signals []string
	quotes  map[string]float64
}

func (m *fakeMetrics) RecordArticleStored(backend, source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = append(m.stored, storedMetric{backend, source})
}

func (m *fakeMetrics) RecordSignal(signalType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals = append(m.signals, signalType)
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, kind)
}

func (m *fakeMetrics) RecordLatency(op string, seconds float64) {}

func (m *fakeMetrics) RecordLastQuote(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quotes == nil {
		m.quotes = make(map[string]float64)
	}
	m.quotes[symbol] = price
}

func (m *fakeMetrics) storedSources() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.stored))
	for i, s := range m.stored {
		out[i] = s.source
	}
	return out
}

// fakeArticleStore keeps articles in memory and dedupes StoreRaw by URL
// the way the real store does.
type fakeArticleStore struct {
	mu       sync.Mutex
	existing map[string]bool
	raw      []*models.Article
	listed   []*models.Article
}

func (s *fakeArticleStore) StoreRaw(ctx context.Context, articles []*models.Article) ([]*models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existing == nil {
		s.existing = make(map[string]bool)
	}
	inserted := []*models.Article{}
	for _, a := range articles {
		if a == nil || a.URL == "" || s.existing[a.URL] {
			continue
		}
		s.existing[a.URL] = true
		s.raw = append(s.raw, a)
		inserted = append(inserted, a)
	}
	return inserted, nil
}

func (s *fakeArticleStore) StoreAnnotated(ctx context.Context, a *models.Article) error { return nil }

func (s *fakeArticleStore) ListAnnotatedRange(ctx context.Context, from, to time.Time) ([]*models.Article, error) {
	return s.listed, nil
}

func (s *fakeArticleStore) ListPending(ctx context.Context, limit int) ([]*models.Article, error) {
	return nil, nil
}

func (s *fakeArticleStore) Health(ctx context.Context) error { return nil }
func (s *fakeArticleStore) Close() error                     { return nil }

type fakeFetcher struct {
	articles   []*models.Article
	rangeCalls int
	rangeFrom  time.Time
	rangeTo    time.Time
}

func (f *fakeFetcher) FetchRange(ctx context.Context, from, to time.Time) ([]*models.Article, error) {
	f.rangeCalls++
	f.rangeFrom, f.rangeTo = from, to
	return f.articles, nil
}

func (f *fakeFetcher) FetchLatest(ctx context.Context, window time.Duration) ([]*models.Article, error) {
	return f.articles, nil
}

type fakePublisher struct {
	published []*models.Article
	failAfter int // fail on the Nth publish (1-based); 0 never fails
}

func (p *fakePublisher) PublishArticle(ctx context.Context, a *models.Article) error {
	if p.failAfter > 0 && len(p.published)+1 >= p.failAfter {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, a)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeReportStore struct {
	mu      sync.Mutex
	missing []time.Time
	saved   []*models.StoredReport
}

func (s *fakeReportStore) Save(ctx context.Context, r *models.StoredReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, r)
	return nil
}

func (s *fakeReportStore) Latest(ctx context.Context) (*models.StoredReport, error) {
	return nil, sql.ErrNoRows
}

func (s *fakeReportStore) ByDate(ctx context.Context, day time.Time) (*models.StoredReport, error) {
	return nil, sql.ErrNoRows
}

func (s *fakeReportStore) List(ctx context.Context, limit int) ([]*models.StoredReport, error) {
	return s.saved, nil
}

func (s *fakeReportStore) MissingDates(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	return s.missing, nil
}

type fakeQuoteStore struct {
	mu     sync.Mutex
	quotes []*models.Quote
}

func (s *fakeQuoteStore) Store(ctx context.Context, q *models.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = append(s.quotes, q)
	return nil
}

func (s *fakeQuoteStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.quotes)
}
