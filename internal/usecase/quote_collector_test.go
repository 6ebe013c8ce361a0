package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"Stockometry/internal/domain/models"
	mid "Stockometry/internal/middleware"
)

// fakeMarketStream drops its first read session the way a dead socket
// does: error, then both channels closed. Later sessions deliver quotes.
type fakeMarketStream struct {
	mu         sync.Mutex
	reads      int
	reconnects int
	quote      *models.Quote
}

func (s *fakeMarketStream) Connect(ctx context.Context) error   { return nil }
func (s *fakeMarketStream) Subscribe(ctx context.Context) error { return nil }

func (s *fakeMarketStream) Read(ctx context.Context) (<-chan *models.Quote, <-chan error) {
	s.mu.Lock()
	s.reads++
	n := s.reads
	s.mu.Unlock()

	quotes := make(chan *models.Quote, 4)
	errs := make(chan error, 1)
	if n == 1 {
		errs <- errors.New("connection reset")
		close(quotes)
		close(errs)
		return quotes, errs
	}
	quotes <- s.quote
	return quotes, errs
}

func (s *fakeMarketStream) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	s.reconnects++
	s.mu.Unlock()
	return nil
}

func (s *fakeMarketStream) Close() error      { return nil }
func (s *fakeMarketStream) IsConnected() bool { return true }

func (s *fakeMarketStream) counts() (reads, reconnects int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads, s.reconnects
}

func TestQuoteCollectorResumesAfterReconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := &fakeMarketStream{quote: &models.Quote{
		Symbol: "AAPL", Timestamp: 1741600000, Price: 231.5, Volume: 100,
	}}
	store := &fakeQuoteStore{}
	m := &fakeMetrics{}
	pipe := mid.NewQuotePipeline(NewQuoteProcessor(store, m), m)

	c := NewQuoteCollector(stream, m, pipe)
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer func() { _ = c.Shutdown(context.Background()) }()

	// The first session dies immediately; the quote only arrives if the
	// collector reconnects and opens a fresh read session.
	deadline := time.Now().Add(2 * time.Second)
	for store.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no quote stored after reconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}

	reads, reconnects := stream.counts()
	if reconnects != 1 {
		t.Fatalf("reconnects = %d, want 1", reconnects)
	}
	if reads < 2 {
		t.Fatalf("reads = %d, want a fresh session after reconnect", reads)
	}
}
