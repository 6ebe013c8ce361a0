package usecase

import (
	"context"

	"Stockometry/internal/domain/models"
	drepo "Stockometry/internal/domain/repository"
	mid "Stockometry/internal/middleware"
)

// QuoteProcessor persists streamed quotes.
type QuoteProcessor struct {
	store   drepo.QuoteStore
	metrics drepo.Metrics
}

// NewQuoteProcessor creates a new QuoteProcessor instance.
func NewQuoteProcessor(store drepo.QuoteStore, metrics drepo.Metrics) *QuoteProcessor {
	return &QuoteProcessor{store: store, metrics: metrics}
}

func (p *QuoteProcessor) Process(ctx context.Context, q *models.Quote) error {
	if err := p.store.Store(ctx, q); err != nil {
		p.metrics.RecordError("quote_store")
		return err
	}
	return nil
}

var _ mid.Proc = (*QuoteProcessor)(nil)

// QuoteCollector streams market quotes alongside the news pipeline so
// daily reports can later be checked against actual price moves.
type QuoteCollector struct {
	stream  drepo.MarketStream
	metrics drepo.Metrics
	pipe    *mid.QuotePipeline
}

// NewQuoteCollector creates a new QuoteCollector instance.
func NewQuoteCollector(stream drepo.MarketStream, metrics drepo.Metrics, pipe *mid.QuotePipeline) *QuoteCollector {
	return &QuoteCollector{stream: stream, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the market stream is connected.
func (c *QuoteCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *QuoteCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	c.pipe.Start(ctx)
	go c.run(ctx)
	return nil
}

// run opens a fresh read session after every stream break. The stream
// closes its channels when the connection dies, so each session needs a
// new Read call on the reconnected socket.
func (c *QuoteCollector) run(ctx context.Context) {
	for {
		qCh, errCh := c.stream.Read(ctx)
		if !c.consume(ctx, qCh, errCh) {
			return
		}
		c.metrics.RecordError("stream")
		if err := c.stream.Reconnect(ctx); err != nil {
			c.metrics.RecordError("stream_reconnect")
			return
		}
	}
}

// consume drains one read session. Returns true when the session broke
// and a reconnect should be attempted, false on context cancellation.
func (c *QuoteCollector) consume(ctx context.Context, qCh <-chan *models.Quote, errCh <-chan error) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case err, ok := <-errCh:
			if !ok || err != nil {
				return true
			}
		case q, ok := <-qCh:
			if !ok {
				return true
			}
			if q == nil {
				continue
			}
			_ = c.pipe.Process(ctx, q)
			c.metrics.RecordLastQuote(q.Symbol, q.Price)
		}
	}
}

// Shutdown stops the pipeline and closes the stream.
func (c *QuoteCollector) Shutdown(ctx context.Context) error {
	c.pipe.Stop()
	return c.stream.Close()
}
