package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"Stockometry/internal/domain/models"
	"Stockometry/internal/domain/repository"
	pkgch "Stockometry/pkg/clickhouse"
)

// CHQuoteStore implements QuoteStore for ClickHouse.
type CHQuoteStore struct {
	db    *sql.DB
	table string
}

// NewCHQuoteStore creates ClickHouse quote storage.
func NewCHQuoteStore(ch *pkgch.Client, table string) repository.QuoteStore {
	return &CHQuoteStore{db: ch.DB(), table: table}
}

func (s *CHQuoteStore) Store(ctx context.Context, q *models.Quote) error {
	stmt := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, volume) VALUES (?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, stmt,
		time.Unix(q.Timestamp, 0).UTC(),
		q.Symbol,
		q.Price,
		q.Volume,
	)
	return err
}
