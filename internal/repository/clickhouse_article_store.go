package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"Stockometry/internal/domain/models"
	pkgch "Stockometry/pkg/clickhouse"
	applogger "Stockometry/pkg/logger"
)

// CHArticleStore implements ArticleStore backed by ClickHouse.
//
// Articles live in a ReplacingMergeTree keyed by URL with an annotated
// version column: annotating an article inserts a second row that wins
// the merge, so reads use FINAL and writes stay append-only.
type CHArticleStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHArticleStore(ch *pkgch.Client, table string) *CHArticleStore {
	return &CHArticleStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHArticleStore) SetLogger(l *applogger.Logger) { s.l = l }

// StoreRaw inserts articles that are not yet stored, deduplicating by
// URL. Returns the subset of articles that was actually inserted.
func (s *CHArticleStore) StoreRaw(ctx context.Context, articles []*models.Article) ([]*models.Article, error) {
	if len(articles) == 0 {
		return nil, nil
	}
	start := time.Now()

	urls := make([]string, 0, len(articles))
	for _, a := range articles {
		if a != nil && a.URL != "" {
			urls = append(urls, a.URL)
		}
	}
	existing, err := s.existingURLs(ctx, urls)
	if err != nil {
		return nil, err
	}

	inserted := make([]*models.Article, 0, len(articles))
	values := make([]string, 0, len(articles))
	args := make([]interface{}, 0, len(articles)*8)
	seen := make(map[string]bool, len(articles))
	for _, a := range articles {
		if a == nil || a.URL == "" || existing[a.URL] || seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		inserted = append(inserted, a)
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, 0, '')")
		args = append(args,
			a.URL,
			a.SourceName,
			a.Author,
			a.Title,
			a.Description,
			a.Content,
			a.PublishedAt.UTC(),
		)
	}
	if len(values) == 0 {
		return nil, nil
	}

	q := fmt.Sprintf(
		"INSERT INTO %s (url, source_name, author, title, description, content, published_at, annotated, nlp_features) VALUES %s",
		s.table, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse store_raw insert error",
				applogger.String("table", s.table),
				applogger.Int("count", len(values)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("store raw articles: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse store_raw ok",
			applogger.String("table", s.table),
			applogger.Int("inserted", len(inserted)),
			applogger.Int("skipped", len(articles)-len(inserted)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return inserted, nil
}

func (s *CHArticleStore) existingURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	out := make(map[string]bool, len(urls))
	if len(urls) == 0 {
		return out, nil
	}
	ph := make([]string, len(urls))
	args := make([]interface{}, len(urls))
	for i, u := range urls {
		ph[i] = "?"
		args[i] = u
	}
	q := fmt.Sprintf("SELECT DISTINCT url FROM %s WHERE url IN (%s)", s.table, strings.Join(ph, ","))
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("check existing urls: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan url: %w", err)
		}
		out[u] = true
	}
	return out, rows.Err()
}

// StoreAnnotated writes the annotated version of an article.
func (s *CHArticleStore) StoreAnnotated(ctx context.Context, a *models.Article) error {
	if a == nil || a.URL == "" {
		return fmt.Errorf("article without url")
	}
	if a.NLPFeatures == nil {
		return fmt.Errorf("article %s has no features", a.URL)
	}
	feats, err := json.Marshal(a.NLPFeatures)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}

	q := fmt.Sprintf(
		"INSERT INTO %s (url, source_name, author, title, description, content, published_at, annotated, nlp_features) VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)",
		s.table)
	if _, err := s.db.ExecContext(ctx, q,
		a.URL, a.SourceName, a.Author, a.Title, a.Description, a.Content,
		a.PublishedAt.UTC(), string(feats),
	); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse store_annotated error",
				applogger.String("table", s.table),
				applogger.String("url", a.URL),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("store annotated: %w", err)
	}
	return nil
}

// ListAnnotatedRange returns annotated articles published in [from, to).
func (s *CHArticleStore) ListAnnotatedRange(ctx context.Context, from, to time.Time) ([]*models.Article, error) {
	q := fmt.Sprintf(`
        SELECT url, source_name, author, title, description, content, published_at, nlp_features
        FROM %s FINAL
        WHERE annotated = 1 AND published_at >= ? AND published_at < ?
        ORDER BY published_at ASC
    `, s.table)
	return s.queryArticles(ctx, q, from.UTC(), to.UTC())
}

// ListPending returns raw articles awaiting annotation.
func (s *CHArticleStore) ListPending(ctx context.Context, limit int) ([]*models.Article, error) {
	if limit <= 0 {
		limit = 100
	}
	q := fmt.Sprintf(`
        SELECT url, source_name, author, title, description, content, published_at, nlp_features
        FROM %s FINAL
        WHERE annotated = 0
        ORDER BY published_at ASC
        LIMIT ?
    `, s.table)
	return s.queryArticles(ctx, q, limit)
}

func (s *CHArticleStore) queryArticles(ctx context.Context, q string, args ...interface{}) ([]*models.Article, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse articles query error",
				applogger.String("table", s.table),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Article, 0, 256)
	for rows.Next() {
		var a models.Article
		var ts time.Time
		var feats string
		if err := rows.Scan(&a.URL, &a.SourceName, &a.Author, &a.Title,
			&a.Description, &a.Content, &ts, &feats); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		a.PublishedAt = ts.UTC()
		if feats != "" {
			var nf models.NLPFeatures
			if err := json.Unmarshal([]byte(feats), &nf); err == nil {
				a.NLPFeatures = &nf
			}
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse articles query ok",
			applogger.String("table", s.table),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHArticleStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHArticleStore) Close() error {
	return nil // Managed by pkg
}
