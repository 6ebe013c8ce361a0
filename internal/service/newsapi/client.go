package newsapi

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"Stockometry/internal/domain/models"
	"Stockometry/internal/service/ratelimit"
	xhttp "Stockometry/pkg/http"
)

// Client fetches financial news from a NewsAPI-compatible endpoint.
type Client struct {
	apiKey   string
	baseURL  string
	query    string
	language string
	pageSize int

	client  *xhttp.Client
	limiter *ratelimit.Limiter
	rps     float64
	burst   float64
}

// Option configures Client.
type Option func(*Client)

// WithRateLimit bounds outgoing requests to the provider.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.rps = rps
		c.burst = float64(burst)
	}
}

// WithQuery sets the search query and language.
func WithQuery(query, language string) Option {
	return func(c *Client) {
		c.query = query
		c.language = language
	}
}

// WithPageSize sets the page size per request.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// New creates a NewsAPI client.
func New(apiKey, baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		apiKey:   apiKey,
		baseURL:  baseURL,
		query:    "stocks OR market OR economy",
		language: "en",
		pageSize: 100,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter:  ratelimit.New(),
		rps:      1,
		burst:    5,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

type apiResponse struct {
	Status       string       `json:"status"`
	Code         string       `json:"code"`
	Message      string       `json:"message"`
	TotalResults int          `json:"totalResults"`
	Articles     []apiArticle `json:"articles"`
}

// FetchRange pulls articles published in [from, to]. Articles without a
// parseable timestamp or URL are dropped.
func (c *Client) FetchRange(ctx context.Context, from, to time.Time) ([]*models.Article, error) {
	if !c.limiter.Allow("newsapi", c.burst, c.rps) {
		return nil, fmt.Errorf("newsapi rate limit exceeded")
	}

	var resp apiResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/v2/everything",
		Headers: map[string]string{
			"X-Api-Key": c.apiKey,
		},
		QueryParams: map[string][]string{
			"q":        {c.query},
			"language": {c.language},
			"from":     {from.UTC().Format(time.RFC3339)},
			"to":       {to.UTC().Format(time.RFC3339)},
			"pageSize": {strconv.Itoa(c.pageSize)},
			"sortBy":   {"publishedAt"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("newsapi fetch: %w", err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("newsapi error %s: %s", resp.Code, resp.Message)
	}

	out := make([]*models.Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if a.URL == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, a.PublishedAt)
		if err != nil {
			continue
		}
		out = append(out, &models.Article{
			SourceName:  a.Source.Name,
			Author:      a.Author,
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			URL:         a.URL,
			PublishedAt: ts.UTC(),
		})
	}
	return out, nil
}

// FetchLatest pulls articles from the trailing window ending now.
func (c *Client) FetchLatest(ctx context.Context, window time.Duration) ([]*models.Article, error) {
	now := time.Now().UTC()
	return c.FetchRange(ctx, now.Add(-window), now)
}
